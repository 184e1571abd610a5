package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/governance-api/internal/dto"
	apierrors "github.com/yukikurage/governance-api/internal/errors"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/services"
)

type VoteHandler struct {
	votingService *services.VotingService
}

func NewVoteHandler(votingService *services.VotingService) *VoteHandler {
	return &VoteHandler{
		votingService: votingService,
	}
}

// OpenVote opens a vote on an agenda item of a published meeting
func (h *VoteHandler) OpenVote(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	type OpenVoteRequest struct {
		AgendaItemID uint64          `json:"agenda_item_id" binding:"required"`
		Kind         models.VoteKind `json:"kind"`
	}

	var req OpenVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	vote, err := h.votingService.OpenVote(org.ID, id, req.AgendaItemID, req.Kind)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToVoteDTO(*vote))
}

// GetVote returns a vote
func (h *VoteHandler) GetVote(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	voteID, ok := paramID(c, "vote_id", "vote")
	if !ok {
		return
	}

	vote, _, err := h.votingService.GetVote(org.ID, voteID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVoteDTO(*vote))
}

// CloseVote closes an open vote
func (h *VoteHandler) CloseVote(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	voteID, ok := paramID(c, "vote_id", "vote")
	if !ok {
		return
	}

	vote, err := h.votingService.CloseVote(org.ID, voteID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVoteDTO(*vote))
}

// CastBallot accepts the acting member's remote ballot
func (h *VoteHandler) CastBallot(c *gin.Context) {
	userID, org, ok := requireActor(c)
	if !ok {
		return
	}
	voteID, ok := paramID(c, "vote_id", "vote")
	if !ok {
		return
	}

	type BallotRequest struct {
		Choice models.BallotChoice `json:"choice" binding:"required"`
	}

	var req BallotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ballot, err := h.votingService.CastRemoteBallot(services.CastRemoteBallotInput{
		OrganizationID: org.ID,
		VoteID:         voteID,
		UserID:         userID,
		Choice:         req.Choice,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBallotDTO(*ballot))
}
