package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/governance-api/internal/dto"
	apierrors "github.com/yukikurage/governance-api/internal/errors"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/services"
)

type MembershipHandler struct {
	memberService *services.MembershipService
}

func NewMembershipHandler(memberService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		memberService: memberService,
	}
}

// ListMembers returns every membership of the organization with its standing
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}

	members, err := h.memberService.ListMembers(org.ID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	items := make([]dto.MembershipDTO, len(members))
	for i, m := range members {
		items[i] = dto.ToMembershipDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"members": items,
	})
}

// ListTransitions returns the statuses a member can be moved to, with reason templates
func (h *MembershipHandler) ListTransitions(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	membershipID, ok := paramID(c, "member_id", "member")
	if !ok {
		return
	}

	member, options, err := h.memberService.AllowedTransitions(org.ID, membershipID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	transitions := make([]dto.TransitionOptionDTO, len(options))
	for i, o := range options {
		transitions[i] = dto.TransitionOptionDTO{Target: o.Target, ReasonTemplate: o.ReasonTemplate}
	}

	c.JSON(http.StatusOK, dto.MemberTransitionsDTO{
		Membership:  dto.ToMembershipDTO(*member),
		Transitions: transitions,
	})
}

// TransitionMember changes a member's status. A reason is always required.
func (h *MembershipHandler) TransitionMember(c *gin.Context) {
	userID, org, ok := requireActor(c)
	if !ok {
		return
	}
	membershipID, ok := paramID(c, "member_id", "member")
	if !ok {
		return
	}

	type TransitionRequest struct {
		Status         models.MemberStatus  `json:"status" binding:"required"`
		Reason         string               `json:"reason"`
		ExpectedStatus *models.MemberStatus `json:"expected_status"`
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.memberService.TransitionMembership(services.TransitionMembershipInput{
		OrganizationID: org.ID,
		MembershipID:   membershipID,
		Target:         req.Status,
		Reason:         req.Reason,
		ExpectedStatus: req.ExpectedStatus,
		ActorID:        userID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMembershipDTO(*member))
}
