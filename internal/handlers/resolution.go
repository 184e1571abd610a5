package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/governance-api/internal/dto"
	apierrors "github.com/yukikurage/governance-api/internal/errors"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/repository"
	"github.com/yukikurage/governance-api/internal/services"
	"github.com/yukikurage/governance-api/internal/utils"
)

type ResolutionHandler struct {
	resolutionService *services.ResolutionService
}

func NewResolutionHandler(resolutionService *services.ResolutionService) *ResolutionHandler {
	return &ResolutionHandler{
		resolutionService: resolutionService,
	}
}

// ListResolutions returns the organization's resolutions
// Can filter by status
func (h *ResolutionHandler) ListResolutions(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}

	page := utils.GetPaginationParams(c)
	filter := repository.ResolutionFilter{
		OrganizationID: org.ID,
		Page:           page.Number,
		PageSize:       page.Size,
	}
	if status := c.Query("status"); status != "" {
		s := models.ResolutionStatus(status)
		filter.Status = &s
	}

	resolutions, total, err := h.resolutionService.ListResolutions(filter)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResolutionListResponse(resolutions, page.Number, page.Size, total))
}

// GetResolution returns a single resolution
func (h *ResolutionHandler) GetResolution(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := resolutionID(c)
	if !ok {
		return
	}

	resolution, err := h.resolutionService.GetResolution(org.ID, id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResolutionDTO(*resolution))
}

// CreateResolution drafts a resolution
func (h *ResolutionHandler) CreateResolution(c *gin.Context) {
	userID, org, ok := requireActor(c)
	if !ok {
		return
	}

	type CreateResolutionRequest struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content"`
	}

	var req CreateResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	resolution, err := h.resolutionService.CreateResolution(services.CreateResolutionInput{
		OrganizationID: org.ID,
		Title:          req.Title,
		Content:        req.Content,
		CreatedBy:      userID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToResolutionDTO(*resolution))
}

// UpdateResolution edits title or content until the resolution is decided
func (h *ResolutionHandler) UpdateResolution(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := resolutionID(c)
	if !ok {
		return
	}

	type UpdateResolutionRequest struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}

	var req UpdateResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	resolution, err := h.resolutionService.UpdateResolution(org.ID, id, services.UpdateResolutionInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResolutionDTO(*resolution))
}

// TransitionResolution moves a resolution along its lifecycle
func (h *ResolutionHandler) TransitionResolution(c *gin.Context) {
	userID, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := resolutionID(c)
	if !ok {
		return
	}

	type TransitionRequest struct {
		Status         models.ResolutionStatus  `json:"status" binding:"required"`
		ExpectedStatus *models.ResolutionStatus `json:"expected_status"`
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	resolution, err := h.resolutionService.TransitionResolution(services.TransitionResolutionInput{
		OrganizationID: org.ID,
		ResolutionID:   id,
		Target:         req.Status,
		ExpectedStatus: req.ExpectedStatus,
		ActorID:        userID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToResolutionDTO(*resolution))
}
