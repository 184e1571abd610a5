package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/governance-api/internal/dto"
	apierrors "github.com/yukikurage/governance-api/internal/errors"
	"github.com/yukikurage/governance-api/internal/middleware"
	"github.com/yukikurage/governance-api/internal/services"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// CreateOrganization creates a new organization
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateOrgRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.CreateOrganization(services.CreateOrganizationInput{
		Name:    req.Name,
		OwnerID: userID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org, true))
}

// ListOrganizations returns all organizations the user is a member of
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	memberships, err := h.orgService.ListOrganizationsForUser(userID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	orgs := make([]dto.OrganizationWithRoleDTO, len(memberships))
	for i, m := range memberships {
		orgs[i] = dto.ToOrganizationWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgs,
	})
}

// GetOrganization returns organization details
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	member, _ := middleware.GetMembership(c)

	loaded, members, err := h.orgService.GetOrganizationWithMembers(org.ID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*loaded, members, member.Role))
}

// UpdateOrganization updates organization name
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}

	type UpdateOrgRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.orgService.UpdateOrganizationName(org.ID, req.Name)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*updated, true))
}

// RegenerateInviteCode generates a new invite code
func (h *OrganizationHandler) RegenerateInviteCode(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}

	updated, err := h.orgService.RegenerateInviteCode(org.ID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invite_code": updated.InviteCode,
	})
}

// JoinOrganization files a pending membership using an invite code
func (h *OrganizationHandler) JoinOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type JoinOrgRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, member, err := h.orgService.JoinOrganizationByInvite(userID, req.InviteCode)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.JoinOrganizationResponse{
		Organization: dto.ToOrganizationDTO(*org, false),
		Membership:   dto.ToMembershipDTO(*member),
	})
}

// GetGovernanceSettings returns the stored and effective governance configuration
func (h *OrganizationHandler) GetGovernanceSettings(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}

	settings, err := h.orgService.GetGovernanceSettings(org.ID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGovernanceSettingsDTO(settings.Stored, settings.Effective, settings.Invalid))
}

// UpdateGovernanceSettings upserts governance configuration keys. Meetings that
// are already published keep their frozen snapshot.
func (h *OrganizationHandler) UpdateGovernanceSettings(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}

	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil || len(req) == 0 {
		apierrors.BadRequest(c, "Request body must be a non-empty object of string values")
		return
	}

	settings, err := h.orgService.UpdateGovernanceSettings(org.ID, req)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGovernanceSettingsDTO(settings.Stored, settings.Effective, settings.Invalid))
}
