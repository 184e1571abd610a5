package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/governance-api/internal/constants"
	"github.com/yukikurage/governance-api/internal/database"
	apierrors "github.com/yukikurage/governance-api/internal/errors"
	"github.com/yukikurage/governance-api/internal/models"
)

// RequireOrganizationAccess checks that the user is an active member of the organization
func RequireOrganizationAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var org models.Organization
		if err := database.GetDB().First(&org, orgID).Error; err != nil {
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		var member models.Membership
		err = database.GetDB().Where("organization_id = ? AND user_id = ?", orgID, userID).First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking organization existence
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		if member.MemberStatus != models.MemberStatusActive {
			apierrors.Forbidden(c, "Membership is "+string(member.MemberStatus))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyOrganization, org)
		c.Set(constants.ContextKeyMembership, member)
		c.Next()
	}
}

// RequireOrganizationAdmin checks that the member may administer the organization.
// It must run after RequireOrganizationAccess.
func RequireOrganizationAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetMembership(c)
		if !ok {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		if !member.Role.CanAdminister() {
			apierrors.RespondWithError(c, http.StatusForbidden, apierrors.NewAPIError(apierrors.ErrCodeInsufficientPermissions,
				"Only organization owners and admins can perform this action"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetOrganization returns the organization loaded by RequireOrganizationAccess
func GetOrganization(c *gin.Context) (models.Organization, bool) {
	value, exists := c.Get(constants.ContextKeyOrganization)
	if !exists {
		return models.Organization{}, false
	}
	org, ok := value.(models.Organization)
	return org, ok
}

// GetMembership returns the acting user's membership loaded by RequireOrganizationAccess
func GetMembership(c *gin.Context) (models.Membership, bool) {
	value, exists := c.Get(constants.ContextKeyMembership)
	if !exists {
		return models.Membership{}, false
	}
	member, ok := value.(models.Membership)
	return member, ok
}
