package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/governance-api/internal/constants"
	"github.com/yukikurage/governance-api/internal/database"
	apierrors "github.com/yukikurage/governance-api/internal/errors"
	"github.com/yukikurage/governance-api/internal/models"
)

// RequireMeetingAccess loads the meeting named by :meeting_id and checks that it
// belongs to the organization loaded by RequireOrganizationAccess.
func RequireMeetingAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		meetingID, err := strconv.ParseUint(c.Param("meeting_id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid meeting ID")
			c.Abort()
			return
		}

		org, ok := GetOrganization(c)
		if !ok {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		var meeting models.Meeting
		if err := database.GetDB().
			Where("id = ? AND organization_id = ?", meetingID, org.ID).
			First(&meeting).Error; err != nil {
			apierrors.NotFound(c, "Meeting not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyMeeting, meeting)
		c.Next()
	}
}

// RequireResolutionAccess loads the resolution named by :resolution_id within
// the organization loaded by RequireOrganizationAccess.
func RequireResolutionAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolutionID, err := strconv.ParseUint(c.Param("resolution_id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid resolution ID")
			c.Abort()
			return
		}

		org, ok := GetOrganization(c)
		if !ok {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		var resolution models.Resolution
		if err := database.GetDB().
			Where("id = ? AND organization_id = ?", resolutionID, org.ID).
			First(&resolution).Error; err != nil {
			apierrors.NotFound(c, "Resolution not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyResolution, resolution)
		c.Next()
	}
}

// GetMeeting returns the meeting loaded by RequireMeetingAccess
func GetMeeting(c *gin.Context) (models.Meeting, bool) {
	value, exists := c.Get(constants.ContextKeyMeeting)
	if !exists {
		return models.Meeting{}, false
	}
	meeting, ok := value.(models.Meeting)
	return meeting, ok
}

// GetResolution returns the resolution loaded by RequireResolutionAccess
func GetResolution(c *gin.Context) (models.Resolution, bool) {
	value, exists := c.Get(constants.ContextKeyResolution)
	if !exists {
		return models.Resolution{}, false
	}
	resolution, ok := value.(models.Resolution)
	return resolution, ok
}
