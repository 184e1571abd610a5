package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/governance-api/internal/errors"
	"github.com/yukikurage/governance-api/internal/middleware"
	"github.com/yukikurage/governance-api/internal/models"
)

// requireActor returns the acting user and the organization loaded by
// RequireOrganizationAccess. It writes the error response itself.
func requireActor(c *gin.Context) (uint64, models.Organization, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return 0, models.Organization{}, false
	}

	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.InternalError(c, "Organization not found in context")
		return 0, models.Organization{}, false
	}
	return userID, org, true
}

// paramID parses a numeric path parameter.
func paramID(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// meetingID returns the meeting loaded by RequireMeetingAccess, falling back
// to the path parameter when the route is not behind it.
func meetingID(c *gin.Context) (uint64, bool) {
	if meeting, ok := middleware.GetMeeting(c); ok {
		return meeting.ID, true
	}
	return paramID(c, "meeting_id", "meeting")
}

func resolutionID(c *gin.Context) (uint64, bool) {
	if resolution, ok := middleware.GetResolution(c); ok {
		return resolution.ID, true
	}
	return paramID(c, "resolution_id", "resolution")
}
