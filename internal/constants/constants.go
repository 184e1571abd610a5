package constants

const (
	// ContextKeyUserID is the key of the acting user's ID, both in the session and in gin.Context.
	ContextKeyUserID = "user_id"

	SessionCookieName = "governance_session"

	ContextKeyOrganization = "organization"
	ContextKeyMembership   = "membership"
	ContextKeyMeeting      = "meeting"
	ContextKeyResolution   = "resolution"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
