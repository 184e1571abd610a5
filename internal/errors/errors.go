package errors

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/services"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Authorization errors
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"

	// Validation errors
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInvalidFormat = "INVALID_FORMAT"

	// Resource errors
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"

	// Governance rule violations
	ErrCodeImmutable         = "IMMUTABLE"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeReasonRequired    = "REASON_REQUIRED"
	ErrCodeLocked            = "LOCKED"
	ErrCodeVotingFrozen      = "VOTING_FROZEN"
	ErrCodeVotingNotOpen     = "VOTING_NOT_OPEN"
	ErrCodeNotReady          = "NOT_READY"
	ErrCodeInvalidOperation  = "INVALID_OPERATION"

	// Service errors
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeUpstreamFailure = "UPSTREAM_FAILURE"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details any) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// TransitionDetails names the attempted and the permitted transitions.
type TransitionDetails struct {
	Entity  string   `json:"entity"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Allowed []string `json:"allowed"`
}

// ImmutableDetails names the terminal status and the fields the caller tried to change.
type ImmutableDetails struct {
	Entity string   `json:"entity"`
	Status string   `json:"status"`
	Fields []string `json:"fields,omitempty"`
}

// ReasonDetails explains the reason length rule.
type ReasonDetails struct {
	MinLength int `json:"min_length"`
	Length    int `json:"length"`
}

// NotReadyDetails lists every condition that blocks completion.
type NotReadyDetails struct {
	Mode    governance.Mode `json:"mode"`
	Missing []string        `json:"missing"`
}

// RespondWithServiceError maps a service or governance error chain to an HTTP
// response carrying enough detail to explain the rejection.
func RespondWithServiceError(c *gin.Context, err error) {
	var (
		transitionErr *governance.TransitionError
		immutableErr  *governance.ImmutableError
		reasonErr     *governance.ReasonError
		notReadyErr   *services.NotReadyError
	)

	switch {
	case stderrors.As(err, &transitionErr):
		code := ErrCodeInvalidTransition
		if transitionErr.Terminal {
			code = ErrCodeImmutable
		}
		RespondWithError(c, http.StatusUnprocessableEntity, NewAPIErrorWithDetails(code, err.Error(), TransitionDetails{
			Entity:  transitionErr.Entity,
			From:    transitionErr.From,
			To:      transitionErr.To,
			Allowed: nonNil(transitionErr.Allowed),
		}))
	case stderrors.As(err, &immutableErr):
		RespondWithError(c, http.StatusUnprocessableEntity, NewAPIErrorWithDetails(ErrCodeImmutable, err.Error(), ImmutableDetails{
			Entity: immutableErr.Entity,
			Status: immutableErr.Status,
			Fields: immutableErr.Fields,
		}))
	case stderrors.As(err, &reasonErr):
		RespondWithError(c, http.StatusUnprocessableEntity, NewAPIErrorWithDetails(ErrCodeReasonRequired, err.Error(), ReasonDetails{
			MinLength: reasonErr.MinLength,
			Length:    reasonErr.Length,
		}))
	case stderrors.As(err, &notReadyErr):
		RespondWithError(c, http.StatusUnprocessableEntity, NewAPIErrorWithDetails(ErrCodeNotReady, err.Error(), NotReadyDetails{
			Mode:    notReadyErr.Result.Mode,
			Missing: notReadyErr.Result.Missing,
		}))
	case stderrors.Is(err, governance.ErrSnapshotFrozen):
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeImmutable, err.Error()))
	case stderrors.Is(err, governance.ErrAgendaItemLocked):
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeLocked, err.Error()))
	case stderrors.Is(err, governance.ErrVotingFrozen):
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeVotingFrozen, err.Error()))
	case stderrors.Is(err, governance.ErrVotingNotOpen):
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeVotingNotOpen, err.Error()))
	case stderrors.Is(err, services.ErrConcurrentModification):
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, err.Error()))
	case isAny(err,
		services.ErrOrganizationNotFound,
		services.ErrMembershipNotFound,
		services.ErrResolutionNotFound,
		services.ErrMeetingNotFound,
		services.ErrAgendaItemNotFound,
		services.ErrVoteNotFound,
	):
		NotFound(c, err.Error())
	case isAny(err,
		services.ErrAlreadyOrganizationMember,
		services.ErrAgendaItemExists,
		services.ErrResolutionOnAgenda,
		services.ErrAlreadyVoted,
	):
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeAlreadyExists, err.Error()))
	case isAny(err,
		services.ErrInvalidOrganizationName,
		services.ErrInvalidInviteCode,
		services.ErrUnknownSettingKey,
		services.ErrInvalidSettingValue,
		services.ErrInvalidResolutionTitle,
		services.ErrInvalidMeetingTitle,
		services.ErrInvalidAgendaItemNo,
		services.ErrInvalidProtocolRef,
		services.ErrInvalidAttendance,
		services.ErrInvalidVoteKind,
		services.ErrInvalidChoice,
	):
		BadRequest(c, err.Error())
	case isAny(err,
		services.ErrMeetingNotDraft,
		services.ErrMeetingNotPublished,
		services.ErrMeetingNotScheduled,
		services.ErrNoticePeriodTooShort,
		services.ErrAttendeeNotActive,
		services.ErrVoteClosed,
	):
		RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeInvalidOperation, err.Error()))
	case isAny(err, services.ErrMemberNotEligible, services.ErrNotOrganizationMember):
		RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeInsufficientPermissions, err.Error()))
	case stderrors.Is(err, services.ErrUpstreamData):
		slog.Error("upstream data failure", "path", c.FullPath(), "error", err)
		RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeUpstreamFailure, "Governance data is temporarily unavailable"))
	default:
		slog.Error("unhandled service error", "path", c.FullPath(), "error", err)
		InternalError(c, "")
	}
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
