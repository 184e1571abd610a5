package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/governance-api/internal/governance"
)

var (
	// ErrConcurrentModification is returned when another actor changed the record
	// between the read and the conditional write.
	ErrConcurrentModification = errors.New("record was modified concurrently, reload and retry")

	// ErrUpstreamData marks a failure to read facts a decision depends on. It is
	// never reported as "not ready" or "invalid".
	ErrUpstreamData = errors.New("failed to read governance data")

	ErrMeetingNotReady = errors.New("meeting is not ready to be completed")
)

// NotReadyError carries the completion verdict that blocked a meeting from completing.
type NotReadyError struct {
	Result governance.CompletionResult
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMeetingNotReady, e.Result.Reason)
}

func (e *NotReadyError) Unwrap() error { return ErrMeetingNotReady }

func upstream(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstreamData, what, err)
}
