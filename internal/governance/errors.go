package governance

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrImmutable         = errors.New("record is immutable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("status change reason is required")
	ErrReasonTooShort    = errors.New("status change reason is too short")
	ErrSnapshotFrozen    = errors.New("governance snapshot is frozen")
	ErrAgendaItemLocked  = errors.New("agenda item is locked until procedural items are approved")
	ErrVotingFrozen      = errors.New("remote voting is frozen")
	ErrVotingNotOpen     = errors.New("remote voting has not opened yet")
)

// TransitionError describes a status change that the transition table does not allow.
// It unwraps to ErrImmutable when From is terminal and ErrInvalidTransition otherwise.
type TransitionError struct {
	Entity   string
	From     string
	To       string
	Allowed  []string
	Terminal bool
}

func (e *TransitionError) Error() string {
	if e.Terminal {
		return fmt.Sprintf("%s is %s and cannot be modified", e.Entity, e.From)
	}
	allowed := "none"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("%s transition %s -> %s is not defined (allowed: %s)", e.Entity, e.From, e.To, allowed)
}

func (e *TransitionError) Unwrap() error {
	if e.Terminal {
		return ErrImmutable
	}
	return ErrInvalidTransition
}

// ImmutableError reports an attempted update of a record in a terminal state.
// Fields lists every field the caller tried to change.
type ImmutableError struct {
	Entity string
	Status string
	Fields []string
}

func (e *ImmutableError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s is %s and cannot be modified", e.Entity, e.Status)
	}
	return fmt.Sprintf("%s is %s and cannot be modified (attempted fields: %s)",
		e.Entity, e.Status, strings.Join(e.Fields, ", "))
}

func (e *ImmutableError) Unwrap() error { return ErrImmutable }

// ReasonError reports a missing or too short membership status reason.
type ReasonError struct {
	MinLength int
	Length    int
}

func (e *ReasonError) Error() string {
	if e.Length == 0 {
		return "a reason must be provided for every membership status change"
	}
	return fmt.Sprintf("reason must be at least %d characters (got %d)", e.MinLength, e.Length)
}

func (e *ReasonError) Unwrap() error {
	if e.Length == 0 {
		return ErrReasonRequired
	}
	return ErrReasonTooShort
}
