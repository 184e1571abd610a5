package governance

import (
	"sort"

	"github.com/yukikurage/governance-api/internal/models"
)

const resolutionEntity = "resolution"

// IsResolutionTerminal reports whether s is a permanent outcome.
func IsResolutionTerminal(s models.ResolutionStatus) bool {
	return s == models.ResolutionStatusApproved || s == models.ResolutionStatusRejected
}

// ValidateResolutionTransition reports whether current may move to target.
// Same-state is a no-op and always valid, nothing leaves a terminal state.
func ValidateResolutionTransition(current, target models.ResolutionStatus) bool {
	if current == target {
		return true
	}
	if IsResolutionTerminal(current) {
		return false
	}
	return contains(resolutionTransitions[current], target)
}

// RequireResolutionTransition is ValidateResolutionTransition returning a *TransitionError.
func RequireResolutionTransition(current, target models.ResolutionStatus) error {
	if ValidateResolutionTransition(current, target) {
		return nil
	}
	return &TransitionError{
		Entity:   resolutionEntity,
		From:     string(current),
		To:       string(target),
		Allowed:  toStrings(resolutionTransitions[current]),
		Terminal: IsResolutionTerminal(current),
	}
}

// RequireResolutionMutable guards any field update, not only status changes.
func RequireResolutionMutable(current models.ResolutionStatus) error {
	if IsResolutionTerminal(current) {
		return &ImmutableError{Entity: resolutionEntity, Status: string(current)}
	}
	return nil
}

// ValidateResolutionUpdate rejects the whole update when current is terminal and
// names every field present in proposed, sorted.
func ValidateResolutionUpdate(current models.ResolutionStatus, proposed map[string]any) error {
	if !IsResolutionTerminal(current) {
		return nil
	}
	fields := make([]string, 0, len(proposed))
	for name := range proposed {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return &ImmutableError{Entity: resolutionEntity, Status: string(current), Fields: fields}
}
