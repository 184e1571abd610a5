package governance

import (
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/governance-api/internal/models"
)

const membershipEntity = "membership"

// MinReasonLength is the minimum number of characters, after trimming, of a
// membership status change reason.
const MinReasonLength = 10

// reasonTemplates pre-fills the reason field in the UI. Keys are "FROM→TO".
var reasonTemplates = map[string]string{
	"PENDING→ACTIVE":   "Membership application approved by the board",
	"PENDING→LEFT":     "Membership application withdrawn or declined",
	"ACTIVE→SUSPENDED": "Membership suspended due to outstanding obligations",
	"ACTIVE→LEFT":      "Member left the organization at their own request",
	"SUSPENDED→ACTIVE": "Suspension lifted after obligations were settled",
	"SUSPENDED→LEFT":   "Member excluded after an unresolved suspension",
}

// IsMembershipTerminal reports whether s has no outgoing transitions.
func IsMembershipTerminal(s models.MemberStatus) bool {
	return s == models.MemberStatusLeft
}

// ValidateMembershipTransition reports whether current may move to target.
func ValidateMembershipTransition(current, target models.MemberStatus) bool {
	if current == target {
		return true
	}
	if IsMembershipTerminal(current) {
		return false
	}
	return contains(membershipTransitions[current], target)
}

// ValidateMembershipTransitionWithReason checks the transition table first and then,
// for a real status change, that reason has at least MinReasonLength characters.
// It returns a *TransitionError or a *ReasonError.
func ValidateMembershipTransitionWithReason(current, target models.MemberStatus, reason string) error {
	if !ValidateMembershipTransition(current, target) {
		return &TransitionError{
			Entity:   membershipEntity,
			From:     string(current),
			To:       string(target),
			Allowed:  toStrings(membershipTransitions[current]),
			Terminal: IsMembershipTerminal(current),
		}
	}
	if current == target {
		return nil
	}
	n := utf8.RuneCountInString(strings.TrimSpace(reason))
	if n < MinReasonLength {
		return &ReasonError{MinLength: MinReasonLength, Length: n}
	}
	return nil
}

// TransitionKey formats the key used by the reason template table.
func TransitionKey(from, to models.MemberStatus) string {
	return string(from) + "→" + string(to)
}

// ReasonTemplate returns the default reason phrase for a transition. Templates
// only pre-fill input; the reason is still validated like any other.
func ReasonTemplate(from, to models.MemberStatus) (string, bool) {
	t, ok := reasonTemplates[TransitionKey(from, to)]
	return t, ok
}

// IsEligibleToVote reports whether a member in status may cast a ballot under
// rules. Active members always may; suspended members only when the
// organization does not check suspensions.
func IsEligibleToVote(status models.MemberStatus, rules EligibilityRules) bool {
	switch status {
	case models.MemberStatusActive:
		return true
	case models.MemberStatusSuspended:
		return !rules.CheckSuspensions
	default:
		return false
	}
}
