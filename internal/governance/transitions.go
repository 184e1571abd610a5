// Package governance holds the rules that decide when resolutions and
// memberships may change status, which governance parameters bind a meeting,
// when remote voting stops and when a meeting may be completed.
//
// Everything here is pure: callers load the facts, call into this package and
// persist the outcome with a conditional write.
package governance

import "github.com/yukikurage/governance-api/internal/models"

var resolutionTransitions = map[models.ResolutionStatus][]models.ResolutionStatus{
	models.ResolutionStatusDraft:    {models.ResolutionStatusProposed},
	models.ResolutionStatusProposed: {models.ResolutionStatusApproved, models.ResolutionStatusRejected},
	models.ResolutionStatusApproved: {},
	models.ResolutionStatusRejected: {},
}

var membershipTransitions = map[models.MemberStatus][]models.MemberStatus{
	models.MemberStatusPending:   {models.MemberStatusActive, models.MemberStatusLeft},
	models.MemberStatusActive:    {models.MemberStatusSuspended, models.MemberStatusLeft},
	models.MemberStatusSuspended: {models.MemberStatusActive, models.MemberStatusLeft},
	models.MemberStatusLeft:      {},
}

// ResolutionStatuses lists every resolution status in lifecycle order.
func ResolutionStatuses() []models.ResolutionStatus {
	return []models.ResolutionStatus{
		models.ResolutionStatusDraft,
		models.ResolutionStatusProposed,
		models.ResolutionStatusApproved,
		models.ResolutionStatusRejected,
	}
}

// MemberStatuses lists every membership status in lifecycle order.
func MemberStatuses() []models.MemberStatus {
	return []models.MemberStatus{
		models.MemberStatusPending,
		models.MemberStatusActive,
		models.MemberStatusSuspended,
		models.MemberStatusLeft,
	}
}

// AllowedResolutionTransitions returns the statuses reachable from s in one step.
// The returned slice is a copy.
func AllowedResolutionTransitions(s models.ResolutionStatus) []models.ResolutionStatus {
	return append([]models.ResolutionStatus{}, resolutionTransitions[s]...)
}

// AllowedMembershipTransitions returns the statuses reachable from s in one step.
// The returned slice is a copy.
func AllowedMembershipTransitions(s models.MemberStatus) []models.MemberStatus {
	return append([]models.MemberStatus{}, membershipTransitions[s]...)
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func toStrings[T ~string](list []T) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = string(v)
	}
	return out
}
