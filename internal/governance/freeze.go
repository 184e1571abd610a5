package governance

import "time"

const frozenMessage = "Remote voting is closed. Votes must now be cast live at the meeting."

// ComputeFreezeAt returns the instant remote voting stops. There is no grace
// period: voting freezes exactly when the meeting is due to start.
func ComputeFreezeAt(scheduledAt time.Time) time.Time {
	return scheduledAt
}

// VotingOpensAt returns the first instant remote ballots are accepted.
func VotingOpensAt(scheduledAt time.Time, earlyVotingDays int) time.Time {
	return scheduledAt.AddDate(0, 0, -earlyVotingDays)
}

// FreezeStatus is the result of a freeze check.
type FreezeStatus struct {
	Frozen   bool
	FreezeAt *time.Time
	Message  string
}

// CheckFreeze evaluates the freeze at now. A meeting without a schedule is a draft
// and never frozen. A freeze instant recorded in the snapshot takes precedence
// over one derived from scheduledAt.
func CheckFreeze(scheduledAt *time.Time, snap *Snapshot, now time.Time) FreezeStatus {
	if scheduledAt == nil {
		return FreezeStatus{}
	}

	freezeAt := ComputeFreezeAt(*scheduledAt)
	if snap != nil && snap.FreezeAt != nil {
		freezeAt = *snap.FreezeAt
	}

	status := FreezeStatus{FreezeAt: &freezeAt}
	if !now.Before(freezeAt) {
		status.Frozen = true
		status.Message = frozenMessage
	}
	return status
}

// RequireRemoteVotingOpen fails with ErrVotingNotOpen before the early voting
// window and ErrVotingFrozen from the freeze instant on.
func RequireRemoteVotingOpen(scheduledAt *time.Time, snap Snapshot, now time.Time) error {
	if scheduledAt == nil {
		return ErrVotingNotOpen
	}
	if CheckFreeze(scheduledAt, &snap, now).Frozen {
		return ErrVotingFrozen
	}
	if now.Before(VotingOpensAt(*scheduledAt, snap.EarlyVotingDays)) {
		return ErrVotingNotOpen
	}
	return nil
}
