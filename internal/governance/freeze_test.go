package governance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFreeze_Monotonic(t *testing.T) {
	at := time.Date(2026, 6, 20, 17, 0, 0, 0, time.UTC)

	offsets := []time.Duration{-72 * time.Hour, -time.Hour, -time.Second, -time.Nanosecond}
	for _, d := range offsets {
		status := CheckFreeze(&at, nil, at.Add(d))
		assert.False(t, status.Frozen, "offset %s", d)
		assert.Empty(t, status.Message)
		require.NotNil(t, status.FreezeAt)
		assert.True(t, status.FreezeAt.Equal(at))
	}

	for _, d := range []time.Duration{0, time.Nanosecond, time.Minute, 24 * time.Hour} {
		status := CheckFreeze(&at, nil, at.Add(d))
		assert.True(t, status.Frozen, "offset %s", d)
		assert.NotEmpty(t, status.Message)
	}
}

func TestCheckFreeze_DraftNeverFrozen(t *testing.T) {
	status := CheckFreeze(nil, nil, time.Now())
	assert.False(t, status.Frozen)
	assert.Nil(t, status.FreezeAt)

	// A stale freeze instant left in the snapshot does not freeze an unscheduled meeting.
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	status = CheckFreeze(nil, &Snapshot{FreezeAt: &past}, time.Now())
	assert.False(t, status.Frozen)
	assert.Nil(t, status.FreezeAt)
	assert.Empty(t, status.Message)
}

func TestCheckFreeze_PrefersSnapshot(t *testing.T) {
	scheduled := time.Date(2026, 6, 20, 17, 0, 0, 0, time.UTC)
	frozenAt := scheduled.Add(-time.Hour)
	snap := &Snapshot{FreezeAt: &frozenAt}

	status := CheckFreeze(&scheduled, snap, frozenAt.Add(time.Minute))
	assert.True(t, status.Frozen)
	assert.True(t, status.FreezeAt.Equal(frozenAt))
}

func TestRequireRemoteVotingOpen(t *testing.T) {
	at := time.Date(2026, 6, 20, 17, 0, 0, 0, time.UTC)
	snap := Snapshot{EarlyVotingDays: 3}

	assert.True(t, errors.Is(RequireRemoteVotingOpen(nil, snap, at), ErrVotingNotOpen))
	assert.True(t, errors.Is(RequireRemoteVotingOpen(&at, snap, at.AddDate(0, 0, -4)), ErrVotingNotOpen))
	assert.NoError(t, RequireRemoteVotingOpen(&at, snap, at.AddDate(0, 0, -3)))
	assert.NoError(t, RequireRemoteVotingOpen(&at, snap, at.Add(-time.Second)))
	assert.True(t, errors.Is(RequireRemoteVotingOpen(&at, snap, at), ErrVotingFrozen))

	// Without an early voting window remote voting never opens.
	assert.True(t, errors.Is(RequireRemoteVotingOpen(&at, Snapshot{}, at.Add(-time.Second)), ErrVotingNotOpen))
}
