package governance

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/governance-api/internal/models"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, invalid := ParseConfig(nil)
	assert.Empty(t, invalid)
	assert.Equal(t, 0, cfg.EarlyVotingDays)
	assert.Equal(t, 14, cfg.MeetingNoticeDays)
	assert.Equal(t, 50.0, cfg.QuorumPercentage)
	assert.True(t, cfg.Eligibility.CheckSuspensions)
}

func TestParseConfig_Values(t *testing.T) {
	cfg, invalid := ParseConfig(map[string]string{
		KeyEarlyVotingDays:   "7",
		KeyMeetingNoticeDays: "21",
		KeyQuorumPercentage:  "66.5",
		KeyMaxAllowedDebt:    "120.50",
		KeyCheckSuspensions:  "false",
		KeyCheckArrears:      "true",
	})
	assert.Empty(t, invalid)
	assert.Equal(t, 7, cfg.EarlyVotingDays)
	assert.Equal(t, 21, cfg.MeetingNoticeDays)
	assert.Equal(t, 66.5, cfg.QuorumPercentage)
	assert.Equal(t, 120.5, cfg.Eligibility.MaxAllowedDebt)
	assert.False(t, cfg.Eligibility.CheckSuspensions)
	assert.True(t, cfg.Eligibility.CheckArrears)
}

func TestParseConfig_InvalidFallsBack(t *testing.T) {
	cfg, invalid := ParseConfig(map[string]string{
		KeyEarlyVotingDays:  "soon",
		KeyQuorumPercentage: "250",
		KeyCheckArrears:     "maybe",
	})
	assert.ElementsMatch(t, []string{KeyEarlyVotingDays, KeyCheckArrears}, invalid)
	assert.Equal(t, DefaultEarlyVotingDays, cfg.EarlyVotingDays)
	assert.Equal(t, 100.0, cfg.QuorumPercentage)
	assert.False(t, cfg.Eligibility.CheckArrears)
}

func TestComputeSnapshot_DraftIsIdempotent(t *testing.T) {
	cfg, _ := ParseConfig(map[string]string{KeyEarlyVotingDays: "3"})

	first, err := json.Marshal(ComputeSnapshot(cfg, nil))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(ComputeSnapshot(cfg, nil))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeSnapshot_FreezeAtFromSchedule(t *testing.T) {
	at := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	snap := ComputeSnapshot(DefaultConfig(), &at)

	require.NotNil(t, snap.FreezeAt)
	assert.True(t, snap.FreezeAt.Equal(at))
	assert.Nil(t, snap.CapturedAt)
}

func TestCanPersistSnapshot(t *testing.T) {
	assert.NoError(t, CanPersistSnapshot(models.MeetingStatusDraft, false))
	assert.NoError(t, CanPersistSnapshot(models.MeetingStatusDraft, true))
	assert.NoError(t, CanPersistSnapshot(models.MeetingStatusPublished, false))
	assert.True(t, errors.Is(CanPersistSnapshot(models.MeetingStatusPublished, true), ErrSnapshotFrozen))
	assert.True(t, errors.Is(CanPersistSnapshot(models.MeetingStatusCompleted, true), ErrSnapshotFrozen))
}

func TestStampSnapshot_KeepsCapturedAt(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := earlier.Add(48 * time.Hour)

	stamped := StampSnapshot(Snapshot{}, SourceManual, now)
	require.NotNil(t, stamped.CapturedAt)
	assert.True(t, stamped.CapturedAt.Equal(now))
	assert.Equal(t, SourceManual, stamped.Source)

	kept := StampSnapshot(Snapshot{CapturedAt: &earlier}, SourcePublish, now)
	assert.True(t, kept.CapturedAt.Equal(earlier))
}

func TestResolveSnapshot(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	oldCfg, _ := ParseConfig(map[string]string{KeyQuorumPercentage: "50"})
	newCfg, _ := ParseConfig(map[string]string{KeyQuorumPercentage: "75"})
	frozen := StampSnapshot(ComputeSnapshot(oldCfg, &at), SourcePublish, at.Add(-30*24*time.Hour))

	draft := ResolveSnapshot(models.MeetingStatusDraft, &frozen, newCfg, nil)
	assert.Equal(t, SnapshotDraft, draft.Kind)
	assert.Equal(t, 75.0, draft.Snapshot.QuorumPercentage)
	assert.False(t, draft.Binding())

	published := ResolveSnapshot(models.MeetingStatusPublished, &frozen, newCfg, &at)
	assert.Equal(t, SnapshotPublished, published.Kind)
	assert.Equal(t, 50.0, published.Snapshot.QuorumPercentage)
	assert.True(t, published.Binding())

	fallback := ResolveSnapshot(models.MeetingStatusCompleted, nil, newCfg, &at)
	assert.Equal(t, SnapshotFallback, fallback.Kind)
	assert.Equal(t, 75.0, fallback.Snapshot.QuorumPercentage)
}
