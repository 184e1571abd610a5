package governance

import (
	"time"

	"github.com/spf13/cast"
	"github.com/yukikurage/governance-api/internal/models"
)

// Governance configuration keys as stored per organization.
const (
	KeyEarlyVotingDays   = "early_voting_days"
	KeyMeetingNoticeDays = "meeting_notice_days"
	KeyQuorumPercentage  = "quorum_percentage"
	KeyMaxAllowedDebt    = "max_allowed_debt"
	KeyCheckSuspensions  = "check_suspensions"
	KeyCheckArrears      = "check_arrears"
)

const (
	DefaultEarlyVotingDays   = 0
	DefaultMeetingNoticeDays = 14
	DefaultQuorumPercentage  = 50
)

// ConfigKeys lists every recognised governance configuration key.
func ConfigKeys() []string {
	return []string{
		KeyEarlyVotingDays,
		KeyMeetingNoticeDays,
		KeyQuorumPercentage,
		KeyMaxAllowedDebt,
		KeyCheckSuspensions,
		KeyCheckArrears,
	}
}

type SnapshotSource string

const (
	SourcePublish SnapshotSource = "PUBLISH"
	SourceManual  SnapshotSource = "MANUAL"
)

// EligibilityRules decide which members may vote. CheckSuspensions is applied by
// IsEligibleToVote. MaxAllowedDebt and CheckArrears are frozen with the snapshot
// for the application that keeps member balances; this service holds no
// financial data and does not evaluate them.
type EligibilityRules struct {
	MaxAllowedDebt   float64 `json:"max_allowed_debt"`
	CheckSuspensions bool    `json:"check_suspensions"`
	CheckArrears     bool    `json:"check_arrears"`
}

// Config is an organization's governance configuration as it exists right now.
type Config struct {
	EarlyVotingDays   int
	MeetingNoticeDays int
	QuorumPercentage  float64
	Eligibility       EligibilityRules
}

// DefaultConfig is the configuration of an organization that never set any key.
func DefaultConfig() Config {
	return Config{
		EarlyVotingDays:   DefaultEarlyVotingDays,
		MeetingNoticeDays: DefaultMeetingNoticeDays,
		QuorumPercentage:  DefaultQuorumPercentage,
		Eligibility: EligibilityRules{
			MaxAllowedDebt:   0,
			CheckSuspensions: true,
			CheckArrears:     false,
		},
	}
}

// ParseConfig reads the key-value bundle. Missing or unparsable values fall back
// to defaults, negative numbers are clamped to zero. The returned slice names keys
// whose value could not be parsed.
func ParseConfig(kv map[string]string) (Config, []string) {
	cfg := DefaultConfig()
	var invalid []string

	intValue := func(key string, dst *int) {
		raw, ok := kv[key]
		if !ok {
			return
		}
		v, err := cast.ToIntE(raw)
		if err != nil {
			invalid = append(invalid, key)
			return
		}
		*dst = max(v, 0)
	}
	floatValue := func(key string, dst *float64) {
		raw, ok := kv[key]
		if !ok {
			return
		}
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			invalid = append(invalid, key)
			return
		}
		*dst = max(v, 0)
	}
	boolValue := func(key string, dst *bool) {
		raw, ok := kv[key]
		if !ok {
			return
		}
		v, err := cast.ToBoolE(raw)
		if err != nil {
			invalid = append(invalid, key)
			return
		}
		*dst = v
	}

	intValue(KeyEarlyVotingDays, &cfg.EarlyVotingDays)
	intValue(KeyMeetingNoticeDays, &cfg.MeetingNoticeDays)
	floatValue(KeyQuorumPercentage, &cfg.QuorumPercentage)
	floatValue(KeyMaxAllowedDebt, &cfg.Eligibility.MaxAllowedDebt)
	boolValue(KeyCheckSuspensions, &cfg.Eligibility.CheckSuspensions)
	boolValue(KeyCheckArrears, &cfg.Eligibility.CheckArrears)

	if cfg.QuorumPercentage > 100 {
		cfg.QuorumPercentage = 100
	}
	return cfg, invalid
}

// Snapshot is the governance parameter bundle bound to a meeting.
type Snapshot struct {
	EarlyVotingDays   int              `json:"early_voting_days"`
	MeetingNoticeDays int              `json:"meeting_notice_days"`
	QuorumPercentage  float64          `json:"quorum_percentage"`
	Eligibility       EligibilityRules `json:"eligibility"`
	FreezeAt          *time.Time       `json:"freeze_at,omitempty"`
	CapturedAt        *time.Time       `json:"captured_at,omitempty"`
	Source            SnapshotSource   `json:"snapshot_source,omitempty"`
}

// ComputeSnapshot extracts the snapshot from cfg. When scheduledAt is known the
// freeze instant is derived from it. CapturedAt and Source are left for the
// persisting caller.
func ComputeSnapshot(cfg Config, scheduledAt *time.Time) Snapshot {
	snap := Snapshot{
		EarlyVotingDays:   cfg.EarlyVotingDays,
		MeetingNoticeDays: cfg.MeetingNoticeDays,
		QuorumPercentage:  cfg.QuorumPercentage,
		Eligibility:       cfg.Eligibility,
	}
	if scheduledAt != nil {
		freezeAt := ComputeFreezeAt(*scheduledAt)
		snap.FreezeAt = &freezeAt
	}
	return snap
}

// IsPublished reports whether a meeting in status s is past its publication point.
func IsPublished(s models.MeetingStatus) bool {
	return s == models.MeetingStatusPublished || s == models.MeetingStatusCompleted
}

// CanPersistSnapshot fails with ErrSnapshotFrozen once the meeting is published
// and already holds a snapshot.
func CanPersistSnapshot(status models.MeetingStatus, hasSnapshot bool) error {
	if IsPublished(status) && hasSnapshot {
		return ErrSnapshotFrozen
	}
	return nil
}

// StampSnapshot prepares snap for writing: CapturedAt is kept if already set.
func StampSnapshot(snap Snapshot, source SnapshotSource, now time.Time) Snapshot {
	if snap.CapturedAt == nil {
		capturedAt := now.UTC()
		snap.CapturedAt = &capturedAt
	}
	snap.Source = source
	return snap
}

// SnapshotKind tags how a snapshot read was produced.
type SnapshotKind string

const (
	// SnapshotDraft was recomputed from the current configuration and binds nothing.
	SnapshotDraft SnapshotKind = "DRAFT"
	// SnapshotPublished is the value frozen at publication.
	SnapshotPublished SnapshotKind = "PUBLISHED"
	// SnapshotFallback was recomputed for a published meeting that has no stored
	// snapshot. It exists for data repair only.
	SnapshotFallback SnapshotKind = "FALLBACK"
)

// SnapshotView is the tagged result of reading a meeting's snapshot.
type SnapshotView struct {
	Kind     SnapshotKind
	Snapshot Snapshot
}

// Binding reports whether the snapshot is the frozen historical record.
func (v SnapshotView) Binding() bool {
	return v.Kind == SnapshotPublished
}

// ResolveSnapshot picks the snapshot that applies to a meeting. Drafts always get a
// fresh computation; published meetings get their stored value.
func ResolveSnapshot(status models.MeetingStatus, stored *Snapshot, cfg Config, scheduledAt *time.Time) SnapshotView {
	if !IsPublished(status) {
		return SnapshotView{Kind: SnapshotDraft, Snapshot: ComputeSnapshot(cfg, scheduledAt)}
	}
	if stored != nil {
		return SnapshotView{Kind: SnapshotPublished, Snapshot: *stored}
	}
	return SnapshotView{Kind: SnapshotFallback, Snapshot: ComputeSnapshot(cfg, scheduledAt)}
}
