package services

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/repository"
	"github.com/yukikurage/governance-api/internal/telemetry"
	"gorm.io/datatypes"
)

// snapshotReader resolves the governance snapshot that applies to a meeting.
type snapshotReader struct {
	orgRepo repository.OrganizationRepository
}

// loadConfig reads the organization's current governance configuration.
func (r snapshotReader) loadConfig(organizationID uint64) (governance.Config, error) {
	kv, err := r.orgRepo.GetSettings(organizationID)
	if err != nil {
		return governance.Config{}, upstream("organization governance configuration", err)
	}

	cfg, invalid := governance.ParseConfig(kv)
	if len(invalid) > 0 {
		slog.Warn("ignoring unparsable governance settings",
			"organization_id", organizationID,
			"keys", invalid,
		)
	}
	return cfg, nil
}

// resolve returns the stored snapshot for published meetings and a fresh
// computation for drafts. The configuration is only read when needed.
func (r snapshotReader) resolve(meeting *models.Meeting) (governance.SnapshotView, error) {
	stored, err := decodeSnapshot(meeting.GovernanceSnapshot)
	if err != nil {
		return governance.SnapshotView{}, upstream("stored governance snapshot", err)
	}

	var cfg governance.Config
	if !governance.IsPublished(meeting.Status) || stored == nil {
		if cfg, err = r.loadConfig(meeting.OrganizationID); err != nil {
			return governance.SnapshotView{}, err
		}
	}

	view := governance.ResolveSnapshot(meeting.Status, stored, cfg, meeting.ScheduledAt)
	if view.Kind == governance.SnapshotFallback {
		telemetry.SnapshotFallbackTotal.Inc()
		slog.Error("published meeting has no stored governance snapshot, using current configuration",
			"meeting_id", meeting.ID,
			"organization_id", meeting.OrganizationID,
			"status", meeting.Status,
			"fallback", true,
		)
	}
	return view, nil
}

func hasSnapshot(raw datatypes.JSON) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func decodeSnapshot(raw datatypes.JSON) (*governance.Snapshot, error) {
	if !hasSnapshot(raw) {
		return nil, nil
	}
	var snap governance.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func encodeSnapshot(snap governance.Snapshot) (datatypes.JSON, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
