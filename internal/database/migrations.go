package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/governance-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes used by the governance lookups.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model any
		name  string
		sql   string
	}{
		// Open-vote count per meeting during completion checks
		{&models.Vote{}, "idx_votes_meeting_kind_status", "CREATE INDEX idx_votes_meeting_kind_status ON votes (meeting_id, kind, status)"},

		// Active-member count for quorum
		{&models.Membership{}, "idx_memberships_org_status", "CREATE INDEX idx_memberships_org_status ON memberships (organization_id, member_status)"},

		// Resolution listing per organization and status
		{&models.Resolution{}, "idx_resolutions_org_status", "CREATE INDEX idx_resolutions_org_status ON resolutions (organization_id, status)"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name)
	}

	return nil
}
