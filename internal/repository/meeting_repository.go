package repository

import (
	"time"

	"github.com/yukikurage/governance-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMeetingRepository is a GORM implementation of MeetingRepository
type GormMeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new MeetingRepository
func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &GormMeetingRepository{db: db}
}

func (r *GormMeetingRepository) Create(meeting *models.Meeting) error {
	return r.db.Create(meeting).Error
}

// FindByID finds a meeting by ID with optional preloading
func (r *GormMeetingRepository) FindByID(id uint64, preload ...string) (*models.Meeting, error) {
	query := r.db
	for _, p := range preload {
		if p == "AgendaItems" {
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("item_no ASC")
			})
			continue
		}
		query = query.Preload(p)
	}

	var meeting models.Meeting
	if err := query.First(&meeting, id).Error; err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *GormMeetingRepository) ListByOrganization(organizationID uint64) ([]models.Meeting, error) {
	var meetings []models.Meeting
	if err := r.db.Where("organization_id = ?", organizationID).
		Order("scheduled_at DESC, id DESC").
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// conditional applies updates only to rows matching where and reports
// ErrStaleState when none did.
func (r *GormMeetingRepository) conditional(where *gorm.DB, updates map[string]any) error {
	res := where.Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *GormMeetingRepository) UpdateSchedule(id uint64, scheduledAt *time.Time) error {
	return r.conditional(
		r.db.Model(&models.Meeting{}).Where("id = ? AND status = ?", id, models.MeetingStatusDraft),
		map[string]any{"scheduled_at": scheduledAt},
	)
}

// Publish writes status, snapshot and published_at in one statement so a
// published meeting never exists without its snapshot.
func (r *GormMeetingRepository) Publish(id uint64, snapshot datatypes.JSON, publishedAt time.Time) error {
	return r.conditional(
		r.db.Model(&models.Meeting{}).Where("id = ? AND status = ?", id, models.MeetingStatusDraft),
		map[string]any{
			"status":              models.MeetingStatusPublished,
			"governance_snapshot": snapshot,
			"published_at":        publishedAt,
		},
	)
}

func (r *GormMeetingRepository) SaveSnapshot(id uint64, expected models.MeetingStatus, snapshot datatypes.JSON) error {
	where := r.db.Model(&models.Meeting{}).Where("id = ? AND status = ?", id, expected)
	if expected != models.MeetingStatusDraft {
		where = where.Where("governance_snapshot IS NULL")
	}
	return r.conditional(where, map[string]any{"governance_snapshot": snapshot})
}

func (r *GormMeetingRepository) Complete(id uint64, completedAt time.Time) error {
	return r.conditional(
		r.db.Model(&models.Meeting{}).Where("id = ? AND status = ?", id, models.MeetingStatusPublished),
		map[string]any{
			"status":       models.MeetingStatusCompleted,
			"completed_at": completedAt,
		},
	)
}

func (r *GormMeetingRepository) SetProtocol(id uint64, ref string) error {
	return r.conditional(
		r.db.Model(&models.Meeting{}).Where("id = ? AND status <> ?", id, models.MeetingStatusCompleted),
		map[string]any{"protocol_ref": ref},
	)
}

func (r *GormMeetingRepository) AddAgendaItem(item *models.AgendaItem) error {
	return r.db.Create(item).Error
}

// ListAgendaItems lists agenda items in position order
func (r *GormMeetingRepository) ListAgendaItems(meetingID uint64) ([]models.AgendaItem, error) {
	var items []models.AgendaItem
	if err := r.db.Preload("Resolution").
		Where("meeting_id = ?", meetingID).
		Order("item_no ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormMeetingRepository) FindAgendaItemByResolution(resolutionID uint64) (*models.AgendaItem, error) {
	var item models.AgendaItem
	if err := r.db.Where("resolution_id = ?", resolutionID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RecordAttendance creates or replaces an attendance record
func (r *GormMeetingRepository) RecordAttendance(attendance *models.Attendance) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "membership_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"mode", "recorded_at"}),
		}).
		Create(attendance).Error
}

func (r *GormMeetingRepository) CountAttendance(meetingID uint64) (int64, int64, error) {
	var rows []struct {
		Mode  models.AttendanceMode
		Total int64
	}
	if err := r.db.Model(&models.Attendance{}).
		Select("mode, COUNT(*) AS total").
		Where("meeting_id = ?", meetingID).
		Group("mode").
		Scan(&rows).Error; err != nil {
		return 0, 0, err
	}

	var inPerson, remote int64
	for _, row := range rows {
		switch row.Mode {
		case models.AttendanceInPerson:
			inPerson = row.Total
		case models.AttendanceRemote:
			remote = row.Total
		}
	}
	return inPerson, remote, nil
}
