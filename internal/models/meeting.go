package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MeetingStatus string

const (
	MeetingStatusDraft     MeetingStatus = "DRAFT"
	MeetingStatusPublished MeetingStatus = "PUBLISHED"
	MeetingStatusCompleted MeetingStatus = "COMPLETED"
)

type Meeting struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	OrganizationID     uint64         `gorm:"not null;index" json:"organization_id"`
	Title              string         `gorm:"type:varchar(255);not null" json:"title"`
	ScheduledAt        *time.Time     `json:"scheduled_at"`
	Status             MeetingStatus  `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	GovernanceSnapshot datatypes.JSON `json:"governance_snapshot,omitempty"`
	ProtocolRef        *string        `gorm:"type:varchar(512)" json:"protocol_ref"`
	PublishedAt        *time.Time     `json:"published_at"`
	CompletedAt        *time.Time     `json:"completed_at"`
	CreatedBy          uint64         `gorm:"not null" json:"created_by"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	AgendaItems  []AgendaItem `gorm:"foreignKey:MeetingID" json:"agenda_items,omitempty"`
}

// AgendaItem is one numbered position of a meeting agenda. A resolution is
// decided at exactly one agenda position.
type AgendaItem struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	MeetingID    uint64    `gorm:"not null;uniqueIndex:idx_agenda_meeting_item" json:"meeting_id"`
	ItemNo       int       `gorm:"not null;uniqueIndex:idx_agenda_meeting_item" json:"item_no"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	ResolutionID *uint64   `gorm:"uniqueIndex" json:"resolution_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Resolution *Resolution `gorm:"foreignKey:ResolutionID" json:"resolution,omitempty"`
}

type AttendanceMode string

const (
	AttendanceInPerson AttendanceMode = "IN_PERSON"
	AttendanceRemote   AttendanceMode = "REMOTE"
)

type Attendance struct {
	MeetingID    uint64         `gorm:"primarykey" json:"meeting_id"`
	MembershipID uint64         `gorm:"primarykey" json:"membership_id"`
	Mode         AttendanceMode `gorm:"type:varchar(20);not null" json:"mode"`
	RecordedAt   time.Time      `json:"recorded_at"`
}
