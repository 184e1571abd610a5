package models

import "time"

type ResolutionStatus string

const (
	ResolutionStatusDraft    ResolutionStatus = "DRAFT"
	ResolutionStatusProposed ResolutionStatus = "PROPOSED"
	ResolutionStatusApproved ResolutionStatus = "APPROVED"
	ResolutionStatusRejected ResolutionStatus = "REJECTED"
)

// Resolution has no DeletedAt: once proposed it is never removed.
type Resolution struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	OrganizationID uint64           `gorm:"not null;index" json:"organization_id"`
	Title          string           `gorm:"type:varchar(255);not null" json:"title"`
	Content        string           `gorm:"type:text" json:"content"`
	Status         ResolutionStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	CreatedBy      uint64           `gorm:"not null" json:"created_by"`
	AdoptedAt      *time.Time       `json:"adopted_at"`
	AdoptedBy      *uint64          `json:"adopted_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}
