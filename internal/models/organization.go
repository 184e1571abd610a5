package models

import (
	"time"

	"gorm.io/gorm"
)

type Organization struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	InviteCode string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members  []Membership          `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Settings []OrganizationSetting `gorm:"foreignKey:OrganizationID" json:"settings,omitempty"`
	Meetings []Meeting             `gorm:"foreignKey:OrganizationID" json:"meetings,omitempty"`
}

// OrganizationSetting is one key of an organization's governance configuration.
type OrganizationSetting struct {
	OrganizationID uint64    `gorm:"primarykey" json:"organization_id"`
	Key            string    `gorm:"column:setting_key;primarykey;type:varchar(64)" json:"key"`
	Value          string    `gorm:"type:varchar(255);not null" json:"value"`
	UpdatedAt      time.Time `json:"updated_at"`
}
