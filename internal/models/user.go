package models

import (
	"time"

	"gorm.io/gorm"
)

// User is owned by the surrounding application; it is mirrored here so that
// memberships and adopted resolutions can reference an actor.
type User struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Username  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Memberships []Membership `gorm:"foreignKey:UserID" json:"-"`
}
