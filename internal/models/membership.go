package models

import "time"

type OrganizationRole string

const (
	RoleOwner  OrganizationRole = "owner"
	RoleAdmin  OrganizationRole = "admin"
	RoleMember OrganizationRole = "member"
)

// CanAdminister reports whether the role may change member standing and governance records.
func (r OrganizationRole) CanAdminister() bool {
	return r == RoleOwner || r == RoleAdmin
}

type MemberStatus string

const (
	MemberStatusPending   MemberStatus = "PENDING"
	MemberStatusActive    MemberStatus = "ACTIVE"
	MemberStatusSuspended MemberStatus = "SUSPENDED"
	MemberStatusLeft      MemberStatus = "LEFT"
)

type Membership struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	OrganizationID uint64           `gorm:"not null;uniqueIndex:idx_membership_org_user" json:"organization_id"`
	UserID         uint64           `gorm:"not null;uniqueIndex:idx_membership_org_user" json:"user_id"`
	Role           OrganizationRole `gorm:"type:varchar(20);not null" json:"role"`
	MemberStatus   MemberStatus     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"member_status"`
	StatusReason   string           `gorm:"type:text" json:"status_reason"`
	JoinedAt       time.Time        `json:"joined_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
