package repository

import (
	"github.com/yukikurage/governance-api/internal/models"
	"gorm.io/gorm"
)

// GormMembershipRepository is a GORM implementation of MembershipRepository
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: db}
}

func (r *GormMembershipRepository) Create(member *models.Membership) error {
	return r.db.Create(member).Error
}

func (r *GormMembershipRepository) FindByID(id uint64) (*models.Membership, error) {
	var member models.Membership
	if err := r.db.Preload("User").First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByOrganizationAndUser finds a specific organization member
func (r *GormMembershipRepository) FindByOrganizationAndUser(organizationID, userID uint64) (*models.Membership, error) {
	var member models.Membership
	if err := r.db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByOrganization lists all members of an organization
func (r *GormMembershipRepository) ListByOrganization(organizationID uint64) ([]models.Membership, error) {
	var members []models.Membership
	if err := r.db.Preload("User").
		Where("organization_id = ?", organizationID).
		Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListByUser lists all organizations a user is a member of
func (r *GormMembershipRepository) ListByUser(userID uint64) ([]models.Membership, error) {
	var memberships []models.Membership
	if err := r.db.Preload("Organization").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *GormMembershipRepository) CountByStatus(organizationID uint64, status models.MemberStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("organization_id = ? AND member_status = ?", organizationID, status).
		Count(&count).Error
	return count, err
}

// UpdateStatus is a compare-and-swap on member_status
func (r *GormMembershipRepository) UpdateStatus(id uint64, expected, next models.MemberStatus, reason string) error {
	res := r.db.Model(&models.Membership{}).
		Where("id = ? AND member_status = ?", id, expected).
		Updates(map[string]any{
			"member_status": next,
			"status_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
