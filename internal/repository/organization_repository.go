package repository

import (
	"time"

	"github.com/yukikurage/governance-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateWithOwner creates an organization and its owner membership in a transaction
func (r *GormOrganizationRepository) CreateWithOwner(org *models.Organization, owner *models.Membership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		owner.OrganizationID = org.ID
		return tx.Create(owner).Error
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByInviteCode finds an organization by invite code
func (r *GormOrganizationRepository) FindByInviteCode(code string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("invite_code = ?", code).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// GetSettings returns the governance configuration of an organization
func (r *GormOrganizationRepository) GetSettings(organizationID uint64) (map[string]string, error) {
	var rows []models.OrganizationSetting
	if err := r.db.Where("organization_id = ?", organizationID).Find(&rows).Error; err != nil {
		return nil, err
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// SaveSettings upserts the given governance configuration keys
func (r *GormOrganizationRepository) SaveSettings(organizationID uint64, settings map[string]string) error {
	if len(settings) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.OrganizationSetting, 0, len(settings))
	for key, value := range settings {
		rows = append(rows, models.OrganizationSetting{
			OrganizationID: organizationID,
			Key:            key,
			Value:          value,
			UpdatedAt:      now,
		})
	}

	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rows).Error
}
