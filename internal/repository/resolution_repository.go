package repository

import (
	"github.com/yukikurage/governance-api/internal/database"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/utils"
	"gorm.io/gorm"
)

// GormResolutionRepository is a GORM implementation of ResolutionRepository
type GormResolutionRepository struct {
	db *gorm.DB
}

// NewResolutionRepository creates a new ResolutionRepository
func NewResolutionRepository(db *gorm.DB) ResolutionRepository {
	return &GormResolutionRepository{db: db}
}

func (r *GormResolutionRepository) Create(resolution *models.Resolution) error {
	return r.db.Create(resolution).Error
}

func (r *GormResolutionRepository) FindByID(id uint64) (*models.Resolution, error) {
	var resolution models.Resolution
	if err := r.db.First(&resolution, id).Error; err != nil {
		return nil, err
	}
	return &resolution, nil
}

// List retrieves resolutions with filtering and pagination
func (r *GormResolutionRepository) List(filter ResolutionFilter) ([]models.Resolution, int64, error) {
	query := r.db.Model(&models.Resolution{}).Where("organization_id = ?", filter.OrganizationID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC, id DESC").
		Scopes(database.Paginate(utils.Page{Number: filter.Page, Size: filter.PageSize}))

	var resolutions []models.Resolution
	if err := listQuery.Find(&resolutions).Error; err != nil {
		return nil, 0, err
	}
	return resolutions, total, nil
}

// UpdateFields is conditional on the status the caller validated against
func (r *GormResolutionRepository) UpdateFields(id uint64, expected models.ResolutionStatus, fields map[string]any) error {
	res := r.db.Model(&models.Resolution{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// UpdateStatus is a compare-and-swap on status; two concurrent decisions
// cannot both succeed.
func (r *GormResolutionRepository) UpdateStatus(id uint64, expected, next models.ResolutionStatus, decision *ResolutionDecision) error {
	updates := map[string]any{"status": next}
	if decision != nil {
		updates["adopted_at"] = decision.AdoptedAt
		updates["adopted_by"] = decision.AdoptedBy
	}

	res := r.db.Model(&models.Resolution{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
