package dto

import (
	"time"

	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
)

// ResolutionDTO represents a resolution in API responses
type ResolutionDTO struct {
	ID             uint64                  `json:"id"`
	OrganizationID uint64                  `json:"organization_id"`
	Title          string                  `json:"title"`
	Content        string                  `json:"content"`
	Status         models.ResolutionStatus `json:"status"`
	Immutable      bool                    `json:"immutable"`
	CreatedBy      uint64                  `json:"created_by"`
	AdoptedAt      *time.Time              `json:"adopted_at"`
	AdoptedBy      *uint64                 `json:"adopted_by"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// ResolutionListResponse represents a paginated list of resolutions
type ResolutionListResponse struct {
	Resolutions []ResolutionDTO `json:"resolutions"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	TotalCount  int64           `json:"total_count"`
	TotalPages  int             `json:"total_pages"`
}

// ToResolutionDTO converts a Resolution model to ResolutionDTO
func ToResolutionDTO(resolution models.Resolution) ResolutionDTO {
	return ResolutionDTO{
		ID:             resolution.ID,
		OrganizationID: resolution.OrganizationID,
		Title:          resolution.Title,
		Content:        resolution.Content,
		Status:         resolution.Status,
		Immutable:      governance.IsResolutionTerminal(resolution.Status),
		CreatedBy:      resolution.CreatedBy,
		AdoptedAt:      resolution.AdoptedAt,
		AdoptedBy:      resolution.AdoptedBy,
		CreatedAt:      resolution.CreatedAt,
		UpdatedAt:      resolution.UpdatedAt,
	}
}

// ToResolutionListResponse converts a page of resolutions
func ToResolutionListResponse(resolutions []models.Resolution, page, pageSize int, totalCount int64) ResolutionListResponse {
	items := make([]ResolutionDTO, len(resolutions))
	for i, resolution := range resolutions {
		items[i] = ToResolutionDTO(resolution)
	}

	return ResolutionListResponse{
		Resolutions: items,
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages(totalCount, pageSize),
	}
}
