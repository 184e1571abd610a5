package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/repository"
	"github.com/yukikurage/governance-api/internal/telemetry"
	"gorm.io/gorm"
)

var (
	ErrResolutionNotFound     = errors.New("resolution not found")
	ErrInvalidResolutionTitle = errors.New("resolution title cannot be empty")
)

const resolutionEntity = "resolution"

// ResolutionService manages resolutions and their lifecycle.
type ResolutionService struct {
	resolutionRepo repository.ResolutionRepository
	meetingRepo    repository.MeetingRepository
	now            Clock
}

// NewResolutionService creates a new ResolutionService.
func NewResolutionService(resolutionRepo repository.ResolutionRepository, meetingRepo repository.MeetingRepository) *ResolutionService {
	return &ResolutionService{
		resolutionRepo: resolutionRepo,
		meetingRepo:    meetingRepo,
		now:            time.Now,
	}
}

// CreateResolutionInput represents parameters to draft a resolution.
type CreateResolutionInput struct {
	OrganizationID uint64
	Title          string
	Content        string
	CreatedBy      uint64
}

// CreateResolution drafts a new resolution.
func (s *ResolutionService) CreateResolution(input CreateResolutionInput) (*models.Resolution, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidResolutionTitle
	}

	resolution := &models.Resolution{
		OrganizationID: input.OrganizationID,
		Title:          title,
		Content:        input.Content,
		Status:         models.ResolutionStatusDraft,
		CreatedBy:      input.CreatedBy,
	}
	if err := s.resolutionRepo.Create(resolution); err != nil {
		return nil, fmt.Errorf("failed to create resolution: %w", err)
	}
	return resolution, nil
}

// GetResolution returns a resolution that belongs to the organization.
func (s *ResolutionService) GetResolution(orgID, id uint64) (*models.Resolution, error) {
	resolution, err := s.resolutionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResolutionNotFound
		}
		return nil, fmt.Errorf("failed to find resolution: %w", err)
	}
	if resolution.OrganizationID != orgID {
		return nil, ErrResolutionNotFound
	}
	return resolution, nil
}

// ListResolutions lists resolutions of an organization.
func (s *ResolutionService) ListResolutions(filter repository.ResolutionFilter) ([]models.Resolution, int64, error) {
	resolutions, total, err := s.resolutionRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list resolutions: %w", err)
	}
	return resolutions, total, nil
}

// UpdateResolutionInput holds the fields to change; nil means unchanged.
type UpdateResolutionInput struct {
	Title   *string
	Content *string
}

// UpdateResolution edits a resolution that has not reached a final outcome.
func (s *ResolutionService) UpdateResolution(orgID, id uint64, input UpdateResolutionInput) (*models.Resolution, error) {
	resolution, err := s.GetResolution(orgID, id)
	if err != nil {
		return nil, err
	}

	proposed := make(map[string]any)
	if input.Title != nil {
		proposed["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		proposed["content"] = *input.Content
	}

	if err := governance.ValidateResolutionUpdate(resolution.Status, proposed); err != nil {
		slog.Warn("resolution update rejected", "resolution_id", id, "status", resolution.Status, "error", err)
		return nil, err
	}
	if len(proposed) == 0 {
		return resolution, nil
	}
	if title, ok := proposed["title"]; ok && title == "" {
		return nil, ErrInvalidResolutionTitle
	}

	if err := s.resolutionRepo.UpdateFields(id, resolution.Status, proposed); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to update resolution: %w", err)
	}

	return s.GetResolution(orgID, id)
}

// TransitionResolutionInput describes a requested status change.
type TransitionResolutionInput struct {
	OrganizationID uint64
	ResolutionID   uint64
	Target         models.ResolutionStatus
	ExpectedStatus *models.ResolutionStatus
	ActorID        uint64
}

// TransitionResolution moves a resolution along its lifecycle. Deciding a
// resolution stamps who adopted it and when, in the same write as the status.
func (s *ResolutionService) TransitionResolution(input TransitionResolutionInput) (*models.Resolution, error) {
	resolution, err := s.GetResolution(input.OrganizationID, input.ResolutionID)
	if err != nil {
		return nil, err
	}

	current := resolution.Status
	if input.ExpectedStatus != nil && *input.ExpectedStatus != current {
		recordTransition(resolutionEntity, current, input.Target, telemetry.OutcomeConflict)
		return nil, ErrConcurrentModification
	}

	if err := governance.RequireResolutionTransition(current, input.Target); err != nil {
		recordTransition(resolutionEntity, current, input.Target, telemetry.OutcomeRejected)
		slog.Warn("resolution transition rejected",
			"resolution_id", resolution.ID,
			"from", current,
			"to", input.Target,
			"actor_id", input.ActorID,
			"error", err,
		)
		return nil, err
	}

	if current == input.Target {
		return resolution, nil
	}

	var decision *repository.ResolutionDecision
	if governance.IsResolutionTerminal(input.Target) {
		if err := s.requireAgendaUnlocked(resolution.ID); err != nil {
			recordTransition(resolutionEntity, current, input.Target, telemetry.OutcomeRejected)
			return nil, err
		}
		decision = &repository.ResolutionDecision{AdoptedAt: s.now().UTC(), AdoptedBy: input.ActorID}
	}

	if err := s.resolutionRepo.UpdateStatus(resolution.ID, current, input.Target, decision); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			recordTransition(resolutionEntity, current, input.Target, telemetry.OutcomeConflict)
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to update resolution status: %w", err)
	}

	recordTransition(resolutionEntity, current, input.Target, telemetry.OutcomeApplied)
	slog.Info("resolution transition applied",
		"resolution_id", resolution.ID,
		"organization_id", resolution.OrganizationID,
		"from", current,
		"to", input.Target,
		"actor_id", input.ActorID,
	)

	return s.GetResolution(input.OrganizationID, input.ResolutionID)
}

// requireAgendaUnlocked fails when the resolution sits on a substantive agenda
// item whose meeting has not approved its procedural items yet.
func (s *ResolutionService) requireAgendaUnlocked(resolutionID uint64) error {
	item, err := s.meetingRepo.FindAgendaItemByResolution(resolutionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return upstream("agenda item", err)
	}
	if governance.IsProcedural(item.ItemNo) {
		return nil
	}

	items, err := s.meetingRepo.ListAgendaItems(item.MeetingID)
	if err != nil {
		return upstream("agenda items", err)
	}
	if governance.IsAgendaItemLocked(item.ItemNo, agendaFacts(items)) {
		return fmt.Errorf("agenda item %d: %w", item.ItemNo, governance.ErrAgendaItemLocked)
	}
	return nil
}
