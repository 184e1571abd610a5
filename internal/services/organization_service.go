package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/repository"
	"github.com/yukikurage/governance-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrUserNotFound               = errors.New("user not found")
	ErrInvalidOrganizationName    = errors.New("organization name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyOrganizationMember  = errors.New("user is already a member of this organization")
	ErrUnknownSettingKey          = errors.New("unknown governance setting")
	ErrInvalidSettingValue        = errors.New("invalid governance setting value")
)

const (
	founderReason     = "Founding member of the organization"
	joinRequestReason = "Join request"
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	orgRepo    repository.OrganizationRepository
	memberRepo repository.MembershipRepository
	userRepo   repository.UserRepository
	now        Clock
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(
	orgRepo repository.OrganizationRepository,
	memberRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
) *OrganizationService {
	return &OrganizationService{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

// requireUser checks that the session's user exists in the mirrored users table.
func (s *OrganizationService) requireUser(userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	return nil
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name    string
	OwnerID uint64
}

// CreateOrganization creates a new organization with its creator as an active owner.
func (s *OrganizationService) CreateOrganization(input CreateOrganizationInput) (*models.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidOrganizationName
	}
	if err := s.requireUser(input.OwnerID); err != nil {
		return nil, err
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	org := &models.Organization{
		Name:       name,
		InviteCode: inviteCode,
	}
	owner := &models.Membership{
		UserID:       input.OwnerID,
		Role:         models.RoleOwner,
		MemberStatus: models.MemberStatusActive,
		StatusReason: founderReason,
		JoinedAt:     s.now(),
	}

	if err := s.orgRepo.CreateWithOwner(org, owner); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	slog.Info("organization created", "organization_id", org.ID, "owner_id", input.OwnerID)
	return org, nil
}

// ListOrganizationsForUser returns the memberships of a user with organizations loaded.
func (s *OrganizationService) ListOrganizationsForUser(userID uint64) ([]models.Membership, error) {
	memberships, err := s.memberRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

// GetOrganization returns an organization by ID.
func (s *OrganizationService) GetOrganization(orgID uint64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

// GetOrganizationWithMembers returns an organization and all of its members.
func (s *OrganizationService) GetOrganizationWithMembers(orgID uint64) (*models.Organization, []models.Membership, error) {
	org, err := s.GetOrganization(orgID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.memberRepo.ListByOrganization(orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	return org, members, nil
}

// UpdateOrganizationName updates an organization's name.
func (s *OrganizationService) UpdateOrganizationName(orgID uint64, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidOrganizationName
	}

	org, err := s.GetOrganization(orgID)
	if err != nil {
		return nil, err
	}

	org.Name = name
	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// RegenerateInviteCode generates a new invite code for the organization.
func (s *OrganizationService) RegenerateInviteCode(orgID uint64) (*models.Organization, error) {
	org, err := s.GetOrganization(orgID)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	org.InviteCode = code
	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	return org, nil
}

// JoinOrganizationByInvite files a pending membership that an admin must activate.
func (s *OrganizationService) JoinOrganizationByInvite(userID uint64, inviteCode string) (*models.Organization, *models.Membership, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, nil, err
	}

	org, err := s.orgRepo.FindByInviteCode(utils.NormalizeInviteCode(inviteCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidInviteCode
		}
		return nil, nil, fmt.Errorf("failed to find organization by invite code: %w", err)
	}

	if _, err := s.memberRepo.FindByOrganizationAndUser(org.ID, userID); err == nil {
		return nil, nil, ErrAlreadyOrganizationMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.Membership{
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           models.RoleMember,
		MemberStatus:   models.MemberStatusPending,
		StatusReason:   joinRequestReason,
		JoinedAt:       s.now(),
	}

	if err := s.memberRepo.Create(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrAlreadyOrganizationMember
		}
		return nil, nil, fmt.Errorf("failed to add member to organization: %w", err)
	}

	return org, member, nil
}

// GovernanceSettings is an organization's stored configuration next to the
// values that actually apply.
type GovernanceSettings struct {
	Stored    map[string]string
	Effective governance.Config
	Invalid   []string
}

// GetGovernanceSettings returns the stored and effective governance configuration.
func (s *OrganizationService) GetGovernanceSettings(orgID uint64) (*GovernanceSettings, error) {
	if _, err := s.GetOrganization(orgID); err != nil {
		return nil, err
	}

	stored, err := s.orgRepo.GetSettings(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to read governance settings: %w", err)
	}

	cfg, invalid := governance.ParseConfig(stored)
	sort.Strings(invalid)
	return &GovernanceSettings{Stored: stored, Effective: cfg, Invalid: invalid}, nil
}

// UpdateGovernanceSettings stores the given keys. Only recognised keys with
// parsable values are accepted; meetings already published keep their snapshot.
func (s *OrganizationService) UpdateGovernanceSettings(orgID uint64, values map[string]string) (*GovernanceSettings, error) {
	known := make(map[string]bool)
	for _, key := range governance.ConfigKeys() {
		known[key] = true
	}

	normalized := make(map[string]string, len(values))
	for key, value := range values {
		if !known[key] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSettingKey, key)
		}
		normalized[key] = strings.TrimSpace(value)
	}

	if _, invalid := governance.ParseConfig(normalized); len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, fmt.Errorf("%w: %s", ErrInvalidSettingValue, strings.Join(invalid, ", "))
	}

	if _, err := s.GetOrganization(orgID); err != nil {
		return nil, err
	}

	if err := s.orgRepo.SaveSettings(orgID, normalized); err != nil {
		return nil, fmt.Errorf("failed to save governance settings: %w", err)
	}

	slog.Info("governance settings updated", "organization_id", orgID, "keys", len(normalized))
	return s.GetGovernanceSettings(orgID)
}
