package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/repository"
	"github.com/yukikurage/governance-api/internal/telemetry"
	"gorm.io/gorm"
)

var ErrMembershipNotFound = errors.New("membership not found")

const membershipEntity = "membership"

// MembershipService applies membership status changes.
type MembershipService struct {
	memberRepo repository.MembershipRepository
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(memberRepo repository.MembershipRepository) *MembershipService {
	return &MembershipService{memberRepo: memberRepo}
}

// GetMember returns a membership that belongs to the organization.
func (s *MembershipService) GetMember(orgID, membershipID uint64) (*models.Membership, error) {
	member, err := s.memberRepo.FindByID(membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	if member.OrganizationID != orgID {
		return nil, ErrMembershipNotFound
	}
	return member, nil
}

// ListMembers lists all members of an organization.
func (s *MembershipService) ListMembers(orgID uint64) ([]models.Membership, error) {
	members, err := s.memberRepo.ListByOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// TransitionMembershipInput describes a requested status change. ExpectedStatus,
// when set, is the status the caller saw; a mismatch is a concurrent modification.
type TransitionMembershipInput struct {
	OrganizationID uint64
	MembershipID   uint64
	Target         models.MemberStatus
	Reason         string
	ExpectedStatus *models.MemberStatus
	ActorID        uint64
}

// TransitionMembership validates the change against the membership rules and
// writes it only if the stored status is still the one validated against.
func (s *MembershipService) TransitionMembership(input TransitionMembershipInput) (*models.Membership, error) {
	member, err := s.GetMember(input.OrganizationID, input.MembershipID)
	if err != nil {
		return nil, err
	}

	current := member.MemberStatus
	if input.ExpectedStatus != nil && *input.ExpectedStatus != current {
		recordTransition(membershipEntity, current, input.Target, telemetry.OutcomeConflict)
		return nil, ErrConcurrentModification
	}

	if err := governance.ValidateMembershipTransitionWithReason(current, input.Target, input.Reason); err != nil {
		recordTransition(membershipEntity, current, input.Target, telemetry.OutcomeRejected)
		slog.Warn("membership transition rejected",
			"membership_id", member.ID,
			"from", current,
			"to", input.Target,
			"actor_id", input.ActorID,
			"error", err,
		)
		return nil, err
	}

	if current == input.Target {
		return member, nil
	}

	reason := strings.TrimSpace(input.Reason)
	if err := s.memberRepo.UpdateStatus(member.ID, current, input.Target, reason); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			recordTransition(membershipEntity, current, input.Target, telemetry.OutcomeConflict)
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to update membership status: %w", err)
	}

	recordTransition(membershipEntity, current, input.Target, telemetry.OutcomeApplied)
	slog.Info("membership transition applied",
		"membership_id", member.ID,
		"organization_id", member.OrganizationID,
		"from", current,
		"to", input.Target,
		"actor_id", input.ActorID,
	)

	member.MemberStatus = input.Target
	member.StatusReason = reason
	return member, nil
}

// TransitionOption is a target the membership may move to, with a suggested reason.
type TransitionOption struct {
	Target         models.MemberStatus
	ReasonTemplate string
}

// AllowedTransitions lists the targets reachable from the member's current status.
func (s *MembershipService) AllowedTransitions(orgID, membershipID uint64) (*models.Membership, []TransitionOption, error) {
	member, err := s.GetMember(orgID, membershipID)
	if err != nil {
		return nil, nil, err
	}

	targets := governance.AllowedMembershipTransitions(member.MemberStatus)
	options := make([]TransitionOption, 0, len(targets))
	for _, target := range targets {
		tmpl, _ := governance.ReasonTemplate(member.MemberStatus, target)
		options = append(options, TransitionOption{Target: target, ReasonTemplate: tmpl})
	}
	return member, options, nil
}

func recordTransition[S ~string](entity string, from, to S, outcome string) {
	telemetry.StatusTransitionsTotal.WithLabelValues(entity, string(from), string(to), outcome).Inc()
}
