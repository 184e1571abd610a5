package dto

import (
	"sort"
	"time"

	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
)

// OrganizationWithRoleDTO represents an organization with the user's role and standing
type OrganizationWithRoleDTO struct {
	OrganizationDTO
	Role         models.OrganizationRole `json:"role"`
	MemberStatus models.MemberStatus     `json:"member_status"`
}

// MembershipDTO represents a member in an organization
type MembershipDTO struct {
	ID           uint64                  `json:"id"`
	User         *UserDTO                `json:"user,omitempty"`
	Role         models.OrganizationRole `json:"role"`
	MemberStatus models.MemberStatus     `json:"member_status"`
	StatusReason string                  `json:"status_reason"`
	JoinedAt     time.Time               `json:"joined_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// OrganizationDetailDTO represents detailed organization information
type OrganizationDetailDTO struct {
	OrganizationDTO
	Members  []MembershipDTO         `json:"members"`
	YourRole models.OrganizationRole `json:"your_role"`
}

// JoinOrganizationResponse is returned after a join request was filed
type JoinOrganizationResponse struct {
	Organization OrganizationDTO `json:"organization"`
	Membership   MembershipDTO   `json:"membership"`
}

// TransitionOptionDTO is a status a member can be moved to
type TransitionOptionDTO struct {
	Target         models.MemberStatus `json:"target"`
	ReasonTemplate string              `json:"reason_template"`
}

// MemberTransitionsDTO lists the moves available from the member's current status
type MemberTransitionsDTO struct {
	Membership  MembershipDTO         `json:"membership"`
	Transitions []TransitionOptionDTO `json:"transitions"`
}

// EligibilityDTO mirrors governance.EligibilityRules
type EligibilityDTO struct {
	MaxAllowedDebt   float64 `json:"max_allowed_debt"`
	CheckSuspensions bool    `json:"check_suspensions"`
	CheckArrears     bool    `json:"check_arrears"`
}

// GovernanceConfigDTO is the configuration that applies to new meetings
type GovernanceConfigDTO struct {
	EarlyVotingDays   int            `json:"early_voting_days"`
	MeetingNoticeDays int            `json:"meeting_notice_days"`
	QuorumPercentage  float64        `json:"quorum_percentage"`
	Eligibility       EligibilityDTO `json:"eligibility"`
}

// GovernanceSettingsDTO shows stored keys next to the effective configuration
type GovernanceSettingsDTO struct {
	Stored      map[string]string   `json:"stored"`
	Effective   GovernanceConfigDTO `json:"effective"`
	InvalidKeys []string            `json:"invalid_keys"`
	KnownKeys   []string            `json:"known_keys"`
}

// ToOrganizationWithRoleDTO converts a membership to DTO with role
func ToOrganizationWithRoleDTO(member models.Membership) OrganizationWithRoleDTO {
	return OrganizationWithRoleDTO{
		OrganizationDTO: ToOrganizationDTO(member.Organization, false),
		Role:            member.Role,
		MemberStatus:    member.MemberStatus,
	}
}

// ToMembershipDTO converts a member to DTO
func ToMembershipDTO(member models.Membership) MembershipDTO {
	dto := MembershipDTO{
		ID:           member.ID,
		Role:         member.Role,
		MemberStatus: member.MemberStatus,
		StatusReason: member.StatusReason,
		JoinedAt:     member.JoinedAt,
		UpdatedAt:    member.UpdatedAt,
	}

	// Include user if preloaded
	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}
	return dto
}

// ToOrganizationDetailDTO converts organization with members to detailed DTO
func ToOrganizationDetailDTO(org models.Organization, members []models.Membership, yourRole models.OrganizationRole) OrganizationDetailDTO {
	memberDTOs := make([]MembershipDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToMembershipDTO(member)
	}

	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org, yourRole.CanAdminister()),
		Members:         memberDTOs,
		YourRole:        yourRole,
	}
}

// ToGovernanceConfigDTO converts an effective configuration
func ToGovernanceConfigDTO(cfg governance.Config) GovernanceConfigDTO {
	return GovernanceConfigDTO{
		EarlyVotingDays:   cfg.EarlyVotingDays,
		MeetingNoticeDays: cfg.MeetingNoticeDays,
		QuorumPercentage:  cfg.QuorumPercentage,
		Eligibility:       toEligibilityDTO(cfg.Eligibility),
	}
}

// ToGovernanceSettingsDTO converts stored and effective settings
func ToGovernanceSettingsDTO(stored map[string]string, effective governance.Config, invalid []string) GovernanceSettingsDTO {
	if stored == nil {
		stored = map[string]string{}
	}
	invalidKeys := append([]string{}, invalid...)
	sort.Strings(invalidKeys)

	return GovernanceSettingsDTO{
		Stored:      stored,
		Effective:   ToGovernanceConfigDTO(effective),
		InvalidKeys: invalidKeys,
		KnownKeys:   governance.ConfigKeys(),
	}
}

func toEligibilityDTO(rules governance.EligibilityRules) EligibilityDTO {
	return EligibilityDTO{
		MaxAllowedDebt:   rules.MaxAllowedDebt,
		CheckSuspensions: rules.CheckSuspensions,
		CheckArrears:     rules.CheckArrears,
	}
}
