package repository

import (
	"errors"
	"time"

	"github.com/yukikurage/governance-api/internal/models"
	"gorm.io/datatypes"
)

// ErrStaleState is returned by conditional writes when the stored row no longer
// matches the state the caller read before deciding.
var ErrStaleState = errors.New("repository: stored state changed since it was read")

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// CreateWithOwner creates an organization and its owner membership in one transaction
	CreateWithOwner(org *models.Organization, owner *models.Membership) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindByInviteCode finds an organization by invite code
	FindByInviteCode(code string) (*models.Organization, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// GetSettings returns the governance configuration as a key-value bundle
	GetSettings(organizationID uint64) (map[string]string, error)

	// SaveSettings upserts the given keys and leaves other keys untouched
	SaveSettings(organizationID uint64, settings map[string]string) error
}

// MembershipRepository defines the interface for membership data access
type MembershipRepository interface {
	Create(member *models.Membership) error

	FindByID(id uint64) (*models.Membership, error)

	// FindByOrganizationAndUser finds the membership of a user in an organization
	FindByOrganizationAndUser(organizationID, userID uint64) (*models.Membership, error)

	// ListByOrganization lists all memberships of an organization with users preloaded
	ListByOrganization(organizationID uint64) ([]models.Membership, error)

	// ListByUser lists all memberships of a user with organizations preloaded
	ListByUser(userID uint64) ([]models.Membership, error)

	// CountByStatus counts memberships of an organization in the given status
	CountByStatus(organizationID uint64, status models.MemberStatus) (int64, error)

	// UpdateStatus writes next and reason only if the stored status is still expected
	UpdateStatus(id uint64, expected, next models.MemberStatus, reason string) error
}

// ResolutionFilter holds filtering options for listing resolutions
type ResolutionFilter struct {
	OrganizationID uint64
	Status         *models.ResolutionStatus
	Page           int
	PageSize       int
}

// ResolutionDecision carries the adoption stamp written with a terminal status.
type ResolutionDecision struct {
	AdoptedAt time.Time
	AdoptedBy uint64
}

// ResolutionRepository defines the interface for resolution data access
type ResolutionRepository interface {
	Create(resolution *models.Resolution) error

	FindByID(id uint64) (*models.Resolution, error)

	// List retrieves resolutions with filtering and pagination
	List(filter ResolutionFilter) ([]models.Resolution, int64, error)

	// UpdateFields writes title/content only if the stored status is still expected
	UpdateFields(id uint64, expected models.ResolutionStatus, fields map[string]any) error

	// UpdateStatus writes next only if the stored status is still expected.
	// A non-nil decision stamps adopted_at/adopted_by in the same statement.
	UpdateStatus(id uint64, expected, next models.ResolutionStatus, decision *ResolutionDecision) error
}

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	Create(meeting *models.Meeting) error

	// FindByID finds a meeting by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Meeting, error)

	// ListByOrganization lists meetings of an organization, most recently scheduled first
	ListByOrganization(organizationID uint64) ([]models.Meeting, error)

	// UpdateSchedule changes scheduled_at while the meeting is still a draft
	UpdateSchedule(id uint64, scheduledAt *time.Time) error

	// Publish moves a draft meeting to PUBLISHED and stores its snapshot atomically
	Publish(id uint64, snapshot datatypes.JSON, publishedAt time.Time) error

	// SaveSnapshot writes the snapshot if the status is still expected and, for a
	// published meeting, no snapshot has been stored in the meantime
	SaveSnapshot(id uint64, expected models.MeetingStatus, snapshot datatypes.JSON) error

	// Complete moves a published meeting to COMPLETED
	Complete(id uint64, completedAt time.Time) error

	// SetProtocol stores the signed protocol reference
	SetProtocol(id uint64, ref string) error

	AddAgendaItem(item *models.AgendaItem) error

	// ListAgendaItems lists agenda items ordered by item_no with resolutions preloaded
	ListAgendaItems(meetingID uint64) ([]models.AgendaItem, error)

	// FindAgendaItemByResolution finds the agenda item a resolution is attached to
	FindAgendaItemByResolution(resolutionID uint64) (*models.AgendaItem, error)

	// RecordAttendance creates or replaces an attendance record
	RecordAttendance(attendance *models.Attendance) error

	// CountAttendance counts attendees by mode
	CountAttendance(meetingID uint64) (inPerson, remote int64, err error)
}

// VoteRepository defines the interface for vote data access
type VoteRepository interface {
	Create(vote *models.Vote) error

	FindByID(id uint64) (*models.Vote, error)

	// CountOpen counts the meeting's votes of the given kind still OPEN
	CountOpen(meetingID uint64, kind models.VoteKind) (int64, error)

	// Close moves an OPEN vote to CLOSED
	Close(id uint64, closedAt time.Time) error

	// CreateBallot records a ballot; one per member and vote
	CreateBallot(ballot *models.Ballot) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)
}
