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
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrInvalidMeetingTitle  = errors.New("meeting title cannot be empty")
	ErrMeetingNotDraft      = errors.New("meeting is no longer a draft")
	ErrMeetingNotPublished  = errors.New("meeting is not published")
	ErrMeetingNotScheduled  = errors.New("meeting has no scheduled time")
	ErrNoticePeriodTooShort = errors.New("meeting is scheduled inside the notice period")
	ErrInvalidAgendaItemNo  = errors.New("agenda item number must be positive")
	ErrAgendaItemExists     = errors.New("agenda item number is already taken")
	ErrResolutionOnAgenda   = errors.New("resolution is already on an agenda")
	ErrAgendaItemNotFound   = errors.New("agenda item not found")
	ErrInvalidProtocolRef   = errors.New("protocol reference cannot be empty")
	ErrAttendeeNotActive    = errors.New("only active members can be recorded as attending")
	ErrInvalidAttendance    = errors.New("attendance mode must be IN_PERSON or REMOTE")
)

// MeetingService manages meetings, their governance snapshot and completion.
type MeetingService struct {
	meetingRepo    repository.MeetingRepository
	resolutionRepo repository.ResolutionRepository
	memberRepo     repository.MembershipRepository
	voteRepo       repository.VoteRepository
	snapshots      snapshotReader
	mode           governance.Mode
	now            Clock
}

// NewMeetingService creates a new MeetingService. mode selects how strictly
// completion is gated.
func NewMeetingService(
	meetingRepo repository.MeetingRepository,
	orgRepo repository.OrganizationRepository,
	resolutionRepo repository.ResolutionRepository,
	memberRepo repository.MembershipRepository,
	voteRepo repository.VoteRepository,
	mode governance.Mode,
) *MeetingService {
	return &MeetingService{
		meetingRepo:    meetingRepo,
		resolutionRepo: resolutionRepo,
		memberRepo:     memberRepo,
		voteRepo:       voteRepo,
		snapshots:      snapshotReader{orgRepo: orgRepo},
		mode:           mode,
		now:            time.Now,
	}
}

// WithClock replaces the service clock.
func (s *MeetingService) WithClock(now Clock) *MeetingService {
	s.now = now
	return s
}

// Mode returns the completion mode the service gates with.
func (s *MeetingService) Mode() governance.Mode {
	return s.mode
}

// CreateMeetingInput represents parameters to create a draft meeting.
type CreateMeetingInput struct {
	OrganizationID uint64
	Title          string
	ScheduledAt    *time.Time
	CreatedBy      uint64
}

// CreateMeeting creates a draft meeting.
func (s *MeetingService) CreateMeeting(input CreateMeetingInput) (*models.Meeting, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidMeetingTitle
	}

	meeting := &models.Meeting{
		OrganizationID: input.OrganizationID,
		Title:          title,
		ScheduledAt:    utcPtr(input.ScheduledAt),
		Status:         models.MeetingStatusDraft,
		CreatedBy:      input.CreatedBy,
	}
	if err := s.meetingRepo.Create(meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return meeting, nil
}

// GetMeeting returns a meeting of the organization with its agenda.
func (s *MeetingService) GetMeeting(orgID, id uint64) (*models.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(id, "AgendaItems", "AgendaItems.Resolution")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	if meeting.OrganizationID != orgID {
		return nil, ErrMeetingNotFound
	}
	return meeting, nil
}

// ListMeetings lists the meetings of an organization.
func (s *MeetingService) ListMeetings(orgID uint64) ([]models.Meeting, error) {
	meetings, err := s.meetingRepo.ListByOrganization(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// ScheduleMeeting sets or clears the scheduled time of a draft meeting.
func (s *MeetingService) ScheduleMeeting(orgID, id uint64, scheduledAt *time.Time) (*models.Meeting, error) {
	meeting, err := s.GetMeeting(orgID, id)
	if err != nil {
		return nil, err
	}
	if meeting.Status != models.MeetingStatusDraft {
		return nil, ErrMeetingNotDraft
	}

	if err := s.meetingRepo.UpdateSchedule(id, utcPtr(scheduledAt)); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to schedule meeting: %w", err)
	}
	return s.GetMeeting(orgID, id)
}

// AddAgendaItemInput describes one agenda position.
type AddAgendaItemInput struct {
	ItemNo       int
	Title        string
	ResolutionID *uint64
}

// AddAgendaItem places an item on the agenda of a draft meeting.
func (s *MeetingService) AddAgendaItem(orgID, meetingID uint64, input AddAgendaItemInput) (*models.AgendaItem, error) {
	if input.ItemNo < 1 {
		return nil, ErrInvalidAgendaItemNo
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidMeetingTitle
	}

	meeting, err := s.GetMeeting(orgID, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status != models.MeetingStatusDraft {
		return nil, ErrMeetingNotDraft
	}

	if input.ResolutionID != nil {
		resolution, err := s.resolutionRepo.FindByID(*input.ResolutionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrResolutionNotFound
			}
			return nil, fmt.Errorf("failed to find resolution: %w", err)
		}
		if resolution.OrganizationID != orgID {
			return nil, ErrResolutionNotFound
		}
		// Only undecided resolutions can be placed on an agenda.
		if err := governance.RequireResolutionMutable(resolution.Status); err != nil {
			return nil, fmt.Errorf("resolution %d: %w", resolution.ID, err)
		}
		if err := s.requireResolutionUnplaced(resolution.ID); err != nil {
			return nil, err
		}
	}

	item := &models.AgendaItem{
		MeetingID:    meetingID,
		ItemNo:       input.ItemNo,
		Title:        title,
		ResolutionID: input.ResolutionID,
	}
	if err := s.meetingRepo.AddAgendaItem(item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Both the position and the resolution are unique; tell the two apart.
			if input.ResolutionID != nil {
				if placedErr := s.requireResolutionUnplaced(*input.ResolutionID); placedErr != nil {
					return nil, placedErr
				}
			}
			return nil, ErrAgendaItemExists
		}
		return nil, fmt.Errorf("failed to add agenda item: %w", err)
	}
	return item, nil
}

func (s *MeetingService) requireResolutionUnplaced(resolutionID uint64) error {
	_, err := s.meetingRepo.FindAgendaItemByResolution(resolutionID)
	switch {
	case err == nil:
		return ErrResolutionOnAgenda
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return fmt.Errorf("failed to find agenda item: %w", err)
	}
}

// PublishMeeting publishes a draft meeting and freezes its governance snapshot.
// The meeting must be scheduled at least meeting_notice_days ahead.
func (s *MeetingService) PublishMeeting(orgID, id uint64) (*models.Meeting, error) {
	meeting, err := s.GetMeeting(orgID, id)
	if err != nil {
		return nil, err
	}
	if meeting.Status != models.MeetingStatusDraft {
		return nil, ErrMeetingNotDraft
	}
	if meeting.ScheduledAt == nil {
		return nil, ErrMeetingNotScheduled
	}

	cfg, err := s.snapshots.loadConfig(orgID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if now.AddDate(0, 0, cfg.MeetingNoticeDays).After(*meeting.ScheduledAt) {
		return nil, fmt.Errorf("%w: %d day(s) required", ErrNoticePeriodTooShort, cfg.MeetingNoticeDays)
	}

	snap := governance.StampSnapshot(governance.ComputeSnapshot(cfg, meeting.ScheduledAt), governance.SourcePublish, now)
	raw, err := encodeSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode governance snapshot: %w", err)
	}

	if err := s.meetingRepo.Publish(id, raw, now.UTC()); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			recordSnapshotWrite(governance.SourcePublish, telemetry.OutcomeConflict)
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to publish meeting: %w", err)
	}

	recordSnapshotWrite(governance.SourcePublish, telemetry.OutcomeApplied)
	slog.Info("meeting published",
		"meeting_id", id,
		"organization_id", orgID,
		"scheduled_at", meeting.ScheduledAt,
		"quorum_percentage", snap.QuorumPercentage,
	)
	return s.GetMeeting(orgID, id)
}

// PersistSnapshot stores the governance snapshot computed from the current
// configuration. Drafts may be re-snapshotted freely. A published meeting only
// accepts a snapshot when it has none; afterwards it is frozen.
func (s *MeetingService) PersistSnapshot(orgID, id uint64) (*governance.Snapshot, error) {
	meeting, err := s.GetMeeting(orgID, id)
	if err != nil {
		return nil, err
	}

	if err := governance.CanPersistSnapshot(meeting.Status, hasSnapshot(meeting.GovernanceSnapshot)); err != nil {
		recordSnapshotWrite(governance.SourceManual, telemetry.OutcomeRejected)
		slog.Warn("governance snapshot write rejected", "meeting_id", id, "status", meeting.Status)
		return nil, err
	}

	cfg, err := s.snapshots.loadConfig(orgID)
	if err != nil {
		return nil, err
	}

	snap := governance.StampSnapshot(governance.ComputeSnapshot(cfg, meeting.ScheduledAt), governance.SourceManual, s.now())
	raw, err := encodeSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode governance snapshot: %w", err)
	}

	if err := s.meetingRepo.SaveSnapshot(id, meeting.Status, raw); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			recordSnapshotWrite(governance.SourceManual, telemetry.OutcomeConflict)
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to save governance snapshot: %w", err)
	}

	recordSnapshotWrite(governance.SourceManual, telemetry.OutcomeApplied)
	if governance.IsPublished(meeting.Status) {
		slog.Warn("governance snapshot repaired for published meeting", "meeting_id", id)
	}
	return &snap, nil
}

// GetSnapshot returns the snapshot that governs the meeting, tagged with how it
// was obtained.
func (s *MeetingService) GetSnapshot(orgID, id uint64) (*models.Meeting, governance.SnapshotView, error) {
	meeting, err := s.GetMeeting(orgID, id)
	if err != nil {
		return nil, governance.SnapshotView{}, err
	}

	view, err := s.snapshots.resolve(meeting)
	if err != nil {
		return nil, governance.SnapshotView{}, err
	}
	return meeting, view, nil
}

// FreezeStatus reports whether remote voting for the meeting is frozen now.
func (s *MeetingService) FreezeStatus(orgID, id uint64) (governance.FreezeStatus, error) {
	meeting, view, err := s.GetSnapshot(orgID, id)
	if err != nil {
		return governance.FreezeStatus{}, err
	}
	return governance.CheckFreeze(meeting.ScheduledAt, &view.Snapshot, s.now()), nil
}

// RecordAttendance records how an active member attends a published meeting.
func (s *MeetingService) RecordAttendance(orgID, meetingID, membershipID uint64, mode models.AttendanceMode) error {
	if mode != models.AttendanceInPerson && mode != models.AttendanceRemote {
		return ErrInvalidAttendance
	}

	meeting, err := s.GetMeeting(orgID, meetingID)
	if err != nil {
		return err
	}
	if meeting.Status != models.MeetingStatusPublished {
		return ErrMeetingNotPublished
	}

	member, err := s.memberRepo.FindByID(membershipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to find membership: %w", err)
	}
	if member.OrganizationID != orgID {
		return ErrMembershipNotFound
	}
	if member.MemberStatus != models.MemberStatusActive {
		return ErrAttendeeNotActive
	}

	if err := s.meetingRepo.RecordAttendance(&models.Attendance{
		MeetingID:    meetingID,
		MembershipID: membershipID,
		Mode:         mode,
		RecordedAt:   s.now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	return nil
}

// AttachProtocol stores the reference of the signed meeting protocol.
func (s *MeetingService) AttachProtocol(orgID, id uint64, ref string) (*models.Meeting, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrInvalidProtocolRef
	}

	meeting, err := s.GetMeeting(orgID, id)
	if err != nil {
		return nil, err
	}
	if meeting.Status != models.MeetingStatusPublished {
		return nil, ErrMeetingNotPublished
	}

	if err := s.meetingRepo.SetProtocol(id, ref); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to attach protocol: %w", err)
	}
	return s.GetMeeting(orgID, id)
}

func agendaFacts(items []models.AgendaItem) []governance.AgendaFact {
	facts := make([]governance.AgendaFact, 0, len(items))
	for _, item := range items {
		fact := governance.AgendaFact{ItemNo: item.ItemNo, Title: item.Title}
		if item.Resolution != nil {
			fact.ResolutionStatus = item.Resolution.Status
		}
		facts = append(facts, fact)
	}
	return facts
}

func recordSnapshotWrite(source governance.SnapshotSource, outcome string) {
	telemetry.SnapshotWritesTotal.WithLabelValues(string(source), outcome).Inc()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
