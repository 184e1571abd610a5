package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/repository"
	"github.com/yukikurage/governance-api/internal/telemetry"
	"gorm.io/gorm"
)

var (
	ErrVoteNotFound          = errors.New("vote not found")
	ErrVoteClosed            = errors.New("vote is closed")
	ErrInvalidVoteKind       = errors.New("vote kind must be MEETING or POLL")
	ErrInvalidChoice         = errors.New("choice must be FOR, AGAINST or ABSTAIN")
	ErrMemberNotEligible     = errors.New("member is not eligible to vote")
	ErrAlreadyVoted          = errors.New("member has already voted")
	ErrNotOrganizationMember = errors.New("user is not a member of this organization")
)

// VotingService opens and closes votes and accepts remote ballots.
type VotingService struct {
	voteRepo    repository.VoteRepository
	meetingRepo repository.MeetingRepository
	memberRepo  repository.MembershipRepository
	snapshots   snapshotReader
	now         Clock
}

// NewVotingService creates a new VotingService.
func NewVotingService(
	voteRepo repository.VoteRepository,
	meetingRepo repository.MeetingRepository,
	memberRepo repository.MembershipRepository,
	orgRepo repository.OrganizationRepository,
) *VotingService {
	return &VotingService{
		voteRepo:    voteRepo,
		meetingRepo: meetingRepo,
		memberRepo:  memberRepo,
		snapshots:   snapshotReader{orgRepo: orgRepo},
		now:         time.Now,
	}
}

// WithClock replaces the service clock.
func (s *VotingService) WithClock(now Clock) *VotingService {
	s.now = now
	return s
}

func (s *VotingService) findMeeting(orgID, meetingID uint64) (*models.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(meetingID)
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

// GetVote returns a vote whose meeting belongs to the organization.
func (s *VotingService) GetVote(orgID, voteID uint64) (*models.Vote, *models.Meeting, error) {
	vote, err := s.voteRepo.FindByID(voteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrVoteNotFound
		}
		return nil, nil, fmt.Errorf("failed to find vote: %w", err)
	}

	meeting, err := s.findMeeting(orgID, vote.MeetingID)
	if err != nil {
		if errors.Is(err, ErrMeetingNotFound) {
			return nil, nil, ErrVoteNotFound
		}
		return nil, nil, err
	}
	return vote, meeting, nil
}

// OpenVote opens a vote on an agenda item of a published meeting. Substantive
// items cannot be voted on until the procedural items are approved.
func (s *VotingService) OpenVote(orgID, meetingID, agendaItemID uint64, kind models.VoteKind) (*models.Vote, error) {
	if kind == "" {
		kind = models.VoteKindMeeting
	}
	if kind != models.VoteKindMeeting && kind != models.VoteKindPoll {
		return nil, ErrInvalidVoteKind
	}

	meeting, err := s.findMeeting(orgID, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status != models.MeetingStatusPublished {
		return nil, ErrMeetingNotPublished
	}

	items, err := s.meetingRepo.ListAgendaItems(meetingID)
	if err != nil {
		return nil, upstream("agenda items", err)
	}

	var item *models.AgendaItem
	for i := range items {
		if items[i].ID == agendaItemID {
			item = &items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrAgendaItemNotFound
	}
	if governance.IsAgendaItemLocked(item.ItemNo, agendaFacts(items)) {
		return nil, fmt.Errorf("agenda item %d: %w", item.ItemNo, governance.ErrAgendaItemLocked)
	}

	vote := &models.Vote{
		MeetingID:    meetingID,
		AgendaItemID: agendaItemID,
		Kind:         kind,
		Status:       models.VoteStatusOpen,
		OpenedAt:     s.now().UTC(),
	}
	if err := s.voteRepo.Create(vote); err != nil {
		return nil, fmt.Errorf("failed to open vote: %w", err)
	}

	slog.Info("vote opened", "vote_id", vote.ID, "meeting_id", meetingID, "item_no", item.ItemNo, "kind", kind)
	return vote, nil
}

// CloseVote closes an open vote.
func (s *VotingService) CloseVote(orgID, voteID uint64) (*models.Vote, error) {
	vote, _, err := s.GetVote(orgID, voteID)
	if err != nil {
		return nil, err
	}
	if vote.Status != models.VoteStatusOpen {
		return nil, ErrVoteClosed
	}

	closedAt := s.now().UTC()
	if err := s.voteRepo.Close(voteID, closedAt); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrVoteClosed
		}
		return nil, fmt.Errorf("failed to close vote: %w", err)
	}

	vote.Status = models.VoteStatusClosed
	vote.ClosedAt = &closedAt
	return vote, nil
}

// CastRemoteBallotInput is a ballot submitted ahead of the meeting.
type CastRemoteBallotInput struct {
	OrganizationID uint64
	VoteID         uint64
	UserID         uint64
	Choice         models.BallotChoice
}

// CastRemoteBallot accepts a ballot from a member eligible under the meeting's
// snapshot while the early voting window is open. From the freeze instant on
// votes can only be cast live.
func (s *VotingService) CastRemoteBallot(input CastRemoteBallotInput) (*models.Ballot, error) {
	ballot, err := s.castRemoteBallot(input)
	outcome := telemetry.OutcomeApplied
	if err != nil {
		outcome = telemetry.OutcomeRejected
	}
	telemetry.RemoteBallotsTotal.WithLabelValues(outcome).Inc()
	return ballot, err
}

func (s *VotingService) castRemoteBallot(input CastRemoteBallotInput) (*models.Ballot, error) {
	switch input.Choice {
	case models.ChoiceFor, models.ChoiceAgainst, models.ChoiceAbstain:
	default:
		return nil, ErrInvalidChoice
	}

	vote, meeting, err := s.GetVote(input.OrganizationID, input.VoteID)
	if err != nil {
		return nil, err
	}
	if vote.Status != models.VoteStatusOpen {
		return nil, ErrVoteClosed
	}

	member, err := s.memberRepo.FindByOrganizationAndUser(input.OrganizationID, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationMember
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	view, err := s.snapshots.resolve(meeting)
	if err != nil {
		return nil, err
	}

	if !governance.IsEligibleToVote(member.MemberStatus, view.Snapshot.Eligibility) {
		return nil, ErrMemberNotEligible
	}

	if err := governance.RequireRemoteVotingOpen(meeting.ScheduledAt, view.Snapshot, s.now()); err != nil {
		slog.Warn("remote ballot rejected",
			"vote_id", vote.ID,
			"meeting_id", meeting.ID,
			"membership_id", member.ID,
			"error", err,
		)
		return nil, err
	}

	ballot := &models.Ballot{
		VoteID:       vote.ID,
		MembershipID: member.ID,
		Choice:       input.Choice,
		Channel:      models.ChannelRemote,
		CastAt:       s.now().UTC(),
	}
	if err := s.voteRepo.CreateBallot(ballot); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to record ballot: %w", err)
	}
	return ballot, nil
}
