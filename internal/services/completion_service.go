package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/repository"
	"github.com/yukikurage/governance-api/internal/telemetry"
)

// CompletionReport is a readiness verdict together with the facts behind it.
type CompletionReport struct {
	MeetingID        uint64
	Result           governance.CompletionResult
	Attendance       governance.Attendance
	QuorumPercentage float64
	SnapshotKind     governance.SnapshotKind
}

// EvaluateCompletion gathers the completion facts of a meeting and evaluates
// them in the configured mode. A failure to read any fact is returned as
// ErrUpstreamData and never as a negative verdict.
func (s *MeetingService) EvaluateCompletion(orgID, id uint64) (*CompletionReport, error) {
	meeting, err := s.GetMeeting(orgID, id)
	if err != nil {
		return nil, err
	}
	return s.evaluate(meeting)
}

// Checklist renders the completion verdict as display rows.
func (s *MeetingService) Checklist(orgID, id uint64) (*CompletionReport, []governance.ChecklistRow, error) {
	report, err := s.EvaluateCompletion(orgID, id)
	if err != nil {
		return nil, nil, err
	}
	return report, governance.Checklist(report.Result), nil
}

// CompleteMeeting moves a published meeting to COMPLETED when it is ready.
func (s *MeetingService) CompleteMeeting(orgID, id uint64) (*models.Meeting, *CompletionReport, error) {
	meeting, err := s.GetMeeting(orgID, id)
	if err != nil {
		return nil, nil, err
	}
	if meeting.Status != models.MeetingStatusPublished {
		return nil, nil, ErrMeetingNotPublished
	}

	report, err := s.evaluate(meeting)
	if err != nil {
		return nil, nil, err
	}
	if !report.Result.Ready {
		return nil, report, &NotReadyError{Result: report.Result}
	}

	if err := s.meetingRepo.Complete(id, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, nil, ErrConcurrentModification
		}
		return nil, nil, fmt.Errorf("failed to complete meeting: %w", err)
	}

	slog.Info("meeting completed", "meeting_id", id, "organization_id", orgID, "mode", s.mode)
	completed, err := s.GetMeeting(orgID, id)
	if err != nil {
		return nil, nil, err
	}
	return completed, report, nil
}

func (s *MeetingService) evaluate(meeting *models.Meeting) (*CompletionReport, error) {
	items, err := s.meetingRepo.ListAgendaItems(meeting.ID)
	if err != nil {
		return nil, upstream("agenda items", err)
	}

	openVotes, err := s.voteRepo.CountOpen(meeting.ID, models.VoteKindMeeting)
	if err != nil {
		return nil, upstream("open votes", err)
	}

	inPerson, remote, err := s.meetingRepo.CountAttendance(meeting.ID)
	if err != nil {
		return nil, upstream("attendance", err)
	}

	active, err := s.memberRepo.CountByStatus(meeting.OrganizationID, models.MemberStatusActive)
	if err != nil {
		return nil, upstream("active members", err)
	}

	view, err := s.snapshots.resolve(meeting)
	if err != nil {
		return nil, err
	}

	attendance := governance.Attendance{InPerson: inPerson, Remote: remote, ActiveMembers: active}
	quorum := view.Snapshot.QuorumPercentage
	result := governance.EvaluateCompletion(s.mode, governance.CompletionFacts{
		AgendaItems:    agendaFacts(items),
		OpenVotes:      openVotes,
		QuorumMet:      governance.QuorumMet(attendance, quorum),
		ProtocolSigned: meeting.ProtocolRef != nil && strings.TrimSpace(*meeting.ProtocolRef) != "",
	})

	telemetry.CompletionEvaluationsTotal.WithLabelValues(string(s.mode), strconv.FormatBool(result.Ready)).Inc()
	if !result.Ready {
		slog.Debug("meeting not ready for completion", "meeting_id", meeting.ID, "missing", result.Missing)
	}

	return &CompletionReport{
		MeetingID:        meeting.ID,
		Result:           result,
		Attendance:       attendance,
		QuorumPercentage: quorum,
		SnapshotKind:     view.Kind,
	}, nil
}
