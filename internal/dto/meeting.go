package dto

import (
	"time"

	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
)

// AgendaItemDTO represents an agenda item in API responses
type AgendaItemDTO struct {
	ID           uint64         `json:"id"`
	ItemNo       int            `json:"item_no"`
	Title        string         `json:"title"`
	Procedural   bool           `json:"procedural"`
	ResolutionID *uint64        `json:"resolution_id"`
	Resolution   *ResolutionDTO `json:"resolution,omitempty"`
}

// MeetingDTO represents a meeting in API responses. The stored snapshot is
// served by its own endpoint.
type MeetingDTO struct {
	ID             uint64               `json:"id"`
	OrganizationID uint64               `json:"organization_id"`
	Title          string               `json:"title"`
	Status         models.MeetingStatus `json:"status"`
	ScheduledAt    *time.Time           `json:"scheduled_at"`
	PublishedAt    *time.Time           `json:"published_at"`
	CompletedAt    *time.Time           `json:"completed_at"`
	ProtocolRef    *string              `json:"protocol_ref"`
	CreatedBy      uint64               `json:"created_by"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	AgendaItems    []AgendaItemDTO      `json:"agenda_items,omitempty"`
}

// SnapshotDTO is a tagged snapshot read. Only PUBLISHED is binding.
type SnapshotDTO struct {
	MeetingID         uint64                    `json:"meeting_id"`
	Kind              governance.SnapshotKind   `json:"kind"`
	Binding           bool                      `json:"binding"`
	EarlyVotingDays   int                       `json:"early_voting_days"`
	MeetingNoticeDays int                       `json:"meeting_notice_days"`
	QuorumPercentage  float64                   `json:"quorum_percentage"`
	Eligibility       EligibilityDTO            `json:"eligibility"`
	FreezeAt          *time.Time                `json:"freeze_at"`
	CapturedAt        *time.Time                `json:"captured_at"`
	Source            governance.SnapshotSource `json:"snapshot_source,omitempty"`
}

// FreezeDTO reports whether remote voting is frozen
type FreezeDTO struct {
	MeetingID uint64     `json:"meeting_id"`
	Frozen    bool       `json:"frozen"`
	FreezeAt  *time.Time `json:"freeze_at"`
	Message   string     `json:"message,omitempty"`
}

// ProceduralIssueDTO describes a procedural item that is not yet approved
type ProceduralIssueDTO struct {
	ItemNo  int    `json:"item_no"`
	Title   string `json:"title,omitempty"`
	Status  string `json:"status,omitempty"`
	Missing bool   `json:"missing"`
}

// AttendanceDTO holds the counts behind the quorum check
type AttendanceDTO struct {
	InPerson         int64   `json:"in_person"`
	Remote           int64   `json:"remote"`
	ActiveMembers    int64   `json:"active_members"`
	Percentage       float64 `json:"percentage"`
	QuorumPercentage float64 `json:"quorum_percentage"`
}

// CompletionDTO is a completion readiness verdict
type CompletionDTO struct {
	MeetingID        uint64                      `json:"meeting_id"`
	Ready            bool                        `json:"ready"`
	Reason           string                      `json:"reason,omitempty"`
	Mode             governance.Mode             `json:"mode"`
	Checks           governance.CompletionChecks `json:"checks"`
	Missing          []string                    `json:"missing"`
	ProceduralIssues []ProceduralIssueDTO        `json:"procedural_issues"`
	OpenVotes        int64                       `json:"open_votes"`
	Attendance       AttendanceDTO               `json:"attendance"`
	SnapshotKind     governance.SnapshotKind     `json:"snapshot_kind"`
}

// ChecklistDTO is the four-row completion checklist
type ChecklistDTO struct {
	MeetingID uint64                    `json:"meeting_id"`
	Mode      governance.Mode           `json:"mode"`
	Ready     bool                      `json:"ready"`
	Rows      []governance.ChecklistRow `json:"rows"`
}

// CompleteMeetingResponse is returned when a meeting was completed
type CompleteMeetingResponse struct {
	Meeting    MeetingDTO    `json:"meeting"`
	Completion CompletionDTO `json:"completion"`
}

// ToAgendaItemDTO converts an AgendaItem model to AgendaItemDTO
func ToAgendaItemDTO(item models.AgendaItem) AgendaItemDTO {
	dto := AgendaItemDTO{
		ID:           item.ID,
		ItemNo:       item.ItemNo,
		Title:        item.Title,
		Procedural:   governance.IsProcedural(item.ItemNo),
		ResolutionID: item.ResolutionID,
	}

	// Include resolution if preloaded
	if item.Resolution != nil && item.Resolution.ID != 0 {
		resolution := ToResolutionDTO(*item.Resolution)
		dto.Resolution = &resolution
	}
	return dto
}

// ToMeetingDTO converts a Meeting model to MeetingDTO
func ToMeetingDTO(meeting models.Meeting) MeetingDTO {
	dto := MeetingDTO{
		ID:             meeting.ID,
		OrganizationID: meeting.OrganizationID,
		Title:          meeting.Title,
		Status:         meeting.Status,
		ScheduledAt:    meeting.ScheduledAt,
		PublishedAt:    meeting.PublishedAt,
		CompletedAt:    meeting.CompletedAt,
		ProtocolRef:    meeting.ProtocolRef,
		CreatedBy:      meeting.CreatedBy,
		CreatedAt:      meeting.CreatedAt,
		UpdatedAt:      meeting.UpdatedAt,
	}

	if len(meeting.AgendaItems) > 0 {
		dto.AgendaItems = make([]AgendaItemDTO, len(meeting.AgendaItems))
		for i, item := range meeting.AgendaItems {
			dto.AgendaItems[i] = ToAgendaItemDTO(item)
		}
	}
	return dto
}

// ToSnapshotDTO converts a tagged snapshot read
func ToSnapshotDTO(meetingID uint64, view governance.SnapshotView) SnapshotDTO {
	snap := view.Snapshot
	return SnapshotDTO{
		MeetingID:         meetingID,
		Kind:              view.Kind,
		Binding:           view.Binding(),
		EarlyVotingDays:   snap.EarlyVotingDays,
		MeetingNoticeDays: snap.MeetingNoticeDays,
		QuorumPercentage:  snap.QuorumPercentage,
		Eligibility:       toEligibilityDTO(snap.Eligibility),
		FreezeAt:          snap.FreezeAt,
		CapturedAt:        snap.CapturedAt,
		Source:            snap.Source,
	}
}

// ToFreezeDTO converts a freeze check
func ToFreezeDTO(meetingID uint64, status governance.FreezeStatus) FreezeDTO {
	return FreezeDTO{
		MeetingID: meetingID,
		Frozen:    status.Frozen,
		FreezeAt:  status.FreezeAt,
		Message:   status.Message,
	}
}

// ToCompletionDTO converts a completion verdict with its facts
func ToCompletionDTO(meetingID uint64, result governance.CompletionResult, attendance governance.Attendance, quorumPercentage float64, kind governance.SnapshotKind) CompletionDTO {
	missing := result.Missing
	if missing == nil {
		missing = []string{}
	}

	issues := make([]ProceduralIssueDTO, len(result.ProceduralIssues))
	for i, issue := range result.ProceduralIssues {
		issues[i] = ProceduralIssueDTO{
			ItemNo:  issue.ItemNo,
			Title:   issue.Title,
			Status:  issue.Status,
			Missing: issue.Missing,
		}
	}

	return CompletionDTO{
		MeetingID:        meetingID,
		Ready:            result.Ready,
		Reason:           result.Reason,
		Mode:             result.Mode,
		Checks:           result.Checks,
		Missing:          missing,
		ProceduralIssues: issues,
		OpenVotes:        result.OpenVotes,
		Attendance: AttendanceDTO{
			InPerson:         attendance.InPerson,
			Remote:           attendance.Remote,
			ActiveMembers:    attendance.ActiveMembers,
			Percentage:       attendance.Percentage(),
			QuorumPercentage: quorumPercentage,
		},
		SnapshotKind: kind,
	}
}

// ToChecklistDTO converts checklist rows
func ToChecklistDTO(meetingID uint64, result governance.CompletionResult, rows []governance.ChecklistRow) ChecklistDTO {
	return ChecklistDTO{
		MeetingID: meetingID,
		Mode:      result.Mode,
		Ready:     result.Ready,
		Rows:      rows,
	}
}
