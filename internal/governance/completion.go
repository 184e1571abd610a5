package governance

import (
	"fmt"
	"strings"

	"github.com/yukikurage/governance-api/internal/models"
)

// Mode selects how strictly meeting completion is gated.
type Mode string

const (
	// ModeTest gates completion on procedural items and open votes only.
	ModeTest Mode = "TEST"
	// ModeProduction additionally requires quorum and a signed protocol.
	ModeProduction Mode = "PRODUCTION"
)

// ParseMode accepts TEST or PRODUCTION, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeTest:
		return ModeTest, nil
	case ModeProduction:
		return ModeProduction, nil
	}
	return "", fmt.Errorf("unknown completion mode %q", s)
}

// ProceduralPositions are the agenda positions that gate every other item.
var ProceduralPositions = [...]int{1, 2, 3}

// AgendaFact is one agenda item as seen by the validator. ResolutionStatus is
// empty when the item has no resolution attached.
type AgendaFact struct {
	ItemNo           int
	Title            string
	ResolutionStatus models.ResolutionStatus
}

// ProceduralIssue describes a procedural position that blocks completion.
type ProceduralIssue struct {
	ItemNo  int    `json:"item_no"`
	Title   string `json:"title,omitempty"`
	Status  string `json:"status,omitempty"`
	Missing bool   `json:"missing"`
}

func (p ProceduralIssue) String() string {
	if p.Missing {
		return fmt.Sprintf("Procedural item %d is missing from the agenda", p.ItemNo)
	}
	status := p.Status
	if status == "" {
		status = "without a resolution"
	}
	return fmt.Sprintf("Procedural item %d %q is %s, must be %s", p.ItemNo, p.Title, status, models.ResolutionStatusApproved)
}

// CheckProceduralItems returns one issue per procedural position that is absent or
// whose resolution is not APPROVED, in position order.
func CheckProceduralItems(items []AgendaFact) []ProceduralIssue {
	byNo := make(map[int]AgendaFact, len(items))
	for _, item := range items {
		byNo[item.ItemNo] = item
	}

	var issues []ProceduralIssue
	for _, pos := range ProceduralPositions {
		item, ok := byNo[pos]
		switch {
		case !ok:
			issues = append(issues, ProceduralIssue{ItemNo: pos, Missing: true})
		case item.ResolutionStatus != models.ResolutionStatusApproved:
			issues = append(issues, ProceduralIssue{ItemNo: pos, Title: item.Title, Status: string(item.ResolutionStatus)})
		}
	}
	return issues
}

// IsProcedural reports whether itemNo is one of the procedural positions.
func IsProcedural(itemNo int) bool {
	return contains(ProceduralPositions[:], itemNo)
}

// IsAgendaItemLocked reports whether a substantive item is still waiting on the
// procedural sequence. Procedural items are never locked.
func IsAgendaItemLocked(itemNo int, items []AgendaFact) bool {
	if IsProcedural(itemNo) {
		return false
	}
	return len(CheckProceduralItems(items)) > 0
}

// Attendance holds the counts used for quorum.
type Attendance struct {
	InPerson      int64 `json:"in_person"`
	Remote        int64 `json:"remote"`
	ActiveMembers int64 `json:"active_members"`
}

// Present is the total number of attending members.
func (a Attendance) Present() int64 {
	return a.InPerson + a.Remote
}

// Percentage is the share of active members present, 0 when there are none.
func (a Attendance) Percentage() float64 {
	if a.ActiveMembers <= 0 {
		return 0
	}
	return float64(a.Present()) * 100 / float64(a.ActiveMembers)
}

// QuorumMet reports whether attendance reaches quorumPercentage. An organization
// without active members never has quorum.
func QuorumMet(a Attendance, quorumPercentage float64) bool {
	if a.ActiveMembers <= 0 {
		return false
	}
	return float64(a.Present())*100 >= quorumPercentage*float64(a.ActiveMembers)
}

// CompletionFacts are the externally supplied inputs of the validator.
type CompletionFacts struct {
	AgendaItems    []AgendaFact
	OpenVotes      int64
	QuorumMet      bool
	ProtocolSigned bool
}

// CompletionChecks are the four independently computed conditions.
type CompletionChecks struct {
	ProceduralItemsApproved bool `json:"procedural_items_approved"`
	AllVotesClosed          bool `json:"all_votes_closed"`
	QuorumMet               bool `json:"quorum_met"`
	ProtocolSigned          bool `json:"protocol_signed"`
}

// CompletionResult is the readiness verdict. Not being ready is a normal outcome.
type CompletionResult struct {
	Ready            bool
	Reason           string
	Mode             Mode
	Checks           CompletionChecks
	Missing          []string
	ProceduralIssues []ProceduralIssue
	OpenVotes        int64
}

// strict reports whether quorum and protocol gate completion in mode.
func (m Mode) strict() bool {
	return m == ModeProduction
}

// EvaluateCompletion combines the checks according to mode. Missing lists every
// blocking condition; in TEST mode quorum and protocol are reported through
// Checks but never listed as missing.
func EvaluateCompletion(mode Mode, facts CompletionFacts) CompletionResult {
	issues := CheckProceduralItems(facts.AgendaItems)
	result := CompletionResult{
		Mode: mode,
		Checks: CompletionChecks{
			ProceduralItemsApproved: len(issues) == 0,
			AllVotesClosed:          facts.OpenVotes == 0,
			QuorumMet:               facts.QuorumMet,
			ProtocolSigned:          facts.ProtocolSigned,
		},
		ProceduralIssues: issues,
		OpenVotes:        facts.OpenVotes,
	}

	for _, issue := range issues {
		result.Missing = append(result.Missing, issue.String())
	}
	if !result.Checks.AllVotesClosed {
		result.Missing = append(result.Missing, fmt.Sprintf("%d vote(s) are still open", facts.OpenVotes))
	}
	if mode.strict() {
		if !result.Checks.QuorumMet {
			result.Missing = append(result.Missing, "Quorum has not been reached")
		}
		if !result.Checks.ProtocolSigned {
			result.Missing = append(result.Missing, "Signed protocol has not been attached")
		}
	}

	result.Ready = len(result.Missing) == 0
	if !result.Ready {
		result.Reason = fmt.Sprintf("meeting cannot be completed: %d condition(s) not met", len(result.Missing))
	}
	return result
}

// ChecklistRow is one display row of the completion checklist.
type ChecklistRow struct {
	Requirement string `json:"requirement"`
	Met         bool   `json:"met"`
	Required    bool   `json:"required"`
	Details     string `json:"details"`
}

// Checklist renders result as four rows in a fixed order.
func Checklist(result CompletionResult) []ChecklistRow {
	procedural := "Items 1-3 approved"
	if len(result.ProceduralIssues) > 0 {
		parts := make([]string, len(result.ProceduralIssues))
		for i, issue := range result.ProceduralIssues {
			parts[i] = issue.String()
		}
		procedural = strings.Join(parts, "; ")
	}

	votes := "No open votes"
	if result.OpenVotes > 0 {
		votes = fmt.Sprintf("%d vote(s) still open", result.OpenVotes)
	}

	quorum := "Quorum reached"
	if !result.Checks.QuorumMet {
		quorum = "Quorum not reached"
	}

	protocol := "Signed protocol attached"
	if !result.Checks.ProtocolSigned {
		protocol = "No signed protocol"
	}

	strict := result.Mode.strict()
	return []ChecklistRow{
		{Requirement: "Procedural items approved", Met: result.Checks.ProceduralItemsApproved, Required: true, Details: procedural},
		{Requirement: "All votes closed", Met: result.Checks.AllVotesClosed, Required: true, Details: votes},
		{Requirement: "Quorum met", Met: result.Checks.QuorumMet, Required: strict, Details: quorum},
		{Requirement: "Protocol signed", Met: result.Checks.ProtocolSigned, Required: strict, Details: protocol},
	}
}
