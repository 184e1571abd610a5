package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/governance-api/internal/models"
)

func approvedProcedure() []AgendaFact {
	return []AgendaFact{
		{ItemNo: 1, Title: "Chair election", ResolutionStatus: models.ResolutionStatusApproved},
		{ItemNo: 2, Title: "Secretary election", ResolutionStatus: models.ResolutionStatusApproved},
		{ItemNo: 3, Title: "Agenda approval", ResolutionStatus: models.ResolutionStatusApproved},
		{ItemNo: 4, Title: "Budget", ResolutionStatus: models.ResolutionStatusProposed},
	}
}

func TestEvaluateCompletion_TestModeIgnoresQuorumAndProtocol(t *testing.T) {
	facts := CompletionFacts{AgendaItems: approvedProcedure(), OpenVotes: 0, QuorumMet: false, ProtocolSigned: false}

	result := EvaluateCompletion(ModeTest, facts)
	assert.True(t, result.Ready)
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Reason)
	assert.Equal(t, ModeTest, result.Mode)
	assert.False(t, result.Checks.QuorumMet)
	assert.False(t, result.Checks.ProtocolSigned)

	result = EvaluateCompletion(ModeProduction, facts)
	assert.False(t, result.Ready)
	require.Len(t, result.Missing, 2)
	assert.Contains(t, result.Missing[0], "Quorum")
	assert.Contains(t, result.Missing[1], "protocol")
	assert.NotEmpty(t, result.Reason)
}

func TestEvaluateCompletion_ProductionReady(t *testing.T) {
	result := EvaluateCompletion(ModeProduction, CompletionFacts{
		AgendaItems:    approvedProcedure(),
		QuorumMet:      true,
		ProtocolSigned: true,
	})
	assert.True(t, result.Ready)
	assert.Equal(t, CompletionChecks{true, true, true, true}, result.Checks)
}

func TestEvaluateCompletion_MissingProceduralPosition(t *testing.T) {
	items := []AgendaFact{
		{ItemNo: 1, Title: "Chair election", ResolutionStatus: models.ResolutionStatusApproved},
		{ItemNo: 2, Title: "Secretary election", ResolutionStatus: models.ResolutionStatusApproved},
		{ItemNo: 4, Title: "Budget", ResolutionStatus: models.ResolutionStatusApproved},
	}

	for _, mode := range []Mode{ModeTest, ModeProduction} {
		result := EvaluateCompletion(mode, CompletionFacts{AgendaItems: items, QuorumMet: true, ProtocolSigned: true})
		assert.False(t, result.Ready, mode)
		assert.False(t, result.Checks.ProceduralItemsApproved)
		require.Len(t, result.ProceduralIssues, 1)
		assert.Equal(t, 3, result.ProceduralIssues[0].ItemNo)
		assert.True(t, result.ProceduralIssues[0].Missing)
		assert.Contains(t, result.Missing[0], "Procedural item 3 is missing")
	}
}

func TestEvaluateCompletion_ReportsEveryDeficiency(t *testing.T) {
	items := []AgendaFact{
		{ItemNo: 1, Title: "Chair election", ResolutionStatus: models.ResolutionStatusProposed},
		{ItemNo: 3, Title: "Agenda approval"},
	}

	result := EvaluateCompletion(ModeProduction, CompletionFacts{AgendaItems: items, OpenVotes: 2})
	assert.False(t, result.Ready)
	require.Len(t, result.ProceduralIssues, 3)
	assert.Equal(t, ProceduralIssue{ItemNo: 1, Title: "Chair election", Status: "PROPOSED"}, result.ProceduralIssues[0])
	assert.Equal(t, ProceduralIssue{ItemNo: 2, Missing: true}, result.ProceduralIssues[1])
	assert.Equal(t, ProceduralIssue{ItemNo: 3, Title: "Agenda approval"}, result.ProceduralIssues[2])
	// three procedural, open votes, quorum, protocol
	assert.Len(t, result.Missing, 6)
	assert.Contains(t, result.Missing, "2 vote(s) are still open")
}

func TestIsAgendaItemLocked(t *testing.T) {
	items := approvedProcedure()
	assert.False(t, IsAgendaItemLocked(4, items))

	items[1].ResolutionStatus = models.ResolutionStatusProposed
	assert.True(t, IsAgendaItemLocked(4, items))
	assert.False(t, IsAgendaItemLocked(2, items))
}

func TestQuorumMet(t *testing.T) {
	assert.True(t, QuorumMet(Attendance{InPerson: 3, Remote: 2, ActiveMembers: 10}, 50))
	assert.False(t, QuorumMet(Attendance{InPerson: 3, Remote: 1, ActiveMembers: 10}, 50))
	assert.False(t, QuorumMet(Attendance{}, 0))
	assert.InDelta(t, 40.0, Attendance{InPerson: 4, ActiveMembers: 10}.Percentage(), 0.0001)
}

func TestChecklist(t *testing.T) {
	result := EvaluateCompletion(ModeTest, CompletionFacts{AgendaItems: approvedProcedure(), OpenVotes: 1})
	rows := Checklist(result)
	require.Len(t, rows, 4)

	assert.Equal(t, "Procedural items approved", rows[0].Requirement)
	assert.True(t, rows[0].Met)
	assert.True(t, rows[0].Required)
	assert.False(t, rows[1].Met)
	assert.Equal(t, "1 vote(s) still open", rows[1].Details)
	assert.False(t, rows[2].Required)
	assert.False(t, rows[3].Required)

	rows = Checklist(EvaluateCompletion(ModeProduction, CompletionFacts{}))
	assert.True(t, rows[2].Required)
	assert.True(t, rows[3].Required)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode(" production ")
	require.NoError(t, err)
	assert.Equal(t, ModeProduction, mode)

	_, err = ParseMode("staging")
	assert.Error(t, err)
}
