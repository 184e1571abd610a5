package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
)

func setupVotingMeeting(t *testing.T, env *testEnv) (*models.Meeting, *models.Vote) {
	t.Helper()

	_, err := env.orgs.UpdateGovernanceSettings(env.org.ID, map[string]string{governance.KeyEarlyVotingDays: "3"})
	require.NoError(t, err)

	statuses := append(append([]models.ResolutionStatus{}, procedureApproved...), models.ResolutionStatusProposed)
	meeting := env.createMeeting(t, month, statuses...)
	_, err = env.meetings.PublishMeeting(env.org.ID, meeting.ID)
	require.NoError(t, err)

	vote, err := env.voting.OpenVote(env.org.ID, meeting.ID, env.agendaItemID(t, meeting.ID, 4), "")
	require.NoError(t, err)
	assert.Equal(t, models.VoteKindMeeting, vote.Kind)
	return meeting, vote
}

func TestVotingService_RemoteBallotWindow(t *testing.T) {
	env := setupTestEnv(t, governance.ModeTest)
	_, vote := setupVotingMeeting(t, env)
	early := env.addActiveMember(t, "early")
	late := env.addActiveMember(t, "late")

	ballot := func(member *models.Membership) error {
		var user models.User
		require.NoError(t, env.db.First(&user, member.UserID).Error)
		_, err := env.voting.CastRemoteBallot(CastRemoteBallotInput{
			OrganizationID: env.org.ID,
			VoteID:         vote.ID,
			UserID:         user.ID,
			Choice:         models.ChoiceFor,
		})
		return err
	}

	assert.ErrorIs(t, ballot(early), governance.ErrVotingNotOpen)

	env.advance(month - 3*24*time.Hour)
	require.NoError(t, ballot(early))
	assert.ErrorIs(t, ballot(early), ErrAlreadyVoted)

	env.advance(3 * 24 * time.Hour)
	assert.ErrorIs(t, ballot(late), governance.ErrVotingFrozen)
}

func TestVotingService_IneligibleMember(t *testing.T) {
	env := setupTestEnv(t, governance.ModeTest)
	_, vote := setupVotingMeeting(t, env)
	env.advance(month - time.Hour)

	member := env.addActiveMember(t, "debtor")
	_, err := env.members.TransitionMembership(TransitionMembershipInput{
		OrganizationID: env.org.ID,
		MembershipID:   member.ID,
		Target:         models.MemberStatusSuspended,
		Reason:         "Unpaid maintenance fees",
	})
	require.NoError(t, err)

	_, err = env.voting.CastRemoteBallot(CastRemoteBallotInput{
		OrganizationID: env.org.ID, VoteID: vote.ID, UserID: member.UserID, Choice: models.ChoiceAgainst,
	})
	assert.ErrorIs(t, err, ErrMemberNotEligible)

	outsider := env.createUser(t, "outsider")
	_, err = env.voting.CastRemoteBallot(CastRemoteBallotInput{
		OrganizationID: env.org.ID, VoteID: vote.ID, UserID: outsider.ID, Choice: models.ChoiceAgainst,
	})
	assert.ErrorIs(t, err, ErrNotOrganizationMember)

	_, err = env.voting.CastRemoteBallot(CastRemoteBallotInput{
		OrganizationID: env.org.ID, VoteID: vote.ID, UserID: env.owner.ID, Choice: "MAYBE",
	})
	assert.ErrorIs(t, err, ErrInvalidChoice)
}

func TestVotingService_SuspendedMemberUnderLenientSnapshot(t *testing.T) {
	env := setupTestEnv(t, governance.ModeTest)
	_, err := env.orgs.UpdateGovernanceSettings(env.org.ID, map[string]string{governance.KeyCheckSuspensions: "false"})
	require.NoError(t, err)
	_, vote := setupVotingMeeting(t, env)

	// Tightening the rule after publication does not reach the frozen snapshot.
	_, err = env.orgs.UpdateGovernanceSettings(env.org.ID, map[string]string{governance.KeyCheckSuspensions: "true"})
	require.NoError(t, err)

	member := env.addActiveMember(t, "suspended")
	_, err = env.members.TransitionMembership(TransitionMembershipInput{
		OrganizationID: env.org.ID,
		MembershipID:   member.ID,
		Target:         models.MemberStatusSuspended,
		Reason:         "Unpaid maintenance fees",
	})
	require.NoError(t, err)

	env.advance(month - time.Hour)
	ballot, err := env.voting.CastRemoteBallot(CastRemoteBallotInput{
		OrganizationID: env.org.ID, VoteID: vote.ID, UserID: member.UserID, Choice: models.ChoiceAbstain,
	})
	require.NoError(t, err)
	assert.Equal(t, member.ID, ballot.MembershipID)
}

func TestVotingService_OpenVoteOnLockedItem(t *testing.T) {
	env := setupTestEnv(t, governance.ModeTest)
	meeting := env.createMeeting(t, month,
		models.ResolutionStatusApproved,
		models.ResolutionStatusApproved,
		models.ResolutionStatusProposed,
		models.ResolutionStatusProposed,
	)

	_, err := env.voting.OpenVote(env.org.ID, meeting.ID, env.agendaItemID(t, meeting.ID, 3), models.VoteKindMeeting)
	assert.ErrorIs(t, err, ErrMeetingNotPublished)

	_, err = env.meetings.PublishMeeting(env.org.ID, meeting.ID)
	require.NoError(t, err)

	_, err = env.voting.OpenVote(env.org.ID, meeting.ID, env.agendaItemID(t, meeting.ID, 4), models.VoteKindMeeting)
	assert.ErrorIs(t, err, governance.ErrAgendaItemLocked)

	_, err = env.voting.OpenVote(env.org.ID, meeting.ID, env.agendaItemID(t, meeting.ID, 3), models.VoteKindMeeting)
	require.NoError(t, err)

	_, err = env.voting.OpenVote(env.org.ID, meeting.ID, 99999, models.VoteKindMeeting)
	assert.ErrorIs(t, err, ErrAgendaItemNotFound)
}

func TestVotingService_CloseVote(t *testing.T) {
	env := setupTestEnv(t, governance.ModeTest)
	_, vote := setupVotingMeeting(t, env)

	closed, err := env.voting.CloseVote(env.org.ID, vote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoteStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	_, err = env.voting.CloseVote(env.org.ID, vote.ID)
	assert.ErrorIs(t, err, ErrVoteClosed)

	_, err = env.voting.CastRemoteBallot(CastRemoteBallotInput{
		OrganizationID: env.org.ID, VoteID: vote.ID, UserID: env.owner.ID, Choice: models.ChoiceFor,
	})
	assert.ErrorIs(t, err, ErrVoteClosed)

	_, err = env.voting.CloseVote(env.org.ID+1, vote.ID)
	assert.ErrorIs(t, err, ErrVoteNotFound)
}
