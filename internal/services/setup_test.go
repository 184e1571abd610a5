package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/governance-api/internal/database"
	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	clock *time.Time

	orgRepo     repository.OrganizationRepository
	memberRepo  repository.MembershipRepository
	users       repository.UserRepository
	orgs        *OrganizationService
	members     *MembershipService
	resolutions *ResolutionService
	meetings    *MeetingService
	voting      *VotingService

	org   *models.Organization
	owner *models.User
}

func setupTestEnv(t *testing.T, mode governance.Mode) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(database.AllModels()...))

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	env := &testEnv{db: db, clock: &now}
	clock := func() time.Time { return *env.clock }

	env.orgRepo = repository.NewOrganizationRepository(db)
	env.memberRepo = repository.NewMembershipRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	resolutionRepo := repository.NewResolutionRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	env.users = repository.NewUserRepository(db)
	env.orgs = NewOrganizationService(env.orgRepo, env.memberRepo, env.users)
	env.orgs.now = clock
	env.members = NewMembershipService(env.memberRepo)
	env.resolutions = NewResolutionService(resolutionRepo, meetingRepo)
	env.resolutions.now = clock
	env.meetings = NewMeetingService(meetingRepo, env.orgRepo, resolutionRepo, env.memberRepo, voteRepo, mode).WithClock(clock)
	env.voting = NewVotingService(voteRepo, meetingRepo, env.memberRepo, env.orgRepo).WithClock(clock)

	env.owner = env.createUser(t, "chair")
	env.org, err = env.orgs.CreateOrganization(CreateOrganizationInput{Name: "Daugiabučio bendrija", OwnerID: env.owner.ID})
	require.NoError(t, err)

	return env
}

func (env *testEnv) advance(d time.Duration) {
	next := env.clock.Add(d)
	env.clock = &next
}

func (env *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, env.users.Create(user))
	return user
}

// addActiveMember joins a new user by invite and activates them.
func (env *testEnv) addActiveMember(t *testing.T, username string) *models.Membership {
	t.Helper()
	user := env.createUser(t, username)
	_, member, err := env.orgs.JoinOrganizationByInvite(user.ID, env.org.InviteCode)
	require.NoError(t, err)

	member, err = env.members.TransitionMembership(TransitionMembershipInput{
		OrganizationID: env.org.ID,
		MembershipID:   member.ID,
		Target:         models.MemberStatusActive,
		Reason:         "Approved by the board",
		ActorID:        env.owner.ID,
	})
	require.NoError(t, err)
	return member
}

func (env *testEnv) ownerMembership(t *testing.T) *models.Membership {
	t.Helper()
	member, err := env.memberRepo.FindByOrganizationAndUser(env.org.ID, env.owner.ID)
	require.NoError(t, err)
	return member
}

// createResolution drafts a resolution and moves it to status.
func (env *testEnv) createResolution(t *testing.T, title string, status models.ResolutionStatus) *models.Resolution {
	t.Helper()
	res, err := env.resolutions.CreateResolution(CreateResolutionInput{
		OrganizationID: env.org.ID,
		Title:          title,
		CreatedBy:      env.owner.ID,
	})
	require.NoError(t, err)

	path := map[models.ResolutionStatus][]models.ResolutionStatus{
		models.ResolutionStatusDraft:    nil,
		models.ResolutionStatusProposed: {models.ResolutionStatusProposed},
		models.ResolutionStatusApproved: {models.ResolutionStatusProposed, models.ResolutionStatusApproved},
		models.ResolutionStatusRejected: {models.ResolutionStatusProposed, models.ResolutionStatusRejected},
	}
	for _, target := range path[status] {
		res, err = env.resolutions.TransitionResolution(TransitionResolutionInput{
			OrganizationID: env.org.ID,
			ResolutionID:   res.ID,
			Target:         target,
			ActorID:        env.owner.ID,
		})
		require.NoError(t, err)
	}
	return res
}

// createMeeting creates a draft meeting scheduled `in` from now with the given
// agenda. statuses[i] is the resolution status of item i+1. Resolutions are
// placed while undecided and decided afterwards in item order.
func (env *testEnv) createMeeting(t *testing.T, in time.Duration, statuses ...models.ResolutionStatus) *models.Meeting {
	t.Helper()
	at := env.clock.Add(in)
	meeting, err := env.meetings.CreateMeeting(CreateMeetingInput{
		OrganizationID: env.org.ID,
		Title:          "Annual general meeting",
		ScheduledAt:    &at,
		CreatedBy:      env.owner.ID,
	})
	require.NoError(t, err)

	ids := make([]uint64, len(statuses))
	for i, status := range statuses {
		placed := status
		if governance.IsResolutionTerminal(status) {
			placed = models.ResolutionStatusProposed
		}
		res := env.createResolution(t, "Item", placed)
		_, err := env.meetings.AddAgendaItem(env.org.ID, meeting.ID, AddAgendaItemInput{
			ItemNo:       i + 1,
			Title:        "Item",
			ResolutionID: &res.ID,
		})
		require.NoError(t, err)
		ids[i] = res.ID
	}

	for i, status := range statuses {
		if !governance.IsResolutionTerminal(status) {
			continue
		}
		_, err := env.resolutions.TransitionResolution(TransitionResolutionInput{
			OrganizationID: env.org.ID,
			ResolutionID:   ids[i],
			Target:         status,
			ActorID:        env.owner.ID,
		})
		require.NoError(t, err)
	}
	return meeting
}

func (env *testEnv) agendaItemID(t *testing.T, meetingID uint64, itemNo int) uint64 {
	t.Helper()
	var item models.AgendaItem
	require.NoError(t, env.db.Where("meeting_id = ? AND item_no = ?", meetingID, itemNo).First(&item).Error)
	return item.ID
}

func (env *testEnv) resolutionAt(t *testing.T, meetingID uint64, itemNo int) uint64 {
	t.Helper()
	var item models.AgendaItem
	require.NoError(t, env.db.Where("meeting_id = ? AND item_no = ?", meetingID, itemNo).First(&item).Error)
	require.NotNil(t, item.ResolutionID)
	return *item.ResolutionID
}

var procedureApproved = []models.ResolutionStatus{
	models.ResolutionStatusApproved,
	models.ResolutionStatusApproved,
	models.ResolutionStatusApproved,
}
