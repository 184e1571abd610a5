package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/governance-api/internal/constants"
	"github.com/yukikurage/governance-api/internal/database"
	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testUserHeader = "X-Test-User"

func init() {
	gin.SetMode(gin.TestMode)
}

type apiTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
	svc    Services
	clock  *time.Time

	owner *models.User
	org   *models.Organization
}

// testLogin stands in for the application that issues sessions.
func testLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(testUserHeader); raw != "" {
			id, _ := strconv.ParseUint(raw, 10, 64)
			sessions.Default(c).Set(constants.ContextKeyUserID, id)
		}
		c.Next()
	}
}

func setupAPITestEnv(t *testing.T, mode governance.Mode) *apiTestEnv {
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

	database.SetDB(db)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	env := &apiTestEnv{db: db, clock: &now}
	clock := func() time.Time { return *env.clock }

	env.svc = NewServices(db, mode)
	env.svc.Meetings.WithClock(clock)
	env.svc.Voting.WithClock(clock)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	r.Use(testLogin())
	RegisterRoutes(r, env.svc)
	env.router = r

	env.owner = env.createUser(t, "chair")
	env.org, err = env.svc.Organizations.CreateOrganization(services.CreateOrganizationInput{
		Name:    "Daugiabučio bendrija",
		OwnerID: env.owner.ID,
	})
	require.NoError(t, err)

	return env
}

func (env *apiTestEnv) advance(d time.Duration) {
	next := env.clock.Add(d)
	env.clock = &next
}

func (env *apiTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

// addMember joins the organization and activates the membership.
func (env *apiTestEnv) addMember(t *testing.T, username string) (*models.User, *models.Membership) {
	t.Helper()
	user := env.createUser(t, username)
	_, member, err := env.svc.Organizations.JoinOrganizationByInvite(user.ID, env.org.InviteCode)
	require.NoError(t, err)

	member, err = env.svc.Memberships.TransitionMembership(services.TransitionMembershipInput{
		OrganizationID: env.org.ID,
		MembershipID:   member.ID,
		Target:         models.MemberStatusActive,
		Reason:         "Membership application approved",
		ActorID:        env.owner.ID,
	})
	require.NoError(t, err)
	return user, member
}

func (env *apiTestEnv) orgPath(suffix string) string {
	return "/api/organizations/" + strconv.FormatUint(env.org.ID, 10) + suffix
}

func (env *apiTestEnv) do(t *testing.T, method, path string, userID uint64, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set(testUserHeader, strconv.FormatUint(userID, 10))
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}
