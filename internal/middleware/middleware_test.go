package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/governance-api/internal/constants"
	"github.com/yukikurage/governance-api/internal/database"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/telemetry"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
}

func TestMetricsMiddleware_LabelsByRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware(), LoggerMiddleware())
	r.GET("/meetings/:meeting_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := telemetry.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/meetings/:meeting_id", "200")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meetings/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meetings/8", nil))
	assert.Equal(t, before+2, testutil.ToFloat64(counter))

	noRoute := telemetry.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "<no-route>", "404")
	before = testutil.ToFloat64(noRoute)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(noRoute))
}

func TestGetUserID(t *testing.T) {
	tests := []struct {
		value any
		want  uint64
		ok    bool
	}{
		{uint64(7), 7, true},
		{uint(7), 7, true},
		{int64(7), 7, true},
		{7, 7, true},
		{float64(7), 7, true},
		{-1, 0, false},
		{"7", 0, false},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(constants.ContextKeyUserID, tt.value)
		got, ok := GetUserID(c)
		assert.Equal(t, tt.ok, ok, "%T %v", tt.value, tt.value)
		assert.Equal(t, tt.want, got)
	}
}

type accessEnv struct {
	db     *gorm.DB
	router *gin.Engine
	org    models.Organization
}

func setupAccessEnv(t *testing.T) *accessEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	database.SetDB(db)

	env := &accessEnv{db: db}
	env.org = models.Organization{Name: "Bendrija", InviteCode: "ABCD-EFGH-JKLM"}
	require.NoError(t, db.Create(&env.org).Error)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	r.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			var id uint64
			fmt.Sscan(user, &id)
			sessions.Default(c).Set(constants.ContextKeyUserID, id)
		}
		c.Next()
	})

	org := r.Group("/organizations/:id", RequireAuth(), RequireOrganizationAccess())
	org.GET("", func(c *gin.Context) {
		member, _ := GetMembership(c)
		c.String(http.StatusOK, string(member.Role))
	})
	org.POST("/admin", RequireOrganizationAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	org.GET("/meetings/:meeting_id", RequireMeetingAccess(), func(c *gin.Context) {
		meeting, _ := GetMeeting(c)
		c.String(http.StatusOK, meeting.Title)
	})
	org.GET("/resolutions/:resolution_id", RequireResolutionAccess(), func(c *gin.Context) {
		resolution, _ := GetResolution(c)
		c.String(http.StatusOK, resolution.Title)
	})
	env.router = r
	return env
}

func (env *accessEnv) member(t *testing.T, username string, role models.OrganizationRole, status models.MemberStatus) uint64 {
	t.Helper()
	user := models.User{Username: username}
	require.NoError(t, env.db.Create(&user).Error)
	require.NoError(t, env.db.Create(&models.Membership{
		OrganizationID: env.org.ID,
		UserID:         user.ID,
		Role:           role,
		MemberStatus:   status,
		StatusReason:   "Seeded for access checks",
	}).Error)
	return user.ID
}

func (env *accessEnv) get(method, path string, userID uint64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != 0 {
		req.Header.Set("X-Test-User", fmt.Sprint(userID))
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestRequireOrganizationAccess(t *testing.T) {
	env := setupAccessEnv(t)
	owner := env.member(t, "owner", models.RoleOwner, models.MemberStatusActive)
	pending := env.member(t, "pending", models.RoleMember, models.MemberStatusPending)
	suspended := env.member(t, "suspended", models.RoleMember, models.MemberStatusSuspended)

	outsider := models.User{Username: "outsider"}
	require.NoError(t, env.db.Create(&outsider).Error)

	path := fmt.Sprintf("/organizations/%d", env.org.ID)

	assert.Equal(t, http.StatusUnauthorized, env.get(http.MethodGet, path, 0).Code)
	assert.Equal(t, http.StatusBadRequest, env.get(http.MethodGet, "/organizations/abc", owner).Code)
	assert.Equal(t, http.StatusNotFound, env.get(http.MethodGet, "/organizations/999", owner).Code)
	assert.Equal(t, http.StatusNotFound, env.get(http.MethodGet, path, outsider.ID).Code)
	assert.Equal(t, http.StatusForbidden, env.get(http.MethodGet, path, pending).Code)
	assert.Equal(t, http.StatusForbidden, env.get(http.MethodGet, path, suspended).Code)

	w := env.get(http.MethodGet, path, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.RoleOwner), w.Body.String())
}

func TestRequireOrganizationAdmin(t *testing.T) {
	env := setupAccessEnv(t)
	admin := env.member(t, "admin", models.RoleAdmin, models.MemberStatusActive)
	member := env.member(t, "member", models.RoleMember, models.MemberStatusActive)

	path := fmt.Sprintf("/organizations/%d/admin", env.org.ID)
	assert.Equal(t, http.StatusNoContent, env.get(http.MethodPost, path, admin).Code)
	assert.Equal(t, http.StatusForbidden, env.get(http.MethodPost, path, member).Code)
}

func TestRequireMeetingAndResolutionAccess(t *testing.T) {
	env := setupAccessEnv(t)
	member := env.member(t, "member", models.RoleMember, models.MemberStatusActive)

	other := models.Organization{Name: "Other", InviteCode: "ZZZZ-ZZZZ-ZZZZ"}
	require.NoError(t, env.db.Create(&other).Error)

	own := models.Meeting{OrganizationID: env.org.ID, Title: "Annual meeting", Status: models.MeetingStatusDraft, CreatedBy: member}
	foreign := models.Meeting{OrganizationID: other.ID, Title: "Foreign meeting", Status: models.MeetingStatusDraft, CreatedBy: member}
	require.NoError(t, env.db.Create(&own).Error)
	require.NoError(t, env.db.Create(&foreign).Error)

	resolution := models.Resolution{OrganizationID: env.org.ID, Title: "Budget", Status: models.ResolutionStatusDraft, CreatedBy: member}
	require.NoError(t, env.db.Create(&resolution).Error)

	base := fmt.Sprintf("/organizations/%d", env.org.ID)

	w := env.get(http.MethodGet, fmt.Sprintf("%s/meetings/%d", base, own.ID), member)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Annual meeting", w.Body.String())

	assert.Equal(t, http.StatusNotFound, env.get(http.MethodGet, fmt.Sprintf("%s/meetings/%d", base, foreign.ID), member).Code)
	assert.Equal(t, http.StatusBadRequest, env.get(http.MethodGet, base+"/meetings/x", member).Code)

	w = env.get(http.MethodGet, fmt.Sprintf("%s/resolutions/%d", base, resolution.ID), member)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Budget", w.Body.String())
}
