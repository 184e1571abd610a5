package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/governance-api/internal/dto"
	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/models"
)

func TestOrganizationHandler_RequiresSession(t *testing.T) {
	env := setupAPITestEnv(t, governance.ModeTest)

	w := env.do(t, http.MethodGet, "/api/organizations", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrganizationHandler_CreateAndList(t *testing.T) {
	env := setupAPITestEnv(t, governance.ModeTest)

	w := env.do(t, http.MethodPost, "/api/organizations", env.owner.ID, map[string]string{"name": "Sodų bendrija"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.OrganizationDTO](t, w)
	assert.Equal(t, "Sodų bendrija", created.Name)
	assert.NotEmpty(t, created.InviteCode)

	w = env.do(t, http.MethodGet, "/api/organizations", env.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string][]dto.OrganizationWithRoleDTO](t, w)
	require.Len(t, list["organizations"], 2)
	for _, org := range list["organizations"] {
		assert.Equal(t, models.RoleOwner, org.Role)
		assert.Equal(t, models.MemberStatusActive, org.MemberStatus)
	}
}

func TestOrganizationHandler_JoinLeavesMemberPending(t *testing.T) {
	env := setupAPITestEnv(t, governance.ModeTest)
	user := env.createUser(t, "applicant")

	w := env.do(t, http.MethodPost, "/api/organizations/join", user.ID, map[string]string{"invite_code": "unknown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/organizations/join", user.ID, map[string]string{"invite_code": env.org.InviteCode})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	joined := decode[dto.JoinOrganizationResponse](t, w)
	assert.Equal(t, models.MemberStatusPending, joined.Membership.MemberStatus)

	// Pending members cannot see the organization yet.
	w = env.do(t, http.MethodGet, env.orgPath(""), user.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/organizations/join", user.ID, map[string]string{"invite_code": env.org.InviteCode})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrganizationHandler_OutsiderGetsNotFound(t *testing.T) {
	env := setupAPITestEnv(t, governance.ModeTest)
	outsider := env.createUser(t, "outsider")

	w := env.do(t, http.MethodGet, env.orgPath(""), outsider.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrganizationHandler_GetOrganizationHidesInviteCodeFromMembers(t *testing.T) {
	env := setupAPITestEnv(t, governance.ModeTest)
	user, _ := env.addMember(t, "member")

	w := env.do(t, http.MethodGet, env.orgPath(""), user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[dto.OrganizationDetailDTO](t, w)
	assert.Empty(t, detail.InviteCode)
	assert.Equal(t, models.RoleMember, detail.YourRole)
	assert.Len(t, detail.Members, 2)

	w = env.do(t, http.MethodGet, env.orgPath(""), env.owner.ID, nil)
	detail = decode[dto.OrganizationDetailDTO](t, w)
	assert.Equal(t, env.org.InviteCode, detail.InviteCode)
}

func TestOrganizationHandler_UpdateRequiresAdmin(t *testing.T) {
	env := setupAPITestEnv(t, governance.ModeTest)
	user, _ := env.addMember(t, "member")

	w := env.do(t, http.MethodPut, env.orgPath(""), user.ID, map[string]string{"name": "Renamed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPut, env.orgPath(""), env.owner.ID, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", decode[dto.OrganizationDTO](t, w).Name)

	w = env.do(t, http.MethodPost, env.orgPath("/regenerate-code"), env.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, env.org.InviteCode, decode[map[string]string](t, w)["invite_code"])
}

func TestOrganizationHandler_GovernanceSettings(t *testing.T) {
	env := setupAPITestEnv(t, governance.ModeTest)

	w := env.do(t, http.MethodGet, env.orgPath("/governance"), env.owner.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	settings := decode[dto.GovernanceSettingsDTO](t, w)
	assert.Empty(t, settings.Stored)
	assert.Equal(t, governance.DefaultMeetingNoticeDays, settings.Effective.MeetingNoticeDays)
	assert.ElementsMatch(t, governance.ConfigKeys(), settings.KnownKeys)

	w = env.do(t, http.MethodPut, env.orgPath("/governance"), env.owner.ID, map[string]string{
		governance.KeyQuorumPercentage: "60",
		governance.KeyEarlyVotingDays:  "5",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	settings = decode[dto.GovernanceSettingsDTO](t, w)
	assert.Equal(t, 60.0, settings.Effective.QuorumPercentage)
	assert.Equal(t, 5, settings.Effective.EarlyVotingDays)

	w = env.do(t, http.MethodPut, env.orgPath("/governance"), env.owner.ID, map[string]string{"voting_color": "blue"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, env.orgPath("/governance"), env.owner.ID, map[string]string{governance.KeyQuorumPercentage: "most"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
