//go:build integration

package integration

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhaus/backoffice/test/integration/testutil"
)

func TestAdminLogin_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SeedAdmin("boss", "correct-horse-battery", "superadmin")

	resp := env.POST("/auth/login", map[string]string{
		"username": "boss", "password": "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	env.DecodeBody(resp, &result)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "superadmin", result.Role)

	// The minted token opens the admin surface.
	resp = env.AuthGET("/admin/ranks", result.Token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminLogin_LockoutAfterFailures(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SeedAdmin("locked", "right-password-here", "admin")

	for i := 0; i < 5; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"username": "locked", "password": "wrong",
		}, "")
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// Even the correct password is refused while locked.
	resp := env.POST("/auth/login", map[string]string{
		"username": "locked", "password": "right-password-here",
	}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
}

func TestAdminRanks_CreateAndAttachRewards(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.AdminToken("admin")

	resp := env.POST("/admin/packs", map[string]string{"name": "starter"}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var pack struct {
		ID uuid.UUID `json:"id"`
	}
	env.DecodeBody(resp, &pack)

	resp = env.POST("/admin/ranks", map[string]interface{}{
		"name": "Silver", "min_points": 500,
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rank struct {
		ID uuid.UUID `json:"id"`
	}
	env.DecodeBody(resp, &rank)

	resp = env.AuthPATCH("/admin/ranks/"+rank.ID.String()+"/rewards", map[string]interface{}{
		"bonus_days": 14, "pack_id": pack.ID,
	}, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The pack cannot be deleted while a rank references it.
	resp = env.AuthDELETE("/admin/packs/"+pack.ID.String(), token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdminRanks_DuplicateThresholdRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.AdminToken("admin")

	resp := env.POST("/admin/ranks", map[string]interface{}{"name": "Gold", "min_points": 1000}, token)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.POST("/admin/ranks", map[string]interface{}{"name": "Other", "min_points": 1000}, token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdmin_ViewerCannotWrite(t *testing.T) {
	env := testutil.NewTestEnv(t)
	viewer := env.AdminToken("viewer")

	resp := env.AuthGET("/admin/ranks", viewer)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.POST("/admin/ranks", map[string]interface{}{"name": "Nope", "min_points": 10}, viewer)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminStats_Dashboard(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SeedRank("Newbie", 0, 0)
	service := env.ServiceToken()

	for _, id := range []int64{700, 701, 702} {
		resp := env.POST("/profiles/"+strconv.FormatInt(id, 10)+"/daily", nil, service)
		resp.Body.Close()
	}
	env.App.Bus.Wait()

	resp := env.AuthGET("/admin/stats/dashboard?leaderboard=2", env.AdminToken("viewer"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var overview struct {
		TotalProfiles int `json:"total_profiles"`
		Leaderboard   []struct {
			UserID int64 `json:"user_id"`
		} `json:"leaderboard"`
	}
	env.DecodeBody(resp, &overview)
	assert.Equal(t, 3, overview.TotalProfiles)
	assert.Len(t, overview.Leaderboard, 2)
}
