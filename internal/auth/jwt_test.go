package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)
	adminID := uuid.New()

	token, err := mgr.GenerateToken(RealmAdmin, adminID, "ops", RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RealmAdmin, claims.Realm)
	assert.Equal(t, adminID.String(), claims.Subject)
	assert.Equal(t, "ops", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestJWT_RealmMismatch(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)

	token, err := mgr.GenerateToken(RealmService, uuid.New(), "gateway", "")
	require.NoError(t, err)

	_, err = mgr.ValidateTokenForRealm(token, RealmAdmin)
	require.Error(t, err)

	_, err = mgr.ValidateTokenForRealm(token, RealmService)
	require.NoError(t, err)
}

func TestJWT_UnknownRealm(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)

	_, err := mgr.GenerateToken("ghost", uuid.New(), "x", "")
	require.Error(t, err)
}

func TestJWT_ExpiredToken(t *testing.T) {
	mgr := NewJWTManager("test-secret", -time.Minute, time.Hour)

	token, err := mgr.GenerateToken(RealmAdmin, uuid.New(), "ops", RoleAdmin)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	require.Error(t, err)
}

func TestJWT_WrongSecretRejected(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)
	other := NewJWTManager("other-secret", time.Hour, time.Hour)

	token, err := mgr.GenerateToken(RealmAdmin, uuid.New(), "ops", RoleAdmin)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestJWT_TamperedToken(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)

	token, err := mgr.GenerateToken(RealmAdmin, uuid.New(), "ops", RoleAdmin)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token + "x")
	require.Error(t, err)
}
