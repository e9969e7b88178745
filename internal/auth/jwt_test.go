package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, 8*time.Hour)
	subject := uuid.New()

	token, err := mgr.GenerateToken(RealmService, subject, "", "sess-1")
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, subject.String(), claims.Subject)
	assert.Equal(t, RealmService, claims.Realm)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestGenerateToken_UnknownRealm(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, 8*time.Hour)
	_, err := mgr.GenerateToken("robot", uuid.New(), "", "")
	assert.Error(t, err)
}

func TestValidateTokenForRealm_RejectsWrongRealm(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, 8*time.Hour)

	token, err := mgr.GenerateToken(RealmAdmin, uuid.New(), RoleAdmin, "")
	require.NoError(t, err)

	claims, err := mgr.ValidateTokenForRealm(token, RealmAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = mgr.ValidateTokenForRealm(token, RealmService)
	assert.Error(t, err)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, 8*time.Hour)
	other := NewJWTManager("other-secret", time.Hour, 8*time.Hour)

	token, err := mgr.GenerateToken(RealmService, uuid.New(), "", "")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	mgr := NewJWTManager("test-secret", -time.Minute, 8*time.Hour)

	token, err := mgr.GenerateToken(RealmService, uuid.New(), "", "")
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, 8*time.Hour)
	_, err := mgr.ValidateToken("not.a.token")
	assert.Error(t, err)
}
