package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/backend/internal/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(config.JWTConfig{
		SigningKey:     "test-signing-key",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)
	return manager
}

func TestNewManager_RequiresKeyAndTTL(t *testing.T) {
	_, err := NewManager(config.JWTConfig{AccessTokenTTL: time.Minute})
	assert.Error(t, err)

	_, err = NewManager(config.JWTConfig{SigningKey: "key"})
	assert.Error(t, err)
}

func TestManager_RoundTrip(t *testing.T) {
	manager := testManager(t)
	userID := uuid.New()

	token, ttl, err := manager.NewJWT(userID, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	parsedID, role, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), parsedID)
	assert.Equal(t, RoleAdmin, role)
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	manager := testManager(t)

	other, err := NewManager(config.JWTConfig{
		SigningKey:     "different-key",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	token, _, err := other.NewJWT(uuid.New(), RoleUser)
	require.NoError(t, err)

	_, _, err = manager.Parse(token)
	assert.Error(t, err)
}

func TestManager_RejectsGarbage(t *testing.T) {
	manager := testManager(t)

	_, _, err := manager.Parse("not.a.token")
	assert.Error(t, err)
}
