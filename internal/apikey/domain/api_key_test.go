package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRole_Validate(t *testing.T) {
	t.Run("Success_KnownRoles", func(t *testing.T) {
		for _, r := range []Role{RoleAdmin, RoleOperator, RoleAuditor} {
			assert.NoError(t, r.Validate())
		}
	})

	t.Run("Error_UnknownRole", func(t *testing.T) {
		err := Role("superuser").Validate()
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func newTestAPIKey(role Role) *APIKey {
	return NewAPIKey("ci-pipeline", "tv_abc12345", "argon2id-hash", role, nil, time.Now().UTC())
}

func TestAPIKey_Can(t *testing.T) {
	t.Run("Success_AdminHasAllCapabilities", func(t *testing.T) {
		key := newTestAPIKey(RoleAdmin)
		assert.True(t, key.Can(CapabilityVaultAdmin))
		assert.True(t, key.Can(CapabilityTokenOps))
		assert.True(t, key.Can(CapabilityAuditRead))
	})

	t.Run("Success_OperatorHasTokenOpsOnly", func(t *testing.T) {
		key := newTestAPIKey(RoleOperator)
		assert.True(t, key.Can(CapabilityTokenOps))
		assert.False(t, key.Can(CapabilityVaultAdmin))
		assert.False(t, key.Can(CapabilityAuditRead))
	})

	t.Run("Success_AuditorHasAuditReadOnly", func(t *testing.T) {
		key := newTestAPIKey(RoleAuditor)
		assert.True(t, key.Can(CapabilityAuditRead))
		assert.False(t, key.Can(CapabilityTokenOps))
		assert.False(t, key.Can(CapabilityVaultAdmin))
	})

	t.Run("Error_UnknownRoleGrantsNothing", func(t *testing.T) {
		key := newTestAPIKey(Role("superuser"))
		assert.False(t, key.Can(CapabilityTokenOps))
	})
}

func TestAPIKey_IsUsable(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success_ActiveKeyWithoutExpiry", func(t *testing.T) {
		key := newTestAPIKey(RoleOperator)
		assert.True(t, key.IsUsable(now))
	})

	t.Run("Success_ActiveKeyBeforeExpiry", func(t *testing.T) {
		key := newTestAPIKey(RoleOperator)
		expiry := now.Add(time.Hour)
		key.ExpiresAt = &expiry
		assert.True(t, key.IsUsable(now))
	})

	t.Run("Error_ExpiredKey", func(t *testing.T) {
		key := newTestAPIKey(RoleOperator)
		expiry := now.Add(-time.Minute)
		key.ExpiresAt = &expiry
		assert.False(t, key.IsUsable(now))
	})

	t.Run("Error_ExpiryExactlyNow", func(t *testing.T) {
		key := newTestAPIKey(RoleOperator)
		key.ExpiresAt = &now
		assert.False(t, key.IsUsable(now))
	})

	t.Run("Error_RevokedKey", func(t *testing.T) {
		key := newTestAPIKey(RoleOperator)
		_ = key.Revoke(now)
		assert.False(t, key.IsUsable(now))
	})
}

func TestAPIKey_Revoke(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success_ActiveKey", func(t *testing.T) {
		key := newTestAPIKey(RoleAdmin)
		err := key.Revoke(now)
		assert.NoError(t, err)
		assert.Equal(t, StatusRevoked, key.Status)
		assert.Equal(t, now, *key.RevokedAt)
	})

	t.Run("Error_AlreadyRevoked", func(t *testing.T) {
		key := newTestAPIKey(RoleAdmin)
		_ = key.Revoke(now)
		err := key.Revoke(now)
		assert.ErrorIs(t, err, ErrAlreadyRevoked)
	})
}

func TestAPIKey_RecordUsage(t *testing.T) {
	key := newTestAPIKey(RoleOperator)
	assert.Nil(t, key.LastUsedAt)

	now := time.Now().UTC()
	key.RecordUsage(now)
	assert.Equal(t, now, *key.LastUsedAt)
}

func TestNewAPIKey(t *testing.T) {
	now := time.Now().UTC()
	key := NewAPIKey("ci-pipeline", "tv_abc12345", "hash", RoleOperator, nil, now)

	assert.NotEqual(t, uuid.Nil, key.ID)
	assert.Equal(t, "ci-pipeline", key.Name)
	assert.Equal(t, "tv_abc12345", key.Prefix)
	assert.Equal(t, StatusActive, key.Status)
	assert.Equal(t, now, key.CreatedAt)
}
