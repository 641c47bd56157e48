package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTokenType_Validate(t *testing.T) {
	t.Run("Success_KnownTypes", func(t *testing.T) {
		for _, tt := range []TokenType{TypeRandom, TypeFormatPreserving, TypeSequential} {
			assert.NoError(t, tt.Validate())
		}
	})

	t.Run("Error_UnknownType", func(t *testing.T) {
		err := TokenType("uuid").Validate()
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func newTestToken() *Token {
	now := time.Now().UTC()
	return &Token{
		ID:         uuid.Must(uuid.NewV7()),
		VaultID:    uuid.Must(uuid.NewV7()),
		TokenValue: "tok_4f9a2b8c1d3e5f7a",
		TokenType:  TypeRandom,
		KeyVersion: 1,
		Status:     StatusActive,
		DataHash:   "abc123",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestToken_IsExpired(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success_NoExpiry", func(t *testing.T) {
		token := newTestToken()
		assert.False(t, token.IsExpired(now))
	})

	t.Run("Success_FutureExpiry", func(t *testing.T) {
		token := newTestToken()
		expiry := now.Add(time.Hour)
		token.ExpiresAt = &expiry
		assert.False(t, token.IsExpired(now))
	})

	t.Run("Error_PastExpiry", func(t *testing.T) {
		token := newTestToken()
		expiry := now.Add(-time.Minute)
		token.ExpiresAt = &expiry
		assert.True(t, token.IsExpired(now))
	})
}

func TestToken_IsUsable(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success_ActiveToken", func(t *testing.T) {
		token := newTestToken()
		assert.True(t, token.IsUsable(now))
	})

	t.Run("Error_RevokedToken", func(t *testing.T) {
		token := newTestToken()
		token.Status = StatusRevoked
		assert.False(t, token.IsUsable(now))
	})

	t.Run("Error_ExpiredByTimestamp", func(t *testing.T) {
		token := newTestToken()
		expiry := now.Add(-time.Minute)
		token.ExpiresAt = &expiry
		assert.False(t, token.IsUsable(now))
	})
}

func TestToken_WillExpireWithin(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success_InsideWindow", func(t *testing.T) {
		token := newTestToken()
		expiry := now.Add(30 * time.Minute)
		token.ExpiresAt = &expiry
		assert.True(t, token.WillExpireWithin(time.Hour, now))
	})

	t.Run("Error_OutsideWindow", func(t *testing.T) {
		token := newTestToken()
		expiry := now.Add(2 * time.Hour)
		token.ExpiresAt = &expiry
		assert.False(t, token.WillExpireWithin(time.Hour, now))
	})

	t.Run("Error_NoExpiry", func(t *testing.T) {
		token := newTestToken()
		assert.False(t, token.WillExpireWithin(time.Hour, now))
	})
}

func TestToken_RecordUsage(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success_ActiveToken", func(t *testing.T) {
		token := newTestToken()
		err := token.RecordUsage(now)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), token.UsageCount)
		assert.NotNil(t, token.LastUsedAt)

		err = token.RecordUsage(now)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), token.UsageCount)
	})

	t.Run("Error_RevokedToken", func(t *testing.T) {
		token := newTestToken()
		token.Status = StatusRevoked
		err := token.RecordUsage(now)
		assert.ErrorIs(t, err, ErrTokenNotUsable)
		assert.Equal(t, int64(0), token.UsageCount)
	})
}

func TestToken_Revoke(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success_ActiveToken", func(t *testing.T) {
		token := newTestToken()
		err := token.Revoke("card reported stolen", now)
		assert.NoError(t, err)
		assert.Equal(t, StatusRevoked, token.Status)
		assert.Equal(t, "card reported stolen", token.Metadata["revoked_reason"])
		assert.Equal(t, now.Format(time.RFC3339), token.Metadata["revoked_at"])
	})

	t.Run("Error_AlreadyRevoked", func(t *testing.T) {
		token := newTestToken()
		token.Status = StatusRevoked
		err := token.Revoke("again", now)
		assert.ErrorIs(t, err, ErrTokenNotRevocable)
	})

	t.Run("Error_ExpiredStatus", func(t *testing.T) {
		token := newTestToken()
		token.Status = StatusExpired
		err := token.Revoke("too late", now)
		assert.ErrorIs(t, err, ErrTokenNotRevocable)
	})
}

func TestToken_Expire(t *testing.T) {
	now := time.Now().UTC()
	token := newTestToken()

	token.Expire(now)
	assert.Equal(t, StatusExpired, token.Status)
	assert.Equal(t, "expiry elapsed", token.Metadata["expired_reason"])
}

func TestToken_MarkCompromised(t *testing.T) {
	now := time.Now().UTC()
	token := newTestToken()

	token.MarkCompromised("checksum mismatch", now)
	assert.Equal(t, StatusCompromised, token.Status)
	assert.Equal(t, "checksum mismatch", token.Metadata["compromised_reason"])
}

func TestValidateTokenValue(t *testing.T) {
	t.Run("Success_ValidValue", func(t *testing.T) {
		assert.NoError(t, ValidateTokenValue("tok_4f9a2b8c"))
	})

	t.Run("Error_TooShort", func(t *testing.T) {
		err := ValidateTokenValue("short")
		assert.ErrorIs(t, err, ErrInvalidTokenValue)
	})

	t.Run("Error_TooLong", func(t *testing.T) {
		err := ValidateTokenValue(strings.Repeat("ab", MaxTokenLength))
		assert.ErrorIs(t, err, ErrInvalidTokenValue)
	})

	t.Run("Success_AtBounds", func(t *testing.T) {
		assert.NoError(t, ValidateTokenValue("abcd1234"))
		assert.NoError(t, ValidateTokenValue(strings.Repeat("ab", MaxTokenLength/2)))
	})

	t.Run("Error_AllIdenticalCharacters", func(t *testing.T) {
		err := ValidateTokenValue(strings.Repeat("a", 16))
		assert.ErrorIs(t, err, ErrInvalidTokenValue)
	})
}

func TestStatusCounts_Total(t *testing.T) {
	counts := StatusCounts{Active: 5, Revoked: 2, Expired: 1, Compromised: 1}
	assert.Equal(t, int64(9), counts.Total())
}
