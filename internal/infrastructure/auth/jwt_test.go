package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidboard/backend/internal/domain/shared"
)

const testSecret = "test-secret-key-at-least-32-chars!"

func TestJWTService(t *testing.T) {
	svc := NewJWTService(testSecret, "bidboard-test", time.Hour)
	userID := uuid.New()

	t.Run("round trips a signed token", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, "poster")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "poster", claims.Role)
		assert.Equal(t, "bidboard-test", claims.Issuer)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		other := NewJWTService("another-secret-key-32-characters!!", "bidboard-test", time.Hour)
		token, err := other.GenerateToken(userID, "poster")
		require.NoError(t, err)

		_, err = svc.ParseToken(token)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("rejects a token from another issuer", func(t *testing.T) {
		other := NewJWTService(testSecret, "someone-else", time.Hour)
		token, err := other.GenerateToken(userID, "poster")
		require.NoError(t, err)

		_, err = svc.ParseToken(token)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := NewJWTService(testSecret, "bidboard-test", -time.Minute)
		token, err := expired.GenerateToken(userID, "poster")
		require.NoError(t, err)

		_, err = svc.ParseToken(token)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ParseToken("not-a-token")
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestVerifyToken(t *testing.T) {
	svc := NewJWTService(testSecret, "bidboard-test", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "contractor")
	require.NoError(t, err)

	got, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = svc.VerifyToken("bogus")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
