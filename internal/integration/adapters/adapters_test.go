package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

func TestTokenService(t *testing.T) {
	ctx := context.Background()
	service := NewTokenService("test-secret", time.Hour)

	t.Run("round trip keeps the role", func(t *testing.T) {
		admin := entity.NewUser("Priya", "priya@example.com", "hash", "India")
		admin.Role = entity.UserRoleAdmin

		token, expiresAt, err := service.GenerateAccessToken(ctx, admin)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

		claims, err := service.ValidateAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, claims.UserID)
		assert.Equal(t, "priya@example.com", claims.Email)
		assert.Equal(t, entity.UserRoleAdmin, claims.Role)
	})

	t.Run("wrong secret", func(t *testing.T) {
		user := entity.NewUser("Asha", "asha@example.com", "hash", "India")
		token, _, err := NewTokenService("other-secret", time.Hour).GenerateAccessToken(ctx, user)
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		claims := CustomClaims{
			UserID: "3b241101-e2bb-4255-8caf-4136c566a962",
			Role:   "USER",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(past),
				Issuer:    tokenIssuer,
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, domainerror.ErrExpiredToken)
	})

	t.Run("unknown role is downgraded", func(t *testing.T) {
		claims := CustomClaims{
			UserID: "3b241101-e2bb-4255-8caf-4136c566a962",
			Role:   "ROOT",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Issuer:    tokenIssuer,
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		parsed, err := service.ValidateAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, entity.UserRoleUser, parsed.Role)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.ValidateAccessToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})
}

func TestPasswordService(t *testing.T) {
	service := NewPasswordService(bcrypt.MinCost)

	hash, err := service.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, service.VerifyPassword(hash, "s3cret-pass"))
	assert.Error(t, service.VerifyPassword(hash, "wrong"))
}
