package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/domain/entity"
)

// TokenClaims represents the claims contained in an access token.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	Role      entity.UserRole
	ExpiresAt time.Time
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	// GenerateAccessToken issues a signed access token for the user.
	GenerateAccessToken(ctx context.Context, user *entity.User) (string, time.Time, error)

	// ValidateAccessToken validates an access token and returns its claims.
	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)
}
