package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

// EnsureAdminInput holds the bootstrap administrator credentials.
type EnsureAdminInput struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdminUseCase creates the administrator account on first start.
type EnsureAdminUseCase struct {
	userRepo        adapter.UserRepository
	passwordService adapter.PasswordService
}

// NewEnsureAdminUseCase creates a new EnsureAdminUseCase instance.
func NewEnsureAdminUseCase(userRepo adapter.UserRepository, passwordService adapter.PasswordService) *EnsureAdminUseCase {
	return &EnsureAdminUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
	}
}

// Execute creates the admin if no user holds the email yet. It returns the
// existing user untouched otherwise, so restarts never reset a changed password.
func (uc *EnsureAdminUseCase) Execute(ctx context.Context, input EnsureAdminInput) (*entity.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, nil
	}

	existing, err := uc.userRepo.FindByEmail(ctx, input.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainerror.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := uc.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	name := input.Name
	if name == "" {
		name = "Administrator"
	}
	admin := entity.NewUser(name, input.Email, hash, "")
	admin.Role = entity.UserRoleAdmin
	if err := uc.userRepo.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("Bootstrap admin created", "email", admin.Email)
	return admin, nil
}
