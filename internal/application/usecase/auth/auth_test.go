package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshare/backend/internal/application/adapter"
	"github.com/streamshare/backend/internal/domain/entity"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

type stubUserRepo struct {
	users   map[string]*entity.User
	findErr error
}

func newStubUserRepo(users ...*entity.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.Email] = u
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, user *entity.User) error {
	r.users[user.Email] = user
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domainerror.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, domainerror.ErrUserNotFound
	}
	return u, nil
}

// plainPasswords stores "hashed:" + password so tests stay fast.
type plainPasswords struct{}

func (plainPasswords) HashPassword(password string) (string, error) { return "hashed:" + password, nil }

func (plainPasswords) VerifyPassword(hashed, password string) error {
	if hashed != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(_ context.Context, user *entity.User) (string, time.Time, error) {
	return "token-" + string(user.Role), time.Unix(0, 0), nil
}

func (stubTokens) ValidateAccessToken(context.Context, string) (*adapter.TokenClaims, error) {
	return nil, domainerror.ErrInvalidToken
}

func requireAuthCode(t *testing.T, err error, code domainerror.AuthErrorCode) {
	t.Helper()
	var authErr *domainerror.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, code, authErr.Code)
}

func TestLoginUser(t *testing.T) {
	ctx := context.Background()
	user := entity.NewUser("Asha", "asha@example.com", "hashed:pass1234", "India")

	t.Run("success", func(t *testing.T) {
		uc := NewLoginUserUseCase(newStubUserRepo(user), plainPasswords{}, stubTokens{})
		out, err := uc.Execute(ctx, LoginUserInput{Email: "Asha@Example.com", Password: "pass1234"})
		require.NoError(t, err)
		assert.Equal(t, "token-USER", out.AccessToken)
		assert.Equal(t, user.ID, out.User.ID)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		uc := NewLoginUserUseCase(newStubUserRepo(user), plainPasswords{}, stubTokens{})

		_, err := uc.Execute(ctx, LoginUserInput{Email: "asha@example.com", Password: "nope"})
		requireAuthCode(t, err, domainerror.ErrCodeInvalidCredentials)

		_, err = uc.Execute(ctx, LoginUserInput{Email: "ghost@example.com", Password: "nope"})
		requireAuthCode(t, err, domainerror.ErrCodeInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		uc := NewLoginUserUseCase(newStubUserRepo(), plainPasswords{}, stubTokens{})
		_, err := uc.Execute(ctx, LoginUserInput{Email: " "})
		requireAuthCode(t, err, domainerror.ErrCodeMissingFields)
	})

	t.Run("storage failure is not reported as bad credentials", func(t *testing.T) {
		repo := newStubUserRepo()
		repo.findErr = errors.New("connection reset")
		_, err := NewLoginUserUseCase(repo, plainPasswords{}, stubTokens{}).
			Execute(ctx, LoginUserInput{Email: "asha@example.com", Password: "x"})
		require.Error(t, err)
		var authErr *domainerror.AuthError
		assert.False(t, errors.As(err, &authErr))
	})
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates admin once", func(t *testing.T) {
		repo := newStubUserRepo()
		uc := NewEnsureAdminUseCase(repo, plainPasswords{})

		admin, err := uc.Execute(ctx, EnsureAdminInput{Email: "admin@example.com", Password: "admin123"})
		require.NoError(t, err)
		require.NotNil(t, admin)
		assert.True(t, admin.IsAdmin())
		assert.Equal(t, "Administrator", admin.Name)
		assert.Equal(t, "hashed:admin123", admin.PasswordHash)

		again, err := uc.Execute(ctx, EnsureAdminInput{Email: "admin@example.com", Password: "changed"})
		require.NoError(t, err)
		assert.Equal(t, admin.ID, again.ID)
		assert.Equal(t, "hashed:admin123", again.PasswordHash)
	})

	t.Run("skipped without credentials", func(t *testing.T) {
		admin, err := NewEnsureAdminUseCase(newStubUserRepo(), plainPasswords{}).Execute(ctx, EnsureAdminInput{})
		require.NoError(t, err)
		assert.Nil(t, admin)
	})
}
