package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestRegisterAndLogin(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, 0)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  alice  ", "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username, "username should be trimmed")
	assert.NotEqual(t, "s3cret", user.PasswordHash, "password must not be stored in clear")

	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	got, err := svc.UserFromSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, 0)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"empty username", "", "a@example.com", "pw", core.ErrEmptyUsername},
		{"blank username", "   ", "a@example.com", "pw", core.ErrEmptyUsername},
		{"empty password", "alice", "a@example.com", "", core.ErrEmptyPassword},
		{"empty email", "alice", "", "pw", core.ErrInvalidEmail},
		{"malformed email", "alice", "not-an-email", "pw", core.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "pw")
	assert.ErrorIs(t, err, core.ErrDuplicateUsername)

	_, err = svc.Register(ctx, "bob", "alice@example.com", "pw")
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	// Unknown user and wrong password look identical to the caller.
	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestLogoutEndsSession(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.UserFromSession(ctx, token)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)

	// Logging out twice is harmless.
	assert.NoError(t, svc.Logout(ctx, token))
}

func TestUserFromSessionUnknownToken(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, 0)

	_, err := svc.UserFromSession(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestDeleteAccountRemovesEverything(t *testing.T) {
	repo := newTestRepo(t)
	authSvc := NewAuthService(repo, 0)
	expSvc := NewExpenseService(repo)
	ctx := context.Background()

	user, err := authSvc.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	token, err := authSvc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	_, err = expSvc.Create(ctx, user.ID, "12.50", "Lunch", "Food", "2024-01-10")
	require.NoError(t, err)

	require.NoError(t, authSvc.DeleteAccount(ctx, user.ID))

	_, err = authSvc.UserFromSession(ctx, token)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)

	page, err := expSvc.List(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
