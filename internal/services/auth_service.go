package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/badoux/checkmail"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// SessionTTL is the default session lifetime.
const SessionTTL = 30 * 24 * time.Hour

// AuthService handles registration, login and session resolution.
type AuthService struct {
	storage    *storage.SQLiteRepository
	sessionTTL time.Duration
}

// NewAuthService builds the service. A non-positive ttl falls back to the
// default SessionTTL.
func NewAuthService(storage *storage.SQLiteRepository, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &AuthService{
		storage:    storage,
		sessionTTL: ttl,
	}
}

// TTL reports the configured session lifetime, used for cookie expiry.
func (s *AuthService) TTL() time.Duration {
	return s.sessionTTL
}

// Register creates a new account. Username, email and password are required;
// duplicates surface as core.ErrDuplicateUsername / core.ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*core.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, core.ErrEmptyUsername
	}
	if password == "" {
		return nil, core.ErrEmptyPassword
	}
	if email == "" {
		return nil, core.ErrInvalidEmail
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, core.ErrInvalidEmail
	}

	if _, err := s.storage.GetUserByUsername(ctx, username); err == nil {
		return nil, core.ErrDuplicateUsername
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if _, err := s.storage.GetUserByEmail(ctx, email); err == nil {
		return nil, core.ErrDuplicateEmail
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, username, email, hash)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Registration complete", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies the credentials and opens a session. Unknown usernames and
// wrong passwords both report core.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)

	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", core.ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", core.ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	if err := s.storage.CreateSession(ctx, token, user.ID, time.Now().Add(s.sessionTTL)); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Login", "user_id", user.ID, "username", user.Username)
	return token, nil
}

// Logout discards the session. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.storage.DeleteSession(ctx, token)
}

// UserFromSession resolves a session token to its user. Missing or expired
// sessions report core.ErrUnauthenticated.
func (s *AuthService) UserFromSession(ctx context.Context, token string) (*core.User, error) {
	user, err := s.storage.GetSessionUser(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the user with all owned expenses and sessions.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	return s.storage.DeleteUser(ctx, userID)
}

// SweepExpiredSessions deletes sessions past their expiry. Intended to run
// periodically from main.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) error {
	n, err := s.storage.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expired sessions removed", "count", n)
	}
	return nil
}
