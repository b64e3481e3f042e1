package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/marquee-cms/marquee/internal/shared"
)

const (
	// maxLoginAttempts failed logins in a row lock the account.
	maxLoginAttempts = 5
	lockoutDuration  = 30 * time.Minute
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Authenticate validates login/password credentials, enforcing the lockout
// policy. Inactive and locked accounts never authenticate.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*User, error) {
	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	now := s.now()
	if user.Locked(now) {
		return nil, shared.ErrAccountLocked
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		attempts := user.LoginAttempts + 1
		var lockedUntil time.Time
		if attempts >= maxLoginAttempts {
			lockedUntil = now.Add(lockoutDuration)
		}
		if recErr := s.repo.RecordLoginFailure(ctx, user.ID, attempts, lockedUntil); recErr != nil {
			return nil, recErr
		}
		if !lockedUntil.IsZero() {
			return nil, shared.ErrAccountLocked
		}
		return nil, shared.ErrInvalidCredentials
	}
	if err := s.repo.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
