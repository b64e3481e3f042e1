package auth

import (
	"time"

	"github.com/marquee-cms/marquee/internal/authz"
)

// User represents a staff account as seen by the login flow.
type User struct {
	ID            int64
	Username      string
	Email         string
	FullName      string
	PasswordHash  string
	Role          authz.Role
	IsActive      bool
	LoginAttempts int
	LockedUntil   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Locked reports whether the account is locked at the given instant.
func (u *User) Locked(now time.Time) bool {
	return !u.LockedUntil.IsZero() && u.LockedUntil.After(now)
}
