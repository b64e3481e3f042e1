package accounts

import (
	"time"

	"github.com/marquee-cms/marquee/internal/authz"
)

// Account represents a staff account subject to authorization checks.
type Account struct {
	ID            int64
	Username      string
	Email         string
	FullName      string
	Role          authz.Role
	Overrides     []string
	Department    string
	Phone         string
	IsActive      bool
	LoginAttempts int
	LockedUntil   time.Time
	LastLogin     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Locked reports whether the account is locked at the given instant.
func (a *Account) Locked(now time.Time) bool {
	return !a.LockedUntil.IsZero() && a.LockedUntil.After(now)
}

// Principal converts the account into its authorization view.
func (a *Account) Principal() *authz.Principal {
	overrides := make([]string, len(a.Overrides))
	copy(overrides, a.Overrides)
	return &authz.Principal{
		ID:          a.ID,
		Role:        a.Role,
		Overrides:   overrides,
		Active:      a.IsActive,
		LockedUntil: a.LockedUntil,
	}
}
