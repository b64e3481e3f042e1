package authz

import "time"

// Principal is the authorization view of an authenticated account: role,
// per-account override grants and the status fields consulted before any
// permission resolution.
type Principal struct {
	ID          int64
	Role        Role
	Overrides   []string
	Active      bool
	LockedUntil time.Time
}

// Locked reports whether the account is locked at the given instant.
func (p *Principal) Locked(now time.Time) bool {
	return !p.LockedUntil.IsZero() && p.LockedUntil.After(now)
}

// Engine is the pure authorization decision function. It holds no mutable
// state and is safe for concurrent use; the clock is injectable for tests.
type Engine struct {
	now func() time.Time
}

// NewEngine constructs an Engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock constructs an Engine with a fixed clock source.
func NewEngineWithClock(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// HasPermission decides whether the principal may exercise the permission.
// The resolution order is a behavioural contract:
//
//  1. no principal -> deny
//  2. inactive or currently locked -> deny, regardless of role or overrides
//  3. super_admin role -> allow, without consulting overrides or the catalog;
//     the bypass is role-based so newly introduced permissions are available
//     to super admins immediately
//  4. permission in the account's override set -> allow (overrides are
//     strictly additive)
//  5. role grant: all sentinel -> allow, otherwise set membership
//
// An unrecognised role resolves to an empty set at step 5 and denies. The
// engine never errors and performs no I/O; stored override sets are trusted
// as-is because they are validated against the catalog at write time.
func (e *Engine) HasPermission(p *Principal, permission string) bool {
	if p == nil {
		return false
	}
	if !p.Active || p.Locked(e.now()) {
		return false
	}
	if p.Role == RoleSuperAdmin {
		return true
	}
	for _, granted := range p.Overrides {
		if granted == permission {
			return true
		}
	}
	perms, all := PermissionsFor(p.Role)
	if all {
		return true
	}
	for _, granted := range perms {
		if granted == permission {
			return true
		}
	}
	return false
}
