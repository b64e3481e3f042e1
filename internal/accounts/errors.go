package accounts

import "errors"

// Typed errors raised by the administrative mutations. These are validation
// failures presented to the acting admin, a different class from an
// authorization deny.
var (
	// ErrInvalidRole indicates a role outside the configured set.
	ErrInvalidRole = errors.New("accounts: invalid role")
	// ErrUnknownPermission indicates an override entry absent from the catalog.
	ErrUnknownPermission = errors.New("accounts: unknown permission")
	// ErrSelfModificationForbidden rejects status changes targeting the acting
	// admin's own account, to prevent accidental lockout.
	ErrSelfModificationForbidden = errors.New("accounts: cannot modify own account status")
	// ErrSuperAdminRequired rejects super_admin role assignment by a caller
	// who does not hold the super_admin role.
	ErrSuperAdminRequired = errors.New("accounts: only a super admin may assign the super_admin role")
	// ErrDuplicate indicates a username or email collision.
	ErrDuplicate = errors.New("accounts: username or email already in use")
)
