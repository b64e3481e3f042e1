package accounts

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/marquee-cms/marquee/internal/authz"
)

// Service wraps staff account business rules. Every mutation takes the acting
// principal explicitly; the service never reaches into ambient request state.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetAccount returns a single account.
func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// ListAccounts returns all staff accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

// NewAccountInput collects fields for account creation.
type NewAccountInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Role       authz.Role
	Department string
	Phone      string
}

// CreateAccount registers a new staff account. Assigning super_admin at
// creation follows the same escalation rule as SetRole.
func (s *Service) CreateAccount(ctx context.Context, actor *authz.Principal, input NewAccountInput) (int64, error) {
	if !authz.KnownRole(input.Role) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRole, input.Role)
	}
	if input.Role == authz.RoleSuperAdmin && !isSuperAdmin(actor) {
		return 0, ErrSuperAdminRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	acc := &Account{
		Username:   strings.TrimSpace(input.Username),
		Email:      strings.TrimSpace(input.Email),
		FullName:   strings.TrimSpace(input.FullName),
		Role:       input.Role,
		Department: strings.TrimSpace(input.Department),
		Phone:      strings.TrimSpace(input.Phone),
		IsActive:   true,
	}
	return s.repo.CreateAccount(ctx, acc, string(hash))
}

// SetRole assigns a new role to the account. Escalation to super_admin
// requires the actor to already hold super_admin; escalation to any other
// role is gated on users.manage_roles at the HTTP layer.
func (s *Service) SetRole(ctx context.Context, actor *authz.Principal, accountID int64, role authz.Role) error {
	if !authz.KnownRole(role) {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	if role == authz.RoleSuperAdmin && !isSuperAdmin(actor) {
		return ErrSuperAdminRequired
	}
	return s.repo.UpdateRole(ctx, accountID, role)
}

// SetOverrides replaces the account's override permission set wholesale.
// Overrides are additive grants on top of the role's set; every entry must
// exist in the catalog or the whole call fails with no partial apply.
func (s *Service) SetOverrides(ctx context.Context, actor *authz.Principal, accountID int64, permissions []string) error {
	normalized := make([]string, 0, len(permissions))
	seen := make(map[string]struct{}, len(permissions))
	for _, perm := range permissions {
		perm = strings.TrimSpace(perm)
		if perm == "" {
			continue
		}
		if !authz.Exists(perm) {
			return fmt.Errorf("%w: %s", ErrUnknownPermission, perm)
		}
		if _, ok := seen[perm]; ok {
			continue
		}
		seen[perm] = struct{}{}
		normalized = append(normalized, perm)
	}
	return s.repo.UpdateOverrides(ctx, accountID, normalized)
}

// SetActive toggles the active flag. Admins may not deactivate themselves.
func (s *Service) SetActive(ctx context.Context, actor *authz.Principal, accountID int64, active bool) error {
	if actor != nil && actor.ID == accountID {
		return ErrSelfModificationForbidden
	}
	return s.repo.UpdateActive(ctx, accountID, active)
}

// Unlock clears a lockout. Self-unlock goes through another admin.
func (s *Service) Unlock(ctx context.Context, actor *authz.Principal, accountID int64) error {
	if actor != nil && actor.ID == accountID {
		return ErrSelfModificationForbidden
	}
	return s.repo.ResetLock(ctx, accountID)
}

// Delete removes an account entirely. Self-deletion is rejected.
func (s *Service) Delete(ctx context.Context, actor *authz.Principal, accountID int64) error {
	if actor != nil && actor.ID == accountID {
		return ErrSelfModificationForbidden
	}
	return s.repo.DeleteAccount(ctx, accountID)
}

func isSuperAdmin(actor *authz.Principal) bool {
	return actor != nil && actor.Role == authz.RoleSuperAdmin
}
