package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marquee-cms/marquee/internal/authz"
	"github.com/marquee-cms/marquee/internal/shared"
)

type stubRepo struct {
	accounts map[int64]*Account

	createdHash   string
	nextID        int64
	roleUpdates   map[int64]authz.Role
	overrideCalls int
	activeUpdates map[int64]bool
	resetIDs      []int64
	deletedIDs    []int64
}

func newStubRepo(accounts ...*Account) *stubRepo {
	repo := &stubRepo{
		accounts:      make(map[int64]*Account),
		roleUpdates:   make(map[int64]authz.Role),
		activeUpdates: make(map[int64]bool),
		nextID:        100,
	}
	for _, acc := range accounts {
		repo.accounts[acc.ID] = acc
	}
	return repo
}

func (s *stubRepo) GetAccount(_ context.Context, id int64) (*Account, error) {
	acc, ok := s.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return acc, nil
}

func (s *stubRepo) ListAccounts(_ context.Context) ([]Account, error) {
	out := make([]Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		out = append(out, *acc)
	}
	return out, nil
}

func (s *stubRepo) CreateAccount(_ context.Context, acc *Account, passwordHash string) (int64, error) {
	s.nextID++
	acc.ID = s.nextID
	s.accounts[acc.ID] = acc
	s.createdHash = passwordHash
	return acc.ID, nil
}

func (s *stubRepo) UpdateRole(_ context.Context, id int64, role authz.Role) error {
	acc, ok := s.accounts[id]
	if !ok {
		return shared.ErrNotFound
	}
	acc.Role = role
	s.roleUpdates[id] = role
	return nil
}

func (s *stubRepo) UpdateOverrides(_ context.Context, id int64, overrides []string) error {
	acc, ok := s.accounts[id]
	if !ok {
		return shared.ErrNotFound
	}
	acc.Overrides = overrides
	s.overrideCalls++
	return nil
}

func (s *stubRepo) UpdateActive(_ context.Context, id int64, active bool) error {
	acc, ok := s.accounts[id]
	if !ok {
		return shared.ErrNotFound
	}
	acc.IsActive = active
	s.activeUpdates[id] = active
	return nil
}

func (s *stubRepo) ResetLock(_ context.Context, id int64) error {
	if _, ok := s.accounts[id]; !ok {
		return shared.ErrNotFound
	}
	s.resetIDs = append(s.resetIDs, id)
	return nil
}

func (s *stubRepo) DeleteAccount(_ context.Context, id int64) error {
	if _, ok := s.accounts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.accounts, id)
	s.deletedIDs = append(s.deletedIDs, id)
	return nil
}

func superAdminActor() *authz.Principal {
	return &authz.Principal{ID: 1, Role: authz.RoleSuperAdmin, Active: true}
}

func adminActor() *authz.Principal {
	return &authz.Principal{ID: 2, Role: authz.RoleAdmin, Active: true}
}

func TestCreateAccountHashesPassword(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	id, err := svc.CreateAccount(context.Background(), adminActor(), NewAccountInput{
		Username: "jordan",
		Email:    "jordan@example.org",
		FullName: "Jordan Blake",
		Password: "festival-pass-1",
		Role:     authz.RoleEditor,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	acc := repo.accounts[id]
	require.True(t, acc.IsActive)
	require.Equal(t, authz.RoleEditor, acc.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.createdHash), []byte("festival-pass-1")))
}

func TestCreateAccountRejectsUnknownRole(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	_, err := svc.CreateAccount(context.Background(), superAdminActor(), NewAccountInput{
		Username: "x", Email: "x@example.org", Password: "long-enough-pass", Role: authz.Role("owner"),
	})
	require.ErrorIs(t, err, ErrInvalidRole)
	require.Empty(t, repo.accounts)
}

func TestCreateAccountSuperAdminEscalation(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	_, err := svc.CreateAccount(context.Background(), adminActor(), NewAccountInput{
		Username: "x", Email: "x@example.org", Password: "long-enough-pass", Role: authz.RoleSuperAdmin,
	})
	require.ErrorIs(t, err, ErrSuperAdminRequired)

	_, err = svc.CreateAccount(context.Background(), superAdminActor(), NewAccountInput{
		Username: "x", Email: "x@example.org", Password: "long-enough-pass", Role: authz.RoleSuperAdmin,
	})
	require.NoError(t, err)
}

func TestSetRole(t *testing.T) {
	repo := newStubRepo(&Account{ID: 10, Role: authz.RoleEditor, IsActive: true})
	svc := NewService(repo)

	require.NoError(t, svc.SetRole(context.Background(), superAdminActor(), 10, authz.RoleAdmin))
	require.Equal(t, authz.RoleAdmin, repo.accounts[10].Role)
}

func TestSetRoleUnknownRole(t *testing.T) {
	repo := newStubRepo(&Account{ID: 10, Role: authz.RoleEditor, IsActive: true})
	svc := NewService(repo)

	err := svc.SetRole(context.Background(), superAdminActor(), 10, authz.Role("manager"))
	require.ErrorIs(t, err, ErrInvalidRole)
	require.Equal(t, authz.RoleEditor, repo.accounts[10].Role)
}

func TestSetRoleEscalationRequiresSuperAdmin(t *testing.T) {
	repo := newStubRepo(&Account{ID: 10, Role: authz.RoleEditor, IsActive: true})
	svc := NewService(repo)

	err := svc.SetRole(context.Background(), adminActor(), 10, authz.RoleSuperAdmin)
	require.ErrorIs(t, err, ErrSuperAdminRequired)
	// Role must be unchanged after a rejected escalation.
	require.Equal(t, authz.RoleEditor, repo.accounts[10].Role)
	require.Empty(t, repo.roleUpdates)

	require.NoError(t, svc.SetRole(context.Background(), superAdminActor(), 10, authz.RoleSuperAdmin))
	require.Equal(t, authz.RoleSuperAdmin, repo.accounts[10].Role)
}

func TestSetOverridesReplacesWholesale(t *testing.T) {
	repo := newStubRepo(&Account{ID: 10, Role: authz.RoleEditor, Overrides: []string{authz.PermPagesDelete}, IsActive: true})
	svc := NewService(repo)

	err := svc.SetOverrides(context.Background(), adminActor(), 10, []string{authz.PermFestivalsDelete})
	require.NoError(t, err)
	require.Equal(t, []string{authz.PermFestivalsDelete}, repo.accounts[10].Overrides)
}

func TestSetOverridesNormalizes(t *testing.T) {
	repo := newStubRepo(&Account{ID: 10, Role: authz.RoleEditor, IsActive: true})
	svc := NewService(repo)

	err := svc.SetOverrides(context.Background(), adminActor(), 10, []string{
		"  " + authz.PermPagesDelete + " ", authz.PermPagesDelete, "", authz.PermReportsView,
	})
	require.NoError(t, err)
	require.Equal(t, []string{authz.PermPagesDelete, authz.PermReportsView}, repo.accounts[10].Overrides)
}

func TestSetOverridesUnknownPermissionNoPartialApply(t *testing.T) {
	repo := newStubRepo(&Account{ID: 10, Role: authz.RoleEditor, Overrides: []string{authz.PermPagesDelete}, IsActive: true})
	svc := NewService(repo)

	err := svc.SetOverrides(context.Background(), adminActor(), 10, []string{
		authz.PermReportsView, "pages.rename",
	})
	require.ErrorIs(t, err, ErrUnknownPermission)
	require.Contains(t, err.Error(), "pages.rename")
	require.Equal(t, []string{authz.PermPagesDelete}, repo.accounts[10].Overrides)
	require.Zero(t, repo.overrideCalls)
}

func TestSetOverridesEmptyClearsSet(t *testing.T) {
	repo := newStubRepo(&Account{ID: 10, Role: authz.RoleEditor, Overrides: []string{authz.PermPagesDelete}, IsActive: true})
	svc := NewService(repo)

	require.NoError(t, svc.SetOverrides(context.Background(), adminActor(), 10, nil))
	require.Empty(t, repo.accounts[10].Overrides)
}

func TestSetActiveSelfForbidden(t *testing.T) {
	actor := adminActor()
	repo := newStubRepo(&Account{ID: actor.ID, Role: authz.RoleAdmin, IsActive: true})
	svc := NewService(repo)

	err := svc.SetActive(context.Background(), actor, actor.ID, false)
	require.ErrorIs(t, err, ErrSelfModificationForbidden)
	require.True(t, repo.accounts[actor.ID].IsActive)
}

func TestSetActiveIdempotent(t *testing.T) {
	repo := newStubRepo(&Account{ID: 10, Role: authz.RoleEditor, IsActive: true})
	svc := NewService(repo)

	require.NoError(t, svc.SetActive(context.Background(), adminActor(), 10, false))
	require.NoError(t, svc.SetActive(context.Background(), adminActor(), 10, false))
	require.False(t, repo.accounts[10].IsActive)
}

func TestUnlockSelfForbidden(t *testing.T) {
	actor := adminActor()
	repo := newStubRepo(&Account{ID: actor.ID, Role: authz.RoleAdmin, IsActive: true})
	svc := NewService(repo)

	err := svc.Unlock(context.Background(), actor, actor.ID)
	require.ErrorIs(t, err, ErrSelfModificationForbidden)
	require.Empty(t, repo.resetIDs)

	require.NoError(t, svc.Unlock(context.Background(), superAdminActor(), actor.ID))
	require.Equal(t, []int64{actor.ID}, repo.resetIDs)
}

func TestDeleteSelfForbidden(t *testing.T) {
	actor := adminActor()
	repo := newStubRepo(
		&Account{ID: actor.ID, Role: authz.RoleAdmin, IsActive: true},
		&Account{ID: 10, Role: authz.RoleEditor, IsActive: true},
	)
	svc := NewService(repo)

	require.ErrorIs(t, svc.Delete(context.Background(), actor, actor.ID), ErrSelfModificationForbidden)
	require.NoError(t, svc.Delete(context.Background(), actor, 10))
	require.Equal(t, []int64{10}, repo.deletedIDs)
}

func TestDeleteMissingAccount(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	require.ErrorIs(t, svc.Delete(context.Background(), adminActor(), 404), shared.ErrNotFound)
}
