package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	require.NoError(t, ValidateConfig())
}

func TestPermissionsFor(t *testing.T) {
	perms, all := PermissionsFor(RoleSuperAdmin)
	require.True(t, all)
	require.Nil(t, perms)

	perms, all = PermissionsFor(RoleReadonly)
	require.False(t, all)
	require.ElementsMatch(t, []string{PermFestivalsView, PermAwardsView, PermPagesView, PermContentView}, perms)

	perms, all = PermissionsFor(Role("nonexistent"))
	require.False(t, all)
	require.Empty(t, perms)
}

func TestPermissionsForReturnsCopy(t *testing.T) {
	perms, _ := PermissionsFor(RoleReadonly)
	require.NotEmpty(t, perms)
	perms[0] = "mutated"

	again, _ := PermissionsFor(RoleReadonly)
	require.NotContains(t, again, "mutated")
}

func TestKnownRole(t *testing.T) {
	for _, role := range AllRoles() {
		require.True(t, KnownRole(role), string(role))
	}
	require.False(t, KnownRole(Role("superadmin")))
	require.False(t, KnownRole(Role("")))
}

func TestRoleLabel(t *testing.T) {
	require.Equal(t, "Festival Director", RoleFestivalDirector.Label())
	require.Equal(t, "Super Admin", RoleSuperAdmin.Label())
	require.Equal(t, "Readonly", RoleReadonly.Label())
}

func TestCatalogExists(t *testing.T) {
	require.True(t, Exists(PermPagesDelete))
	require.False(t, Exists("pages.rename"))
	require.False(t, Exists(""))
}

func TestAllPermissionsStableOrder(t *testing.T) {
	first := AllPermissions()
	second := AllPermissions()
	require.Equal(t, first, second)
	require.Equal(t, PermUsersView, first[0].ID)

	seen := make(map[string]struct{}, len(first))
	for _, p := range first {
		_, dup := seen[p.ID]
		require.False(t, dup, p.ID)
		seen[p.ID] = struct{}{}
		require.NotEmpty(t, p.Label, p.ID)
	}
}
