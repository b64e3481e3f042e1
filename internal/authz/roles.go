package authz

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is a named, static bucket of permissions assigned to an account.
type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleAdmin            Role = "admin"
	RoleFestivalDirector Role = "festival_director"
	RoleEditor           Role = "editor"
	RoleJudgeCoordinator Role = "judge_coordinator"
	RoleContentManager   Role = "content_manager"
	RoleReadonly         Role = "readonly"
)

// grant is a role's permission set: either the all sentinel or an explicit list.
// Roles never inherit from each other; every list is self-contained so access
// changes stay reviewable as plain diffs.
type grant struct {
	all   bool
	perms []string
}

var roleGrants = map[Role]grant{
	RoleSuperAdmin: {all: true},
	RoleAdmin: {perms: []string{
		PermUsersView, PermUsersCreate, PermUsersEdit,
		PermFestivalsView, PermFestivalsCreate, PermFestivalsEdit, PermFestivalsPublish,
		PermAwardsView, PermAwardsCreate, PermAwardsEdit, PermAwardsDelete,
		PermPagesView, PermPagesCreate, PermPagesEdit, PermPagesPublish,
		PermContentView, PermContentEdit, PermContentPublish,
		PermSettingsView, PermSettingsEdit,
		PermReportsView, PermReportsExport,
	}},
	RoleFestivalDirector: {perms: []string{
		PermFestivalsView, PermFestivalsCreate, PermFestivalsEdit, PermFestivalsPublish,
		PermAwardsView, PermAwardsCreate, PermAwardsEdit,
		PermPagesView, PermPagesEdit,
		PermContentView, PermContentEdit,
		PermReportsView, PermReportsExport,
		PermUsersView,
	}},
	RoleEditor: {perms: []string{
		PermFestivalsView, PermFestivalsEdit,
		PermAwardsView, PermAwardsEdit,
		PermPagesView, PermPagesCreate, PermPagesEdit,
		PermContentView, PermContentEdit,
	}},
	RoleJudgeCoordinator: {perms: []string{
		PermFestivalsView,
		PermAwardsView, PermAwardsCreate, PermAwardsEdit,
		PermReportsView,
		PermUsersView,
	}},
	RoleContentManager: {perms: []string{
		PermPagesView, PermPagesCreate, PermPagesEdit, PermPagesPublish,
		PermContentView, PermContentEdit, PermContentPublish,
		PermFestivalsView,
	}},
	RoleReadonly: {perms: []string{
		PermFestivalsView,
		PermAwardsView,
		PermPagesView,
		PermContentView,
	}},
}

// roleOrder keeps introspection output stable.
var roleOrder = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleFestivalDirector,
	RoleEditor,
	RoleJudgeCoordinator,
	RoleContentManager,
	RoleReadonly,
}

// AllRoles returns every configured role in display order.
func AllRoles() []Role {
	roles := make([]Role, len(roleOrder))
	copy(roles, roleOrder)
	return roles
}

// KnownRole reports whether the role is part of the configured set.
func KnownRole(role Role) bool {
	_, ok := roleGrants[role]
	return ok
}

// PermissionsFor resolves a role's grant. The second return value reports the
// all sentinel; when it is true the permission list is nil. Unknown roles
// resolve to an empty set, never an error.
func PermissionsFor(role Role) ([]string, bool) {
	g, ok := roleGrants[role]
	if !ok {
		return nil, false
	}
	if g.all {
		return nil, true
	}
	perms := make([]string, len(g.perms))
	copy(perms, g.perms)
	return perms, false
}

var titleCaser = cases.Title(language.English)

// RoleLabel renders a role identifier for display ("festival_director" ->
// "Festival Director").
func (r Role) Label() string {
	return titleCaser.String(strings.ReplaceAll(string(r), "_", " "))
}

// ValidateConfig checks that every role grant references only catalog
// permissions. Run once at startup; a failure is a deployment defect, not a
// runtime condition.
func ValidateConfig() error {
	for _, role := range roleOrder {
		g := roleGrants[role]
		if g.all {
			continue
		}
		for _, perm := range g.perms {
			if !Exists(perm) {
				return fmt.Errorf("authz: role %s grants unknown permission %q", role, perm)
			}
		}
	}
	return nil
}
