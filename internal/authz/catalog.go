package authz

// Staff management permissions.
const (
	PermUsersView        = "users.view"
	PermUsersCreate      = "users.create"
	PermUsersEdit        = "users.edit"
	PermUsersDelete      = "users.delete"
	PermUsersManageRoles = "users.manage_roles"
)

// Festival management permissions.
const (
	PermFestivalsView    = "festivals.view"
	PermFestivalsCreate  = "festivals.create"
	PermFestivalsEdit    = "festivals.edit"
	PermFestivalsDelete  = "festivals.delete"
	PermFestivalsPublish = "festivals.publish"
)

// Award management permissions.
const (
	PermAwardsView   = "awards.view"
	PermAwardsCreate = "awards.create"
	PermAwardsEdit   = "awards.edit"
	PermAwardsDelete = "awards.delete"
)

// Page management permissions.
const (
	PermPagesView    = "pages.view"
	PermPagesCreate  = "pages.create"
	PermPagesEdit    = "pages.edit"
	PermPagesDelete  = "pages.delete"
	PermPagesPublish = "pages.publish"
)

// Content block permissions.
const (
	PermContentView    = "content.view"
	PermContentEdit    = "content.edit"
	PermContentPublish = "content.publish"
)

// Site settings permissions.
const (
	PermSettingsView = "settings.view"
	PermSettingsEdit = "settings.edit"
)

// Reporting permissions.
const (
	PermReportsView   = "reports.view"
	PermReportsExport = "reports.export"
)

// System administration permissions.
const (
	PermSystemBackup      = "system.backup"
	PermSystemLogs        = "system.logs"
	PermSystemMaintenance = "system.maintenance"
)

// Permission is a catalogued capability identifier with its display label.
type Permission struct {
	ID    string
	Label string
}

// catalog is the closed set of permissions recognised by the application.
// Order is stable and drives role-assignment UIs.
var catalog = []Permission{
	{PermUsersView, "View Users"},
	{PermUsersCreate, "Create Users"},
	{PermUsersEdit, "Edit Users"},
	{PermUsersDelete, "Delete Users"},
	{PermUsersManageRoles, "Manage User Roles"},

	{PermFestivalsView, "View Festivals"},
	{PermFestivalsCreate, "Create Festivals"},
	{PermFestivalsEdit, "Edit Festivals"},
	{PermFestivalsDelete, "Delete Festivals"},
	{PermFestivalsPublish, "Publish Festivals"},

	{PermAwardsView, "View Awards"},
	{PermAwardsCreate, "Create Awards"},
	{PermAwardsEdit, "Edit Awards"},
	{PermAwardsDelete, "Delete Awards"},

	{PermPagesView, "View Pages"},
	{PermPagesCreate, "Create Pages"},
	{PermPagesEdit, "Edit Pages"},
	{PermPagesDelete, "Delete Pages"},
	{PermPagesPublish, "Publish Pages"},

	{PermContentView, "View Content"},
	{PermContentEdit, "Edit Content"},
	{PermContentPublish, "Publish Content"},

	{PermSettingsView, "View Settings"},
	{PermSettingsEdit, "Edit Settings"},

	{PermReportsView, "View Reports"},
	{PermReportsExport, "Export Reports"},

	{PermSystemBackup, "System Backup"},
	{PermSystemLogs, "View System Logs"},
	{PermSystemMaintenance, "System Maintenance"},
}

var catalogIndex = buildCatalogIndex()

func buildCatalogIndex() map[string]struct{} {
	index := make(map[string]struct{}, len(catalog))
	for _, perm := range catalog {
		index[perm.ID] = struct{}{}
	}
	return index
}

// Exists reports whether the permission id is part of the catalog.
func Exists(id string) bool {
	_, ok := catalogIndex[id]
	return ok
}

// AllPermissions returns the catalog in declaration order.
func AllPermissions() []Permission {
	perms := make([]Permission, len(catalog))
	copy(perms, catalog)
	return perms
}
