package rbac

import "strings"

// Permission constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to specific platform features and actions.
const (
	// PermWebtoonsView allows viewing webtoons and their chapters.
	PermWebtoonsView = "webtoons.view"
	// PermWebtoonsCreate allows creating new webtoons.
	PermWebtoonsCreate = "webtoons.create"
	// PermWebtoonsEdit allows editing webtoons and their chapters.
	PermWebtoonsEdit = "webtoons.edit"
	// PermWebtoonsDelete allows deleting webtoons.
	PermWebtoonsDelete = "webtoons.delete"
	// PermWebtoonsPublish allows publishing and unpublishing webtoons.
	PermWebtoonsPublish = "webtoons.publish"

	// PermAuthorsView allows viewing author profiles.
	PermAuthorsView = "authors.view"
	// PermAuthorsCreate allows creating author profiles.
	PermAuthorsCreate = "authors.create"
	// PermAuthorsEdit allows editing author profiles.
	PermAuthorsEdit = "authors.edit"
	// PermAuthorsDelete allows deleting author profiles.
	PermAuthorsDelete = "authors.delete"

	// PermGenresView allows viewing the genre taxonomy.
	PermGenresView = "genres.view"
	// PermGenresCreate allows creating genres.
	PermGenresCreate = "genres.create"
	// PermGenresEdit allows editing genres.
	PermGenresEdit = "genres.edit"
	// PermGenresDelete allows deleting genres.
	PermGenresDelete = "genres.delete"

	// PermUsersView allows viewing user accounts.
	PermUsersView = "users.view"
	// PermUsersCreate allows creating user accounts.
	PermUsersCreate = "users.create"
	// PermUsersEdit allows editing user accounts and assigning roles.
	PermUsersEdit = "users.edit"
	// PermUsersDelete allows deleting user accounts.
	PermUsersDelete = "users.delete"
	// PermUsersSuspend allows suspending and reinstating user accounts.
	PermUsersSuspend = "users.suspend"

	// PermRolesView allows viewing roles and their permission sets.
	PermRolesView = "roles.view"
	// PermRolesCreate allows creating custom roles.
	PermRolesCreate = "roles.create"
	// PermRolesEdit allows editing roles.
	PermRolesEdit = "roles.edit"
	// PermRolesDelete allows deleting custom roles.
	PermRolesDelete = "roles.delete"

	// PermPermissionsView allows viewing the permission catalog.
	PermPermissionsView = "permissions.view"
	// PermPermissionsAssign allows changing which permissions a role holds.
	PermPermissionsAssign = "permissions.assign"

	// PermAnalyticsView allows viewing platform analytics.
	PermAnalyticsView = "analytics.view"

	// PermSystemSettings allows managing application-wide settings.
	PermSystemSettings = "system.settings"
	// PermSystemMaintenance allows running maintenance tasks.
	PermSystemMaintenance = "system.maintenance"
)

// Definition describes a single entry of the permission catalog.
type Definition struct {
	// Name is the unique permission identifier in category.action format.
	Name string
	// Description is shown in the role management UI.
	Description string
}

// catalog is the canonical, compile-time permission table. The bootstrap
// upserts it into the store on every start; adding a permission means adding
// a row here.
var catalog = []Definition{ //nolint:gochecknoglobals
	{PermWebtoonsView, "View webtoons and chapters"},
	{PermWebtoonsCreate, "Create new webtoons"},
	{PermWebtoonsEdit, "Edit webtoons and chapters"},
	{PermWebtoonsDelete, "Delete webtoons"},
	{PermWebtoonsPublish, "Publish and unpublish webtoons"},

	{PermAuthorsView, "View author profiles"},
	{PermAuthorsCreate, "Create author profiles"},
	{PermAuthorsEdit, "Edit author profiles"},
	{PermAuthorsDelete, "Delete author profiles"},

	{PermGenresView, "View genres"},
	{PermGenresCreate, "Create genres"},
	{PermGenresEdit, "Edit genres"},
	{PermGenresDelete, "Delete genres"},

	{PermUsersView, "View user accounts"},
	{PermUsersCreate, "Create user accounts"},
	{PermUsersEdit, "Edit user accounts and assign roles"},
	{PermUsersDelete, "Delete user accounts"},
	{PermUsersSuspend, "Suspend and reinstate user accounts"},

	{PermRolesView, "View roles and their permissions"},
	{PermRolesCreate, "Create custom roles"},
	{PermRolesEdit, "Edit roles"},
	{PermRolesDelete, "Delete custom roles"},

	{PermPermissionsView, "View the permission catalog"},
	{PermPermissionsAssign, "Change role permission assignments"},

	{PermAnalyticsView, "View platform analytics"},

	{PermSystemSettings, "Manage application settings"},
	{PermSystemMaintenance, "Run maintenance tasks"},
}

// Catalog returns the full permission catalog in declaration order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)

	return out
}

// Category derives the category of a permission name, which is the substring
// before the first dot (e.g. "webtoons" for "webtoons.create"). Names without
// a dot are their own category.
func Category(name string) string {
	if idx := strings.Index(name, "."); idx > 0 {
		return name[:idx]
	}

	return name
}

// ByCategory groups the catalog by category. The admin UI renders one
// checkbox group per category from this.
func ByCategory() map[string][]Definition {
	out := make(map[string][]Definition)

	for _, def := range catalog {
		cat := Category(def.Name)
		out[cat] = append(out[cat], def)
	}

	return out
}

// IsKnown reports whether name is part of the permission catalog.
func IsKnown(name string) bool {
	for _, def := range catalog {
		if def.Name == name {
			return true
		}
	}

	return false
}
