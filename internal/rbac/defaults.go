package rbac

// Built-in role names. These roles are created by the bootstrap with
// IsSystem set and can neither be deleted nor renamed.
const (
	// RoleAdmin is the distinguished operator role. Sessions carrying it
	// bypass every permission gate (see Gate.Authorize).
	RoleAdmin = "admin"
	// RoleModerator moderates published content and user behavior.
	RoleModerator = "moderator"
	// RoleAuthor creates and maintains their own webtoons.
	RoleAuthor = "author"
	// RoleReader is the default consumer role.
	RoleReader = "reader"
)

// RoleSeed describes a built-in role and the permission set the bootstrap
// assigns to it.
type RoleSeed struct {
	Name        string
	Description string
	Permissions []string
}

// DefaultRoles returns the built-in roles in seeding order.
// Every referenced permission name must exist in the catalog; the bootstrap
// verifies this before touching the store.
func DefaultRoles() []RoleSeed {
	return []RoleSeed{
		{
			Name:        RoleAdmin,
			Description: "Full access to every part of the platform",
			Permissions: allPermissionNames(),
		},
		{
			Name:        RoleModerator,
			Description: "Moderates published content and user accounts",
			Permissions: []string{
				PermWebtoonsView,
				PermWebtoonsEdit,
				PermWebtoonsDelete,
				PermWebtoonsPublish,
				PermAuthorsView,
				PermGenresView,
				PermUsersView,
				PermUsersSuspend,
				PermAnalyticsView,
			},
		},
		{
			Name:        RoleAuthor,
			Description: "Creates and maintains own webtoons",
			Permissions: []string{
				PermWebtoonsView,
				PermWebtoonsCreate,
				PermWebtoonsEdit,
				PermAuthorsView,
				PermGenresView,
			},
		},
		{
			Name:        RoleReader,
			Description: "Reads published webtoons",
			Permissions: []string{
				PermWebtoonsView,
				PermAuthorsView,
				PermGenresView,
			},
		},
	}
}

func allPermissionNames() []string {
	out := make([]string, 0, len(catalog))
	for _, def := range catalog {
		out = append(out, def.Name)
	}

	return out
}
