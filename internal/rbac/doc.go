// Package rbac provides the role-based access-control core of the application.
//
// The model is deliberately small: permissions are atomic, dot-namespaced
// capabilities ("webtoons.create"), roles bundle permissions, and every user
// holds at most one role. A user's effective permissions are exactly the
// permissions of that single role, or none at all.
//
// # Permission Catalog
//
// The catalog is a compile-time table of every permission the platform
// knows, grouped by category (the part of the name before the first dot).
// Adding a permission means adding a constant and a catalog row; the next
// start seeds it into the store.
//
// # Bootstrap
//
// Initialize seeds the catalog and the four built-in roles (admin,
// moderator, author, reader) on every process start. All steps are
// idempotent upserts: permissions before role assignments, descriptions
// refreshed, nothing renamed or deleted, no duplicate role/permission links.
// A failed start can simply be retried.
//
// # Permission Checking
//
// The Service type provides methods for checking user permissions:
//   - HasPermission: Check if a user has a specific permission
//   - HasAnyPermission: Check if a user has at least one permission from a list
//   - HasAllPermissions: Check if a user has all permissions from a list
//   - GetUserPermissions: Retrieve all permissions for a user
//   - HasRole: Compare the user's assigned role name exactly
//
// Absence of data resolves to false (a user without a role holds nothing);
// store failures are returned as errors, never as false.
//
// # Authorization Gates
//
// A Gate bundles the service with a required permission set and supports two
// handler conventions, chosen explicitly at registration time:
//   - ForPairedHandler: Fiber convention; the gate writes 401/403/500 onto
//     the response itself and stores the identity in fiber.Locals
//   - ForContextualHandler: plain-context convention; the gate returns the
//     structured error and passes an identity-enriched context to the handler
//
// In both conventions the wrapped handler is never invoked on denial, and an
// infrastructure failure is surfaced as such instead of being folded into
// "forbidden".
//
// Sessions whose role snapshot is exactly "admin" bypass the permission
// check entirely (but still require a valid session).
//
// Example usage:
//
//	svc := rbac.NewService(db)
//
//	// check a permission in a handler
//	ok, err := svc.HasPermission(userID, rbac.PermWebtoonsCreate)
//
//	// protect a route
//	app.Post("/admin/api/webtoons",
//	    rbac.RequirePermission(svc, rbac.PermWebtoonsCreate),
//	    handler,
//	)
package rbac
