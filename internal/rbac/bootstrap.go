package rbac

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/db/models"
)

// Initialize seeds the permission catalog and the built-in roles.
//
// It runs on every process start, before the web service accepts requests.
// Every step is an idempotent upsert, so re-running after a partial failure
// converges to the same end state: permissions and roles are only ever
// created or have their description refreshed, never renamed or deleted, and
// a role/permission link is inserted at most once.
//
// All permissions are upserted before the first role assignment, so a seed
// list can never reference a permission row that does not exist yet.
func Initialize(db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	seeds := DefaultRoles()

	// catch catalog drift before touching the store
	for _, seed := range seeds {
		for _, name := range seed.Permissions {
			if !IsKnown(name) {
				return errors.Wrapf(ErrUnknownPermission, "role %q references %q", seed.Name, name)
			}
		}
	}

	for _, def := range Catalog() {
		if err := upsertPermission(db, def); err != nil {
			return err
		}
	}

	for _, seed := range seeds {
		role, err := upsertRole(db, seed)
		if err != nil {
			return err
		}

		for _, name := range seed.Permissions {
			var perm models.Permission

			if err := db.Where("name = ?", name).First(&perm).Error; err != nil {
				return errors.Wrapf(err, "failed to look up permission %q", name)
			}

			if err := AssignPermissionToRole(db, role.ID, perm.ID); err != nil {
				return err
			}
		}
	}

	log.Info().
		Int("permissions", len(catalog)).
		Int("roles", len(seeds)).
		Msg("rbac catalog seeded")

	return nil
}

// upsertPermission creates the permission if absent, otherwise refreshes the
// description only. Name and category of an existing row are never changed.
func upsertPermission(db *gorm.DB, def Definition) error {
	var perm models.Permission

	err := db.Where("name = ?", def.Name).First(&perm).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		perm = models.Permission{
			Name:        def.Name,
			Category:    Category(def.Name),
			Description: def.Description,
		}

		if err := db.Create(&perm).Error; err != nil {
			return errors.Wrapf(err, "failed to create permission %q", def.Name)
		}
	case err != nil:
		return errors.Wrapf(err, "failed to look up permission %q", def.Name)
	case perm.Description != def.Description:
		if err := db.Model(&perm).Update("description", def.Description).Error; err != nil {
			return errors.Wrapf(err, "failed to update permission %q", def.Name)
		}
	}

	return nil
}

// upsertRole creates the role as a system role if absent, otherwise refreshes
// the description only. IsSystem is never flipped on re-run.
func upsertRole(db *gorm.DB, seed RoleSeed) (*models.Role, error) {
	var role models.Role

	err := db.Where("name = ?", seed.Name).First(&role).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		role = models.Role{
			Name:        seed.Name,
			Description: seed.Description,
			IsSystem:    true,
		}

		if err := db.Create(&role).Error; err != nil {
			return nil, errors.Wrapf(err, "failed to create role %q", seed.Name)
		}
	case err != nil:
		return nil, errors.Wrapf(err, "failed to look up role %q", seed.Name)
	case role.Description != seed.Description:
		if err := db.Model(&role).Update("description", seed.Description).Error; err != nil {
			return nil, errors.Wrapf(err, "failed to update role %q", seed.Name)
		}
	}

	return &role, nil
}

// AssignPermissionToRole links a permission to a role. The insert is
// idempotent: an existing (role, permission) pair is left untouched.
func AssignPermissionToRole(db *gorm.DB, roleID, permissionID uint) error {
	var link models.RolePermission

	err := db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		FirstOrCreate(&link, models.RolePermission{RoleID: roleID, PermissionID: permissionID}).Error
	if err != nil {
		return errors.Wrapf(err, "failed to assign permission %d to role %d", permissionID, roleID)
	}

	return nil
}
