// Package role provides the admin JSON API for managing roles and their
// permission sets.
package role

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/config"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/db/models"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/rbac"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/handler"
)

const (
	// Path is the base path for role management.
	Path = handler.AdminAPIPath + "/roles"
)

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, svc *rbac.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	app.Get(Path,
		rbac.RequirePermission(svc, rbac.PermRolesView),
		s.List,
	)
	app.Get(Path+"/:id",
		rbac.RequirePermission(svc, rbac.PermRolesView),
		s.Get,
	)
	app.Post(Path,
		rbac.RequirePermission(svc, rbac.PermRolesCreate),
		s.Create,
	)
	app.Put(Path+"/:id",
		rbac.RequirePermission(svc, rbac.PermRolesEdit),
		s.Update,
	)
	app.Delete(Path+"/:id",
		rbac.RequirePermission(svc, rbac.PermRolesDelete),
		s.Delete,
	)
	app.Put(Path+"/:id/permissions",
		rbac.RequirePermission(svc, rbac.PermPermissionsAssign),
		s.ReplacePermissions,
	)
}

// List returns all roles with their permission names.
func (s *Service) List(c *fiber.Ctx) error {
	var roles []models.Role
	if err := s.db.Order("name ASC").Find(&roles).Error; err != nil {
		log.Error().Err(err).Msg("failed to load roles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load roles"})
	}

	out := make([]roleResponse, 0, len(roles))

	for _, r := range roles {
		perms, err := s.rolePermissionNames(r.ID)
		if err != nil {
			log.Error().Err(err).Uint("role_id", r.ID).Msg("failed to load role permissions")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load roles"})
		}

		out = append(out, roleResponse{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			IsSystem:    r.IsSystem,
			Permissions: perms,
		})
	}

	return c.JSON(out)
}

// Get returns a single role with its permission names.
func (s *Service) Get(c *fiber.Ctx) error {
	role, done := s.loadRole(c)
	if done {
		return nil
	}

	perms, err := s.rolePermissionNames(role.ID)
	if err != nil {
		log.Error().Err(err).Uint("role_id", role.ID).Msg("failed to load role permissions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load role"})
	}

	return c.JSON(roleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		IsSystem:    role.IsSystem,
		Permissions: perms,
	})
}

// Create creates a new custom role. Roles created over the API are never
// system roles.
func (s *Service) Create(c *fiber.Ctx) error {
	var in roleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	role := models.Role{
		Name:        in.Name,
		Description: in.Description,
	}

	if err := s.db.Create(&role).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to create role: " + err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(roleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: []string{},
	})
}

// Update changes name and description of a role. System roles keep their
// name; only the description can change.
func (s *Service) Update(c *fiber.Ctx) error {
	role, done := s.loadRole(c)
	if done {
		return nil
	}

	var in roleInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	if role.IsSystem && in.Name != role.Name {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "system roles cannot be renamed"})
	}

	role.Name = in.Name
	role.Description = in.Description

	if err := s.db.Save(role).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to update role: " + err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes a custom role together with its permission assignments.
// Users holding the role fall back to no role.
func (s *Service) Delete(c *fiber.Ctx) error {
	role, done := s.loadRole(c)
	if done {
		return nil
	}

	if role.IsSystem {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "system roles cannot be deleted"})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("role_id = ?", role.ID).
			Update("role_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Role{}, role.ID).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("role_id", role.ID).Msg("failed to delete role")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete role"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ReplacePermissions replaces the permission set of a role with the given
// list. Every name must be part of the permission catalog.
func (s *Service) ReplacePermissions(c *fiber.Ctx) error {
	role, done := s.loadRole(c)
	if done {
		return nil
	}

	var in permissionsInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var unknown []string

	for _, name := range in.Permissions {
		if !rbac.IsKnown(name) {
			unknown = append(unknown, name)
		}
	}

	if len(unknown) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown permissions: " + strings.Join(unknown, ", "),
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		for _, name := range in.Permissions {
			var perm models.Permission
			if err := tx.Where("name = ?", name).First(&perm).Error; err != nil {
				return err
			}

			if err := rbac.AssignPermissionToRole(tx, role.ID, perm.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("role_id", role.ID).Msg("failed to replace role permissions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update permissions"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// loadRole resolves the :id parameter. When done is true a response was
// already written and the caller must return nil.
func (s *Service) loadRole(c *fiber.Ctx) (*models.Role, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
		return nil, true
	}

	var role models.Role
	if err := s.db.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "role not found"})
			return nil, true
		}

		log.Error().Err(err).Msg("failed to load role")
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load role"})

		return nil, true
	}

	return &role, false
}

// rolePermissionNames returns the permission names assigned to a role.
func (s *Service) rolePermissionNames(roleID uint) ([]string, error) {
	perms := make([]string, 0)

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name ASC").
		Pluck("permissions.name", &perms).Error
	if err != nil {
		return nil, err
	}

	return perms, nil
}
