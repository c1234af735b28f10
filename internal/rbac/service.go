package rbac

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/db/models"
)

// Service answers permission and role membership questions for users.
// All methods are stateless and safe for concurrent use; the only shared
// state is the underlying connection pool.
//
// Absence of data is an answer: a user without a role, a role without
// permissions or a missing user all resolve to false. Store failures are
// returned as errors and never coerced into false, so callers can tell
// "denied" apart from "undetermined".
type Service struct {
	db *gorm.DB
}

// NewService creates a new RBAC service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission checks if a user has a specific permission through their
// assigned role. A single join query answers the check.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	var count int64

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND permissions.name = ?", userID, permission).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check role permission")
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
// The user's effective permission set is fetched once and tested in memory.
func (s *Service) HasAnyPermission(userID uint64, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return false, nil
	}

	held, err := s.permissionSet(userID)
	if err != nil {
		return false, err
	}

	for _, perm := range permissions {
		if _, ok := held[perm]; ok {
			return true, nil
		}
	}

	return false, nil
}

// HasAllPermissions checks if a user has all of the given permissions.
func (s *Service) HasAllPermissions(userID uint64, permissions []string) (bool, error) {
	if len(permissions) == 0 {
		return true, nil
	}

	held, err := s.permissionSet(userID)
	if err != nil {
		return false, err
	}

	for _, perm := range permissions {
		if _, ok := held[perm]; !ok {
			return false, nil
		}
	}

	return true, nil
}

// GetUserPermissions retrieves all permission names granted by the user's
// role. The result is unique and empty (not nil) for roleless users.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	permissions := make([]string, 0)

	err := s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ?", userID).
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user permissions")
	}

	return permissions, nil
}

// HasRole checks if the user's assigned role name matches roleName exactly.
// This is a role comparison, not a permission check.
func (s *Service) HasRole(userID uint64, roleName string) (bool, error) {
	var count int64

	err := s.db.Table("users").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("users.id = ? AND roles.name = ?", userID, roleName).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check user role")
	}

	return count > 0, nil
}

// GetUserWithRole loads a user together with their role association in one
// read. The Role field stays nil for users without a role. The shape is
// role-only: permission names are served by GetUserPermissions, which reads
// them in a single join of their own.
func (s *Service) GetUserWithRole(userID uint64) (*models.User, error) {
	var user models.User

	err := s.db.Preload("Role").First(&user, userID).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user with role")
	}

	return &user, nil
}

// AssignRoleToUser assigns a role to a user. A nil roleID clears the
// assignment, leaving the user without permissions.
func (s *Service) AssignRoleToUser(userID uint64, roleID *uint) error {
	err := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID).Error
	if err != nil {
		return errors.Wrap(err, "failed to assign role to user")
	}

	return nil
}

// permissionSet returns the user's effective permissions as a set.
func (s *Service) permissionSet(userID uint64) (map[string]struct{}, error) {
	names, err := s.GetUserPermissions(userID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	return set, nil
}
