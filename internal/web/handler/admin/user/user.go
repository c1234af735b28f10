// Package user provides the admin JSON API for managing user accounts.
package user

import (
	"errors"
	"strconv"

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
	// Path is the base path for user management.
	Path = handler.AdminAPIPath + "/users"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25

	// MaxPageSize caps the pageSize query parameter.
	MaxPageSize = 100
)

type userInput struct {
	Username    string `json:"username"     validate:"required,min=3,max=100"`
	Email       string `json:"email"        validate:"required,email,max=255"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Password    string `json:"password"`
	Active      bool   `json:"active"`
	RoleID      *uint  `json:"role_id"`
}

type userResponse struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
	Suspended   bool   `json:"suspended"`
	Role        string `json:"role"`
}

// Service provides CRUD operations for users.
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
		rbac.RequirePermission(svc, rbac.PermUsersView),
		s.List,
	)
	app.Get(Path+"/:id",
		rbac.RequirePermission(svc, rbac.PermUsersView),
		s.Get,
	)
	app.Post(Path,
		rbac.RequirePermission(svc, rbac.PermUsersCreate),
		s.Create,
	)
	app.Put(Path+"/:id",
		rbac.RequirePermission(svc, rbac.PermUsersEdit),
		s.Update,
	)
	app.Delete(Path+"/:id",
		rbac.RequirePermission(svc, rbac.PermUsersDelete),
		s.Delete,
	)
	app.Post(Path+"/:id/suspend",
		rbac.RequirePermission(svc, rbac.PermUsersSuspend),
		s.Suspend,
	)
	app.Post(Path+"/:id/reinstate",
		rbac.RequirePermission(svc, rbac.PermUsersSuspend),
		s.Reinstate,
	)
}

// List shows users with simple pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	var (
		users      []models.User
		totalCount int64
		tx         = s.db.Model(&models.User{})
	)

	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where(
			"username LIKE ? OR email LIKE ? OR display_name LIKE ?",
			like,
			like,
			like,
		)
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load users"})
	}

	offset := (page - 1) * pageSize
	if err := tx.Preload("Role").Order("id DESC").Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("query users failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load users"})
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}

	return c.JSON(fiber.Map{
		"users":      out,
		"page":       page,
		"pageSize":   pageSize,
		"totalItems": totalCount,
	})
}

// Get returns a single user.
func (s *Service) Get(c *fiber.Ctx) error {
	user, done := s.loadUser(c)
	if done {
		return nil
	}

	resp := toResponse(user)

	return c.JSON(resp)
}

// Create creates a new user.
func (s *Service) Create(c *fiber.Ctx) error {
	var in userInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed: " + err.Error()})
	}

	user := models.User{
		Username:    in.Username,
		Email:       in.Email,
		DisplayName: in.DisplayName,
		Active:      in.Active,
		RoleID:      in.RoleID,
	}

	if in.Password != "" {
		user.Password = models.HashPassword(in.Password)
	}

	if err := s.db.Create(&user).Error; err != nil {
		// Unique constraint errors etc.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to create user: " + err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID})
}

// Update updates a user, including the role assignment. Passing a null
// role_id clears the role.
func (s *Service) Update(c *fiber.Ctx) error {
	user, done := s.loadUser(c)
	if done {
		return nil
	}

	var in userInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed: " + err.Error()})
	}

	user.Username = in.Username
	user.Email = in.Email
	user.DisplayName = in.DisplayName
	user.Active = in.Active
	user.RoleID = in.RoleID

	if in.Password != "" {
		user.Password = models.HashPassword(in.Password)
	}

	// Save writes all fields, so a nil RoleID clears the role
	if err := s.db.Save(user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to update user: " + err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes a user.
func (s *Service) Delete(c *fiber.Ctx) error {
	user, done := s.loadUser(c)
	if done {
		return nil
	}

	// Prevent deleting admin users
	if user.RoleName() == rbac.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin users cannot be deleted"})
	}

	// Prevent a user from deleting themselves
	if id, ok := c.Locals(rbac.LocalsIdentity).(*rbac.Identity); ok && id != nil {
		if id.UserID == user.ID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "you cannot delete your own account"})
		}
	}

	if err := s.db.Delete(&models.User{}, user.ID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to delete user: " + err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Suspend marks a user account as suspended. A suspended user cannot log in;
// existing sessions stay valid until they expire.
func (s *Service) Suspend(c *fiber.Ctx) error {
	return s.setSuspended(c, true)
}

// Reinstate lifts a suspension.
func (s *Service) Reinstate(c *fiber.Ctx) error {
	return s.setSuspended(c, false)
}

func (s *Service) setSuspended(c *fiber.Ctx, suspended bool) error {
	user, done := s.loadUser(c)
	if done {
		return nil
	}

	if suspended && user.RoleName() == rbac.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin users cannot be suspended"})
	}

	if err := s.db.Model(user).Update("suspended", suspended).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to update suspension")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update user"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// loadUser resolves the :id parameter. When done is true a response was
// already written and the caller must return nil.
func (s *Service) loadUser(c *fiber.Ctx) (*models.User, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
		return nil, true
	}

	var user models.User
	if err := s.db.Preload("Role").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			return nil, true
		}

		log.Error().Err(err).Msg("failed to load user")
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})

		return nil, true
	}

	return &user, false
}

func toResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Active:      u.Active,
		Suspended:   u.Suspended,
		Role:        u.RoleName(),
	}
}
