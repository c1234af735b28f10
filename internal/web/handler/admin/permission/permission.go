// Package permission exposes the permission catalog over the admin JSON API.
//
// The catalog is read only: permissions are declared in code and seeded on
// start, so the API offers listing but no mutation.
package permission

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/config"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/rbac"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/handler"
)

const (
	// Path is the base path for the permission catalog.
	Path = handler.AdminAPIPath + "/permissions"
)

type permissionResponse struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Service serves the permission catalog.
type Service struct {
	handler.Service
	cfg *config.Config
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

	app.Get(Path,
		rbac.RequirePermission(svc, rbac.PermPermissionsView),
		s.List,
	)
	app.Get(Path+"/categories",
		rbac.RequirePermission(svc, rbac.PermPermissionsView),
		s.ListByCategory,
	)
}

// List returns the full permission catalog in declaration order.
func (s *Service) List(c *fiber.Ctx) error {
	catalog := rbac.Catalog()
	out := make([]permissionResponse, 0, len(catalog))

	for _, def := range catalog {
		out = append(out, permissionResponse{
			Name:        def.Name,
			Category:    rbac.Category(def.Name),
			Description: def.Description,
		})
	}

	return c.JSON(out)
}

// ListByCategory returns the catalog grouped by category, the shape the role
// editor renders as one checkbox group per category.
func (s *Service) ListByCategory(c *fiber.Ctx) error {
	out := make(map[string][]permissionResponse)

	for cat, defs := range rbac.ByCategory() {
		group := make([]permissionResponse, 0, len(defs))

		for _, def := range defs {
			group = append(group, permissionResponse{
				Name:        def.Name,
				Category:    cat,
				Description: def.Description,
			})
		}

		out[cat] = group
	}

	return c.JSON(out)
}
