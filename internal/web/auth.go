package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/handler"
	"github.com/ToonStack-Admin/ToonStack-Admin/internal/web/session"
)

// AuthMiddleware rejects unauthenticated requests to the admin API early,
// before any route level permission check runs. Routes outside the admin API
// (login, health, metrics) pass through untouched.
func AuthMiddleware(c *fiber.Ctx) error {
	originalURL := strings.ToLower(c.OriginalURL())
	if !strings.HasPrefix(originalURL, handler.AdminAPIPath) {
		return c.Next()
	}

	sessionID := c.Cookies("session")
	if sessionID == "" {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	sessData := new(session.Data)
	if err := sessData.Read(sessionID); err != nil {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	if sessData.User.ID == 0 {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	return c.Next()
}
