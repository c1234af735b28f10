package rbac

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/pkg/errors"
)

// LocalsIdentity is the fiber.Locals key under which paired gates store the
// resolved *Identity for downstream handlers.
const LocalsIdentity = "identity"

// ForPairedHandler wraps h in the paired request/response convention: the
// gate writes the denial status and body directly onto the fiber context and
// h is only invoked after a successful authorization, with the identity
// available via c.Locals(LocalsIdentity).
func ForPairedHandler(g *Gate, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := g.Authorize(c.Cookies("session"))

		switch {
		case errors.Is(err, ErrUnauthenticated):
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		case errors.Is(err, ErrPermissionDenied):
			log.Warn().Strs("permissions", g.required).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: " + err.Error())
		case err != nil:
			// infrastructure failure, not a denial
			log.Error().Err(err).Strs("permissions", g.required).
				Msg("Failed to check permissions")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		c.Locals(LocalsIdentity, id)

		return h(c)
	}
}

// RequireAuthenticated creates Fiber middleware that requires a valid session.
func RequireAuthenticated(svc *Service) fiber.Handler {
	return ForPairedHandler(NewGate(svc), next)
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(svc *Service, permission string) fiber.Handler {
	return ForPairedHandler(NewGate(svc, permission), next)
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(svc *Service, permissions ...string) fiber.Handler {
	return ForPairedHandler(NewGate(svc, permissions...), next)
}

// RequireAllPermissions creates Fiber middleware that requires all the given permissions.
func RequireAllPermissions(svc *Service, permissions ...string) fiber.Handler {
	return ForPairedHandler(NewGateAll(svc, permissions...), next)
}

func next(c *fiber.Ctx) error {
	return c.Next()
}
