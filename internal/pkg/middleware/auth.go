package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/LeadFox/internal/pkg/usercontext"
)

// RequireAuth ensures a verified caller; returns JSON 401 otherwise.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}
	return c.Next()
}

// RequireAdmin ensures a verified caller with the admin role; 401 or 403 otherwise.
func RequireAdmin(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}
	if user.RoleUnresolved {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to resolve user",
		})
	}
	if !user.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin role required",
		})
	}
	return c.Next()
}
