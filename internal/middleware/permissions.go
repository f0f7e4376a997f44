package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
)

type permissionLister interface {
	ListByUserID(ctx context.Context, userID int64) ([]models.Permission, error)
}

// RequirePermission gates a route on an explicit grant. Admins hold every
// permission implicitly; professional accounts need the grant on record.
// Must run after AuthRequired.
func RequirePermission(required models.Permission, grants permissionLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role == models.RoleAdmin {
			return c.Next()
		}

		userID, ok := c.Locals("user_id").(int64)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		granted, err := grants.ListByUserID(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to check permissions",
			})
		}
		for _, permission := range granted {
			if permission == required {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// RequireAdmin gates a route on the admin role itself, for operations that
// can never be delegated (account management, permission grants).
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}
