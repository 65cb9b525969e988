package middleware

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RoleRequired answers 403 unless the actor is active and holds one of roles.
// With no roles it only requires an active account.
func RoleRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d, ok := access.Authorize(CurrentActor(c), roles...).(access.Denied); ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: d.Reason,
			})
		}
		return c.Next()
	}
}

// PasswordChangeRequired blocks accounts that still use a temporary password.
func PasswordChangeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentActor(c).FirstLogin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "password change required before continuing",
			})
		}
		return c.Next()
	}
}
