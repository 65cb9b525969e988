package middleware

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorKey = "actor"

// ActorLoader resolves a user id to the current account state.
type ActorLoader interface {
	LoadActor(ctx context.Context, id uuid.UUID) (access.Actor, error)
}

// LoadActor reads the account named by the token's sub claim. Role and active
// state always come from the database, so deactivation takes effect immediately.
func LoadActor(loader ActorLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := UserID(c)
		if err != nil {
			return unauthorized(c)
		}
		actor, err := loader.LoadActor(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return unauthorized(c)
			}
			return err
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// UserID extracts the user UUID from JWT claims in context.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid claims")
	}
	return services.ParseSubject(claims)
}

// CurrentActor returns the actor stored by LoadActor, or the zero Actor,
// which access.Authorize always denies.
func CurrentActor(c *fiber.Ctx) access.Actor {
	actor, _ := c.Locals(actorKey).(access.Actor)
	return actor
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
