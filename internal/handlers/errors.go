package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// Fail maps a service error to its HTTP status. Unknown errors are logged and
// answered with a generic 500.
func Fail(c *fiber.Ctx, err error) error {
	var fe *services.FieldError
	switch {
	case errors.As(err, &fe):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: fe.Error(), Field: fe.Field,
		})
	case errors.Is(err, services.ErrNotFound):
		return status(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateReference),
		errors.Is(err, services.ErrDuplicateName),
		errors.Is(err, services.ErrUserHasReports):
		return status(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidField):
		return status(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		return status(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return status(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrAccountInactive):
		return status(c, fiber.StatusForbidden, err.Error())
	}

	slog.Error("request failed",
		"request_id", requestID(c),
		"action", c.Method()+" "+c.Route().Path,
		"error", err,
	)
	return status(c, fiber.StatusInternalServerError, "Internal server error")
}

// BadRequest answers 400 with msg.
func BadRequest(c *fiber.Ctx, msg string) error {
	return status(c, fiber.StatusBadRequest, msg)
}

// ParamID parses the named route parameter as a UUID.
func ParamID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &services.FieldError{Field: name, Reason: "must be a valid id"}
	}
	return id, nil
}

func status(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}
