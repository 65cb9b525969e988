package admin

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	users      *services.UserService
	references *services.ReferenceService
	dashboard  *services.DashboardService
	audit      *services.AuditService
}

func NewHandler(deps *apps.Deps) *Handler {
	return &Handler{
		users:      deps.Users,
		references: deps.References,
		dashboard:  deps.Dashboard,
		audit:      deps.Audit,
	}
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	out, err := h.dashboard.Admin(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(out)
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext(), middleware.CurrentActor(c), c.Query("search"))
	if err != nil {
		return handlers.Fail(c, err)
	}
	out := make([]dto.UserResponse, len(users))
	for i := range users {
		out[i] = dto.NewUserResponse(&users[i])
	}
	return c.JSON(out)
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadRequest(c, "Invalid request body")
	}
	user, password, err := h.users.Create(c.UserContext(), middleware.CurrentActor(c), &req)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateUserResponse{
		User:              dto.NewUserResponse(user),
		TemporaryPassword: password,
	})
}

func (h *Handler) ActivateUser(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *Handler) DeactivateUser(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *Handler) setActive(c *fiber.Ctx, active bool) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return handlers.Fail(c, err)
	}
	user, err := h.users.SetActive(c.UserContext(), middleware.CurrentActor(c), id, active)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return handlers.Fail(c, err)
	}
	var req dto.ResetPasswordRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return handlers.BadRequest(c, "Invalid request body")
		}
	}
	password, err := h.users.ResetPassword(c.UserContext(), middleware.CurrentActor(c), id, &req)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.ResetPasswordResponse{TemporaryPassword: password})
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return handlers.Fail(c, err)
	}
	if err := h.users.Delete(c.UserContext(), middleware.CurrentActor(c), id); err != nil {
		return handlers.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListFlights(c *fiber.Ctx) error {
	flights, err := h.references.ListFlights(c.UserContext())
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(flights)
}

func (h *Handler) AddFlight(c *fiber.Ctx) error {
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadRequest(c, "Invalid request body")
	}
	flight, err := h.references.AddFlight(c.UserContext(), middleware.CurrentActor(c), req.Name)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(flight)
}

func (h *Handler) RemoveFlight(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return handlers.Fail(c, err)
	}
	if err := h.references.RemoveFlight(c.UserContext(), middleware.CurrentActor(c), id); err != nil {
		return handlers.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListSupervisors(c *fiber.Ctx) error {
	supervisors, err := h.references.ListSupervisors(c.UserContext())
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(supervisors)
}

func (h *Handler) AddSupervisor(c *fiber.Ctx) error {
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadRequest(c, "Invalid request body")
	}
	supervisor, err := h.references.AddSupervisor(c.UserContext(), middleware.CurrentActor(c), req.Name)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(supervisor)
}

func (h *Handler) RemoveSupervisor(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return handlers.Fail(c, err)
	}
	if err := h.references.RemoveSupervisor(c.UserContext(), middleware.CurrentActor(c), id); err != nil {
		return handlers.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) AuditLogs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)
	logs, total, err := h.audit.List(c.UserContext(), page, pageSize)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.AuditLogPage{Items: logs, Total: total, Page: page, PageSize: pageSize})
}
