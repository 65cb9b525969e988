package teamlead

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	reports    *services.ReportService
	activation *services.ActivationService
}

func NewHandler(deps *apps.Deps) *Handler {
	return &Handler{reports: deps.Reports, activation: deps.Activation}
}

// Dashboard returns today's activation state and the lead's own reports.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)
	status, err := h.activation.Status(c.UserContext(), actor.ID)
	if err != nil {
		return handlers.Fail(c, err)
	}
	reports, err := h.reports.ListForRole(c.UserContext(), actor, dto.ReportFilter{})
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.TeamLeadDashboard{
		Activation: status,
		Reports:    dto.NewReportResponses(reports),
	})
}

func (h *Handler) ListReports(c *fiber.Ctx) error {
	reports, err := h.reports.ListForRole(c.UserContext(), middleware.CurrentActor(c), dto.ReportFilter{})
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.NewReportResponses(reports))
}

func (h *Handler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadRequest(c, "Invalid request body")
	}
	report, err := h.reports.Create(c.UserContext(), middleware.CurrentActor(c), &req)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReportResponse(report))
}

func (h *Handler) UpdateReport(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return handlers.Fail(c, err)
	}
	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadRequest(c, "Invalid request body")
	}
	report, err := h.reports.Update(c.UserContext(), middleware.CurrentActor(c), id, &req)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.NewReportResponse(report))
}
