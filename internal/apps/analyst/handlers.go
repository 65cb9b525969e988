package analyst

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/export"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	reports    *services.ReportService
	activation *services.ActivationService
	dashboard  *services.DashboardService
	metrics    *metrics.Metrics
}

func NewHandler(deps *apps.Deps) *Handler {
	return &Handler{
		reports:    deps.Reports,
		activation: deps.Activation,
		dashboard:  deps.Dashboard,
		metrics:    deps.Metrics,
	}
}

// ListReports returns every unverified report followed by the most recent verified ones.
func (h *Handler) ListReports(c *fiber.Ctx) error {
	reports, err := h.reports.ListForRole(c.UserContext(), middleware.CurrentActor(c), dto.ReportFilter{})
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.NewReportResponses(reports))
}

func (h *Handler) Unverified(c *fiber.Ctx) error {
	reports, err := h.reports.Unverified(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.NewReportResponses(reports))
}

func (h *Handler) Verify(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return handlers.Fail(c, err)
	}
	var req dto.VerifyReportRequest
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadRequest(c, "Invalid request body")
	}
	report, err := h.reports.Verify(c.UserContext(), middleware.CurrentActor(c), id, &req)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.NewReportResponse(report))
}

func (h *Handler) Activate(c *fiber.Ctx) error {
	var req dto.ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadRequest(c, "Invalid request body")
	}
	activation, err := h.activation.Activate(c.UserContext(), middleware.CurrentActor(c), &req)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(services.ActivationResponse(activation))
}

func (h *Handler) RecentActivations(c *fiber.Ctx) error {
	recent, err := h.activation.Recent(c.UserContext(), c.QueryInt("limit", 5))
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(recent)
}

func (h *Handler) VerificationTotals(c *fiber.Ctx) error {
	totals, err := h.dashboard.VerificationTotals(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(totals)
}

func (h *Handler) ChartData(c *fiber.Ctx) error {
	data, err := h.dashboard.ChartData(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(data)
}

// DownloadCSV exports verified reports with their count differences.
func (h *Handler) DownloadCSV(c *fiber.Ctx) error {
	var filter dto.ReportFilter
	if err := c.QueryParser(&filter); err != nil {
		return handlers.BadRequest(c, "Invalid query parameters")
	}
	reports, err := h.reports.Verified(c.UserContext(), middleware.CurrentActor(c), filter)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return handlers.SendCSV(c, h.metrics, "verification", "verification_report", reports, export.WriteVerificationCSV)
}
