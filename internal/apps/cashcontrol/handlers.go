package cashcontrol

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/export"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	reports *services.ReportService
	metrics *metrics.Metrics
}

func NewHandler(deps *apps.Deps) *Handler {
	return &Handler{reports: deps.Reports, metrics: deps.Metrics}
}

// ListReports returns verified reports narrowed by supervisor, flight and date range.
func (h *Handler) ListReports(c *fiber.Ctx) error {
	reports, err := h.filtered(c)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return c.JSON(dto.NewReportResponses(reports))
}

func (h *Handler) DownloadCSV(c *fiber.Ctx) error {
	reports, err := h.filtered(c)
	if err != nil {
		return handlers.Fail(c, err)
	}
	return handlers.SendCSV(c, h.metrics, "reports", "passenger_report", reports, export.WriteCSV)
}

func (h *Handler) filtered(c *fiber.Ctx) ([]models.Report, error) {
	var filter dto.ReportFilter
	if err := c.QueryParser(&filter); err != nil {
		return nil, &services.FieldError{Field: "query", Reason: "invalid query parameters"}
	}
	return h.reports.ListForRole(c.UserContext(), middleware.CurrentActor(c), filter)
}
