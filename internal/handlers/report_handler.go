package handlers

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves the report routes shared by every role.
type ReportHandler struct {
	reports    *services.ReportService
	references *services.ReferenceService
}

func NewReportHandler(reports *services.ReportService, references *services.ReferenceService) *ReportHandler {
	return &ReportHandler{reports: reports, references: references}
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	id, err := ParamID(c, "id")
	if err != nil {
		return Fail(c, err)
	}
	report, err := h.reports.Get(c.UserContext(), middleware.CurrentActor(c), id)
	if err != nil {
		return Fail(c, err)
	}
	return c.JSON(dto.NewReportResponse(report))
}

// Reference lists the flights and supervisors a report may name.
func (h *ReportHandler) Reference(c *fiber.Ctx) error {
	flights, err := h.references.ListFlights(c.UserContext())
	if err != nil {
		return Fail(c, err)
	}
	supervisors, err := h.references.ListSupervisors(c.UserContext())
	if err != nil {
		return Fail(c, err)
	}
	return c.JSON(dto.ReferenceResponse{Flights: flights, Supervisors: supervisors})
}
