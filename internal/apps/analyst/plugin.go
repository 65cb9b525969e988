package analyst

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type AnalystPlugin struct{}

func New() *AnalystPlugin {
	return &AnalystPlugin{}
}

func (p *AnalystPlugin) ID() string { return "data-analyst" }

func (p *AnalystPlugin) Roles() []models.Role { return []models.Role{models.RoleDataAnalyst} }

func (p *AnalystPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewHandler(deps)

	router.Get("/reports", handler.ListReports)
	router.Get("/reports/unverified", handler.Unverified)
	router.Post("/reports/:id/verify", handler.Verify)

	router.Post("/activations", handler.Activate)
	router.Get("/activations/recent", handler.RecentActivations)

	router.Get("/verification-totals", handler.VerificationTotals)
	router.Get("/chart-data", handler.ChartData)
	router.Get("/download-csv", handler.DownloadCSV)
}
