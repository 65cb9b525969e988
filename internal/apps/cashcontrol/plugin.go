package cashcontrol

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type CashControlPlugin struct{}

func New() *CashControlPlugin {
	return &CashControlPlugin{}
}

func (p *CashControlPlugin) ID() string { return "cash-controller" }

func (p *CashControlPlugin) Roles() []models.Role { return []models.Role{models.RoleCashController} }

func (p *CashControlPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewHandler(deps)

	router.Get("/reports", handler.ListReports)
	router.Get("/download-csv", handler.DownloadCSV)
}
