package teamlead

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type TeamLeadPlugin struct{}

func New() *TeamLeadPlugin {
	return &TeamLeadPlugin{}
}

func (p *TeamLeadPlugin) ID() string { return "team-lead" }

func (p *TeamLeadPlugin) Roles() []models.Role { return []models.Role{models.RoleTeamLead} }

func (p *TeamLeadPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewHandler(deps)

	router.Get("/dashboard", handler.Dashboard)
	router.Get("/reports", handler.ListReports)
	router.Post("/reports", handler.CreateReport)
	router.Put("/reports/:id", handler.UpdateReport)
}
