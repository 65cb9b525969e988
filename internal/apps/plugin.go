package apps

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Deps carries the shared services a role surface is built from.
type Deps struct {
	Config     *config.Config
	Reports    *services.ReportService
	Activation *services.ActivationService
	References *services.ReferenceService
	Users      *services.UserService
	Dashboard  *services.DashboardService
	Audit      *services.AuditService
	Metrics    *metrics.Metrics
}

// Plugin is one role's slice of the API.
type Plugin interface {
	// ID is the path segment the surface is mounted under, e.g. "team-lead".
	ID() string

	// Roles returns the roles allowed on every route of the surface.
	Roles() []models.Role

	// RegisterRoutes mounts the surface's routes. The group already requires a
	// valid token, an active account in Roles and a changed temporary password.
	RegisterRoutes(router fiber.Router, deps *Deps)
}
