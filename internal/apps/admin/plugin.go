package admin

import (
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type AdminPlugin struct{}

func New() *AdminPlugin {
	return &AdminPlugin{}
}

func (p *AdminPlugin) ID() string { return "admin" }

func (p *AdminPlugin) Roles() []models.Role { return []models.Role{models.RoleAdmin} }

func (p *AdminPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewHandler(deps)

	router.Get("/dashboard", handler.Dashboard)

	// Users
	router.Get("/users", handler.ListUsers)
	router.Post("/users", handler.CreateUser)
	router.Post("/users/:id/activate", handler.ActivateUser)
	router.Post("/users/:id/deactivate", handler.DeactivateUser)
	router.Post("/users/:id/reset-password", handler.ResetPassword)
	router.Delete("/users/:id", handler.DeleteUser)

	// Reference data
	router.Get("/flights", handler.ListFlights)
	router.Post("/flights", handler.AddFlight)
	router.Delete("/flights/:id", handler.RemoveFlight)
	router.Get("/supervisors", handler.ListSupervisors)
	router.Post("/supervisors", handler.AddSupervisor)
	router.Delete("/supervisors/:id", handler.RemoveSupervisor)

	router.Get("/audit-logs", handler.AuditLogs)
}
