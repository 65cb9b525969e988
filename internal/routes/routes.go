package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the handlers shared by every role.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Health   *handlers.HealthHandler
	Reports  *handlers.ReportHandler
	Comments *handlers.CommentHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	h Handlers,
	actors middleware.ActorLoader,
	deps *apps.Deps,
	plugins []apps.Plugin,
	gatherer prometheus.Gatherer,
) {
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", h.Auth.Logout)

	// Middleware is attached per route so public routes stay untouched.
	signedIn := []fiber.Handler{
		middleware.JWTProtected(cfg),
		middleware.LoadActor(actors),
		middleware.RoleRequired(),
	}
	ready := with(signedIn, middleware.PasswordChangeRequired())

	// Reachable with a temporary password so it can be replaced
	auth.Post("/change-password", with(signedIn, h.Auth.ChangePassword)...)
	auth.Get("/me", with(signedIn, h.Auth.Me)...)

	api.Get("/reference", with(ready, h.Reports.Reference)...)
	api.Get("/reports/:id", with(ready, h.Reports.Get)...)
	api.Get("/reports/:id/comments", with(ready, h.Comments.List)...)
	api.Post("/reports/:id/comments", with(ready, h.Comments.Add)...)
	api.Delete("/reports/:id/comments/:commentId", with(ready, h.Comments.Delete)...)

	for _, p := range plugins {
		group := api.Group("/"+p.ID(),
			middleware.JWTProtected(cfg),
			middleware.LoadActor(actors),
			middleware.RoleRequired(p.Roles()...),
			middleware.PasswordChangeRequired(),
		)
		p.RegisterRoutes(group, deps)
	}
}

func with(chain []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, handler)
}
