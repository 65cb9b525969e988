package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps/admin"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps/analyst"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps/cashcontrol"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/apps/teamlead"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.AttachDB(stdout, database.DB)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, logging.SystemLogRetention, cleanupDone)

	// Optional infrastructure: each falls back to a no-op when unconfigured
	summaryCache := cache.New(cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.CacheTTL, "cashcollect")
	publisher := events.NewPublisher(cfg.AMQPURL)
	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	var (
		m        *metrics.Metrics
		registry *prometheus.Registry
	)
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New("cashcollect", registry)
	}

	// Services
	auditService := services.NewAuditService(database.DB, cfg.DBQueryTimeout)
	authService := services.NewAuthService(database.DB, cfg, auditService)
	userService := services.NewUserService(database.DB, cfg, auditService, mailer)
	activationService := services.NewActivationService(database.DB, cfg, auditService)
	referenceService := services.NewReferenceService(database.DB, auditService, cfg.DBQueryTimeout)
	commentService := services.NewCommentService(database.DB, auditService, cfg.DBQueryTimeout)
	reportService := services.NewReportService(database.DB, cfg, activationService, auditService, summaryCache, publisher, m)
	dashboardService := services.NewDashboardService(database.DB, cfg, summaryCache)

	created, generated, err := userService.EnsureBootstrapAdmin(context.Background())
	if err != nil {
		slog.Error("bootstrap admin failed", "error", err)
		os.Exit(1)
	}
	if created && generated != "" {
		// Printed once; the account must change it on first login.
		slog.Warn("bootstrap admin temporary password", "username", cfg.BootstrapAdminUsername, "password", generated)
	}

	plugins := []apps.Plugin{
		admin.New(),
		teamlead.New(),
		analyst.New(),
		cashcontrol.New(),
	}
	deps := &apps.Deps{
		Config:     cfg,
		Reports:    reportService,
		Activation: activationService,
		References: referenceService,
		Users:      userService,
		Dashboard:  dashboardService,
		Audit:      auditService,
		Metrics:    m,
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})
	app.Use(middleware.RequestMeta())
	app.Use(middleware.Metrics(m))

	var gatherer prometheus.Gatherer
	if registry != nil {
		gatherer = registry
	}
	routes.Setup(app, cfg, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Health:   handlers.NewHealthHandler(database.DB, cfg.DBDriver),
		Reports:  handlers.NewReportHandler(reportService, referenceService),
		Comments: handlers.NewCommentHandler(commentService),
	}, userService, deps, plugins, gatherer)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "driver", cfg.DBDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
