package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/presenca/internal/admin"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/handler"
	adminHandler "github.com/saturnino-fabrica-de-software/presenca/internal/api/handler/admin"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/fraud"
	"github.com/saturnino-fabrica-de-software/presenca/internal/service"
	"github.com/saturnino-fabrica-de-software/presenca/internal/ws"
)

type Dependencies struct {
	Attendance   *service.AttendanceService
	Enrollment   *service.EnrollmentService
	FraudRecords fraud.RecordStore
	Blocklist    fraud.BlocklistStore
	Geofences    adminHandler.GeofenceStore
	AuditLogger  audit.Logger
	AdminAPIKey  string
	Stats        adminHandler.StatsProvider
	Hub          *ws.Hub
	Sessions     *admin.TokenService

	// Optional shared per-actor attempt limiter. Nil disables the check.
	ActorLimiter handler.ActorLimiter
	AttemptLimit int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Presenca API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Admin-Key",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	healthHandler := handler.NewHealthHandler()
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// API v1 group
	v1 := r.app.Group("/v1")

	// Only configure the full surface if dependencies were provided
	if r.deps != nil {
		// Rate limiting per client IP, with tighter limits on the
		// review surface
		limiterConfig := middleware.DefaultRateLimiterConfig()
		limiterConfig.PerEndpoint = middleware.AdminRateLimits()
		r.rateLimiter = middleware.NewRateLimiter(limiterConfig)
		v1.Use(r.rateLimiter.Handler())

		// Attendance routes
		attendanceHandler := handler.NewAttendanceHandler(r.deps.Attendance, r.logger)
		if r.deps.ActorLimiter != nil {
			attendanceHandler = attendanceHandler.WithActorLimiter(r.deps.ActorLimiter, r.deps.AttemptLimit)
		}
		if r.deps.Hub != nil {
			attendanceHandler = attendanceHandler.WithDecisionFeed(r.deps.Hub)
		}
		v1.Post("/attendance", attendanceHandler.Mark)

		enrollmentHandler := handler.NewEnrollmentHandler(r.deps.Enrollment, r.logger)
		v1.Post("/enroll", enrollmentHandler.Enroll)

		// Admin review surface
		authConfig := middleware.AdminAuthConfig{
			APIKey: r.deps.AdminAPIKey,
			Logger: r.logger,
		}
		if r.deps.Sessions != nil {
			authConfig.ValidateToken = func(token string) error {
				_, err := r.deps.Sessions.ValidateToken(token)
				return err
			}
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.AdminAuth(authConfig))
		r.setupAdminRoutes(adminGroup)
	}
}

func (r *Router) setupAdminRoutes(adminGroup fiber.Router) {
	fraudHandler := adminHandler.NewFraudHandler(
		r.deps.FraudRecords,
		r.deps.Blocklist,
		r.deps.AuditLogger,
		r.logger,
	)

	adminGroup.Get("/fraud-records", fraudHandler.List)
	adminGroup.Get("/fraud-records/:id", fraudHandler.Get)
	adminGroup.Post("/fraud-records/:id/resolve", fraudHandler.Resolve)
	adminGroup.Post("/unblock/device", fraudHandler.UnblockDevice)
	adminGroup.Post("/unblock/ip", fraudHandler.UnblockIP)

	geofenceHandler := adminHandler.NewGeofenceHandler(r.deps.Geofences, r.logger)

	adminGroup.Get("/geofences", geofenceHandler.List)
	adminGroup.Post("/geofences", geofenceHandler.Create)
	adminGroup.Patch("/geofences/:id/active", geofenceHandler.SetActive)
	adminGroup.Delete("/geofences/:id", geofenceHandler.Delete)

	if r.deps.Stats != nil {
		statsHandler := adminHandler.NewStatsHandler(r.deps.Stats, r.logger)
		adminGroup.Get("/stats", statsHandler.Get)
	}

	if r.deps.Sessions != nil {
		sessionHandler := adminHandler.NewSessionHandler(r.deps.Sessions, r.logger)
		adminGroup.Post("/session", sessionHandler.Create)
	}

	// Live decision feed for dashboards
	if r.deps.Hub != nil {
		adminGroup.Use("/live", ws.UpgradeMiddleware())
		adminGroup.Get("/live", ws.Handler(r.deps.Hub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
