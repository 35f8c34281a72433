package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Incidents   *handlers.IncidentsHandler
	Users       *handlers.UsersHandler
	Technicians *handlers.TechniciansHandler
	Metrics     *observability.Metrics
	// AuthMiddleware guards the incident and technician routes when set.
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/login", cfg.Users.Login)
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	var guards, technicianOnly []fiber.Handler
	if cfg.AuthMiddleware != nil {
		guards = []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole()}
		technicianOnly = []fiber.Handler{auth.RequireTechnician()}
	}

	incidents := api.Group("/incidents", guards...)
	incidents.Get("/", cfg.Incidents.List)
	incidents.Post("/", cfg.Incidents.Create)
	incidents.Post("/by-specialization", cfg.Incidents.BySpecialization)
	incidents.Get("/status/:status", cfg.Incidents.ByStatus)
	incidents.Get("/priority/:priority", cfg.Incidents.ByPriority)
	incidents.Get("/category/:category", cfg.Incidents.ByCategory)
	incidents.Get("/technician/:id", cfg.Incidents.ByTechnician)
	incidents.Get("/reporter/:id", cfg.Incidents.ByReporter)
	incidents.Put("/:incidentId/take-charge", append(technicianOnly, cfg.Incidents.TakeCharge)...)
	incidents.Get("/:id", cfg.Incidents.Get)
	incidents.Put("/:id", cfg.Incidents.Update)
	incidents.Delete("/:id", cfg.Incidents.Delete)

	technicians := api.Group("/technicians", guards...)
	technicians.Get("/:username/specializations", cfg.Technicians.Specializations)
}
