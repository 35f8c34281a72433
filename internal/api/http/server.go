package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/observability"
)

// ServerConfig collects what NewServer needs to assemble the fiber app.
type ServerConfig struct {
	AppName        string
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	RequestTimeout time.Duration
	Routes         RouteConfig
}

// NewServer builds the fiber app with middlewares and routes attached.
func NewServer(cfg ServerConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		UnescapePath:          true,
	})
	RegisterMiddlewares(app, logger, cfg.Metrics, cfg.RequestTimeout)

	routes := cfg.Routes
	if routes.Metrics == nil {
		routes.Metrics = cfg.Metrics
	}
	RegisterRoutes(app, routes)
	return app
}
