// Package app assembles the service from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/incident-service/internal/api/http"
	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/api/validation"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/classifier"
	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/persistence"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/service"
)

// Application owns the HTTP server and every backend connection.
type Application struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *repository.Store
	redis   *persistence.Redis
	Fiber   *fiber.App
	closers []func()
}

// New opens the configured store, builds the services and the HTTP server.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Application, error) {
	a := &Application{cfg: cfg, logger: logger}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	a.redis = persistence.NewRedis(cfg.Redis, logger)
	a.closers = append(a.closers, a.redis.Close)

	metrics := observability.NewMetrics()
	resolver := service.NewReferenceResolver(store.Users, logger)
	gateway := classifier.NewGateway(
		classifier.NewClient(cfg.Classifier.BaseURL, cfg.Classifier.Timeout()),
		logger,
		metrics,
	)
	if !cfg.Classifier.Enabled() {
		logger.Warn("CLASSIFIER_BASE_URL not provided; incidents get default category and priority")
	}

	incidentService := service.NewIncidentService(service.IncidentDependencies{
		IncidentRepo: store.Incidents,
		Resolver:     resolver,
		Classifier:   gateway,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		IncidentRepo:     store.Incidents,
		UserRepo:         store.Users,
		Logger:           logger,
		StrictTakeCharge: cfg.Incidents.StrictTakeCharge,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: store.Users})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo: store.Users,
		Hasher:   authService.Hasher(),
	})
	technicianService := service.NewTechnicianService(store.Users)
	validate := validation.New()

	routes := httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, store, a.redis),
		Incidents:   handlers.NewIncidentsHandler(incidentService, assignmentService, validate),
		Users:       handlers.NewUsersHandler(userService, authService, validate),
		Technicians: handlers.NewTechniciansHandler(technicianService),
	}
	if cfg.Auth.Enforce {
		routes.AuthMiddleware = auth.NewAuthMiddleware(authService.TokenManager(), store.Users)
	}

	a.Fiber = httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.App.RequestTimeout(),
		Routes:         routes,
	})
	return a, nil
}

func (a *Application) openStore(ctx context.Context) (*repository.Store, error) {
	switch a.cfg.Store.Driver {
	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, a.cfg.Postgres, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		if a.cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), a.cfg.Postgres.MigrationsDir, a.logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return repository.NewPostgresStore(pg.PoolHandle()), nil
	case config.StoreMongo:
		mg, err := persistence.NewMongo(ctx, a.cfg.Mongo, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, mg.Close)
		if err := repository.EnsureMongoIndexes(ctx, mg.Database); err != nil {
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return repository.NewMongoStore(mg.Database), nil
	default:
		a.logger.Info("using in-memory store")
		return repository.NewMemoryStore(), nil
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.cfg.App.Addr()), zap.String("store", a.cfg.Store.Driver))
		errCh <- a.Fiber.Listen(a.cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down")
		return a.Fiber.Shutdown()
	}
}

// Close releases backend connections in reverse order of acquisition.
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
