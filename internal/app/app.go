// Package app assembles the store, the event plumbing and the services from
// configuration. Both the HTTP server and the command line tool start here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/queuesmart/internal/api/http"
	"github.com/spec-kit/queuesmart/internal/api/http/handlers"
	"github.com/spec-kit/queuesmart/internal/auth"
	"github.com/spec-kit/queuesmart/internal/config"
	"github.com/spec-kit/queuesmart/internal/events"
	"github.com/spec-kit/queuesmart/internal/observability"
	"github.com/spec-kit/queuesmart/internal/persistence"
	"github.com/spec-kit/queuesmart/internal/repository"
	"github.com/spec-kit/queuesmart/internal/repository/pgstore"
	"github.com/spec-kit/queuesmart/internal/repository/sqlitestore"
	"github.com/spec-kit/queuesmart/internal/scheduling"
	"github.com/spec-kit/queuesmart/internal/service"
	"github.com/spec-kit/queuesmart/internal/validation"
	"github.com/spec-kit/queuesmart/internal/worker"
)

// Container holds every long-lived component.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      repository.Store
	Redis      *persistence.Redis
	Broker     *events.AMQPPublisher
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Tokens     *auth.TokenManager

	Customers     *service.CustomerService
	Tickets       *service.TicketService
	Assignments   *service.AssignmentService
	Appointments  *service.AppointmentService
	Staff         *service.StaffService
	Audit         *service.AuditService
	Reports       *service.ReportService
	Notifications *service.NotificationService
}

// New opens the configured store and wires the services on top of it.
// Redis and AMQP are optional; an empty address leaves them disabled.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	broker, err := events.DialAMQP(cfg.AMQP, logger)
	if err != nil {
		logger.Warn("amqp unavailable; event forwarding disabled", zap.Error(err))
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Redis:      persistence.NewRedis(cfg.Redis, logger),
		Broker:     broker,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    observability.NewMetrics(),
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
	}

	validator, err := validation.New()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init validator: %w", err)
	}
	deps := service.Dependencies{
		Store:      store,
		Validator:  validator,
		Dispatcher: c.Dispatcher,
		Detector:   scheduling.NewDetector(),
		Logger:     logger,
	}

	c.Customers = service.NewCustomerService(deps)
	c.Tickets = service.NewTicketService(deps)
	c.Assignments = service.NewAssignmentService(c.Tickets)
	c.Appointments = service.NewAppointmentService(deps)
	c.Staff = service.NewStaffService(deps, c.Tokens, cfg.Auth.BcryptCost)
	c.Audit = service.NewAuditService(deps)
	c.Reports = service.NewReportService(deps, persistence.NewReportCache(c.Redis, cfg.Redis.CacheTTL()))
	c.Notifications = service.NewNotificationService(c.Dispatcher, logger)

	worker.StartNotificationWorker(c.Dispatcher, worker.Subscribers{
		Notifications: c.Notifications,
		Reports:       c.Reports,
		Broker:        c.Broker,
	})
	return c, nil
}

// OpenStore returns the backend selected by cfg.Store.Driver with its schema
// applied.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		store, err := sqlitestore.Open(ctx, sqlitestore.Config{
			Path:        cfg.Store.SQLitePath,
			PoolSize:    cfg.Store.PoolSize,
			LockTimeout: cfg.Store.LockTimeout(),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := pgstore.New(pg.Pool, cfg.Store.LockTimeout(), logger)
		if cfg.Postgres.RunMigrations {
			if err := store.Migrate(ctx); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Bootstrap creates the first Manager account when the store has no staff.
func (c *Container) Bootstrap(ctx context.Context) (*service.BootstrapResult, error) {
	return c.Staff.EnsureBootstrapManager(ctx, c.Config.Bootstrap.ManagerUsername, c.Config.Bootstrap.ManagerPassword)
}

// Routes builds the handler set for the HTTP API.
func (c *Container) Routes() httptransport.RouteConfig {
	return httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(c.Config.App.Name, c.Config.App.Version, c.Store, c.Redis, c.Metrics),
		Staff:          handlers.NewStaffHandler(c.Staff),
		Customers:      handlers.NewCustomersHandler(c.Customers, c.Tickets, c.Appointments),
		Tickets:        handlers.NewTicketsHandler(c.Tickets),
		StaffTickets:   handlers.NewStaffTicketsHandler(c.Assignments),
		Appointments:   handlers.NewAppointmentsHandler(c.Appointments),
		Reports:        handlers.NewReportsHandler(c.Reports, c.Audit),
		AuthMiddleware: auth.NewAuthMiddleware(c.Tokens, c.Store),
	}
}

// HTTPApp returns a fiber app with middlewares and routes registered.
func (c *Container) HTTPApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               c.Config.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, c.Logger, c.Metrics, c.Config.App.RequestTimeout())
	httptransport.RegisterRoutes(app, c.Routes())
	return app
}

// Close releases the store and the optional clients.
func (c *Container) Close() error {
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if err := c.Broker.Close(); err != nil {
		errs = append(errs, err)
	}
	c.Redis.Close()
	return errors.Join(errs...)
}
