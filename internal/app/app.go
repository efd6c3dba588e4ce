package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/orderdesk-backend/internal/clients/redis"
	"github.com/yungbote/orderdesk-backend/internal/data/db"
	"github.com/yungbote/orderdesk-backend/internal/domain/orders"
	"github.com/yungbote/orderdesk-backend/internal/events"
	"github.com/yungbote/orderdesk-backend/internal/handlers"
	"github.com/yungbote/orderdesk-backend/internal/middleware"
	"github.com/yungbote/orderdesk-backend/internal/observability"
	"github.com/yungbote/orderdesk-backend/internal/platform/logger"
	"github.com/yungbote/orderdesk-backend/internal/services"
	"github.com/yungbote/orderdesk-backend/internal/uow"
)

// App owns the wired service graph.
type App struct {
	cfg     Config
	log     *logger.Logger
	db      *gorm.DB
	metrics *observability.Metrics
	router  *gin.Engine

	redisBus     redisclient.EventBus
	otelShutdown func(context.Context) error
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	metrics := observability.NewMetrics()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Telemetry.Environment,
		Version:     cfg.Telemetry.Version,
	})

	gdb, err := openDatabase(log, cfg.Database)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(gdb)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher
	var redisBus redisclient.EventBus
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		redisBus, err = redisclient.NewEventBus(log, cfg.Redis.Addr, cfg.Redis.Channel)
		if err != nil {
			return nil, err
		}
		publisher = redisBus
	} else {
		log.Info("no redis configured, using in-memory event bus")
		publisher = events.NewMemoryBus()
	}

	hooks := observability.NewUnitOfWorkHooks(metrics)
	newUow := func() (*uow.UnitOfWork, error) {
		return uow.New(uow.Deps{
			DB:        gdb,
			Log:       log,
			Registry:  registry,
			Publisher: publisher,
			Hooks:     hooks,
		})
	}

	orderSvc := services.NewOrderService(gdb, log, newUow)
	orderHandler := handlers.NewOrderHandler(log, orderSvc)
	auth := middleware.NewAuthMiddleware(log, cfg.Auth.JWTSecret)
	router := wireRouter(cfg, metrics, orderHandler, auth)

	return &App{
		cfg:          cfg,
		log:          log.With("component", "App"),
		db:           gdb,
		metrics:      metrics,
		router:       router,
		redisBus:     redisBus,
		otelShutdown: otelShutdown,
	}, nil
}

// Router exposes the HTTP surface, mainly for tests.
func (a *App) Router() *gin.Engine { return a.router }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + a.cfg.Server.Port,
		Handler: a.router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "port", a.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("http shutdown failed", "error", err)
	}
	if a.redisBus != nil {
		_ = a.redisBus.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(shutdownCtx)
	}
	return nil
}

func openDatabase(log *logger.Logger, cfg DatabaseConfig) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "postgres":
		return db.NewPostgres(log, db.PostgresConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Name:     cfg.Name,
			SSLMode:  cfg.SSLMode,
		})
	case "sqlite":
		return db.NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// buildRegistry declares every persisted entity type. The registry is
// explicit and passed to whoever needs it; nothing scans for entities.
func buildRegistry(gdb *gorm.DB) (*uow.EntityRegistry, error) {
	registry := uow.NewEntityRegistry()
	if err := registry.Register(&orders.Order{}, uow.WithClientIDs()); err != nil {
		return nil, err
	}
	if err := registry.Register(&orders.OrderLine{}, uow.WithClientIDs()); err != nil {
		return nil, err
	}
	if err := registry.Migrate(gdb); err != nil {
		return nil, err
	}
	return registry, nil
}
