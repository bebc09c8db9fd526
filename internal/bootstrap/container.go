// Package bootstrap assembles the infrastructure and application services shared
// by the HTTP server and the channelsync CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	integrationapp "github.com/erp/channelsync/internal/application/integration"
	tradeapp "github.com/erp/channelsync/internal/application/trade"
	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/infrastructure/auth"
	"github.com/erp/channelsync/internal/infrastructure/config"
	"github.com/erp/channelsync/internal/infrastructure/event"
	"github.com/erp/channelsync/internal/infrastructure/lock"
	"github.com/erp/channelsync/internal/infrastructure/logger"
	"github.com/erp/channelsync/internal/infrastructure/persistence"
	"github.com/erp/channelsync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Version is reported by the system endpoints and the telemetry resource
const Version = "1.0.0"

// Container holds the wired services and the resources they depend on
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Database  *persistence.Database
	Telemetry *telemetry.Providers
	EventBus  shared.EventBus
	JWT       *auth.JWTService
	Users     identity.UserRepository

	AccessGate  *integrationapp.AccessGate
	Channels    *integrationapp.ChannelService
	Exceptions  *integrationapp.ExceptionService
	Seeds       *integrationapp.SeedService
	SalesOrders *tradeapp.SalesOrderService
	ChannelSync *tradeapp.ChannelSyncService

	closers []func(context.Context) error
}

// New connects to the configured backends and wires every service.
// On error, whatever was already opened is closed again.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *Container, err error) {
	c := &Container{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = c.Close(context.Background())
		}
	}()

	if err = c.initTelemetry(ctx); err != nil {
		return nil, err
	}
	if err = c.initDatabase(); err != nil {
		return nil, err
	}

	locker, closeLocker, err := lock.NewLocker(cfg, log.Named("lock"))
	if err != nil {
		return nil, fmt.Errorf("failed to create locker: %w", err)
	}
	c.onClose(func(context.Context) error { return closeLocker() })

	bus, stopBus, err := event.NewEventBus(cfg.Event, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	if err = bus.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start event bus: %w", err)
	}
	c.EventBus = bus
	c.onClose(stopBus)

	syncMetrics, err := telemetry.NewChannelSyncMetrics(c.Telemetry.Meter("channelsync.sync"))
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	db := c.Database.DB
	orderRepo := persistence.NewGormSalesOrderRepository(db)
	channelRepo := persistence.NewGormChannelRepository(db)
	exceptionRepo := persistence.NewGormChannelExceptionRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	c.JWT = auth.NewJWTService(cfg.JWT)
	c.Users = userRepo
	c.AccessGate = integrationapp.NewAccessGate(userRepo, channelRepo, log.Named("access"))
	c.Channels = integrationapp.NewChannelService(channelRepo)
	c.Exceptions = integrationapp.NewExceptionService(exceptionRepo, orderRepo, log.Named("exceptions"))
	c.Seeds = integrationapp.NewSeedService(channelRepo, userRepo, log.Named("seed"))
	c.SalesOrders = tradeapp.NewSalesOrderService(txScope, orderRepo, c.AccessGate, c.Channels, log.Named("sales_orders"))
	c.ChannelSync = tradeapp.NewChannelSyncService(
		txScope, orderRepo, c.Exceptions, locker, log.Named("channel_sync"),
		tradeapp.WithLockWait(cfg.Sync.OrderLockWait),
		tradeapp.WithBatchConcurrency(cfg.Sync.BatchConcurrency),
		tradeapp.WithEventPublisher(bus),
		tradeapp.WithSyncMetrics(syncMetrics),
	)

	return c, nil
}

func (c *Container) initTelemetry(ctx context.Context) error {
	providers, err := telemetry.Setup(ctx, c.Config.Telemetry, Version, c.Logger.Named("telemetry"))
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	c.Telemetry = providers
	c.onClose(providers.Shutdown)
	return nil
}

func (c *Container) initDatabase() error {
	cfg := c.Config
	gormLog := logger.NewGormLogger(c.Logger.Named("gorm"), cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh)

	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	c.Database = db
	c.onClose(func(context.Context) error { return db.Close() })

	if err := telemetry.InstrumentDatabase(db.DB, cfg.Telemetry, cfg.Database.Driver, c.Logger); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}

	c.Logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))
	return nil
}

func (c *Container) onClose(fn func(context.Context) error) {
	c.closers = append(c.closers, fn)
}

// Close releases resources in reverse order of acquisition
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
