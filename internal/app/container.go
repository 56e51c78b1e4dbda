package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talent-track/internal/config"
	"talent-track/internal/database"
	"talent-track/internal/database/migration"
	dbpostgres "talent-track/internal/database/postgres"
	"talent-track/internal/domain/analytics"
	"talent-track/internal/infrastructure/cache"
	"talent-track/internal/logger"
	"talent-track/internal/metrics"
	"talent-track/internal/notification"
	"talent-track/internal/store"
	"talent-track/internal/store/memory"
	pgstore "talent-track/internal/store/postgres"
	"talent-track/internal/usecase/recruitment"
	"talent-track/internal/ws"

	"go.uber.org/zap"
)

// Container owns every long-lived dependency of the service.
type Container struct {
	Config     config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	DB         database.DB
	Store      store.Store
	Cache      *cache.Redis
	Dispatcher *notification.Dispatcher
	Hub        *ws.Hub
	Service    *recruitment.Service

	amqp *notification.AMQPPublisher
}

type Options struct {
	// Migrate applies pending migrations when the postgres store is selected.
	Migrate bool
}

func NewContainer(ctx context.Context, cfg config.Config, log *zap.Logger, opts Options) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Container{Config: cfg, Logger: log, Metrics: metrics.New()}

	if err := c.openStore(ctx, opts); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	c.Cache = cache.NewRedis(cfg.Redis, logger.Named(log, "cache"))

	n, err := c.buildNotifier()
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	nc := cfg.Notification
	c.Dispatcher = notification.NewDispatcher(n, notification.Options{
		Workers:     nc.Workers,
		QueueSize:   nc.QueueSize,
		RatePerSec:  nc.RatePerSec,
		Burst:       nc.Burst,
		MaxAttempts: nc.MaxAttempts,
		Timeout:     nc.Timeout,
		Breaker: notification.BreakerOptions{
			MaxRequests:         nc.Breaker.MaxRequests,
			Interval:            nc.Breaker.Interval,
			Timeout:             nc.Breaker.Timeout,
			ConsecutiveFailures: nc.Breaker.ConsecutiveFailures,
		},
	}, logger.Named(log, "notification"), c.Metrics)

	c.Hub = ws.NewHub(logger.Named(log, "ws"), c.Metrics)

	c.Service = recruitment.NewService(recruitment.Deps{
		Store:     c.Store,
		Cache:     c.Cache,
		Notifier:  c.Dispatcher,
		Events:    c.Hub,
		Metrics:   c.Metrics,
		Logger:    log,
		Threshold: cfg.Selection.Threshold,
		Analytics: analytics.Options{FreezeTimeToHire: cfg.Analytics.FreezeTimeToHire},
		CacheTTL:  cfg.Redis.TTL,
	})
	return c, nil
}

func (c *Container) openStore(ctx context.Context, opts Options) error {
	cfg := c.Config
	switch cfg.Store.Driver {
	case config.StorePostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := dbpostgres.Connect(connectCtx, cfg.Database, logger.Named(c.Logger, "database"))
		if err != nil {
			return err
		}
		c.DB = db

		if opts.Migrate {
			migCtx, migCancel := context.WithTimeout(ctx, 2*time.Minute)
			defer migCancel()
			r := migration.Runner{Logger: logger.Named(c.Logger, "migration")}
			if _, err := r.Run(migCtx, db.SQLDB()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
		}
		c.Store = pgstore.New(db)
	default:
		st, err := memory.Open(cfg.Store.SnapshotPath, logger.Named(c.Logger, "store"), c.Metrics)
		if err != nil {
			return err
		}
		c.Store = st
	}
	return nil
}

func (c *Container) buildNotifier() (notification.Notifier, error) {
	nc := c.Config.Notification
	switch nc.Driver {
	case config.NotifierHTTP:
		return notification.NewHTTPGateway(nc.URL, nc.Timeout), nil
	case config.NotifierAMQP:
		p, err := notification.DialAMQP(nc.AMQP.URL, nc.AMQP.Queue, logger.Named(c.Logger, "amqp"))
		if err != nil {
			return nil, err
		}
		c.amqp = p
		return p, nil
	default:
		return notification.NewLogNotifier(logger.Named(c.Logger, "notification")), nil
	}
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	c.Dispatcher.Start(ctx)
	go c.Hub.Run(ctx)
}

// ApplyConfig takes the hot-reloadable settings from a reloaded config.
func (c *Container) ApplyConfig(cfg config.Config) {
	if err := c.Service.SetThreshold(cfg.Selection.Threshold); err != nil {
		c.Logger.Warn("threshold reload rejected", zap.Error(err))
	}
}

func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Dispatcher != nil {
		if err := c.Dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("dispatcher: %w", err))
		}
	}
	if c.amqp != nil {
		if err := c.amqp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	// The postgres store owns the pool once it exists.
	if c.Store == nil && c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
