// Package gate assembles the storage driver, event publisher and checker
// settings described by a tunegate configuration. The CLI commands and the
// API server share it.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/tunegate/pkg/config"
	"github.com/papercomputeco/tunegate/pkg/eventstream"
	"github.com/papercomputeco/tunegate/pkg/eventstream/async"
	"github.com/papercomputeco/tunegate/pkg/eventstream/kafka"
	"github.com/papercomputeco/tunegate/pkg/eventstream/nop"
	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/project"
	"github.com/papercomputeco/tunegate/pkg/storage"
	"github.com/papercomputeco/tunegate/pkg/storage/inmemory"
	"github.com/papercomputeco/tunegate/pkg/storage/postgres"
	"github.com/papercomputeco/tunegate/pkg/storage/sqlite"
)

// ErrNoSQLitePath is returned when the sqlite driver is selected without a
// resolved database path.
var ErrNoSQLitePath = errors.New("gate: sqlite path is required")

// ErrNoPostgresDSN is returned when the postgres driver is selected without
// a connection string.
var ErrNoPostgresDSN = errors.New("gate: postgres dsn is required")

// Gate owns the long-lived dependencies of a checker.
type Gate struct {
	Store     storage.Driver
	Publisher eventstream.Publisher

	config *config.Config
	logger *slog.Logger
}

// Open builds the storage driver and publisher cfg selects.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Gate, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store, err := newStorageDriver(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	pub, err := newPublisher(cfg.EventStream, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Gate{
		Store:     store,
		Publisher: pub,
		config:    cfg,
		logger:    logger,
	}, nil
}

// New wraps existing dependencies. A nil publisher disables events.
func New(cfg *config.Config, store storage.Driver, pub eventstream.Publisher, logger *slog.Logger) *Gate {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if pub == nil {
		pub = nop.NewPublisher()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Gate{Store: store, Publisher: pub, config: cfg, logger: logger}
}

// Resource returns resource, or the configured default when empty.
func (g *Gate) Resource(resource string) string {
	if resource != "" {
		return resource
	}
	if g.config.Finetune.Resource != "" {
		return g.config.Finetune.Resource
	}
	return finetune.DefaultResource
}

// CheckerConfig returns the checker settings of the configuration.
func (g *Gate) CheckerConfig() finetune.Config {
	cfg := finetune.DefaultConfig()
	if len(g.config.Finetune.IgnoredFields) > 0 {
		cfg.IgnoredFields = g.config.Finetune.IgnoredFields
	}
	cfg.MinimumCompatibleVersion = g.config.Finetune.MinimumCompatibleVersion
	return cfg
}

// Checker returns a checker for resource. Finetuning runs load the persisted
// baseline and fail with finetune.ErrMissingSnapshot when there is none.
func (g *Gate) Checker(ctx context.Context, resource string, finetuning bool, schema project.Schema) (*finetune.Checker, error) {
	exec := finetune.ExecutionContext{IsFinetuning: finetuning, Schema: schema}
	opts := []finetune.Option{
		finetune.WithLogger(g.logger),
		finetune.WithPublisher(g.Publisher),
	}

	if finetuning {
		return finetune.Load(ctx, g.CheckerConfig(), exec, g.Store, g.Resource(resource), opts...)
	}
	return finetune.New(g.CheckerConfig(), exec, g.Store, g.Resource(resource), opts...)
}

// Close flushes the publisher and closes the storage driver.
func (g *Gate) Close() error {
	var errs []error
	if g.Publisher != nil {
		if err := g.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing publisher: %w", err))
		}
	}
	if g.Store != nil {
		if err := g.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newStorageDriver(ctx context.Context, c config.StorageConfig, logger *slog.Logger) (storage.Driver, error) {
	switch c.Driver {
	case config.DriverInMemory:
		logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case config.DriverPostgres:
		if c.PostgresDSN == "" {
			return nil, ErrNoPostgresDSN
		}
		driver, err := postgres.NewDriver(ctx, c.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		logger.Info("using PostgreSQL storage")
		return driver, nil

	case config.DriverSQLite, "":
		if c.SQLitePath == "" {
			return nil, ErrNoSQLitePath
		}
		driver, err := sqlite.NewDriver(c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		logger.Info("using SQLite storage", "path", c.SQLitePath)
		return driver, nil

	default:
		return nil, fmt.Errorf("gate: unknown storage driver %q", c.Driver)
	}
}

func newPublisher(c config.EventStreamConfig, logger *slog.Logger) (eventstream.Publisher, error) {
	var pub eventstream.Publisher
	switch c.Provider {
	case config.EventStreamNop, "":
		return nop.NewPublisher(), nil

	case config.EventStreamKafka:
		kp, err := kafka.NewPublisher(kafka.Config{
			Brokers: c.Brokers,
			Topic:   c.Topic,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		logger.Info("publishing validation events to kafka", "topic", c.Topic, "brokers", c.Brokers)
		pub = kp

	default:
		return nil, fmt.Errorf("gate: unknown event stream provider %q", c.Provider)
	}

	if !c.Async {
		return pub, nil
	}

	ap, err := async.NewPublisher(&async.Config{
		Publisher:  pub,
		NumWorkers: c.Workers,
		QueueSize:  c.QueueSize,
		Logger:     logger,
	})
	if err != nil {
		_ = pub.Close()
		return nil, err
	}
	return ap, nil
}
