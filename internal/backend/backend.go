// Package backend builds the data store and the optional event publisher
// selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"finflow/internal/amqp"
	"finflow/internal/config"
	applog "finflow/internal/log"
	"finflow/internal/ports"
	"finflow/internal/storage"
	"finflow/internal/storage/memory"
)

// Type names a data backend.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) IsValid() bool {
	return t == SQLite || t == Memory
}

// Config holds what the factory needs from the application config.
type Config struct {
	Type         Type
	SQLiteDBPath string
	DataDir      string

	// AMQP is optional; an empty URL disables event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(c *config.Config) (Config, error) {
	if c == nil {
		return Config{}, errors.New("app config is nil")
	}
	t := Type(c.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", c.DataBackend)
	}
	return Config{
		Type:         t,
		SQLiteDBPath: c.SQLiteDBPath,
		DataDir:      c.DataDir,
		AMQPURL:      c.AMQPURL,
		AMQPExchange: c.AMQPExchange,
		AMQPQueue:    c.AMQPQueue,
	}, nil
}

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Result is a ready store plus what it took to build it. Publisher is nil
// when AMQP is not configured or could not connect.
type Result struct {
	Store     ports.Store
	Publisher *amqp.Client
	Ready     Pinger
}

// Close releases the publisher and the store.
func (r *Result) Close() error {
	var errs []error
	if r.Publisher != nil {
		errs = append(errs, r.Publisher.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	return errors.Join(errs...)
}

// EventPublisher returns the publisher as the services expect it, keeping
// a nil client a nil interface.
func (r *Result) EventPublisher() ports.EventPublisher {
	if r.Publisher == nil {
		return nil
	}
	return r.Publisher
}

type alwaysReady struct{}

func (alwaysReady) Ping(context.Context) error { return nil }

// Open builds the backend described by cfg.
func Open(cfg Config, logger *applog.Logger) (*Result, error) {
	logger = logger.WithComponent(applog.ComponentBackend)

	res := &Result{}
	switch cfg.Type {
	case SQLite:
		if cfg.SQLiteDBPath == "" {
			return nil, errors.New("SQLite database path is required for sqlite backend")
		}
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		res.Store, res.Ready = repo, repo
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	case Memory:
		dir := cfg.DataDir
		if dir == "" {
			dir = "data"
		}
		res.Store, res.Ready = memory.NewFromFiles(dir), alwaysReady{}
		logger.Info("Initialized memory backend", "data_directory", dir)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without export events", applog.FieldError, err)
		} else {
			res.Publisher = client
			logger.Info("Initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}
	return res, nil
}
