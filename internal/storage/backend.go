// Package storage selects and opens the customer repository configured by
// DATA_BACKEND, optionally fronted by the redis cache.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmpny/customerdataservice/internal/cache"
	"github.com/cmpny/customerdataservice/internal/config"
	"github.com/cmpny/customerdataservice/internal/database"
	"github.com/cmpny/customerdataservice/internal/domain/customers"
	badgerstore "github.com/cmpny/customerdataservice/internal/storage/badger"
	"github.com/cmpny/customerdataservice/internal/storage/memory"
	"github.com/cmpny/customerdataservice/internal/storage/sqlstore"
)

const sqliteBusyTimeout = 5 * time.Second

// Backend is an opened repository plus the resources backing it.
type Backend struct {
	Customers customers.Repository
	closers   []func() error
}

// Ping checks the repository when it supports pinging.
func (b *Backend) Ping(ctx context.Context) error {
	if p, ok := b.Customers.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Open builds the repository selected by cfg.DataBackend. SQL backends are
// migrated before use.
func Open(ctx context.Context, cfg config.Config, logr *slog.Logger) (*Backend, error) {
	b := &Backend{}

	switch cfg.DataBackend {
	case config.BackendMemory:
		logr.Info("using in-memory repositories (DATA_BACKEND=memory)")
		b.Customers = memory.NewCustomerRepository()

	case config.BackendSQLite, config.BackendPostgres:
		opts := database.Options{
			Driver:          cfg.DatabaseDriver,
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			Logger:          logr,
		}
		if cfg.DataBackend == config.BackendSQLite {
			opts.Driver = database.DriverSQLite
			opts.DSN = database.SQLiteDSN(cfg.SQLitePath, sqliteBusyTimeout)
		}

		db, err := database.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		b.closers = append(b.closers, db.Close)

		migrator := database.NewSQLMigrator(db, database.MigrationsFS(), database.MigrationsDir, logr)
		if err := db.RunMigrations(ctx, migrator); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}

		logr.Info("using sql repositories", "backend", cfg.DataBackend, "driver", opts.Driver)
		b.Customers = sqlstore.NewCustomerRepository(db.DB, db.Dialect)

	case config.BackendBadger:
		repo, err := badgerstore.Open(cfg.BadgerDir, logr)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, repo.Close)
		b.Customers = repo

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.closers = append(b.closers, client.Close)
		b.Customers = cache.NewRepository(b.Customers, client, cfg.CacheTTL, logr)
		logr.Info("customer cache enabled", "ttl", cfg.CacheTTL)
	}

	return b, nil
}
