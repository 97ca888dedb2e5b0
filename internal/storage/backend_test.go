package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmpny/customerdataservice/internal/cache"
	"github.com/cmpny/customerdataservice/internal/config"
	"github.com/cmpny/customerdataservice/internal/domain/customers"
	badgerstore "github.com/cmpny/customerdataservice/internal/storage/badger"
	"github.com/cmpny/customerdataservice/internal/storage/memory"
	"github.com/cmpny/customerdataservice/internal/storage/sqlstore"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func roundTrip(t *testing.T, repo customers.Repository) {
	t.Helper()
	ctx := context.Background()

	saved, err := repo.Save(ctx, customers.Customer{FirstName: "F", LastName: "L", EmailAddress: "backend@example.com", PhoneNumber: "1"})
	require.NoError(t, err)
	got, err := repo.FindByEmail(ctx, "backend@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestOpenBackends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config, dir string)
		check  func(t *testing.T, repo customers.Repository)
	}{
		{
			name:   "memory",
			mutate: func(c *config.Config, dir string) { c.DataBackend = config.BackendMemory },
			check: func(t *testing.T, repo customers.Repository) {
				assert.IsType(t, &memory.CustomerRepository{}, repo)
			},
		},
		{
			name: "sqlite",
			mutate: func(c *config.Config, dir string) {
				c.DataBackend = config.BackendSQLite
				c.SQLitePath = filepath.Join(dir, "customers.db")
			},
			check: func(t *testing.T, repo customers.Repository) {
				assert.IsType(t, &sqlstore.CustomerRepository{}, repo)
			},
		},
		{
			name: "badger",
			mutate: func(c *config.Config, dir string) {
				c.DataBackend = config.BackendBadger
				c.BadgerDir = filepath.Join(dir, "badger")
			},
			check: func(t *testing.T, repo customers.Repository) {
				assert.IsType(t, &badgerstore.CustomerRepository{}, repo)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(&cfg, t.TempDir())

			b, err := Open(context.Background(), cfg, quiet)
			require.NoError(t, err)
			defer func() { assert.NoError(t, b.Close()) }()

			tt.check(t, b.Customers)
			assert.NoError(t, b.Ping(context.Background()))
			roundTrip(t, b.Customers)
		})
	}
}

func TestOpenWithCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Defaults()
	cfg.DataBackend = config.BackendMemory
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	b, err := Open(context.Background(), cfg, quiet)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &cache.Repository{}, b.Customers)
	roundTrip(t, b.Customers)
	assert.NoError(t, b.Ping(context.Background()))

	mr.Close()
	assert.Error(t, b.Ping(context.Background()))
}

func TestOpenFailures(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataBackend = "h2"
	_, err := Open(context.Background(), cfg, quiet)
	assert.Error(t, err)

	cfg = config.Defaults()
	cfg.DataBackend = config.BackendMemory
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	_, err = Open(context.Background(), cfg, quiet)
	assert.Error(t, err)
}
