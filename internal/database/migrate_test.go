package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(context.Background(), Options{
		Driver: DriverSQLite,
		DSN:    SQLiteDSN(filepath.Join(t.TempDir(), "migrate.db"), time.Second),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestConnectValidatesOptions(t *testing.T) {
	ctx := context.Background()

	_, err := Connect(ctx, Options{DSN: "x"})
	assert.Error(t, err)

	_, err = Connect(ctx, Options{Driver: DriverSQLite})
	assert.Error(t, err)

	_, err = Connect(ctx, Options{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestEmbeddedMigrationsCreateCustomers(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	migrator := NewSQLMigrator(db, MigrationsFS(), MigrationsDir, nil)

	require.NoError(t, db.RunMigrations(ctx, migrator))
	// A second run finds everything applied.
	require.NoError(t, db.RunMigrations(ctx, migrator))

	var applied int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)

	_, err := db.ExecContext(ctx, `INSERT INTO customers (id, first_name, last_name, email_address, phone_number, created_at, updated_at)
        VALUES ('a', 'F', 'L', 'dup@example.com', '1', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO customers (id, first_name, last_name, email_address, phone_number, created_at, updated_at)
        VALUES ('b', 'F', 'L', 'dup@example.com', '1', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.Error(t, err)
	assert.True(t, db.Dialect.IsUniqueViolation(err))
}

func TestSQLMigratorSkipsNonUpFiles(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	fsys := fstest.MapFS{
		"m/0001_a.up.sql":     {Data: []byte("CREATE TABLE a (id INTEGER); CREATE TABLE b (id INTEGER);")},
		"m/0001_a.down.sql":   {Data: []byte("DROP TABLE a; DROP TABLE b;")},
		"m/0002_empty.up.sql": {Data: []byte("  ;  ")},
		"m/README.md":         {Data: []byte("notes")},
	}
	migrator := NewSQLMigrator(db, fsys, "m", nil)
	require.NoError(t, migrator.Up(ctx))

	for _, table := range []string{"a", "b"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestSQLMigratorRollsBackFailedFile(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	fsys := fstest.MapFS{
		"m/0001_bad.up.sql": {Data: []byte("CREATE TABLE ok (id INTEGER); CREATE TABLE broken (")},
	}
	err := NewSQLMigrator(db, fsys, "m", nil).Up(ctx)
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Zero(t, count)

	err = db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'ok'`).Scan(new(string))
	assert.Error(t, err, "partial migration must not leave tables behind")
}

func TestSplitSQLStatements(t *testing.T) {
	got := splitSQLStatements("CREATE TABLE a (id INT);\n\n  CREATE INDEX i ON a (id) ;\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX i ON a (id)"}, got)
	assert.Empty(t, splitSQLStatements(" ; ;"))
}
