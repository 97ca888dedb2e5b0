package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		d, err := DialectFor(driver)
		require.NoError(t, err)
		assert.Equal(t, driver, d.Driver)
	}

	_, err := DialectFor("mysql")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	query := `UPDATE customers SET first_name = ?, last_name = ? WHERE id = ?`

	pg := Dialect{Driver: DriverPostgres}
	assert.Equal(t, `UPDATE customers SET first_name = $1, last_name = $2 WHERE id = $3`, pg.Rebind(query))

	lite := Dialect{Driver: DriverSQLite}
	assert.Equal(t, query, lite.Rebind(query))
}

func TestIsUniqueViolation(t *testing.T) {
	d := Dialect{Driver: DriverPostgres}

	assert.True(t, d.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, d.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, d.IsUniqueViolation(&pgconn.PgError{Code: "23502"}))
	assert.False(t, d.IsUniqueViolation(errors.New("duplicate key")))
	assert.False(t, d.IsUniqueViolation(nil))
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("/tmp/customers.db", 5*time.Second)
	assert.Contains(t, dsn, "file:/tmp/customers.db?")
	assert.Contains(t, dsn, "_pragma=busy_timeout(5000)")
	assert.Contains(t, dsn, "_pragma=journal_mode(WAL)")
}
