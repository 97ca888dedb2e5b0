// Package sqlstore persists customers through database/sql. The same queries
// serve the sqlite and postgres drivers; placeholders are rebound per dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cmpny/customerdataservice/internal/database"
	"github.com/cmpny/customerdataservice/internal/domain/customers"
)

const customerColumns = `id, first_name, middle_name, last_name, email_address, phone_number, created_at, updated_at`

// CustomerRepository persists customers using a *sql.DB handle.
type CustomerRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewCustomerRepository returns a repository backed by a pooled DB connection.
func NewCustomerRepository(db *sql.DB, dialect database.Dialect) *CustomerRepository {
	return &CustomerRepository{db: db, dialect: dialect}
}

// FindByID fetches a customer by primary key.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (customers.Customer, error) {
	query := r.dialect.Rebind(`SELECT ` + customerColumns + ` FROM customers WHERE id = ?`)
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customers.Customer{}, customers.ErrNotFound
		}
		return customers.Customer{}, fmt.Errorf("find customer: %w", err)
	}
	return c, nil
}

// FindByEmail fetches the customer owning an email address.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (customers.Customer, error) {
	query := r.dialect.Rebind(`SELECT ` + customerColumns + ` FROM customers WHERE email_address = ?`)
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customers.Customer{}, customers.ErrNotFound
		}
		return customers.Customer{}, fmt.Errorf("find customer by email: %w", err)
	}
	return c, nil
}

// Save inserts or updates a customer record.
func (r *CustomerRepository) Save(ctx context.Context, customer customers.Customer) (customers.Customer, error) {
	now := time.Now().UTC()

	if customer.ID == "" {
		customer.ID = uuid.NewString()
		insert := r.dialect.Rebind(`
            INSERT INTO customers (` + customerColumns + `)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        `)
		if _, err := r.db.ExecContext(ctx, insert,
			customer.ID,
			customer.FirstName,
			customer.MiddleName,
			customer.LastName,
			customer.EmailAddress,
			customer.PhoneNumber,
			now,
			now,
		); err != nil {
			if r.dialect.IsUniqueViolation(err) {
				return customers.Customer{}, customers.ErrEmailExists
			}
			return customers.Customer{}, fmt.Errorf("insert customer: %w", err)
		}
		customer.CreatedAt = now
		customer.UpdatedAt = now
		return customer, nil
	}

	update := r.dialect.Rebind(`
        UPDATE customers
           SET first_name = ?,
               middle_name = ?,
               last_name = ?,
               email_address = ?,
               phone_number = ?,
               updated_at = ?
         WHERE id = ?
        RETURNING created_at
    `)

	var created time.Time
	err := r.db.QueryRowContext(ctx, update,
		customer.FirstName,
		customer.MiddleName,
		customer.LastName,
		customer.EmailAddress,
		customer.PhoneNumber,
		now,
		customer.ID,
	).Scan(&created)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return customers.Customer{}, customers.ErrNotFound
		case r.dialect.IsUniqueViolation(err):
			return customers.Customer{}, customers.ErrEmailExists
		}
		return customers.Customer{}, fmt.Errorf("update customer: %w", err)
	}

	customer.CreatedAt = created.UTC()
	customer.UpdatedAt = now
	return customer, nil
}

// List returns customers ordered by creation date. A zero limit returns all rows.
func (r *CustomerRepository) List(ctx context.Context, offset, limit int) ([]customers.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	} else if offset > 0 {
		// sqlite only accepts OFFSET after LIMIT; -1 and NULL mean unbounded.
		if r.dialect.Driver == database.DriverSQLite {
			query += ` LIMIT -1 OFFSET ?`
		} else {
			query += ` OFFSET ?`
		}
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	result := []customers.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

// Delete removes a customer row; deleting an unknown id is a no-op.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM customers WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *CustomerRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (customers.Customer, error) {
	var c customers.Customer
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.MiddleName,
		&c.LastName,
		&c.EmailAddress,
		&c.PhoneNumber,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
