// Package badger stores customers in an embedded badger key-value store.
//
// Layout:
//
//	customer/<id>    -> JSON encoded customers.Customer
//	email/<address>  -> <id>
//
// Both keys of a customer change inside one transaction, which keeps the
// email index unique.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/cmpny/customerdataservice/internal/domain/customers"
)

const (
	customerPrefix = "customer/"
	emailPrefix    = "email/"
	maxTxnRetries  = 3
)

// CustomerRepository implements customers.Repository on badger.
type CustomerRepository struct {
	db *badger.DB
}

// Open opens (or creates) the store under dir. An empty dir keeps everything
// in memory.
func Open(dir string, logger *slog.Logger) (*CustomerRepository, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dir, err)
	}
	if logger != nil {
		logger.Info("badger store opened", "dir", dir, "in_memory", dir == "")
	}
	return &CustomerRepository{db: db}, nil
}

// Close releases the underlying store.
func (r *CustomerRepository) Close() error {
	return r.db.Close()
}

func customerKey(id string) []byte { return []byte(customerPrefix + id) }
func emailKey(email string) []byte { return []byte(emailPrefix + email) }

// FindByID returns a customer by identifier.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (customers.Customer, error) {
	var c customers.Customer
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		c, err = getCustomer(txn, id)
		return err
	})
	return c, err
}

// FindByEmail resolves the email index and loads the customer.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (customers.Customer, error) {
	var c customers.Customer
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getEmailOwner(txn, email)
		if err != nil {
			return err
		}
		c, err = getCustomer(txn, id)
		return err
	})
	return c, err
}

// Save inserts or updates a customer and its email index entry.
func (r *CustomerRepository) Save(ctx context.Context, customer customers.Customer) (customers.Customer, error) {
	var saved customers.Customer
	err := r.update(ctx, func(txn *badger.Txn) error {
		c := customer
		now := time.Now().UTC()

		if c.ID == "" {
			c.ID = uuid.NewString()
			c.CreatedAt = now
		} else {
			existing, err := getCustomer(txn, c.ID)
			if err != nil {
				return err
			}
			c.CreatedAt = existing.CreatedAt
			if existing.EmailAddress != c.EmailAddress {
				if err := txn.Delete(emailKey(existing.EmailAddress)); err != nil {
					return err
				}
			}
		}
		c.UpdatedAt = now

		owner, err := getEmailOwner(txn, c.EmailAddress)
		switch {
		case err == nil && owner != c.ID:
			return customers.ErrEmailExists
		case err != nil && !errors.Is(err, customers.ErrNotFound):
			return err
		}

		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode customer: %w", err)
		}
		if err := txn.Set(customerKey(c.ID), data); err != nil {
			return err
		}
		if err := txn.Set(emailKey(c.EmailAddress), []byte(c.ID)); err != nil {
			return err
		}
		saved = c
		return nil
	})
	if err != nil {
		return customers.Customer{}, err
	}
	return saved, nil
}

// List returns customers ordered by creation time. A zero limit returns all.
func (r *CustomerRepository) List(ctx context.Context, offset, limit int) ([]customers.Customer, error) {
	var all []customers.Customer
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(customerPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var c customers.Customer
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &c)
			}); err != nil {
				return fmt.Errorf("decode customer: %w", err)
			}
			all = append(all, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if offset > len(all) {
		return []customers.Customer{}, nil
	}
	end := len(all)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return append([]customers.Customer{}, all[offset:end]...), nil
}

// Delete removes a customer and its email index; unknown ids are ignored.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	return r.update(ctx, func(txn *badger.Txn) error {
		existing, err := getCustomer(txn, id)
		if errors.Is(err, customers.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := txn.Delete(emailKey(existing.EmailAddress)); err != nil {
			return err
		}
		return txn.Delete(customerKey(id))
	})
}

// Ping reports whether the store is still open.
func (r *CustomerRepository) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger store is closed")
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (r *CustomerRepository) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = r.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("badger transaction: %w", err)
}

func getCustomer(txn *badger.Txn, id string) (customers.Customer, error) {
	item, err := txn.Get(customerKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return customers.Customer{}, customers.ErrNotFound
	}
	if err != nil {
		return customers.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	var c customers.Customer
	if err := item.Value(func(v []byte) error {
		return json.Unmarshal(v, &c)
	}); err != nil {
		return customers.Customer{}, fmt.Errorf("decode customer: %w", err)
	}
	return c, nil
}

func getEmailOwner(txn *badger.Txn, email string) (string, error) {
	item, err := txn.Get(emailKey(email))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", customers.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get email index: %w", err)
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(v), nil
}
