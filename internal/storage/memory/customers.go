package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmpny/customerdataservice/internal/domain/customers"
)

// CustomerRepository is an in-memory implementation of customers.Repository.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]entry
	byEmail   map[string]string
	seq       uint64
}

type entry struct {
	customer customers.Customer
	seq      uint64
}

// NewCustomerRepository returns an initialized in-memory repository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		customers: make(map[string]entry),
		byEmail:   make(map[string]string),
	}
}

// FindByID returns a customer by identifier.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (customers.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.customers[id]
	if !ok {
		return customers.Customer{}, customers.ErrNotFound
	}
	return e.customer, nil
}

// FindByEmail returns the customer owning the email address.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (customers.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return customers.Customer{}, customers.ErrNotFound
	}
	return r.customers[id].customer, nil
}

// Save inserts or updates a customer record.
func (r *CustomerRepository) Save(ctx context.Context, customer customers.Customer) (customers.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.byEmail[customer.EmailAddress]; ok && owner != customer.ID {
		return customers.Customer{}, customers.ErrEmailExists
	}

	now := time.Now().UTC()
	var e entry
	if customer.ID == "" {
		customer.ID = newID()
		customer.CreatedAt = now
		r.seq++
		e.seq = r.seq
	} else {
		existing, ok := r.customers[customer.ID]
		if !ok {
			return customers.Customer{}, customers.ErrNotFound
		}
		customer.CreatedAt = existing.customer.CreatedAt
		e.seq = existing.seq
		delete(r.byEmail, existing.customer.EmailAddress)
	}
	customer.UpdatedAt = now

	e.customer = customer
	r.customers[customer.ID] = e
	r.byEmail[customer.EmailAddress] = customer.ID
	return customer, nil
}

// List returns customers in insertion order with offset/limit pagination.
// A zero limit returns everything after offset.
func (r *CustomerRepository) List(ctx context.Context, offset, limit int) ([]customers.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]entry, 0, len(r.customers))
	for _, e := range r.customers {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	if offset > len(entries) {
		return []customers.Customer{}, nil
	}
	end := len(entries)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}

	list := make([]customers.Customer, 0, end-offset)
	for _, e := range entries[offset:end] {
		list = append(list, e.customer)
	}
	return list, nil
}

// Delete removes a customer; unknown ids are ignored.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.customers[id]
	if !ok {
		return nil
	}
	delete(r.byEmail, e.customer.EmailAddress)
	delete(r.customers, id)
	return nil
}

// Ping reports the repository as always reachable.
func (r *CustomerRepository) Ping(ctx context.Context) error {
	return nil
}
