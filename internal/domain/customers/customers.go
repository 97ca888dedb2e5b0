package customers

import (
	"context"
	"errors"
	"time"
)

// Domain-level errors for customers.
var (
	ErrNotImplemented = errors.New("customers repository: not implemented")
	ErrNotFound       = errors.New("customer not found")
	ErrEmailExists    = errors.New("customer email already exists")
)

// Customer represents a customer contact record.
type Customer struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	MiddleName   string    `json:"middleName,omitempty"`
	LastName     string    `json:"lastName"`
	EmailAddress string    `json:"emailAddress"`
	PhoneNumber  string    `json:"phoneNumber"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Repository abstracts persistence for customers.
//
// Save inserts when ID is empty and updates otherwise. Implementations report
// ErrNotFound for an update of a missing record and ErrEmailExists when the
// email address is already used by another customer. Delete of a missing
// record is not an error.
type Repository interface {
	FindByID(ctx context.Context, id string) (Customer, error)
	FindByEmail(ctx context.Context, email string) (Customer, error)
	Save(ctx context.Context, customer Customer) (Customer, error)
	List(ctx context.Context, offset, limit int) ([]Customer, error)
	Delete(ctx context.Context, id string) error
}

// NullRepository stub implementation returning ErrNotImplemented.
type NullRepository struct{}

func (NullRepository) FindByID(ctx context.Context, id string) (Customer, error) {
	return Customer{}, ErrNotImplemented
}

func (NullRepository) FindByEmail(ctx context.Context, email string) (Customer, error) {
	return Customer{}, ErrNotImplemented
}

func (NullRepository) Save(ctx context.Context, customer Customer) (Customer, error) {
	return Customer{}, ErrNotImplemented
}

func (NullRepository) List(ctx context.Context, offset, limit int) ([]Customer, error) {
	return nil, ErrNotImplemented
}

func (NullRepository) Delete(ctx context.Context, id string) error {
	return ErrNotImplemented
}

// CreateInput defines data required to create a customer.
type CreateInput struct {
	FirstName    string
	MiddleName   string
	LastName     string
	EmailAddress string
	PhoneNumber  string
}

// UpdateInput replaces every mutable attribute of the customer identified by ID.
type UpdateInput struct {
	ID           string
	FirstName    string
	MiddleName   string
	LastName     string
	EmailAddress string
	PhoneNumber  string
}
