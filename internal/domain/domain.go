package domain

import (
	"log/slog"

	"github.com/cmpny/customerdataservice/internal/domain/customers"
)

// Container wires domain services together.
type Container struct {
	Customers customers.Service
}

// Options configures the domain container.
type Options struct {
	CustomerRepo customers.Repository
	Logger       *slog.Logger
}

// New constructs a domain container with provided repositories.
func New(opts Options) Container {
	customerRepo := opts.CustomerRepo
	if customerRepo == nil {
		customerRepo = customers.NullRepository{}
	}

	return Container{
		Customers: customers.NewService(customerRepo, opts.Logger),
	}
}
