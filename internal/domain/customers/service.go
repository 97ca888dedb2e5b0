package customers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmpny/customerdataservice/internal/metrics"
)

// Service exposes business operations over customers.
type Service interface {
	Get(ctx context.Context, id string) (Customer, error)
	GetByEmail(ctx context.Context, email string) (Customer, error)
	Create(ctx context.Context, input CreateInput) (Customer, error)
	Update(ctx context.Context, input UpdateInput) (Customer, error)
	List(ctx context.Context, offset, limit int) ([]Customer, error)
	Delete(ctx context.Context, id string) error
}

// NewService builds a customer service with the given repository.
func NewService(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, logger: logger}
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

func (s *service) Get(ctx context.Context, id string) (Customer, error) {
	defer metrics.ObserveOperation("findcustomer.byid", time.Now())
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetByEmail(ctx context.Context, email string) (Customer, error) {
	defer metrics.ObserveOperation("findcustomer.byemail", time.Now())
	return s.repo.FindByEmail(ctx, email)
}

func (s *service) Create(ctx context.Context, input CreateInput) (Customer, error) {
	const op = "savecustomer"
	defer metrics.ObserveOperation(op, time.Now())

	customer := Customer{
		FirstName:    input.FirstName,
		MiddleName:   input.MiddleName,
		LastName:     input.LastName,
		EmailAddress: input.EmailAddress,
		PhoneNumber:  input.PhoneNumber,
	}
	saved, err := s.repo.Save(ctx, customer)
	if err != nil {
		return Customer{}, s.saveFailure(op, err)
	}
	return saved, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (Customer, error) {
	const op = "updatecustomer"
	defer metrics.ObserveOperation(op, time.Now())

	customer, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Error("customer not found", "customer_id", input.ID)
			metrics.ObserveError(op, metrics.KindNotFound)
			return Customer{}, err
		}
		metrics.ObserveError(op, metrics.KindException)
		return Customer{}, fmt.Errorf("load customer %s: %w", input.ID, err)
	}

	customer.FirstName = input.FirstName
	customer.MiddleName = input.MiddleName
	customer.LastName = input.LastName
	customer.EmailAddress = input.EmailAddress
	customer.PhoneNumber = input.PhoneNumber

	saved, err := s.repo.Save(ctx, customer)
	if err != nil {
		return Customer{}, s.saveFailure(op, err)
	}
	return saved, nil
}

func (s *service) List(ctx context.Context, offset, limit int) ([]Customer, error) {
	defer metrics.ObserveOperation("fetchcustomers", time.Now())
	return s.repo.List(ctx, offset, limit)
}

func (s *service) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveOperation("deletecustomer", time.Now())
	return s.repo.Delete(ctx, id)
}

// saveFailure classifies a repository Save error. Conflicts and missing rows
// keep their sentinel; anything else is wrapped as an operation failure.
func (s *service) saveFailure(op string, err error) error {
	switch {
	case errors.Is(err, ErrEmailExists):
		metrics.ObserveError(op, metrics.KindEmailExists)
		return err
	case errors.Is(err, ErrNotFound):
		metrics.ObserveError(op, metrics.KindNotFound)
		return err
	case errors.Is(err, ErrNotImplemented):
		return err
	default:
		metrics.ObserveError(op, metrics.KindException)
		return fmt.Errorf("%s: %w", op, err)
	}
}
