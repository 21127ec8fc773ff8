package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/humphreyotieno1/alx-backend-graphql-crm/apperrors"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/globalid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/repository"
	"go.uber.org/zap"
)

const duplicateEmailMessage = "Customer with this Email already exists."

// BulkCreateResult reports the outcome of a bulk customer creation.
// Customers holds the persisted rows, Errors the tagged failures.
type BulkCreateResult struct {
	Customers []models.Customer
	Errors    []string
}

// CustomerService defines the interface for customer business logic.
type CustomerService interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error)
	BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) (*BulkCreateResult, error)
	GetCustomer(ctx context.Context, ref string) (*models.Customer, error)
	ListCustomers(ctx context.Context, filter repository.Filter, orderBy []string) ([]models.Customer, error)
}

type customerServiceImpl struct {
	store     repository.Store
	validator *InputValidator
	logger    *zap.Logger
}

func NewCustomerService(store repository.Store, validator *InputValidator, logger *zap.Logger) CustomerService {
	return &customerServiceImpl{store: store, validator: validator, logger: logger}
}

func (s *customerServiceImpl) CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	customer, ferrs, err := s.insert(ctx, s.store.Customers(), in)
	if len(ferrs) > 0 {
		return nil, apperrors.Validation(ferrs.Strings()...)
	}
	if err != nil {
		s.logger.Error("Failed to create customer", zap.Error(err))
		return nil, apperrors.Internal("Error creating customer", err)
	}
	s.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

// BulkCreateCustomers persists each valid input independently: every insert
// runs in its own savepoint of one shared transaction, so a failing item
// rolls back only itself. Error tags use the 1-based input position.
func (s *customerServiceImpl) BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) (*BulkCreateResult, error) {
	result := &BulkCreateResult{}

	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		for i, in := range inputs {
			idx := i + 1
			var created *models.Customer
			var ferrs FieldErrors

			spErr := tx.WithinTransaction(ctx, func(sp repository.Store) (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("%v", r)
					}
				}()
				var insertErr error
				created, ferrs, insertErr = s.insert(ctx, sp.Customers(), in)
				if len(ferrs) > 0 {
					return errValidationFailed
				}
				return insertErr
			})

			switch {
			case len(ferrs) > 0:
				for _, fe := range ferrs {
					result.Errors = append(result.Errors, fmt.Sprintf("Customer %d - %s", idx, fe))
				}
			case spErr != nil:
				s.logger.Warn("Bulk customer insert failed", zap.Int("index", idx), zap.Error(spErr))
				result.Errors = append(result.Errors, fmt.Sprintf("Error creating customer %d: %v", idx, spErr))
			default:
				result.Customers = append(result.Customers, *created)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Bulk customer creation failed", zap.Error(err))
		return nil, apperrors.Internal("Error creating customers", err)
	}

	s.logger.Info("Bulk customer creation finished",
		zap.Int("requested", len(inputs)),
		zap.Int("created", len(result.Customers)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *customerServiceImpl) GetCustomer(ctx context.Context, ref string) (*models.Customer, error) {
	id := globalid.Resolve(ref, globalid.CustomerType)
	if !id.OK() {
		return nil, apperrors.NotFound("Customer not found")
	}
	customer, err := s.store.Customers().FindByID(ctx, id.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Customer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("loading customer: %w", err)
	}
	return customer, nil
}

func (s *customerServiceImpl) ListCustomers(ctx context.Context, filter repository.Filter, orderBy []string) ([]models.Customer, error) {
	return s.store.Customers().List(ctx, filter, orderBy)
}

var errValidationFailed = errors.New("validation failed")

// insert validates in, checks email uniqueness and writes the row. Field
// errors and unexpected errors are returned separately.
func (s *customerServiceImpl) insert(ctx context.Context, repo repository.CustomerRepository, in CustomerInput) (*models.Customer, FieldErrors, error) {
	in, ferrs := s.validator.Customer(in)
	if !ferrs.Has("email") {
		exists, err := repo.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			ferrs = withFieldError(ferrs, FieldError{Field: "email", Message: duplicateEmailMessage}, customerFieldOrder)
		}
	}
	if len(ferrs) > 0 {
		return nil, ferrs, nil
	}

	customer := &models.Customer{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := repo.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, FieldErrors{{Field: "email", Message: duplicateEmailMessage}}, nil
		}
		return nil, nil, err
	}
	return customer, nil, nil
}

var customerFieldOrder = []string{"name", "email", "phone"}

// withFieldError inserts fe keeping the declaration order given by order.
func withFieldError(ferrs FieldErrors, fe FieldError, order []string) FieldErrors {
	rank := func(field string) int {
		for i, f := range order {
			if f == field {
				return i
			}
		}
		return len(order)
	}
	out := make(FieldErrors, 0, len(ferrs)+1)
	inserted := false
	for _, e := range ferrs {
		if !inserted && rank(e.Field) > rank(fe.Field) {
			out = append(out, fe)
			inserted = true
		}
		out = append(out, e)
	}
	if !inserted {
		out = append(out, fe)
	}
	return out
}
