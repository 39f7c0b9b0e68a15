package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
)

// Default page sizes for debit log listings
const (
	customerLogLimit = 100
	ownerLogLimit    = 50
)

// CustomerService handles owner-scoped customer operations
type CustomerService struct {
	customerRepo billing.CustomerRepository
	debitLogRepo billing.DebitLogRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo billing.CustomerRepository, debitLogRepo billing.DebitLogRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		debitLogRepo: debitLogRepo,
	}
}

// Create creates a new customer owned by the given user
func (s *CustomerService) Create(ctx context.Context, userID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := billing.NewCustomer(userID, req.Name, req.Balance, req.HourlyDebitAmount)
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	return toCustomerResponse(customer), nil
}

// GetByID returns a customer owned by the given user
func (s *CustomerService) GetByID(ctx context.Context, userID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.findOwned(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// List returns all customers owned by the given user, newest first
func (s *CustomerService) List(ctx context.Context, userID uuid.UUID) ([]CustomerResponse, error) {
	customers, err := s.customerRepo.FindAllForUser(ctx, userID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, *toCustomerResponse(&customers[i]))
	}
	return responses, nil
}

// Update applies a partial update to a customer owned by the given user
func (s *CustomerService) Update(ctx context.Context, userID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.findOwned(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := customer.UpdateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Balance != nil {
		if err := customer.SetBalance(*req.Balance); err != nil {
			return nil, err
		}
	}
	if req.HourlyDebitAmount != nil {
		if err := customer.SetHourlyDebitAmount(*req.HourlyDebitAmount); err != nil {
			return nil, err
		}
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	return toCustomerResponse(customer), nil
}

// Delete removes a customer owned by the given user. Debit logs go with it
// through the schema's cascade.
func (s *CustomerService) Delete(ctx context.Context, userID, customerID uuid.UUID) error {
	customer, err := s.findOwned(ctx, userID, customerID)
	if err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, customer.ID)
}

// ListCustomerLogs returns recent debit logs for one owned customer, newest first
func (s *CustomerService) ListCustomerLogs(ctx context.Context, userID, customerID uuid.UUID) ([]DebitLogResponse, error) {
	customer, err := s.findOwned(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}

	entries, err := s.debitLogRepo.FindByCustomerID(ctx, customer.ID, billing.DebitLogFilter{Limit: customerLogLimit})
	if err != nil {
		return nil, err
	}

	responses := make([]DebitLogResponse, 0, len(entries))
	for i := range entries {
		response := toDebitLogResponse(&entries[i])
		response.CustomerName = customer.Name
		responses = append(responses, response)
	}
	return responses, nil
}

// ListAllLogs returns recent debit logs across every customer owned by the
// given user, newest first, annotated with customer names.
func (s *CustomerService) ListAllLogs(ctx context.Context, userID uuid.UUID) ([]DebitLogResponse, error) {
	entries, err := s.debitLogRepo.FindForUser(ctx, userID, billing.DebitLogFilter{Limit: ownerLogLimit})
	if err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.FindAllForUser(ctx, userID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(customers))
	for i := range customers {
		names[customers[i].ID] = customers[i].Name
	}

	responses := make([]DebitLogResponse, 0, len(entries))
	for i := range entries {
		response := toDebitLogResponse(&entries[i])
		response.CustomerName = names[entries[i].CustomerID]
		responses = append(responses, response)
	}
	return responses, nil
}

func (s *CustomerService) findOwned(ctx context.Context, userID, customerID uuid.UUID) (*billing.Customer, error) {
	customer, err := s.customerRepo.FindByIDForUser(ctx, userID, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.ErrNotFound
	}
	return customer, nil
}
