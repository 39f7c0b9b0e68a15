package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
)

// mockCustomerRepo is a mock implementation of billing.CustomerRepository
type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Customer), args.Error(1)
}

func (m *mockCustomerRepo) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*billing.Customer, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Customer), args.Error(1)
}

func (m *mockCustomerRepo) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]billing.Customer, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Customer), args.Error(1)
}

func (m *mockCustomerRepo) FindEligibleForDebit(ctx context.Context) ([]billing.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Customer), args.Error(1)
}

func (m *mockCustomerRepo) Save(ctx context.Context, customer *billing.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *mockCustomerRepo) SaveWithLock(ctx context.Context, customer *billing.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCustomerRepo) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// mockDebitLogRepo is a mock implementation of billing.DebitLogRepository
type mockDebitLogRepo struct {
	mock.Mock
}

func (m *mockDebitLogRepo) Create(ctx context.Context, entry *billing.DebitLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockDebitLogRepo) FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter billing.DebitLogFilter) ([]billing.DebitLogEntry, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.DebitLogEntry), args.Error(1)
}

func (m *mockDebitLogRepo) FindForUser(ctx context.Context, userID uuid.UUID, filter billing.DebitLogFilter) ([]billing.DebitLogEntry, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.DebitLogEntry), args.Error(1)
}

func (m *mockDebitLogRepo) Summarize(ctx context.Context, since time.Time) (*billing.LogSummary, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.LogSummary), args.Error(1)
}
