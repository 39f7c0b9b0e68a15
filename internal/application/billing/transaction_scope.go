package billing

import (
	"context"

	"github.com/meterly/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing repositories
// within a transaction. Both repositories share the same underlying
// database transaction, so a debit's balance update and its log entry
// land together or not at all.
type TransactionalRepositories interface {
	// CustomerRepo returns the customer repository scoped to the current transaction
	CustomerRepo() billing.CustomerRepository
	// DebitLogRepo returns the debit log repository scoped to the current transaction
	DebitLogRepo() billing.DebitLogRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	customerRepo billing.CustomerRepository
	debitLogRepo billing.DebitLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	customerRepo billing.CustomerRepository,
	debitLogRepo billing.DebitLogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		customerRepo: customerRepo,
		debitLogRepo: debitLogRepo,
	}
}

// Execute runs the function without transaction support
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(&noOpRepositories{
		customerRepo: s.customerRepo,
		debitLogRepo: s.debitLogRepo,
	})
}

type noOpRepositories struct {
	customerRepo billing.CustomerRepository
	debitLogRepo billing.DebitLogRepository
}

func (r *noOpRepositories) CustomerRepo() billing.CustomerRepository {
	return r.customerRepo
}

func (r *noOpRepositories) DebitLogRepo() billing.DebitLogRepository {
	return r.debitLogRepo
}
