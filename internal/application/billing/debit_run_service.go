package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/meterly/backend/internal/domain/billing"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/telemetry"
)

// CustomerResult records the outcome of one customer within a debit run
type CustomerResult struct {
	CustomerID   uuid.UUID           `json:"customer_id"`
	CustomerName string              `json:"customer_name"`
	Status       billing.DebitStatus `json:"status"`
	Amount       decimal.Decimal     `json:"amount"`
	NewBalance   decimal.Decimal     `json:"new_balance"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// RunSummary is the in-memory report of one debit run. It is returned to
// the caller and logged, never persisted.
type RunSummary struct {
	Timestamp      time.Time        `json:"timestamp"`
	TotalCustomers int              `json:"total_customers"`
	Successful     int              `json:"successful"`
	Failed         int              `json:"failed"`
	Results        []CustomerResult `json:"results"`
}

// DebitRunService drives the recurring debit run: it snapshots every
// customer with a positive balance, applies the debit decision to each in
// isolation, and reports an aggregate summary.
type DebitRunService struct {
	customerRepo billing.CustomerRepository
	debitLogRepo billing.DebitLogRepository
	txScope      TransactionScope
	logger       *zap.Logger

	// Serializes overlapping invocations from the scheduler and manual
	// triggers. A second caller blocks until the in-flight run finishes.
	runMu sync.Mutex
}

// NewDebitRunService creates a new DebitRunService
func NewDebitRunService(
	customerRepo billing.CustomerRepository,
	debitLogRepo billing.DebitLogRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *DebitRunService {
	return &DebitRunService{
		customerRepo: customerRepo,
		debitLogRepo: debitLogRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// RunOnce executes a single debit run over all eligible customers.
// The initial snapshot query is the only fatal failure; a failure while
// processing one customer is recorded as that customer's failed result
// and the run continues.
func (s *DebitRunService) RunOnce(ctx context.Context) (*RunSummary, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx, span := telemetry.StartServiceSpan(ctx, "debit_run", "run_once")
	defer span.End()

	startedAt := time.Now()
	s.logger.Info("Starting debit run")

	customers, err := s.customerRepo.FindEligibleForDebit(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch customers for debit run", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("fetch eligible customers: %w", err)
	}

	summary := &RunSummary{
		Timestamp:      startedAt,
		TotalCustomers: len(customers),
		Results:        make([]CustomerResult, 0, len(customers)),
	}

	for i := range customers {
		result := s.processCustomer(ctx, &customers[i])
		if result.Status == billing.DebitStatusSuccess {
			summary.Successful++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrRunTotal, summary.TotalCustomers,
		telemetry.SpanAttrRunFailed, summary.Failed,
	)

	s.logger.Info("Debit run completed",
		zap.Int("total", summary.TotalCustomers),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", time.Since(startedAt)))

	return summary, nil
}

// processCustomer applies the debit decision to one customer. Every
// considered customer produces exactly one log entry; the balance changes
// only on the success path, atomically with its entry.
func (s *DebitRunService) processCustomer(ctx context.Context, customer *billing.Customer) CustomerResult {
	result := CustomerResult{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Amount:       customer.HourlyDebitAmount,
	}

	decision := billing.Decide(customer)

	if decision.Status == billing.DebitStatusSuccess {
		balanceBefore := customer.Balance
		err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			if err := customer.ApplyDebit(decision.Amount, time.Now()); err != nil {
				return err
			}
			if err := repos.CustomerRepo().SaveWithLock(ctx, customer); err != nil {
				return err
			}
			entry := billing.NewSuccessDebitLog(customer.ID, decision.Amount, balanceBefore, customer.Balance)
			return repos.DebitLogRepo().Create(ctx, entry)
		})
		if err != nil {
			// The transaction rolled back; report the untouched balance.
			return s.recordProcessingFailure(ctx, customer, result, balanceBefore, err)
		}

		result.Status = billing.DebitStatusSuccess
		result.NewBalance = customer.Balance
		return result
	}

	// Insufficient balance: no balance change, just the failed entry.
	entry := billing.NewFailedDebitLog(customer.ID, decision.Amount, customer.Balance, decision.ErrorMessage)
	if err := s.debitLogRepo.Create(ctx, entry); err != nil {
		return s.recordProcessingFailure(ctx, customer, result, customer.Balance, err)
	}

	result.Status = billing.DebitStatusFailed
	result.NewBalance = customer.Balance
	result.ErrorMessage = decision.ErrorMessage
	return result
}

// recordProcessingFailure converts an unexpected error into a failed
// result and best-effort failed log entry. The log append failing too is
// logged and swallowed so the run can move on to the next customer.
func (s *DebitRunService) recordProcessingFailure(ctx context.Context, customer *billing.Customer, result CustomerResult, balance decimal.Decimal, cause error) CustomerResult {
	message := fmt.Sprintf("Processing error: %v", cause)
	s.logger.Warn("Debit failed for customer",
		zap.String("customer_id", customer.ID.String()),
		zap.Error(cause))

	entry := billing.NewFailedDebitLog(customer.ID, customer.HourlyDebitAmount, balance, message)
	if err := s.debitLogRepo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to record debit log entry",
			zap.String("customer_id", customer.ID.String()),
			zap.Error(err))
	}

	result.Status = billing.DebitStatusFailed
	result.NewBalance = balance
	result.ErrorMessage = message
	return result
}

// DebitCustomer runs the debit decision against a single customer owned
// by the given user, outside the periodic run. The manual debit produces
// a normal log entry and is subject to the same rules as the run.
func (s *DebitRunService) DebitCustomer(ctx context.Context, userID, customerID uuid.UUID) (*CustomerResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debit_run", "debit_customer",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, customerID.String()))
	defer span.End()

	customer, err := s.customerRepo.FindByIDForUser(ctx, userID, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if customer == nil {
		return nil, shared.ErrNotFound
	}

	result := s.processCustomer(ctx, customer)
	return &result, nil
}

// RecentLogSummary aggregates debit log entries over the trailing window
func (s *DebitRunService) RecentLogSummary(ctx context.Context, window time.Duration) (*billing.LogSummary, error) {
	since := time.Now().Add(-window)
	summary, err := s.debitLogRepo.Summarize(ctx, since)
	if err != nil {
		s.logger.Error("Failed to summarize debit logs", zap.Error(err))
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to summarize debit logs")
	}
	return summary, nil
}
