package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DebitStatus represents the outcome recorded for a debit attempt
type DebitStatus string

const (
	// DebitStatusSuccess means the balance was deducted
	DebitStatusSuccess DebitStatus = "success"
	// DebitStatusFailed means no balance change happened
	DebitStatusFailed DebitStatus = "failed"
)

// String returns the string representation of DebitStatus
func (s DebitStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known value
func (s DebitStatus) IsValid() bool {
	return s == DebitStatusSuccess || s == DebitStatusFailed
}

// DebitLogEntry is an immutable record of one debit attempt against one
// customer. Entries are never updated or deleted individually; they only
// disappear when their customer is deleted.
type DebitLogEntry struct {
	shared.BaseEntity
	CustomerID    uuid.UUID
	Status        DebitStatus
	Amount        decimal.Decimal // attempted amount, recorded even on failure
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	ErrorMessage  *string // nil on success
}

// NewSuccessDebitLog records a completed debit
func NewSuccessDebitLog(customerID uuid.UUID, amount, balanceBefore, balanceAfter decimal.Decimal) *DebitLogEntry {
	return &DebitLogEntry{
		BaseEntity:    shared.NewBaseEntity(),
		CustomerID:    customerID,
		Status:        DebitStatusSuccess,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
	}
}

// NewFailedDebitLog records a debit attempt that left the balance untouched.
// balance_before and balance_after are equal for failed entries.
func NewFailedDebitLog(customerID uuid.UUID, amount, balance decimal.Decimal, errorMessage string) *DebitLogEntry {
	return &DebitLogEntry{
		BaseEntity:    shared.NewBaseEntity(),
		CustomerID:    customerID,
		Status:        DebitStatusFailed,
		Amount:        amount,
		BalanceBefore: balance,
		BalanceAfter:  balance,
		ErrorMessage:  &errorMessage,
	}
}

// IsSuccess reports whether the entry records a completed debit
func (e *DebitLogEntry) IsSuccess() bool {
	return e.Status == DebitStatusSuccess
}

// LogSummary aggregates debit log entries over a trailing window
type LogSummary struct {
	Total         int64
	Successful    int64
	Failed        int64
	LastProcessed *time.Time
}
