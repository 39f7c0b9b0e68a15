package billing

import (
	"time"

	"github.com/meterly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer represents a billed account with a prepaid balance that is
// drained by the recurring debit run.
type Customer struct {
	shared.OwnedAggregateRoot
	Name              string
	Balance           decimal.Decimal
	HourlyDebitAmount decimal.Decimal
	LastDebitedAt     *time.Time // set only by successful debits
}

// NewCustomer creates a new customer owned by the given user
func NewCustomer(userID uuid.UUID, name string, balance, hourlyDebitAmount decimal.Decimal) (*Customer, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name is required")
	}
	if balance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Balance cannot be negative")
	}
	if !hourlyDebitAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_DEBIT_AMOUNT", "Hourly debit amount must be positive")
	}

	return &Customer{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID),
		Name:               name,
		Balance:            balance,
		HourlyDebitAmount:  hourlyDebitAmount,
	}, nil
}

// UpdateName changes the customer name
func (c *Customer) UpdateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name is required")
	}
	c.Name = name
	c.Touch(time.Now())
	return nil
}

// SetBalance replaces the customer balance (manual adjustment)
func (c *Customer) SetBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return shared.NewDomainError("INVALID_BALANCE", "Balance cannot be negative")
	}
	c.Balance = balance
	c.Touch(time.Now())
	return nil
}

// SetHourlyDebitAmount changes the recurring debit amount
func (c *Customer) SetHourlyDebitAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_DEBIT_AMOUNT", "Hourly debit amount must be positive")
	}
	c.HourlyDebitAmount = amount
	c.Touch(time.Now())
	return nil
}

// IsEligibleForDebit reports whether the customer should be considered by a
// debit run. Customers at zero balance are skipped entirely, not logged.
func (c *Customer) IsEligibleForDebit() bool {
	return c.Balance.IsPositive()
}

// ApplyDebit deducts the given amount and stamps the successful debit time.
// The caller decides the amount via the decision engine; this method only
// enforces that the balance never goes negative.
func (c *Customer) ApplyDebit(amount decimal.Decimal, at time.Time) error {
	if c.Balance.LessThan(amount) {
		return shared.ErrInsufficientBalance
	}
	c.Balance = c.Balance.Sub(amount)
	c.LastDebitedAt = &at
	c.Touch(at)
	return nil
}
