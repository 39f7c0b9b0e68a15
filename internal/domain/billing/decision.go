package billing

import "github.com/shopspring/decimal"

// Insufficient-balance failures carry this exact message in their log entry.
const InsufficientBalanceMessage = "Insufficient balance"

// DecisionResult is the outcome of evaluating one customer for a debit.
// It carries everything needed to persist the attempt without re-deriving
// any state.
type DecisionResult struct {
	Status       DebitStatus
	Amount       decimal.Decimal // the attempted debit amount
	NewBalance   decimal.Decimal // equals the current balance when the debit fails
	ErrorMessage string          // empty on success
}

// Decide evaluates whether a customer's balance covers its hourly debit.
// It is a pure function: no I/O, no mutation, same result for the same
// customer state.
func Decide(c *Customer) DecisionResult {
	amount := c.HourlyDebitAmount
	if c.Balance.GreaterThanOrEqual(amount) {
		return DecisionResult{
			Status:     DebitStatusSuccess,
			Amount:     amount,
			NewBalance: c.Balance.Sub(amount),
		}
	}
	return DecisionResult{
		Status:       DebitStatusFailed,
		Amount:       amount,
		NewBalance:   c.Balance,
		ErrorMessage: InsufficientBalanceMessage,
	}
}
