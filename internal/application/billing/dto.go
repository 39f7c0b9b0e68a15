package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meterly/backend/internal/domain/billing"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	Balance           decimal.Decimal `json:"balance"`
	HourlyDebitAmount decimal.Decimal `json:"hourly_debit_amount" binding:"required"`
}

// UpdateCustomerRequest represents a partial update to a customer
type UpdateCustomerRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Balance           *decimal.Decimal `json:"balance"`
	HourlyDebitAmount *decimal.Decimal `json:"hourly_debit_amount"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Balance           decimal.Decimal `json:"balance"`
	HourlyDebitAmount decimal.Decimal `json:"hourly_debit_amount"`
	LastDebitedAt     *time.Time      `json:"last_debited_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// DebitLogResponse represents a debit log entry in API responses
type DebitLogResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name,omitempty"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toCustomerResponse(c *billing.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:                c.ID,
		Name:              c.Name,
		Balance:           c.Balance,
		HourlyDebitAmount: c.HourlyDebitAmount,
		LastDebitedAt:     c.LastDebitedAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toDebitLogResponse(e *billing.DebitLogEntry) DebitLogResponse {
	return DebitLogResponse{
		ID:            e.ID,
		CustomerID:    e.CustomerID,
		Status:        e.Status.String(),
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		ErrorMessage:  e.ErrorMessage,
		CreatedAt:     e.CreatedAt,
	}
}
