package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// CustomerModel maps a customer row. Monetary columns use
// decimal(18,4) so balances never round through floats.
type CustomerModel struct {
	OwnedAggregateModel
	Name              string          `gorm:"type:varchar(200);not null"`
	Balance           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	HourlyDebitAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LastDebitedAt     *time.Time
}

func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the row to a domain Customer.
func (m *CustomerModel) ToDomain() *billing.Customer {
	return &billing.Customer{
		OwnedAggregateRoot: m.ownedRoot(),
		Name:               m.Name,
		Balance:            m.Balance,
		HourlyDebitAmount:  m.HourlyDebitAmount,
		LastDebitedAt:      m.LastDebitedAt,
	}
}

// FromDomain fills the row from a domain Customer.
func (m *CustomerModel) FromDomain(c *billing.Customer) {
	m.setOwnedRoot(c.OwnedAggregateRoot)
	m.Name = c.Name
	m.Balance = c.Balance
	m.HourlyDebitAmount = c.HourlyDebitAmount
	m.LastDebitedAt = c.LastDebitedAt
}

// CustomerModelFromDomain builds a fresh row from a domain Customer.
func CustomerModelFromDomain(c *billing.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// DebitLogModel maps one attempt in the debit ledger. Rows are
// append-only; deletes cascade from the owning customer.
type DebitLogModel struct {
	BaseModel
	CustomerID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status        billing.DebitStatus `gorm:"type:varchar(20);not null;index"`
	Amount        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	BalanceBefore decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	BalanceAfter  decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	ErrorMessage  *string             `gorm:"type:text"`
}

func (DebitLogModel) TableName() string {
	return "debit_logs"
}

// ToDomain converts the row to a domain DebitLogEntry.
func (m *DebitLogModel) ToDomain() *billing.DebitLogEntry {
	return &billing.DebitLogEntry{
		BaseEntity:    m.entity(),
		CustomerID:    m.CustomerID,
		Status:        m.Status,
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ErrorMessage:  m.ErrorMessage,
	}
}

// FromDomain fills the row from a domain DebitLogEntry.
func (m *DebitLogModel) FromDomain(e *billing.DebitLogEntry) {
	m.setEntity(e.BaseEntity)
	m.CustomerID = e.CustomerID
	m.Status = e.Status
	m.Amount = e.Amount
	m.BalanceBefore = e.BalanceBefore
	m.BalanceAfter = e.BalanceAfter
	m.ErrorMessage = e.ErrorMessage
}

// DebitLogModelFromDomain builds a fresh row from a domain DebitLogEntry.
func DebitLogModelFromDomain(e *billing.DebitLogEntry) *DebitLogModel {
	m := &DebitLogModel{}
	m.FromDomain(e)
	return m
}
