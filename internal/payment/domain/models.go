// Package domain contains persistence models for payments and their
// allocation across statements.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Method is how a payment was received.
type Method string

const (
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCash         Method = "CASH"
	MethodCheck        Method = "CHECK"
	MethodCard         Method = "CARD"
)

// Payment is a received customer payment. Immutable once created;
// corrections are new payments.
type Payment struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID    `gorm:"not null;index" json:"organization_id"`
	CustomerID snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	Method     Method          `gorm:"type:text;not null" json:"method"`
	Reference  string          `gorm:"type:text" json:"reference,omitempty"`
	CreatedBy  snowflake.ID    `gorm:"not null" json:"created_by"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// Allocation apportions part of a payment to a statement. The allocator
// guarantees the cumulative allocations against a statement never exceed its
// total.
type Allocation struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID    `gorm:"not null;index" json:"organization_id"`
	PaymentID   snowflake.ID    `gorm:"not null;index" json:"payment_id"`
	StatementID snowflake.ID    `gorm:"not null;index" json:"statement_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Allocation) TableName() string { return "payment_allocations" }
