// Package domain contains persistence models for customer billing statements.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status tracks a statement's settlement lifecycle. Only payment allocation
// moves a statement beyond SENT.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSent          Status = "SENT"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
)

// Statement is an immutable billing document for one customer over one
// period. Amounts are recomputed from the lines at generation time and never
// edited afterwards; only Status moves.
type Statement struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_statements_org_number" json:"organization_id"`
	CustomerID  snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	Number      int64           `gorm:"not null;uniqueIndex:ux_statements_org_number" json:"number"`
	PeriodStart time.Time       `gorm:"not null" json:"period_start"`
	PeriodEnd   time.Time       `gorm:"not null" json:"period_end"`
	Status      Status          `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	Tax         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"tax"`
	Total       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	CreatedBy   snowflake.ID    `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Statement) TableName() string { return "statements" }

// Line is one job's contribution to a statement. The unique index on JobID is
// the global no-double-billing backstop: the database rejects a second line
// for the same job no matter which statement tries to add it.
type Line struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID    `gorm:"not null;index" json:"organization_id"`
	StatementID snowflake.ID    `gorm:"not null;index" json:"statement_id"`
	JobID       snowflake.ID    `gorm:"not null;uniqueIndex:ux_statement_lines_job" json:"job_id"`
	Description string          `gorm:"type:text" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"line_total"`
	Breakdown   datatypes.JSON  `gorm:"type:jsonb" json:"breakdown,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Line) TableName() string { return "statement_lines" }
