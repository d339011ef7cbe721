// Package domain contains persistence models for hauling jobs and their
// status history.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Priority orders dispatch urgency.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// Job is a single scheduled hauling trip between two sites. Rows are never
// deleted; cancellation is a terminal status.
type Job struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID `gorm:"not null;index" json:"organization_id"`
	CustomerID   snowflake.ID `gorm:"not null;index" json:"customer_id"`
	FromSiteID   snowflake.ID `gorm:"not null" json:"from_site_id"`
	ToSiteID     snowflake.ID `gorm:"not null" json:"to_site_id"`
	MaterialID   snowflake.ID `gorm:"not null;index" json:"material_id"`
	ScheduledAt  time.Time    `gorm:"not null;index" json:"scheduled_at"`
	Priority     Priority     `gorm:"type:text;not null;default:'NORMAL'" json:"priority"`

	DriverID  *snowflake.ID `gorm:"index" json:"driver_id,omitempty"`
	TruckID   *snowflake.ID `gorm:"index" json:"truck_id,omitempty"`
	TrailerID *snowflake.ID `json:"trailer_id,omitempty"`

	PlannedQty  decimal.Decimal             `gorm:"type:numeric(14,3);not null" json:"planned_qty"`
	ActualQty   *decimal.Decimal            `gorm:"type:numeric(14,3)" json:"actual_qty,omitempty"`
	BillingUnit referencedomain.BillingUnit `gorm:"type:text;not null" json:"billing_unit"`

	Status Status `gorm:"type:text;not null;default:'PLANNED';index" json:"status"`

	PricingTotal     *decimal.Decimal `gorm:"type:numeric(14,2)" json:"pricing_total,omitempty"`
	PricingBreakdown datatypes.JSON   `gorm:"type:jsonb" json:"pricing_breakdown,omitempty"`

	ManualOverrideTotal  *decimal.Decimal `gorm:"type:numeric(14,2)" json:"manual_override_total,omitempty"`
	ManualOverrideReason *string          `gorm:"type:text" json:"manual_override_reason,omitempty"`

	Billable bool   `gorm:"not null;default:true" json:"billable"`
	Note     string `gorm:"type:text" json:"note,omitempty"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Job) TableName() string { return "jobs" }

// StatusEvent is one append-only entry in a job's status history. Events are
// never mutated or deleted; the first event for a job carries its creation
// status.
type StatusEvent struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index" json:"organization_id"`
	JobID      snowflake.ID `gorm:"not null;index" json:"job_id"`
	Status     Status       `gorm:"type:text;not null" json:"status"`
	OccurredAt time.Time    `gorm:"not null;index" json:"occurred_at"`
	ActorID    snowflake.ID `gorm:"not null" json:"actor_id"`
	Lat        *float64     `json:"lat,omitempty"`
	Lng        *float64     `json:"lng,omitempty"`
	Note       string       `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (StatusEvent) TableName() string { return "job_status_events" }
