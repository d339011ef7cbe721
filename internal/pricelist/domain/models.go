// Package domain contains persistence models for the tenant price list.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"github.com/shopspring/decimal"
)

// Entry is one pricing rule. A nil CustomerID applies to all customers; a nil
// route applies to all routes for the material. Historical entries are
// soft-versioned through the validity window instead of edited in place, so
// jobs priced against an entry keep their snapshot intact.
type Entry struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID  `gorm:"not null;index" json:"organization_id"`
	CustomerID *snowflake.ID `gorm:"index" json:"customer_id,omitempty"`
	MaterialID snowflake.ID  `gorm:"not null;index" json:"material_id"`
	FromSiteID *snowflake.ID `json:"from_site_id,omitempty"`
	ToSiteID   *snowflake.ID `json:"to_site_id,omitempty"`

	BillingUnit referencedomain.BillingUnit `gorm:"type:text;not null" json:"billing_unit"`

	BasePrice         decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"base_price"`
	MinCharge         *decimal.Decimal `gorm:"type:numeric(14,2)" json:"min_charge,omitempty"`
	TripSurcharge     *decimal.Decimal `gorm:"type:numeric(14,2)" json:"trip_surcharge,omitempty"`
	WaitFeePerHour    *decimal.Decimal `gorm:"type:numeric(14,2)" json:"wait_fee_per_hour,omitempty"`
	NightSurchargePct *decimal.Decimal `gorm:"type:numeric(5,2)" json:"night_surcharge_pct,omitempty"`

	ValidFrom time.Time  `gorm:"not null;index" json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`

	CreatedBy snowflake.ID `gorm:"not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "price_list_entries" }

// RouteSpecific reports whether the entry binds to an exact origin/destination pair.
func (e *Entry) RouteSpecific() bool {
	return e.FromSiteID != nil && e.ToSiteID != nil
}

// CustomerSpecific reports whether the entry binds to a single customer.
func (e *Entry) CustomerSpecific() bool {
	return e.CustomerID != nil
}
