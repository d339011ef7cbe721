package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
	Resolve(ctx context.Context, req ResolveRequest) (*Entry, error)
}

type CreateRequest struct {
	CustomerID        *string                     `json:"customer_id"`
	MaterialID        string                      `json:"material_id"`
	FromSiteID        *string                     `json:"from_site_id"`
	ToSiteID          *string                     `json:"to_site_id"`
	BillingUnit       referencedomain.BillingUnit `json:"billing_unit"`
	BasePrice         decimal.Decimal             `json:"base_price"`
	MinCharge         *decimal.Decimal            `json:"min_charge"`
	TripSurcharge     *decimal.Decimal            `json:"trip_surcharge"`
	WaitFeePerHour    *decimal.Decimal            `json:"wait_fee_per_hour"`
	NightSurchargePct *decimal.Decimal            `json:"night_surcharge_pct"`
	ValidFrom         time.Time                   `json:"valid_from"`
	ValidTo           *time.Time                  `json:"valid_to"`
}

// ResolveRequest identifies the single applicable price entry for a pricing
// decision. AsOf defaults to the current time.
type ResolveRequest struct {
	CustomerID  snowflake.ID
	MaterialID  snowflake.ID
	BillingUnit referencedomain.BillingUnit
	FromSiteID  *snowflake.ID
	ToSiteID    *snowflake.ID
	AsOf        *time.Time
}

var (
	ErrNotFound          = errors.New("not_found")
	ErrNoApplicablePrice = errors.New("no_applicable_price")
	ErrInvalidMaterial   = errors.New("invalid_material")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidSite       = errors.New("invalid_site")
	ErrInvalidUnit       = errors.New("invalid_billing_unit")
	ErrInvalidBasePrice  = errors.New("invalid_base_price")
	ErrInvalidWindow     = errors.New("invalid_validity_window")
	ErrInvalidID         = errors.New("invalid_id")
)
