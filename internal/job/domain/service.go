package domain

import (
	"context"
	"errors"
	"time"

	referencedomain "github.com/haulbiz/dispatch/internal/reference/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Job, error)
	Get(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, req ListRequest) ([]Job, error)
	Assign(ctx context.Context, id string, req AssignRequest) (*Job, error)
	SetStatus(ctx context.Context, id string, req SetStatusRequest) (*Job, error)
	UpdateFields(ctx context.Context, id string, patch Patch) (*Job, error)
	Price(ctx context.Context, id string, req PriceRequest) (*Job, error)
	Events(ctx context.Context, id string) ([]StatusEvent, error)
}

type CreateRequest struct {
	CustomerID  string                      `json:"customer_id"`
	FromSiteID  string                      `json:"from_site_id"`
	ToSiteID    string                      `json:"to_site_id"`
	MaterialID  string                      `json:"material_id"`
	ScheduledAt time.Time                   `json:"scheduled_at"`
	Priority    Priority                    `json:"priority"`
	PlannedQty  decimal.Decimal             `json:"planned_qty"`
	BillingUnit referencedomain.BillingUnit `json:"billing_unit"`
	Note        string                      `json:"note"`
}

type ListRequest struct {
	CustomerID string  `form:"customer_id"`
	Status     *Status `form:"status"`
}

type AssignRequest struct {
	DriverID  string  `json:"driver_id"`
	TruckID   string  `json:"truck_id"`
	TrailerID *string `json:"trailer_id"`
	// Status, when set, is an explicit transition requested together with the
	// assignment and suppresses the automatic PLANNED→ASSIGNED side effect.
	Status *Status `json:"status"`
}

type SetStatusRequest struct {
	Status Status   `json:"status"`
	Note   string   `json:"note"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

// Patch is the partial-update value object for a job: every mutable field is
// an optional slot, applied by a single merge pass.
type Patch struct {
	ScheduledAt          *time.Time       `json:"scheduled_at"`
	Priority             *Priority        `json:"priority"`
	PlannedQty           *decimal.Decimal `json:"planned_qty"`
	ActualQty            *decimal.Decimal `json:"actual_qty"`
	ManualOverrideTotal  *decimal.Decimal `json:"manual_override_total"`
	ManualOverrideReason *string          `json:"manual_override_reason"`
	Billable             *bool            `json:"billable"`
	Note                 *string          `json:"note"`
	Status               *Status          `json:"status"`
}

type PriceRequest struct {
	WaitHours *decimal.Decimal `json:"wait_hours"`
	IsNight   bool             `json:"is_night"`
}

var (
	ErrNotFound            = errors.New("not_found")
	ErrIllegalTransition   = errors.New("illegal_transition")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidSite         = errors.New("invalid_site")
	ErrInvalidMaterial     = errors.New("invalid_material")
	ErrInvalidDriver       = errors.New("invalid_driver")
	ErrInvalidTruck        = errors.New("invalid_truck")
	ErrInvalidTrailer      = errors.New("invalid_trailer")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidUnit         = errors.New("invalid_billing_unit")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidSchedule     = errors.New("invalid_schedule")
	ErrInvalidID           = errors.New("invalid_id")
	ErrActualQtyNotAllowed = errors.New("invalid_actual_qty")
	ErrOverrideNeedsReason = errors.New("invalid_override_reason")
)
