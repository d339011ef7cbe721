// Package domain defines the pricing calculator's input and output shapes.
package domain

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Breakdown is the structured result of pricing one job against a resolved
// price list entry. It is snapshotted onto the job (and later onto the
// statement line), so historical amounts never shift when the live price
// list changes.
type Breakdown struct {
	EntryID             snowflake.ID    `json:"entry_id"`
	BaseAmount          decimal.Decimal `json:"base_amount"`
	MinChargeAdjustment decimal.Decimal `json:"min_charge_adjustment"`
	TripSurcharge       decimal.Decimal `json:"trip_surcharge"`
	WaitFee             decimal.Decimal `json:"wait_fee"`
	NightSurcharge      decimal.Decimal `json:"night_surcharge"`
	Total               decimal.Decimal `json:"total"`

	// Estimated marks a fallback-priced statement line so billing staff can
	// identify and correct it.
	Estimated bool `json:"estimated,omitempty"`
}

var (
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidWaitHours = errors.New("invalid_wait_hours")
)
