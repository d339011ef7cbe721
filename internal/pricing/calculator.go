// Package pricing turns a resolved price list entry plus trip context into a
// monetary breakdown. All arithmetic is fixed-point decimal; repeated
// summation in statements must not drift.
package pricing

import (
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	pricingdomain "github.com/haulbiz/dispatch/internal/pricing/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input is the trip context for one calculation.
type Input struct {
	Quantity  decimal.Decimal
	WaitHours *decimal.Decimal
	IsNight   bool
}

// Calculate prices quantity against entry. The step order is fixed because
// each step changes the base for the next: the minimum charge lifts the base
// before the night surcharge is computed on it, while the trip surcharge and
// wait fee stay additive and outside the minimum-charge comparison. Every
// monetary component is rounded to cents as it is produced, so the total is
// an exact sum of cent amounts.
func Calculate(entry *pricelistdomain.Entry, in Input) (*pricingdomain.Breakdown, error) {
	if in.Quantity.IsNegative() || in.Quantity.IsZero() {
		return nil, pricingdomain.ErrInvalidQuantity
	}
	if in.WaitHours != nil && in.WaitHours.IsNegative() {
		return nil, pricingdomain.ErrInvalidWaitHours
	}

	base := entry.BasePrice.Mul(in.Quantity).Round(2)

	adjustment := decimal.Zero
	if entry.MinCharge != nil && base.LessThan(*entry.MinCharge) {
		adjustment = entry.MinCharge.Sub(base)
		base = *entry.MinCharge
	}

	tripSurcharge := decimal.Zero
	if entry.TripSurcharge != nil {
		tripSurcharge = *entry.TripSurcharge
	}

	waitFee := decimal.Zero
	if entry.WaitFeePerHour != nil && in.WaitHours != nil {
		waitFee = entry.WaitFeePerHour.Mul(*in.WaitHours).Round(2)
	}

	nightSurcharge := decimal.Zero
	if in.IsNight && entry.NightSurchargePct != nil {
		nightSurcharge = base.Mul(entry.NightSurchargePct.Div(hundred)).Round(2)
	}

	total := base.Add(tripSurcharge).Add(waitFee).Add(nightSurcharge)

	return &pricingdomain.Breakdown{
		EntryID:             entry.ID,
		BaseAmount:          base,
		MinChargeAdjustment: adjustment,
		TripSurcharge:       tripSurcharge,
		WaitFee:             waitFee,
		NightSurcharge:      nightSurcharge,
		Total:               total,
	}, nil
}
