package pricing

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	pricelistdomain "github.com/haulbiz/dispatch/internal/pricelist/domain"
	pricingdomain "github.com/haulbiz/dispatch/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := dec(t, s)
	return &d
}

func TestCalculateBaseOnly(t *testing.T) {
	entry := &pricelistdomain.Entry{
		ID:        snowflake.ID(1),
		BasePrice: dec(t, "50"),
	}

	got, err := Calculate(entry, Input{Quantity: dec(t, "10")})
	require.NoError(t, err)

	assert.True(t, got.BaseAmount.Equal(dec(t, "500")), "base = %s", got.BaseAmount)
	assert.True(t, got.MinChargeAdjustment.IsZero())
	assert.True(t, got.Total.Equal(dec(t, "500")), "total = %s", got.Total)
	assert.False(t, got.Estimated)
}

func TestCalculateMinChargeLiftsBase(t *testing.T) {
	entry := &pricelistdomain.Entry{
		BasePrice: dec(t, "50"),
		MinCharge: decPtr(t, "300"),
	}

	got, err := Calculate(entry, Input{Quantity: dec(t, "2")})
	require.NoError(t, err)

	assert.True(t, got.BaseAmount.Equal(dec(t, "300")), "base = %s", got.BaseAmount)
	assert.True(t, got.MinChargeAdjustment.Equal(dec(t, "200")))
	assert.True(t, got.Total.Equal(dec(t, "300")))
}

func TestCalculateTripSurchargeOutsideMinComparison(t *testing.T) {
	// 50 x 2 = 100 is under the 120 minimum even though the trip surcharge
	// would push the raw sum past it.
	entry := &pricelistdomain.Entry{
		BasePrice:     dec(t, "50"),
		MinCharge:     decPtr(t, "120"),
		TripSurcharge: decPtr(t, "50"),
	}

	got, err := Calculate(entry, Input{Quantity: dec(t, "2")})
	require.NoError(t, err)

	assert.True(t, got.BaseAmount.Equal(dec(t, "120")))
	assert.True(t, got.MinChargeAdjustment.Equal(dec(t, "20")))
	assert.True(t, got.TripSurcharge.Equal(dec(t, "50")))
	assert.True(t, got.Total.Equal(dec(t, "170")), "total = %s", got.Total)
}

func TestCalculateWaitFeeAndNightSurcharge(t *testing.T) {
	entry := &pricelistdomain.Entry{
		BasePrice:         dec(t, "40"),
		MinCharge:         decPtr(t, "500"),
		WaitFeePerHour:    decPtr(t, "25"),
		NightSurchargePct: decPtr(t, "10"),
	}

	wait := dec(t, "1.5")
	got, err := Calculate(entry, Input{Quantity: dec(t, "5"), WaitHours: &wait, IsNight: true})
	require.NoError(t, err)

	// 40 x 5 = 200, lifted to 500 by the minimum. The night surcharge is
	// computed on the lifted base, the wait fee stays additive.
	assert.True(t, got.BaseAmount.Equal(dec(t, "500")))
	assert.True(t, got.WaitFee.Equal(dec(t, "37.5")), "wait = %s", got.WaitFee)
	assert.True(t, got.NightSurcharge.Equal(dec(t, "50")), "night = %s", got.NightSurcharge)
	assert.True(t, got.Total.Equal(dec(t, "587.5")), "total = %s", got.Total)
}

func TestCalculateNightSurchargeIgnoredByDay(t *testing.T) {
	entry := &pricelistdomain.Entry{
		BasePrice:         dec(t, "40"),
		NightSurchargePct: decPtr(t, "10"),
	}

	got, err := Calculate(entry, Input{Quantity: dec(t, "5"), IsNight: false})
	require.NoError(t, err)
	assert.True(t, got.NightSurcharge.IsZero())
	assert.True(t, got.Total.Equal(dec(t, "200")))
}

func TestCalculateRejectsBadInput(t *testing.T) {
	entry := &pricelistdomain.Entry{BasePrice: dec(t, "50")}

	_, err := Calculate(entry, Input{Quantity: decimal.Zero})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidQuantity)

	_, err = Calculate(entry, Input{Quantity: dec(t, "-3")})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidQuantity)

	negWait := dec(t, "-1")
	_, err = Calculate(entry, Input{Quantity: dec(t, "3"), WaitHours: &negWait})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidWaitHours)
}

func TestCalculateRoundsToCents(t *testing.T) {
	entry := &pricelistdomain.Entry{
		BasePrice:         dec(t, "33.35"),
		NightSurchargePct: decPtr(t, "10"),
	}

	got, err := Calculate(entry, Input{Quantity: dec(t, "3.141"), IsNight: true})
	require.NoError(t, err)

	// 33.35 x 3.141 = 104.75235; each component lands on cents before the
	// sum, so no sub-cent residue reaches the total.
	assert.True(t, got.BaseAmount.Equal(dec(t, "104.75")), "base = %s", got.BaseAmount)
	assert.True(t, got.NightSurcharge.Equal(dec(t, "10.48")), "night = %s", got.NightSurcharge)
	assert.True(t, got.Total.Equal(dec(t, "115.23")), "total = %s", got.Total)
}

func TestCalculateDeterministic(t *testing.T) {
	entry := &pricelistdomain.Entry{
		ID:                snowflake.ID(7),
		BasePrice:         dec(t, "33.33"),
		MinCharge:         decPtr(t, "120"),
		TripSurcharge:     decPtr(t, "15.5"),
		WaitFeePerHour:    decPtr(t, "22.25"),
		NightSurchargePct: decPtr(t, "12.5"),
	}
	wait := dec(t, "2.75")
	in := Input{Quantity: dec(t, "3.141"), WaitHours: &wait, IsNight: true}

	first, err := Calculate(entry, in)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		again, err := Calculate(entry, in)
		require.NoError(t, err)
		require.True(t, first.Total.Equal(again.Total), "run %d drifted: %s vs %s", i, first.Total, again.Total)
		require.True(t, first.BaseAmount.Equal(again.BaseAmount))
		require.True(t, first.NightSurcharge.Equal(again.NightSurcharge))
	}
}
