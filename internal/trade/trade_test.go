package trade

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-sim-lab/internal/domain"
)

var (
	day0   = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expiry = day0.AddDate(0, 0, 30)
)

func longCall(t *testing.T) *Trade {
	t.Helper()
	tr, err := NewSimple("long_call-1", "long_call", "SPY", NewOptionLeg(domain.OptionCall, 100, 1, expiry), 100)
	require.NoError(t, err)
	return tr
}

func shortStrangle(t *testing.T) *Trade {
	t.Helper()
	tr, err := NewMultiLeg("short_strangle-1", "short_strangle", "SPY", []Leg{
		NewOptionLeg(domain.OptionCall, 110, -5, expiry),
		NewOptionLeg(domain.OptionPut, 90, -5, expiry),
	}, 100)
	require.NoError(t, err)
	return tr
}

func TestNewSimple_Direction(t *testing.T) {
	tr := longCall(t)
	assert.Equal(t, KindSimple, tr.Kind())
	assert.Equal(t, DirectionLong, tr.Direction())
	assert.Equal(t, StatusPending, tr.Status())

	short, err := NewSimple("f-1", "futures", "ES", NewFutureLeg(-2, expiry), 50)
	require.NoError(t, err)
	assert.Equal(t, DirectionShort, short.Direction())
}

func TestConstructor_Validation(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*Trade, error)
		want error
	}{
		{"zero quantity", func() (*Trade, error) {
			return NewSimple("x-1", "x", "SPY", NewOptionLeg(domain.OptionCall, 100, 0, expiry), 100)
		}, ErrInvalidLeg},
		{"missing strike", func() (*Trade, error) {
			return NewSimple("x-1", "x", "SPY", NewOptionLeg(domain.OptionPut, 0, 1, expiry), 100)
		}, ErrInvalidLeg},
		{"unknown type", func() (*Trade, error) {
			return NewSimple("x-1", "x", "SPY", Leg{Type: "straddle", Strike: 100, Quantity: 1, Expiry: expiry}, 100)
		}, ErrInvalidLeg},
		{"missing expiry", func() (*Trade, error) {
			return NewSimple("x-1", "x", "SPY", NewOptionLeg(domain.OptionCall, 100, 1, time.Time{}), 100)
		}, ErrInvalidLeg},
		{"single leg multi", func() (*Trade, error) {
			return NewMultiLeg("x-1", "x", "SPY", []Leg{NewOptionLeg(domain.OptionCall, 100, 1, expiry)}, 100)
		}, ErrInvalidTrade},
		{"empty id", func() (*Trade, error) {
			return NewSimple("", "x", "SPY", NewOptionLeg(domain.OptionCall, 100, 1, expiry), 100)
		}, ErrInvalidTrade},
		{"zero multiplier", func() (*Trade, error) {
			return NewSimple("x-1", "x", "SPY", NewOptionLeg(domain.OptionCall, 100, 1, expiry), 0)
		}, ErrInvalidTrade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLongCall_Lifecycle(t *testing.T) {
	tr := longCall(t)

	require.NoError(t, tr.Open(day0, []float64{2.5}, 1.0))
	assert.True(t, tr.IsOpen())
	assert.InDelta(t, 250, tr.EntryCost(), 1e-9)
	assert.False(t, tr.IsCredit())

	require.NoError(t, tr.MarkToMarket([]float64{4.0}))
	assert.InDelta(t, 400, tr.MarketValue(), 1e-9)
	assert.InDelta(t, 400-250-1, tr.UnrealizedPnL(), 1e-9)

	// Settled at intrinsic: spot 110, strike 100
	leg := tr.Legs()[0]
	require.NoError(t, tr.Close(expiry, []float64{leg.Intrinsic(110)}, 1.0, domain.ExitReasonExpiration))

	assert.True(t, tr.IsClosed())
	assert.InDelta(t, (110-100)*100-2.5*100-1-1, tr.RealizedPnL(), 1e-9)
	assert.Equal(t, 0.0, tr.UnrealizedPnL())
	assert.Equal(t, LegExpired, tr.Legs()[0].Status)
	assert.Equal(t, 30, tr.DaysHeld(expiry.AddDate(0, 0, 10)))
}

func TestShortStrangle_CreditAndWorthlessExpiry(t *testing.T) {
	tr := shortStrangle(t)

	require.NoError(t, tr.Open(day0, []float64{1.0, 0.8}, 7.0))
	assert.InDelta(t, -900, tr.EntryCost(), 1e-9)
	assert.True(t, tr.IsCredit())

	require.NoError(t, tr.Close(expiry, []float64{0, 0}, 7.0, domain.ExitReasonExpiration))
	assert.InDelta(t, 900-14, tr.RealizedPnL(), 1e-9)
	for _, l := range tr.Legs() {
		assert.Equal(t, LegExpired, l.Status)
	}
}

func TestClose_BeforeExpiryMarksLegsClosed(t *testing.T) {
	tr := shortStrangle(t)
	require.NoError(t, tr.Open(day0, []float64{1.0, 0.8}, 7.0))

	exit := day0.AddDate(0, 0, 5)
	require.NoError(t, tr.Close(exit, []float64{0.4, 0.3}, 7.0, domain.ExitReasonStrategy))
	for _, l := range tr.Legs() {
		assert.Equal(t, LegClosed, l.Status)
	}
	assert.InDelta(t, -350+900-14, tr.RealizedPnL(), 1e-9)
}

func TestClosedTrade_IsImmutable(t *testing.T) {
	tr := longCall(t)
	require.NoError(t, tr.Open(day0, []float64{2.5}, 1.0))
	require.NoError(t, tr.Close(day0.AddDate(0, 0, 3), []float64{3.0}, 1.0, domain.ExitReasonStrategy))
	realized := tr.RealizedPnL()

	assert.ErrorIs(t, tr.Close(day0.AddDate(0, 0, 4), []float64{9.0}, 1.0, domain.ExitReasonStrategy), ErrAlreadyClosed)
	assert.ErrorIs(t, tr.Open(day0, []float64{1.0}, 1.0), ErrAlreadyClosed)
	assert.NoError(t, tr.MarkToMarket([]float64{50}))

	assert.Equal(t, realized, tr.RealizedPnL())
	assert.Equal(t, 0.0, tr.UnrealizedPnL())
	assert.Equal(t, 0.0, tr.MarketValue())
}

func TestPriceValidation(t *testing.T) {
	tr := shortStrangle(t)

	assert.ErrorIs(t, tr.Open(day0, []float64{1.0}, 1), ErrPriceCount)
	assert.ErrorIs(t, tr.Open(day0, []float64{1.0, math.NaN()}, 1), ErrInvalidPrice)
	assert.ErrorIs(t, tr.MarkToMarket([]float64{1, 1}), ErrNotOpen)
	assert.Equal(t, StatusPending, tr.Status())
}

func TestLegs_ReturnsCopy(t *testing.T) {
	tr := longCall(t)
	legs := tr.Legs()
	legs[0].Quantity = 99
	assert.Equal(t, 1, tr.Legs()[0].Quantity)
}

func TestLeg_Helpers(t *testing.T) {
	call := NewOptionLeg(domain.OptionCall, 105, -3, expiry)
	assert.True(t, call.IsShort())
	assert.Equal(t, 3, call.Contracts())
	assert.InDelta(t, -3*2.0*100, call.Value(2.0, 100), 1e-9)
	assert.InDelta(t, 0.05, call.Moneyness(100), 1e-12)
	assert.Equal(t, 30, call.DTE(day0))
	assert.Equal(t, 0, call.DTE(expiry.AddDate(0, 0, 2)))
	assert.False(t, call.ExpiredOn(expiry.AddDate(0, 0, -1)))
	assert.True(t, call.ExpiredOn(expiry.Add(15*time.Hour)))

	put := NewOptionLeg(domain.OptionPut, 100, 1, expiry)
	assert.Equal(t, 10.0, put.Intrinsic(90))
	assert.Equal(t, 0.0, put.Intrinsic(110))

	fut := NewFutureLeg(1, expiry)
	assert.Equal(t, 4500.0, fut.Intrinsic(4500))
	assert.Equal(t, 0.0, fut.Moneyness(4500))
}

func TestRecord(t *testing.T) {
	tr := shortStrangle(t)
	require.NoError(t, tr.Open(day0, []float64{1.0, 0.8}, 7.0))
	require.NoError(t, tr.Close(expiry, []float64{0, 0.5}, 7.0, domain.ExitReasonExpiration))

	rec := tr.Record("run-abc")
	assert.Equal(t, "short_strangle-1", rec.TradeID)
	assert.Equal(t, "run-abc", rec.RunID)
	assert.Equal(t, "multi_leg", rec.Kind)
	assert.Len(t, rec.Legs, 2)
	assert.Equal(t, -5, rec.Legs[1].Quantity)
	assert.Equal(t, 0.5, rec.Legs[1].ExitPrice)
	assert.Equal(t, 30, rec.HoldDays)
	assert.Equal(t, tr.RealizedPnL(), rec.RealizedPnL)
}
