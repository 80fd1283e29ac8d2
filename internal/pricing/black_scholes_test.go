package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"options-sim-lab/internal/domain"
)

func TestBlackScholes_KnownValues(t *testing.T) {
	bs := NewBlackScholes()

	// S=100 K=100 T=1 r=5% sigma=20%: call 10.4506, put 5.5735
	in := Input{Type: domain.OptionCall, Spot: 100, Strike: 100, TimeToExpiry: 1, RiskFreeRate: 0.05, Volatility: 0.20}
	assert.InDelta(t, 10.4506, bs.Price(in), 1e-3)

	in.Type = domain.OptionPut
	assert.InDelta(t, 5.5735, bs.Price(in), 1e-3)
}

func TestBlackScholes_PutCallParity(t *testing.T) {
	bs := NewBlackScholes()
	call := Input{Type: domain.OptionCall, Spot: 105, Strike: 100, TimeToExpiry: 0.25, RiskFreeRate: 0.04, Volatility: 0.30}
	put := call
	put.Type = domain.OptionPut

	lhs := bs.Price(call) - bs.Price(put)
	rhs := call.Spot - call.Strike*math.Exp(-call.RiskFreeRate*call.TimeToExpiry)
	assert.InDelta(t, rhs, lhs, 1e-9)
}

func TestBlackScholes_ExpiryIsIntrinsic(t *testing.T) {
	bs := NewBlackScholes()
	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{"call itm", Input{Type: domain.OptionCall, Spot: 110, Strike: 100}, 10},
		{"call otm", Input{Type: domain.OptionCall, Spot: 90, Strike: 100}, 0},
		{"put itm", Input{Type: domain.OptionPut, Spot: 90, Strike: 100}, 10},
		{"put otm", Input{Type: domain.OptionPut, Spot: 110, Strike: 100}, 0},
		{"future", Input{Type: domain.OptionNone, Spot: 4321.5, TimeToExpiry: 0.5}, 4321.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bs.Price(tt.in))
		})
	}
}

func TestBlackScholes_DeltaBounds(t *testing.T) {
	bs := NewBlackScholes()
	in := Input{Type: domain.OptionCall, Spot: 100, Strike: 100, TimeToExpiry: 30.0 / 365, RiskFreeRate: 0.04, Volatility: 0.2}

	call := bs.Greeks(in)
	assert.Greater(t, call.Delta, 0.5)
	assert.Less(t, call.Delta, 0.6)
	assert.Greater(t, call.Gamma, 0.0)

	in.Type = domain.OptionPut
	put := bs.Greeks(in)
	assert.InDelta(t, call.Delta-1, put.Delta, 1e-12)

	assert.Equal(t, 1.0, bs.Greeks(Input{Type: domain.OptionNone, Spot: 100}).Delta)
}

func TestYearsBetween(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 1.0, YearsBetween(now, now.AddDate(0, 0, 365)), 1e-12)
	assert.Equal(t, 0.0, YearsBetween(now, now.AddDate(0, 0, -1)))
}

func TestBlackScholes_FarOutOfMoneyNeverNegative(t *testing.T) {
	bs := NewBlackScholes()
	for _, typ := range []domain.OptionType{domain.OptionCall, domain.OptionPut} {
		for strike := 50.0; strike <= 150; strike++ {
			for dte := 1; dte <= 45; dte++ {
				in := Input{
					Type:         typ,
					Spot:         100,
					Strike:       strike,
					TimeToExpiry: float64(dte) / 365,
					RiskFreeRate: 0.04,
					Volatility:   0.20,
				}
				if p := bs.Price(in); p < 0 || math.IsNaN(p) {
					t.Fatalf("%v K=%.0f dte=%d priced %g", typ, strike, dte, p)
				}
			}
		}
	}
}
