package pricing

import (
	"math"

	"options-sim-lab/internal/domain"
)

// BlackScholes prices European options without dividends.
// Futures legs are valued at spot with no carry.
type BlackScholes struct{}

// NewBlackScholes creates a Black-Scholes oracle.
func NewBlackScholes() *BlackScholes {
	return &BlackScholes{}
}

// Compile-time interface check.
var _ Oracle = (*BlackScholes)(nil)

// Price returns the theoretical value of one unit.
// At or past expiry, or with no volatility, the value is intrinsic.
func (bs *BlackScholes) Price(in Input) float64 {
	if in.Type == domain.OptionNone {
		return in.Spot
	}
	if in.TimeToExpiry <= 0 || in.Volatility <= 0 || in.Strike <= 0 || in.Spot <= 0 {
		return domain.IntrinsicValue(in.Type, in.Spot, in.Strike)
	}

	d1, d2 := dTerms(in)
	discount := math.Exp(-in.RiskFreeRate * in.TimeToExpiry)

	// Far out of the money the two terms cancel to within rounding and can
	// dip just below zero.
	switch in.Type {
	case domain.OptionCall:
		return math.Max(0, in.Spot*normCDF(d1)-in.Strike*discount*normCDF(d2))
	case domain.OptionPut:
		return math.Max(0, in.Strike*discount*normCDF(-d2)-in.Spot*normCDF(-d1))
	}
	return 0
}

// Greeks returns sensitivities of one unit.
func (bs *BlackScholes) Greeks(in Input) Greeks {
	if in.Type == domain.OptionNone {
		return Greeks{Delta: 1}
	}
	if in.TimeToExpiry <= 0 || in.Volatility <= 0 || in.Strike <= 0 || in.Spot <= 0 {
		return Greeks{Delta: expiryDelta(in)}
	}

	d1, d2 := dTerms(in)
	sqrtT := math.Sqrt(in.TimeToExpiry)
	discount := math.Exp(-in.RiskFreeRate * in.TimeToExpiry)
	pdf := normPDF(d1)

	g := Greeks{
		Gamma: pdf / (in.Spot * in.Volatility * sqrtT),
		Vega:  in.Spot * pdf * sqrtT / 100,
	}
	decay := -(in.Spot * pdf * in.Volatility) / (2 * sqrtT)

	switch in.Type {
	case domain.OptionCall:
		g.Delta = normCDF(d1)
		g.Theta = decay - in.RiskFreeRate*in.Strike*discount*normCDF(d2)
	case domain.OptionPut:
		g.Delta = normCDF(d1) - 1
		g.Theta = decay + in.RiskFreeRate*in.Strike*discount*normCDF(-d2)
	}
	return g
}

func dTerms(in Input) (float64, float64) {
	sqrtT := math.Sqrt(in.TimeToExpiry)
	d1 := (math.Log(in.Spot/in.Strike) + (in.RiskFreeRate+0.5*in.Volatility*in.Volatility)*in.TimeToExpiry) /
		(in.Volatility * sqrtT)
	return d1, d1 - in.Volatility*sqrtT
}

func expiryDelta(in Input) float64 {
	switch in.Type {
	case domain.OptionCall:
		if in.Spot > in.Strike {
			return 1
		}
	case domain.OptionPut:
		if in.Spot < in.Strike {
			return -1
		}
	}
	return 0
}

// normCDF uses Erfc so the lower tail keeps its precision.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
