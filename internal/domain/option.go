package domain

import "math"

// OptionType identifies the payoff of a leg.
type OptionType string

// Option type constants. OptionNone marks a futures leg.
const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
	OptionNone OptionType = ""
)

// Valid reports whether t is a known option type.
func (t OptionType) Valid() bool {
	return t == OptionCall || t == OptionPut || t == OptionNone
}

// IntrinsicValue returns the exercise value of one unit at the given spot.
// A futures leg settles at spot.
func IntrinsicValue(t OptionType, spot, strike float64) float64 {
	switch t {
	case OptionCall:
		return math.Max(0, spot-strike)
	case OptionPut:
		return math.Max(0, strike-spot)
	default:
		return spot
	}
}
