// Package strategy holds the built-in strategy profiles and the
// compile-time registry that resolves a profile id to its implementation.
package strategy

import (
	"options-sim-lab/internal/simulation"
)

// Strategy is a simulator strategy with a parameterised identifier.
type Strategy interface {
	simulation.Strategy

	// ID returns the profile identifier including parameters.
	ID() string
}
