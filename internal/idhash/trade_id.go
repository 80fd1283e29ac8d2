package idhash

import "fmt"

// TradeIDGenerator issues trade ids of the form "<profile>-<n>".
// The counter is per generator, so parallel simulators never share state.
// Not safe for concurrent use.
type TradeIDGenerator struct {
	next int64
}

// NewTradeIDGenerator creates a generator starting at 1.
func NewTradeIDGenerator() *TradeIDGenerator {
	return &TradeIDGenerator{next: 1}
}

// Next returns the next id for profileName. Ids are strictly increasing
// across all profiles served by this generator.
func (g *TradeIDGenerator) Next(profileName string) string {
	id := fmt.Sprintf("%s-%d", profileName, g.next)
	g.next++
	return id
}

// Issued returns how many ids have been handed out.
func (g *TradeIDGenerator) Issued() int64 {
	return g.next - 1
}
