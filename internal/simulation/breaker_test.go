package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_StrictThreshold(t *testing.T) {
	day1 := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	tests := []struct {
		name   string
		equity float64
		halted bool
	}{
		{"no loss", 100000, false},
		{"exactly at limit", 98000, false},
		{"just past limit", 97990, true},
		{"gain", 101000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewCircuitBreaker(0.02)
			assert.True(t, b.Roll(day1, 100000))
			tripped := b.Observe(tt.equity)
			assert.Equal(t, tt.halted, tripped)
			assert.Equal(t, tt.halted, b.Halted())
		})
	}

	b := NewCircuitBreaker(0.02)
	b.Roll(day1, 100000)
	assert.True(t, b.Observe(97990))
	assert.False(t, b.Observe(90000), "a halted breaker trips once")
	assert.False(t, b.Roll(day1.Add(2*time.Hour), 97990), "same day keeps the baseline")
	assert.True(t, b.Halted())

	assert.True(t, b.Roll(day2, 97990))
	assert.False(t, b.Halted())
	assert.Equal(t, 97990.0, b.StartEquity())
	assert.Equal(t, 1, b.Trips())
}

func TestCircuitBreaker_Disabled(t *testing.T) {
	b := NewCircuitBreaker(0)
	b.Roll(time.Now(), 100000)
	assert.False(t, b.Observe(1))
	assert.False(t, b.Halted())
}

func TestCircuitBreaker_Drawdown(t *testing.T) {
	b := NewCircuitBreaker(0.02)
	assert.Equal(t, 0.0, b.Drawdown(50), "no baseline yet")
	b.Roll(time.Now(), 200)
	assert.InDelta(t, 0.25, b.Drawdown(150), 1e-12)
	assert.InDelta(t, -0.5, b.Drawdown(300), 1e-12)
}
