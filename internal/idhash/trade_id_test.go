package idhash

import (
	"testing"
)

func TestTradeIDGenerator_Sequence(t *testing.T) {
	g := NewTradeIDGenerator()

	want := []struct {
		profile string
		id      string
	}{
		{"long_call", "long_call-1"},
		{"long_call", "long_call-2"},
		{"short_strangle", "short_strangle-3"},
	}

	for _, w := range want {
		if got := g.Next(w.profile); got != w.id {
			t.Errorf("Next(%q) = %s, want %s", w.profile, got, w.id)
		}
	}

	if g.Issued() != 3 {
		t.Errorf("Issued() = %d, want 3", g.Issued())
	}
}

func TestTradeIDGenerator_Independent(t *testing.T) {
	a := NewTradeIDGenerator()
	b := NewTradeIDGenerator()

	a.Next("x")
	a.Next("x")

	if got := b.Next("x"); got != "x-1" {
		t.Errorf("second generator should start fresh, got %s", got)
	}
}
