package replay

import (
	"errors"
	"fmt"
	"sort"

	"options-sim-lab/internal/domain"
)

// ErrInvalidOrdering is returned when bars are not strictly chronological.
var ErrInvalidOrdering = errors.New("bars out of order")

// SortBars orders bars by (date ASC, symbol ASC).
// Symbol is the tie-breaker so mixed-symbol slices sort deterministically.
func SortBars(bars []*domain.Bar) {
	sort.SliceStable(bars, func(i, j int) bool {
		return compareBars(bars[i], bars[j]) < 0
	})
}

// ValidateOrder checks that bars are strictly increasing by date.
// Equal dates are rejected: one symbol cannot have two bars for the same instant.
func ValidateOrder(bars []*domain.Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return fmt.Errorf("%w: bar %d (%s) does not follow %s", ErrInvalidOrdering,
				i, bars[i].Date.Format("2006-01-02 15:04"), bars[i-1].Date.Format("2006-01-02 15:04"))
		}
	}
	return nil
}

// compareBars returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (date ASC, symbol ASC)
func compareBars(a, b *domain.Bar) int {
	if !a.Date.Equal(b.Date) {
		if a.Date.Before(b.Date) {
			return -1
		}
		return 1
	}
	if a.Symbol != b.Symbol {
		if a.Symbol < b.Symbol {
			return -1
		}
		return 1
	}
	return 0
}
