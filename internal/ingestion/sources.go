package ingestion

import (
	"context"

	"options-sim-lab/internal/domain"
)

// BarSource provides raw bars from external sources.
type BarSource interface {
	// Fetch returns every bar the source holds for symbol.
	// Bars may be unordered; Manager enforces deterministic ordering.
	Fetch(ctx context.Context, symbol string) ([]*domain.Bar, error)
}
