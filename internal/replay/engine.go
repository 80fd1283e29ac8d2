package replay

import (
	"context"

	"options-sim-lab/internal/domain"
)

// ReplayEngine processes bars in deterministic order.
type ReplayEngine interface {
	// OnBar is called for each bar in order.
	// Bars are guaranteed to be strictly increasing by date.
	OnBar(ctx context.Context, bar *domain.Bar) error
}
