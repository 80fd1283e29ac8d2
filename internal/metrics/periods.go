package metrics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"options-sim-lab/internal/domain"
)

// ErrUnknownPeriod is returned for an unsupported period granularity.
var ErrUnknownPeriod = errors.New("unknown period granularity")

// RealizedByPeriod buckets realized P&L by the period containing each trade's exit date.
// Weeks start on Monday. Periods are returned in chronological order; periods
// without exits are omitted.
func RealizedByPeriod(trades []*domain.TradeRecord, granularity string) ([]domain.PeriodPnL, error) {
	byStart := make(map[time.Time]*domain.PeriodPnL)

	for _, t := range trades {
		start, err := periodStart(t.ExitDate, granularity)
		if err != nil {
			return nil, err
		}
		p, ok := byStart[start]
		if !ok {
			p = &domain.PeriodPnL{Granularity: granularity, Start: start}
			byStart[start] = p
		}
		p.Realized += t.RealizedPnL
		p.Trades++
	}

	periods := make([]domain.PeriodPnL, 0, len(byStart))
	for _, p := range byStart {
		periods = append(periods, *p)
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})
	return periods, nil
}

// WorstPeriod returns the period with the lowest realized P&L.
// The second result is false when periods is empty.
func WorstPeriod(periods []domain.PeriodPnL) (domain.PeriodPnL, bool) {
	if len(periods) == 0 {
		return domain.PeriodPnL{}, false
	}
	worst := periods[0]
	for _, p := range periods[1:] {
		if p.Realized < worst.Realized {
			worst = p
		}
	}
	return worst, true
}

func periodStart(ts time.Time, granularity string) (time.Time, error) {
	y, m, d := ts.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, ts.Location())

	switch granularity {
	case domain.PeriodDaily:
		return day, nil
	case domain.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset), nil
	case domain.PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, ts.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, granularity)
	}
}
