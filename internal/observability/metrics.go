// Package observability provides Prometheus metrics, structured logging
// and tracing for simulator runs.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"options-sim-lab/internal/simulation"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "options_sim"

// SimMetrics holds the simulator metrics. It implements simulation.Recorder,
// so one instance can be shared by concurrent simulators.
type SimMetrics struct {
	// Simulator metrics
	BarsProcessed  prometheus.Counter
	OrdersQueued   prometheus.Counter
	OrdersFilled   prometheus.Counter
	OrdersRejected *prometheus.CounterVec
	TradesClosed   *prometheus.CounterVec
	RealizedPnL    prometheus.Histogram
	BreakerTrips   prometheus.Counter

	// Run metrics
	RunsTotal    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	SweepWorkers prometheus.Gauge
}

// NewSimMetrics creates metrics registered with reg.
// A nil reg creates unregistered metrics, which is convenient in tests.
func NewSimMetrics(namespace string, reg prometheus.Registerer) *SimMetrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &SimMetrics{
		BarsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "bars_processed_total",
			Help:      "Total number of bars processed",
		}),
		OrdersQueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "orders_queued_total",
			Help:      "Total number of entry orders queued for the next bar",
		}),
		OrdersFilled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "orders_filled_total",
			Help:      "Total number of entry orders filled",
		}),
		OrdersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "orders_rejected_total",
			Help:      "Total number of entry orders rejected by reason",
		}, []string{"reason"}),
		TradesClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "trades_closed_total",
			Help:      "Total number of trades closed by exit reason",
		}, []string{"reason"}),
		RealizedPnL: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "trade_realized_pnl",
			Help:      "Realized P&L per closed trade in account currency",
			Buckets:   []float64{-10000, -2500, -1000, -250, 0, 250, 1000, 2500, 10000},
		}),
		BreakerTrips: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of daily-loss circuit breaker trips",
		}),

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of backtest runs by status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "run_duration_seconds",
			Help:      "Backtest run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		SweepWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "sweep_workers",
			Help:      "Number of sweep simulators currently running",
		}),
	}
}

var _ simulation.Recorder = (*SimMetrics)(nil)

// BarProcessed increments the bars processed counter.
func (m *SimMetrics) BarProcessed() { m.BarsProcessed.Inc() }

// OrderQueued increments the queued orders counter.
func (m *SimMetrics) OrderQueued() { m.OrdersQueued.Inc() }

// OrderFilled increments the filled orders counter.
func (m *SimMetrics) OrderFilled() { m.OrdersFilled.Inc() }

// OrderRejected records a rejection with its reason.
func (m *SimMetrics) OrderRejected(reason string) {
	m.OrdersRejected.WithLabelValues(reason).Inc()
}

// TradeClosed records a closed trade with its exit reason and realized P&L.
func (m *SimMetrics) TradeClosed(reason string, realizedPnL float64) {
	m.TradesClosed.WithLabelValues(reason).Inc()
	m.RealizedPnL.Observe(realizedPnL)
}

// BreakerTripped increments the circuit breaker trips counter.
func (m *SimMetrics) BreakerTripped() { m.BreakerTrips.Inc() }

// RecordRun records a finished backtest run.
func (m *SimMetrics) RecordRun(status string, durationSeconds float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(durationSeconds)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
