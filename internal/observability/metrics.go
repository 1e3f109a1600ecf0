// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Simulation metrics
	SignalsProcessed   prometheus.Counter
	TradesProduced     prometheus.Counter
	SignalsDropped     *prometheus.CounterVec
	SimulationDuration prometheus.Histogram

	// Screening metrics
	WeeksScreened   prometheus.Counter
	SignalsScreened prometheus.Counter

	// Run metrics
	RunsTotal     *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	LastRunTrades prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "volume_breakout_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SignalsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "signals_processed_total",
			Help:      "Total number of candidate signals simulated",
		}),
		TradesProduced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trades_produced_total",
			Help:      "Total number of signals that produced a closed trade",
		}),
		SignalsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "signals_dropped_total",
			Help:      "Signals that produced no trade, by reason",
		}, []string{"reason"}),
		SimulationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "Time spent simulating a single signal",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		}),

		WeeksScreened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "weeks_screened_total",
			Help:      "Total number of instrument-weeks evaluated by the screen",
		}),
		SignalsScreened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "signals_total",
			Help:      "Total number of weeks that passed the screen",
		}),

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs",
		}, []string{"phase", "status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline phase duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 15),
		}, []string{"phase"}),
		LastRunTrades: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "last_run_trades",
			Help:      "Number of trades produced by the most recent run",
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer serves /metrics on addr in the background.
// Returns the server so callers can shut it down.
func StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}

// RecordSignal records the outcome of one simulated signal.
// An empty reason means the signal produced a trade.
func (m *Metrics) RecordSignal(reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.SignalsProcessed.Inc()
	m.SimulationDuration.Observe(d.Seconds())
	if reason == "" {
		m.TradesProduced.Inc()
		return
	}
	m.SignalsDropped.WithLabelValues(reason).Inc()
}

// RecordScreen records a screening pass.
func (m *Metrics) RecordScreen(weeks, signals int) {
	if m == nil {
		return
	}
	m.WeeksScreened.Add(float64(weeks))
	m.SignalsScreened.Add(float64(signals))
}

// RecordRun records a pipeline phase.
func (m *Metrics) RecordRun(phase, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(phase, status).Inc()
	m.RunDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SetLastRunTrades updates the last run trade gauge.
func (m *Metrics) SetLastRunTrades(n int) {
	if m == nil {
		return
	}
	m.LastRunTrades.Set(float64(n))
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
