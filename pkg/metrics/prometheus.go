package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"Manifold/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	polls       *prometheus.CounterVec
	alerts      *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg, or on the default registry when
// reg is nil.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		polls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manifold_monitor_polls_total",
				Help: "Monitor polls by symbol, horizon and result",
			},
			[]string{"symbol", "horizon", "result"},
		),
		alerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manifold_alerts_emitted_total",
				Help: "Alerts emitted by kind and level",
			},
			[]string{"kind", "level"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manifold_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "manifold_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "manifold_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPoll counts one monitor poll outcome.
func (r *Recorder) RecordPoll(symbol string, horizon models.Horizon, result string) {
	r.polls.WithLabelValues(symbol, string(horizon), result).Inc()
}

// RecordAlert counts one emitted alert.
func (r *Recorder) RecordAlert(kind models.AlertKind, level models.AlertLevel) {
	r.alerts.WithLabelValues(string(kind), string(level)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
