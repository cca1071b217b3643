package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/ledger-es/internal/usecase"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	// Command metrics
	Commands            *prometheus.CounterVec
	CommandDuration     *prometheus.HistogramVec
	ConcurrencyConflict *prometheus.CounterVec
	EventsAppended      *prometheus.CounterVec

	// Projection metrics
	ProjectionApplied   *prometheus.CounterVec
	ProjectionErrors    *prometheus.CounterVec
	ProjectionPosition  *prometheus.GaugeVec
	ProjectionLatency   *prometheus.HistogramVec
	SubscriptionDrops   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry creates metrics registered on reg and served from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registerer: reg,
		gatherer:   g,

		// Command metrics
		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_commands_total",
				Help: "Total ledger commands by command and outcome",
			},
			[]string{"command", "outcome"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_command_duration_seconds",
				Help:    "Duration of ledger commands including replay and append",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		ConcurrencyConflict: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_concurrency_conflicts_total",
				Help: "Total appends rejected because the stream moved",
			},
			[]string{"command"},
		),
		EventsAppended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_events_appended_total",
				Help: "Total events appended to the log by command",
			},
			[]string{"command"},
		),

		// Projection metrics
		ProjectionApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_projection_events_applied_total",
				Help: "Total events committed by a projection",
			},
			[]string{"projection"},
		),
		ProjectionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_projection_errors_total",
				Help: "Total events a projection failed to apply",
			},
			[]string{"projection"},
		),
		ProjectionPosition: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ledger_projection_position",
				Help: "Last global log position committed by a projection",
			},
			[]string{"projection"},
		),
		ProjectionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_projection_apply_duration_seconds",
				Help:    "Time to apply one event and commit the projection transaction",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"projection"},
		),
		SubscriptionDrops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_subscription_drops_total",
				Help: "Total subscription drops by reason",
			},
			[]string{"projection", "reason"},
		),
		NotificationsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_notifications_failed_total",
				Help: "Total change notifications a publisher failed to deliver",
			},
			[]string{"publisher"},
		),
	}
}

// ObserveCommand implements usecase.CommandRecorder.
func (m *Metrics) ObserveCommand(command, outcome string, duration time.Duration) {
	m.Commands.WithLabelValues(command, outcome).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())

	switch outcome {
	case usecase.OutcomeOK:
		m.EventsAppended.WithLabelValues(command).Inc()
	case usecase.OutcomeConflict:
		m.ConcurrencyConflict.WithLabelValues(command).Inc()
	}
}

// ProjectionEventApplied implements projection.Observer.
func (m *Metrics) ProjectionEventApplied(projection string, position uint64, d time.Duration) {
	m.ProjectionApplied.WithLabelValues(projection).Inc()
	m.ProjectionPosition.WithLabelValues(projection).Set(float64(position))
	m.ProjectionLatency.WithLabelValues(projection).Observe(d.Seconds())
}

// ProjectionEventFailed implements projection.Observer.
func (m *Metrics) ProjectionEventFailed(projection string) {
	m.ProjectionErrors.WithLabelValues(projection).Inc()
}

// SubscriptionDropped implements projection.Observer.
func (m *Metrics) SubscriptionDropped(projection, reason string) {
	m.SubscriptionDrops.WithLabelValues(projection, reason).Inc()
}

// PublishFailed counts a failed delivery by a notification publisher.
func (m *Metrics) PublishFailed(publisher string) {
	m.NotificationsFailed.WithLabelValues(publisher).Inc()
}

// Registerer returns the registry the metrics live on, for collectors
// owned by other packages.
func (m *Metrics) Registerer() prometheus.Registerer {
	return m.registerer
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
