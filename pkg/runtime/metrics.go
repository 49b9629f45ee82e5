package runtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics for the runtime.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "weft").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the render duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "weft",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for the Weft runtime.
//
// Metrics collected:
//   - weft_renders_total: Counter of render passes
//   - weft_render_duration_seconds: Histogram of render pass duration
//   - weft_coalesced_requests_total: Counter of render requests folded into
//     an already-queued pass
//   - weft_events_total: Counter of client events by name
//   - weft_handler_panics_total: Counter of recovered handler panics
//   - weft_active_sessions: Gauge of live sessions
//   - weft_detached_sessions: Gauge of detached (resumable) sessions
type Metrics struct {
	rendersTotal      prometheus.Counter
	renderDuration    prometheus.Histogram
	coalescedRequests prometheus.Counter
	eventsTotal       *prometheus.CounterVec
	handlerPanics     prometheus.Counter
	activeSessions    prometheus.Gauge
	detachedSessions  prometheus.Gauge
}

// NewMetrics registers and returns the runtime metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		rendersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of render passes",
			ConstLabels: config.ConstLabels,
		}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		coalescedRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "coalesced_requests_total",
			Help:        "Render requests folded into an already-queued pass",
			ConstLabels: config.ConstLabels,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of client events processed",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		handlerPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handler_panics_total",
			Help:        "Total number of recovered event handler panics",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of live sessions",
			ConstLabels: config.ConstLabels,
		}),

		detachedSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "detached_sessions",
			Help:        "Number of detached (disconnected but resumable) sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordRender records a completed render pass.
func (m *Metrics) RecordRender(d time.Duration) {
	m.rendersTotal.Inc()
	m.renderDuration.Observe(d.Seconds())
}

// RecordCoalescedRequest records a render request that was absorbed by an
// already-queued pass.
func (m *Metrics) RecordCoalescedRequest() {
	m.coalescedRequests.Inc()
}

// RecordEvent records a dispatched client event.
func (m *Metrics) RecordEvent(name string) {
	m.eventsTotal.WithLabelValues(name).Inc()
}

// RecordHandlerPanic records a recovered handler panic.
func (m *Metrics) RecordHandlerPanic() {
	m.handlerPanics.Inc()
}

// RecordSessionCreate records a new session.
func (m *Metrics) RecordSessionCreate() {
	m.activeSessions.Inc()
}

// RecordSessionDestroy records a session closing.
func (m *Metrics) RecordSessionDestroy() {
	m.activeSessions.Dec()
}

// RecordSessionDetach records a session becoming detached.
func (m *Metrics) RecordSessionDetach() {
	m.activeSessions.Dec()
	m.detachedSessions.Inc()
}

// RecordSessionResume records a detached session resuming.
func (m *Metrics) RecordSessionResume() {
	m.activeSessions.Inc()
	m.detachedSessions.Dec()
}
