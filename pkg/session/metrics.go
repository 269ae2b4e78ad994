package session

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for frame and write metrics.
const (
	frameBinary = "binary"
	frameText   = "text"

	writeAck       = "ack"
	writeKeepalive = "keepalive"
)

// MetricsConfig configures session metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "webcast").
	Namespace string

	// Subsystem is the metrics subsystem (default: "session").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for decode duration.
	// Default: exponential from 10µs to ~40ms.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures session metrics.
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

// WithBuckets sets the decode duration histogram buckets.
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "webcast",
		Subsystem: "session",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors shared by sessions.
// A nil *Metrics records nothing.
type Metrics struct {
	framesTotal     *prometheus.CounterVec
	decodeDuration  prometheus.Histogram
	decodeFailures  prometheus.Counter
	payloadsTotal   prometheus.Counter
	payloadBytes    prometheus.Counter
	acksSent        prometheus.Counter
	keepalivesSent  prometheus.Counter
	writeErrors     *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	sessionsStarted prometheus.Counter
}

// NewMetrics creates and registers session metrics.
//
// Metrics collected:
//   - webcast_session_frames_total: Counter of inbound frames by type
//   - webcast_session_decode_duration_seconds: Histogram of decode time
//   - webcast_session_decode_failures_total: Counter of undecodable frames
//   - webcast_session_payloads_total: Counter of published payloads
//   - webcast_session_payload_bytes_total: Counter of published payload bytes
//   - webcast_session_acks_sent_total: Counter of acks written
//   - webcast_session_keepalives_sent_total: Counter of keepalives written
//   - webcast_session_write_errors_total: Counter of failed writes by kind
//   - webcast_session_active: Gauge of sessions not yet closed
//   - webcast_session_started_total: Counter of sessions created
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_total",
			Help:        "Total number of inbound frames by WebSocket message type; text frames are ignored and counted for diagnostics only",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		decodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decode_duration_seconds",
			Help:        "Container decode duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		decodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decode_failures_total",
			Help:        "Total number of binary frames that failed to decode",
			ConstLabels: config.ConstLabels,
		}),

		payloadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "payloads_total",
			Help:        "Total number of application payloads published",
			ConstLabels: config.ConstLabels,
		}),

		payloadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "payload_bytes_total",
			Help:        "Total bytes of application payloads published",
			ConstLabels: config.ConstLabels,
		}),

		acksSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "acks_sent_total",
			Help:        "Total number of acks written",
			ConstLabels: config.ConstLabels,
		}),

		keepalivesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "keepalives_sent_total",
			Help:        "Total number of keepalive frames written",
			ConstLabels: config.ConstLabels,
		}),

		writeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "write_errors_total",
			Help:        "Total failed writes by frame kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active",
			Help:        "Number of sessions that have not closed",
			ConstLabels: config.ConstLabels,
		}),

		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "started_total",
			Help:        "Total number of sessions created",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) frameReceived(kind string) {
	if m != nil {
		m.framesTotal.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) observeDecode(d time.Duration) {
	if m != nil {
		m.decodeDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) decodeFailed() {
	if m != nil {
		m.decodeFailures.Inc()
	}
}

func (m *Metrics) payloadReceived(size int) {
	if m != nil {
		m.payloadsTotal.Inc()
		m.payloadBytes.Add(float64(size))
	}
}

func (m *Metrics) ackSent() {
	if m != nil {
		m.acksSent.Inc()
	}
}

func (m *Metrics) keepaliveSent() {
	if m != nil {
		m.keepalivesSent.Inc()
	}
}

func (m *Metrics) writeFailed(kind string) {
	if m != nil {
		m.writeErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) sessionStarted() {
	if m != nil {
		m.sessionsStarted.Inc()
		m.activeSessions.Inc()
	}
}

func (m *Metrics) sessionClosed() {
	if m != nil {
		m.activeSessions.Dec()
	}
}
