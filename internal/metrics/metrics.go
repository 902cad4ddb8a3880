// Package metrics exposes Prometheus collectors for the driver.
//
// Every method is safe to call on a nil *Metrics, so components hold an
// optional pointer and record unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace prefixes every metric name (default: "scenic_driver").
	Namespace string

	// Buckets are the render duration histogram buckets in seconds.
	Buckets []float64

	// Registry receives the collectors (default: a fresh registry).
	Registry *prometheus.Registry
}

// Option configures New.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(ns string) Option {
	return func(c *Config) { c.Namespace = ns }
}

// WithBuckets sets the render duration buckets.
func WithBuckets(b []float64) Option {
	return func(c *Config) { c.Buckets = b }
}

// WithRegistry sets the registry the collectors register with.
func WithRegistry(r *prometheus.Registry) Option {
	return func(c *Config) { c.Registry = r }
}

// Metrics holds the driver's collectors.
type Metrics struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	unknownCommands prometheus.Counter
	decodeErrors    *prometheus.CounterVec
	scriptErrors    *prometheus.CounterVec
	events          *prometheus.CounterVec
	renderDuration  prometheus.Histogram
	queueDepth      prometheus.Gauge
	scripts         prometheus.Gauge
	textures        prometheus.Gauge
}

// New registers the collectors and returns them.
func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: "scenic_driver",
		// 100µs to ~200ms; a frame at 60Hz is 16.7ms.
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		registry: cfg.Registry,

		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "commands_total",
			Help:      "Inbound commands dispatched, by command name.",
		}, []string{"command"}),

		unknownCommands: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "unknown_commands_total",
			Help:      "Inbound frames with an unrecognised opcode.",
		}),

		decodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "decode_errors_total",
			Help:      "Malformed or truncated operands, by where they were found.",
		}, []string{"scope"}),

		scriptErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "script_errors_total",
			Help:      "Script invocations that ended abnormally, by reason.",
		}, []string{"reason"}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "events_total",
			Help:      "Outbound events written, by kind.",
		}, []string{"kind"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of one render pass of the root script.",
			Buckets:   cfg.Buckets,
		}),

		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "queue_depth",
			Help:      "Inbound frames waiting to be dispatched.",
		}),

		scripts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "scripts",
			Help:      "Scripts currently stored.",
		}),

		textures: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "textures",
			Help:      "Textures currently cached.",
		}),
	}
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Command counts one dispatched command.
func (m *Metrics) Command(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

// UnknownCommand counts one frame with an unrecognised opcode.
func (m *Metrics) UnknownCommand() {
	if m == nil {
		return
	}
	m.unknownCommands.Inc()
}

// DecodeError counts one decode failure. scope is "command" or "script".
func (m *Metrics) DecodeError(scope string) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(scope).Inc()
}

// ScriptError counts one abnormal script invocation.
func (m *Metrics) ScriptError(reason string) {
	if m == nil {
		return
	}
	m.scriptErrors.WithLabelValues(reason).Inc()
}

// Event counts one outbound event of the named kind.
func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

// ObserveRender records the duration of a render pass.
func (m *Metrics) ObserveRender(d time.Duration) {
	if m == nil {
		return
	}
	m.renderDuration.Observe(d.Seconds())
}

// SetQueueDepth records the number of queued inbound frames.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// SetResources records the store sizes.
func (m *Metrics) SetResources(scripts, textures int) {
	if m == nil {
		return
	}
	m.scripts.Set(float64(scripts))
	m.textures.Set(float64(textures))
}
