// Package observability holds the Prometheus instruments of the globe engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aetheria"

// Metrics holds the counters, gauges and histograms of the render engine.
type Metrics struct {
	FramesRendered   prometheus.Counter
	FrameFailures    prometheus.Counter
	FrameDuration    prometheus.Histogram
	ActiveLoops      prometheus.Gauge
	Transitions      prometheus.Counter
	ConditionChanges prometheus.Counter

	ResourcesCreated  *prometheus.CounterVec // labels: kind={geometry,material,texture}
	ResourcesDisposed *prometheus.CounterVec // labels: kind={geometry,material,texture}
	TextureLoads      *prometheus.CounterVec // labels: outcome={loaded,failed}
	WeatherFetches    *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates the instruments and registers them with reg. Pass
// prometheus.DefaultRegisterer in the application and a fresh registry in
// tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.FramesRendered,
		m.FrameFailures,
		m.FrameDuration,
		m.ActiveLoops,
		m.Transitions,
		m.ConditionChanges,
		m.ResourcesCreated,
		m.ResourcesDisposed,
		m.TextureLoads,
		m.WeatherFetches,
	)
	return m
}

// NewMetricsForTesting creates metrics on a private registry.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func newMetrics() *Metrics {
	return &Metrics{
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Frames drawn by the globe loop.",
		}),
		FrameFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_failures_total",
			Help:      "Frames that faulted and stopped the globe loop.",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "CPU time spent inside one globe frame.",
			Buckets:   []float64{0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066},
		}),
		ActiveLoops: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_loops",
			Help:      "Frame loops currently scheduled.",
		}),
		Transitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Camera choreographies started.",
		}),
		ConditionChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "condition_changes_total",
			Help:      "Weather effects swapped.",
		}),
		ResourcesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_created_total",
			Help:      "GPU-backed resources created by kind.",
		}, []string{"kind"}),
		ResourcesDisposed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_disposed_total",
			Help:      "GPU-backed resources released by kind.",
		}, []string{"kind"}),
		TextureLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "texture_loads_total",
			Help:      "Texture load attempts by outcome.",
		}, []string{"outcome"}),
		WeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_fetches_total",
			Help:      "Weather source lookups by outcome.",
		}, []string{"outcome"}),
	}
}

// ResourceCreated implements scene.Observer.
func (m *Metrics) ResourceCreated(kind string) {
	m.ResourcesCreated.WithLabelValues(kind).Inc()
}

// ResourceDisposed implements scene.Observer.
func (m *Metrics) ResourceDisposed(kind string) {
	m.ResourcesDisposed.WithLabelValues(kind).Inc()
}

// TextureLoaded records a texture load outcome.
func (m *Metrics) TextureLoaded(ok bool) {
	if ok {
		m.TextureLoads.WithLabelValues("loaded").Inc()
		return
	}
	m.TextureLoads.WithLabelValues("failed").Inc()
}

// WeatherFetched records a weather source lookup outcome.
func (m *Metrics) WeatherFetched(err error) {
	if err != nil {
		m.WeatherFetches.WithLabelValues("error").Inc()
		return
	}
	m.WeatherFetches.WithLabelValues("success").Inc()
}
