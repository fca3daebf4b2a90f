package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// several servers (or tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Render metrics
	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	RenderErrors   *prometheus.CounterVec
	MetaInjected   prometheus.Counter
	RenderedBytes  prometheus.Histogram

	// Browser session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seo_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seo_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seo_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seo_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		RendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seo_renders_total",
				Help: "Total number of render operations by outcome",
			},
			[]string{"status"},
		),
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seo_render_duration_seconds",
				Help:    "Render operation duration in seconds",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 90},
			},
			[]string{"status"},
		),
		RenderErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seo_render_errors_total",
				Help: "Total number of failed renders by failing stage",
			},
			[]string{"stage"},
		),
		MetaInjected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "seo_meta_tags_injected_total",
				Help: "Total number of meta tags injected into rendered documents",
			},
		),
		RenderedBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seo_rendered_document_bytes",
				Help:    "Size of rendered HTML documents in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "seo_browser_sessions_active",
				Help: "Number of open headless browser sessions",
			},
		),
		SessionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "seo_browser_sessions_total",
				Help: "Total number of headless browser sessions launched",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "seo_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordRender records a successful render.
func (m *Metrics) RecordRender(duration time.Duration, htmlBytes, injected int) {
	m.RendersTotal.WithLabelValues("success").Inc()
	m.RenderDuration.WithLabelValues("success").Observe(duration.Seconds())
	m.RenderedBytes.Observe(float64(htmlBytes))
	m.MetaInjected.Add(float64(injected))
}

// RecordRenderError records a failed render and the stage it failed in.
func (m *Metrics) RecordRenderError(stage string, duration time.Duration) {
	m.RendersTotal.WithLabelValues("error").Inc()
	m.RenderDuration.WithLabelValues("error").Observe(duration.Seconds())
	m.RenderErrors.WithLabelValues(stage).Inc()
}

// SessionOpened tracks a newly launched browser session
func (m *Metrics) SessionOpened() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// SessionClosed tracks a browser session being released
func (m *Metrics) SessionClosed() {
	m.SessionsActive.Dec()
}
