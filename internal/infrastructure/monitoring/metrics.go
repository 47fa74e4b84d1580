package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
// Each instance owns its registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Window metrics
	WindowsOpen     prometheus.Gauge
	WindowsLaunched prometheus.Counter
	WindowCommands  *prometheus.CounterVec

	// Integration metrics
	IntegrationCalls    *prometheus.CounterVec
	IntegrationDuration *prometheus.HistogramVec

	// Bridge metrics
	BridgeMessages *prometheus.CounterVec
	BridgeDropped  *prometheus.CounterVec

	// Session metrics
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter

	// Registry metrics
	RegistryApps prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge

	Uptime    prometheus.GaugeFunc
	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON API.
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	OpenWindows       int64   `json:"open_windows"`
	ActiveConnections int64   `json:"active_connections"`
	BridgeMessages    int64   `json:"bridge_messages"`
	AvgLatencyMS      float64 `json:"avg_latency_ms"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
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
				Name: "shell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		WindowsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shell_windows_open",
			Help: "Number of open app windows",
		}),
		WindowsLaunched: factory.NewCounter(prometheus.CounterOpts{
			Name: "shell_windows_launched_total",
			Help: "Total number of app windows launched",
		}),
		WindowCommands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_window_commands_total",
				Help: "Window chrome commands by kind",
			},
			[]string{"command"},
		),

		IntegrationCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_integration_calls_total",
				Help: "Integration route calls by service, action and outcome",
			},
			[]string{"service", "action", "status"},
		),
		IntegrationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_integration_duration_seconds",
				Help:    "Integration call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "action"},
		),

		BridgeMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_bridge_messages_total",
				Help: "Bridge messages relayed by type and direction",
			},
			[]string{"type", "direction"},
		),
		BridgeDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_bridge_dropped_total",
				Help: "Bridge frames dropped by reason",
			},
			[]string{"reason"},
		),

		SessionsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "shell_sessions_saved_total",
			Help: "Total number of desktop sessions saved",
		}),
		SessionsRestored: factory.NewCounter(prometheus.CounterOpts{
			Name: "shell_sessions_restored_total",
			Help: "Total number of desktop sessions restored",
		}),

		RegistryApps: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shell_registry_apps",
			Help: "Number of apps in the registry",
		}),

		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shell_bridge_connections",
			Help: "Number of open bridge websocket connections",
		}),
	}

	m.Uptime = factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "shell_uptime_seconds",
		Help: "Backend uptime in seconds",
	}, func() float64 {
		return time.Since(m.startTime).Seconds()
	})

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if len(status) > 0 && status[0] >= '4' {
		m.snapshot.TotalErrors++
	}
	m.snapshot.totalDuration += duration.Seconds()
	m.mu.Unlock()
}

// SetWindowsOpen sets the open window gauge
func (m *Metrics) SetWindowsOpen(count int) {
	m.WindowsOpen.Set(float64(count))
	m.mu.Lock()
	m.snapshot.OpenWindows = int64(count)
	m.mu.Unlock()
}

// RecordLaunch records a window launch
func (m *Metrics) RecordLaunch() {
	m.WindowsLaunched.Inc()
}

// RecordWindowCommand records a window chrome command
func (m *Metrics) RecordWindowCommand(command string) {
	m.WindowCommands.WithLabelValues(command).Inc()
}

// RecordIntegrationCall records an integration route call
func (m *Metrics) RecordIntegrationCall(service, action, status string, duration time.Duration) {
	m.IntegrationCalls.WithLabelValues(service, action, status).Inc()
	m.IntegrationDuration.WithLabelValues(service, action).Observe(duration.Seconds())
}

// RecordBridgeMessage records a relayed bridge message
func (m *Metrics) RecordBridgeMessage(msgType, direction string) {
	m.BridgeMessages.WithLabelValues(msgType, direction).Inc()
	m.mu.Lock()
	m.snapshot.BridgeMessages++
	m.mu.Unlock()
}

// RecordBridgeDrop records a dropped bridge frame
func (m *Metrics) RecordBridgeDrop(reason string) {
	m.BridgeDropped.WithLabelValues(reason).Inc()
}

// RecordSessionSaved records a session save
func (m *Metrics) RecordSessionSaved() {
	m.SessionsSaved.Inc()
}

// RecordSessionRestored records a session restore
func (m *Metrics) RecordSessionRestored() {
	m.SessionsRestored.Inc()
}

// SetRegistryApps sets the registry app count
func (m *Metrics) SetRegistryApps(count int) {
	m.RegistryApps.Set(float64(count))
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON metrics endpoint.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMS = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
