// Package metrics provides Prometheus metrics for the pong server.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tick durations are sub-millisecond in practice.
var defaultTickBuckets = []float64{0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01}

// Manager owns every Prometheus collector the server exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// Simulation
	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	scores       *prometheus.CounterVec
	paddleHits   *prometheus.CounterVec
	wallBounces  prometheus.Counter

	// Sessions and clients
	activeSessions   prometheus.Gauge
	websocketClients prometheus.Gauge
	httpRequests     *prometheus.CounterVec
}

var (
	globalManager *Manager
	globalMu      sync.RWMutex
)

func init() {
	globalManager = NewManager()
}

// NewManager creates a metrics manager registered on its own registry unless
// WithPrometheusRegistry says otherwise.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pongo",
		subsystem:        "game",
		histogramBuckets: defaultTickBuckets,
		enabled:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.ticks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ticks_total",
		Help:      "Total number of simulation ticks across all sessions",
	})

	m.tickDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_duration_seconds",
		Help:      "Time spent advancing one session by one tick",
		Buckets:   m.histogramBuckets,
	})

	m.scores = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_total",
		Help:      "Points scored, by side",
	}, []string{"side"})

	m.paddleHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "paddle_hits_total",
		Help:      "Ball returns, by paddle side",
	}, []string{"side"})

	m.wallBounces = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "wall_bounces_total",
		Help:      "Ball bounces off the top and bottom walls",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Sessions currently running",
	})

	m.websocketClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "websocket_clients",
		Help:      "Websocket subscribers currently attached",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
}

// ObserveTick counts one tick and records how long it took.
func (m *Manager) ObserveTick(d time.Duration) {
	if !m.enabled {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
}

func (m *Manager) RecordScore(side string) {
	if m.enabled {
		m.scores.WithLabelValues(side).Inc()
	}
}

func (m *Manager) RecordPaddleHit(side string) {
	if m.enabled {
		m.paddleHits.WithLabelValues(side).Inc()
	}
}

func (m *Manager) RecordWallBounce() {
	if m.enabled {
		m.wallBounces.Inc()
	}
}

func (m *Manager) SessionStarted() {
	if m.enabled {
		m.activeSessions.Inc()
	}
}

func (m *Manager) SessionStopped() {
	if m.enabled {
		m.activeSessions.Dec()
	}
}

func (m *Manager) ClientConnected() {
	if m.enabled {
		m.websocketClients.Inc()
	}
}

func (m *Manager) ClientDisconnected() {
	if m.enabled {
		m.websocketClients.Dec()
	}
}

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// Registry returns the registry the collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the manager's registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetGlobal replaces the manager behind the package-level helpers.
func SetGlobal(m *Manager) {
	if m == nil {
		return
	}
	globalMu.Lock()
	globalManager = m
	globalMu.Unlock()
}

// Global returns the manager behind the package-level helpers.
func Global() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// Package-level helpers record on the global manager.

func ObserveTick(d time.Duration)       { Global().ObserveTick(d) }
func RecordScore(side string)           { Global().RecordScore(side) }
func RecordPaddleHit(side string)       { Global().RecordPaddleHit(side) }
func RecordWallBounce()                 { Global().RecordWallBounce() }
func SessionStarted()                   { Global().SessionStarted() }
func SessionStopped()                   { Global().SessionStopped() }
func ClientConnected()                  { Global().ClientConnected() }
func ClientDisconnected()               { Global().ClientDisconnected() }
func RecordHTTPRequest(e, m, s string)  { Global().RecordHTTPRequest(e, m, s) }
func GetRegistry() *prometheus.Registry { return Global().Registry() }
