// Package metrics exposes prometheus counters for the API server and
// contract calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "abistudio"

// Call outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors. Each instance owns its registry so several
// servers (and tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry
	logger   *zap.Logger

	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	contractCalls   *prometheus.CounterVec
	callDuration    *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		logger:   logger,
		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"method", "path"},
		),
		contractCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "contract",
				Name:      "calls_total",
				Help:      "Contract function calls by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		callDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "contract",
				Name:      "call_duration_seconds",
				Help:      "Contract call latency; write calls include the wait for mining",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"kind"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCall records one contract call. kind is "read" or "write".
func (m *Metrics) ObserveCall(kind string, started time.Time, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.contractCalls.WithLabelValues(kind, outcome).Inc()
	m.callDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// Middleware counts requests by route template, not raw path, to keep label
// cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		m.requestCounter.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(duration.Seconds())

		m.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
	}
}
