// Package metrics exposes Prometheus collectors for the HTTP layer and the battle domain.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
)

const namespace = "pokemon_battle"

// SummaryFunc returns the current battle summary; the service's GetSummary fits.
type SummaryFunc func(ctx context.Context) (model.BattleSummary, error)

// Metrics owns a private registry so tests and multiple servers never collide.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the HTTP collectors plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
	}
	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterBattleSummary exports battle counts per result, read at scrape time.
func (m *Metrics) RegisterBattleSummary(summary SummaryFunc) {
	m.Registry.MustRegister(&battleCollector{summary: summary, desc: prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "battles", "total"),
		"Number of stored battles by result.",
		[]string{"result"}, nil,
	)})
}

// Middleware records request counts and latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

type battleCollector struct {
	summary SummaryFunc
	desc    *prometheus.Desc
}

func (b *battleCollector) Describe(ch chan<- *prometheus.Desc) { ch <- b.desc }

func (b *battleCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := b.summary(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(b.desc, err)
		return
	}
	for result, n := range map[model.BattleResult]int{
		model.BattleInProgress: s.InProgressBattles,
		model.BattleCompleted:  s.CompletedBattles,
		model.BattleDraw:       s.DrawBattles,
		model.BattleCancelled:  s.CancelledBattles,
	} {
		ch <- prometheus.MustNewConstMetric(b.desc, prometheus.GaugeValue, float64(n), string(result))
	}
}
