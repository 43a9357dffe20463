// Package metrics exposes Prometheus metrics for HTTP traffic and for the
// size of the member, pin and admin collections.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	metricsstore "github.com/phearom922/wall-of-fame/internal/app/store/metrics"
	"github.com/phearom922/wall-of-fame/internal/app/system/timeouts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

const namespace = "walloffame"

// Metrics owns a private registry so tests can build more than one.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the Go and process collectors, the HTTP metrics and, when db
// is non-nil, the collection gauges read at scrape time.
func New(db *mongo.Database) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	registry.MustRegister(m.requests, m.duration)
	if db != nil {
		registry.MustRegister(newCountsCollector(db))
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Middleware records each request under its chi route pattern, so
// /api/members/{id} is one series rather than one per member.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type countsCollector struct {
	db             *mongo.Database
	members        *prometheus.Desc
	enabledMembers *prometheus.Desc
	activeMembers  *prometheus.Desc
	pins           *prometheus.Desc
	admins         *prometheus.Desc
}

func newCountsCollector(db *mongo.Database) *countsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	return &countsCollector{
		db:             db,
		members:        desc("members", "Members stored."),
		enabledMembers: desc("members_enabled", "Members with enabled set."),
		activeMembers:  desc("members_active", "Members whose end pin date is in the future."),
		pins:           desc("pins", "Pin categories stored."),
		admins:         desc("admins", "Admin accounts stored."),
	}
}

func (c *countsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.members
	ch <- c.enabledMembers
	ch <- c.activeMembers
	ch <- c.pins
	ch <- c.admins
}

func (c *countsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	counts := metricsstore.FetchCounts(ctx, c.db, time.Now().UTC())
	ch <- prometheus.MustNewConstMetric(c.members, prometheus.GaugeValue, float64(counts.Members))
	ch <- prometheus.MustNewConstMetric(c.enabledMembers, prometheus.GaugeValue, float64(counts.EnabledMembers))
	ch <- prometheus.MustNewConstMetric(c.activeMembers, prometheus.GaugeValue, float64(counts.ActiveMembers))
	ch <- prometheus.MustNewConstMetric(c.pins, prometheus.GaugeValue, float64(counts.Pins))
	ch <- prometheus.MustNewConstMetric(c.admins, prometheus.GaugeValue, float64(counts.Admins))
}
