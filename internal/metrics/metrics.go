// Package metrics exposes Prometheus metrics for the realtime channels and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records connection, delivery and invocation metrics.
// It satisfies core.Observer.
type Collector struct {
	connections  *prometheus.GaugeVec
	opened       *prometheus.CounterVec
	groups       *prometheus.GaugeVec
	delivered    *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	invocations  *prometheus.CounterVec
	invokeTiming *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rentline_connections",
			Help: "Currently open realtime connections.",
		}, []string{"channel"}),
		opened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentline_connections_opened_total",
			Help: "Realtime connections accepted.",
		}, []string{"channel"}),
		groups: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rentline_groups",
			Help: "Per-user groups with at least one member.",
		}, []string{"channel"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentline_events_delivered_total",
			Help: "Events queued to connections.",
		}, []string{"channel", "event"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentline_events_dropped_total",
			Help: "Events dropped because a connection buffer was full.",
		}, []string{"channel", "event"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentline_invocations_total",
			Help: "Client invocations by method and result.",
		}, []string{"channel", "method", "result"}),
		invokeTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rentline_invocation_duration_seconds",
			Help:    "Client invocation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel", "method"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentline_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.connections,
		c.opened,
		c.groups,
		c.delivered,
		c.dropped,
		c.invocations,
		c.invokeTiming,
		c.httpRequests,
	)

	return c
}

func (c *Collector) ConnectionOpened(channel string) {
	c.connections.WithLabelValues(channel).Inc()
	c.opened.WithLabelValues(channel).Inc()
}

func (c *Collector) ConnectionClosed(channel string) {
	c.connections.WithLabelValues(channel).Dec()
}

func (c *Collector) GroupCreated(channel string) {
	c.groups.WithLabelValues(channel).Inc()
}

func (c *Collector) GroupDeleted(channel string) {
	c.groups.WithLabelValues(channel).Dec()
}

func (c *Collector) EventDelivered(channel, event string, n int) {
	c.delivered.WithLabelValues(channel, event).Add(float64(n))
}

func (c *Collector) EventDropped(channel, event string, n int) {
	c.dropped.WithLabelValues(channel, event).Add(float64(n))
}

// RecordInvocation records one client invocation. result is "ok" or an
// error code.
func (c *Collector) RecordInvocation(channel, method, result string, d time.Duration) {
	c.invocations.WithLabelValues(channel, method, result).Inc()
	c.invokeTiming.WithLabelValues(channel, method).Observe(d.Seconds())
}

// RecordHTTPStatus records one HTTP response.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
