package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flight_gateway"

// Upstream fetch outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport_error"
	OutcomeStatus    = "status_error"
	OutcomeRead      = "read_error"
	OutcomeMalformed = "malformed_payload"
)

// Metrics holds the gateway's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram

	positionsParsed prometheus.Counter
	parseFailures   prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "OpenSky state vector requests by outcome.",
		}, []string{"outcome"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of OpenSky state vector requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		positionsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "positions_parsed_total",
			Help:      "State vectors converted into positions.",
		}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "position_parse_failures_total",
			Help:      "Upstream payloads rejected because a state vector did not parse.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		startTime: time.Now(),
	}

	m.registry.MustRegister(
		m.upstreamRequests,
		m.upstreamLatency,
		m.positionsParsed,
		m.parseFailures,
		m.httpRequests,
		m.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveUpstream records one upstream request.
func (m *Metrics) ObserveUpstream(outcome string, latency time.Duration) {
	m.upstreamRequests.WithLabelValues(outcome).Inc()
	m.upstreamLatency.Observe(latency.Seconds())
}

// AddPositionsParsed counts successfully parsed state vectors.
func (m *Metrics) AddPositionsParsed(n int) {
	m.positionsParsed.Add(float64(n))
}

// IncrementParseFailures counts a rejected upstream payload.
func (m *Metrics) IncrementParseFailures() {
	m.parseFailures.Inc()
}

// ObserveHTTP records one inbound request.
func (m *Metrics) ObserveHTTP(route string, code int, latency time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpLatency.WithLabelValues(route).Observe(latency.Seconds())
}

func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.startTime)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
