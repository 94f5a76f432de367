package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements [HTTPHooks] and [ResolveHooks] with Prometheus collectors.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpRetries     *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackpin_http_requests_total",
				Help: "Outbound HTTP requests by method, host, and status code",
			},
			[]string{"method", "host", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stackpin_http_request_duration_seconds",
				Help:    "Duration of outbound HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "host"},
		),
		httpRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackpin_http_retries_total",
				Help: "Outbound HTTP retries by method and host",
			},
			[]string{"method", "host"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackpin_resolutions_total",
				Help: "Version resolutions by source, origin, and status",
			},
			[]string{"source", "origin", "status"},
		),
		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stackpin_resolution_duration_seconds",
				Help:    "Duration of version resolutions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.httpRequests, m.httpDuration, m.httpRetries, m.resolutions, m.resolveDuration)
	}
	return m
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, host, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, host).Observe(duration.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.httpRequests.WithLabelValues(method, host, "error").Inc()
}

func (m *Metrics) OnRetry(_ context.Context, method, host, _ string, _ int, _ time.Duration) {
	m.httpRetries.WithLabelValues(method, host).Inc()
}

func (m *Metrics) OnResolveStart(context.Context, string) {}

func (m *Metrics) OnResolveComplete(_ context.Context, source, _ string, override bool, duration time.Duration, err error) {
	origin := "discovered"
	if override {
		origin = "override"
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.resolutions.WithLabelValues(source, origin, status).Inc()
	m.resolveDuration.WithLabelValues(source).Observe(duration.Seconds())
}
