package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics records latency and outcome of remote gateway calls.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	breaker  *prometheus.GaugeVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of gateway requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Gateway requests by operation and outcome code.",
	}, []string{"operation", "outcome"})
	breaker := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gateway_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, []string{"name"})
	reg.MustRegister(duration, requests, breaker)
	return &GatewayMetrics{
		duration: duration,
		requests: requests,
		breaker:  breaker,
	}
}

// Observe records one finished gateway call. An empty outcome means success.
func (g *GatewayMetrics) Observe(operation, outcome string, duration time.Duration) {
	if g == nil || g.duration == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	op := normalizeLabel(operation)
	g.duration.WithLabelValues(op).Observe(duration.Seconds())
	g.requests.WithLabelValues(op, outcome).Inc()
}

// SetBreakerState publishes the numeric breaker state.
func (g *GatewayMetrics) SetBreakerState(name string, state int) {
	if g == nil || g.breaker == nil {
		return
	}
	g.breaker.WithLabelValues(normalizeLabel(name)).Set(float64(state))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
