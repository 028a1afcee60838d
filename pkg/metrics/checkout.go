package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts checkout submissions and cart write conflicts.
type CheckoutMetrics struct {
	submissions   *prometheus.CounterVec
	cartConflicts *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Order submissions by result (completed, failed, discarded).",
	}, []string{"result"})
	cartConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_conflicts_total",
		Help: "Cart operations rejected by the gateway or by an in-flight request.",
	}, []string{"operation", "code"})
	reg.MustRegister(submissions, cartConflicts)
	return &CheckoutMetrics{
		submissions:   submissions,
		cartConflicts: cartConflicts,
	}
}

func (c *CheckoutMetrics) IncSubmission(result string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(result)).Inc()
}

func (c *CheckoutMetrics) IncCartConflict(operation, code string) {
	if c == nil || c.cartConflicts == nil {
		return
	}
	c.cartConflicts.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}
