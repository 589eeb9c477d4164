package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics counts cart conversion outcomes.
type CheckoutMetrics struct {
	conversions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout counters on the registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	conversions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_conversions_total",
		Help: "Cart conversions by result.",
	}, []string{"result"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejections_total",
		Help: "Checkout attempts rejected by cart state.",
	}, []string{"state"})
	reg.MustRegister(conversions, rejections)
	return &CheckoutMetrics{conversions: conversions, rejections: rejections}
}

// IncConverted counts a successful conversion.
func (m *CheckoutMetrics) IncConverted() {
	if m == nil || m.conversions == nil {
		return
	}
	m.conversions.WithLabelValues("converted").Inc()
}

// IncFailed counts a conversion aborted mid-flight.
func (m *CheckoutMetrics) IncFailed() {
	if m == nil || m.conversions == nil {
		return
	}
	m.conversions.WithLabelValues("failed").Inc()
}

// IncRejected counts a checkout blocked by the validator.
func (m *CheckoutMetrics) IncRejected(state string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(state)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
