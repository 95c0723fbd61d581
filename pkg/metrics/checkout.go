package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Checkout outcomes.
const (
	CheckoutSucceeded = "success"
	CheckoutRejected  = "rejected"
	CheckoutFailed    = "failed"
)

// CheckoutMetrics counts PoS checkout attempts and recorded revenue.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
	revenue  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkout_attempts_total",
		Help: "PoS checkout attempts by outcome.",
	}, []string{"outcome"})
	revenue := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_amount_total",
		Help: "Sum of recorded PoS sale totals by payment method.",
	}, []string{"payment_method"})
	reg.MustRegister(attempts, revenue)
	return &CheckoutMetrics{attempts: attempts, revenue: revenue}
}

// IncAttempt counts one checkout with the given outcome.
func (c *CheckoutMetrics) IncAttempt(outcome string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddRevenue adds a recorded sale total.
func (c *CheckoutMetrics) AddRevenue(paymentMethod string, total decimal.Decimal) {
	if c == nil || c.revenue == nil || total.IsNegative() {
		return
	}
	c.revenue.WithLabelValues(normalizeLabel(paymentMethod)).Add(total.InexactFloat64())
}
