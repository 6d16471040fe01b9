package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Result labels shared by the storefront counters.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// CollectionMetrics counts cart and wishlist mutations per backend.
type CollectionMetrics struct {
	cart     *prometheus.CounterVec
	wishlist *prometheus.CounterVec
}

// NewCollectionMetrics registers the collection counters on the provided registerer.
func NewCollectionMetrics(reg prometheus.Registerer) *CollectionMetrics {
	if reg == nil {
		return &CollectionMetrics{}
	}
	cart := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations by operation, backend and result.",
	}, []string{"op", "backend", "result"})
	wishlist := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wishlist_mutations_total",
		Help:      "Wishlist mutations by operation, backend and result.",
	}, []string{"op", "backend", "result"})
	reg.MustRegister(cart, wishlist)
	return &CollectionMetrics{cart: cart, wishlist: wishlist}
}

// CartMutation records a cart mutation outcome.
func (c *CollectionMetrics) CartMutation(op, backend string, err error) {
	if c == nil || c.cart == nil {
		return
	}
	c.cart.WithLabelValues(normalizeLabel(op), normalizeLabel(backend), resultLabel(err)).Inc()
}

// WishlistMutation records a wishlist mutation outcome.
func (c *CollectionMetrics) WishlistMutation(op, backend string, err error) {
	if c == nil || c.wishlist == nil {
		return
	}
	c.wishlist.WithLabelValues(normalizeLabel(op), normalizeLabel(backend), resultLabel(err)).Inc()
}

// CheckoutMetrics counts wizard transitions.
type CheckoutMetrics struct {
	transitions *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout transition counter.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_transitions_total",
		Help:      "Checkout step transitions by source, target and result.",
	}, []string{"from", "to", "result"})
	reg.MustRegister(transitions)
	return &CheckoutMetrics{transitions: transitions}
}

// Transition records an attempted step change.
func (c *CheckoutMetrics) Transition(from, to string, err error) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to), resultLabel(err)).Inc()
}

// HTTPMetrics observes request latency per route pattern.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the request duration histogram.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

// ObserveRequest records the duration for the matched route.
func (h *HTTPMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(duration.Seconds())
}

func resultLabel(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
