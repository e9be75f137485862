package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MovementsTotal counts recorded stock movements by type.
var MovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inventar",
	Name:      "movements_total",
	Help:      "Stock movements recorded, by movement type.",
}, []string{"type"})

// CheckoutFailures counts rejected checkouts by reason.
var CheckoutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inventar",
	Name:      "checkout_failures_total",
	Help:      "Checkout attempts rejected, by reason.",
}, []string{"reason"})

// RequestDuration observes HTTP request latency per method and status class.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "inventar",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "status"})

// Handler exposes the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
