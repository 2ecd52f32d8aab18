package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gestloc_http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"route", "method", "status"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "gestloc_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"route", "method"},
)

var ReceiptsGeneratedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gestloc_receipts_generated_total",
		Help: "Receipts generated, by outcome (signed, unsigned, failed)",
	},
	[]string{"outcome"},
)

var ReceiptRegenerationsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "gestloc_receipt_regenerations_total",
		Help: "Receipts regenerated because their stored artifact was missing",
	},
)

var ReceiptGenerationDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "gestloc_receipt_generation_duration_seconds",
		Help:    "Time taken to render, sign and upload a receipt",
		Buckets: prometheus.DefBuckets,
	},
)

var BlobOperationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gestloc_blob_operations_total",
		Help: "Blob store calls, by operation and result",
	},
	[]string{"driver", "operation", "result"},
)

var BlobOperationDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "gestloc_blob_operation_duration_seconds",
		Help:    "Duration of blob store calls in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"driver", "operation"},
)

var PaymentTransitionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gestloc_payment_transitions_total",
		Help: "Payment status transitions, by target status",
	},
	[]string{"to"},
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ReceiptsGeneratedTotal,
		ReceiptRegenerationsTotal,
		ReceiptGenerationDuration,
		BlobOperationsTotal,
		BlobOperationDuration,
		PaymentTransitionsTotal,
	)
}

// Middleware records request counts and latencies labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
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

		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
