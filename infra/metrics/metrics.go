package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroute_transactions_total",
			Help: "Transactions by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	TransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payroute_transaction_duration_seconds",
			Help:    "End to end transaction processing time",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payroute_provider_calls_total",
			Help: "Outbound provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)
	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payroute_provider_call_duration_seconds",
			Help:    "Outbound provider call latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)
)

// ObserveTransaction records one TransactionService call
func ObserveTransaction(provider, outcome string, d time.Duration) {
	TransactionsTotal.WithLabelValues(provider, outcome).Inc()
	TransactionDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveProviderCall records one outbound provider request
func ObserveProviderCall(provider, outcome string, d time.Duration) {
	ProviderCallsTotal.WithLabelValues(provider, outcome).Inc()
	ProviderCallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// NormalizePath keeps the first path segment, used when no route pattern matched
func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	if idx := strings.Index(p, "/"); idx >= 0 {
		p = p[:idx]
	}
	if p == "" {
		return "root"
	}
	return p
}

// Middleware records request count and latency labelled by chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			path = rctx.RoutePattern()
		}
		if path == "" {
			path = NormalizePath(r.URL.Path)
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
