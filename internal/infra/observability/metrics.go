package observability

import (
	"net/http"
	"time"

	"github.com/boddenberg/office-admin-go/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	httpDuration      *prometheus.HistogramVec
	requestsTotal     *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	authFailures      *prometheus.CounterVec
	rateLimited       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "officeadmin_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "officeadmin_requests_total",
				Help: "Total HTTP requests by outcome.",
			},
			[]string{"status"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "officeadmin_operation_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "officeadmin_store_errors_total",
				Help: "Total unexpected errors from storage backends.",
			},
			[]string{"backend"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "officeadmin_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "officeadmin_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		authFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "officeadmin_auth_failures_total",
				Help: "Total rejected credentials by reason.",
			},
			[]string{"reason"},
		),
		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "officeadmin_rate_limited_total",
				Help: "Total requests rejected by the rate limiter.",
			},
			[]string{"route"},
		),
	}
}

// RecordOperation records the duration of a service operation.
func (m *Metrics) RecordOperation(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the storage error counter.
func (m *Metrics) IncrStoreError(backend string) {
	m.storeErrors.WithLabelValues(backend).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrAuthFailure increments the auth failure counter.
func (m *Metrics) IncrAuthFailure(reason string) {
	m.authFailures.WithLabelValues(reason).Inc()
}

// IncrRateLimited increments the rate limit rejection counter.
func (m *Metrics) IncrRateLimited(route string) {
	m.rateLimited.WithLabelValues(route).Inc()
}

// Handler serves the private registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware records request duration by route and counts outcomes.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		m.httpDuration.WithLabelValues(routePattern(r), r.Method).Observe(time.Since(start).Seconds())
		outcome := "success"
		if status >= 500 {
			outcome = "error"
		} else if status >= 400 {
			outcome = "client_error"
		}
		m.requestsTotal.WithLabelValues(outcome).Inc()
	})
}

// Snapshot returns a summary of the counters for GET /metrics/summary.
func (m *Metrics) Snapshot() *domain.MetricsSnapshot {
	// Prometheus counters expose cumulative values.
	success := getCounterValue(m.requestsTotal, "success")
	clientErrors := getCounterValue(m.requestsTotal, "client_error")
	serverErrors := getCounterValue(m.requestsTotal, "error")
	totalRequests := success + clientErrors + serverErrors

	cacheHits := getCounterValue(m.cacheHits, "principal")
	cacheMisses := getCounterValue(m.cacheMisses, "principal")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalRequests > 0 {
		errorRate = serverErrors / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.MetricsSnapshot{
		TotalRequests: int64(totalRequests),
		ErrorRate:     errorRate,
		CacheHitRate:  cacheHitRate,
		AuthFailures:  int64(sumCounter(m.authFailures)),
		RateLimited:   int64(sumCounter(m.rateLimited)),
		StoreErrors:   int64(sumCounter(m.storeErrors)),
		Period:        "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounter adds up every label combination of a CounterVec.
func sumCounter(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var total float64
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
