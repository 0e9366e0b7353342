package observability_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/boddenberg/office-admin-go/internal/infra/observability"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func TestMetrics_SnapshotCountsOutcomes(t *testing.T) {
	m := observability.NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	m.IncrCacheHit("principal")
	m.IncrCacheMiss("principal")
	m.IncrAuthFailure("bad_secret")
	m.IncrAuthFailure("bad_token")
	m.IncrRateLimited("/login")

	snap := m.Snapshot()
	if snap.TotalRequests != 4 {
		t.Errorf("expected 4 requests, got %d", snap.TotalRequests)
	}
	if snap.ErrorRate != 0.25 {
		t.Errorf("expected error rate 0.25, got %f", snap.ErrorRate)
	}
	if snap.CacheHitRate != 0.5 {
		t.Errorf("expected cache hit rate 0.5, got %f", snap.CacheHitRate)
	}
	if snap.AuthFailures != 2 {
		t.Errorf("expected 2 auth failures, got %d", snap.AuthFailures)
	}
	if snap.RateLimited != 1 {
		t.Errorf("expected 1 rate limited request, got %d", snap.RateLimited)
	}
}

func TestMetrics_HandlerExposesRegistry(t *testing.T) {
	m := observability.NewMetrics()
	m.IncrStoreError("postgres")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `officeadmin_store_errors_total{backend="postgres"} 1`) {
		t.Errorf("expected store error counter in output:\n%s", rec.Body.String())
	}
}

func TestNewLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		logger, err := observability.NewLogger(lvl)
		if err != nil {
			t.Fatalf("level %s: %v", lvl, err)
		}
		_ = logger.Sync()
	}
	if _, err := observability.NewLogger("loud"); err == nil {
		t.Error("expected unknown level to fail")
	}
}

func TestZapLoggerMiddleware_PassesThrough(t *testing.T) {
	r := chi.NewRouter()
	r.Use(observability.ZapLoggerMiddleware(zap.NewNop()))
	r.Get("/x", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
}
