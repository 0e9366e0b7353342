package ratelimit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boddenberg/office-admin-go/internal/infra/ratelimit"
)

func TestStore_AllowsBurstThenRejects(t *testing.T) {
	s := ratelimit.NewStore(1, 2)

	for i := 0; i < 2; i++ {
		if ok, _ := s.Allow("10.0.0.1"); !ok {
			t.Fatalf("request %d should be within burst", i)
		}
	}
	ok, retry := s.Allow("10.0.0.1")
	if ok {
		t.Fatal("expected third request to be rejected")
	}
	if retry <= 0 {
		t.Errorf("expected positive retry delay, got %s", retry)
	}

	if ok, _ := s.Allow("10.0.0.2"); !ok {
		t.Error("other keys must have their own bucket")
	}
}

func TestStore_CleanupDropsIdleKeys(t *testing.T) {
	s := ratelimit.NewStore(1, 1, ratelimit.WithIdleTTL(10*time.Millisecond))
	s.Allow("a")
	time.Sleep(30 * time.Millisecond)
	s.Allow("b")

	s.Cleanup()
	if n := s.Len(); n != 1 {
		t.Errorf("expected only the fresh key to remain, got %d", n)
	}
}

func TestStore_Janitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := ratelimit.NewStore(1, 1,
		ratelimit.WithIdleTTL(time.Millisecond),
		ratelimit.WithCleanupEvery(5*time.Millisecond),
	)
	s.StartJanitor(ctx)
	s.Allow("a")

	time.Sleep(50 * time.Millisecond)
	if n := s.Len(); n != 0 {
		t.Errorf("expected janitor to evict idle key, %d left", n)
	}
}

func TestMiddleware_SetsRetryAfter(t *testing.T) {
	h := ratelimit.Middleware(ratelimit.Options{
		Store: ratelimit.NewStore(0.5, 1),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.0.2.1:4000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestDefaultKeyFunc(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := ratelimit.DefaultKeyFunc(false)(req); got != "192.0.2.9" {
		t.Errorf("expected remote addr host, got %q", got)
	}
	if got := ratelimit.DefaultKeyFunc(true)(req); got != "203.0.113.7" {
		t.Errorf("expected first forwarded hop, got %q", got)
	}
}
