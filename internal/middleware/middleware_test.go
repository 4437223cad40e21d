package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EmpoweredVote/roadgeo/internal/middleware"
	"github.com/go-chi/chi/v5"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func call(h http.Handler, method, origin, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/nearest", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if remote != "" {
		req.RemoteAddr = remote
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestCORSMiddleware_AllowedOrigin verifies that an allow-listed origin is echoed back.
func TestCORSMiddleware_AllowedOrigin(t *testing.T) {
	h := middleware.CORSMiddleware([]string{"https://maps.example.nz"})(ok)

	rec := call(h, http.MethodGet, "https://maps.example.nz", "")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://maps.example.nz" {
		t.Errorf("expected origin to be echoed, got %q", got)
	}

	rec = call(h, http.MethodGet, "https://evil.example.com", "")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unknown origin, got %q", got)
	}
}

// TestCORSMiddleware_Preflight verifies that OPTIONS short-circuits with 204.
func TestCORSMiddleware_Preflight(t *testing.T) {
	h := middleware.CORSMiddleware([]string{"*"})(ok)

	rec := call(h, http.MethodOptions, "http://localhost:5173", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected wildcard list to allow origin, got %q", got)
	}
}

// TestRateLimit_PerClient verifies the burst is enforced per client address.
func TestRateLimit_PerClient(t *testing.T) {
	h := middleware.RateLimit(0.001, 2)(ok)

	for i := 0; i < 2; i++ {
		if rec := call(h, http.MethodGet, "", "10.0.0.1:5000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := call(h, http.MethodGet, "", "10.0.0.1:5001")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	if rec := call(h, http.MethodGet, "", "10.0.0.2:5000"); rec.Code != http.StatusOK {
		t.Errorf("other clients keep their own budget, got %d", rec.Code)
	}
}

// TestRateLimit_Disabled verifies a non-positive rate passes everything through.
func TestRateLimit_Disabled(t *testing.T) {
	h := middleware.RateLimit(0, 0)(ok)
	for i := 0; i < 50; i++ {
		if rec := call(h, http.MethodGet, "", "10.0.0.1:5000"); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
}

// TestMetrics_PassesThrough verifies the status written by the handler survives.
func TestMetrics_PassesThrough(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)
	r.Get("/nearest", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "none", http.StatusNotFound)
	})

	rec := call(r, http.MethodGet, "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
