package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/movies/{title}/similar", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	for _, p := range []string{"/movies/Avatar/similar", "/movies/Heat/similar"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", p, http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", p, rr.Code)
		}
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/movies/{title}/similar", "200"))
	if got < 2 {
		t.Errorf("expected both requests under the route pattern, got %f", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/recommendations", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("title") {
		case "":
			w.WriteHeader(http.StatusBadRequest)
		case "missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte("{}"))
		}
	})

	tests := []struct {
		query  string
		status string
	}{
		{"", "400"},
		{"?title=missing", "404"},
		{"?title=Avatar", "200"},
	}
	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest("GET", "/recommendations"+tc.query, http.NoBody))

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/recommendations", tc.status))
			if val < 1 {
				t.Errorf("expected requests_total with status %s >= 1, got %f", tc.status, val)
			}
		})
	}
}

func TestMiddleware_WithoutRouter(t *testing.T) {
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/anything", http.NoBody))

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "418")); got < 1 {
		t.Errorf("expected unknown path label, got %f", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/movies", "/movies"},
		{"/movies/{title}/similar", "/movies/{title}/similar"},
	}
	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestRegisterMetrics_Idempotent(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()
	RegisterMetadataMetrics()
	RegisterMetadataMetrics()
}
