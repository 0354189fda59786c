package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cinematch/internal/domain"
	domcat "github.com/kailas-cloud/cinematch/internal/domain/catalog"
	healthuc "github.com/kailas-cloud/cinematch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/cinematch/internal/usecase/recommend"
)

// --- Fakes ---

type stubFetcher struct {
	ratings map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, title string) domain.Metadata {
	rating, ok := f.ratings[title]
	if !ok {
		return domain.Degraded(domain.DefaultPlaceholderPoster)
	}
	return domain.Metadata{Poster: "https://img.example/" + title, RawRating: rating}
}

type stubMetadataChecker struct {
	err error
}

func (c *stubMetadataChecker) HealthCheck(_ context.Context) error { return c.err }

type emptyCatalog struct{}

func (emptyCatalog) Len() int { return 0 }

// --- Helpers ---

func testCatalog(t *testing.T) *domcat.Catalog {
	t.Helper()
	c, err := domcat.New(
		[]string{"A", "B", "The Dark Knight"},
		[][]float64{
			{1, 0.5, 0.9},
			{0.5, 1, 0.2},
			{0.9, 0.2, 1},
		},
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func newTestRouter(t *testing.T, health *healthuc.Service) http.Handler {
	t.Helper()
	cat := testCatalog(t)
	fetcher := &stubFetcher{ratings: map[string]string{"B": "9.0", "The Dark Knight": "8.5"}}
	if health == nil {
		health = healthuc.New(cat, &stubMetadataChecker{})
	}
	srv := NewServer(recommenduc.New(cat, fetcher), health, zap.NewNop())

	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorResponseCode) ErrorResponse {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Code != code {
		t.Errorf("code: got %s, want %s", resp.Code, code)
	}
	return resp
}

// --- Tests ---

func TestGetRecommendations_RankedByRating(t *testing.T) {
	rr := doGet(t, newTestRouter(t, nil), "/recommendations?title=A")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	resp := decodeBody[RecommendationListResponse](t, rr)
	if resp.Title != "A" {
		t.Errorf("title: got %q", resp.Title)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(resp.Items))
	}
	// The Dark Knight is the closer neighbour but B has the higher rating.
	if resp.Items[0].Title != "B" || resp.Items[0].Rating != 9.0 {
		t.Errorf("first item: %+v", resp.Items[0])
	}
	if resp.Items[1].Title != "The Dark Knight" || resp.Items[1].Poster != "https://img.example/The Dark Knight" {
		t.Errorf("second item: %+v", resp.Items[1])
	}
}

func TestGetRecommendations_EncodedTitle(t *testing.T) {
	rr := doGet(t, newTestRouter(t, nil), "/recommendations?title=The+Dark+Knight")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[RecommendationListResponse](t, rr)
	if resp.Title != "The Dark Knight" {
		t.Errorf("title: got %q", resp.Title)
	}
	for _, item := range resp.Items {
		if item.Title == "The Dark Knight" {
			t.Error("selection must not be recommended")
		}
	}
}

func TestGetRecommendations_MissingTitle(t *testing.T) {
	h := newTestRouter(t, nil)
	for _, target := range []string{"/recommendations", "/recommendations?title="} {
		assertError(t, doGet(t, h, target), http.StatusBadRequest, ErrorResponseCodeBadRequest)
	}
}

func TestGetRecommendations_UnknownTitle(t *testing.T) {
	rr := doGet(t, newTestRouter(t, nil), "/recommendations?title=Zardoz")

	resp := assertError(t, rr, http.StatusNotFound, ErrorResponseCodeMovieNotFound)
	if !strings.Contains(resp.Message, "Zardoz") {
		t.Errorf("message should name the title: %q", resp.Message)
	}
}

func TestListMovies_Pagination(t *testing.T) {
	h := newTestRouter(t, nil)

	rr := doGet(t, h, "/movies?limit=2")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	page := decodeBody[MovieCursorListResponse](t, rr)
	if len(page.Items) != 2 || !page.HasMore {
		t.Fatalf("first page: %+v", page)
	}
	if page.Items[0] != (Movie{Index: 0, Title: "A"}) || page.Items[1] != (Movie{Index: 1, Title: "B"}) {
		t.Errorf("first page items: %+v", page.Items)
	}
	if page.NextCursor == nil || *page.NextCursor != "B" {
		t.Fatalf("next cursor: %v", page.NextCursor)
	}

	page = decodeBody[MovieCursorListResponse](t, doGet(t, h, "/movies?limit=2&cursor=B"))
	if len(page.Items) != 1 || page.Items[0].Title != "The Dark Knight" {
		t.Errorf("second page items: %+v", page.Items)
	}
	if page.HasMore || page.NextCursor != nil {
		t.Errorf("second page should be last: %+v", page)
	}
}

func TestListMovies_DefaultLimit(t *testing.T) {
	page := decodeBody[MovieCursorListResponse](t, doGet(t, newTestRouter(t, nil), "/movies"))
	if len(page.Items) != 3 || page.HasMore {
		t.Errorf("got %+v", page)
	}
}

func TestListMovies_InvalidLimit(t *testing.T) {
	h := newTestRouter(t, nil)
	assertError(t, doGet(t, h, "/movies?limit=abc"), http.StatusBadRequest, ErrorResponseCodeBadRequest)
	assertError(t, doGet(t, h, "/movies?limit=0"), http.StatusBadRequest, ErrorResponseCodeValidationFailed)
	assertError(t, doGet(t, h, "/movies?limit=101"), http.StatusBadRequest, ErrorResponseCodeValidationFailed)
}

func TestPaginateMovies_UnknownCursorStartsAtTop(t *testing.T) {
	items := []Movie{{0, "A"}, {1, "B"}}
	cursor := "nope"
	resp := paginateMovies(items, &cursor, nil)
	if len(resp.Items) != 2 || resp.Items[0].Title != "A" {
		t.Errorf("got %+v", resp)
	}
}

func TestGetSimilar(t *testing.T) {
	rr := doGet(t, newTestRouter(t, nil), "/movies/A/similar?k=1")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[SimilarListResponse](t, rr)
	if len(resp.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(resp.Items))
	}
	if resp.Items[0] != (SimilarItem{Index: 2, Title: "The Dark Knight", Score: 0.9}) {
		t.Errorf("got %+v", resp.Items[0])
	}
}

func TestGetSimilar_EscapedPath(t *testing.T) {
	rr := doGet(t, newTestRouter(t, nil), "/movies/The%20Dark%20Knight/similar")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[SimilarListResponse](t, rr)
	if resp.Title != "The Dark Knight" {
		t.Errorf("title: got %q", resp.Title)
	}
	if len(resp.Items) != 2 || resp.Items[0].Title != "A" {
		t.Errorf("items: %+v", resp.Items)
	}
}

func TestGetSimilar_Errors(t *testing.T) {
	h := newTestRouter(t, nil)
	assertError(t, doGet(t, h, "/movies/A/similar?k=x"), http.StatusBadRequest, ErrorResponseCodeBadRequest)
	assertError(t, doGet(t, h, "/movies/Zardoz/similar"), http.StatusNotFound, ErrorResponseCodeMovieNotFound)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		health     func(t *testing.T) *healthuc.Service
		wantCode   int
		wantStatus string
	}{
		{
			name: "healthy",
			health: func(t *testing.T) *healthuc.Service {
				return healthuc.New(testCatalog(t), &stubMetadataChecker{})
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "metadata disabled is degraded but serving",
			health: func(t *testing.T) *healthuc.Service {
				return healthuc.New(testCatalog(t), &stubMetadataChecker{err: domain.ErrMetadataDisabled})
			},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name: "empty catalog",
			health: func(_ *testing.T) *healthuc.Service {
				return healthuc.New(emptyCatalog{}, nil)
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doGet(t, newTestRouter(t, tt.health(t)), "/health")
			if rr.Code != tt.wantCode {
				t.Fatalf("status code: got %d, want %d", rr.Code, tt.wantCode)
			}
			resp := decodeBody[HealthResponse](t, rr)
			if resp.Status != tt.wantStatus {
				t.Errorf("status: got %q, want %q", resp.Status, tt.wantStatus)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	if rr := doGet(t, newTestRouter(t, nil), "/metrics"); rr.Code != http.StatusOK {
		t.Errorf("status: got %d", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	assertError(t, doGet(t, newTestRouter(t, nil), "/nope"), http.StatusNotFound, ErrorResponseCodeNotFound)
}

func TestHandleDomainError_Internal(t *testing.T) {
	srv := NewServer(nil, nil, zap.NewNop())
	rr := httptest.NewRecorder()
	srv.handleDomainError(rr, context.DeadlineExceeded)
	assertError(t, rr, http.StatusInternalServerError, ErrorResponseCodeInternalError)
}

func TestRecommendRateLimit_OnlyRecommendations(t *testing.T) {
	cat := testCatalog(t)
	srv := NewServer(
		recommenduc.New(cat, &stubFetcher{}),
		healthuc.New(cat, nil),
		zap.NewNop(),
	).WithRecommendRateLimit(1, time.Minute)

	r := chi.NewRouter()
	srv.Routes(r)

	if rr := doGet(t, r, "/recommendations?title=A"); rr.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rr.Code)
	}
	assertError(t, doGet(t, r, "/recommendations?title=A"), http.StatusTooManyRequests, ErrorResponseCodeRateLimited)

	for i := 0; i < 3; i++ {
		if rr := doGet(t, r, "/movies"); rr.Code != http.StatusOK {
			t.Fatalf("movies request %d: got %d", i, rr.Code)
		}
	}
}
