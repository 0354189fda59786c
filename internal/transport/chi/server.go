package chi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cinematch/internal/domain"
	healthuc "github.com/kailas-cloud/cinematch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/cinematch/internal/usecase/recommend"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the recommendation API.
type Server struct {
	recommend     *recommenduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
	limitRecs     func(http.Handler) http.Handler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		health:    health,
		logger:    logger,
		limitRecs: RateLimit(0, 0),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrMovieNotFound, http.StatusNotFound, ErrorResponseCodeMovieNotFound),
	}
	return s
}

// WithRecommendRateLimit limits GET /recommendations per client IP.
// Each call fans out to the metadata provider, so it is the only limited route.
func (s *Server) WithRecommendRateLimit(requests int, window time.Duration) *Server {
	s.limitRecs = RateLimit(requests, window)
	return s
}

// Routes registers the API handlers on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/movies", s.ListMovies)
	r.Get("/movies/{title}/similar", s.GetSimilar)
	r.With(s.limitRecs).Get("/recommendations", s.GetRecommendations)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeBadRequest, "method not allowed")
	})
}

// ListMovies handles GET /movies.
func (s *Server) ListMovies(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	var limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "cursor", q, &cursor); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid cursor parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid limit parameter")
		return
	}
	if limit != nil && (*limit <= 0 || *limit > maxPageSize) {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", maxPageSize))
		return
	}

	titles := s.recommend.Titles()
	items := make([]Movie, len(titles))
	for i, t := range titles {
		items[i] = Movie{Index: i, Title: t}
	}

	writeJSON(w, http.StatusOK, paginateMovies(items, cursor, limit))
}

// paginateMovies pages items after the cursor title. An unknown cursor starts from the top.
func paginateMovies(items []Movie, cursor *string, limitPtr *int) MovieCursorListResponse {
	limit := defaultPageSize
	if limitPtr != nil {
		limit = *limitPtr
	}

	startIdx := 0
	if cursor != nil && *cursor != "" {
		for i, item := range items {
			if item.Title == *cursor {
				startIdx = i + 1
				break
			}
		}
	}

	end := min(startIdx+limit, len(items))
	page := items[startIdx:end]
	hasMore := end < len(items)

	resp := MovieCursorListResponse{
		Items:   page,
		HasMore: hasMore,
	}
	if hasMore && len(page) > 0 {
		c := page[len(page)-1].Title
		resp.NextCursor = &c
	}
	return resp
}

// GetRecommendations handles GET /recommendations.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	var title string
	if err := runtime.BindQueryParameter("form", true, true, "title", r.URL.Query(), &title); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "title query parameter is required")
		return
	}
	if title == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "title query parameter is required")
		return
	}

	recs, err := s.recommend.Recommend(r.Context(), title)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]RecommendationItem, len(recs))
	for i, rec := range recs {
		items[i] = RecommendationItem{
			Title:  rec.Title,
			Poster: rec.Poster,
			Rating: rec.Rating,
		}
	}

	writeJSON(w, http.StatusOK, RecommendationListResponse{
		Title: title,
		Items: items,
	})
}

// GetSimilar handles GET /movies/{title}/similar.
func (s *Server) GetSimilar(w http.ResponseWriter, r *http.Request) {
	var title string
	err := runtime.BindStyledParameterWithOptions("simple", "title", chi.URLParam(r, "title"), &title,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid title path parameter")
		return
	}

	var k *int
	if err := runtime.BindQueryParameter("form", true, false, "k", r.URL.Query(), &k); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid k parameter")
		return
	}

	neighbors, err := s.recommend.Similar(title, derefInt(k))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SimilarItem, len(neighbors))
	for i, n := range neighbors {
		items[i] = SimilarItem{Index: n.Index, Title: n.Title, Score: n.Score}
	}

	writeJSON(w, http.StatusOK, SimilarListResponse{
		Title: title,
		Items: items,
	})
}

// HealthCheck handles GET /health.
// A degraded metadata provider still answers 200: recommendations keep working with placeholders.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message for err without exposing internals.
func safeDomainMessage(err error) string {
	var nf *domain.MovieNotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	if errors.Is(err, domain.ErrMovieNotFound) {
		return domain.ErrMovieNotFound.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
