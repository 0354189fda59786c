package chi

// ErrorResponseCode is a machine-readable error code returned to clients.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeMovieNotFound    ErrorResponseCode = "movie_not_found"
	ErrorResponseCodeNotFound         ErrorResponseCode = "not_found"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeRateLimited      ErrorResponseCode = "rate_limited"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// Movie is an entry of the title list.
type Movie struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// MovieCursorListResponse is a page of the title list.
type MovieCursorListResponse struct {
	Items      []Movie `json:"items"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

// RecommendationItem is a single enriched recommendation.
type RecommendationItem struct {
	Title  string  `json:"title"`
	Poster string  `json:"poster"`
	Rating float64 `json:"rating"`
}

// RecommendationListResponse is the body of GET /recommendations.
type RecommendationListResponse struct {
	Title string               `json:"title"`
	Items []RecommendationItem `json:"items"`
}

// SimilarItem is a neighbour with its similarity score.
type SimilarItem struct {
	Index int     `json:"index"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SimilarListResponse is the body of GET /movies/{title}/similar.
type SimilarListResponse struct {
	Title string        `json:"title"`
	Items []SimilarItem `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
