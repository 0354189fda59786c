package cinematch

import "github.com/kailas-cloud/cinematch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMovieNotFound  = domain.ErrMovieNotFound
	ErrDuplicateTitle = domain.ErrDuplicateTitle
	ErrInvalidCatalog = domain.ErrInvalidCatalog
)
