package recommend

import (
	"context"

	"github.com/kailas-cloud/cinematch/internal/domain"
)

// Catalog is the read-only similarity store.
type Catalog interface {
	Len() int
	IndexOf(title string) (int, error)
	Title(i int) string
	Titles() []string
	Row(i int) []float64
}

// MetadataFetcher resolves poster and rating for a title. It never fails;
// unavailable metadata comes back as domain.Degraded.
type MetadataFetcher interface {
	Fetch(ctx context.Context, title string) domain.Metadata
}
