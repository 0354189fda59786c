package recommend

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/cinematch/internal/domain"
	logpkg "github.com/kailas-cloud/cinematch/internal/logger"
)

const (
	// DefaultCount is the number of recommendations returned per request.
	DefaultCount = 8
	// MaxCount caps the number of recommendations per request.
	MaxCount = 8
	// DefaultFetchConcurrency bounds parallel metadata fetches per request.
	DefaultFetchConcurrency = 8
	// DefaultMaxSimilar caps k for Similar.
	DefaultMaxSimilar = 50
)

// Service produces recommendations from the catalog and the metadata provider.
type Service struct {
	catalog     Catalog
	meta        MetadataFetcher
	count       int
	concurrency int
	maxSimilar  int
	exclude     ExcludeMode
}

// New creates a recommendation service with default settings.
func New(catalog Catalog, meta MetadataFetcher) *Service {
	return &Service{
		catalog:     catalog,
		meta:        meta,
		count:       DefaultCount,
		concurrency: DefaultFetchConcurrency,
		maxSimilar:  DefaultMaxSimilar,
		exclude:     ExcludeByPosition,
	}
}

// WithCount sets the number of candidates per recommendation, clamped to MaxCount.
func (s *Service) WithCount(n int) *Service {
	if n > 0 {
		s.count = min(n, MaxCount)
	}
	return s
}

// WithFetchConcurrency bounds parallel metadata fetches. 1 means sequential.
func (s *Service) WithFetchConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// WithMaxSimilar caps the neighbour count accepted by Similar.
func (s *Service) WithMaxSimilar(n int) *Service {
	if n > 0 {
		s.maxSimilar = n
	}
	return s
}

// WithExcludeMode selects how the selected movie is excluded from its neighbours.
func (s *Service) WithExcludeMode(m ExcludeMode) *Service {
	if m.IsValid() {
		s.exclude = m
	}
	return s
}

// Titles returns the canonical ordered title list.
func (s *Service) Titles() []string {
	return s.catalog.Titles()
}

// Similar returns up to k nearest neighbours of title without metadata.
// k <= 0 falls back to the recommendation count; k is capped at the configured maximum.
func (s *Service) Similar(title string, k int) ([]domain.Neighbor, error) {
	if k <= 0 {
		k = s.count
	}
	if k > s.maxSimilar {
		k = s.maxSimilar
	}

	self, err := s.catalog.IndexOf(title)
	if err != nil {
		return nil, fmt.Errorf("resolve selection: %w", err)
	}
	return neighbors(s.catalog, self, k, s.exclude), nil
}

// Recommend returns the movies most similar to title, enriched with metadata
// and ordered by rating descending. Similarity decides the candidate set only.
// An unknown title fails with domain.ErrMovieNotFound before any fetch is made.
func (s *Service) Recommend(ctx context.Context, title string) ([]domain.Recommendation, error) {
	self, err := s.catalog.IndexOf(title)
	if err != nil {
		return nil, fmt.Errorf("resolve selection: %w", err)
	}
	candidates := neighbors(s.catalog, self, s.count, s.exclude)

	logpkg.FromContext(ctx).Debug("recommendation candidates",
		zap.String("title", title),
		zap.Int("candidates", len(candidates)),
	)

	recs := make([]domain.Recommendation, len(candidates))

	// Fetch itself never fails; the only error is the request context ending.
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			md := s.meta.Fetch(ctx, c.Title)
			recs[i] = domain.Recommendation{
				Title:  c.Title,
				Poster: md.Poster,
				Rating: domain.ParseRating(md.RawRating),
			}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	// Stable: equal ratings keep similarity order.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Rating > recs[j].Rating
	})

	return recs, nil
}
