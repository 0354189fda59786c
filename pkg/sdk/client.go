package cinematch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	dbRedis "github.com/kailas-cloud/cinematch/internal/db/redis"
	"github.com/kailas-cloud/cinematch/internal/domain"
	domcat "github.com/kailas-cloud/cinematch/internal/domain/catalog"
	catalogrepo "github.com/kailas-cloud/cinematch/internal/repository/catalog"
	"github.com/kailas-cloud/cinematch/internal/transport/omdb"
	healthuc "github.com/kailas-cloud/cinematch/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/cinematch/internal/usecase/recommend"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type recommendUseCase interface {
	Titles() []string
	Similar(title string, k int) ([]domain.Neighbor, error)
	Recommend(ctx context.Context, title string) ([]domain.Recommendation, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the cinematch SDK entry point. It is safe for concurrent use.
type Client struct {
	recommend  recommendUseCase
	health     healthUseCase
	httpClient *http.Client
	obs        *observer
}

// New loads the catalog and wires the recommender.
// The provided context bounds catalog loading.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readiness: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.excludeSelf != "" && !recommenduc.ExcludeMode(cfg.excludeSelf).IsValid() {
		return nil, fmt.Errorf("cinematch: unknown exclude mode %q", cfg.excludeSelf)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{}
	}
	if cfg.omdbKey == "" && cfg.logger != nil {
		cfg.logger.Warn("cinematch: no OMDb API key, metadata runs in degraded mode")
	}
	metadata := omdb.NewClient(&omdb.Config{
		APIKey:     cfg.omdbKey,
		BaseURL:    cfg.omdbBaseURL,
		Timeout:    cfg.omdbTimeout,
		HTTPClient: hc,
		Logger:     cfg.zapLogger,
	})

	rec := recommenduc.New(catalog, metadata).
		WithCount(cfg.count).
		WithFetchConcurrency(cfg.concurrency).
		WithExcludeMode(recommenduc.ExcludeMode(cfg.excludeSelf))

	return &Client{
		recommend:  rec,
		health:     healthuc.New(catalog, metadata),
		httpClient: hc,
		obs:        obs,
	}, nil
}

func loadCatalog(ctx context.Context, cfg *clientConfig) (*domcat.Catalog, error) {
	switch cfg.source {
	case "file":
		c, err := catalogrepo.LoadFile(cfg.path)
		if err != nil {
			return nil, fmt.Errorf("cinematch: load catalog: %w", err)
		}
		return c, nil
	case "redis":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("cinematch: create redis store: %w", err)
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, cfg.readiness); err != nil {
			return nil, fmt.Errorf("cinematch: redis not ready: %w", err)
		}
		c, err := catalogrepo.LoadRedis(ctx, store, cfg.key)
		if err != nil {
			return nil, fmt.Errorf("cinematch: load catalog: %w", err)
		}
		return c, nil
	case "":
		return nil, errors.New("cinematch: catalog source required (use WithCatalogFile or WithCatalogRedis)")
	default:
		return nil, fmt.Errorf("cinematch: unknown catalog source %q", cfg.source)
	}
}

// Close releases idle metadata connections.
func (c *Client) Close() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}

// Titles returns every known title in catalog order.
func (c *Client) Titles() []string {
	return c.recommend.Titles()
}

// Recommend returns movies similar to title ordered by rating descending.
// Metadata failures never fail the call; only an unknown title does.
func (c *Client) Recommend(ctx context.Context, title string) (_ []Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", title, start, err) }()

	recs, err := c.recommend.Recommend(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = Recommendation{Title: r.Title, Poster: r.Poster, Rating: r.Rating}
	}
	return out, nil
}

// Similar returns up to k nearest neighbours of title by similarity score.
// k <= 0 uses the recommendation count.
func (c *Client) Similar(title string, k int) (_ []Neighbor, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", title, start, err) }()

	ns, err := c.recommend.Similar(title, k)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	out := make([]Neighbor, len(ns))
	for i, n := range ns {
		out[i] = Neighbor{Index: n.Index, Title: n.Title, Score: n.Score}
	}
	return out, nil
}

// Health checks the catalog and the metadata provider.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
