// Package omdb is the metadata provider client for the OMDb API.
//
// Fetch never fails outwardly: every upstream problem degrades to the
// placeholder poster and the N/A rating.
package omdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/cinematch/internal/domain"
	"github.com/kailas-cloud/cinematch/internal/metrics"
)

const (
	// DefaultBaseURL is the public OMDb endpoint.
	DefaultBaseURL = "http://www.omdbapi.com/"
	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 10 * time.Second

	providerName    = "omdb"
	maxResponseSize = 1 << 20
)

var (
	errMalformed = errors.New("malformed response")
	// errCallerGone marks a call abandoned because the caller's context ended.
	errCallerGone = errors.New("caller context done")
)

// statusError is returned for non-2xx upstream responses.
type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

// payload is the subset of the OMDb title response we consume.
type payload struct {
	Response   string `json:"Response"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
	Error      string `json:"Error"`
}

// Config holds the OMDb client settings.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	PlaceholderPoster string

	// RatePerSec <= 0 disables outbound rate limiting.
	RatePerSec float64
	Burst      int

	// BreakerFailures is the consecutive-failure count that opens the circuit; 0 disables tripping.
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client fetches poster and rating metadata from OMDb.
type Client struct {
	apiKey      string
	baseURL     string
	timeout     time.Duration
	placeholder string
	http        *http.Client
	limiter     *rate.Limiter
	cb          *gobreaker.CircuitBreaker[*payload]
	logger      *zap.Logger
}

// NewClient creates an OMDb client. A missing API key puts the client in degraded mode.
func NewClient(cfg *Config) *Client {
	c := &Client{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		timeout:     cfg.Timeout,
		placeholder: cfg.PlaceholderPoster,
		http:        cfg.HTTPClient,
		logger:      cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.placeholder == "" {
		c.placeholder = domain.DefaultPlaceholderPoster
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	c.cb = newBreaker(cfg.BreakerFailures, cfg.BreakerTimeout, c.logger)

	if c.apiKey == "" {
		c.logger.Warn("OMDb API key is missing, metadata runs in degraded mode")
	}
	return c
}

func newBreaker(failures uint32, timeout time.Duration, logger *zap.Logger) *gobreaker.CircuitBreaker[*payload] {
	name := providerName + "-api"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[*payload](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return failures > 0 && counts.ConsecutiveFailures >= failures
		},
		// A body we cannot parse means the provider answered, and a caller
		// that went away says nothing about the provider. Only transport and
		// HTTP status failures, per-call timeouts included, count against the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, errMalformed) ||
				errors.Is(err, errCallerGone) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
}

// Fetch implements recommend.MetadataFetcher.
func (c *Client) Fetch(ctx context.Context, title string) domain.Metadata {
	degraded := domain.Degraded(c.placeholder)

	if c.apiKey == "" {
		c.logger.Debug("skipping metadata fetch, no API key", zap.String("title", title))
		c.record(metrics.OutcomeDisabled)
		return degraded
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.logger.Warn("metadata rate limit wait aborted", zap.String("title", title), zap.Error(err))
			c.record(metrics.OutcomeRateLimited)
			return degraded
		}
	}

	p, err := c.cb.Execute(func() (*payload, error) {
		p, err := c.get(ctx, title)
		if err != nil && ctx.Err() != nil {
			// Only the per-call timeout inside get counts against the provider.
			return nil, fmt.Errorf("%w: %w", errCallerGone, err)
		}
		return p, err
	})
	if err != nil {
		outcome := classify(err)
		c.record(outcome)
		if outcome == metrics.OutcomeCanceled {
			c.logger.Debug("metadata request abandoned by caller", zap.String("title", title), zap.Error(err))
			return degraded
		}
		c.logger.Warn("metadata request failed",
			zap.String("title", title),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return degraded
	}

	if p.Response != "True" {
		c.logger.Warn("OMDb API error", zap.String("title", title), zap.String("error", p.Error))
		c.record(metrics.OutcomeNotFound)
		return degraded
	}

	md := domain.Metadata{Poster: p.Poster, RawRating: p.IMDbRating}
	if md.Poster == "" || md.Poster == domain.NotAvailable {
		md.Poster = c.placeholder
	}
	if md.RawRating == "" {
		md.RawRating = domain.NotAvailable
	}
	c.record(metrics.OutcomeSuccess)
	return md
}

// HealthCheck reports whether metadata can currently be fetched. It makes no upstream call
// so that health probes do not spend the provider quota.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.apiKey == "" {
		return domain.ErrMetadataDisabled
	}
	if c.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: circuit open", domain.ErrMetadataUnavailable)
	}
	return nil
}

func (c *Client) get(ctx context.Context, title string) (*payload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(title), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.MetadataRequestDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode}
	}

	var p payload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformed, err)
	}
	return &p, nil
}

// requestURL builds {base}?t={title}&apikey={key}. QueryEscape encodes spaces as '+'.
func (c *Client) requestURL(title string) string {
	return c.baseURL + "?t=" + url.QueryEscape(title) + "&apikey=" + url.QueryEscape(c.apiKey)
}

func (c *Client) record(outcome string) {
	metrics.MetadataRequestsTotal.WithLabelValues(providerName, outcome).Inc()
}

func classify(err error) string {
	var se *statusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return metrics.OutcomeCircuitOpen
	case errors.Is(err, errCallerGone), errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	case errors.As(err, &se):
		return metrics.OutcomeHTTPStatus
	case errors.Is(err, errMalformed):
		return metrics.OutcomeMalformed
	default:
		return metrics.OutcomeTransport
	}
}
