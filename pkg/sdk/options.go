package cinematch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	source    string // "file" or "redis"
	path      string
	addrs     []string
	password  string
	key       string
	readiness time.Duration

	omdbKey     string
	omdbBaseURL string
	omdbTimeout time.Duration
	httpClient  *http.Client

	count       int
	concurrency int
	excludeSelf string

	logger     *slog.Logger
	zapLogger  *zap.Logger
	metricsReg prometheus.Registerer
}

// WithCatalogFile loads the similarity artifact from a JSON file, optionally gzip-compressed.
func WithCatalogFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = "file"
		c.path = path
	})
}

// WithCatalogRedis loads the similarity artifact stored under key in Redis or Valkey.
func WithCatalogRedis(addr, password, key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = "redis"
		c.addrs = []string{addr}
		c.password = password
		c.key = key
	})
}

// WithOMDb sets the OMDb API key. Without it metadata runs in degraded mode.
func WithOMDb(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.omdbKey = apiKey
	})
}

// WithOMDbEndpoint overrides the OMDb endpoint and per-request timeout.
// A zero timeout keeps the 10s default.
func WithOMDbEndpoint(baseURL string, timeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.omdbBaseURL = baseURL
		c.omdbTimeout = timeout
	})
}

// WithHTTPClient sets the HTTP client used for metadata requests.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithCount sets how many movies Recommend returns. Default and maximum: 8.
func WithCount(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.count = n
	})
}

// WithFetchConcurrency bounds parallel metadata requests per call. Default: 8.
func WithFetchConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithExcludeSelf selects "position" (skip the top-ranked neighbour, default)
// or "identity" (drop the selected movie wherever it ranks).
func WithExcludeSelf(mode string) Option {
	return optionFunc(func(c *clientConfig) {
		c.excludeSelf = mode
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithZapLogger routes metadata provider diagnostics (upstream failures,
// circuit breaker transitions) to l. Pass nil to disable (default).
func WithZapLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.zapLogger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
