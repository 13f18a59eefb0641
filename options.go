package livecheck

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// Fetcher retrieves the page for a single name.
//
// Fetch must apply its own deadline. A timeout must be reported as an error
// wrapping [ErrTransient]; the attempt is then treated as [Ambiguous]. Any
// other error stops the run and is returned from [Checker.Run].
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// checkerConfig holds mutable state during Checker construction.
type checkerConfig struct {
	maxWorkers           int
	maxRequestsPerSecond int
	retryLimit           int
	retryInterval        time.Duration
	tick                 time.Duration
	fetchTimeout         time.Duration
	baseURL              string
	fetcher              Fetcher
	browser              bool
	classifier           Classifier
	renderer             Renderer
	renderInterval       time.Duration
	output               io.Writer
	logger               *slog.Logger
	clock                clockwork.Clock
	registry             *prometheus.Registry
	listenAddr           string
	title                string
}

// Option is a function that configures a [Checker] during construction.
//
// Options return an error if validation fails.
type Option func(*checkerConfig) error

// WithMaxWorkers sets the maximum number of checks in flight at once.
//
// Defaults to 1, which checks names one after another.
//
// Returns an error if n is zero or negative.
func WithMaxWorkers(n int) Option {
	return func(cfg *checkerConfig) error {
		if n <= 0 {
			return errors.New("max workers must be positive")
		}
		cfg.maxWorkers = n
		return nil
	}
}

// WithMaxRequestsPerSecond sets how many checks may be dispatched in each
// one-second window. Windows are fixed, not sliding, so a burst of up to
// twice the limit can straddle a window boundary.
//
// Defaults to 5.
//
// Returns an error if n is zero or negative.
func WithMaxRequestsPerSecond(n int) Option {
	return func(cfg *checkerConfig) error {
		if n <= 0 {
			return errors.New("max requests per second must be positive")
		}
		cfg.maxRequestsPerSecond = n
		return nil
	}
}

// WithRetryLimit sets the maximum number of attempts per name, counting the
// first. A name still ambiguous after n attempts is reported as
// [StateNotFound].
//
// Defaults to 5.
//
// Returns an error if n is zero or negative.
func WithRetryLimit(n int) Option {
	return func(cfg *checkerConfig) error {
		if n <= 0 {
			return errors.New("retry limit must be positive")
		}
		cfg.retryLimit = n
		return nil
	}
}

// WithRetryInterval sets the minimum delay between an ambiguous attempt and
// the next attempt for the same name.
//
// Defaults to 5 seconds.
//
// Returns an error if the duration is zero or negative.
func WithRetryInterval(d time.Duration) Option {
	return func(cfg *checkerConfig) error {
		if d <= 0 {
			return errors.New("retry interval must be positive")
		}
		cfg.retryInterval = d
		return nil
	}
}

// WithTick sets the dispatcher loop period. Defaults to 100ms.
//
// Returns an error if the duration is zero or negative.
func WithTick(d time.Duration) Option {
	return func(cfg *checkerConfig) error {
		if d <= 0 {
			return errors.New("tick must be positive")
		}
		cfg.tick = d
		return nil
	}
}

// WithFetchTimeout sets the deadline of a single fetch made by the built-in
// fetchers. Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithFetchTimeout(d time.Duration) Option {
	return func(cfg *checkerConfig) error {
		if d <= 0 {
			return errors.New("fetch timeout must be positive")
		}
		cfg.fetchTimeout = d
		return nil
	}
}

// WithBaseURL sets the URL each name is appended to by the built-in
// fetchers. Defaults to [DefaultBaseURL].
//
// Returns an error if the URL is not absolute http or https.
func WithBaseURL(baseURL string) Option {
	return func(cfg *checkerConfig) error {
		u, err := url.Parse(baseURL)
		if err != nil {
			return errors.New("base URL is invalid")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("base URL must use http or https")
		}
		if u.Host == "" {
			return errors.New("base URL must include a host")
		}
		cfg.baseURL = baseURL
		return nil
	}
}

// WithFetcher replaces the built-in HTTP fetcher with f.
//
// Returns an error if f is nil.
func WithFetcher(f Fetcher) Option {
	return func(cfg *checkerConfig) error {
		if f == nil {
			return errors.New("fetcher cannot be nil")
		}
		cfg.fetcher = f
		return nil
	}
}

// WithBrowserFetcher fetches pages with headless Chrome instead of plain
// HTTP, for pages that add the live marker client-side. Chrome must be
// installed. Ignored when [WithFetcher] is also given.
func WithBrowserFetcher() Option {
	return func(cfg *checkerConfig) error {
		cfg.browser = true
		return nil
	}
}

// WithClassifier sets the [Classifier] applied to every fetched page.
// Defaults to [DefaultClassifier].
//
// Returns an error if c is nil.
func WithClassifier(c Classifier) Option {
	return func(cfg *checkerConfig) error {
		if c == nil {
			return errors.New("classifier cannot be nil")
		}
		cfg.classifier = c
		return nil
	}
}

// WithRenderer sets the [Renderer] for progress frames. Defaults to a
// [TableRenderer] on the configured output.
//
// Returns an error if r is nil.
func WithRenderer(r Renderer) Option {
	return func(cfg *checkerConfig) error {
		if r == nil {
			return errors.New("renderer cannot be nil")
		}
		cfg.renderer = r
		return nil
	}
}

// WithRenderInterval sets how often progress is rendered. Defaults to 500ms.
//
// Returns an error if the duration is zero or negative.
func WithRenderInterval(d time.Duration) Option {
	return func(cfg *checkerConfig) error {
		if d <= 0 {
			return errors.New("render interval must be positive")
		}
		cfg.renderInterval = d
		return nil
	}
}

// WithOutput sets the writer used by the default [TableRenderer].
// Defaults to os.Stdout.
//
// Returns an error if w is nil.
func WithOutput(w io.Writer) Option {
	return func(cfg *checkerConfig) error {
		if w == nil {
			return errors.New("output cannot be nil")
		}
		cfg.output = w
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Checker.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *checkerConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock replaces the real clock. Intended for tests that simulate time.
//
// Returns an error if c is nil.
func WithClock(c clockwork.Clock) Option {
	return func(cfg *checkerConfig) error {
		if c == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = c
		return nil
	}
}

// WithMetricsRegistry registers the run's Prometheus collectors on reg.
// If not specified, a private registry is created.
//
// Returns an error if reg is nil.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(cfg *checkerConfig) error {
		if reg == nil {
			return errors.New("metrics registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}

// WithListenAddr serves the status page, the JSON API and metrics on addr
// while the run is in progress. The server is off by default.
//
// Example:
//
//	c, err := livecheck.New(names, livecheck.WithListenAddr(":8080"))
func WithListenAddr(addr string) Option {
	return func(cfg *checkerConfig) error {
		cfg.listenAddr = addr
		return nil
	}
}

// WithTitle sets the status page title. Defaults to "livecheck".
func WithTitle(title string) Option {
	return func(cfg *checkerConfig) error {
		cfg.title = title
		return nil
	}
}
