package livecheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/livecheck/dashboard"
	"github.com/jpalmerr/livecheck/internal/fetch"
	"github.com/jpalmerr/livecheck/internal/metrics"
	"github.com/jpalmerr/livecheck/internal/scheduler"
	"github.com/jpalmerr/livecheck/internal/server"
	"github.com/jpalmerr/livecheck/internal/store"
)

// DefaultBaseURL is the site channel names are appended to.
const DefaultBaseURL = "https://www.twitch.tv"

const (
	defaultFetchTimeout   = 10 * time.Second
	defaultRenderInterval = 500 * time.Millisecond
	defaultTitle          = "livecheck"
)

// Checker checks the live status of a fixed list of channel names.
//
// A Checker is created with [New] and performs a single run with
// [Checker.Run]. While running it renders progress at the configured render
// interval and, when [WithListenAddr] is set, serves the status table over
// HTTP.
//
// The typical lifecycle is:
//
//	c, err := livecheck.New([]string{"alice", "bob"}, livecheck.WithMaxWorkers(4))
//	if err != nil {
//	    slog.Error("failed to create checker", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	if err := c.Run(ctx); err != nil {
//	    ...
//	}
type Checker struct {
	names          []string
	table          *store.Table
	sched          *scheduler.Scheduler
	fetcher        Fetcher
	closeFetcher   func()
	renderer       Renderer
	renderInterval time.Duration
	logger         *slog.Logger
	clock          clockwork.Clock
	registry       *prometheus.Registry
	listenAddr     string
	title          string

	stopRender     chan struct{}
	stopRenderOnce sync.Once
	renderWG       sync.WaitGroup

	mu      sync.Mutex
	started bool
	srv     *server.Server
}

// New creates a [Checker] for names.
//
// Duplicate names are checked once; order is preserved for rendering.
// Defaults:
//   - Max workers: 1
//   - Max requests per second: 5
//   - Retry limit: 5 attempts
//   - Retry interval: 5 seconds
//   - Fetch timeout: 10 seconds
//   - Render interval: 500ms
//   - Classifier: [DefaultClassifier]
//   - Renderer: [TableRenderer] on os.Stdout
//
// Returns an error if names is empty or if any option is invalid.
func New(names []string, opts ...Option) (*Checker, error) {
	cfg := &checkerConfig{
		fetchTimeout:   defaultFetchTimeout,
		baseURL:        DefaultBaseURL,
		classifier:     DefaultClassifier,
		renderInterval: defaultRenderInterval,
		output:         os.Stdout,
		title:          defaultTitle,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(names) == 0 {
		return nil, errors.New("at least one name is required")
	}
	for _, name := range names {
		if name == "" {
			return nil, errors.New("names cannot be empty")
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	registry := cfg.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	renderer := cfg.renderer
	if renderer == nil {
		renderer = NewTableRenderer(cfg.output)
	}

	c := &Checker{
		table:          store.NewTable(names, clock.Now()),
		renderer:       renderer,
		renderInterval: cfg.renderInterval,
		logger:         logger,
		clock:          clock,
		registry:       registry,
		listenAddr:     cfg.listenAddr,
		title:          cfg.title,
		stopRender:     make(chan struct{}),
	}
	for _, e := range c.table.Snapshot() {
		c.names = append(c.names, e.Name)
	}

	switch {
	case cfg.fetcher != nil:
		c.fetcher = cfg.fetcher
		c.closeFetcher = func() {}
	case cfg.browser:
		bf := fetch.NewBrowserFetcher(cfg.baseURL, cfg.fetchTimeout)
		c.fetcher = bf
		c.closeFetcher = bf.Close
	default:
		workers := cfg.maxWorkers
		if workers <= 0 {
			workers = scheduler.DefaultMaxWorkers
		}
		hf := fetch.NewHTTPFetcher(cfg.baseURL, cfg.fetchTimeout, fetch.WithMaxConns(workers))
		c.fetcher = hf
		c.closeFetcher = hf.Close
	}

	c.sched = scheduler.New(
		scheduler.Config{
			MaxWorkers:           cfg.maxWorkers,
			MaxRequestsPerSecond: cfg.maxRequestsPerSecond,
			RetryLimit:           cfg.retryLimit,
			RetryInterval:        cfg.retryInterval,
			Tick:                 cfg.tick,
		},
		c.table,
		c.fetcher,
		toSchedulerClassifier(cfg.classifier),
		logger,
		scheduler.WithClock(clock),
		scheduler.WithMetrics(metrics.New(registry)),
		scheduler.WithFlush(c.finalFrame),
	)

	return c, nil
}

// Run checks every name until each has a terminal state, ctx is cancelled,
// or a fatal fetch error occurs.
//
// Run blocks. On cancellation, checks already in flight are allowed to
// finish, the final table is rendered and ctx.Err() is returned. A fatal
// fetch error is returned as a [*FatalError] after the same drain and final
// render. Run returns nil when every name reached a terminal state.
//
// Run may be called only once; later calls return [ErrAlreadyStarted].
func (c *Checker) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()
	defer c.closeFetcher()

	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID)

	cfg := c.sched.Config()
	logger.Info("livecheck starting",
		"names", len(c.names),
		"max_workers", cfg.MaxWorkers,
		"max_requests_per_second", cfg.MaxRequestsPerSecond,
		"retry_limit", cfg.RetryLimit,
		"retry_interval", cfg.RetryInterval.String(),
	)

	if c.listenAddr != "" {
		serverCtx, stopServer := context.WithCancel(ctx)
		defer stopServer()

		srv := server.NewServer(c.table, c.listenAddr, dashboard.Assets, c.title, c.registry, logger)
		if err := srv.Start(serverCtx); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		c.mu.Lock()
		c.srv = srv
		c.mu.Unlock()
		logger.Info("status page available", "url", "http://"+srv.Addr())
	}

	c.renderWG.Add(1)
	go c.renderLoop()

	err := c.sched.Run(ctx)

	counts := make(map[State]int)
	for _, e := range c.Snapshot() {
		counts[e.State]++
	}
	attrs := []any{
		"live", counts[StateLive],
		"offline", counts[StateOffline],
		"not_found", counts[StateNotFound],
		"unfinished", len(c.names) - counts[StateLive] - counts[StateOffline] - counts[StateNotFound],
	}

	switch {
	case err == nil:
		logger.Info("livecheck finished", attrs...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Info("livecheck interrupted", attrs...)
	default:
		logger.Error("livecheck failed", append(attrs, "error", err)...)
	}
	return err
}

// Snapshot returns the current status of every name in load order.
func (c *Checker) Snapshot() []Entry {
	return toPublicEntries(c.table.Snapshot())
}

// Names returns the names being checked, without duplicates, in load order.
func (c *Checker) Names() []string {
	cp := make([]string, len(c.names))
	copy(cp, c.names)
	return cp
}

// Addr returns the address the status server is bound to, or "" when it is
// not running.
func (c *Checker) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.srv == nil {
		return ""
	}
	return c.srv.Addr()
}

// renderLoop repaints until the final frame is requested.
func (c *Checker) renderLoop() {
	defer c.renderWG.Done()

	ticker := c.clock.NewTicker(c.renderInterval)
	defer ticker.Stop()

	c.render(c.table.Snapshot())
	for {
		select {
		case <-c.stopRender:
			return
		case <-ticker.Chan():
			c.render(c.table.Snapshot())
		}
	}
}

// finalFrame stops the render loop and renders entries, so the last frame
// shown is always the final table.
func (c *Checker) finalFrame(entries []store.Entry) {
	c.stopRenderOnce.Do(func() {
		close(c.stopRender)
	})
	c.renderWG.Wait()
	c.render(entries)
}

func (c *Checker) render(entries []store.Entry) {
	if err := c.safeRender(toPublicEntries(entries)); err != nil {
		c.logger.Warn("render failed", "error", err)
	}
}

// safeRender calls the renderer with panic recovery.
func (c *Checker) safeRender(entries []Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			c.logger.Error("renderer panic", "correlation_id", correlationID, "panic", fmt.Sprintf("%v", r))
			err = fmt.Errorf("renderer panic (correlation_id=%s)", correlationID)
		}
	}()
	return c.renderer.Render(entries)
}
