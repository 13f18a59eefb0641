package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/livecheck/internal/metrics"
	"github.com/jpalmerr/livecheck/internal/store"
)

// ErrAlreadyStarted is returned by [Scheduler.Run] on every call after the first.
var ErrAlreadyStarted = errors.New("scheduler already started")

// Defaults applied to zero [Config] fields.
const (
	DefaultMaxWorkers           = 1
	DefaultMaxRequestsPerSecond = 5
	DefaultRetryLimit           = 5
	DefaultRetryInterval        = 5 * time.Second
	DefaultTick                 = 100 * time.Millisecond
)

// Verdict is the classification of one fetched page.
type Verdict int

const (
	// Ambiguous means neither live nor offline could be determined.
	Ambiguous Verdict = iota
	Live
	Offline
)

// String returns the verdict name used in logs and metrics.
func (v Verdict) String() string {
	switch v {
	case Live:
		return "live"
	case Offline:
		return "offline"
	default:
		return "ambiguous"
	}
}

// Outcome is the result of classifying one fetched page.
type Outcome struct {
	Verdict Verdict

	// Tag is an optional description, used only for [Live].
	Tag string
}

// Classifier decides the [Outcome] for name from fetched content.
//
// This is the scheduler-internal version of the public classifier type.
// Content is nil when the fetch timed out.
type Classifier func(name string, content []byte) Outcome

// Fetcher retrieves the page for a single name.
//
// Fetch must apply its own deadline. A timeout must be reported as an error
// wrapping fetch.ErrTransient; any other error stops the run.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Config holds the scheduling limits for a run.
type Config struct {
	// MaxWorkers is the maximum number of checks in flight.
	MaxWorkers int

	// MaxRequestsPerSecond is the maximum number of dispatches per
	// one-second window.
	MaxRequestsPerSecond int

	// RetryLimit is the maximum number of dispatches per name, counting
	// the first attempt.
	RetryLimit int

	// RetryInterval is the minimum delay between an ambiguous result and
	// the next dispatch of the same name.
	RetryInterval time.Duration

	// Tick is the dispatcher loop period.
	Tick time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = DefaultMaxWorkers
	}
	if c.MaxRequestsPerSecond <= 0 {
		c.MaxRequestsPerSecond = DefaultMaxRequestsPerSecond
	}
	if c.RetryLimit <= 0 {
		c.RetryLimit = DefaultRetryLimit
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}
	return c
}

// Option configures optional [Scheduler] collaborators.
type Option func(*Scheduler)

// WithClock replaces the real clock, for simulated time.
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithMetrics records run metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithFlush registers fn to receive the final table snapshot when the run
// ends, after every worker has finished.
func WithFlush(fn func([]store.Entry)) Option {
	return func(s *Scheduler) {
		s.flush = fn
	}
}

// Scheduler runs the dispatcher loop for a single run.
//
// The dispatcher alone owns the pending queue, the per-name attempt
// counters and the rate window. Workers share only the status table, the
// retry [Register] and the failure slot with it.
type Scheduler struct {
	cfg      Config
	table    *store.Table
	fetcher  Fetcher
	classify Classifier
	logger   *slog.Logger
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	flush    func([]store.Entry)

	retries  *Register
	failure  *failure
	inFlight atomic.Int64

	mu      sync.Mutex
	started bool

	// onDispatch observes every dispatch; set by tests.
	onDispatch func(name string, attempt int, at time.Time)
}

// New creates a [Scheduler] for every name registered in table.
//
// Zero fields in cfg take their package defaults. The run starts with
// [Scheduler.Run].
func New(cfg Config, table *store.Table, fetcher Fetcher, classify Classifier, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:      cfg.withDefaults(),
		table:    table,
		fetcher:  fetcher,
		classify: classify,
		logger:   logger,
		clock:    clockwork.NewRealClock(),
		retries:  NewRegister(),
		failure:  newFailure(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective limits, with defaults applied.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Run dispatches checks until every name is terminal, ctx is cancelled, or a
// worker reports a fatal fetch error.
//
// On cancellation no further checks are dispatched and pending backoffs are
// abandoned, but workers already running finish their attempt. Run then
// flushes the final snapshot and returns the first fatal error, ctx.Err() if
// the run was interrupted, or nil.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	// workers outlive cancellation; the fetch deadline bounds them
	workCtx := context.WithoutCancel(ctx)

	var workers errgroup.Group
	workers.SetLimit(s.cfg.MaxWorkers)

	entries := s.table.Snapshot()
	pending := make([]string, 0, len(entries))
	for _, e := range entries {
		pending = append(pending, e.Name)
	}
	attempts := make(map[string]int, len(pending))
	window := newFixedWindow(s.cfg.MaxRequestsPerSecond, rateWindow, s.clock.Now())

	interrupted := false
	for {
		// stop before touching the register so every retrying name keeps its record
		if s.failure.Err() != nil {
			break
		}
		if ctx.Err() != nil {
			interrupted = true
			break
		}

		now := s.clock.Now()
		window.refresh(now)

		for _, name := range s.retries.PopExpired(now) {
			if attempts[name] >= s.cfg.RetryLimit {
				s.table.Transition(name, store.StateNotFound, "", now)
				s.metrics.IncOutcome(string(store.StateNotFound))
				s.logger.Debug("retry budget exhausted", "name", name, "attempts", attempts[name])
				continue
			}
			pending = append(pending, name)
		}
		s.metrics.SetRetryBacklog(s.retries.Len())

		pending = s.dispatch(workCtx, &workers, pending, attempts, window, now)

		// inFlight first: a finished worker has already written its retry record
		if s.inFlight.Load() == 0 && s.retries.Len() == 0 && len(pending) == 0 {
			break
		}

		select {
		case <-ctx.Done():
		case <-s.failure.Done():
		case <-s.clock.After(s.cfg.Tick):
		}
	}

	if interrupted || s.failure.Err() != nil {
		s.logger.Info("run stopping",
			"pending", len(pending),
			"retrying", s.retries.Len(),
			"in_flight", s.inFlight.Load(),
		)
	}

	_ = workers.Wait() // the failure slot holds the first error

	if s.flush != nil {
		s.flush(s.table.Snapshot())
	}

	if err := s.failure.Err(); err != nil {
		return err
	}
	if interrupted {
		return ctx.Err()
	}
	return nil
}

// dispatch launches workers from the head of pending while a worker slot is
// free and the rate window allows. It returns the names left pending.
func (s *Scheduler) dispatch(ctx context.Context, workers *errgroup.Group, pending []string, attempts map[string]int, window *fixedWindow, now time.Time) []string {
	for len(pending) > 0 {
		if !window.allow() {
			s.metrics.IncRateLimited()
			break
		}

		name := pending[0]
		attempts[name]++
		s.table.SetAttempts(name, attempts[name])

		s.inFlight.Add(1)
		s.metrics.IncInFlight()
		launched := workers.TryGo(func() error {
			defer func() {
				s.inFlight.Add(-1)
				s.metrics.DecInFlight()
			}()
			return s.work(ctx, name)
		})
		if !launched {
			s.inFlight.Add(-1)
			s.metrics.DecInFlight()
			attempts[name]--
			s.table.SetAttempts(name, attempts[name])
			break
		}

		pending = pending[1:]
		window.record()
		s.metrics.IncDispatches()
		s.logger.Debug("check dispatched", "name", name, "attempt", attempts[name])
		if s.onDispatch != nil {
			s.onDispatch(name, attempts[name], now)
		}
	}
	return pending
}
