package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/jpalmerr/livecheck/internal/fetch"
	"github.com/jpalmerr/livecheck/internal/store"
)

// work runs one fetch-and-classify attempt for name.
//
// A non-transient fetch error is recorded in the failure slot and returned;
// the table entry is left as it was so the final render shows where the run
// stopped.
func (s *Scheduler) work(ctx context.Context, name string) error {
	s.table.Transition(name, store.StateChecking, "", s.clock.Now())

	start := s.clock.Now()
	content, err := s.fetcher.Fetch(ctx, name)
	s.metrics.ObserveFetch(s.clock.Since(start).Seconds())

	if err != nil {
		if !errors.Is(err, fetch.ErrTransient) {
			s.metrics.IncFetchError("fatal")
			s.logger.Warn("fatal fetch error", "name", name, "error", err)
			s.failure.set(err)
			return err
		}
		s.metrics.IncFetchError("transient")
		s.logger.Debug("fetch timed out", "name", name, "error", err)
		content = nil
	}

	outcome := s.safeClassify(name, content)
	now := s.clock.Now()

	switch outcome.Verdict {
	case Live:
		s.table.Transition(name, store.StateLive, outcome.Tag, now)
		s.metrics.IncOutcome(string(store.StateLive))
	case Offline:
		s.table.Transition(name, store.StateOffline, "", now)
		s.metrics.IncOutcome(string(store.StateOffline))
	default:
		s.table.Transition(name, store.StateRetrying, "", now)
		s.retries.Schedule(name, now.Add(s.cfg.RetryInterval))
		s.metrics.IncOutcome(string(store.StateRetrying))
	}

	s.logger.Debug("check completed", "name", name, "verdict", outcome.Verdict.String())
	return nil
}

// safeClassify calls the classifier with panic recovery.
// A panic is logged with a correlation ID and treated as [Ambiguous].
func (s *Scheduler) safeClassify(name string, content []byte) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("classifier panic",
				"correlation_id", correlationID,
				"name", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			outcome = Outcome{Verdict: Ambiguous}
		}
	}()
	return s.classify(name, content)
}
