package livecheck

import (
	"time"

	"github.com/jpalmerr/livecheck/internal/scheduler"
	"github.com/jpalmerr/livecheck/internal/store"
)

// State is the lifecycle state of a checked name.
//
// A name starts [StateWaiting], moves to [StateChecking] while a worker
// handles it, and ends in one of the terminal states [StateLive],
// [StateOffline] or [StateNotFound]. Between attempts it sits in
// [StateRetrying].
type State string

const (
	// StateWaiting means the name has not been dispatched yet.
	StateWaiting State = "waiting"

	// StateChecking means a fetch for the name is in flight.
	StateChecking State = "checking"

	// StateLive means the channel is broadcasting.
	StateLive State = "live"

	// StateOffline means the channel exists but is not broadcasting.
	StateOffline State = "offline"

	// StateRetrying means the last attempt was inconclusive and the name is
	// waiting to be dispatched again.
	StateRetrying State = "retrying"

	// StateNotFound means every attempt was inconclusive.
	StateNotFound State = "not_found"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Terminal reports whether s is final for the run.
func (s State) Terminal() bool {
	return store.State(s).Terminal()
}

// Label returns the human-readable label printed by [TableRenderer].
func (s State) Label() string {
	switch s {
	case StateWaiting:
		return "Waiting"
	case StateChecking:
		return "Checking"
	case StateLive:
		return "Live"
	case StateOffline:
		return "Offline"
	case StateRetrying:
		return "Retrying"
	case StateNotFound:
		return "Not found"
	default:
		return string(s)
	}
}

// Entry is the current status of a single name.
type Entry struct {
	// Name is the checked channel name.
	Name string

	// State is the current lifecycle state.
	State State

	// Tag is a short description of the broadcast. Only set for [StateLive],
	// and only when the classifier found one.
	Tag string

	// Attempts is the number of times the name has been dispatched.
	Attempts int

	// UpdatedAt is the time of the last state change.
	UpdatedAt time.Time
}

// Verdict is the decision a [Classifier] makes about one page.
type Verdict int

const (
	// Ambiguous means the page proved neither state; the name is retried.
	Ambiguous Verdict = iota

	// Live means the page shows an active broadcast.
	Live

	// Offline means the page belongs to the channel but shows no broadcast.
	Offline
)

// String returns the verdict name.
func (v Verdict) String() string {
	return toSchedulerVerdict(v).String()
}

// Outcome is the result of classifying one fetched page.
type Outcome struct {
	Verdict Verdict

	// Tag is an optional broadcast description, kept only for [Live].
	Tag string
}

// Classifier decides the [Outcome] for name from the fetched page content.
//
// Classifier must be a pure function: the same inputs always produce the same
// output. Content is nil when the fetch timed out.
//
// # Panic Safety
//
// Classifiers are called within a panic recovery boundary. A panic is logged
// with a correlation ID and the attempt is treated as [Ambiguous].
type Classifier func(name string, content []byte) Outcome

// toSchedulerClassifier adapts a public classifier to the scheduler's type.
func toSchedulerClassifier(c Classifier) scheduler.Classifier {
	return func(name string, content []byte) scheduler.Outcome {
		out := c(name, content)
		return scheduler.Outcome{Verdict: toSchedulerVerdict(out.Verdict), Tag: out.Tag}
	}
}

func toSchedulerVerdict(v Verdict) scheduler.Verdict {
	switch v {
	case Live:
		return scheduler.Live
	case Offline:
		return scheduler.Offline
	default:
		return scheduler.Ambiguous
	}
}

// toPublicEntries converts store entries to the public type.
func toPublicEntries(entries []store.Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{
			Name:      e.Name,
			State:     State(e.State),
			Tag:       e.Tag,
			Attempts:  e.Attempts,
			UpdatedAt: e.UpdatedAt,
		}
	}
	return out
}
