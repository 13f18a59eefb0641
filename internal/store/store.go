package store

import "time"

// State is the lifecycle state of a checked name.
type State string

const (
	// StateWaiting means the name has not been dispatched yet.
	StateWaiting State = "waiting"

	// StateChecking means a worker is fetching and classifying the name.
	StateChecking State = "checking"

	// StateLive means the channel is broadcasting. Terminal.
	StateLive State = "live"

	// StateOffline means the channel exists but is not broadcasting. Terminal.
	StateOffline State = "offline"

	// StateRetrying means the last attempt was ambiguous and the name is
	// waiting out its backoff interval.
	StateRetrying State = "retrying"

	// StateNotFound means the retry budget was exhausted without a
	// definitive answer. Terminal.
	StateNotFound State = "not_found"
)

// Terminal reports whether s is a state that never changes again.
func (s State) Terminal() bool {
	switch s {
	case StateLive, StateOffline, StateNotFound:
		return true
	default:
		return false
	}
}

// Entry is the current status of a single name.
//
// Entry is optimized for JSON serialization (used by the REST API and SSE).
type Entry struct {
	// Name is the checked channel name.
	Name string `json:"name"`

	// State is the current lifecycle state.
	State State `json:"state"`

	// Tag is a short description extracted from a live page.
	// Empty unless State is [StateLive].
	Tag string `json:"tag,omitempty"`

	// Attempts is the number of times the name has been dispatched.
	Attempts int `json:"attempts"`

	// UpdatedAt is the time of the last state transition.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the read-only view of the status table.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Snapshot returns a copy of every entry in registration order.
	Snapshot() []Entry

	// Subscribe returns a channel that receives every applied update.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Entry

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Entry)
}
