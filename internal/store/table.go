package store

import (
	"sync"
	"time"
)

const subscriberBuffer = 100

// Table is the in-memory status table shared by the dispatcher and workers.
//
// Every read-modify-write happens under a single mutex, so updates to one
// name are totally ordered and readers never observe a torn entry. Across
// names there is no ordering guarantee.
type Table struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Entry

	subMu       sync.RWMutex
	subscribers map[chan Entry]struct{}
}

// NewTable creates a [Table] with every name registered as [StateWaiting].
//
// Snapshot order follows the order of names. Duplicate names share a single
// entry, registered at the position of their first occurrence.
func NewTable(names []string, now time.Time) *Table {
	t := &Table{
		order:       make([]string, 0, len(names)),
		entries:     make(map[string]Entry, len(names)),
		subscribers: make(map[chan Entry]struct{}),
	}
	for _, name := range names {
		if _, ok := t.entries[name]; ok {
			continue
		}
		t.order = append(t.order, name)
		t.entries[name] = Entry{Name: name, State: StateWaiting, UpdatedAt: now}
	}
	return t
}

// Transition moves name to state, recording tag and the transition time.
//
// Transition returns false without changing anything when the name is
// unknown or its current state is terminal. The tag is kept only for
// [StateLive].
func (t *Table) Transition(name string, state State, tag string, at time.Time) bool {
	return t.update(name, func(e *Entry) {
		e.State = state
		e.Tag = ""
		if state == StateLive {
			e.Tag = tag
		}
		e.UpdatedAt = at
	})
}

// SetAttempts records the dispatch count for name.
// Returns false when the name is unknown or terminal.
func (t *Table) SetAttempts(name string, attempts int) bool {
	return t.update(name, func(e *Entry) {
		e.Attempts = attempts
	})
}

func (t *Table) update(name string, mutate func(*Entry)) bool {
	t.mu.Lock()
	e, ok := t.entries[name]
	if !ok || e.State.Terminal() {
		t.mu.Unlock()
		return false
	}
	mutate(&e)
	t.entries[name] = e
	t.mu.Unlock()

	t.notifySubscribers(e)
	return true
}

// Snapshot returns a copy of every entry in registration order.
func (t *Table) Snapshot() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.entries[name])
	}
	return out
}

// Subscribe creates a new subscription and returns a channel for receiving
// updates. The channel has a buffer of 100 entries; when it fills, new
// updates are dropped for this subscriber.
func (t *Table) Subscribe() <-chan Entry {
	ch := make(chan Entry, subscriberBuffer)

	t.subMu.Lock()
	t.subscribers[ch] = struct{}{}
	t.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (t *Table) Unsubscribe(ch <-chan Entry) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	for subCh := range t.subscribers {
		if subCh == ch {
			delete(t.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends e to every subscriber without blocking.
func (t *Table) notifySubscribers(e Entry) {
	t.subMu.RLock()
	defer t.subMu.RUnlock()

	for ch := range t.subscribers {
		select {
		case ch <- e:
		default:
			// slow subscriber, drop
		}
	}
}
