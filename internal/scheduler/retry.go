package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Register holds names waiting out their backoff interval, keyed by the
// time they become eligible for dispatch again.
//
// A name has at most one record; scheduling it again replaces the previous
// eligibility time. Register is safe for concurrent use.
type Register struct {
	mu       sync.Mutex
	eligible map[string]time.Time
}

// NewRegister creates an empty [Register].
func NewRegister() *Register {
	return &Register{eligible: make(map[string]time.Time)}
}

// Schedule records that name may be dispatched again at or after at.
func (r *Register) Schedule(name string, at time.Time) {
	r.mu.Lock()
	r.eligible[name] = at
	r.mu.Unlock()
}

// PopExpired removes and returns every name whose eligibility time is at or
// before now, earliest first. Ties are broken by name.
func (r *Register) PopExpired(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	type record struct {
		name string
		at   time.Time
	}
	var expired []record
	for name, at := range r.eligible {
		if !at.After(now) {
			expired = append(expired, record{name: name, at: at})
			delete(r.eligible, name)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	sort.Slice(expired, func(i, j int) bool {
		if !expired[i].at.Equal(expired[j].at) {
			return expired[i].at.Before(expired[j].at)
		}
		return expired[i].name < expired[j].name
	})

	names := make([]string, len(expired))
	for i, rec := range expired {
		names[i] = rec.name
	}
	return names
}

// Len returns the number of names in backoff.
func (r *Register) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.eligible)
}
