package scheduler

import "time"

const rateWindow = time.Second

// fixedWindow counts dispatches inside the current window. The window resets
// rather than decays, so a burst straddling a boundary is allowed.
//
// Owned by the dispatcher goroutine; not safe for concurrent use.
type fixedWindow struct {
	limit  int
	length time.Duration
	start  time.Time
	count  int
}

func newFixedWindow(limit int, length time.Duration, now time.Time) *fixedWindow {
	return &fixedWindow{limit: limit, length: length, start: now}
}

// refresh starts a new window at now if the current one has expired.
func (w *fixedWindow) refresh(now time.Time) {
	if now.Sub(w.start) >= w.length {
		w.start = now
		w.count = 0
	}
}

func (w *fixedWindow) allow() bool {
	return w.count < w.limit
}

func (w *fixedWindow) record() {
	w.count++
}
