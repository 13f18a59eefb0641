package scheduler

import "sync"

// failure is a first-error-wins slot shared by all workers.
type failure struct {
	once sync.Once
	err  error
	done chan struct{}
}

func newFailure() *failure {
	return &failure{done: make(chan struct{})}
}

// set records err if no error was recorded before. Later errors are dropped.
func (f *failure) set(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once an error has been recorded.
func (f *failure) Done() <-chan struct{} {
	return f.done
}

// Err returns the recorded error, or nil.
func (f *failure) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}
