package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Exit codes carried by [FatalError], following sysexits.h.
const (
	ExitNoHost      = 68
	ExitUnavailable = 69
)

// ErrTransient reports a fetch that timed out. The caller should treat the
// content as empty and retry.
var ErrTransient = errors.New("transient fetch failure")

// FatalError reports a connectivity failure that must stop the run.
type FatalError struct {
	// Name is the channel whose fetch failed.
	Name string

	// Code is the process exit code conveyed by the failure.
	Code int

	// Hint is a short user-facing suggestion, may be empty.
	Hint string

	Err error
}

func (e *FatalError) Error() string {
	msg := fmt.Sprintf("fetch %s: %v", e.Name, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this failure.
func (e *FatalError) ExitCode() int {
	return e.Code
}

// classifyError maps a transport error to [ErrTransient] or [*FatalError].
func classifyError(name string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("%w: %s: %v", ErrTransient, name, err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &FatalError{
			Name: name,
			Code: ExitNoHost,
			Hint: "check your network connection",
			Err:  err,
		}
	}

	return &FatalError{Name: name, Code: ExitUnavailable, Err: err}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
