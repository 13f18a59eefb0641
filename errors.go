package livecheck

import (
	"github.com/jpalmerr/livecheck/internal/fetch"
	"github.com/jpalmerr/livecheck/internal/scheduler"
)

// Exit codes carried by [FatalError].
const (
	// ExitNoHost reports that a channel host could not be resolved.
	ExitNoHost = fetch.ExitNoHost

	// ExitUnavailable reports any other connectivity failure.
	ExitUnavailable = fetch.ExitUnavailable
)

// ErrTransient marks a fetch failure that is retried rather than fatal.
// Custom [Fetcher] implementations wrap it for timeouts.
var ErrTransient = fetch.ErrTransient

// ErrAlreadyStarted is returned when [Checker.Run] is called more than once.
var ErrAlreadyStarted = scheduler.ErrAlreadyStarted

// FatalError is a connectivity failure that stopped the run. Its ExitCode
// method returns [ExitNoHost] or [ExitUnavailable].
type FatalError = fetch.FatalError
