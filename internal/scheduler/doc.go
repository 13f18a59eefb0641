// Package scheduler drives a livecheck run to completion.
//
// This package is internal to livecheck. It turns a static list of names into
// a continuously-updated status table under three constraints: a cap on
// concurrently running workers, a cap on dispatches per one-second window,
// and a bounded number of attempts per name separated by a fixed backoff.
//
// The main components are:
//
//   - [Scheduler]: the dispatcher loop and worker launcher
//   - [Register]: names waiting out their backoff interval
//   - [Fetcher] and [Classifier]: collaborators invoked by each worker
//   - [Outcome]: result of classifying one fetched page
//
// Time is read from an injected [clockwork.Clock] so runs can be driven by a
// fake clock in tests.
//
// Users of the livecheck library should not need to interact with this
// package directly. Configuration is done through the main livecheck package.
package scheduler
