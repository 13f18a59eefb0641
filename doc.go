// Package livecheck checks whether a list of streaming channels is live.
//
// Each name is fetched from the channel site and the page is classified as
// live, offline or inconclusive. Inconclusive names are retried a bounded
// number of times before they are reported as not found. Checks run
// concurrently under three limits: the number of checks in flight, the
// number of checks started per one-second window, and the number of
// attempts per name.
//
// # Quick Start
//
//	c, _ := livecheck.New([]string{"alice", "bob"})
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	c.Run(ctx) // blocks until every name is decided or ctx is cancelled
//
// Progress is printed as a table, one row per name:
//
//	alice:	Live	Speedrunning any%
//	bob:  	Offline
//
// # Configuration
//
// livecheck uses the functional options pattern for configuration:
//
//	c, err := livecheck.New(names,
//	    livecheck.WithMaxWorkers(4),
//	    livecheck.WithMaxRequestsPerSecond(10),
//	    livecheck.WithRetryLimit(3),
//	    livecheck.WithRetryInterval(2 * time.Second),
//	    livecheck.WithListenAddr(":8080"),
//	)
//
// # Classifiers
//
// A [Classifier] turns a fetched page into an [Outcome]. Built-in
// classifiers:
//
//   - [LiveMarkerClassifier]: Live when the page contains a marker, with the stream title as tag
//   - [NameMentionClassifier]: Offline when the page mentions the channel name
//   - [FirstMatch]: Tries multiple classifiers in order, returning the first non-ambiguous result
//   - [DefaultClassifier]: The live marker, then the name mention
//
// # Errors
//
// A fetch that times out is retried like an inconclusive page. Any other
// connectivity failure stops the run: checks in flight finish, the final
// table is rendered and [Checker.Run] returns a [*FatalError] carrying a
// process exit code.
//
// # Architecture
//
//   - internal/scheduler: Dispatcher loop, rate window, retry register
//   - internal/store: Status table with write-once terminal states and pub/sub
//   - internal/fetch: HTTP and headless browser page fetchers
//   - internal/metrics: Prometheus collectors
//   - internal/server: Optional status API, Server-Sent Events and /metrics
//   - dashboard: Embedded status page
package livecheck
