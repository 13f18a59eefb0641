// Package server provides the optional HTTP surface of a livecheck run.
//
// This package is internal to livecheck and handles all HTTP concerns:
//
//   - Status page: serves the embedded page at "/"
//   - REST API: JSON snapshot of the status table at "/api/status"
//   - Server-Sent Events: entry updates at "/api/sse"
//   - Metrics: Prometheus exposition at "/metrics"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the livecheck library should not need to interact with this
// package directly. The server is started by [livecheck.Checker.Run] when a
// listen address is configured.
package server
