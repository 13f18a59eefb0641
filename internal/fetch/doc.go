// Package fetch provides the content fetchers used by livecheck workers.
//
// A fetcher retrieves the raw page for a single channel name. Fetchers apply
// their own deadline and report failures in two kinds:
//
//   - [ErrTransient]: the fetch timed out; the caller treats the content as
//     ambiguous and retries later
//   - [*FatalError]: connectivity is broken (for example DNS resolution
//     fails); the run must stop and report the error's exit code
//
// The main components are:
//
//   - [HTTPFetcher]: pooled HTTP client with per-request timeouts
//   - [BrowserFetcher]: headless Chrome via chromedp, for pages that render
//     their markers client-side
package fetch
