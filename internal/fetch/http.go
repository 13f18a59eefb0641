package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; every request goes to the same host, so the
// per-host pool is sized to the worker count by [WithMaxConns]
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

const defaultUserAgent = "livecheck/1.0"

// HTTPOption configures an [HTTPFetcher].
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the pooled default client.
// The client should not set its own Timeout; the fetcher applies one per request.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.httpClient = c
	}
}

// WithMaxConns sizes the per-host connection pool for n concurrent fetches.
// Ignored when [WithHTTPClient] is given. Without it the number of
// connections is not limited.
func WithMaxConns(n int) HTTPOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxConns = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// HTTPFetcher retrieves channel pages over plain HTTP.
//
// Each request has its own timeout applied via context. Response bodies are
// limited to 1MB. Non-2xx responses are returned as content; interpreting
// them is the classifier's job.
type HTTPFetcher struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	userAgent  string
	maxConns   int
}

// NewHTTPFetcher creates an [HTTPFetcher] that fetches baseURL/<name>.
//
// Connection pooling configuration:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10, or the [WithMaxConns] value
//   - MaxConnsPerHost: unlimited, or the [WithMaxConns] value
//   - IdleConnTimeout: 60 seconds before closing idle connections
//
// A fetch never waits for a pooled connection when the pool is sized to the
// worker count, so the timeout covers only the request itself.
func NewHTTPFetcher(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   timeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.httpClient == nil {
		idlePerHost := defaultMaxIdleConnsPerHost
		if f.maxConns > 0 {
			idlePerHost = f.maxConns
		}
		f.httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: idlePerHost,
				MaxConnsPerHost:     f.maxConns,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		}
	}
	return f
}

// URL returns the page address fetched for name.
func (f *HTTPFetcher) URL(name string) string {
	return f.baseURL + "/" + url.PathEscape(name)
}

// Fetch retrieves the page for name.
//
// A timeout yields an error wrapping [ErrTransient]. Any other transport
// failure yields a [*FatalError].
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(name), nil)
	if err != nil {
		return nil, &FatalError{Name: name, Code: ExitUnavailable, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, classifyError(name, fmt.Errorf("failed to read response body: %w", err))
	}
	return body, nil
}

// Close closes idle connections in the pool. Safe to call multiple times;
// the fetcher remains usable afterwards.
func (f *HTTPFetcher) Close() {
	if f == nil || f.httpClient == nil {
		return
	}
	f.httpClient.CloseIdleConnections()
}
