package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders channel pages in headless Chrome.
//
// A single browser process is started lazily on the first fetch; every
// fetch opens its own tab. Call [BrowserFetcher.Close] to terminate the
// browser.
type BrowserFetcher struct {
	baseURL string
	timeout time.Duration

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	startOnce sync.Once
	startErr  error
}

// NewBrowserFetcher creates a [BrowserFetcher] that renders baseURL/<name>.
// Extra allocator options are appended to the headless defaults.
func NewBrowserFetcher(baseURL string, timeout time.Duration, opts ...chromedp.ExecAllocatorOption) *BrowserFetcher {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocOpts = append(allocOpts, opts...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &BrowserFetcher{
		baseURL:       strings.TrimRight(baseURL, "/"),
		timeout:       timeout,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}
}

// URL returns the page address rendered for name.
func (f *BrowserFetcher) URL(name string) string {
	return f.baseURL + "/" + url.PathEscape(name)
}

// Fetch renders the page for name and returns its outer HTML.
//
// A timeout yields an error wrapping [ErrTransient]. Browser start-up
// failures and navigation errors yield a [*FatalError].
func (f *BrowserFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	f.startOnce.Do(func() {
		// running with no actions allocates the browser
		f.startErr = chromedp.Run(f.browserCtx)
	})
	if f.startErr != nil {
		return nil, &FatalError{Name: name, Code: ExitUnavailable, Hint: "is Chrome installed?", Err: f.startErr}
	}

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(f.URL(name)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if tabCtx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTransient, name, err)
		}
		return nil, classifyNavigationError(name, err)
	}
	return []byte(html), nil
}

// classifyNavigationError maps Chrome's net error strings to fetch errors.
func classifyNavigationError(name string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ERR_NAME_NOT_RESOLVED"), strings.Contains(msg, "ERR_INTERNET_DISCONNECTED"):
		return &FatalError{Name: name, Code: ExitNoHost, Hint: "check your network connection", Err: err}
	case strings.Contains(msg, "ERR_TIMED_OUT"), strings.Contains(msg, "ERR_CONNECTION_TIMED_OUT"):
		return fmt.Errorf("%w: %s: %v", ErrTransient, name, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTransient, name, err)
	default:
		return &FatalError{Name: name, Code: ExitUnavailable, Err: err}
	}
}

// Close terminates the browser. Safe to call multiple times.
func (f *BrowserFetcher) Close() {
	if f == nil {
		return
	}
	f.browserCancel()
	f.allocCancel()
}
