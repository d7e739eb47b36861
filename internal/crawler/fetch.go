package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders the page in headless Chrome and returns the
// resulting DOM. Use it when the plain client is blocked.
type BrowserFetcher struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
	// WaitSelector must be visible before the DOM is captured.
	WaitSelector string
}

// NewBrowserFetcher returns a fetcher that waits for the notice list container.
func NewBrowserFetcher(url, userAgent string, timeout time.Duration) *BrowserFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &BrowserFetcher{
		URL:          url,
		UserAgent:    userAgent,
		Timeout:      timeout,
		WaitSelector: listSelector,
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.UserAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, f.Timeout)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(f.URL),
		chromedp.WaitReady(f.WaitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return nil, &FetchError{URL: f.URL, Err: fmt.Errorf("render page: %w", err)}
	}
	return []byte(htmlContent), nil
}
