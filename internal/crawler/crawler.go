package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0 Safari/537.36"
	defaultTimeout = 30 * time.Second
)

// Fetcher returns the raw HTML of the announcement page.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FetchError means the page could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTTPFetcher gets the page with a plain GET request.
type HTTPFetcher struct {
	URL       string
	UserAgent string
	Client    *http.Client
}

// NewHTTPFetcher returns a fetcher with a bounded client timeout.
func NewHTTPFetcher(url, userAgent string, timeout time.Duration) *HTTPFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFetcher{
		URL:       url,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: f.URL, Err: fmt.Errorf("build request: %w", err)}
	}
	// common headers so the request is not rejected as a bot outright
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en;q=0.8")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: f.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: f.URL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// Fetch modes.
const (
	ModeHTTP    = "http"
	ModeBrowser = "browser"
)

// NewFetcher returns the fetcher for mode. An empty mode means ModeHTTP.
func NewFetcher(mode, url, userAgent string, timeout time.Duration) (Fetcher, error) {
	switch mode {
	case "", ModeHTTP:
		return NewHTTPFetcher(url, userAgent, timeout), nil
	case ModeBrowser:
		return NewBrowserFetcher(url, userAgent, timeout), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", mode)
	}
}
