// Package fetcher provides resilient HTTP retrieval of target pages with
// bounded retries and exponential backoff.
package fetcher

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jonesrussell/plancrawl/internal/logger"
)

// Default configuration values.
const (
	DefaultMaxRetries     = 3
	DefaultTimeout        = 30 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	DefaultBackoffBase    = 1 * time.Second
	DefaultMaxRedirects   = 5
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config configures the fetcher.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// Timeout is the total per-request timeout.
	Timeout time.Duration
	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration
	// BackoffBase is the wait after the first failed attempt; attempt n
	// waits BackoffBase * 2^n.
	BackoffBase time.Duration
	// UserAgent overrides the default browser-like user agent.
	UserAgent string
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     DefaultMaxRetries,
		Timeout:        DefaultTimeout,
		ConnectTimeout: DefaultConnectTimeout,
		BackoffBase:    DefaultBackoffBase,
		UserAgent:      DefaultUserAgent,
	}
}

// Page is a successfully fetched document together with its response
// metadata: the status code and the final URL after redirects.
type Page struct {
	Body       string
	StatusCode int
	FinalURL   string
}

// Fetcher retrieves pages over HTTP with browser-like headers, redirect
// following, and retry with exponential backoff. Concurrent calls share the
// underlying client's connection pool but no other state.
type Fetcher struct {
	client      *resty.Client
	log         logger.Interface
	maxRetries  int
	backoffBase time.Duration
}

// New creates a fetcher from the given configuration.
func New(cfg Config, log logger.Interface) *Fetcher {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetTransport(&http.Transport{
		DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
	})
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(DefaultMaxRedirects))
	client.SetHeaders(map[string]string{
		"User-Agent":      cfg.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5,no;q=0.3",
	})

	return &Fetcher{
		client:      client,
		log:         log,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
	}
}

// Fetch retrieves the page at url, retrying on timeout, transport error, or
// non-200 status. It returns the page with its response metadata and true on
// success, or a zero page and false after exhausting all attempts. Network
// errors never propagate past this boundary.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Page, bool) {
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		resp, err := f.client.R().SetContext(ctx).Get(url)

		switch {
		case err != nil:
			f.log.Warn("fetch attempt failed",
				"url", url,
				"attempt", attempt,
				"error", err.Error(),
			)
		case resp.StatusCode() != http.StatusOK:
			f.log.Warn("fetch attempt returned non-200 status",
				"url", url,
				"attempt", attempt,
				"status", resp.StatusCode(),
			)
		default:
			f.log.Debug("fetch succeeded",
				"url", url,
				"attempt", attempt,
				"status", resp.StatusCode(),
				"bytes", len(resp.Body()),
			)
			return Page{
				Body:       string(resp.Body()),
				StatusCode: resp.StatusCode(),
				FinalURL:   finalURL(resp, url),
			}, true
		}

		// No backoff after the final attempt.
		if attempt < f.maxRetries {
			if !f.sleep(ctx, f.backoffBase<<uint(attempt)) {
				break
			}
		}
	}

	f.log.Error("fetch failed after all attempts", "url", url, "retries", f.maxRetries)
	return Page{}, false
}

// finalURL reports the request URL after any redirects, falling back to the
// requested URL when the raw response carries none.
func finalURL(resp *resty.Response, requested string) string {
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String()
	}
	return requested
}

// sleep waits for d or until the context is cancelled, returning false on
// cancellation.
func (f *Fetcher) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
