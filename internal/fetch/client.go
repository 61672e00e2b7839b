// Package fetch issues classified, politely paced HTTP GETs against
// product pages. Each call is a single attempt; retry policy belongs to
// the caller (see internal/resilience).
package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pricedrop/tracker-cli/internal/resilience"
)

// maxBodyBytes caps how much of a response is read. Product pages are
// single-digit megabytes at worst.
const maxBodyBytes = 20 << 20

// Options configures the HTTP client.
type Options struct {
	// Timeout bounds one whole attempt including body read. Default: 15s.
	Timeout time.Duration

	// PerHostRPS paces requests per host. Zero or negative disables pacing.
	PerHostRPS float64

	// Burst is the limiter burst size. Default: 1.
	Burst int
}

// Getter is the fetch capability the tracking engine depends on.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Client fetches pages with rotating browser fingerprints and per-host
// request pacing.
type Client struct {
	http *http.Client
	opts Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a Client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the pacing limiter for a host, creating it on first
// sight so every host of the tracked list gets its own budget.
func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[host]
	if !ok {
		limit := rate.Inf
		if c.opts.PerHostRPS > 0 {
			limit = rate.Limit(c.opts.PerHostRPS)
		}
		lim = rate.NewLimiter(limit, c.opts.Burst)
		c.limiters[host] = lim
	}
	return lim
}

// Get performs one GET against rawURL and returns the body on a usable 200.
// Every non-2xx status, network failure, and bot-challenge page comes back
// as a transient error carrying a classified reason; only an unparseable
// URL is permanent. Retry budgets are the caller's concern.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		if err == nil {
			err = eris.Errorf("no host in %q", rawURL)
		}
		return nil, eris.Wrapf(err, "fetch: parse url %q", rawURL)
	}

	if err := c.limiterFor(u.Host).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: build request for %s", rawURL)
	}
	fp := pickFingerprint()
	req.Header.Set("User-Agent", fp.UserAgent)
	req.Header.Set("Accept", fp.Accept)
	req.Header.Set("Accept-Language", fp.Language)
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	// Accept-Encoding is left to the transport so gzip decoding stays
	// automatic.

	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Warn("fetch attempt failed",
			zap.String("url", rawURL),
			zap.String("reason", networkReason(err)),
			zap.Error(err),
		)
		return nil, eris.Wrapf(err, "fetch: get %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resilience.NewTransientError(
			eris.Wrapf(err, "fetch: read body from %s", rawURL), resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		reason := StatusReason(resp.StatusCode)
		zap.L().Warn("fetch got unexpected status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.String("reason", reason),
		)
		return nil, resilience.NewTransientError(
			eris.Errorf("fetch: %s (HTTP %d) from %s", reason, resp.StatusCode, u.Host),
			resp.StatusCode)
	}

	if blocked, kind := DetectBlock(body); blocked {
		zap.L().Warn("fetch got bot challenge page",
			zap.String("url", rawURL),
			zap.String("block", string(kind)),
		)
		return nil, resilience.NewTransientError(
			eris.Errorf("fetch: bot challenge (%s) from %s", kind, u.Host), resp.StatusCode)
	}

	return body, nil
}

// StatusReason maps an HTTP status to the operator-facing reason used in
// logs and journal entries.
func StatusReason(status int) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "service unavailable (likely blocking)"
	case http.StatusTooManyRequests:
		return "rate limited"
	case http.StatusForbidden:
		return "bot detection"
	case http.StatusNotFound:
		return "page not found"
	default:
		if text := http.StatusText(status); text != "" {
			return text
		}
		return "unexpected status"
	}
}

// networkReason condenses a transport error into a short reason label.
func networkReason(err error) string {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return "timeout"
	}
	return "connection failure"
}
