// Package fetch implements the single-attempt HTTP page fetch.
//
// One GET with a fixed browser User-Agent and a bounded timeout. There is
// no retry, no backoff and no conditional GET: the caller decides what a
// failure means, and every transport problem (non-2xx status, timeout,
// DNS failure) collapses into one error kind.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config configures the fetcher.
type Config struct {
	// Timeout bounds the whole request. Default: 30s.
	Timeout time.Duration
	// MaxBytes bounds the response body. Default: 10MB.
	MaxBytes int64
	// UserAgent sent with requests. Default: a desktop browser string —
	// some of the monitored sites serve a stub page to unknown agents.
	UserAgent string
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	}
}

// Fetcher performs bounded HTTP GETs.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
	}
}

// Fetch retrieves the raw body of url. Any status outside 2xx–3xx is an
// error; redirects are followed by the client before that check applies.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
