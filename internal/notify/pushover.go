// Package notify delivers operator notifications.
//
// The Pushover sink POSTs to the Pushover message API; Noop swallows
// everything and exists so missing credentials degrade to silence instead
// of a fatal error. Delivery is single-attempt: callers treat notify
// failures as log-only.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Melyssali/swap2026/watch"
)

// DefaultEndpoint is the Pushover message API.
const DefaultEndpoint = "https://api.pushover.net/1/messages.json"

// maxBodyRunes is Pushover's message length limit.
const maxBodyRunes = 1024

// Config configures the Pushover sink.
type Config struct {
	UserKey  string
	APIToken string
	// Endpoint overrides the Pushover API URL (tests). Default: DefaultEndpoint.
	Endpoint string
	// Timeout bounds the POST. Default: 10s.
	Timeout time.Duration
}

func (c *Config) defaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// Pushover sends notifications through the Pushover API.
type Pushover struct {
	client *http.Client
	config Config
}

// NewPushover creates a Pushover sink.
func NewPushover(cfg Config) *Pushover {
	cfg.defaults()
	return &Pushover{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
	}
}

// Notify POSTs one message. Urgency maps onto Pushover priorities;
// maximum urgency uses the emergency priority, which repeats on the
// operator's device until acknowledged or expired.
func (p *Pushover) Notify(ctx context.Context, n watch.Notification) error {
	form := url.Values{}
	form.Set("token", p.config.APIToken)
	form.Set("user", p.config.UserKey)
	form.Set("title", n.Title)
	form.Set("message", truncateRunes(n.Body, maxBodyRunes))
	form.Set("priority", strconv.Itoa(priorityFor(n.Urgency)))

	if n.URL != "" {
		form.Set("url", n.URL)
		form.Set("url_title", "Ouvrir le site")
	}
	if n.Urgency == watch.UrgencyMax {
		// Emergency priority requires retry/expire.
		form.Set("retry", "60")
		form.Set("expire", "3600")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("notify: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: status %d", resp.StatusCode)
	}
	return nil
}

func priorityFor(u watch.Urgency) int {
	switch u {
	case watch.UrgencyMax:
		return 2
	case watch.UrgencyElevated, watch.UrgencyProblem:
		return 1
	default:
		return 0
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
