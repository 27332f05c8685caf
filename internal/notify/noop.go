package notify

import (
	"context"

	"github.com/Melyssali/swap2026/watch"
)

// Noop discards notifications. Used when Pushover credentials are not
// configured: monitoring keeps running, notification becomes a no-op.
type Noop struct{}

// Notify always succeeds.
func (Noop) Notify(context.Context, watch.Notification) error { return nil }
