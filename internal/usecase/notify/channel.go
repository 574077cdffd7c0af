// Package notify provides the per-session watch loop that turns registered
// subscriptions into push notifications for newly discovered listings.
package notify

import (
	"context"

	"car-scout/internal/domain/entity"
)

// Channel is one push transport to a subscriber session.
//
// Thread safety: Push may be called from the scheduler goroutine at any time
// until Done is closed; implementations must tolerate a Push racing the
// disconnect.
type Channel interface {
	// Name identifies the channel kind for logging and metrics.
	Name() string

	// Push delivers one batch of newly discovered listings as a single
	// message. It is never called with an empty batch.
	Push(ctx context.Context, listings []entity.Listing) error

	// Done is closed when the remote side disconnects. A nil channel means
	// the transport never disconnects on its own (e.g. webhooks).
	Done() <-chan struct{}
}
