package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"car-scout/internal/domain/entity"
	"car-scout/internal/handler/http/respond"
	"car-scout/internal/usecase/notify"
)

// SessionRunner drives one watch session over the given channel until the
// context is cancelled or the channel disconnects. In production this is the
// notification scheduler's Run loop.
type SessionRunner func(ctx context.Context, ch notify.Channel)

// NotificationsHandler serves GET /notifications as a Server-Sent Events
// stream. Each event is one JSON batch of newly discovered listings. The
// session ends when the client disconnects.
type NotificationsHandler struct{ Run SessionRunner }

func (h NotificationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.Error(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := &sseChannel{w: w, flusher: flusher, done: r.Context().Done()}
	h.Run(r.Context(), ch)
}

// sseChannel writes listing batches as SSE data frames. All writes happen on
// the request goroutine, which blocks inside the session runner until the
// client goes away.
type sseChannel struct {
	w       http.ResponseWriter
	flusher http.Flusher
	done    <-chan struct{}
}

type ssePayload struct {
	NewListings []entity.Listing `json:"new_listings"`
}

func (c *sseChannel) Name() string { return "sse" }

func (c *sseChannel) Done() <-chan struct{} { return c.done }

func (c *sseChannel) Push(_ context.Context, listings []entity.Listing) error {
	data, err := json.Marshal(ssePayload{NewListings: listings})
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	if _, err := fmt.Fprintf(c.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write notification event: %w", err)
	}
	c.flusher.Flush()
	return nil
}

var _ notify.Channel = (*sseChannel)(nil)
