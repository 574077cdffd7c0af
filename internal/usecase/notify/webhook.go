package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"car-scout/internal/domain/entity"
	"car-scout/internal/resilience/circuitbreaker"
	"car-scout/internal/resilience/retry"
)

// WebhookChannel delivers listing batches to an HTTP endpoint as JSON POSTs.
// It is the channel used by the standalone worker, where no client connection
// exists to stream over.
type WebhookChannel struct {
	url         string
	client      *http.Client
	limiter     *rate.Limiter
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

// webhookPayload is the wire shape of one delivery.
type webhookPayload struct {
	NewListings []entity.Listing `json:"new_listings"`
}

// NewWebhookChannel creates a webhook channel posting to url. A nil client
// selects a default with a 10 second timeout.
func NewWebhookChannel(url string, client *http.Client) *WebhookChannel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookChannel{
		url:         url,
		client:      client,
		limiter:     rate.NewLimiter(rate.Limit(1), 3),
		breaker:     circuitbreaker.New(circuitbreaker.WebhookConfig("webhook")),
		retryConfig: retry.WebhookConfig(),
	}
}

// Name implements Channel.
func (c *WebhookChannel) Name() string { return "webhook" }

// Done implements Channel. Webhooks never disconnect on their own.
func (c *WebhookChannel) Done() <-chan struct{} { return nil }

// Push implements Channel. The whole batch is sent as a single POST.
func (c *WebhookChannel) Push(ctx context.Context, listings []entity.Listing) error {
	body, err := json.Marshal(webhookPayload{NewListings: listings})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limit wait: %w", err)
	}

	return retry.WithBackoff(ctx, c.retryConfig, func() error {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.post(ctx, body)
		})
		return err
	})
}

func (c *WebhookChannel) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("webhook delivery rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(msg)))
		return &retry.HTTPError{StatusCode: resp.StatusCode, Message: "webhook delivery failed"}
	}
	return nil
}

var _ Channel = (*WebhookChannel)(nil)
