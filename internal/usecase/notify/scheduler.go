package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"car-scout/internal/domain/entity"
	"car-scout/internal/observability/metrics"
	"car-scout/internal/repository"
	"car-scout/internal/usecase/search"
	"car-scout/internal/usecase/subscription"
)

// DefaultInterval is the pause between watch ticks.
const DefaultInterval = 60 * time.Second

// Scheduler is the periodic watch loop for one notification session. Each
// tick re-runs the aggregation and criteria matching for every registered
// subscription, persists listings not seen before, and pushes the delta
// through the session's channel as one message.
type Scheduler struct {
	registry    *subscription.Registry
	searchSvc   *search.Service
	listingRepo repository.ListingRepository
	channel     Channel
	interval    time.Duration
}

// NewScheduler creates a scheduler for one session. interval zero selects
// DefaultInterval.
func NewScheduler(
	registry *subscription.Registry,
	searchSvc *search.Service,
	listingRepo repository.ListingRepository,
	channel Channel,
	interval time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		registry:    registry,
		searchSvc:   searchSvc,
		listingRepo: listingRepo,
		channel:     channel,
		interval:    interval,
	}
}

// Run executes the watch loop until ctx is cancelled or the channel signals
// disconnect. The first tick runs immediately; afterwards the loop sleeps for
// the configured interval between ticks. Cancellation is observed during the
// sleep, not only at tick boundaries.
func (s *Scheduler) Run(ctx context.Context) {
	metrics.ActiveWatchSessions.Inc()
	defer metrics.ActiveWatchSessions.Dec()

	slog.Info("watch session started",
		slog.String("channel", s.channel.Name()),
		slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("watch session cancelled", slog.String("channel", s.channel.Name()))
			return
		case <-s.channel.Done():
			slog.Info("watch session disconnected", slog.String("channel", s.channel.Name()))
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one watch pass over the current registry snapshot and pushes the
// delta, if any. It returns the number of new listings delivered. A failure
// for one subscription is logged and skipped; the remaining subscriptions
// still run.
func (s *Scheduler) Tick(ctx context.Context) int {
	tickID := uuid.New().String()
	start := time.Now()

	delta := s.collectDelta(ctx, tickID)
	metrics.RecordWatchTick(time.Since(start))

	if len(delta) == 0 {
		return 0
	}

	if err := s.channel.Push(ctx, delta); err != nil {
		metrics.RecordNotificationPush(s.channel.Name(), len(delta), false)
		slog.Warn("notification push failed",
			slog.String("tick_id", tickID),
			slog.String("channel", s.channel.Name()),
			slog.Int("listings", len(delta)),
			slog.Any("error", err))
		return 0
	}

	metrics.RecordNotificationPush(s.channel.Name(), len(delta), true)
	slog.Info("notification delta pushed",
		slog.String("tick_id", tickID),
		slog.String("channel", s.channel.Name()),
		slog.Int("listings", len(delta)),
		slog.Duration("duration", time.Since(start)))
	return len(delta)
}

// collectDelta gathers the not-yet-persisted matches for every subscription
// in the current snapshot and persists them as it goes. URLs discovered by an
// earlier subscription in the same tick are not reported twice.
func (s *Scheduler) collectDelta(ctx context.Context, tickID string) []entity.Listing {
	var delta []entity.Listing
	seen := make(map[string]struct{})

	for _, sub := range s.registry.Snapshot() {
		if ctx.Err() != nil {
			return delta
		}

		found := s.searchSvc.Find(ctx, sub.Params)

		candidates := make([]entity.Listing, 0, len(found))
		urls := make([]string, 0, len(found))
		for _, l := range found {
			if _, dup := seen[l.URL]; dup {
				continue
			}
			candidates = append(candidates, l)
			urls = append(urls, l.URL)
		}
		if len(candidates) == 0 {
			continue
		}

		stored, err := s.listingRepo.ExistsByURLBatch(ctx, urls)
		if err != nil {
			slog.Warn("existence check failed, skipping subscription",
				slog.String("tick_id", tickID),
				slog.String("target", sub.Target),
				slog.Any("error", err))
			continue
		}

		for i := range candidates {
			listing := candidates[i]
			if stored[listing.URL] {
				continue
			}

			if err := s.listingRepo.Create(ctx, &listing); err != nil {
				slog.Warn("persist failed, skipping subscription",
					slog.String("tick_id", tickID),
					slog.String("target", sub.Target),
					slog.String("url", listing.URL),
					slog.Any("error", err))
				break
			}

			seen[listing.URL] = struct{}{}
			delta = append(delta, listing)
		}
	}

	return delta
}
