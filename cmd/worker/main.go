// The worker runs the watch loop without a client connection: subscriptions
// are loaded from a file and deltas are delivered to a webhook.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"car-scout/internal/domain/entity"
	"car-scout/internal/infra/adapter/persistence/memory"
	"car-scout/internal/infra/adapter/persistence/mongodb"
	"car-scout/internal/infra/scraper"
	"car-scout/internal/observability/logging"
	"car-scout/internal/observability/metrics"
	"car-scout/internal/repository"
	"car-scout/internal/usecase/notify"
	"car-scout/internal/usecase/search"
	"car-scout/internal/usecase/subscription"
	"car-scout/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	webhookURL := config.GetEnvString("WEBHOOK_URL", "")
	if webhookURL == "" {
		logger.Error("WEBHOOK_URL must be set")
		os.Exit(1)
	}

	registry := subscription.NewRegistry()
	if err := loadWatches(registry, config.GetEnvString("WATCHES_FILE", "watches.json")); err != nil {
		logger.Error("failed to load watches", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("watches loaded", slog.Int("count", registry.Len()))

	repo, cleanup := initStore(ctx, logger)
	defer cleanup()

	searchSvc := search.NewService(
		initAdapters(logger),
		repo,
		config.GetEnvDuration("SITE_FETCH_TIMEOUT", 15*time.Second),
	)
	channel := notify.NewWebhookChannel(webhookURL, nil)
	// The cron schedule drives ticks here, so the scheduler's own interval
	// is left at its default.
	sched := notify.NewScheduler(registry, searchSvc, repo, channel, 0)

	startMetricsServer(ctx, logger)
	startCron(ctx, logger, sched, repo)

	<-ctx.Done()
	logger.Info("worker stopped")
}

// loadWatches seeds the registry from a JSON file holding an array of
// subscriptions.
func loadWatches(registry *subscription.Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read watches file: %w", err)
	}

	var subs []entity.Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		return fmt.Errorf("parse watches file: %w", err)
	}

	for _, sub := range subs {
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("watch for target %q: %w", sub.Target, err)
		}
		if err := registry.Add(sub); err != nil {
			if errors.Is(err, entity.ErrAlreadyExists) {
				slog.Warn("duplicate watch skipped", slog.String("target", sub.Target))
				continue
			}
			return err
		}
	}
	return nil
}

func initStore(ctx context.Context, logger *slog.Logger) (repository.ListingRepository, func()) {
	uri := config.GetEnvString("MONGO_URI", "")
	if uri == "" || config.GetEnvBool("MEMORY_STORE", false) {
		logger.Warn("using in-memory listing store, data will not survive restarts")
		return memory.NewListingRepo(), func() {}
	}

	cfg := mongodb.DefaultConfig()
	cfg.URI = uri
	cfg.Database = config.GetEnvString("MONGO_DB", cfg.Database)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	repo, err := mongodb.NewListingRepo(connectCtx, cfg)
	if err != nil {
		logger.Error("failed to connect to mongodb", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("connected to mongodb", slog.String("database", cfg.Database))

	cleanup := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Close(closeCtx); err != nil {
			logger.Error("failed to close mongodb connection", slog.Any("error", err))
		}
	}
	return repo, cleanup
}

func initAdapters(logger *slog.Logger) []scraper.Adapter {
	client := &http.Client{Timeout: 10 * time.Second}

	sites := scraper.DefaultSites()
	adapters := make([]scraper.Adapter, 0, len(sites))
	for _, site := range sites {
		adapters = append(adapters, scraper.NewSiteAdapter(site, client))
		logger.Info("marketplace adapter initialized", slog.String("site", site.Name))
	}
	return adapters
}

// startMetricsServer exposes Prometheus metrics on a separate port.
func startMetricsServer(ctx context.Context, logger *slog.Logger) {
	addr := fmt.Sprintf(":%d", config.GetEnvInt("METRICS_PORT", 9090))

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logger.Info("metrics server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// startCron schedules the watch sweep. Each sweep runs under a timeout so a
// stuck marketplace cannot make firings pile up.
func startCron(ctx context.Context, logger *slog.Logger, sched *notify.Scheduler, repo repository.ListingRepository) {
	schedule := config.GetEnvString("CRON_SCHEDULE", "@every 1m")

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		delivered := sched.Tick(jobCtx)
		logger.Info("watch sweep completed", slog.Int("delivered", delivered))

		if n, err := repo.Count(jobCtx); err == nil {
			metrics.UpdateListingsStored(n)
		}
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	logger.Info("cron worker started", slog.String("schedule", schedule))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
}
