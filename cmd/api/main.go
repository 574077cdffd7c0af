package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	hhttp "car-scout/internal/handler/http"
	hlisting "car-scout/internal/handler/http/listing"
	hwatch "car-scout/internal/handler/http/watch"
	"car-scout/internal/infra/adapter/persistence/memory"
	"car-scout/internal/infra/adapter/persistence/mongodb"
	"car-scout/internal/infra/scraper"
	"car-scout/internal/observability/logging"
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

	repo, pinger, cleanup := initStore(ctx, logger)
	defer cleanup()

	searchSvc := search.NewService(
		initAdapters(logger),
		repo,
		config.GetEnvDuration("SITE_FETCH_TIMEOUT", 15*time.Second),
	)
	registry := subscription.NewRegistry()
	watchInterval := config.GetEnvDuration("WATCH_INTERVAL", notify.DefaultInterval)

	runSession := func(ctx context.Context, ch notify.Channel) {
		notify.NewScheduler(registry, searchSvc, repo, ch, watchInterval).Run(ctx)
	}

	mux := http.NewServeMux()
	hlisting.Register(mux, searchSvc)
	hwatch.Register(mux, registry, runSession)
	mux.Handle("GET /healthz", hhttp.HealthHandler{Store: pinger, Version: version()})
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = hhttp.Logging(logger)(handler)
	handler = hhttp.Recover(logger)(handler)

	runServer(ctx, logger, handler)
}

// initStore opens the listing store. Without a MONGO_URI, or with
// MEMORY_STORE set, the service falls back to the in-memory store and keeps
// nothing across restarts.
func initStore(ctx context.Context, logger *slog.Logger) (repository.ListingRepository, hhttp.Pinger, func()) {
	uri := config.GetEnvString("MONGO_URI", "")
	if uri == "" || config.GetEnvBool("MEMORY_STORE", false) {
		logger.Warn("using in-memory listing store, data will not survive restarts")
		return memory.NewListingRepo(), nil, func() {}
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
	return repo, repo, cleanup
}

// initAdapters builds one scraping adapter per configured marketplace,
// sharing a single HTTP client.
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

func version() string {
	return config.GetEnvString("VERSION", "dev")
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(ctx context.Context, logger *slog.Logger, handler http.Handler) {
	addr := config.GetEnvString("HTTP_ADDR", ":8080")

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
