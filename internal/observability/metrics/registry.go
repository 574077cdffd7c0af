// Package metrics provides centralized Prometheus metrics for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Site search metrics track per-marketplace retrieval behavior.
var (
	// SiteSearchesTotal counts per-site searches by outcome.
	SiteSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_searches_total",
			Help: "Total number of per-site search fetches",
		},
		[]string{"site", "status"},
	)

	// SiteSearchDuration measures per-site search duration in seconds.
	SiteSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_search_duration_seconds",
			Help:    "Per-site search fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"site"},
	)

	// ListingsFoundTotal counts raw listings extracted from each site.
	ListingsFoundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_found_total",
			Help: "Total number of raw listings extracted per site",
		},
		[]string{"site"},
	)
)

// Watch loop metrics track subscriptions and notification delivery.
var (
	// ActiveWatchSessions tracks the number of live notification sessions.
	ActiveWatchSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_watch_sessions",
			Help: "Number of active notification sessions",
		},
	)

	// SubscriptionsActive tracks the number of registered subscriptions.
	SubscriptionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriptions_active",
			Help: "Number of registered subscriptions",
		},
	)

	// NotificationsPushedTotal counts delta pushes by channel and outcome.
	NotificationsPushedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_pushed_total",
			Help: "Total number of notification pushes",
		},
		[]string{"channel", "status"},
	)

	// NewListingsNotifiedTotal counts listings delivered in notification deltas.
	NewListingsNotifiedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "new_listings_notified_total",
			Help: "Total number of new listings delivered to watchers",
		},
	)

	// WatchTickDuration measures one full watch pass in seconds.
	WatchTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watch_tick_duration_seconds",
			Help:    "Duration of one watch tick across all subscriptions",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Store metrics track the listing collection.
var (
	// ListingsStoredTotal tracks the number of documents in the listing store.
	ListingsStoredTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "listings_stored_total",
			Help: "Total number of listings in the store",
		},
	)
)
