package metrics

import "time"

// RecordSiteSearch records one per-site search fetch: its duration, how many
// raw listings it produced, and whether it succeeded.
func RecordSiteSearch(site string, duration time.Duration, found int, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	SiteSearchesTotal.WithLabelValues(site, status).Inc()
	SiteSearchDuration.WithLabelValues(site).Observe(duration.Seconds())
	if found > 0 {
		ListingsFoundTotal.WithLabelValues(site).Add(float64(found))
	}
}

// RecordNotificationPush records one delta push attempt on a channel.
func RecordNotificationPush(channel string, listings int, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	NotificationsPushedTotal.WithLabelValues(channel, status).Inc()
	if success && listings > 0 {
		NewListingsNotifiedTotal.Add(float64(listings))
	}
}

// RecordWatchTick records the duration of one watch pass.
func RecordWatchTick(duration time.Duration) {
	WatchTickDuration.Observe(duration.Seconds())
}

// UpdateSubscriptionsActive updates the registered-subscription gauge.
func UpdateSubscriptionsActive(count int) {
	SubscriptionsActive.Set(float64(count))
}

// UpdateListingsStored updates the stored-listing gauge.
func UpdateListingsStored(count int64) {
	ListingsStoredTotal.Set(float64(count))
}
