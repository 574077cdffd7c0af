package watch

import (
	"net/http"

	"car-scout/internal/usecase/subscription"
)

// Register registers the subscription and notification routes with the
// given mux.
func Register(mux *http.ServeMux, registry *subscription.Registry, run SessionRunner) {
	mux.Handle("POST /subscribe", SubscribeHandler{Registry: registry})
	mux.Handle("POST /unsubscribe", UnsubscribeHandler{Registry: registry})
	mux.Handle("GET /notifications", NotificationsHandler{Run: run})
}
