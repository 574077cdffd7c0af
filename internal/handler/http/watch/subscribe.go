// Package watch provides HTTP handlers for the subscription registry and
// the live notification stream.
package watch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"car-scout/internal/domain/entity"
	"car-scout/internal/handler/http/respond"
	"car-scout/internal/usecase/subscription"
)

// maxBodyBytes caps request bodies; subscription payloads are tiny.
const maxBodyBytes = 64 << 10

// SubscribeHandler serves POST /subscribe. The body is a subscription
// (search filters plus a delivery target); registering the same subscription
// twice reports "duplicate" instead of failing.
type SubscribeHandler struct{ Registry *subscription.Registry }

func (h SubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, ok := decodeSubscription(w, r)
	if !ok {
		return
	}

	if err := h.Registry.Add(sub); err != nil {
		if errors.Is(err, entity.ErrAlreadyExists) {
			respond.JSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// UnsubscribeHandler serves POST /unsubscribe. The body must structurally
// match a registered subscription; a miss is a 404.
type UnsubscribeHandler struct{ Registry *subscription.Registry }

func (h UnsubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, ok := decodeSubscription(w, r)
	if !ok {
		return
	}

	if err := h.Registry.Remove(sub); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, errors.New("subscription not found"))
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func decodeSubscription(w http.ResponseWriter, r *http.Request) (entity.Subscription, bool) {
	var sub entity.Subscription
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&sub); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return entity.Subscription{}, false
	}
	if err := sub.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return entity.Subscription{}, false
	}
	return sub, true
}
