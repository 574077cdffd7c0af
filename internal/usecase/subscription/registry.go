// Package subscription provides the concurrency-safe registry of active
// (search parameters, notification target) registrations.
package subscription

import (
	"sync"

	"car-scout/internal/domain/entity"
	"car-scout/internal/observability/metrics"
)

// Registry is a set of subscriptions keyed by full structural equality of the
// search parameters plus the target. It is mutated by subscribe/unsubscribe
// calls and read by scheduler ticks concurrently; a snapshot never observes a
// partially applied mutation.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]entity.Subscription
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]entity.Subscription)}
}

// Add registers a subscription. Registering a structurally equal subscription
// twice returns entity.ErrAlreadyExists and leaves the registry unchanged.
func (r *Registry) Add(sub entity.Subscription) error {
	key := sub.Key()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[key]; ok {
		return entity.ErrAlreadyExists
	}
	r.subs[key] = sub
	metrics.UpdateSubscriptionsActive(len(r.subs))
	return nil
}

// Remove deletes a subscription. Removing an unregistered subscription
// returns entity.ErrNotFound and leaves the registry unchanged.
func (r *Registry) Remove(sub entity.Subscription) error {
	key := sub.Key()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[key]; !ok {
		return entity.ErrNotFound
	}
	delete(r.subs, key)
	metrics.UpdateSubscriptionsActive(len(r.subs))
	return nil
}

// Snapshot returns a copy of the current subscriptions in unspecified order.
// The scheduler iterates the copy so no lock is held across a whole tick.
func (r *Registry) Snapshot() []entity.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub)
	}
	return out
}

// Len returns the number of registered subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
