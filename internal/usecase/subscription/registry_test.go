package subscription_test

import (
	"errors"
	"sync"
	"testing"

	"car-scout/internal/domain/entity"
	"car-scout/internal/usecase/subscription"
)

func strPtr(s string) *string { return &s }

func sampleSub(target string) entity.Subscription {
	return entity.Subscription{
		Params: entity.SearchParams{Make: strPtr("Renault"), Model: strPtr("Clio")},
		Target: target,
	}
}

func TestRegistry_AddDuplicate(t *testing.T) {
	reg := subscription.NewRegistry()

	if err := reg.Add(sampleSub("alice@example.com")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Structurally equal subscription built from scratch.
	err := reg.Add(sampleSub("alice@example.com"))
	if !errors.Is(err, entity.ErrAlreadyExists) {
		t.Fatalf("Add() duplicate error = %v, want ErrAlreadyExists", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after duplicate add", reg.Len())
	}
}

func TestRegistry_SameParamsDifferentTarget(t *testing.T) {
	reg := subscription.NewRegistry()

	if err := reg.Add(sampleSub("alice@example.com")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := reg.Add(sampleSub("bob@example.com")); err != nil {
		t.Fatalf("Add() second target error = %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestRegistry_RemoveNotFound(t *testing.T) {
	reg := subscription.NewRegistry()

	if err := reg.Add(sampleSub("alice@example.com")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	err := reg.Remove(sampleSub("bob@example.com"))
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("Remove() error = %v, want ErrNotFound", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (registry unchanged)", reg.Len())
	}

	if err := reg.Remove(sampleSub("alice@example.com")); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegistry_EmptyFieldIsNotAbsentField(t *testing.T) {
	reg := subscription.NewRegistry()

	withEmptyMake := entity.Subscription{
		Params: entity.SearchParams{Make: strPtr("")},
		Target: "alice@example.com",
	}
	if err := reg.Add(withEmptyMake); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// A subscription with make absent is structurally different and must not
	// remove the empty-make registration.
	withAbsentMake := entity.Subscription{Target: "alice@example.com"}
	if err := reg.Remove(withAbsentMake); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("Remove() error = %v, want ErrNotFound", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (registry unchanged)", reg.Len())
	}
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	reg := subscription.NewRegistry()
	if err := reg.Add(sampleSub("alice@example.com")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	snap := reg.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Snapshot() length = %d, want 1", len(snap))
	}

	// Mutating the registry after the snapshot must not change the copy.
	if err := reg.Remove(sampleSub("alice@example.com")); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(snap) != 1 || snap[0].Target != "alice@example.com" {
		t.Error("snapshot changed after registry mutation")
	}
}

func TestRegistry_ConcurrentAddRemove(t *testing.T) {
	reg := subscription.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		target := string(rune('a'+i%10)) + "@example.com"
		go func() {
			defer wg.Done()
			_ = reg.Add(sampleSub(target))
		}()
		go func() {
			defer wg.Done()
			_ = reg.Remove(sampleSub(target))
			_ = reg.Snapshot()
		}()
	}
	wg.Wait()

	// Every remaining entry must be fully formed.
	for _, sub := range reg.Snapshot() {
		if sub.Target == "" {
			t.Error("snapshot observed a partially applied subscription")
		}
	}
}
