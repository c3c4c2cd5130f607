// Package syncview implements the client side of the refetch-on-signal
// protocol: on any change notification, the affected collection is
// re-requested in full and replaces the local copy. A request epoch guards
// against a late-resolving stale refetch overwriting a fresher one.
package syncview

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc retrieves the caller's full authorized view of a collection.
// It must be idempotent: every call returns the server's current state.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// View holds the locally cached copy of one collection.
type View[T any] struct {
	fetch FetchFunc[T]

	mu      sync.Mutex
	current T
	started uint64 // epoch of the most recently started refetch
	applied uint64 // epoch of the most recently applied result

	group singleflight.Group
}

func NewView[T any](fetch FetchFunc[T]) *View[T] {
	return &View[T]{fetch: fetch}
}

// Get returns the current cached copy.
func (v *View[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Refresh refetches the collection in full and applies the result unless a
// newer refetch has already been applied. Results may resolve out of order;
// the epoch comparison makes "most recent wins" hold regardless.
func (v *View[T]) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.started++
	epoch := v.started
	v.mu.Unlock()

	value, err := v.fetch(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if epoch <= v.applied {
		// A fresher refetch already landed; discard this one.
		return nil
	}
	v.current = value
	v.applied = epoch
	return nil
}

// OnSignal schedules an asynchronous refresh. Bursts of signals arriving
// while a refetch is in flight coalesce into a single trailing fetch; the
// epoch guard keeps the final state equal to the server's.
func (v *View[T]) OnSignal(ctx context.Context) {
	go func() {
		_, err, _ := v.group.Do("refetch", func() (any, error) {
			return nil, v.Refresh(ctx)
		})
		if err != nil {
			slog.Warn("View refetch failed", "error", err)
		}
	}()
}
