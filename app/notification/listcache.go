package notification

import (
	"context"
	"sync"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/model"
)

type snapshot struct {
	items     []model.Notification
	fetchedAt time.Time
	valid     bool
}

// ListCache is the single source of truth for an owner's notification list.
// Each filter keeps its own snapshot; a successful fetch replaces the whole
// snapshot, never merges into it, so a partial read can never leave two
// filters disagreeing about the same row.
type ListCache struct {
	ownerID string
	store   Store

	mu        sync.Mutex
	snapshots map[string]*snapshot
}

// NewListCache creates the per-owner list cache.
func NewListCache(ownerID string, store Store) *ListCache {
	return &ListCache{
		ownerID:   ownerID,
		store:     store,
		snapshots: make(map[string]*snapshot),
	}
}

// List returns the current snapshot for the filter, fetching from the durable
// store when the snapshot is missing or invalidated. Re-invoking returns the
// current snapshot, not a continuation.
//
// When the store is unreachable the previous snapshot is returned with
// stale=true alongside a *model.FetchError; the caller keeps showing
// last-known-good data instead of flashing empty. The snapshot stays invalid
// so the next List retries.
func (c *ListCache) List(ctx context.Context, filter model.Filter) (items []model.Notification, stale bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := filter.Key()
	snap, ok := c.snapshots[key]
	if ok && snap.valid {
		return snap.items, false, nil
	}

	fetched, ferr := c.store.List(ctx, c.ownerID, filter)
	if ferr != nil {
		if ok {
			return snap.items, true, &model.FetchError{Err: ferr}
		}
		return nil, false, &model.FetchError{Err: ferr}
	}

	c.snapshots[key] = &snapshot{
		items:     fetched,
		fetchedAt: time.Now(),
		valid:     true,
	}
	return fetched, false, nil
}

// Invalidate marks every snapshot stale; the next List per filter re-fetches.
// Invalidation is idempotent and commutative, so racing invalidations from
// the change feed and the poll timer are harmless.
func (c *ListCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, snap := range c.snapshots {
		snap.valid = false
	}
}
