package notification

import (
	"context"
	"sync"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/estateshq/estates-backend/estates-notification/util"
)

// UnreadCounter tracks the owner's unread count via the store-side aggregate.
// It is never derived from the list cache (which is capped) and never
// decremented optimistically: every value comes from a fresh aggregate query.
type UnreadCounter struct {
	ownerID string
	store   Store

	// onRefresh observes every successful re-derivation; the alert
	// dispatcher and the observer hub hang off it.
	onRefresh func(count int64)

	mu    sync.Mutex
	count int64
	valid bool
}

// NewUnreadCounter creates the per-owner unread counter. onRefresh may be nil.
func NewUnreadCounter(ownerID string, store Store, onRefresh func(count int64)) *UnreadCounter {
	return &UnreadCounter{
		ownerID:   ownerID,
		store:     store,
		onRefresh: onRefresh,
	}
}

// Count returns the cached value, re-deriving it first when invalidated. On
// store failure the last-known value is returned with a *model.FetchError.
func (u *UnreadCounter) Count(ctx context.Context) (int64, error) {
	u.mu.Lock()
	if u.valid {
		count := u.count
		u.mu.Unlock()
		return count, nil
	}
	u.mu.Unlock()
	return u.Refresh(ctx)
}

// Refresh unconditionally re-derives the count from the store aggregate.
func (u *UnreadCounter) Refresh(ctx context.Context) (int64, error) {
	count, err := u.store.CountUnread(ctx, u.ownerID)
	if err != nil {
		u.mu.Lock()
		last := u.count
		u.mu.Unlock()
		return last, &model.FetchError{Err: err}
	}

	u.mu.Lock()
	u.count = count
	u.valid = true
	u.mu.Unlock()

	if u.onRefresh != nil {
		u.onRefresh(count)
	}
	return count, nil
}

// Invalidate forces the next Count to re-derive.
func (u *UnreadCounter) Invalidate() {
	u.mu.Lock()
	u.valid = false
	u.mu.Unlock()
}

// Run refreshes on a fixed interval until ctx is done. The unconditional poll
// bounds staleness even when every push event is silently dropped.
func (u *UnreadCounter) Run(ctx context.Context, interval time.Duration) {
	defer util.RecoverGoroutinePanic(nil)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Poll errors are transient; the next tick retries.
			u.Refresh(ctx)
		}
	}
}
