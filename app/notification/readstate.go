package notification

import (
	"context"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/model"
)

// ReadStateTracker applies read/unread and delete transitions. Every
// operation is write-through: the durable store confirms the write before any
// cache is touched, then dependent caches are invalidated rather than patched
// in place. The local cache is therefore never ahead of the store.
type ReadStateTracker struct {
	ownerID string
	store   Store

	// invalidate tears down the dependent caches after a confirmed write.
	invalidate func()
}

// NewReadStateTracker creates the per-owner read-state tracker.
func NewReadStateTracker(ownerID string, store Store, invalidate func()) *ReadStateTracker {
	return &ReadStateTracker{
		ownerID:    ownerID,
		store:      store,
		invalidate: invalidate,
	}
}

// MarkRead marks one record read. *model.NotFoundError when the record is
// gone or foreign; marking an already-read record is a no-op.
func (t *ReadStateTracker) MarkRead(ctx context.Context, id string) error {
	if err := t.store.MarkRead(ctx, t.ownerID, id, time.Now().UTC()); err != nil {
		return err
	}
	t.invalidate()
	return nil
}

// MarkAllRead sweeps every record unread at sweep start. Idempotent: a second
// sweep finds nothing to do.
func (t *ReadStateTracker) MarkAllRead(ctx context.Context) error {
	if _, err := t.store.MarkAllRead(ctx, t.ownerID, time.Now().UTC()); err != nil {
		return err
	}
	t.invalidate()
	return nil
}

// Delete permanently removes one record. Deletion is terminal.
func (t *ReadStateTracker) Delete(ctx context.Context, id string) error {
	if err := t.store.Delete(ctx, t.ownerID, id); err != nil {
		if _, ok := err.(*model.NotFoundError); ok {
			// The record is already gone; the caches may still show it, so
			// they are refreshed before the error surfaces.
			t.invalidate()
		}
		return err
	}
	t.invalidate()
	return nil
}

// DeleteAllRead permanently removes every read record. Idempotent.
func (t *ReadStateTracker) DeleteAllRead(ctx context.Context) error {
	if _, err := t.store.DeleteAllRead(ctx, t.ownerID); err != nil {
		return err
	}
	t.invalidate()
	return nil
}
