package notification

import (
	"context"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/model"
)

// Store is the durable-store contract this subsystem consumes. Ownership is
// enforced by the store on every row-level operation, never re-checked by
// callers.
type Store interface {
	// List returns the owner's notifications matching filter, newest first,
	// capped at consts.ListLimit.
	List(ctx context.Context, ownerID string, filter model.Filter) ([]model.Notification, error)

	// CountUnread is the store-side aggregate; it stays correct even when the
	// list is truncated by the display cap.
	CountUnread(ctx context.Context, ownerID string) (int64, error)

	// Insert stores a new row; created_at is assigned at insert time.
	Insert(ctx context.Context, n *model.Notification) error

	// MarkRead sets is_read and read_at (once) on one row. Returns
	// *model.NotFoundError when the row does not exist or belongs to someone
	// else; re-marking an already-read row is a no-op.
	MarkRead(ctx context.Context, ownerID, id string, at time.Time) error

	// MarkAllRead sweeps every row unread at sweep start. Rows inserted after
	// the sweep begins are not affected.
	MarkAllRead(ctx context.Context, ownerID string, at time.Time) (int64, error)

	// Delete removes one row; *model.NotFoundError when absent or foreign.
	Delete(ctx context.Context, ownerID, id string) error

	// DeleteAllRead removes every read row for the owner.
	DeleteAllRead(ctx context.Context, ownerID string) (int64, error)
}

// Feed is the per-owner change feed. Event payloads are signals to re-fetch,
// never data; subscribers must not apply them to caches.
type Feed interface {
	Subscribe(ownerID string) (<-chan model.ChangeEvent, func() error, error)
	Publish(ownerID string, ev model.ChangeEvent) error
}

// PushRegistry holds push subscriptions. A stored subscription is the
// permission grant; Find consults the registry on every use so a revocation
// is seen immediately.
type PushRegistry interface {
	Save(ctx context.Context, sub *model.PushSubscription) error
	Find(ctx context.Context, ownerID string) (*model.PushSubscription, error)
	Remove(ctx context.Context, ownerID string) error
}

// Pusher raises one native alert for the owner. Returns
// *model.PermissionDenied when the owner never granted (or has revoked)
// push permission.
type Pusher interface {
	Push(ctx context.Context, ownerID string, payload []byte) error
}
