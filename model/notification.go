package model

import (
	"time"
)

// Notification - one event notice owned by exactly one user. Title, body and
// category are immutable after insert; only IsRead/ReadAt ever change.
type Notification struct {
	ID          string     `db:"id" json:"id"`
	OwnerID     string     `db:"owner_id" json:"ownerId"`
	Category    string     `db:"category" json:"category"`
	Title       string     `db:"title" json:"title"`
	Body        string     `db:"body" json:"body"`
	Priority    string     `db:"priority" json:"priority"`
	IsRead      bool       `db:"is_read" json:"isRead"`
	ReadAt      NullTime   `db:"read_at" json:"readAt"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	RelatedType NullString `db:"related_type" json:"relatedType"`
	RelatedID   NullString `db:"related_id" json:"relatedId"`
}

// Filter selects which slice of an owner's notifications a list fetch returns.
type Filter struct {
	UnreadOnly bool
	Category   string
}

// FilterAll matches every notification for the owner.
var FilterAll = Filter{}

// FilterUnread matches unread notifications only.
var FilterUnread = Filter{UnreadOnly: true}

// FilterCategory matches one category.
func FilterCategory(category string) Filter {
	return Filter{Category: category}
}

// Key - stable cache key for a filter
func (f Filter) Key() string {
	switch {
	case f.UnreadOnly:
		return "unread"
	case f.Category != "":
		return "category:" + f.Category
	default:
		return "all"
	}
}

// ChangeEvent - one change feed event. The payload is a signal to re-fetch,
// never a source of truth; only Operation is carried on the wire.
type ChangeEvent struct {
	Operation string `json:"operation"`
}

// Signal - invalidation hint broadcast to session observers (browser tabs).
type Signal struct {
	Kind        string `json:"kind"`
	UnreadCount int64  `json:"unreadCount"`
}

// signal kinds
const (
	SignalInvalidate  = "invalidate"
	SignalUnreadCount = "unreadCount"
	SignalChime       = "chime"
)
