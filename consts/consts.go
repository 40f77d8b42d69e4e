package consts

// notification categories
const (
	CategoryBooking  = "booking"
	CategoryPayment  = "payment"
	CategoryProperty = "property"
	CategorySystem   = "system"
	CategoryMessage  = "message"
)

// priorities
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// change feed operations
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// mongo collections
const (
	PushSubscription = "PushSubscription"
)

// ListLimit caps every list fetch; the unread count is therefore always
// derived store-side, never from the list cache.
const ListLimit = 50

// FeedChannelPrefix is the per-owner redis pub/sub channel prefix.
const FeedChannelPrefix = "notification:feed:"
