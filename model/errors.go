package model

import "fmt"

// FetchError - the durable store was unreachable for a read. Transient: the
// caller keeps serving its last-known-good snapshot and retries by
// re-invalidation.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("notification fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteConflict - the durable store rejected a write. Surfaced to the caller;
// local state is left untouched.
type WriteConflict struct {
	Op  string
	Err error
}

func (e *WriteConflict) Error() string {
	return fmt.Sprintf("store rejected %s: %v", e.Op, e.Err)
}

func (e *WriteConflict) Unwrap() error { return e.Err }

// NotFoundError - the operation targeted a record that no longer exists or is
// not owned by the caller. Hard error for single-record operations, already
// satisfied for bulk sweeps.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("notification %s not found", e.ID)
}

// PermissionDenied - the owner has no registered push permission. Recorded,
// never retried automatically.
type PermissionDenied struct {
	OwnerID string
}

func (e *PermissionDenied) Error() string {
	return fmt.Sprintf("push permission not granted for owner %s", e.OwnerID)
}
