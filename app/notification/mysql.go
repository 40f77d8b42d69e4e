package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/consts"
	"github.com/estateshq/estates-backend/estates-notification/database"
	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sqlStore implements Store on mysql. Reads go to the replica, writes to the
// master; correctness rests on per-row atomic updates, no client-side locks.
type sqlStore struct {
	master  *database.Database
	replica *database.Database
}

// NewSQLStore creates the mysql-backed durable store adapter.
func NewSQLStore(master, replica *database.Database) Store {
	return &sqlStore{master: master, replica: replica}
}

func (s *sqlStore) List(ctx context.Context, ownerID string, filter model.Filter) ([]model.Notification, error) {
	stmt := "SELECT id, owner_id, category, title, body, priority, is_read, read_at, created_at, related_type, related_id FROM notifications WHERE owner_id = ?"
	args := []interface{}{ownerID}

	if filter.UnreadOnly {
		stmt += " AND is_read = false"
	}
	if filter.Category != "" {
		stmt += " AND category = ?"
		args = append(args, filter.Category)
	}
	stmt += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, consts.ListLimit)

	notifications := []model.Notification{}
	err := s.replica.Conn.SelectContext(ctx, &notifications, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list notifications")
	}
	return notifications, nil
}

func (s *sqlStore) CountUnread(ctx context.Context, ownerID string) (int64, error) {
	stmt := "SELECT COUNT(*) FROM notifications WHERE owner_id = ? AND is_read = false"

	var count int64
	err := s.replica.Conn.GetContext(ctx, &count, stmt, ownerID)
	if err != nil {
		return 0, errors.Wrap(err, "unable to count unread notifications")
	}
	return count, nil
}

func (s *sqlStore) Insert(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	stmt := `INSERT INTO notifications
		(id, owner_id, category, title, body, priority, is_read, read_at, created_at, related_type, related_id)
		VALUES (?, ?, ?, ?, ?, ?, false, NULL, ?, ?, ?)`
	_, err := s.master.Conn.ExecContext(ctx, stmt,
		n.ID, n.OwnerID, n.Category, n.Title, n.Body, n.Priority, n.CreatedAt, n.RelatedType, n.RelatedID)
	if err != nil {
		return &model.WriteConflict{Op: "insert", Err: err}
	}
	return nil
}

func (s *sqlStore) MarkRead(ctx context.Context, ownerID, id string, at time.Time) error {
	// read_at is set exactly once; the is_read guard keeps a second mark from
	// touching it.
	stmt := "UPDATE notifications SET is_read = true, read_at = ? WHERE id = ? AND owner_id = ? AND is_read = false"
	res, err := s.master.Conn.ExecContext(ctx, stmt, at, id, ownerID)
	if err != nil {
		return &model.WriteConflict{Op: "markRead", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "unable to read affected rows")
	}
	if affected > 0 {
		return nil
	}

	// Zero rows is either an already-read record (no-op) or a record that is
	// gone / foreign (hard error).
	var exists int
	err = s.master.Conn.GetContext(ctx, &exists, "SELECT 1 FROM notifications WHERE id = ? AND owner_id = ?", id, ownerID)
	if err == sql.ErrNoRows {
		return &model.NotFoundError{ID: id}
	}
	if err != nil {
		return errors.Wrap(err, "unable to check notification")
	}
	return nil
}

func (s *sqlStore) MarkAllRead(ctx context.Context, ownerID string, at time.Time) (int64, error) {
	// A single statement: only rows unread when the sweep starts are touched,
	// an insert racing the sweep stays unread.
	stmt := "UPDATE notifications SET is_read = true, read_at = ? WHERE owner_id = ? AND is_read = false"
	res, err := s.master.Conn.ExecContext(ctx, stmt, at, ownerID)
	if err != nil {
		return 0, &model.WriteConflict{Op: "markAllRead", Err: err}
	}
	return res.RowsAffected()
}

func (s *sqlStore) Delete(ctx context.Context, ownerID, id string) error {
	stmt := "DELETE FROM notifications WHERE id = ? AND owner_id = ?"
	res, err := s.master.Conn.ExecContext(ctx, stmt, id, ownerID)
	if err != nil {
		return &model.WriteConflict{Op: "delete", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "unable to read affected rows")
	}
	if affected == 0 {
		return &model.NotFoundError{ID: id}
	}
	return nil
}

func (s *sqlStore) DeleteAllRead(ctx context.Context, ownerID string) (int64, error) {
	stmt := "DELETE FROM notifications WHERE owner_id = ? AND is_read = true"
	res, err := s.master.Conn.ExecContext(ctx, stmt, ownerID)
	if err != nil {
		return 0, &model.WriteConflict{Op: "deleteAllRead", Err: err}
	}
	return res.RowsAffected()
}
