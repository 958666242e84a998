package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
)

const notificationColumns = `id, user_id, title, message, type, related_entity_id, related_entity_type, is_read, created_at`

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(d *sql.DB) *NotificationStore {
	return &NotificationStore{db: d}
}

func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO notifications (user_id, title, message, type, related_entity_id, related_entity_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.UserID, n.Title, n.Message, string(n.Type), n.RelatedEntityID, n.RelatedEntityType)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	out := &domain.Notification{}
	err = db.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications WHERE id = ?
	`, id).Scan(notificationDest(out)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return out, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationStore) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer closeRows(rows)

	var out []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(notificationDest(n)...); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return out, nil
}

func (s *NotificationStore) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := db.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead flags the notification as read. It reports false when the
// notification does not exist or belongs to someone else.
func (s *NotificationStore) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func notificationDest(n *domain.Notification) []any {
	return []any{&n.ID, &n.UserID, &n.Title, &n.Message, (*string)(&n.Type),
		&n.RelatedEntityID, &n.RelatedEntityType, &n.IsRead, &n.CreatedAt}
}
