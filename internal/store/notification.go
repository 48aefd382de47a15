package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/choreclock/internal/model"
)

const notificationListLimit = 50

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var relatedID sql.NullInt64
	err := scanner.Scan(
		&n.ID, &n.UserID, &n.HouseholdID, &n.Title, &n.Message, &n.Type,
		&relatedID, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.RelatedID = int64Ptr(relatedID)
	return &n, nil
}

const notificationCols = `id, user_id, household_id, title, message, type, related_id, is_read, created_at`

func (s *NotificationStore) Create(userID, householdID int64, title, message, notifType string, relatedID *int64) (*model.Notification, error) {
	result, err := s.db.Exec(
		`INSERT INTO notifications (user_id, household_id, title, message, type, related_id) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, householdID, title, message, notifType, nullInt64(relatedID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	return scanNotification(row)
}

// ListByUser returns the user's most recent notifications.
func (s *NotificationStore) ListByUser(userID int64, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT ` + notificationCols + ` FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := s.db.Query(query, userID, notificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkRead marks one of the user's notifications read. It reports false if
// no such notification belongs to the user.
func (s *NotificationStore) MarkRead(id, userID int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// MarkAllRead marks every unread notification of the user read and returns
// how many changed.
func (s *NotificationStore) MarkAllRead(userID int64) (int64, error) {
	result, err := s.db.Exec(
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return result.RowsAffected()
}
