package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/technix/fittrack/internal/model"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(notification *model.Notification) error
	ByUser(userID string) ([]model.Notification, error)
	All() ([]model.Notification, error)
	MarkRead(id, userID string, adminScope bool) (*model.Notification, error)
	ClearRead(userID string, adminScope bool) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *model.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO notifications (id, user_id, title, message, type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(query,
		notification.ID,
		notification.UserID,
		notification.Title,
		notification.Message,
		notification.Type,
		notification.Read,
		notification.CreatedAt,
	)
	return err
}

func (r *notificationRepository) ByUser(userID string) ([]model.Notification, error) {
	notifications := []model.Notification{}
	query := `SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&notifications, query, userID)
	return notifications, err
}

func (r *notificationRepository) All() ([]model.Notification, error) {
	notifications := []model.Notification{}
	query := `SELECT * FROM notifications ORDER BY created_at DESC`

	err := r.db.Select(&notifications, query)
	return notifications, err
}

// MarkRead flips the read flag. Non-admin callers are restricted to their own
// notifications through the WHERE clause.
func (r *notificationRepository) MarkRead(id, userID string, adminScope bool) (*model.Notification, error) {
	notification := &model.Notification{}

	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2 RETURNING *`
	args := []any{id, userID}
	if adminScope {
		query = `UPDATE notifications SET read = TRUE WHERE id = $1 RETURNING *`
		args = []any{id}
	}

	err := r.db.Get(notification, query, args...)
	if err == sql.ErrNoRows {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}

	return notification, nil
}

func (r *notificationRepository) ClearRead(userID string, adminScope bool) (int64, error) {
	query := `DELETE FROM notifications WHERE read = TRUE AND user_id = $1`
	args := []any{userID}
	if adminScope {
		query = `DELETE FROM notifications WHERE read = TRUE`
		args = nil
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
