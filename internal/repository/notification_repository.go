package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/velihant/financehub-api/internal/models"
)

// NotificationRepository is the append-only notification store. Every query
// is scoped by owner; callers can never see or mutate another owner's rows.
type NotificationRepository interface {
	Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error)
	ListRecent(ctx context.Context, ownerID string, limit int) ([]models.Notification, error)
	ListSince(ctx context.Context, ownerID string, since time.Time) ([]models.Notification, error)
	MarkRead(ctx context.Context, ownerID, notificationID string) error
	MarkAllRead(ctx context.Context, ownerID string) error
}

type notificationRepository struct {
	db *sql.DB
}

type CreateNotificationParams struct {
	OwnerID string
	Kind    models.NotificationKind
	Title   string
	Message string
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error) {
	const query = `
		INSERT INTO app.notifications (owner_id, kind, title, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, kind, title, message, read, created_at
	`

	row := r.db.QueryRowContext(ctx, query,
		strings.TrimSpace(params.OwnerID), params.Kind, params.Title, params.Message)
	return scanNotification(row)
}

func (r *notificationRepository) ListRecent(ctx context.Context, ownerID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	const query = `
		SELECT id, owner_id, kind, title, message, read, created_at
		FROM app.notifications
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(ownerID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (r *notificationRepository) ListSince(ctx context.Context, ownerID string, since time.Time) ([]models.Notification, error) {
	const query = `
		SELECT id, owner_id, kind, title, message, read, created_at
		FROM app.notifications
		WHERE owner_id = $1 AND created_at > $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(ownerID), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

// MarkRead flips one record to read. The update is scoped by owner, so a
// foreign id behaves exactly like a missing one: sql.ErrNoRows. Re-marking
// an already-read record succeeds as a no-op.
func (r *notificationRepository) MarkRead(ctx context.Context, ownerID, notificationID string) error {
	const query = `
		UPDATE app.notifications
		SET read = TRUE
		WHERE id = $1 AND owner_id = $2
		RETURNING id
	`
	var id string
	return r.db.QueryRowContext(ctx, query,
		strings.TrimSpace(notificationID), strings.TrimSpace(ownerID)).Scan(&id)
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, ownerID string) error {
	const query = `
		UPDATE app.notifications
		SET read = TRUE
		WHERE owner_id = $1 AND read = FALSE
	`
	_, err := r.db.ExecContext(ctx, query, strings.TrimSpace(ownerID))
	return err
}

func collectNotifications(rows *sql.Rows) ([]models.Notification, error) {
	var notifications []models.Notification
	for rows.Next() {
		notif, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notif)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func scanNotification(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Notification, error) {
	var notif models.Notification
	if err := scanner.Scan(
		&notif.ID,
		&notif.OwnerID,
		&notif.Kind,
		&notif.Title,
		&notif.Message,
		&notif.Read,
		&notif.CreatedAt,
	); err != nil {
		return models.Notification{}, err
	}
	return notif, nil
}
