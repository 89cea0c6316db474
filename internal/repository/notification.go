package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/fieldpilot/portal-server-go/internal/model"
)

// NotificationRepository handles staff notification rows and preferences
type NotificationRepository interface {
	// FindPreference returns the staff member's preference row, or nil if
	// none exists (all channels default to enabled).
	FindPreference(ctx context.Context, staffID string) (*model.NotificationPreference, error)
	Create(ctx context.Context, params model.CreateNotificationParams) error
}

type notificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) FindPreference(ctx context.Context, staffID string) (*model.NotificationPreference, error) {
	var pref model.NotificationPreference
	err := r.db.GetContext(ctx, &pref, `
		SELECT * FROM staff_notification_preferences WHERE staff_id = $1
	`, staffID)
	return HandleNotFound(&pref, err)
}

func (r *notificationRepo) Create(ctx context.Context, params model.CreateNotificationParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO staff_notifications (id, staff_id, business_id, type, title, body)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, params.ID, params.StaffID, params.BusinessID, params.Type, params.Title, params.Body)
	return err
}
