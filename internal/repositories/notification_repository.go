package repositories

import (
	"context"
	"time"

	"github.com/loopin-app/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for aggregated notification records
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	// UpdateIfUnchanged writes the record only when its stored lastActivityAt
	// still equals prevLastActivityAt, reporting whether the write applied.
	// A false return means a concurrent writer got there first.
	UpdateIfUnchanged(ctx context.Context, notification *models.Notification, prevLastActivityAt time.Time) (bool, error)
	// FindOpen returns every unread record for the aggregation key. The
	// caller picks the most recent one; no order-by is applied here so the
	// query stays on the simple composite index.
	FindOpen(ctx context.Context, recipientID uint, notificationType, targetID string) ([]models.Notification, error)
	GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAsRead(notificationID string, recipientID uint) error
	MarkAllAsRead(recipientID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) UpdateIfUnchanged(ctx context.Context, notification *models.Notification, prevLastActivityAt time.Time) (bool, error) {
	// Struct-based update so the actors JSON serializer applies; Select forces
	// the listed columns through even at zero values.
	result := r.db.WithContext(ctx).
		Model(notification).
		Where("last_activity_at = ?", prevLastActivityAt).
		Select("actors", "actor_count", "message", "last_activity_at", "updated_at").
		Updates(notification)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *postgresNotificationRepository) FindOpen(ctx context.Context, recipientID uint, notificationType, targetID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND type = ? AND target_id = ? AND is_read = false", recipientID, notificationType, targetID).
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("last_activity_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", recipientID).Count(&count).Error
	return count, err
}

// MarkAsRead closes a record; subsequent events for its key start a fresh one.
func (r *postgresNotificationRepository) MarkAsRead(notificationID string, recipientID uint) error {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint) error {
	return r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = false", recipientID).Update("is_read", true).Error
}
