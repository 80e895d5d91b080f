package repositories

import (
	"context"

	"github.com/loopin-app/backend/internal/models"
	"gorm.io/gorm"
)

// PushLogRepository records the delivery audit trail for push sends
type PushLogRepository interface {
	Create(ctx context.Context, entry *models.PushDeliveryLog) error
	GetByUserID(ctx context.Context, userID uint, limit int) ([]models.PushDeliveryLog, error)
}

type postgresPushLogRepository struct {
	db *gorm.DB
}

func NewPostgresPushLogRepository(db *gorm.DB) PushLogRepository {
	return &postgresPushLogRepository{db: db}
}

func (r *postgresPushLogRepository) Create(ctx context.Context, entry *models.PushDeliveryLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *postgresPushLogRepository) GetByUserID(ctx context.Context, userID uint, limit int) ([]models.PushDeliveryLog, error) {
	var entries []models.PushDeliveryLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
