package repositories

import (
	"context"

	"github.com/loopin-app/backend/internal/models"
	"gorm.io/gorm"
)

// ModerationRepository defines the interface for the moderation audit trail.
// Actions are append-only; nothing here mutates an existing record.
type ModerationRepository interface {
	AppendAction(ctx context.Context, action *models.ModerationAction) error
	GetActionsByPostID(ctx context.Context, postID string) ([]models.ModerationAction, error)
}

type postgresModerationRepository struct {
	db *gorm.DB
}

func NewPostgresModerationRepository(db *gorm.DB) ModerationRepository {
	return &postgresModerationRepository{db: db}
}

func (r *postgresModerationRepository) AppendAction(ctx context.Context, action *models.ModerationAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *postgresModerationRepository) GetActionsByPostID(ctx context.Context, postID string) ([]models.ModerationAction, error) {
	var actions []models.ModerationAction
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&actions).Error
	return actions, err
}
