package repositories

import (
	"context"

	"github.com/loopin-app/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for push-token storage
type DeviceTokenRepository interface {
	Register(ctx context.Context, token *models.DeviceToken) error
	Remove(ctx context.Context, userID uint, token string) error
	GetEnabledTokens(ctx context.Context, userID uint) ([]models.DeviceToken, error)
	// DeleteTokens removes tokens the gateway reported as unregistered.
	DeleteTokens(ctx context.Context, tokens []string) error
}

type postgresDeviceTokenRepository struct {
	db *gorm.DB
}

func NewPostgresDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &postgresDeviceTokenRepository{db: db}
}

// Register upserts a token; re-registering an existing token moves it to the
// current user and re-enables it.
func (r *postgresDeviceTokenRepository) Register(ctx context.Context, token *models.DeviceToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "enabled", "updated_at"}),
	}).Create(token).Error
}

func (r *postgresDeviceTokenRepository) Remove(ctx context.Context, userID uint, token string) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND token = ?", userID, token).Delete(&models.DeviceToken{}).Error
}

func (r *postgresDeviceTokenRepository) GetEnabledTokens(ctx context.Context, userID uint) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND enabled = true", userID).
		Find(&tokens).Error
	return tokens, err
}

func (r *postgresDeviceTokenRepository) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("token IN ?", tokens).Delete(&models.DeviceToken{}).Error
}
