package repositories

import (
	"context"
	"errors"

	"github.com/loopin-app/backend/internal/models"
	"gorm.io/gorm"
)

// PreferenceRepository defines the interface for notification preferences.
// Get returns (nil, nil) when the user has never saved preferences; callers
// apply the documented defaults in that case.
type PreferenceRepository interface {
	Get(ctx context.Context, userID uint) (*models.NotificationPreferences, error)
	Save(ctx context.Context, prefs *models.NotificationPreferences) error
}

type postgresPreferenceRepository struct {
	db *gorm.DB
}

func NewPostgresPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &postgresPreferenceRepository{db: db}
}

func (r *postgresPreferenceRepository) Get(ctx context.Context, userID uint) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prefs, nil
}

func (r *postgresPreferenceRepository) Save(ctx context.Context, prefs *models.NotificationPreferences) error {
	return r.db.WithContext(ctx).Save(prefs).Error
}
