package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loopin-app/backend/internal/cache"
	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/repositories"
	"gorm.io/gorm"
)

const profileCacheTTL = 5 * time.Minute

// userProfileResolver resolves actor snapshots from the user store, with an
// optional redis cache in front. A nil cache is allowed and skips caching.
type userProfileResolver struct {
	users repositories.UserRepository
	cache *cache.RedisClient
}

// NewUserProfileResolver builds the production ProfileResolver.
func NewUserProfileResolver(users repositories.UserRepository, redis *cache.RedisClient) ProfileResolver {
	return &userProfileResolver{users: users, cache: redis}
}

func (r *userProfileResolver) Resolve(ctx context.Context, userID uint) (*models.ActorSnapshot, error) {
	key := fmt.Sprintf("actor:%d", userID)

	var snapshot models.ActorSnapshot
	if hit, err := r.cache.GetJSON(ctx, key, &snapshot); err == nil && hit {
		return &snapshot, nil
	}

	user, err := r.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	snapshot = models.ActorSnapshot{
		ID:              user.ID,
		Username:        user.Username,
		ProfilePhotoURL: user.ProfilePhotoURL,
	}
	// Best effort; a cache write failure never fails resolution.
	_ = r.cache.SetJSON(ctx, key, snapshot, profileCacheTTL)
	return &snapshot, nil
}
