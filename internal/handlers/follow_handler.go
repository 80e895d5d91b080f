package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/notifications"
	"github.com/loopin-app/backend/internal/repositories"
)

// FollowHandler handles follow related requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	notifier         *notifications.Notifier
	logger           *zap.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, notifier *notifications.Notifier, logger *zap.Logger) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		notifier:         notifier,
		logger:           logger,
	}
}

// FollowUser follows another user and notifies them
func (h *FollowHandler) FollowUser(c echo.Context) error {
	followerID := getUserIDFromContext(c)
	if followerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	followingID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if followerID == followingID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	if _, err := h.userRepository.GetUserByID(followingID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up user")
	}

	following, err := h.followRepository.IsFollowing(followerID, followingID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check follow status")
	}
	if following {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := h.followRepository.CreateFollow(follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to follow user")
	}

	go func() {
		ctx := context.Background()
		if err := h.userRepository.IncrementFollowersCount(followingID); err != nil {
			h.logger.Warn("failed to increment followers count",
				zap.Uint("user_id", followingID), zap.Error(err))
		}
		if err := h.userRepository.IncrementFollowingCount(followerID); err != nil {
			h.logger.Warn("failed to increment following count",
				zap.Uint("user_id", followerID), zap.Error(err))
		}

		// For follows the followed profile is the target
		ev := notifications.Event{
			Type:        models.NotificationTypeFollow,
			RecipientID: followingID,
			ActorID:     followerID,
			TargetID:    strconv.FormatUint(uint64(followingID), 10),
			ActivityID:  strconv.FormatUint(uint64(follow.ID), 10),
		}
		if err := h.notifier.Notify(ctx, ev); err != nil {
			h.logger.Warn("follow notification failed",
				zap.Uint("recipient_id", followingID),
				zap.Error(err))
		}
	}()

	return c.JSON(http.StatusCreated, map[string]string{"message": "User followed"})
}

// UnfollowUser removes a follow relationship
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	followerID := getUserIDFromContext(c)
	if followerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	followingID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	following, err := h.followRepository.IsFollowing(followerID, followingID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check follow status")
	}
	if !following {
		return echo.NewHTTPError(http.StatusNotFound, "Not following this user")
	}

	if err := h.followRepository.DeleteFollow(followerID, followingID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unfollow user")
	}

	go func() {
		if err := h.userRepository.DecrementFollowersCount(followingID); err != nil {
			h.logger.Warn("failed to decrement followers count",
				zap.Uint("user_id", followingID), zap.Error(err))
		}
		if err := h.userRepository.DecrementFollowingCount(followerID); err != nil {
			h.logger.Warn("failed to decrement following count",
				zap.Uint("user_id", followerID), zap.Error(err))
		}
	}()

	return c.NoContent(http.StatusNoContent)
}

// GetFollowers lists a user's followers
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepository.GetFollowers(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch followers")
	}

	results := make([]models.UserCompact, 0, len(users))
	for i := range users {
		results = append(results, users[i].ToCompact())
	}

	return c.JSON(http.StatusOK, results)
}

// GetFollowing lists the users a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepository.GetFollowing(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch following")
	}

	results := make([]models.UserCompact, 0, len(users))
	for i := range users {
		results = append(results, users[i].ToCompact())
	}

	return c.JSON(http.StatusOK, results)
}

// RegisterFollowRoutes registers follow related routes on an authenticated group
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}
