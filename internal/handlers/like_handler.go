package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/notifications"
	"github.com/loopin-app/backend/internal/repositories"
)

// LikeHandler handles like related requests
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	postRepository repositories.PostRepository
	notifier       *notifications.Notifier
	logger         *zap.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, notifier *notifications.Notifier, logger *zap.Logger) *LikeHandler {
	return &LikeHandler{
		likeRepository: likeRepo,
		postRepository: postRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// LikePost likes a post and notifies the post owner
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	liked, err := h.likeRepository.HasUserLikedPost(postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check like status")
	}
	if liked {
		return echo.NewHTTPError(http.StatusConflict, "Post already liked")
	}

	like := &models.Like{PostID: postID, UserID: userID}
	if err := h.likeRepository.CreateLike(like); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to like post")
	}

	go func() {
		ctx := context.Background()
		if err := h.postRepository.IncrementLikesCount(ctx, postID); err != nil {
			h.logger.Warn("failed to increment likes count",
				zap.String("post_id", postID),
				zap.Error(err))
		}

		ev := notifications.Event{
			Type:        models.NotificationTypeLike,
			RecipientID: post.UserID,
			ActorID:     userID,
			TargetID:    postID,
			ActivityID:  postID,
			Enrichment:  enrichmentFromPost(post),
		}
		if err := h.notifier.Notify(ctx, ev); err != nil {
			h.logger.Warn("like notification failed",
				zap.String("post_id", postID),
				zap.Error(err))
		}
	}()

	return c.JSON(http.StatusCreated, map[string]string{"message": "Post liked"})
}

// UnlikePost removes the caller's like from a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	postID := c.Param("id")

	liked, err := h.likeRepository.HasUserLikedPost(postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check like status")
	}
	if !liked {
		return echo.NewHTTPError(http.StatusNotFound, "Post not liked")
	}

	if err := h.likeRepository.DeleteLike(postID, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unlike post")
	}

	go func() {
		if err := h.postRepository.DecrementLikesCount(context.Background(), postID); err != nil {
			h.logger.Warn("failed to decrement likes count",
				zap.String("post_id", postID),
				zap.Error(err))
		}
	}()

	return c.NoContent(http.StatusNoContent)
}

// GetLikesCount returns the like count for a post
func (h *LikeHandler) GetLikesCount(c echo.Context) error {
	postID := c.Param("id")

	count, err := h.likeRepository.GetLikesCountByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch likes count")
	}

	return c.JSON(http.StatusOK, map[string]int64{"likes_count": count})
}

// RegisterLikeRoutes registers like related routes on an authenticated group
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
	g.GET("/posts/:id/likes", h.GetLikesCount)
}
