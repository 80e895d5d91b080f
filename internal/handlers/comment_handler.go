package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/notifications"
	"github.com/loopin-app/backend/internal/repositories"
)

// CommentHandler handles comment related requests
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	notifier          *notifications.Notifier
	logger            *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifier *notifications.Notifier, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		notifier:          notifier,
		logger:            logger,
	}
}

// CreateComment adds a comment to a post, notifying the post owner and any
// mentioned users
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	postID := c.Param("id")

	req := new(models.CreateCommentRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: req.Content,
	}

	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create comment")
	}

	go h.afterComment(context.Background(), userID, post, comment)

	return c.JSON(http.StatusCreated, comment)
}

// afterComment bumps the post counter and fans out notifications
func (h *CommentHandler) afterComment(ctx context.Context, actorID uint, post *models.Post, comment *models.Comment) {
	postID := post.ID.Hex()

	if err := h.postRepository.IncrementCommentsCount(ctx, postID); err != nil {
		h.logger.Warn("failed to increment comments count",
			zap.String("post_id", postID),
			zap.Error(err))
	}

	ev := notifications.Event{
		Type:        models.NotificationTypeComment,
		RecipientID: post.UserID,
		ActorID:     actorID,
		TargetID:    postID,
		ActivityID:  postID,
		Enrichment:  enrichmentFromPost(post),
	}
	if err := h.notifier.Notify(ctx, ev); err != nil {
		h.logger.Warn("comment notification failed",
			zap.String("post_id", postID),
			zap.Error(err))
	}

	// @mentions inside the comment body notify the mentioned users
	for _, username := range notifications.ExtractMentions(comment.Content) {
		mentioned, err := h.userRepository.GetUserByUsername(username)
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				h.logger.Warn("mention lookup failed",
					zap.String("username", username),
					zap.Error(err))
			}
			continue
		}

		mentionEv := notifications.Event{
			Type:        models.NotificationTypeMention,
			RecipientID: mentioned.ID,
			ActorID:     actorID,
			TargetID:    postID,
			ActivityID:  postID,
			Enrichment:  enrichmentFromPost(post),
		}
		if err := h.notifier.Notify(ctx, mentionEv); err != nil {
			h.logger.Warn("mention notification failed",
				zap.Uint("recipient_id", mentioned.ID),
				zap.Error(err))
		}
	}
}

// GetComments lists the comments on a post
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID := c.Param("id")

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comments")
	}

	return c.JSON(http.StatusOK, comments)
}

// UpdateComment edits a comment owned by the caller
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	commentID, err := parseUintParam(c, "commentId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	req := new(models.UpdateCommentRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own comments")
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update comment")
	}

	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment owned by the caller
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	commentID, err := parseUintParam(c, "commentId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
	}

	if err := h.commentRepository.DeleteComment(commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete comment")
	}

	go func() {
		if err := h.postRepository.DecrementCommentsCount(context.Background(), comment.PostID); err != nil {
			h.logger.Warn("failed to decrement comments count",
				zap.String("post_id", comment.PostID),
				zap.Error(err))
		}
	}()

	return c.NoContent(http.StatusNoContent)
}

// RegisterCommentRoutes registers comment related routes on an authenticated group
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
	g.PUT("/comments/:commentId", h.UpdateComment)
	g.DELETE("/comments/:commentId", h.DeleteComment)
}
