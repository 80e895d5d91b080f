package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/moderation"
	"github.com/loopin-app/backend/internal/notifications"
	"github.com/loopin-app/backend/internal/repositories"
)

// PostHandler handles post related requests
type PostHandler struct {
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	moderationService *moderation.Service
	notifier          *notifications.Notifier
	logger            *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, modService *moderation.Service, notifier *notifications.Notifier, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		userRepository:    userRepo,
		moderationService: modService,
		notifier:          notifier,
		logger:            logger,
	}
}

// CreatePost creates a new post, runs it through the moderation rule chain,
// and fans out mention notifications
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	req := new(models.CreatePostRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		UserID:           userID,
		Content:          req.Content,
		ImageURLs:        req.ImageURLs,
		VideoURLs:        req.VideoURLs,
		ModerationStatus: models.ModerationStatusPending,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post")
	}

	// Rule failures inside the chain are already absorbed by the engine;
	// a moderation store failure must not take the created post down with it.
	if _, err := h.moderationService.EvaluatePost(c.Request().Context(), post); err != nil {
		h.logger.Error("moderation evaluation failed",
			zap.String("post_id", post.ID.Hex()),
			zap.Error(err))
	}

	if post.ModerationStatus != models.ModerationStatusRejected {
		go h.notifyMentions(context.Background(), userID, post)
	}

	return c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post owned by the caller and re-runs moderation
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	postID := c.Param("id")

	req := new(models.UpdatePostRequest)
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
	if post.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only update your own posts")
	}

	if req.Content != "" {
		post.Content = req.Content
	}
	if req.ImageURLs != nil {
		post.ImageURLs = req.ImageURLs
	}
	if req.VideoURLs != nil {
		post.VideoURLs = req.VideoURLs
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update post")
	}

	// Edited content goes back through the rule chain
	if _, err := h.moderationService.EvaluatePost(c.Request().Context(), post); err != nil {
		h.logger.Error("moderation evaluation failed",
			zap.String("post_id", post.ID.Hex()),
			zap.Error(err))
	}

	return c.JSON(http.StatusOK, post)
}

// GetPost fetches a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	// Rejected posts stay visible to their author only
	if post.ModerationStatus == models.ModerationStatusRejected && post.UserID != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	return c.JSON(http.StatusOK, post)
}

// ListPosts returns visible posts, newest first
func (h *PostHandler) ListPosts(c echo.Context) error {
	page, limit := parsePagination(c)
	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetVisiblePosts(c.Request().Context(), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch posts")
	}

	return c.JSON(http.StatusOK, posts)
}

// GetUserPosts returns a user's posts
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	page, limit := parsePagination(c)
	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetPostsByUserID(c.Request().Context(), userID, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch posts")
	}

	return c.JSON(http.StatusOK, posts)
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own posts")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete post")
	}

	return c.NoContent(http.StatusNoContent)
}

// notifyMentions records a mention event for every @username in the post
func (h *PostHandler) notifyMentions(ctx context.Context, actorID uint, post *models.Post) {
	for _, username := range notifications.ExtractMentions(post.Content) {
		mentioned, err := h.userRepository.GetUserByUsername(username)
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				h.logger.Warn("mention lookup failed",
					zap.String("username", username),
					zap.Error(err))
			}
			continue
		}

		ev := notifications.Event{
			Type:        models.NotificationTypeMention,
			RecipientID: mentioned.ID,
			ActorID:     actorID,
			TargetID:    post.ID.Hex(),
			ActivityID:  post.ID.Hex(),
			Enrichment:  enrichmentFromPost(post),
		}
		if err := h.notifier.Notify(ctx, ev); err != nil {
			h.logger.Warn("mention notification failed",
				zap.Uint("recipient_id", mentioned.ID),
				zap.Error(err))
		}
	}
}

// enrichmentFromPost builds the display data attached to a burst's first record
func enrichmentFromPost(post *models.Post) *notifications.Enrichment {
	enrichment := &notifications.Enrichment{Caption: truncate(post.Content, 80)}
	if len(post.ImageURLs) > 0 {
		enrichment.PreviewImageURL = post.ImageURLs[0]
		enrichment.ThumbnailURL = post.ImageURLs[0]
	}
	return enrichment
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// RegisterPostRoutes registers post related routes on an authenticated group
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.ListPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/users/:id/posts", h.GetUserPosts)
}
