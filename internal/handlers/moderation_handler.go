package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/moderation"
	"github.com/loopin-app/backend/internal/push"
	"github.com/loopin-app/backend/internal/repositories"
)

// ModerationHandler exposes the admin moderation queue and manual verdicts
type ModerationHandler struct {
	moderationService *moderation.Service
	postRepository    repositories.PostRepository
	sender            *push.Sender
	logger            *zap.Logger
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(modService *moderation.Service, postRepo repositories.PostRepository, sender *push.Sender, logger *zap.Logger) *ModerationHandler {
	return &ModerationHandler{
		moderationService: modService,
		postRepository:    postRepo,
		sender:            sender,
		logger:            logger,
	}
}

// GetModerationQueue lists posts by moderation status, defaulting to pending
func (h *ModerationHandler) GetModerationQueue(c echo.Context) error {
	status := models.ModerationStatus(c.QueryParam("status"))
	if status == "" {
		status = models.ModerationStatusPending
	}
	switch status {
	case models.ModerationStatusApproved, models.ModerationStatusPending,
		models.ModerationStatusRejected, models.ModerationStatusFlagged:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid moderation status")
	}

	page, limit := parsePagination(c)
	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetPostsByModerationStatus(c.Request().Context(), status, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch moderation queue")
	}

	return c.JSON(http.StatusOK, posts)
}

// ApprovePost records a manual approval verdict
func (h *ModerationHandler) ApprovePost(c echo.Context) error {
	return h.applyManualAction(c, models.ModerationStatusApproved)
}

// RejectPost records a manual rejection verdict
func (h *ModerationHandler) RejectPost(c echo.Context) error {
	return h.applyManualAction(c, models.ModerationStatusRejected)
}

// FlagPost records a manual flag for closer review
func (h *ModerationHandler) FlagPost(c echo.Context) error {
	return h.applyManualAction(c, models.ModerationStatusFlagged)
}

func (h *ModerationHandler) applyManualAction(c echo.Context, status models.ModerationStatus) error {
	moderatorID := getUserIDFromContext(c)
	if moderatorID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	postID := c.Param("id")
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	req := new(models.ModerationActionRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	switch status {
	case models.ModerationStatusApproved:
		err = h.moderationService.Approve(c.Request().Context(), postID, moderatorID, req.Reason, req.Notes)
	case models.ModerationStatusRejected:
		err = h.moderationService.Reject(c.Request().Context(), postID, moderatorID, req.Reason, req.Notes)
	case models.ModerationStatusFlagged:
		err = h.moderationService.Flag(c.Request().Context(), postID, moderatorID, req.Reason, req.Notes)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to apply moderation action")
	}

	// Approvals and rejections are final outcomes the author hears about;
	// flags are internal and stay silent.
	if status != models.ModerationStatusFlagged {
		go h.notifyOutcome(context.Background(), post, status)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"post_id": postID,
		"status":  string(status),
	})
}

// notifyOutcome sends the post owner a system push about the verdict
func (h *ModerationHandler) notifyOutcome(ctx context.Context, post *models.Post, status models.ModerationStatus) {
	body := "Your post has been approved"
	if status == models.ModerationStatusRejected {
		body = "Your post was removed for violating our community guidelines"
	}

	req := push.Request{
		UserID:   post.UserID,
		Type:     push.SystemTypePostModeration,
		Category: push.CategorySystem,
		Title:    "Loopin",
		Body:     body,
		TargetID: post.ID.Hex(),
	}
	if _, err := h.sender.Send(ctx, req); err != nil {
		h.logger.Warn("moderation outcome push failed",
			zap.String("post_id", post.ID.Hex()),
			zap.Uint("user_id", post.UserID),
			zap.Error(err))
	}
}

// GetModerationActions lists the decision history for a post, oldest first
func (h *ModerationHandler) GetModerationActions(c echo.Context) error {
	postID := c.Param("id")

	actions, err := h.moderationService.ActionsForPost(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch moderation actions")
	}

	return c.JSON(http.StatusOK, actions)
}

// RegisterModerationRoutes registers moderation routes on the admin group
func (h *ModerationHandler) RegisterModerationRoutes(g *echo.Group) {
	g.GET("/moderation/posts", h.GetModerationQueue)
	g.POST("/moderation/posts/:id/approve", h.ApprovePost)
	g.POST("/moderation/posts/:id/reject", h.RejectPost)
	g.POST("/moderation/posts/:id/flag", h.FlagPost)
	g.GET("/moderation/posts/:id/actions", h.GetModerationActions)
}
