package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/loopin-app/backend/internal/push"
	"github.com/loopin-app/backend/internal/repositories"
)

// PromotionHandler broadcasts promotional pushes. Delivery honors the
// opt-out-by-default promotional preferences; the broadcast only reaches
// users who opted in.
type PromotionHandler struct {
	userRepository repositories.UserRepository
	sender         *push.Sender
	logger         *zap.Logger
}

// NewPromotionHandler creates a new PromotionHandler
func NewPromotionHandler(userRepo repositories.UserRepository, sender *push.Sender, logger *zap.Logger) *PromotionHandler {
	return &PromotionHandler{
		userRepository: userRepo,
		sender:         sender,
		logger:         logger,
	}
}

// BroadcastRequest is the body for the promotional broadcast endpoint.
// An empty user_ids list targets every user.
type BroadcastRequest struct {
	Subtype  string `json:"subtype" validate:"required,oneof=announcements promos feature_updates events"`
	Title    string `json:"title" validate:"required,max=100"`
	Body     string `json:"body" validate:"required,max=500"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
	DeepLink string `json:"deep_link,omitempty"`
	UserIDs  []uint `json:"user_ids,omitempty"`
}

// Broadcast fans a promotional push out to the target users in paced chunks
func (h *PromotionHandler) Broadcast(c echo.Context) error {
	req := new(BroadcastRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userIDs := req.UserIDs
	if len(userIDs) == 0 {
		var err error
		userIDs, err = h.userRepository.GetAllUserIDs()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve broadcast audience")
		}
	}

	broadcastID := uuid.NewString()
	template := push.Request{
		NotificationID: broadcastID,
		Type:           req.Subtype,
		Category:       push.CategoryPromotional,
		Title:          req.Title,
		Body:           req.Body,
		ImageURL:       req.ImageURL,
		DeepLink:       req.DeepLink,
	}

	result, err := h.sender.SendBatch(c.Request().Context(), userIDs, template)
	if err != nil {
		h.logger.Error("promotional broadcast aborted",
			zap.String("broadcast_id", broadcastID),
			zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Broadcast aborted")
	}

	h.logger.Info("promotional broadcast complete",
		zap.String("broadcast_id", broadcastID),
		zap.String("subtype", req.Subtype),
		zap.Int("total", result.Total),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"broadcast_id": broadcastID,
		"result":       result,
	})
}

// RegisterPromotionRoutes registers broadcast routes on the admin group
func (h *PromotionHandler) RegisterPromotionRoutes(g *echo.Group) {
	g.POST("/promotions/broadcast", h.Broadcast)
}
