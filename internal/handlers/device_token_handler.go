package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/repositories"
)

// DeviceTokenHandler manages FCM device token registration. It is mounted on
// the mobile group where requests authenticate with a Firebase ID token.
type DeviceTokenHandler struct {
	deviceTokenRepository repositories.DeviceTokenRepository
	userRepository        repositories.UserRepository
}

// NewDeviceTokenHandler creates a new DeviceTokenHandler
func NewDeviceTokenHandler(tokenRepo repositories.DeviceTokenRepository, userRepo repositories.UserRepository) *DeviceTokenHandler {
	return &DeviceTokenHandler{
		deviceTokenRepository: tokenRepo,
		userRepository:        userRepo,
	}
}

// RemoveDeviceTokenRequest is the payload for unregistering a token
type RemoveDeviceTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// RegisterDeviceToken upserts an FCM token for the authenticated device
func (h *DeviceTokenHandler) RegisterDeviceToken(c echo.Context) error {
	user, err := h.userFromFirebaseUID(c)
	if err != nil {
		return err
	}

	req := new(models.RegisterDeviceTokenRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token := &models.DeviceToken{
		UserID:   user.ID,
		Token:    req.Token,
		Platform: req.Platform,
		Enabled:  true,
	}

	if err := h.deviceTokenRepository.Register(c.Request().Context(), token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register device token")
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "Device token registered"})
}

// RemoveDeviceToken unregisters an FCM token, e.g. on sign-out
func (h *DeviceTokenHandler) RemoveDeviceToken(c echo.Context) error {
	user, err := h.userFromFirebaseUID(c)
	if err != nil {
		return err
	}

	req := new(RemoveDeviceTokenRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.deviceTokenRepository.Remove(c.Request().Context(), user.ID, req.Token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove device token")
	}

	return c.NoContent(http.StatusNoContent)
}

// userFromFirebaseUID maps the verified Firebase UID to a local account
func (h *DeviceTokenHandler) userFromFirebaseUID(c echo.Context) (*models.User, error) {
	firebaseUID, ok := c.Get("firebaseUID").(string)
	if !ok || firebaseUID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	user, err := h.userRepository.GetUserByFirebaseUID(firebaseUID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "No account linked to this Firebase user")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up user")
	}
	return user, nil
}

// RegisterDeviceTokenRoutes registers device token routes on the mobile group
func (h *DeviceTokenHandler) RegisterDeviceTokenRoutes(g *echo.Group) {
	g.POST("/devices/tokens", h.RegisterDeviceToken)
	g.DELETE("/devices/tokens", h.RemoveDeviceToken)
}
