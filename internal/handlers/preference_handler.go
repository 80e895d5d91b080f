package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loopin-app/backend/internal/models"
	"github.com/loopin-app/backend/internal/repositories"
)

// PreferenceHandler manages a user's push-delivery preferences
type PreferenceHandler struct {
	preferenceRepository repositories.PreferenceRepository
}

// NewPreferenceHandler creates a new PreferenceHandler
func NewPreferenceHandler(prefRepo repositories.PreferenceRepository) *PreferenceHandler {
	return &PreferenceHandler{preferenceRepository: prefRepo}
}

// GetPreferences returns the caller's preferences, falling back to the
// defaults when the user has never touched their settings
func (h *PreferenceHandler) GetPreferences(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	prefs, err := h.preferenceRepository.Get(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch preferences")
	}
	if prefs == nil {
		prefs = defaultPreferences(userID)
	}

	return c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences patches the caller's preferences; only fields present in
// the request change
func (h *PreferenceHandler) UpdatePreferences(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	req := new(models.UpdateNotificationPreferencesRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	prefs, err := h.preferenceRepository.Get(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch preferences")
	}
	if prefs == nil {
		prefs = defaultPreferences(userID)
	}

	applyPreferencePatch(prefs, req)

	if err := h.preferenceRepository.Save(c.Request().Context(), prefs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save preferences")
	}

	return c.JSON(http.StatusOK, prefs)
}

// defaultPreferences mirrors the sender's no-row defaults: engagement on,
// promotional off
func defaultPreferences(userID uint) *models.NotificationPreferences {
	return &models.NotificationPreferences{
		UserID:          userID,
		PushEnabled:     true,
		LikesEnabled:    true,
		CommentsEnabled: true,
		FollowsEnabled:  true,
		MentionsEnabled: true,
	}
}

func applyPreferencePatch(prefs *models.NotificationPreferences, req *models.UpdateNotificationPreferencesRequest) {
	if req.PushEnabled != nil {
		prefs.PushEnabled = *req.PushEnabled
	}
	if req.LikesEnabled != nil {
		prefs.LikesEnabled = *req.LikesEnabled
	}
	if req.CommentsEnabled != nil {
		prefs.CommentsEnabled = *req.CommentsEnabled
	}
	if req.FollowsEnabled != nil {
		prefs.FollowsEnabled = *req.FollowsEnabled
	}
	if req.MentionsEnabled != nil {
		prefs.MentionsEnabled = *req.MentionsEnabled
	}
	if req.PromotionalEnabled != nil {
		prefs.PromotionalEnabled = *req.PromotionalEnabled
	}
	if req.AnnouncementsEnabled != nil {
		prefs.AnnouncementsEnabled = *req.AnnouncementsEnabled
	}
	if req.PromosEnabled != nil {
		prefs.PromosEnabled = *req.PromosEnabled
	}
	if req.FeatureUpdatesEnabled != nil {
		prefs.FeatureUpdatesEnabled = *req.FeatureUpdatesEnabled
	}
	if req.EventsEnabled != nil {
		prefs.EventsEnabled = *req.EventsEnabled
	}
}

// RegisterPreferenceRoutes registers preference routes on an authenticated group
func (h *PreferenceHandler) RegisterPreferenceRoutes(g *echo.Group) {
	g.GET("/notifications/preferences", h.GetPreferences)
	g.PUT("/notifications/preferences", h.UpdatePreferences)
}
