package models

import "time"

// Promotional sub-types a user can opt into individually.
const (
	PromotionalSubtypeAnnouncements  = "announcements"
	PromotionalSubtypePromos         = "promos"
	PromotionalSubtypeFeatureUpdates = "feature_updates"
	PromotionalSubtypeEvents         = "events"
)

// NotificationPreferences holds a user's push-delivery preferences (PostgreSQL).
//
// When no row exists for a user the defaults are asymmetric: push and all
// engagement types default to enabled, promotional sub-types default to
// opted-out. The push sender applies those defaults; this row only exists
// once a user has touched their settings.
type NotificationPreferences struct {
	UserID      uint `json:"user_id" gorm:"primaryKey"`
	PushEnabled bool `json:"push_enabled" gorm:"default:true"`

	LikesEnabled    bool `json:"likes_enabled" gorm:"default:true"`
	CommentsEnabled bool `json:"comments_enabled" gorm:"default:true"`
	FollowsEnabled  bool `json:"follows_enabled" gorm:"default:true"`
	MentionsEnabled bool `json:"mentions_enabled" gorm:"default:true"`

	PromotionalEnabled    bool `json:"promotional_enabled" gorm:"default:false"`
	AnnouncementsEnabled  bool `json:"announcements_enabled" gorm:"default:false"`
	PromosEnabled         bool `json:"promos_enabled" gorm:"default:false"`
	FeatureUpdatesEnabled bool `json:"feature_updates_enabled" gorm:"default:false"`
	EventsEnabled         bool `json:"events_enabled" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EngagementEnabled reports whether the given notification type is enabled.
// Unknown types are allowed by default.
func (p *NotificationPreferences) EngagementEnabled(notificationType string) bool {
	switch notificationType {
	case NotificationTypeLike:
		return p.LikesEnabled
	case NotificationTypeComment:
		return p.CommentsEnabled
	case NotificationTypeFollow:
		return p.FollowsEnabled
	case NotificationTypeMention:
		return p.MentionsEnabled
	default:
		return true
	}
}

// PromotionalSubtypeEnabled reports whether the given promotional sub-type is
// opted into. The master promotional switch gates every sub-type.
func (p *NotificationPreferences) PromotionalSubtypeEnabled(subtype string) bool {
	if !p.PromotionalEnabled {
		return false
	}
	switch subtype {
	case PromotionalSubtypeAnnouncements:
		return p.AnnouncementsEnabled
	case PromotionalSubtypePromos:
		return p.PromosEnabled
	case PromotionalSubtypeFeatureUpdates:
		return p.FeatureUpdatesEnabled
	case PromotionalSubtypeEvents:
		return p.EventsEnabled
	default:
		return false
	}
}

// UpdateNotificationPreferencesRequest is the body for the preferences endpoint.
// Pointer fields so only provided settings are changed.
type UpdateNotificationPreferencesRequest struct {
	PushEnabled           *bool `json:"push_enabled"`
	LikesEnabled          *bool `json:"likes_enabled"`
	CommentsEnabled       *bool `json:"comments_enabled"`
	FollowsEnabled        *bool `json:"follows_enabled"`
	MentionsEnabled       *bool `json:"mentions_enabled"`
	PromotionalEnabled    *bool `json:"promotional_enabled"`
	AnnouncementsEnabled  *bool `json:"announcements_enabled"`
	PromosEnabled         *bool `json:"promos_enabled"`
	FeatureUpdatesEnabled *bool `json:"feature_updates_enabled"`
	EventsEnabled         *bool `json:"events_enabled"`
}
