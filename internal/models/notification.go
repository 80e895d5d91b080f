package models

import "time"

// Notification types. Only these four kinds participate in aggregation.
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
	NotificationTypeMention = "mention"
)

// ValidNotificationType reports whether t is one of the enumerated kinds.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationTypeLike, NotificationTypeComment, NotificationTypeFollow, NotificationTypeMention:
		return true
	}
	return false
}

// ActorSnapshot is the display data remembered for a contributing actor.
type ActorSnapshot struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	ProfilePhotoURL string `json:"profile_photo_url,omitempty"`
}

// Notification is an aggregated notification record (PostgreSQL).
//
// A recipient/type/target combination has at most one open (unread,
// within-window) record at a time. Actors holds the most recent few
// contributing actors; ActorCount keeps counting past the cap.
type Notification struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	Type            string          `json:"type" gorm:"size:30;index:idx_notif_key"`
	RecipientID     uint            `json:"recipient_id" gorm:"index:idx_notif_key"`
	TargetID        string          `json:"target_id" gorm:"index:idx_notif_key"` // post ID, user ID, etc.
	ActivityID      string          `json:"activity_id,omitempty"`                // comment ID for comment/mention events
	Actors          []ActorSnapshot `json:"actors" gorm:"serializer:json"`
	ActorCount      int             `json:"actor_count" gorm:"default:0"`
	Message         string          `json:"message"`
	PreviewImageURL string          `json:"preview_image_url,omitempty"`
	ThumbnailURL    string          `json:"thumbnail_url,omitempty"`
	Caption         string          `json:"caption,omitempty"`
	IsRead          bool            `json:"is_read" gorm:"default:false;index"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`
	LastActivityAt  time.Time       `json:"last_activity_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
