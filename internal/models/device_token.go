package models

import "time"

// DeviceToken is a registered push token for one of a user's devices (PostgreSQL).
// Tokens the gateway reports as unregistered are deleted by the push sender.
type DeviceToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Token     string    `json:"token" gorm:"uniqueIndex;size:512"`
	Platform  string    `json:"platform" gorm:"size:10"` // ios, android
	Enabled   bool      `json:"enabled" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterDeviceTokenRequest defines the body for registering a push token
type RegisterDeviceTokenRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android"`
}

// PushDeliveryLog is the delivery-audit entry written for every push attempt,
// regardless of outcome (PostgreSQL).
type PushDeliveryLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"index"`
	NotificationID string    `json:"notification_id" gorm:"size:36;index"`
	Status         string    `json:"status" gorm:"size:10"` // sent, failed, skipped
	TokenCount     int       `json:"token_count"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	PushDeliveryStatusSent    = "sent"
	PushDeliveryStatusFailed  = "failed"
	PushDeliveryStatusSkipped = "skipped"
)
