package models

import "time"

// ModerationStatus is a post's current verdict status
type ModerationStatus string

const (
	ModerationStatusApproved ModerationStatus = "approved"
	ModerationStatusPending  ModerationStatus = "pending"
	ModerationStatusRejected ModerationStatus = "rejected"
	ModerationStatusFlagged  ModerationStatus = "flagged"
)

// ModerationAction is an immutable audit record of a moderation decision,
// automated or manual (PostgreSQL). Records are ordered by CreatedAt ascending.
type ModerationAction struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PostID      string    `json:"post_id" gorm:"index"` // MongoDB ObjectID as string
	ModeratorID uint      `json:"moderator_id"`         // 0 for automated rules
	Action      string    `json:"action" gorm:"size:20"` // approve, reject, flag, pending
	Reason      string    `json:"reason,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	RuleName    string    `json:"rule_name,omitempty" gorm:"size:50"` // set for automated actions
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

// ModerationActionRequest is the body for admin approve/reject/flag endpoints
type ModerationActionRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Notes  string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
