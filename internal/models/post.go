package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB.
// The current moderation verdict is stamped on the document; the full
// decision history lives in ModerationAction records.
type Post struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID           uint               `json:"user_id" bson:"user_id"`
	Content          string             `json:"content" bson:"content"`
	ImageURLs        []string           `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	VideoURLs        []string           `json:"video_urls,omitempty" bson:"video_urls,omitempty"`
	LikesCount       int                `json:"likes_count" bson:"likes_count"`
	CommentsCount    int                `json:"comments_count" bson:"comments_count"`
	ModerationStatus ModerationStatus   `json:"moderation_status" bson:"moderation_status"`
	ModerationReason string             `json:"moderation_reason,omitempty" bson:"moderation_reason,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content   string   `json:"content" validate:"required,min=1,max=280"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	VideoURLs []string `json:"video_urls,omitempty" validate:"omitempty,dive,url"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content   string   `json:"content,omitempty" validate:"omitempty,min=1,max=280"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	VideoURLs []string `json:"video_urls,omitempty" validate:"omitempty,dive,url"`
}
