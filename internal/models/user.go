package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents an account (PostgreSQL)
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Username        string    `json:"username" gorm:"size:30;uniqueIndex"`
	DisplayName     string    `json:"display_name" gorm:"size:50"`
	Email           string    `json:"email" gorm:"uniqueIndex"`
	Password        string    `json:"-"` // bcrypt hash, never serialized
	ProfilePhotoURL string    `json:"profile_photo_url"`
	Bio             string    `json:"bio,omitempty" gorm:"size:160"`
	IsAdmin         bool      `json:"is_admin,omitempty" gorm:"default:false"`
	FollowersCount  int       `json:"followers_count" gorm:"default:0"`
	FollowingCount  int       `json:"following_count" gorm:"default:0"`
	FirebaseUID     string    `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserCompact is the minimal user projection embedded in responses
type UserCompact struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	ProfilePhotoURL string `json:"profile_photo_url"`
}

// ToCompact converts a User to its compact projection
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:              u.ID,
		Username:        u.Username,
		DisplayName:     u.DisplayName,
		ProfilePhotoURL: u.ProfilePhotoURL,
	}
}

type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=2,max=30"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=50"`
	Email       string `json:"email" validate:"required,email"`
	FirebaseUID string `json:"firebase_uid" validate:"required"` // Firebase UID provided by the client after Firebase Auth
}

type CreateLocalUserRequest struct {
	Username    string `json:"username" validate:"required,min=2,max=30"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	DisplayName     string `json:"display_name,omitempty" validate:"omitempty,min=1,max=50"`
	Bio             string `json:"bio,omitempty" validate:"omitempty,max=160"`
	ProfilePhotoURL string `json:"profile_photo_url,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
