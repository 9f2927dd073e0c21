package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrUserNotFound  = errors.New("user not found")
	ErrNotMaster     = errors.New("master account required")
	ErrTokenNotOwned = errors.New("fcm token belongs to another user")
	ErrNoFCMToken    = errors.New("no fcm token registered")
)

// User is a signed-in Firebase user mirrored into the users collection.
type User struct {
	ID          string    `json:"id" firestore:"-"`
	Email       string    `json:"email" firestore:"email"`
	Name        string    `json:"name" firestore:"name"`
	AvatarURL   string    `json:"avatar_url,omitempty" firestore:"avatarUrl"`
	Provider    string    `json:"provider" firestore:"provider"` // Firebase sign-in provider, e.g. "password" or "google.com"
	IsMaster    bool      `json:"is_master" firestore:"-"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	LastLoginAt time.Time `json:"last_login_at" firestore:"lastLoginAt"`
}
