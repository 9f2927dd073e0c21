package domain

import "time"

// FCMToken represents a Firebase Cloud Messaging device token for push notifications
type FCMToken struct {
	Token      string    `json:"-" firestore:"-"` // Document ID; never exposed in JSON
	UserID     string    `json:"user_id" firestore:"userId"`
	DeviceInfo string    `json:"device_info" firestore:"deviceInfo"` // Browser/device metadata
	Platform   string    `json:"platform" firestore:"platform"`      // Bridge platform tag or "web"
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}
