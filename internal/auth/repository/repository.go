package repository

import (
	"context"

	authdomain "portfolio-backend/internal/auth/domain"
)

// UserRepository mirrors Firebase users that signed in to the backend
type UserRepository interface {
	Upsert(ctx context.Context, user *authdomain.User) error
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
}

// FCMTokenRepository defines the interface for FCM token operations
type FCMTokenRepository interface {
	SaveToken(ctx context.Context, token *authdomain.FCMToken) error
	FindToken(ctx context.Context, token string) (*authdomain.FCMToken, error)
	GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.FCMToken, error)
	GetAllTokens(ctx context.Context) ([]authdomain.FCMToken, error)
	DeleteToken(ctx context.Context, token string) error
}
