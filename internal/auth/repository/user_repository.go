package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	authdomain "portfolio-backend/internal/auth/domain"
)

const usersCollection = "users"

// userRepository implements UserRepository on Firestore
type userRepository struct {
	client *firestore.Client
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(client *firestore.Client) UserRepository {
	return &userRepository{client: client}
}

// Upsert writes the profile, keeping the original creation time
func (r *userRepository) Upsert(ctx context.Context, user *authdomain.User) error {
	ref := r.client.Collection(usersCollection).Doc(user.ID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		user.LastLoginAt = now

		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			user.CreatedAt = now
		case err != nil:
			return err
		default:
			var existing authdomain.User
			if err := snap.DataTo(&existing); err != nil {
				return err
			}
			user.CreatedAt = existing.CreatedAt
		}
		return tx.Set(ref, user)
	})
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var user authdomain.User
	if err := snap.DataTo(&user); err != nil {
		return nil, err
	}
	user.ID = snap.Ref.ID
	return &user, nil
}
