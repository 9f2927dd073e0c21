package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	authdomain "portfolio-backend/internal/auth/domain"
)

const fcmTokensCollection = "fcmTokens"

// fcmTokenRepository implements FCMTokenRepository on Firestore.
// Documents are keyed by the token itself, so a save for a known token overwrites it.
type fcmTokenRepository struct {
	client *firestore.Client
}

// NewFCMTokenRepository creates a new instance of fcmTokenRepository
func NewFCMTokenRepository(client *firestore.Client) FCMTokenRepository {
	return &fcmTokenRepository{
		client: client,
	}
}

// SaveToken saves or updates an FCM token (atomic upsert)
func (r *fcmTokenRepository) SaveToken(ctx context.Context, token *authdomain.FCMToken) error {
	ref := r.client.Collection(fcmTokensCollection).Doc(token.Token)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		token.UpdatedAt = now

		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			token.CreatedAt = now
		case err != nil:
			return err
		default:
			createdAt, err := snap.DataAt("createdAt")
			if t, ok := createdAt.(time.Time); err == nil && ok {
				token.CreatedAt = t
			} else {
				token.CreatedAt = now
			}
		}
		return tx.Set(ref, token)
	})
}

// FindToken returns the stored token, or nil when it is unknown
func (r *fcmTokenRepository) FindToken(ctx context.Context, token string) (*authdomain.FCMToken, error) {
	snap, err := r.client.Collection(fcmTokensCollection).Doc(token).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodeToken(snap)
}

// GetTokensByUserID returns all FCM tokens for a user
func (r *fcmTokenRepository) GetTokensByUserID(ctx context.Context, userID string) ([]authdomain.FCMToken, error) {
	docs, err := r.client.Collection(fcmTokensCollection).Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeTokens(docs)
}

// GetAllTokens returns every registered device token
func (r *fcmTokenRepository) GetAllTokens(ctx context.Context) ([]authdomain.FCMToken, error) {
	docs, err := r.client.Collection(fcmTokensCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeTokens(docs)
}

// DeleteToken removes a specific FCM token
func (r *fcmTokenRepository) DeleteToken(ctx context.Context, token string) error {
	_, err := r.client.Collection(fcmTokensCollection).Doc(token).Delete(ctx)
	return err
}

func decodeTokens(docs []*firestore.DocumentSnapshot) ([]authdomain.FCMToken, error) {
	tokens := make([]authdomain.FCMToken, 0, len(docs))
	for _, doc := range docs {
		token, err := decodeToken(doc)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *token)
	}
	return tokens, nil
}

func decodeToken(snap *firestore.DocumentSnapshot) (*authdomain.FCMToken, error) {
	var token authdomain.FCMToken
	if err := snap.DataTo(&token); err != nil {
		return nil, err
	}
	token.Token = snap.Ref.ID
	return &token, nil
}
