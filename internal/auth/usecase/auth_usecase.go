package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"

	authdomain "portfolio-backend/internal/auth/domain"
	authdto "portfolio-backend/internal/auth/dto"
	"portfolio-backend/internal/auth/repository"
	"portfolio-backend/pkg/config"
)

const sessionIssuer = "portfolio-backend"

// AuthUsecase authenticates Firebase users and decides who is the master account
type AuthUsecase interface {
	// CreateSession exchanges a Firebase ID token for a backend session token
	CreateSession(ctx context.Context, idToken string) (*authdto.TokenResponse, error)

	// ValidateToken accepts either a session token or a Firebase ID token
	ValidateToken(ctx context.Context, token string) (*authdomain.User, error)

	// VerifyIDToken checks a Firebase ID token without creating a session
	VerifyIDToken(ctx context.Context, idToken string) (*authdomain.User, error)

	IsMaster(user *authdomain.User) bool

	RegisterFCMToken(ctx context.Context, userID string, req *authdto.RegisterFCMRequest) error
	UnregisterFCMToken(ctx context.Context, userID, token string) error

	// LatestFCMToken returns the most recently refreshed device token of a user
	LatestFCMToken(ctx context.Context, userID string) (string, error)
}

// TokenVerifier verifies Firebase ID tokens; *auth.Client satisfies it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	verifier     TokenVerifier
	userRepo     repository.UserRepository
	fcmTokenRepo repository.FCMTokenRepository
	config       *config.Config
	sessionKey   []byte
}

// NewAuthUsecase creates a new instance of authUsecase. Without JWT_SECRET a
// random key is generated, so session tokens only survive until restart.
func NewAuthUsecase(verifier TokenVerifier, userRepo repository.UserRepository, fcmTokenRepo repository.FCMTokenRepository, cfg *config.Config) AuthUsecase {
	key := []byte(cfg.JWTSecret)
	if len(key) == 0 {
		log.Println("[WARN] JWT_SECRET not set, using a random per-process session key")
		key = randomKey()
	}
	return &authUsecase{
		verifier:     verifier,
		userRepo:     userRepo,
		fcmTokenRepo: fcmTokenRepo,
		config:       cfg,
		sessionKey:   key,
	}
}

// randomKey returns 32 random bytes, or nil if the system has no entropy source
func randomKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Printf("[WARN] Failed to generate session key, session tokens disabled: %v", err)
		return nil
	}
	return key
}

func (u *authUsecase) VerifyIDToken(ctx context.Context, idToken string) (*authdomain.User, error) {
	if u.verifier == nil {
		return nil, authdomain.ErrInvalidToken
	}
	token, err := u.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authdomain.ErrInvalidToken, err)
	}

	user := &authdomain.User{
		ID:        token.UID,
		Email:     claimString(token.Claims, "email"),
		Name:      claimString(token.Claims, "name"),
		AvatarURL: claimString(token.Claims, "picture"),
		Provider:  token.Firebase.SignInProvider,
	}
	user.IsMaster = u.IsMaster(user)
	return user, nil
}

func (u *authUsecase) CreateSession(ctx context.Context, idToken string) (*authdto.TokenResponse, error) {
	user, err := u.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	expiresAt := time.Now().Add(u.config.JWTSessionExpiry)
	accessToken, err := u.generateSessionToken(user, expiresAt)
	if err != nil {
		return nil, err
	}

	log.Printf("[Auth] Session created for %s (master=%v)", user.Email, user.IsMaster)
	return &authdto.TokenResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func (u *authUsecase) generateSessionToken(user *authdomain.User, expiresAt time.Time) (string, error) {
	if len(u.sessionKey) == 0 {
		return "", errors.New("session signing key is not available")
	}
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iss":     sessionIssuer,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(u.sessionKey)
}

func (u *authUsecase) ValidateToken(ctx context.Context, tokenString string) (*authdomain.User, error) {
	if len(u.sessionKey) == 0 {
		return u.VerifyIDToken(ctx, tokenString)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return u.sessionKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(sessionIssuer))

	// Anything that is not one of our session tokens may still be a Firebase ID token
	if err != nil || !token.Valid {
		return u.VerifyIDToken(ctx, tokenString)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, authdomain.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, authdomain.ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, authdomain.ErrUserNotFound
	}

	user.IsMaster = u.IsMaster(user)
	return user, nil
}

// IsMaster compares the user against the MASTER_EMAILS / MASTER_UIDS allow-list
func (u *authUsecase) IsMaster(user *authdomain.User) bool {
	if user == nil {
		return false
	}
	if user.ID != "" && slices.Contains(u.config.MasterUIDs, user.ID) {
		return true
	}
	if user.Email == "" {
		return false
	}
	return slices.ContainsFunc(u.config.MasterEmails, func(email string) bool {
		return strings.EqualFold(email, user.Email)
	})
}

func (u *authUsecase) RegisterFCMToken(ctx context.Context, userID string, req *authdto.RegisterFCMRequest) error {
	platform := req.Platform
	if platform == "" {
		platform = "web"
	}
	return u.fcmTokenRepo.SaveToken(ctx, &authdomain.FCMToken{
		Token:      req.Token,
		UserID:     userID,
		DeviceInfo: req.DeviceInfo,
		Platform:   platform,
	})
}

func (u *authUsecase) UnregisterFCMToken(ctx context.Context, userID, token string) error {
	existing, err := u.fcmTokenRepo.FindToken(ctx, token)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if existing.UserID != userID {
		return authdomain.ErrTokenNotOwned
	}
	return u.fcmTokenRepo.DeleteToken(ctx, token)
}

func (u *authUsecase) LatestFCMToken(ctx context.Context, userID string) (string, error) {
	tokens, err := u.fcmTokenRepo.GetTokensByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", authdomain.ErrNoFCMToken
	}

	latest := slices.MaxFunc(tokens, func(a, b authdomain.FCMToken) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
	return latest.Token, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// IsAuthError reports whether err should be answered with 401
func IsAuthError(err error) bool {
	return errors.Is(err, authdomain.ErrInvalidToken) || errors.Is(err, authdomain.ErrUserNotFound)
}
