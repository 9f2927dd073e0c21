package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	authdomain "portfolio-backend/internal/auth/domain"
	authdto "portfolio-backend/internal/auth/dto"
	"portfolio-backend/internal/mobile/domain"
	"portfolio-backend/internal/mobile/hub"
	"portfolio-backend/pkg/bridge"
	"portfolio-backend/pkg/fcm"
)

const callbackTimeout = 10 * time.Second

// Authenticator is the part of the auth module native logins need
type Authenticator interface {
	VerifyIDToken(ctx context.Context, idToken string) (*authdomain.User, error)
	RegisterFCMToken(ctx context.Context, userID string, req *authdto.RegisterFCMRequest) error
	LatestFCMToken(ctx context.Context, userID string) (string, error)
}

// MobileUsecase hosts native shell sessions and lets the master drive their bridges
type MobileUsecase interface {
	// OpenSession builds and registers a session from its hello frame
	OpenSession(conn *websocket.Conn, hello domain.Frame, remoteAddr string) (*hub.Session, error)
	CloseSession(s *hub.Session)

	ListSessions() []domain.SessionInfo
	GetSession(id string) (domain.SessionInfo, error)

	// StartLogin and friends are fire-and-forget; the outcome shows up in the session's last auth
	StartLogin(ctx context.Context, id string, creds bridge.Credentials) (bridge.Response, error)
	CheckStatus(ctx context.Context, id string) (bridge.Response, error)
	StartLogout(ctx context.Context, id string) (bridge.Response, error)

	// Login and friends wait for the native outcome or the auth timeout
	Login(ctx context.Context, id string, creds bridge.Credentials) (bridge.AuthResult, error)
	Status(ctx context.Context, id string) (bool, error)
	Logout(ctx context.Context, id string) error

	StoreFCMToken(ctx context.Context, id, token string) (bridge.Response, error)
	SendUserData(ctx context.Context, id string, data json.RawMessage) (bridge.Response, error)
	Dispatch(ctx context.Context, id, action string, data json.RawMessage) (bridge.Response, error)

	Shutdown()
}

type mobileUsecase struct {
	hub  *hub.Hub
	auth Authenticator
	cfg  hub.SessionConfig
}

// NewMobileUsecase creates a new MobileUsecase. auth may be nil, in which case
// native logins are recorded but never verified.
func NewMobileUsecase(h *hub.Hub, auth Authenticator, cfg hub.SessionConfig) MobileUsecase {
	u := &mobileUsecase{hub: h, auth: auth, cfg: cfg}
	if auth != nil && u.cfg.Tokens == nil {
		u.cfg.Tokens = auth.LatestFCMToken
	}
	return u
}

func (u *mobileUsecase) OpenSession(conn *websocket.Conn, hello domain.Frame, remoteAddr string) (*hub.Session, error) {
	s, err := hub.NewSession(conn, hello, remoteAddr, u.cfg)
	if err != nil {
		return nil, err
	}
	s.Bridge().SetupAuthCallbacks(u.callbacksFor(s))
	u.hub.Register(s)
	return s, nil
}

func (u *mobileUsecase) CloseSession(s *hub.Session) {
	u.hub.Unregister(s)
}

func (u *mobileUsecase) callbacksFor(s *hub.Session) bridge.AuthCallbacks {
	return bridge.AuthCallbacks{
		OnLoginSuccess: func(token string, user bridge.UserData) {
			u.loginSucceeded(s, token, user)
		},
		OnLoginError: func(code, message string) {
			log.Printf("[Mobile] Session %s login failed (%s): %s", s.ID(), code, message)
			s.RecordAuth(domain.AuthEvent{Kind: domain.AuthLoginError, Code: code, Message: message})
		},
		OnAuthStatus: func(authenticated bool) {
			s.RecordAuth(domain.AuthEvent{Kind: domain.AuthStatus, Authenticated: authenticated, UserID: s.UserID()})
		},
		OnLogout: func() {
			log.Printf("[Mobile] Session %s logged out", s.ID())
			s.RecordAuth(domain.AuthEvent{Kind: domain.AuthLogout})
		},
	}
}

// loginSucceeded verifies the ID token the shell obtained and registers the
// device push token it reported, if any.
func (u *mobileUsecase) loginSucceeded(s *hub.Session, token string, user bridge.UserData) {
	event := domain.AuthEvent{
		Kind:          domain.AuthLoginSuccess,
		Authenticated: true,
		Email:         userString(user, "email"),
	}

	if u.auth == nil {
		log.Printf("[Mobile] Session %s login for %s not verified: auth is not configured", s.ID(), event.Email)
		s.RecordAuth(event)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), callbackTimeout)
	defer cancel()

	verified, err := u.auth.VerifyIDToken(ctx, token)
	if err != nil {
		log.Printf("[Mobile] Session %s login token rejected: %v", s.ID(), err)
		event.Message = err.Error()
		s.RecordAuth(event)
		return
	}
	event.Verified = true
	event.UserID = verified.ID
	if verified.Email != "" {
		event.Email = verified.Email
	}
	s.RecordAuth(event)
	log.Printf("[Mobile] Session %s signed in as %s", s.ID(), verified.ID)

	pushToken := userString(user, "fcmToken")
	if pushToken == "" {
		return
	}
	req := &authdto.RegisterFCMRequest{
		Token:      pushToken,
		DeviceInfo: userString(user, "deviceInfo"),
		Platform:   string(s.Bridge().Platform()),
	}
	if err := u.auth.RegisterFCMToken(ctx, verified.ID, req); err != nil {
		log.Printf("[Mobile] Session %s failed to register FCM token %s: %v", s.ID(), fcm.Redact(pushToken), err)
	}
}

func userString(user bridge.UserData, key string) string {
	if v, ok := user[key].(string); ok {
		return v
	}
	return ""
}

func (u *mobileUsecase) ListSessions() []domain.SessionInfo {
	sessions := u.hub.List()
	infos := make([]domain.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

func (u *mobileUsecase) GetSession(id string) (domain.SessionInfo, error) {
	s, err := u.session(id)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	return s.Info(), nil
}

func (u *mobileUsecase) session(id string) (*hub.Session, error) {
	s, ok := u.hub.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (u *mobileUsecase) StartLogin(ctx context.Context, id string, creds bridge.Credentials) (bridge.Response, error) {
	s, err := u.session(id)
	if err != nil {
		return bridge.Response{}, err
	}
	return s.Bridge().StartMobileLogin(ctx, creds), nil
}

func (u *mobileUsecase) CheckStatus(ctx context.Context, id string) (bridge.Response, error) {
	s, err := u.session(id)
	if err != nil {
		return bridge.Response{}, err
	}
	return s.Bridge().CheckAuthStatus(ctx), nil
}

func (u *mobileUsecase) StartLogout(ctx context.Context, id string) (bridge.Response, error) {
	s, err := u.session(id)
	if err != nil {
		return bridge.Response{}, err
	}
	return s.Bridge().StartLogout(ctx), nil
}

func (u *mobileUsecase) Login(ctx context.Context, id string, creds bridge.Credentials) (bridge.AuthResult, error) {
	s, err := u.session(id)
	if err != nil {
		return bridge.AuthResult{}, err
	}
	return s.Bridge().Login(ctx, creds)
}

func (u *mobileUsecase) Status(ctx context.Context, id string) (bool, error) {
	s, err := u.session(id)
	if err != nil {
		return false, err
	}
	return s.Bridge().AuthStatus(ctx)
}

func (u *mobileUsecase) Logout(ctx context.Context, id string) error {
	s, err := u.session(id)
	if err != nil {
		return err
	}
	return s.Bridge().Logout(ctx)
}

func (u *mobileUsecase) StoreFCMToken(ctx context.Context, id, token string) (bridge.Response, error) {
	s, err := u.session(id)
	if err != nil {
		return bridge.Response{}, err
	}
	return s.Bridge().StoreFCMToken(ctx, token), nil
}

func (u *mobileUsecase) SendUserData(ctx context.Context, id string, data json.RawMessage) (bridge.Response, error) {
	s, err := u.session(id)
	if err != nil {
		return bridge.Response{}, err
	}
	return s.Bridge().SendUserData(ctx, payload(data)), nil
}

func (u *mobileUsecase) Dispatch(ctx context.Context, id, action string, data json.RawMessage) (bridge.Response, error) {
	s, err := u.session(id)
	if err != nil {
		return bridge.Response{}, err
	}
	if action == "" {
		return s.Bridge().SendGeneric(ctx, payload(data)), nil
	}
	return s.Bridge().SendToNative(ctx, action, payload(data)), nil
}

// payload keeps a missing body as JSON null rather than an empty raw message,
// which would not re-encode.
func payload(data json.RawMessage) any {
	if len(data) == 0 {
		return nil
	}
	return data
}

func (u *mobileUsecase) Shutdown() {
	u.hub.CloseAll()
}
