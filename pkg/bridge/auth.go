package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Names of the callbacks a native host invokes once an auth request completes.
const (
	CallbackLoginSuccess = "onFlutterLoginSuccess"
	CallbackLoginError   = "onFlutterLoginError"
	CallbackAuthStatus   = "onFlutterAuthStatus"
	CallbackLogout       = "onFlutterLogout"
)

// ErrCodeParse is reported to OnLoginError when the user data of a
// successful login cannot be decoded.
const ErrCodeParse = "PARSE_ERROR"

var (
	ErrBridgeUnavailable = errors.New(msgNotAvailable)
	ErrUnknownCallback   = errors.New("unknown bridge callback")
	ErrAuthTimeout       = errors.New("native host did not respond in time")
	ErrSuperseded        = errors.New("superseded by a newer request")
	ErrDisposed          = errors.New("bridge disposed")
)

// AuthError is a login failure reported by the native host.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("native login failed (%s): %s", e.Code, e.Message)
}

// UserData is the decoded user payload of a successful native login.
type UserData map[string]any

// AuthCallbacks hold at most one handler per auth event. Nil handlers are skipped.
type AuthCallbacks struct {
	OnLoginSuccess func(token string, user UserData)
	OnLoginError   func(code, message string)
	OnAuthStatus   func(authenticated bool)
	OnLogout       func()
}

// AuthResult is what a blocking auth call observed.
type AuthResult struct {
	Token         string   `json:"token,omitempty"`
	User          UserData `json:"user,omitempty"`
	Authenticated bool     `json:"authenticated"`
}

type authKind int

const (
	authLogin authKind = iota
	authStatus
	authLogout
)

// waiter is a caller blocked on the outcome of one auth request.
type waiter struct {
	requestID string
	done      chan struct{}
	once      sync.Once
	result    AuthResult
	err       error
}

func (w *waiter) finish(result AuthResult, err error) {
	w.once.Do(func() {
		w.result, w.err = result, err
		close(w.done)
	})
}

func newRequestID() string { return uuid.NewString() }

// IsAuthBridgeAvailable reports whether the native host exposes an auth channel.
func (b *Bridge) IsAuthBridgeAvailable() bool { return b.auth.Available() }

// SetupAuthCallbacks registers cb, replacing every previously registered handler.
func (b *Bridge) SetupAuthCallbacks(cb AuthCallbacks) {
	b.mu.Lock()
	b.callbacks = cb
	b.mu.Unlock()
}

// ClearAuthCallbacks unregisters all auth handlers.
func (b *Bridge) ClearAuthCallbacks() {
	b.SetupAuthCallbacks(AuthCallbacks{})
}

// StartMobileLogin asks the native host to sign in. The outcome arrives
// through OnLoginSuccess or OnLoginError.
func (b *Bridge) StartMobileLogin(ctx context.Context, creds Credentials) Response {
	resp, _ := b.startAuth(ctx, ActionStartLogin, creds, nil)
	return resp
}

// CheckAuthStatus asks the native host whether a user is signed in.
func (b *Bridge) CheckAuthStatus(ctx context.Context) Response {
	resp, _ := b.startAuth(ctx, ActionCheckAuthStatus, struct{}{}, nil)
	return resp
}

// StartLogout asks the native host to sign out.
func (b *Bridge) StartLogout(ctx context.Context) Response {
	resp, _ := b.startAuth(ctx, ActionLogout, struct{}{}, nil)
	return resp
}

// Login starts a native login and waits for its outcome, the auth timeout or ctx.
func (b *Bridge) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	return b.await(ctx, authLogin, ActionStartLogin, creds)
}

// AuthStatus checks the native auth state and waits for the answer.
func (b *Bridge) AuthStatus(ctx context.Context) (bool, error) {
	res, err := b.await(ctx, authStatus, ActionCheckAuthStatus, struct{}{})
	return res.Authenticated, err
}

// Logout signs out natively and waits for the confirmation.
func (b *Bridge) Logout(ctx context.Context) error {
	_, err := b.await(ctx, authLogout, ActionLogout, struct{}{})
	return err
}

func (b *Bridge) startAuth(ctx context.Context, action string, data any, w *waiter) (resp Response, requestID string) {
	defer recoverResponse(action, &resp)

	if !b.auth.Available() {
		return failure(msgNotAvailable), ""
	}
	if err := ctx.Err(); err != nil {
		return failure(err.Error()), ""
	}
	if w != nil {
		requestID = w.requestID
	} else {
		requestID = b.newID()
	}
	msg := Message{Action: action, Data: data, Timestamp: b.now().UnixMilli(), RequestID: requestID}
	if err := b.auth.Send(msg); err != nil {
		log.Printf("[Bridge] %s request %s failed: %v", action, requestID, err)
		return failure(err.Error()), requestID
	}
	return success("initiated"), requestID
}

func (b *Bridge) await(ctx context.Context, kind authKind, action string, data any) (AuthResult, error) {
	if !b.auth.Available() {
		return AuthResult{}, ErrBridgeUnavailable
	}

	// Armed before dispatch so a callback fired during Send is not lost.
	w := b.arm(kind)
	if resp, _ := b.startAuth(ctx, action, data, w); !resp.Success {
		b.disarm(kind, w)
		return AuthResult{}, errors.New(resp.Message)
	}

	var timeout <-chan time.Time
	if b.authTimeout > 0 {
		timer := time.NewTimer(b.authTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-w.done:
		return w.result, w.err
	case <-timeout:
		b.disarm(kind, w)
		return AuthResult{}, fmt.Errorf("%s %s: %w", action, w.requestID, ErrAuthTimeout)
	case <-ctx.Done():
		b.disarm(kind, w)
		return AuthResult{}, ctx.Err()
	}
}

// arm installs a waiter for kind. An older waiter of the same kind is superseded.
func (b *Bridge) arm(kind authKind) *waiter {
	w := &waiter{requestID: b.newID(), done: make(chan struct{})}
	b.mu.Lock()
	prev := b.waiters[kind]
	b.waiters[kind] = w
	b.mu.Unlock()
	if prev != nil {
		prev.finish(AuthResult{}, ErrSuperseded)
	}
	return w
}

func (b *Bridge) disarm(kind authKind, w *waiter) {
	b.mu.Lock()
	if b.waiters[kind] == w {
		delete(b.waiters, kind)
	}
	b.mu.Unlock()
}

// take removes and returns the waiter for kind, if any.
func (b *Bridge) take(kind authKind) (*waiter, AuthCallbacks) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w := b.waiters[kind]
	delete(b.waiters, kind)
	return w, b.callbacks
}

// Invoke runs the callback the native host called by name. Arguments arrive
// positionally, as the host passed them.
func (b *Bridge) Invoke(name string, args ...any) error {
	switch name {
	case CallbackLoginSuccess:
		b.loginSucceeded(argString(args, 0), argString(args, 1))
	case CallbackLoginError:
		b.loginFailed(argString(args, 0), argString(args, 1))
	case CallbackAuthStatus:
		authenticated := argBool(args, 0)
		w, cb := b.take(authStatus)
		if cb.OnAuthStatus != nil {
			cb.OnAuthStatus(authenticated)
		}
		if w != nil {
			w.finish(AuthResult{Authenticated: authenticated}, nil)
		}
	case CallbackLogout:
		w, cb := b.take(authLogout)
		if cb.OnLogout != nil {
			cb.OnLogout()
		}
		if w != nil {
			w.finish(AuthResult{}, nil)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCallback, name)
	}
	return nil
}

func (b *Bridge) loginSucceeded(token, userDataJSON string) {
	var user UserData
	if err := json.Unmarshal([]byte(userDataJSON), &user); err != nil {
		b.loginFailed(ErrCodeParse, "failed to parse user data: "+err.Error())
		return
	}
	w, cb := b.take(authLogin)
	if cb.OnLoginSuccess != nil {
		cb.OnLoginSuccess(token, user)
	}
	if w != nil {
		w.finish(AuthResult{Token: token, User: user, Authenticated: true}, nil)
	}
}

func (b *Bridge) loginFailed(code, message string) {
	w, cb := b.take(authLogin)
	if cb.OnLoginError != nil {
		cb.OnLoginError(code, message)
	}
	if w != nil {
		w.finish(AuthResult{}, &AuthError{Code: code, Message: message})
	}
}

func argString(args []any, i int) string {
	if i >= len(args) || args[i] == nil {
		return ""
	}
	switch v := args[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case json.RawMessage:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func argBool(args []any, i int) bool {
	if i >= len(args) {
		return false
	}
	switch v := args[i].(type) {
	case bool:
		return v
	case string:
		parsed, _ := strconv.ParseBool(v)
		return parsed
	case float64:
		return v != 0
	default:
		return false
	}
}
