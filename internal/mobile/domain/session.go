package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("mobile session not found")
	ErrSessionClosed   = errors.New("mobile session closed")
	ErrSendBufferFull  = errors.New("mobile session send buffer full")
	ErrInvalidHello    = errors.New("first frame must be hello")
)

// Frame types exchanged with a native shell over the bridge socket
const (
	FrameHello    = "hello"
	FrameWelcome  = "welcome"
	FrameCall     = "call"
	FrameCallback = "callback"
	FrameError    = "error"
)

// Frame is one JSON message on the bridge socket. Which fields are set depends on Type.
type Frame struct {
	Type string `json:"type"`

	// hello
	PlatformHint string   `json:"platformHint,omitempty"`
	Globals      []string `json:"globals,omitempty"`

	// welcome
	SessionID     string `json:"sessionId,omitempty"`
	Platform      string `json:"platform,omitempty"`
	AuthAvailable bool   `json:"authAvailable,omitempty"`

	// call and callback
	Name string            `json:"name,omitempty"`
	Args []json.RawMessage `json:"args,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// Auth event kinds recorded on a session
const (
	AuthLoginSuccess = "login_success"
	AuthLoginError   = "login_error"
	AuthStatus       = "auth_status"
	AuthLogout       = "logout"
)

// AuthEvent is the last auth outcome a native shell reported
type AuthEvent struct {
	Kind          string    `json:"kind"`
	UserID        string    `json:"user_id,omitempty"`
	Email         string    `json:"email,omitempty"`
	Verified      bool      `json:"verified"`
	Authenticated bool      `json:"authenticated"`
	Code          string    `json:"code,omitempty"`
	Message       string    `json:"message,omitempty"`
	At            time.Time `json:"at"`
}

// SessionInfo describes a connected native shell
type SessionInfo struct {
	ID              string     `json:"id"`
	Platform        string     `json:"platform"`
	PlatformHint    string     `json:"platform_hint,omitempty"`
	Globals         []string   `json:"globals"`
	BridgeAvailable bool       `json:"bridge_available"`
	AuthAvailable   bool       `json:"auth_available"`
	RemoteAddr      string     `json:"remote_addr"`
	ConnectedAt     time.Time  `json:"connected_at"`
	LastAuth        *AuthEvent `json:"last_auth,omitempty"`
}
