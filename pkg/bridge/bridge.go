// Package bridge lets the portfolio exchange auth tokens and push registration
// data with a wrapping native shell (Android WebView, iOS WebKit or React Native).
//
// A Bridge is built once per page session from the globals the shell injected.
// Outbound calls are fire-and-forget: a successful Response only means the
// native entry point was called without failing. Outcomes of auth requests
// arrive later through Invoke, which the native host calls by name.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Well-known generic actions.
const (
	ActionStoreFCMToken = "storeFCMToken"
	ActionSendUserData  = "sendUserData"
	ActionSendData      = "sendData"
)

const msgNotAvailable = "bridge not available"

// Response reports the outcome of a dispatch attempt.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func success(message string) Response { return Response{Success: true, Message: message} }

func failure(message string) Response { return Response{Success: false, Message: message} }

// recoverResponse turns a panic below a public entry point, such as a payload
// whose MarshalJSON panics, into a failed Response.
func recoverResponse(op string, resp *Response) {
	if r := recover(); r != nil {
		log.Printf("[Bridge] %s panicked: %v", op, r)
		*resp = failure(fmt.Sprintf("%s panicked: %v", op, r))
	}
}

// Options configure a Bridge. Zero values fall back to sensible defaults.
type Options struct {
	// Store receives payloads that could not be handed to a native host.
	Store Store

	// TokenSource issues a push token when none is supplied or cached.
	TokenSource TokenSource

	// AuthTimeout bounds Login, AuthStatus and Logout. Zero waits until the context ends.
	AuthTimeout time.Duration

	// Now is used for message timestamps.
	Now func() time.Time

	// NewRequestID generates correlation ids for auth requests.
	NewRequestID func() string
}

// Bridge is the adapter between the page and its native host.
type Bridge struct {
	platform    Platform
	transport   Transport
	auth        Transport
	store       Store
	tokens      TokenSource
	authTimeout time.Duration
	now         func() time.Time
	newID       func() string

	mu        sync.Mutex
	callbacks AuthCallbacks
	waiters   map[authKind]*waiter
}

// New detects the platform of env and selects its transports.
func New(env Environment, opts Options) *Bridge {
	if env == nil {
		env = Globals{}
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewRequestID == nil {
		opts.NewRequestID = newRequestID
	}

	platform := Detect(env)
	return &Bridge{
		platform:    platform,
		transport:   newTransport(platform, env),
		auth:        newAuthTransport(platform, env),
		store:       opts.Store,
		tokens:      opts.TokenSource,
		authTimeout: opts.AuthTimeout,
		now:         opts.Now,
		newID:       opts.NewRequestID,
		waiters:     make(map[authKind]*waiter),
	}
}

// Platform returns the platform detected at construction.
func (b *Bridge) Platform() Platform { return b.platform }

// IsAvailable reports whether a native transport exists for generic messages.
func (b *Bridge) IsAvailable() bool { return b.transport.Available() }

// SendToNative delivers action and data to the native host, or to the fallback
// store when the platform has no native transport. It never panics.
func (b *Bridge) SendToNative(ctx context.Context, action string, data any) (resp Response) {
	defer recoverResponse("SendToNative", &resp)
	msg := Message{Action: action, Data: data, Timestamp: b.now().UnixMilli()}

	if !b.transport.Available() {
		return b.storeFallback(ctx, ActionKey(action), data)
	}

	if err := b.transport.Send(msg); err != nil {
		log.Printf("[Bridge] %s dispatch of %q failed: %v", b.transport.Name(), action, err)
		return failure(err.Error())
	}
	return success("dispatched")
}

// SendUserData relays user data to the native host. Without a native
// transport the payload is kept under KeyUserData.
func (b *Bridge) SendUserData(ctx context.Context, userData any) (resp Response) {
	defer recoverResponse("SendUserData", &resp)
	if !b.transport.Available() {
		return b.storeFallback(ctx, KeyUserData, userData)
	}
	return b.SendToNative(ctx, ActionSendUserData, userData)
}

// SendGeneric relays an arbitrary payload.
func (b *Bridge) SendGeneric(ctx context.Context, data any) Response {
	return b.SendToNative(ctx, ActionSendData, data)
}

func (b *Bridge) storeFallback(ctx context.Context, key string, data any) Response {
	raw, err := json.Marshal(data)
	if err != nil {
		return failure("encode payload: " + err.Error())
	}
	if err := b.store.Set(ctx, key, string(raw)); err != nil {
		log.Printf("[Bridge] Fallback write of %s failed: %v", key, err)
		return failure(err.Error())
	}
	return success("stored locally")
}

// Dispose unregisters all auth callbacks and releases pending waiters.
func (b *Bridge) Dispose() {
	b.mu.Lock()
	b.callbacks = AuthCallbacks{}
	waiters := b.waiters
	b.waiters = make(map[authKind]*waiter)
	b.mu.Unlock()

	for _, w := range waiters {
		w.finish(AuthResult{}, ErrDisposed)
	}
}
