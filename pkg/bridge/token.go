package bridge

import (
	"context"
	"log"
)

// TokenSource issues a fresh push registration token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// FCMTokenPayload is the data of a storeFCMToken message.
type FCMTokenPayload struct {
	Token string `json:"token"`
}

// StoreFCMToken caches the push token locally and relays it to the native host.
// An empty token is resolved from the cache first, then from the TokenSource.
// Safe to call repeatedly; each call overwrites the cached value.
func (b *Bridge) StoreFCMToken(ctx context.Context, token string) (resp Response) {
	defer recoverResponse("StoreFCMToken", &resp)

	if token == "" {
		token = b.resolveToken(ctx)
	}
	if token == "" {
		return failure("no FCM token available")
	}

	if err := b.store.Set(ctx, KeyFCMToken, token); err != nil {
		log.Printf("[Bridge] Caching FCM token failed: %v", err)
	}
	return b.SendToNative(ctx, ActionStoreFCMToken, FCMTokenPayload{Token: token})
}

func (b *Bridge) resolveToken(ctx context.Context) string {
	cached, found, err := b.store.Get(ctx, KeyFCMToken)
	if err != nil {
		log.Printf("[Bridge] Reading cached FCM token failed: %v", err)
	}
	if found && cached != "" {
		return cached
	}
	if b.tokens == nil {
		return ""
	}
	fresh, err := b.tokens.Token(ctx)
	if err != nil {
		log.Printf("[Bridge] Requesting FCM token failed: %v", err)
		return ""
	}
	return fresh
}
