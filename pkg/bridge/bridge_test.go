package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// recorder captures native calls made through a Globals environment.
type recorder struct {
	calls []call
}

type call struct {
	path string
	args []any
}

func (r *recorder) fn(path string) NativeFunc {
	return func(args ...any) error {
		r.calls = append(r.calls, call{path: path, args: args})
		return nil
	}
}

func fixedClock() time.Time { return time.UnixMilli(1700000000000) }

func TestSendToNativeRoutesByPlatform(t *testing.T) {
	ctx := context.Background()
	payload := map[string]any{"k": "v"}

	t.Run("android primary", func(t *testing.T) {
		rec := &recorder{}
		b := New(Globals{
			"AndroidBridge.postMessage": rec.fn("AndroidBridge.postMessage"),
			"Android.postMessage":       rec.fn("Android.postMessage"),
		}, Options{Now: fixedClock})

		resp := b.SendToNative(ctx, "ping", payload)
		if !resp.Success {
			t.Fatalf("expected success, got %+v", resp)
		}
		if len(rec.calls) != 1 || rec.calls[0].path != "AndroidBridge.postMessage" {
			t.Fatalf("unexpected calls: %+v", rec.calls)
		}
		if rec.calls[0].args[0] != "ping" || rec.calls[0].args[1] != `{"k":"v"}` {
			t.Fatalf("unexpected args: %+v", rec.calls[0].args)
		}
	})

	t.Run("android secondary", func(t *testing.T) {
		rec := &recorder{}
		b := New(Globals{"Android.postMessage": rec.fn("Android.postMessage")}, Options{Now: fixedClock})

		if resp := b.SendToNative(ctx, "ping", payload); !resp.Success {
			t.Fatalf("expected success, got %+v", resp)
		}
		var msg Message
		if err := json.Unmarshal([]byte(rec.calls[0].args[0].(string)), &msg); err != nil {
			t.Fatalf("envelope is not JSON: %v", err)
		}
		if msg.Action != "ping" || msg.Timestamp != 1700000000000 {
			t.Fatalf("unexpected envelope: %+v", msg)
		}
	})

	t.Run("ios handler receives envelope object", func(t *testing.T) {
		rec := &recorder{}
		b := New(Globals{"webkit.messageHandlers.bridge.postMessage": rec.fn("ios")}, Options{Now: fixedClock})

		if resp := b.SendToNative(ctx, "ping", payload); !resp.Success {
			t.Fatalf("expected success, got %+v", resp)
		}
		msg, ok := rec.calls[0].args[0].(Message)
		if !ok || msg.Action != "ping" {
			t.Fatalf("expected Message argument, got %#v", rec.calls[0].args[0])
		}
	})

	t.Run("react native stringifies", func(t *testing.T) {
		rec := &recorder{}
		b := New(Globals{"ReactNativeWebView.postMessage": rec.fn("rn")}, Options{Now: fixedClock})

		if resp := b.SendToNative(ctx, "ping", payload); !resp.Success {
			t.Fatalf("expected success, got %+v", resp)
		}
		if _, ok := rec.calls[0].args[0].(string); !ok {
			t.Fatalf("expected string argument, got %T", rec.calls[0].args[0])
		}
	})
}

func TestSendToNativeNeverPanics(t *testing.T) {
	ctx := context.Background()
	boom := func(...any) error { panic("binding removed") }
	broken := func(...any) error { return errors.New("malformed arguments") }

	envs := map[string]Globals{
		"android panic":     {"AndroidBridge.postMessage": boom},
		"android error":     {"Android.postMessage": broken},
		"ios panic":         {"webkit.messageHandlers.bridge.postMessage": boom},
		"ios error":         {"iOSNativeBridge": broken, "webkit.messageHandlers": nil},
		"reactnative panic": {"ReactNativeWebView.postMessage": boom},
		"reactnative error": {"ReactNativeWebView": nil, "sendToReactNative": broken},
	}

	for name, env := range envs {
		b := New(env, Options{})
		for _, action := range []string{"a", ActionStoreFCMToken, ActionSendUserData, ActionSendData} {
			resp := b.SendToNative(ctx, action, map[string]any{"x": 1})
			if resp.Success || resp.Message == "" {
				t.Fatalf("%s/%s: expected failure with message, got %+v", name, action, resp)
			}
		}
	}
}

type explodingPayload struct{}

func (explodingPayload) MarshalJSON() ([]byte, error) { panic("boom") }

func TestPanickingPayloadIsContained(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}

	envs := map[string]Globals{
		"android":     {"AndroidBridge.postMessage": rec.fn("AndroidBridge.postMessage"), "AndroidBridge.startLogin": rec.fn("AndroidBridge.startLogin")},
		"reactnative": {"ReactNativeWebView.postMessage": rec.fn("ReactNativeWebView.postMessage")},
		"unknown":     {},
	}

	for name, env := range envs {
		b := New(env, Options{})
		if resp := b.SendToNative(ctx, "X", explodingPayload{}); resp.Success || !strings.Contains(resp.Message, "boom") {
			t.Fatalf("%s SendToNative: expected contained failure, got %+v", name, resp)
		}
		if resp := b.SendUserData(ctx, explodingPayload{}); resp.Success {
			t.Fatalf("%s SendUserData: expected failure, got %+v", name, resp)
		}
		if resp := b.SendGeneric(ctx, explodingPayload{}); resp.Success {
			t.Fatalf("%s SendGeneric: expected failure, got %+v", name, resp)
		}
	}

	// Auth envelopes are encoded too; a blocking request fails fast instead of waiting
	b := New(Globals{"ReactNativeWebView.postMessage": rec.fn("ReactNativeWebView.postMessage")}, Options{})
	if resp, _ := b.startAuth(ctx, ActionStartLogin, explodingPayload{}, nil); resp.Success {
		t.Fatalf("startAuth: expected failure, got %+v", resp)
	}
	if _, err := b.await(ctx, authLogin, ActionStartLogin, explodingPayload{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("await: err=%v want contained panic", err)
	}
}

func TestTokenSourcePanicIsContained(t *testing.T) {
	b := New(nil, Options{TokenSource: TokenSourceFunc(func(context.Context) (string, error) {
		panic("token service gone")
	})})
	if resp := b.StoreFCMToken(context.Background(), ""); resp.Success || !strings.Contains(resp.Message, "token service gone") {
		t.Fatalf("expected contained failure, got %+v", resp)
	}
}

func TestSendToNativeFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	b := New(Globals{}, Options{Store: store})

	if b.Platform() != PlatformUnknown || b.IsAvailable() {
		t.Fatalf("expected unknown platform without transport")
	}

	payload := map[string]any{"title": "hello", "count": float64(2)}
	resp := b.SendToNative(ctx, "X", payload)
	if !resp.Success {
		t.Fatalf("expected fallback success, got %+v", resp)
	}

	raw, found, _ := store.Get(ctx, ActionKey("X"))
	if !found {
		t.Fatalf("payload not stored under %s", ActionKey("X"))
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("stored payload is not JSON: %v", err)
	}
	if got["title"] != "hello" || got["count"] != float64(2) {
		t.Fatalf("stored payload mismatch: %v", got)
	}
}

func TestSendToNativeFallsBackWhenPlatformHasNoTransport(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	// Android detected, but only the auth entry point is injected.
	b := New(Globals{"AndroidBridge.startLogin": noop}, Options{Store: store})

	if resp := b.SendGeneric(ctx, []int{1, 2}); !resp.Success {
		t.Fatalf("expected fallback success, got %+v", resp)
	}
	if raw, _, _ := store.Get(ctx, ActionKey(ActionSendData)); raw != "[1,2]" {
		t.Fatalf("stored=%q want=[1,2]", raw)
	}
}

func TestSendUserData(t *testing.T) {
	ctx := context.Background()

	store := NewMemoryStore()
	b := New(nil, Options{Store: store})
	if resp := b.SendUserData(ctx, map[string]string{"uid": "u1"}); !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if raw, _, _ := store.Get(ctx, KeyUserData); raw != `{"uid":"u1"}` {
		t.Fatalf("user data key=%q", raw)
	}

	rec := &recorder{}
	native := New(Globals{"ReactNativeWebView.postMessage": rec.fn("rn")}, Options{Store: NewMemoryStore()})
	if resp := native.SendUserData(ctx, map[string]string{"uid": "u1"}); !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected one native call, got %d", len(rec.calls))
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("quota exceeded")
}

func (failingStore) Set(context.Context, string, string) error { return errors.New("quota exceeded") }

func TestFallbackStoreErrorIsReported(t *testing.T) {
	b := New(nil, Options{Store: failingStore{}})
	resp := b.SendToNative(context.Background(), "X", 1)
	if resp.Success || resp.Message != "quota exceeded" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
