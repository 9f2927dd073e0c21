package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestIsAuthBridgeAvailable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		env  Globals
		want bool
	}{
		{name: "unknown", env: Globals{"somethingElse": noop}, want: false},
		{name: "android without startLogin", env: Globals{"AndroidBridge.postMessage": noop}, want: false},
		{name: "android", env: Globals{"AndroidBridge.startLogin": noop}, want: true},
		{name: "ios without auth handler", env: Globals{"webkit.messageHandlers.bridge.postMessage": noop}, want: false},
		{name: "ios", env: Globals{"webkit.messageHandlers.authBridge.postMessage": noop}, want: true},
		{name: "react native", env: Globals{"ReactNativeWebView.postMessage": noop}, want: true},
		{name: "react native object only", env: Globals{"ReactNativeWebView": nil}, want: false},
	}

	for _, tc := range cases {
		if got := New(tc.env, Options{}).IsAuthBridgeAvailable(); got != tc.want {
			t.Fatalf("%s: IsAuthBridgeAvailable()=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestAuthOperationsWithoutBridge(t *testing.T) {
	ctx := context.Background()
	b := New(Globals{}, Options{})

	for name, resp := range map[string]Response{
		"login":  b.StartMobileLogin(ctx, Credentials{Email: "a@b.com", Password: "x"}),
		"status": b.CheckAuthStatus(ctx),
		"logout": b.StartLogout(ctx),
	} {
		if resp.Success || resp.Message != "bridge not available" {
			t.Fatalf("%s: unexpected response %+v", name, resp)
		}
	}

	if _, err := b.Login(ctx, Credentials{}); !errors.Is(err, ErrBridgeUnavailable) {
		t.Fatalf("Login err=%v want ErrBridgeUnavailable", err)
	}
}

func TestStartMobileLoginAndroid(t *testing.T) {
	rec := &recorder{}
	b := New(Globals{"AndroidBridge.startLogin": rec.fn("AndroidBridge.startLogin")}, Options{})

	resp := b.StartMobileLogin(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("startLogin called %d times, want 1", len(rec.calls))
	}
	if got := rec.calls[0].args; len(got) != 2 || got[0] != "a@b.com" || got[1] != "x" {
		t.Fatalf("startLogin args=%v", got)
	}
}

func TestAuthRequestsPerPlatform(t *testing.T) {
	ctx := context.Background()

	t.Run("android status and logout", func(t *testing.T) {
		rec := &recorder{}
		b := New(Globals{
			"AndroidBridge.startLogin":      rec.fn("startLogin"),
			"AndroidBridge.checkAuthStatus": rec.fn("checkAuthStatus"),
		}, Options{})

		if resp := b.CheckAuthStatus(ctx); !resp.Success {
			t.Fatalf("status: %+v", resp)
		}
		// logout is not injected: reported, not raised.
		if resp := b.StartLogout(ctx); resp.Success {
			t.Fatalf("logout should fail without entry point: %+v", resp)
		}
		if len(rec.calls) != 1 || rec.calls[0].path != "checkAuthStatus" || len(rec.calls[0].args) != 0 {
			t.Fatalf("unexpected calls: %+v", rec.calls)
		}
	})

	t.Run("ios posts envelope with request id", func(t *testing.T) {
		rec := &recorder{}
		b := New(Globals{"webkit.messageHandlers.authBridge.postMessage": rec.fn("auth")}, Options{
			NewRequestID: func() string { return "req-1" },
		})

		if resp := b.StartMobileLogin(ctx, Credentials{Email: "a@b.com", Password: "x"}); !resp.Success {
			t.Fatalf("login: %+v", resp)
		}
		msg := rec.calls[0].args[0].(Message)
		if msg.Action != ActionStartLogin || msg.RequestID != "req-1" {
			t.Fatalf("unexpected envelope: %+v", msg)
		}
		if creds := msg.Data.(Credentials); creds.Email != "a@b.com" {
			t.Fatalf("unexpected credentials: %+v", creds)
		}
	})

	t.Run("react native serializes", func(t *testing.T) {
		rec := &recorder{}
		b := New(Globals{"ReactNativeWebView.postMessage": rec.fn("rn")}, Options{})

		if resp := b.StartLogout(ctx); !resp.Success {
			t.Fatalf("logout: %+v", resp)
		}
		var msg Message
		if err := json.Unmarshal([]byte(rec.calls[0].args[0].(string)), &msg); err != nil {
			t.Fatalf("not JSON: %v", err)
		}
		if msg.Action != ActionLogout {
			t.Fatalf("action=%q want=%q", msg.Action, ActionLogout)
		}
	})

	t.Run("panicking binding", func(t *testing.T) {
		b := New(Globals{"AndroidBridge.startLogin": func(...any) error { panic("gone") }}, Options{})
		if resp := b.StartMobileLogin(ctx, Credentials{}); resp.Success {
			t.Fatalf("expected failure, got %+v", resp)
		}
	})
}

func TestSetupAuthCallbacksReplacesPrevious(t *testing.T) {
	b := New(Globals{"AndroidBridge.startLogin": noop}, Options{})

	var first, second int
	b.SetupAuthCallbacks(AuthCallbacks{OnLoginSuccess: func(string, UserData) { first++ }})
	b.SetupAuthCallbacks(AuthCallbacks{OnLoginSuccess: func(string, UserData) { second++ }})

	if err := b.Invoke(CallbackLoginSuccess, "tok", `{"uid":"u1"}`); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if first != 0 || second != 1 {
		t.Fatalf("first=%d second=%d; want 0 and 1", first, second)
	}
}

func TestLoginSuccessWithMalformedUserData(t *testing.T) {
	b := New(Globals{"AndroidBridge.startLogin": noop}, Options{})

	var (
		successCalled bool
		gotCode       string
	)
	b.SetupAuthCallbacks(AuthCallbacks{
		OnLoginSuccess: func(string, UserData) { successCalled = true },
		OnLoginError:   func(code, _ string) { gotCode = code },
	})

	if err := b.Invoke(CallbackLoginSuccess, "tok", "not json {"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if successCalled {
		t.Fatalf("success handler must not run for malformed user data")
	}
	if gotCode != ErrCodeParse {
		t.Fatalf("error code=%q want=%q", gotCode, ErrCodeParse)
	}
}

func TestInvokeDeliversPayloads(t *testing.T) {
	b := New(Globals{"AndroidBridge.startLogin": noop}, Options{})

	var (
		token, email   string
		code, message  string
		status, logout bool
	)
	b.SetupAuthCallbacks(AuthCallbacks{
		OnLoginSuccess: func(tok string, u UserData) { token, email = tok, u["email"].(string) },
		OnLoginError:   func(c, m string) { code, message = c, m },
		OnAuthStatus:   func(ok bool) { status = ok },
		OnLogout:       func() { logout = true },
	})

	mustInvoke(t, b, CallbackLoginSuccess, "tok", `{"email":"a@b.com"}`)
	mustInvoke(t, b, CallbackLoginError, "WRONG_PASSWORD", "bad password")
	mustInvoke(t, b, CallbackAuthStatus, "true")
	mustInvoke(t, b, CallbackLogout)

	if token != "tok" || email != "a@b.com" {
		t.Fatalf("login success payload: token=%q email=%q", token, email)
	}
	if code != "WRONG_PASSWORD" || message != "bad password" {
		t.Fatalf("login error payload: %q %q", code, message)
	}
	if !status || !logout {
		t.Fatalf("status=%v logout=%v", status, logout)
	}

	if err := b.Invoke("onSomethingElse"); !errors.Is(err, ErrUnknownCallback) {
		t.Fatalf("err=%v want ErrUnknownCallback", err)
	}
}

func TestClearAuthCallbacks(t *testing.T) {
	b := New(Globals{"AndroidBridge.startLogin": noop}, Options{})
	called := false
	b.SetupAuthCallbacks(AuthCallbacks{OnLogout: func() { called = true }})
	b.ClearAuthCallbacks()

	mustInvoke(t, b, CallbackLogout)
	if called {
		t.Fatalf("cleared handler was called")
	}
}

func mustInvoke(t *testing.T, b *Bridge, name string, args ...any) {
	t.Helper()
	if err := b.Invoke(name, args...); err != nil {
		t.Fatalf("Invoke(%s): %v", name, err)
	}
}

func TestLoginWaitsForCallback(t *testing.T) {
	var b *Bridge
	b = New(Globals{"AndroidBridge.startLogin": func(args ...any) error {
		go func() {
			_ = b.Invoke(CallbackLoginSuccess, "id-token", `{"uid":"u1"}`)
		}()
		return nil
	}}, Options{AuthTimeout: time.Second})

	res, err := b.Login(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "id-token" || res.User["uid"] != "u1" || !res.Authenticated {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestLoginReportsNativeError(t *testing.T) {
	var b *Bridge
	b = New(Globals{"AndroidBridge.startLogin": func(args ...any) error {
		// Synchronous callbacks are delivered to the armed waiter too.
		return b.Invoke(CallbackLoginError, "USER_NOT_FOUND", "no such user")
	}}, Options{AuthTimeout: time.Second})

	_, err := b.Login(context.Background(), Credentials{})
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Code != "USER_NOT_FOUND" {
		t.Fatalf("err=%v want AuthError USER_NOT_FOUND", err)
	}
}

func TestLoginTimesOut(t *testing.T) {
	b := New(Globals{"AndroidBridge.startLogin": noop}, Options{AuthTimeout: 20 * time.Millisecond})

	_, err := b.Login(context.Background(), Credentials{})
	if !errors.Is(err, ErrAuthTimeout) {
		t.Fatalf("err=%v want ErrAuthTimeout", err)
	}
}

func TestLoginHonorsContext(t *testing.T) {
	b := New(Globals{"AndroidBridge.startLogin": noop}, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := b.Login(ctx, Credentials{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v want DeadlineExceeded", err)
	}
}

func TestNewerLoginSupersedesOlder(t *testing.T) {
	started := make(chan struct{}, 2)
	b := New(Globals{"AndroidBridge.startLogin": func(...any) error {
		started <- struct{}{}
		return nil
	}}, Options{AuthTimeout: time.Second})

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = b.Login(context.Background(), Credentials{Email: "first"})
	}()
	<-started

	done := make(chan error, 1)
	go func() {
		_, err := b.Login(context.Background(), Credentials{Email: "second"})
		done <- err
	}()
	<-started

	wg.Wait()
	if !errors.Is(firstErr, ErrSuperseded) {
		t.Fatalf("first err=%v want ErrSuperseded", firstErr)
	}

	mustInvoke(t, b, CallbackLoginSuccess, "tok", `{}`)
	if err := <-done; err != nil {
		t.Fatalf("second login: %v", err)
	}
}

func TestAuthStatusAndLogoutWait(t *testing.T) {
	var b *Bridge
	b = New(Globals{
		"ReactNativeWebView.postMessage": func(args ...any) error {
			var msg Message
			if err := json.Unmarshal([]byte(args[0].(string)), &msg); err != nil {
				return err
			}
			go func() {
				switch msg.Action {
				case ActionCheckAuthStatus:
					_ = b.Invoke(CallbackAuthStatus, true)
				case ActionLogout:
					_ = b.Invoke(CallbackLogout)
				}
			}()
			return nil
		},
	}, Options{AuthTimeout: time.Second})

	authenticated, err := b.AuthStatus(context.Background())
	if err != nil || !authenticated {
		t.Fatalf("AuthStatus=%v err=%v", authenticated, err)
	}
	if err := b.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
}

func TestDisposeReleasesWaiters(t *testing.T) {
	b := New(Globals{"AndroidBridge.startLogin": noop}, Options{})
	done := make(chan error, 1)
	go func() {
		_, err := b.Login(context.Background(), Credentials{})
		done <- err
	}()

	deadline := time.After(time.Second)
	for {
		b.mu.Lock()
		armed := len(b.waiters) > 0
		b.mu.Unlock()
		if armed {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("login never armed")
		case <-time.After(time.Millisecond):
		}
	}

	b.Dispose()
	if err := <-done; !errors.Is(err, ErrDisposed) {
		t.Fatalf("err=%v want ErrDisposed", err)
	}
}
