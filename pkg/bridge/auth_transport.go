package bridge

import "fmt"

// Auth actions understood by native hosts.
const (
	ActionStartLogin      = "START_LOGIN"
	ActionCheckAuthStatus = "CHECK_AUTH_STATUS"
	ActionLogout          = "LOGOUT"
)

const (
	androidStartLogin      = globalAndroidBridge + ".startLogin"
	androidCheckAuthStatus = globalAndroidBridge + ".checkAuthStatus"
	androidLogout          = globalAndroidBridge + ".logout"
)

// Credentials are relayed to the native auth module on login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// androidAuthTransport calls the AndroidBridge auth methods with positional arguments.
type androidAuthTransport struct {
	env Environment
}

func (t androidAuthTransport) Name() string { return "android-auth" }

func (t androidAuthTransport) Available() bool {
	_, ok := t.env.Func(androidStartLogin)
	return ok
}

func (t androidAuthTransport) Send(msg Message) error {
	var (
		path string
		args []any
	)
	switch msg.Action {
	case ActionStartLogin:
		creds, ok := msg.Data.(Credentials)
		if !ok {
			return fmt.Errorf("%s: unexpected payload %T", msg.Action, msg.Data)
		}
		path, args = androidStartLogin, []any{creds.Email, creds.Password}
	case ActionCheckAuthStatus:
		path = androidCheckAuthStatus
	case ActionLogout:
		path = androidLogout
	default:
		return fmt.Errorf("unsupported auth action %q", msg.Action)
	}
	fn, ok := t.env.Func(path)
	if !ok {
		return fmt.Errorf("%s: %w", path, errNoEntryPoint)
	}
	return callNative(path, fn, args)
}

// iosAuthTransport posts the envelope to the authBridge message handler.
type iosAuthTransport struct {
	env Environment
}

func (t iosAuthTransport) Name() string { return "ios-auth" }

func (t iosAuthTransport) Available() bool {
	return t.env.Has(handlerAuthBridge)
}

func (t iosAuthTransport) Send(msg Message) error {
	path := handlerAuthBridge + ".postMessage"
	fn, ok := t.env.Func(path)
	if !ok {
		return fmt.Errorf("%s: %w", path, errNoEntryPoint)
	}
	return callNative(path, fn, []any{msg})
}

func newAuthTransport(platform Platform, env Environment) Transport {
	switch platform {
	case PlatformAndroid:
		return androidAuthTransport{env: env}
	case PlatformIOS:
		return iosAuthTransport{env: env}
	case PlatformReactNative:
		return &nativeTransport{name: "reactnative-auth", env: env, points: []entryPoint{
			{path: globalReactNative + ".postMessage", encode: envelopeJSON},
		}}
	default:
		return noTransport{}
	}
}
