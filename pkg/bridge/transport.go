package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errNoEntryPoint = errors.New("no native entry point")

// Message is the envelope delivered to the native host.
type Message struct {
	Action    string `json:"action"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}

// Transport delivers messages over one native channel.
type Transport interface {
	Name() string
	Available() bool
	Send(msg Message) error
}

// entryPoint is a named native function and the way a message is
// turned into its positional arguments.
type entryPoint struct {
	path   string
	encode func(msg Message) ([]any, error)
}

// nativeTransport tries its entry points in order and uses the first one present.
type nativeTransport struct {
	name   string
	env    Environment
	points []entryPoint
}

func (t *nativeTransport) Name() string { return t.name }

func (t *nativeTransport) Available() bool {
	for _, p := range t.points {
		if _, ok := t.env.Func(p.path); ok {
			return true
		}
	}
	return false
}

func (t *nativeTransport) Send(msg Message) error {
	for _, p := range t.points {
		fn, ok := t.env.Func(p.path)
		if !ok {
			continue
		}
		args, err := p.encode(msg)
		if err != nil {
			return fmt.Errorf("encode %s: %w", p.path, err)
		}
		return callNative(p.path, fn, args)
	}
	return errNoEntryPoint
}

// noTransport stands in when the platform has no native channel.
type noTransport struct{}

func (noTransport) Name() string { return "none" }

func (noTransport) Available() bool { return false }

func (noTransport) Send(Message) error { return errNoEntryPoint }

// newTransport picks the generic message transport for platform.
func newTransport(platform Platform, env Environment) Transport {
	switch platform {
	case PlatformAndroid:
		return &nativeTransport{name: "android", env: env, points: []entryPoint{
			{path: globalAndroidBridge + ".postMessage", encode: actionAndDataJSON},
			{path: globalAndroid + ".postMessage", encode: envelopeJSON},
		}}
	case PlatformIOS:
		return &nativeTransport{name: "ios", env: env, points: []entryPoint{
			{path: handlerBridge + ".postMessage", encode: envelopeObject},
			{path: globalIOSFallback, encode: envelopeJSON},
		}}
	case PlatformReactNative:
		return &nativeTransport{name: "reactnative", env: env, points: []entryPoint{
			{path: globalReactNative + ".postMessage", encode: envelopeJSON},
			{path: globalReactNativeSend, encode: envelopeJSON},
		}}
	default:
		return noTransport{}
	}
}

func actionAndDataJSON(msg Message) ([]any, error) {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return nil, err
	}
	return []any{msg.Action, string(data)}, nil
}

func envelopeJSON(msg Message) ([]any, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return []any{string(data)}, nil
}

func envelopeObject(msg Message) ([]any, error) {
	return []any{msg}, nil
}

// callNative invokes fn and converts a panic into an error, so a
// misbehaving binding never escapes the dispatcher.
func callNative(path string, fn NativeFunc, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", path, r)
		}
	}()
	if err := fn(args...); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
