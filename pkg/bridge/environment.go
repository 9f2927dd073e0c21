package bridge

import "strings"

// NativeFunc is an entry point injected into the page by the native host.
type NativeFunc func(args ...any) error

// Environment exposes the globals a native host injected.
// Paths are dotted, e.g. "webkit.messageHandlers.authBridge.postMessage".
type Environment interface {
	// Has reports whether path names an injected object or function.
	Has(path string) bool

	// Func returns the callable registered at path.
	Func(path string) (NativeFunc, bool)
}

// Globals is a map-backed Environment. A nil value marks an object
// without a callable at that exact path.
type Globals map[string]NativeFunc

func (g Globals) Has(path string) bool {
	if _, ok := g[path]; ok {
		return true
	}
	prefix := path + "."
	for name := range g {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (g Globals) Func(path string) (NativeFunc, bool) {
	fn, ok := g[path]
	if !ok || fn == nil {
		return nil, false
	}
	return fn, true
}
