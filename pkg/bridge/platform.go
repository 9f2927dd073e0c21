package bridge

// Platform identifies the native host wrapping the page.
type Platform string

const (
	PlatformAndroid     Platform = "android"
	PlatformIOS         Platform = "ios"
	PlatformReactNative Platform = "reactnative"
	PlatformUnknown     Platform = "unknown"
)

// Global markers injected by each native host.
const (
	globalReactNative     = "ReactNativeWebView"
	globalAndroidBridge   = "AndroidBridge"
	globalAndroid         = "Android"
	globalWebkitHandlers  = "webkit.messageHandlers"
	handlerBridge         = globalWebkitHandlers + ".bridge"
	handlerAuthBridge     = globalWebkitHandlers + ".authBridge"
	globalIOSFallback     = "iOSNativeBridge"
	globalReactNativeSend = "sendToReactNative"
)

// Detect classifies env into exactly one platform. It has no side effects,
// so repeated calls against the same environment agree.
//
// React Native is checked first: its WebView may also expose
// webkit.messageHandlers on iOS.
func Detect(env Environment) Platform {
	if env == nil {
		return PlatformUnknown
	}
	switch {
	case env.Has(globalReactNative):
		return PlatformReactNative
	case env.Has(globalAndroidBridge), env.Has(globalAndroid):
		return PlatformAndroid
	case env.Has(globalWebkitHandlers):
		return PlatformIOS
	default:
		return PlatformUnknown
	}
}

// ParsePlatform maps a platform tag back to a Platform, defaulting to unknown.
func ParsePlatform(tag string) Platform {
	switch Platform(tag) {
	case PlatformAndroid, PlatformIOS, PlatformReactNative:
		return Platform(tag)
	default:
		return PlatformUnknown
	}
}
