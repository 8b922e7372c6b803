package analytics

import "strings"

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"

	Unknown      = "Unknown"
	Other        = "Other"
	LocalNetwork = "Local Network"
)

// ClassifyDevice maps a User-Agent to desktop, mobile or tablet.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case containsAny(ua, "mobile", "android", "iphone"):
		return DeviceMobile
	case containsAny(ua, "tablet", "ipad"):
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// ClassifyBrowser maps a User-Agent to a browser family. Order matters:
// Edge and Opera UAs also mention Chrome, and Chrome UAs mention Safari.
func ClassifyBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg"):
		return "Edge"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case containsAny(ua, "opera", "opr"):
		return "Opera"
	default:
		return Other
	}
}

// ClassifyOS maps a User-Agent to an operating system family.
func ClassifyOS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	apple := containsAny(ua, "iphone", "ipad")
	android := strings.Contains(ua, "android")
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "mac") && !apple:
		return "macOS"
	case strings.Contains(ua, "linux") && !android:
		return "Linux"
	case android:
		return "Android"
	case apple:
		return "iOS"
	default:
		return Other
	}
}

// Locator resolves a coarse location label for a client IP.
type Locator interface {
	Locate(ip string) string
}

// PrefixLocator labels private address ranges and nothing else. It stands in
// for a real geolocation lookup.
type PrefixLocator struct{}

func (PrefixLocator) Locate(ip string) string {
	return ClassifyLocation(ip)
}

// ClassifyLocation returns LocalNetwork for 127., 192.168. and 10. addresses
// and Unknown otherwise.
func ClassifyLocation(ip string) string {
	for _, prefix := range []string{"127.", "192.168.", "10."} {
		if strings.HasPrefix(ip, prefix) {
			return LocalNetwork
		}
	}
	return Unknown
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
