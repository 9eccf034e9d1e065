package session

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ParseUserAgent extracts coarse device, browser and OS hints from a
// user agent string. Unknown agents come back as "unknown".
func ParseUserAgent(ua string) (device, browser, os string) {
	device, browser, os = "unknown", "unknown", "unknown"
	if ua == "" {
		return
	}
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		device = "tablet"
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "iphone") || strings.Contains(lower, "android"):
		device = "mobile"
	case strings.Contains(lower, "bot") || strings.Contains(lower, "crawler") || strings.Contains(lower, "spider"):
		device = "bot"
	default:
		device = "desktop"
	}

	switch {
	case strings.Contains(lower, "edg/") || strings.Contains(lower, "edge"):
		browser = "edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		browser = "opera"
	case strings.Contains(lower, "chrome"):
		browser = "chrome"
	case strings.Contains(lower, "firefox"):
		browser = "firefox"
	case strings.Contains(lower, "safari"):
		browser = "safari"
	}

	switch {
	case strings.Contains(lower, "windows"):
		os = "windows"
	case strings.Contains(lower, "android"):
		os = "android"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") || strings.Contains(lower, "ios"):
		os = "ios"
	case strings.Contains(lower, "mac os") || strings.Contains(lower, "macos"):
		os = "macos"
	case strings.Contains(lower, "linux"):
		os = "linux"
	}
	return
}

// DeriveID produces the stable session id for a client: the same IP and
// user agent map to the same id within one hour window.
func DeriveID(clientIP, userAgent string, now time.Time) string {
	seed := fmt.Sprintf("%s:%s:%s", clientIP, userAgent, now.UTC().Format("2006-01-02-15"))
	sum := md5.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])[:16]
}
