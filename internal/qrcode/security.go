package qrcode

import (
	"net/url"
	"regexp"
	"strings"
)

// Known URL shortener hosts. Shortened links hide their destination, so
// they are flagged for review rather than blocked.
var shortenerDomains = map[string]struct{}{
	"bit.ly":     {},
	"tinyurl.com": {},
	"t.co":       {},
	"goo.gl":     {},
	"short.link": {},
	"ow.ly":      {},
	"buff.ly":    {},
	"is.gd":      {},
	"tiny.cc":    {},
}

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(download|install|update).*(exe|apk|dmg)`),
	regexp.MustCompile(`(?i)(urgent|immediate|click now|act fast)`),
	regexp.MustCompile(`(?i)(free money|earn \$|make money fast)`),
	regexp.MustCompile(`(?i)(virus|malware|security alert)`),
}

// SecurityFlags is the per-payload security assessment.
type SecurityFlags struct {
	ContainsURL       bool `json:"contains_url"`
	URLShortener      bool `json:"url_shortener"`
	SuspiciousContent bool `json:"suspicious_content"`
}

// AssessSecurity inspects a QR payload for phishing and malware tells.
// A payload is Suspicious when any flag is raised.
func AssessSecurity(data string) SecurityFlags {
	flags := SecurityFlags{
		ContainsURL: containsURL(data),
	}
	if flags.ContainsURL {
		flags.URLShortener = isShortenerURL(data)
	}
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(data) {
			flags.SuspiciousContent = true
			break
		}
	}
	return flags
}

// Suspicious reports whether any security flag beyond the mere presence
// of a URL is raised.
func (f SecurityFlags) Suspicious() bool {
	return f.URLShortener || f.SuspiciousContent
}

func containsURL(data string) bool {
	lower := strings.ToLower(data)
	return strings.Contains(lower, "http://") ||
		strings.Contains(lower, "https://") ||
		strings.HasPrefix(lower, "www.")
}

func isShortenerURL(data string) bool {
	raw := strings.TrimSpace(data)
	if strings.HasPrefix(strings.ToLower(raw), "www.") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	_, found := shortenerDomains[host]
	return found
}
