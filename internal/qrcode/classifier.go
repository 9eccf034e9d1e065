package qrcode

import (
	"net/url"
	"strconv"
	"strings"
)

// Content classification tags assigned by Classify, in precedence order.
const (
	DataTypeURL   = "url"
	DataTypeEmail = "email"
	DataTypePhone = "phone"
	DataTypeSMS   = "sms"
	DataTypeWiFi  = "wifi"
	DataTypeGeo   = "geo"
	DataTypeVCard = "vcard"
	DataTypeText  = "text"
)

// Classify tags a QR payload by its content semantics. The first matching
// rule wins; anything unrecognized is plain text.
func Classify(data string) string {
	data = strings.TrimSpace(data)
	lower := strings.ToLower(data)

	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "www."):
		return DataTypeURL
	case strings.HasPrefix(lower, "mailto:"), looksLikeEmail(data):
		return DataTypeEmail
	case strings.HasPrefix(lower, "tel:"):
		return DataTypePhone
	case strings.HasPrefix(lower, "sms:"):
		return DataTypeSMS
	case strings.HasPrefix(strings.ToUpper(data), "WIFI:"):
		return DataTypeWiFi
	case strings.HasPrefix(lower, "geo:"):
		return DataTypeGeo
	case strings.HasPrefix(strings.ToUpper(data), "BEGIN:VCARD"):
		return DataTypeVCard
	default:
		return DataTypeText
	}
}

// looksLikeEmail matches a bare address. Multi-line payloads (vCards and
// the like) never match even when they embed an address.
func looksLikeEmail(data string) bool {
	if strings.ContainsAny(data, " \t\n\r") {
		return false
	}
	at := strings.Index(data, "@")
	if at <= 0 {
		return false
	}
	return strings.Contains(data[at+1:], ".")
}

// URLInfo is the structured sub-record for url payloads. Err carries a
// marker instead of failing on unparseable input.
type URLInfo struct {
	Scheme   string `json:"scheme"`
	Domain   string `json:"domain"`
	Path     string `json:"path,omitempty"`
	Query    string `json:"query,omitempty"`
	Fragment string `json:"fragment,omitempty"`
	IsSecure bool   `json:"is_secure"`
	Err      string `json:"error,omitempty"`
}

// ParseURL splits a URL payload into its components. Bare "www." payloads
// without a scheme are treated as host-relative.
func ParseURL(data string) *URLInfo {
	data = strings.TrimSpace(data)

	raw := data
	if !strings.Contains(raw, "://") && strings.HasPrefix(strings.ToLower(raw), "www.") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return &URLInfo{Err: "invalid url format"}
	}

	info := &URLInfo{
		Scheme:   u.Scheme,
		Domain:   u.Host,
		Path:     u.Path,
		Query:    u.RawQuery,
		Fragment: u.Fragment,
		IsSecure: u.Scheme == "https",
	}
	if !strings.Contains(data, "://") {
		// the scheme was synthesized above, don't report it as the payload's
		info.Scheme = ""
		info.IsSecure = false
	}
	return info
}

// WiFiInfo is the structured sub-record for wifi payloads
// (WIFI:T:WPA;S:NetworkName;P:Password;H:true;;).
type WiFiInfo struct {
	SecurityType      string `json:"security_type"`
	NetworkName       string `json:"network_name"`
	PasswordProtected bool   `json:"password_protected"`
	Hidden            bool   `json:"hidden"`
	Err               string `json:"error,omitempty"`
}

// ParseWiFi parses ;-delimited KEY:VALUE pairs after the WIFI: prefix.
// Malformed input yields an error marker, never a failure.
func ParseWiFi(data string) *WiFiInfo {
	data = strings.TrimSpace(data)
	upper := strings.ToUpper(data)
	if !strings.HasPrefix(upper, "WIFI:") {
		return &WiFiInfo{Err: "invalid wifi format"}
	}

	fields := make(map[string]string)
	for _, part := range strings.Split(data[len("WIFI:"):], ";") {
		key, value, ok := strings.Cut(part, ":")
		if !ok || key == "" {
			continue
		}
		fields[strings.ToUpper(key)] = value
	}

	if len(fields) == 0 {
		return &WiFiInfo{Err: "invalid wifi format"}
	}

	return &WiFiInfo{
		SecurityType:      fields["T"],
		NetworkName:       fields["S"],
		PasswordProtected: fields["P"] != "",
		Hidden:            strings.EqualFold(fields["H"], "true"),
	}
}

// GeoInfo is the structured sub-record for geo payloads
// (geo:latitude,longitude[,altitude]).
type GeoInfo struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Err       string   `json:"error,omitempty"`
}

// ParseGeo parses comma-separated coordinates after the geo: prefix.
// Non-numeric parts yield an error marker.
func ParseGeo(data string) *GeoInfo {
	data = strings.TrimSpace(data)
	if !strings.HasPrefix(strings.ToLower(data), "geo:") {
		return &GeoInfo{Err: "invalid geo format"}
	}

	coords := strings.Split(data[len("geo:"):], ",")
	if len(coords) < 2 {
		return &GeoInfo{Err: "invalid geo format"}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
	if err != nil {
		return &GeoInfo{Err: "invalid geo format"}
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
	if err != nil {
		return &GeoInfo{Err: "invalid geo format"}
	}

	info := &GeoInfo{Latitude: lat, Longitude: lon}
	if len(coords) > 2 {
		alt, err := strconv.ParseFloat(strings.TrimSpace(coords[2]), 64)
		if err != nil {
			return &GeoInfo{Err: "invalid geo format"}
		}
		info.Altitude = &alt
	}
	return info
}

// ContactInfo is the structured sub-record for vCard payloads.
type ContactInfo struct {
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	URL          string `json:"url,omitempty"`
	Err          string `json:"error,omitempty"`
}

// ParseVCard maps newline-delimited KEY:VALUE lines to contact fields.
func ParseVCard(data string) *ContactInfo {
	data = strings.TrimSpace(data)
	if !strings.HasPrefix(strings.ToUpper(data), "BEGIN:VCARD") {
		return &ContactInfo{Err: "invalid vcard format"}
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		// drop vCard parameters such as TEL;TYPE=CELL
		key, _, _ = strings.Cut(strings.ToUpper(key), ";")
		if _, seen := fields[key]; !seen {
			fields[key] = strings.TrimSpace(value)
		}
	}

	return &ContactInfo{
		Name:         fields["FN"],
		Organization: fields["ORG"],
		Phone:        fields["TEL"],
		Email:        fields["EMAIL"],
		URL:          fields["URL"],
	}
}
