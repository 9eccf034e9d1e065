package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected string
	}{
		{"https url", "https://example.com", DataTypeURL},
		{"http url", "http://example.com/path", DataTypeURL},
		{"www url", "www.example.com", DataTypeURL},
		{"mailto", "mailto:someone@example.com", DataTypeEmail},
		{"bare email", "someone@example.com", DataTypeEmail},
		{"phone", "tel:+14155551234", DataTypePhone},
		{"sms", "sms:+14155551234", DataTypeSMS},
		{"wifi", "WIFI:T:WPA;S:Home;P:secret;;", DataTypeWiFi},
		{"geo", "geo:37.7749,-122.4194", DataTypeGeo},
		{"vcard", "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nEND:VCARD", DataTypeVCard},
		{"plain text", "hello world", DataTypeText},
		{"empty", "", DataTypeText},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.data))
		})
	}
}

func TestClassify_VCardWithEmailStaysVCard(t *testing.T) {
	data := "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nEMAIL:jane@example.com\nEND:VCARD"
	assert.Equal(t, DataTypeVCard, Classify(data))
}

func TestParseURL(t *testing.T) {
	info := ParseURL("https://example.com/path?q=1#frag")
	require.Empty(t, info.Err)
	assert.Equal(t, "https", info.Scheme)
	assert.Equal(t, "example.com", info.Domain)
	assert.Equal(t, "/path", info.Path)
	assert.Equal(t, "q=1", info.Query)
	assert.Equal(t, "frag", info.Fragment)
	assert.True(t, info.IsSecure)
}

func TestParseURL_Insecure(t *testing.T) {
	info := ParseURL("http://example.com")
	require.Empty(t, info.Err)
	assert.False(t, info.IsSecure)
}

func TestParseURL_BareWWW(t *testing.T) {
	info := ParseURL("www.example.com/page")
	require.Empty(t, info.Err)
	assert.Equal(t, "www.example.com", info.Domain)
	assert.Empty(t, info.Scheme)
	assert.False(t, info.IsSecure)
}

func TestParseURL_Invalid(t *testing.T) {
	info := ParseURL("https://")
	assert.Equal(t, "invalid url format", info.Err)
}

func TestParseWiFi(t *testing.T) {
	info := ParseWiFi("WIFI:T:WPA;S:Home;P:secret;;")
	require.Empty(t, info.Err)
	assert.Equal(t, "WPA", info.SecurityType)
	assert.Equal(t, "Home", info.NetworkName)
	assert.True(t, info.PasswordProtected)
	assert.False(t, info.Hidden)
}

func TestParseWiFi_HiddenOpenNetwork(t *testing.T) {
	info := ParseWiFi("WIFI:T:nopass;S:Guest;P:;H:true;;")
	require.Empty(t, info.Err)
	assert.Equal(t, "Guest", info.NetworkName)
	assert.False(t, info.PasswordProtected)
	assert.True(t, info.Hidden)
}

func TestParseWiFi_Invalid(t *testing.T) {
	assert.Equal(t, "invalid wifi format", ParseWiFi("not wifi").Err)
	assert.Equal(t, "invalid wifi format", ParseWiFi("WIFI:").Err)
}

func TestParseGeo(t *testing.T) {
	info := ParseGeo("geo:37.7749,-122.4194")
	require.Empty(t, info.Err)
	assert.InDelta(t, 37.7749, info.Latitude, 1e-9)
	assert.InDelta(t, -122.4194, info.Longitude, 1e-9)
	assert.Nil(t, info.Altitude)
}

func TestParseGeo_WithAltitude(t *testing.T) {
	info := ParseGeo("geo:48.2082,16.3738,151")
	require.Empty(t, info.Err)
	require.NotNil(t, info.Altitude)
	assert.InDelta(t, 151, *info.Altitude, 1e-9)
}

func TestParseGeo_Invalid(t *testing.T) {
	assert.Equal(t, "invalid geo format", ParseGeo("geo:north,south").Err)
	assert.Equal(t, "invalid geo format", ParseGeo("geo:12.5").Err)
}

func TestParseVCard(t *testing.T) {
	data := "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Doe\nORG:Acme Corp\nTEL;TYPE=CELL:+14155551234\nEMAIL:jane@example.com\nURL:https://example.com\nEND:VCARD"
	info := ParseVCard(data)
	require.Empty(t, info.Err)
	assert.Equal(t, "Jane Doe", info.Name)
	assert.Equal(t, "Acme Corp", info.Organization)
	assert.Equal(t, "+14155551234", info.Phone)
	assert.Equal(t, "jane@example.com", info.Email)
	assert.Equal(t, "https://example.com", info.URL)
}

func TestParseVCard_Invalid(t *testing.T) {
	assert.Equal(t, "invalid vcard format", ParseVCard("FN:Jane").Err)
}
