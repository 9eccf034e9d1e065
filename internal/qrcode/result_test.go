package qrcode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

func TestBuildResult_URL(t *testing.T) {
	hit := domain.DecodedSymbol{
		RawText:    "https://example.com",
		SymbolType: "QRCODE",
		BBox:       []int{50, 50, 210, 210},
		Quality:    0.95,
		Version:    2,
		ECCLevel:   "M",
	}

	res := BuildResult("job-1", hit)

	assert.NotEmpty(t, res.ResultID)
	assert.Equal(t, "job-1", res.JobID)
	assert.Equal(t, DataTypeURL, res.DataType)
	assert.Equal(t, 19, res.DataLength)
	assert.Equal(t, 155, res.CenterX)
	assert.Equal(t, 155, res.CenterY)
	assert.Equal(t, 44100, res.AreaPixels)
	assert.Equal(t, "excellent", res.QualityDescription)

	// version 2 grid is 25x25 modules
	assert.Equal(t, 25, res.ModulesCount)
	assert.InDelta(t, 8.4, res.ModuleSize, 1e-9)
	assert.Equal(t, 38, res.EstimatedCap)
	assert.InDelta(t, 19.0/38.0, res.DataUtilization, 1e-9)

	assert.True(t, res.ContainsURL)
	assert.False(t, res.Suspicious)

	var info URLInfo
	require.NoError(t, json.Unmarshal(res.ParsedData, &info))
	assert.Equal(t, "example.com", info.Domain)
	assert.True(t, info.IsSecure)
}

func TestBuildResult_WiFi(t *testing.T) {
	hit := domain.DecodedSymbol{
		RawText:    "WIFI:T:WPA;S:Home;P:secret;;",
		SymbolType: "QRCODE",
		Quality:    0.6,
	}

	res := BuildResult("job-2", hit)

	assert.Equal(t, DataTypeWiFi, res.DataType)
	assert.Equal(t, "fair", res.QualityDescription)
	assert.Zero(t, res.ModulesCount)
	assert.Zero(t, res.DataUtilization)

	var info WiFiInfo
	require.NoError(t, json.Unmarshal(res.ParsedData, &info))
	assert.Equal(t, "Home", info.NetworkName)
	assert.Equal(t, "WPA", info.SecurityType)
	assert.True(t, info.PasswordProtected)
}

func TestBuildResult_ShortenerFlagged(t *testing.T) {
	res := BuildResult("job-3", domain.DecodedSymbol{RawText: "https://bit.ly/3xYz", Quality: 0.8})
	assert.True(t, res.URLShortener)
	assert.True(t, res.Suspicious)
}

func TestBuildResult_UtilizationClamped(t *testing.T) {
	long := make([]byte, 60)
	for i := range long {
		long[i] = 'A'
	}
	res := BuildResult("job-4", domain.DecodedSymbol{
		RawText:  string(long),
		Quality:  0.8,
		Version:  1,
		ECCLevel: "H", // capacity 10, payload far exceeds it
	})
	assert.InDelta(t, 1.0, res.DataUtilization, 1e-9)
}

func TestBuildResult_PlainTextHasNoParsedData(t *testing.T) {
	res := BuildResult("job-5", domain.DecodedSymbol{RawText: "hello", Quality: 0.4})
	assert.Equal(t, DataTypeText, res.DataType)
	assert.Nil(t, res.ParsedData)
}
