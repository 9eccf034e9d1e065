package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/mediascan-be/internal/domain"
)

func TestUpdateActivity(t *testing.T) {
	s := New("sess-1", "203.0.113.7", "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0", 100, 60)

	s.UpdateActivity(domain.JobTypeBarcode, true, 120, 1000)
	s.UpdateActivity(domain.JobTypeBarcode, true, 80, 3000)
	s.UpdateActivity(domain.JobTypeOCR, true, 400, 0)
	s.UpdateActivity(domain.JobTypeQRCode, false, 0, 0)

	assert.Equal(t, 4, s.TotalJobs)
	assert.Equal(t, 4, s.JobsToday)
	assert.Equal(t, 4, s.TotalRequests)
	assert.Equal(t, 4, s.RequestsToday)
	assert.Equal(t, 2, s.BarcodeJobs)
	assert.Equal(t, 1, s.OCRJobs)
	assert.Equal(t, 1, s.QRCodeJobs)
	assert.Equal(t, 3, s.SuccessfulJobs)
	assert.Equal(t, 1, s.FailedJobs)
	assert.InDelta(t, 0.75, s.SuccessRate(), 1e-9)
	assert.InDelta(t, 200, s.AvgProcessingTimeMs, 1e-9)
	assert.InDelta(t, 2000, s.AvgFileSizeBytes, 1e-9)
}

func TestUpdateActivity_DayRollover(t *testing.T) {
	s := New("sess-2", "203.0.113.7", "", 0, 0)
	s.UpdateActivity(domain.JobTypeOCR, true, 100, 0)
	require.Equal(t, 1, s.JobsToday)

	s.LastJobDate = "2020-01-01"
	s.UpdateActivity(domain.JobTypeOCR, true, 100, 0)

	assert.Equal(t, 1, s.JobsToday)
	assert.Equal(t, 1, s.RequestsToday)
	assert.Equal(t, 2, s.TotalJobs)
	assert.Equal(t, 2, s.TotalRequests)
	assert.Equal(t, time.Now().UTC().Format(time.DateOnly), s.LastJobDate)
}

func TestSuccessRate_FreshSession(t *testing.T) {
	s := New("sess-3", "203.0.113.7", "", 0, 0)
	assert.Zero(t, s.SuccessRate())
}

func TestCheckRateLimits(t *testing.T) {
	s := New("sess-4", "203.0.113.7", "", 3, 60)

	dec := s.CheckRateLimits()
	assert.True(t, dec.Allowed)
	assert.Equal(t, 3, dec.Remaining)

	for range 3 {
		s.UpdateActivity(domain.JobTypeBarcode, true, 10, 0)
	}
	dec = s.CheckRateLimits()
	assert.False(t, dec.Allowed)
	assert.Equal(t, "daily_limit_exceeded", dec.Reason)
}

func TestCheckRateLimits_StaleDailyCounterIgnored(t *testing.T) {
	s := New("sess-5", "203.0.113.7", "", 10, 60)
	s.JobsToday = 50
	s.LastJobDate = "2020-01-01"

	dec := s.CheckRateLimits()
	assert.True(t, dec.Allowed)
	assert.Equal(t, 10, dec.Remaining)
}

func TestBlockAndUnblock(t *testing.T) {
	s := New("sess-6", "203.0.113.7", "", 10, 60)

	s.Block("abuse", time.Hour)
	dec := s.CheckRateLimits()
	assert.False(t, dec.Allowed)
	assert.Equal(t, "session_blocked", dec.Reason)

	s.Unblock()
	assert.True(t, s.CheckRateLimits().Allowed)
	assert.Empty(t, s.BlockReason)
}

func TestBlock_ExpiredBlockLifts(t *testing.T) {
	s := New("sess-7", "203.0.113.7", "", 10, 60)
	s.Blocked = true
	past := time.Now().UTC().Add(-time.Minute)
	s.BlockedUntil = &past

	dec := s.CheckRateLimits()
	assert.True(t, dec.Allowed)
	assert.False(t, s.Blocked)
}

func TestBlock_IndefiniteWithoutDuration(t *testing.T) {
	s := New("sess-8", "203.0.113.7", "", 10, 60)
	s.Block("operator hold", 0)
	assert.Nil(t, s.BlockedUntil)
	assert.False(t, s.CheckRateLimits().Allowed)
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		device  string
		browser string
		os      string
	}{
		{
			"windows chrome",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			"desktop", "chrome", "windows",
		},
		{
			"iphone safari",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Mobile/15E148 Safari/604.1",
			"mobile", "safari", "ios",
		},
		{
			"android chrome",
			"Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			"mobile", "chrome", "android",
		},
		{
			"linux firefox",
			"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			"desktop", "firefox", "linux",
		},
		{
			"crawler",
			"Googlebot/2.1 (+http://www.google.com/bot.html)",
			"bot", "unknown", "unknown",
		},
		{"empty", "", "unknown", "unknown", "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			device, browser, os := ParseUserAgent(tc.ua)
			assert.Equal(t, tc.device, device)
			assert.Equal(t, tc.browser, browser)
			assert.Equal(t, tc.os, os)
		})
	}
}

func TestDeriveID(t *testing.T) {
	now := time.Date(2024, 8, 15, 10, 30, 0, 0, time.UTC)

	id1 := DeriveID("203.0.113.7", "agent", now)
	id2 := DeriveID("203.0.113.7", "agent", now.Add(20*time.Minute))
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 16)

	nextHour := DeriveID("203.0.113.7", "agent", now.Add(time.Hour))
	assert.NotEqual(t, id1, nextHour)

	otherIP := DeriveID("198.51.100.1", "agent", now)
	assert.NotEqual(t, id1, otherIP)
}

func TestSummary(t *testing.T) {
	s := New("sess-9", "203.0.113.7", "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0", 200, 60)
	s.UpdateActivity(domain.JobTypeBarcode, true, 50, 0)

	sum := s.Summary()
	assert.Equal(t, "sess-9", sum.SessionID)
	assert.Equal(t, "desktop", sum.DeviceType)
	assert.Equal(t, 1, sum.TotalJobs)
	assert.Equal(t, 1, sum.TotalRequests)
	assert.Equal(t, 200, sum.DailyLimit)
	assert.Equal(t, 60, sum.MinuteLimit)
	assert.Equal(t, 1, sum.JobsByType["barcode"])
	assert.InDelta(t, 1.0, sum.SuccessRate, 1e-9)
}
