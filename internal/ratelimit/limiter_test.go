package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(perMinute, perDay int) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)}
	l := New(perMinute, perDay)
	l.now = clock.Now
	return l, clock
}

func TestAdmit_MinuteLimit(t *testing.T) {
	l, clock := newTestLimiter(3, 100)

	for i := range 3 {
		dec := l.Admit("client-a")
		require.True(t, dec.Allowed, "request %d should be admitted", i+1)
		clock.Advance(time.Second)
	}

	dec := l.Admit("client-a")
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonMinuteLimit, dec.Reason)
	assert.Equal(t, 3, dec.Current)
	assert.Equal(t, 3, dec.Limit)
	assert.Greater(t, dec.RetryAfter, time.Duration(0))
}

func TestAdmit_WindowSlides(t *testing.T) {
	l, clock := newTestLimiter(3, 100)

	for range 3 {
		require.True(t, l.Admit("client-a").Allowed)
	}
	require.False(t, l.Admit("client-a").Allowed)

	clock.Advance(61 * time.Second)
	assert.True(t, l.Admit("client-a").Allowed)
}

func TestAdmit_DailyLimit(t *testing.T) {
	l, clock := newTestLimiter(100, 5)

	for range 5 {
		require.True(t, l.Admit("client-a").Allowed)
		clock.Advance(2 * time.Minute) // keep the minute window clear
	}

	dec := l.Admit("client-a")
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonDailyLimit, dec.Reason)
	assert.Equal(t, 5, dec.Limit)

	clock.Advance(25 * time.Hour)
	assert.True(t, l.Admit("client-a").Allowed)
}

func TestAdmit_DeniedAttemptNotRecorded(t *testing.T) {
	l, _ := newTestLimiter(2, 100)

	require.True(t, l.Admit("client-a").Allowed)
	require.True(t, l.Admit("client-a").Allowed)

	// repeated denials must not extend the window
	for range 10 {
		dec := l.Admit("client-a")
		assert.False(t, dec.Allowed)
		assert.Equal(t, 2, dec.Current)
	}
}

func TestAdmit_ClientsIsolated(t *testing.T) {
	l, _ := newTestLimiter(1, 100)

	require.True(t, l.Admit("client-a").Allowed)
	require.False(t, l.Admit("client-a").Allowed)
	assert.True(t, l.Admit("client-b").Allowed)
}

func TestAdmit_ZeroLimitDisablesWindow(t *testing.T) {
	l, _ := newTestLimiter(0, 0)
	for range 50 {
		require.True(t, l.Admit("client-a").Allowed)
	}
}

func TestCleanup(t *testing.T) {
	l, clock := newTestLimiter(10, 100)

	l.Admit("client-a")
	l.Admit("client-b")
	require.Equal(t, 2, l.ActiveClients())

	assert.Zero(t, l.Cleanup())

	clock.Advance(25 * time.Hour)
	assert.Equal(t, 2, l.Cleanup())
	assert.Zero(t, l.ActiveClients())
}

func TestAdmit_Concurrent(t *testing.T) {
	l := New(1000, 10000)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				l.Admit("shared")
			}
		}()
	}
	wg.Wait()

	dec := l.Admit("shared")
	assert.True(t, dec.Allowed)
	assert.Equal(t, 401, dec.Current)
}
