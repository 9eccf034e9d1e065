package ratelimit

import (
	"sync"
	"time"
)

// Denial reasons reported to clients.
const (
	ReasonMinuteLimit = "minute_limit_exceeded"
	ReasonDailyLimit  = "daily_limit_exceeded"
)

const (
	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool          `json:"allowed"`
	Reason     string        `json:"reason,omitempty"`
	Current    int           `json:"current"`
	Limit      int           `json:"limit"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

type clientLog struct {
	minute []time.Time
	day    []time.Time
}

// Limiter enforces sliding-window request limits per client key. All
// state lives behind one mutex; checks mutate the window logs.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientLog

	perMinute int
	perDay    int

	now func() time.Time
}

// New creates a limiter with the given per-minute and per-day budgets.
// A zero or negative budget disables that window.
func New(perMinute, perDay int) *Limiter {
	return &Limiter{
		clients:   make(map[string]*clientLog),
		perMinute: perMinute,
		perDay:    perDay,
		now:       time.Now,
	}
}

// Admit records one request attempt for key and reports whether it is
// within both windows. A denied attempt is not recorded.
func (l *Limiter) Admit(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	log, ok := l.clients[key]
	if !ok {
		log = &clientLog{}
		l.clients[key] = log
	}

	log.minute = prune(log.minute, now.Add(-minuteWindow))
	log.day = prune(log.day, now.Add(-dayWindow))

	if l.perMinute > 0 && len(log.minute) >= l.perMinute {
		return Decision{
			Reason:     ReasonMinuteLimit,
			Current:    len(log.minute),
			Limit:      l.perMinute,
			RetryAfter: retryAfter(log.minute, now, minuteWindow),
		}
	}
	if l.perDay > 0 && len(log.day) >= l.perDay {
		return Decision{
			Reason:     ReasonDailyLimit,
			Current:    len(log.day),
			Limit:      l.perDay,
			RetryAfter: retryAfter(log.day, now, dayWindow),
		}
	}

	log.minute = append(log.minute, now)
	log.day = append(log.day, now)
	return Decision{Allowed: true, Current: len(log.minute), Limit: l.perMinute}
}

// Cleanup drops clients whose day window is empty and returns how many
// were removed. Meant to run periodically from a background loop.
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-dayWindow)
	removed := 0
	for key, log := range l.clients {
		log.day = prune(log.day, cutoff)
		if len(log.day) == 0 {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// ActiveClients reports how many client keys currently hold state.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// prune drops timestamps at or before cutoff, keeping the slice sorted.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	return stamps[i:]
}

func retryAfter(stamps []time.Time, now time.Time, window time.Duration) time.Duration {
	if len(stamps) == 0 {
		return 0
	}
	wait := stamps[0].Add(window).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}
