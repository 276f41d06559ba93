package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// MemoryRateLimiter is a process-local sliding window for deployments that
// run without redis. Counts are not shared across instances.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

func NewMemoryRateLimiter() RateLimiter {
	return &MemoryRateLimiter{
		windows: make(map[string][]time.Time),
	}
}

func (l *MemoryRateLimiter) Allow(key string, config Config) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	windows := []struct {
		duration time.Duration
		limit    int
	}{
		{time.Minute, config.RequestsPerMinute},
		{time.Hour, config.RequestsPerHour},
	}

	for _, window := range windows {
		if window.limit <= 0 {
			continue
		}
		if l.countLocked(key, window.duration, now) >= int64(window.limit) {
			return false, nil
		}
	}

	for _, window := range windows {
		if window.limit <= 0 {
			continue
		}
		k := key + ":" + window.duration.String()
		l.windows[k] = append(l.windows[k], now)
	}

	return true, nil
}

func (l *MemoryRateLimiter) GetRemaining(key string, window time.Duration) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.countLocked(key, window, time.Now()), nil
}

func (l *MemoryRateLimiter) Reset(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for k := range l.windows {
		if strings.HasPrefix(k, key+":") {
			delete(l.windows, k)
		}
	}
	return nil
}

// countLocked prunes entries outside the window and returns what is left.
func (l *MemoryRateLimiter) countLocked(key string, window time.Duration, now time.Time) int64 {
	k := key + ":" + window.String()
	cutoff := now.Add(-window)

	kept := l.windows[k][:0]
	for _, ts := range l.windows[k] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.windows[k] = kept

	return int64(len(kept))
}
