package ratelimit

import "time"

// Config bounds request rates for one route class.
type Config struct {
	RequestsPerMinute int
	RequestsPerHour   int
}

// RateLimiter answers whether a caller identified by key may proceed.
type RateLimiter interface {
	Allow(key string, config Config) (bool, error)
	GetRemaining(key string, window time.Duration) (int64, error)
	Reset(key string) error
}
