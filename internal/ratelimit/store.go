package ratelimit

import (
	"context"
	"time"
)

// Store keeps sliding-window request counters.
type Store interface {
	// Record adds a request under key and returns how many requests key has seen
	// within the last window, including this one.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
