package core

// limiter.go bounds how many bcrypt operations run at once.
//
// Hashing and verifying passwords is deliberately slow and CPU bound. A burst
// of logins could otherwise pin every core, so Register, Login and
// ResetPassword take a slot first. When all slots stay busy for maxWait the
// request fails with ErrTooManyHashes.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyHashes is returned when no hashing slot frees up in time.
var ErrTooManyHashes = errors.New("too many concurrent password operations, please try again later")

// DefaultMaxConcurrentHashes is the slot count used when none is configured.
const DefaultMaxConcurrentHashes = 8

// DefaultHashWait is how long a request waits for a slot.
const DefaultHashWait = 5 * time.Second

// HashLimiter is a counting semaphore for password work.
type HashLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration
	active    atomic.Int64
}

// NewHashLimiter allows at most maxConcurrent operations; callers wait up to
// maxWait for a slot.
func NewHashLimiter(maxConcurrent int, maxWait time.Duration) *HashLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentHashes
	}
	if maxWait <= 0 {
		maxWait = DefaultHashWait
	}
	return &HashLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a slot. The caller must Release it.
func (l *HashLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrTooManyHashes
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (l *HashLimiter) Release() {
	l.active.Add(-1)
	<-l.semaphore
}

// Do runs fn while holding a slot.
func (l *HashLimiter) Do(ctx context.Context, fn func()) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	fn()
	return nil
}

// HashLimiterStatus is a point-in-time view for health output.
type HashLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current usage.
func (l *HashLimiter) Status() HashLimiterStatus {
	return HashLimiterStatus{
		Active:        int(l.active.Load()),
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
