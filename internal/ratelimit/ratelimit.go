package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter paces keyword crawls so consecutive hits on the target site
// keep a human-looking cadence.
type Limiter struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	mu         sync.Mutex

	errorCount   int
	successCount int
	backoff      float64
}

func New(minDelay, maxDelay time.Duration) *Limiter {
	return &Limiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		backoff:  1.5,
	}
}

// Wait blocks until enough time has passed since the last crawl,
// jittered between the current min and max delay.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	elapsed := time.Since(l.lastAction)
	delay := l.delay()
	l.mu.Unlock()

	if elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	l.mu.Lock()
	l.lastAction = time.Now()
	l.mu.Unlock()
	return nil
}

func (l *Limiter) delay() time.Duration {
	if l.maxDelay <= l.minDelay {
		return l.minDelay
	}
	jitter := time.Duration(rand.Int63n(int64(l.maxDelay - l.minDelay)))
	return l.minDelay + jitter
}

// RecordSuccess slowly tightens the pace after a streak of clean
// crawls.
func (l *Limiter) RecordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successCount++
	l.errorCount = 0

	if l.successCount > 5 {
		newMin := time.Duration(float64(l.minDelay) * 0.9)
		if newMin < time.Second {
			newMin = time.Second
		}
		l.minDelay = newMin
		l.successCount = 0
	}
}

// RecordError backs the pace off after repeated soft failures, capped
// so a bad streak cannot stall the run indefinitely.
func (l *Limiter) RecordError() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.errorCount++
	l.successCount = 0

	if l.errorCount >= 3 {
		l.minDelay = capDelay(time.Duration(float64(l.minDelay)*l.backoff), 60*time.Second)
		l.maxDelay = capDelay(time.Duration(float64(l.maxDelay)*l.backoff), 120*time.Second)
		l.errorCount = 0
	}
}

func capDelay(d, max time.Duration) time.Duration {
	if d > max {
		return max
	}
	return d
}
