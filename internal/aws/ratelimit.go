package aws

import (
	"context"
	"math"
	"sync"
	"time"

	"riprice/internal/config"
	"riprice/internal/logging"
)

// RateLimiter implements rate limiting with exponential backoff
type RateLimiter struct {
	tokens       chan struct{}
	interval     time.Duration
	maxRetries   int
	baseDelay    time.Duration
	maxDelay     time.Duration
	mu           sync.RWMutex
	failureCount int
	lastFailure  time.Time
	done         chan struct{}
	stopOnce     sync.Once
}

// NewRateLimiter creates a new rate limiter with the specified rate and backoff settings.
// If cfg is nil, it uses the DefaultRateLimitConfig.
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	if cfg == nil {
		cfg = &config.DefaultRateLimitConfig
	}

	tokenCount := int(math.Ceil(cfg.RequestsPerSecond))
	interval := time.Duration(float64(time.Second) / cfg.RequestsPerSecond)

	rl := &RateLimiter{
		tokens:     make(chan struct{}, tokenCount),
		interval:   interval,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		maxDelay:   cfg.MaxDelay,
		done:       make(chan struct{}),
	}

	for i := 0; i < tokenCount; i++ {
		rl.tokens <- struct{}{}
	}

	go rl.replenish()

	return rl
}

// replenish continuously replenishes tokens at the specified rate
func (rl *RateLimiter) replenish() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			select {
			case rl.tokens <- struct{}{}:
			default:
				// Token bucket is full
			}
		}
	}
}

// Stop ends token replenishment
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// MaxRetries returns how many times a failed call may be retried
func (rl *RateLimiter) MaxRetries() int {
	return rl.maxRetries
}

// getCurrentBackoff calculates the current backoff duration based on failure count
func (rl *RateLimiter) getCurrentBackoff() time.Duration {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if rl.failureCount == 0 || time.Since(rl.lastFailure) > time.Minute*5 {
		return 0
	}

	backoff := float64(rl.baseDelay) * math.Pow(2, float64(rl.failureCount-1))
	if backoff > float64(rl.maxDelay) {
		backoff = float64(rl.maxDelay)
	}
	return time.Duration(backoff)
}

// Wait waits for rate limit with exponential backoff
func (rl *RateLimiter) Wait(ctx context.Context) error {
	backoff := rl.getCurrentBackoff()
	if backoff > 0 {
		logging.Debug("Rate limiter applying backoff", map[string]interface{}{
			"backoff_ms": backoff.Milliseconds(),
		})
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.tokens:
		return nil
	}
}

// OnSuccess records a successful call and resets backoff
func (rl *RateLimiter) OnSuccess() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.failureCount > 0 {
		logging.Debug("Rate limiter resetting backoff after success", map[string]interface{}{
			"previous_failure_count": rl.failureCount,
		})
		rl.failureCount = 0
		rl.lastFailure = time.Time{}
	}
}

// OnFailure records a failed call and updates backoff parameters
func (rl *RateLimiter) OnFailure() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.failureCount++
	rl.lastFailure = time.Now()

	logging.Debug("Rate limiter recorded failure", map[string]interface{}{
		"failure_count": rl.failureCount,
	})
}

// Failures returns the current consecutive failure count
func (rl *RateLimiter) Failures() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.failureCount
}
