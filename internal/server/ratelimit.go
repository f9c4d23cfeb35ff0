package server

import (
	"sync"
	"time"

	"github.com/lawnchairsociety/dragogauntlet/internal/config"
)

// AuthLimiter locks out addresses after repeated failed editor logins. Each
// lockout of the same address doubles, up to the configured maximum.
type AuthLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptInfo
	maxAttempts int
	lockout     time.Duration
	maxLockout  time.Duration

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

type attemptInfo struct {
	failures    int
	lockedUntil time.Time
	lockouts    int
}

// NewAuthLimiter starts a limiter and its cleanup goroutine.
func NewAuthLimiter(cfg config.RateLimitConfig) *AuthLimiter {
	rl := &AuthLimiter{
		attempts:        make(map[string]*attemptInfo),
		maxAttempts:     cfg.MaxAttempts,
		lockout:         time.Duration(cfg.LockoutSeconds) * time.Second,
		maxLockout:      time.Duration(cfg.MaxLockoutSeconds) * time.Second,
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}
	if rl.maxAttempts <= 0 {
		rl.maxAttempts = 5
	}
	if rl.lockout <= 0 {
		rl.lockout = 30 * time.Second
	}
	if rl.maxLockout < rl.lockout {
		rl.maxLockout = rl.lockout
	}

	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup goroutine.
func (rl *AuthLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// IsLocked reports whether ip is locked out and for how much longer.
func (rl *AuthLimiter) IsLocked(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, ok := rl.attempts[ip]
	if !ok || !time.Now().Before(info.lockedUntil) {
		return false, 0
	}
	return true, time.Until(info.lockedUntil)
}

// RecordFailure counts a failed login and reports whether ip is now locked.
func (rl *AuthLimiter) RecordFailure(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	info, ok := rl.attempts[ip]
	if !ok {
		info = &attemptInfo{}
		rl.attempts[ip] = info
	}
	if time.Now().Before(info.lockedUntil) {
		return true, time.Until(info.lockedUntil)
	}

	info.failures++
	if info.failures < rl.maxAttempts {
		return false, 0
	}

	info.lockouts++
	d := rl.lockout
	for i := 1; i < info.lockouts && d < rl.maxLockout; i++ {
		d *= 2
	}
	d = min(d, rl.maxLockout)
	info.lockedUntil = time.Now().Add(d)
	info.failures = 0
	return true, d
}

// RecordSuccess forgets ip's failures.
func (rl *AuthLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, ip)
}

// Attempts returns the failures recorded for ip since its last lockout.
func (rl *AuthLimiter) Attempts(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if info, ok := rl.attempts[ip]; ok {
		return info.failures
	}
	return 0
}

func (rl *AuthLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCleanup:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup drops entries idle for ten minutes past their lockout.
func (rl *AuthLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, info := range rl.attempts {
		if info.lockedUntil.Before(cutoff) && info.failures == 0 {
			delete(rl.attempts, ip)
		}
	}
}
