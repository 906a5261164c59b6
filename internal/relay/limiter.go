package relay

import (
	"sync"
	"time"
)

// ipRateLimiter tracks last connection time per IP to prevent abuse
type ipRateLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	times    map[string]time.Time
	now      func() time.Time
}

func newIPRateLimiter(cooldown time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		cooldown: cooldown,
		times:    make(map[string]time.Time),
		now:      time.Now,
	}
}

// allow returns true if this IP can connect, and records the attempt.
// A zero cooldown disables the limiter.
func (rl *ipRateLimiter) allow(ip string) bool {
	if rl.cooldown <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	if last, ok := rl.times[ip]; ok && now.Sub(last) < rl.cooldown {
		return false
	}
	rl.times[ip] = now
	if len(rl.times) > 1024 {
		rl.prune(now)
	}
	return true
}

// prune drops entries older than the cooldown. Caller holds mu.
func (rl *ipRateLimiter) prune(now time.Time) {
	cutoff := now.Add(-rl.cooldown)
	for ip, t := range rl.times {
		if t.Before(cutoff) {
			delete(rl.times, ip)
		}
	}
}
