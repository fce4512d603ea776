package main

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// cooldown throttles each caller independently: burst calls, refilled
// evenly over window.
type cooldown struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func newCooldown(burst int, window time.Duration) *cooldown {
	if burst <= 0 || window <= 0 {
		return nil
	}
	return &cooldown{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(window / time.Duration(burst)),
		burst:    burst,
	}
}

// Allow reports whether key may make a call now. A nil cooldown allows all.
func (c *cooldown) Allow(key string) bool {
	if c == nil {
		return true
	}
	key = strings.ToLower(strings.TrimSpace(key))
	c.mu.Lock()
	l, ok := c.limiters[key]
	if !ok {
		l = rate.NewLimiter(c.every, c.burst)
		c.limiters[key] = l
	}
	c.mu.Unlock()
	return l.Allow()
}
