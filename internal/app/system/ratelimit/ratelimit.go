// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Limiter allows at most limit hits per key in a fixed window that starts
// at the key's first hit. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter and starts a goroutine that drops expired windows
// every 2*duration until Stop is called.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop(duration * 2)
	return l
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if n := l.limit - w.count; n > 0 {
		return n
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Limit types reported by LoginLimiter.Check.
const (
	LimitIP       = "ip"
	LimitUsername = "username"
)

// LoginLimiter throttles login attempts per client IP and per username, so
// neither one address nor one account can be hammered.
type LoginLimiter struct {
	ip       *Limiter
	username *Limiter
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 attempts per
// username per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, userLimit int, userWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ip:       New(ipLimit, ipWindow),
		username: New(userLimit, userWindow),
	}
}

// Check records an attempt. When blocked it returns false and the limit
// that tripped (LimitIP or LimitUsername).
func (ll *LoginLimiter) Check(ip, username string) (bool, string) {
	if !ll.ip.Allow(ip) {
		return false, LimitIP
	}
	if key := usernameKey(username); key != "" && !ll.username.Allow(key) {
		return false, LimitUsername
	}
	return true, ""
}

// ResetUsername clears the username window after a successful login.
func (ll *LoginLimiter) ResetUsername(username string) {
	if key := usernameKey(username); key != "" {
		ll.username.Reset(key)
	}
}

// Stop ends both cleanup goroutines.
func (ll *LoginLimiter) Stop() {
	ll.ip.Stop()
	ll.username.Stop()
}

func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
