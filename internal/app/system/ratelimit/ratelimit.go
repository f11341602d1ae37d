// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. It is safe for concurrent use.
// Idle buckets are swept on access, so no background goroutine is needed.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// New allows requests per window for each key, refilled continuously.
func New(requests int, window time.Duration) *Limiter {
	if requests < 1 {
		requests = 1
	}
	return &Limiter{
		buckets:   make(map[string]*bucket),
		limit:     rate.Limit(float64(requests) / window.Seconds()),
		burst:     requests,
		idle:      window * 2,
		lastSweep: time.Now(),
	}
}

// Allow reports whether a request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	return l.allowAt(key, time.Now())
}

func (l *Limiter) allowAt(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Reset forgets key, restoring its full burst.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Len is the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Middleware rejects requests over the per-IP budget with a 429 envelope.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			apierr.Write(w, nil, apierr.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the caller's address: first X-Forwarded-For hop, then
// X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles login attempts per IP and per account. It sits in
// front of the lockout policy and only slows brute force; lockout stays the
// authority on account state.
type LoginLimiter struct {
	ip      *Limiter
	account *Limiter
}

// NewLoginLimiter allows ipLimit attempts per minute per IP and
// accountLimit attempts per five minutes per (role, username).
func NewLoginLimiter(ipLimit, accountLimit int) *LoginLimiter {
	return &LoginLimiter{
		ip:      New(ipLimit, time.Minute),
		account: New(accountLimit, 5*time.Minute),
	}
}

func accountKey(username, role string) string {
	return strings.ToLower(strings.TrimSpace(role)) + ":" + strings.TrimSpace(username)
}

// Check returns apierr.ErrRateLimited when the attempt is over budget.
func (ll *LoginLimiter) Check(r *http.Request, username, role string) error {
	if !ll.ip.Allow(ClientIP(r)) {
		return apierr.ErrRateLimited
	}
	if username != "" && !ll.account.Allow(accountKey(username, role)) {
		return apierr.ErrRateLimited
	}
	return nil
}

// ResetAccount clears the account budget after a successful login.
func (ll *LoginLimiter) ResetAccount(username, role string) {
	ll.account.Reset(accountKey(username, role))
}
