package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/crownfall/farm-coordinator/internal/http/response"
)

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
	ResetAt    time.Time
}

type RateLimitPolicy struct {
	Limit  int
	Window time.Duration
}

// RateLimiter is a per-key fixed window limiter. Credential endpoints get a
// tight policy; agent endpoints are limited per client IP so one stuck agent
// cannot monopolize the account pool selector.
type RateLimiter struct {
	mu      sync.Mutex
	policy  RateLimitPolicy
	keyFunc func(r *http.Request) string
	store   map[string]*windowState
	cleanup time.Time
}

type windowState struct {
	hits []time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithKey(limit, window, nil)
}

func NewRateLimiterWithKey(limit int, window time.Duration, keyFunc func(r *http.Request) string) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	if keyFunc == nil {
		keyFunc = clientIPKey
	}
	return &RateLimiter{
		policy:  RateLimitPolicy{Limit: limit, Window: window},
		keyFunc: keyFunc,
		store:   make(map[string]*windowState),
		cleanup: time.Now().Add(window),
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := rl.allow(rl.keyFunc(r))
			writeRateLimitHeaders(w.Header(), rl.policy.Limit, decision.Remaining, decision.ResetAt)
			if !decision.Allowed {
				w.Header().Set("Retry-After", retryAfterHeader(decision.RetryAfter))
				response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(key string) Decision {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.cleanup) {
		for k, v := range rl.store {
			if len(v.hits) == 0 || now.Sub(v.hits[len(v.hits)-1]) > 2*rl.policy.Window {
				delete(rl.store, k)
			}
		}
		rl.cleanup = now.Add(rl.policy.Window)
	}

	state, ok := rl.store[key]
	if !ok {
		state = &windowState{}
		rl.store[key] = state
	}

	cutoff := now.Add(-rl.policy.Window)
	pruned := state.hits[:0]
	for _, hit := range state.hits {
		if hit.After(cutoff) {
			pruned = append(pruned, hit)
		}
	}
	state.hits = pruned

	resetAt := now.Add(rl.policy.Window)
	if len(state.hits) > 0 {
		resetAt = state.hits[0].Add(rl.policy.Window)
	}
	if len(state.hits) >= rl.policy.Limit {
		return Decision{
			Allowed:    false,
			RetryAfter: time.Until(resetAt),
			Remaining:  0,
			ResetAt:    resetAt,
		}
	}
	state.hits = append(state.hits, now)
	return Decision{
		Allowed:   true,
		Remaining: rl.policy.Limit - len(state.hits),
		ResetAt:   resetAt,
	}
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func writeRateLimitHeaders(h http.Header, limit, remaining int, resetAt time.Time) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

func retryAfterHeader(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
