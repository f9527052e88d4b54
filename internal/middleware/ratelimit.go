// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/codeclash-gg/backend/internal/core"
)

type RateLimitConfig struct {
	Limit   redis_rate.Limit
	KeyFunc func(*http.Request) string

	// FailOpen skips limiting entirely when redis cannot answer.
	// Limiters that leave it false degrade to per-process buckets
	// instead, so brute force protection survives a redis outage.
	FailOpen bool

	// BypassFunc exempts matching requests from the limit.
	BypassFunc func(*http.Request) bool

	// OnLimited observes each rejection before the 429 goes out.
	OnLimited func(*http.Request, *redis_rate.Result)
}

// RateLimiter enforces a shared budget through redis so every API
// instance counts against the same buckets.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *memoryLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newMemoryLimiter(),
		config:   cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.config.KeyFunc(r)

		res, err := rl.limiter.Allow(r.Context(), key, rl.config.Limit)
		if err != nil {
			if rl.config.FailOpen {
				slog.Warn("rate limiter error, failing open",
					"error", err,
					"key", key,
				)
				next.ServeHTTP(w, r)
				return
			}

			slog.Warn("rate limiter error, using local buckets",
				"error", err,
				"key", key,
			)
			res = rl.fallback.allow(key, rl.config.Limit)
		}

		writeLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			if rl.config.OnLimited != nil {
				rl.config.OnLimited(r, res)
			}
			writeRateLimited(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LogLimited builds an OnLimited hook that records who hit the wall.
func LogLimited(
	logger *slog.Logger,
	msg string,
) func(*http.Request, *redis_rate.Result) {
	return func(r *http.Request, _ *redis_rate.Result) {
		logger.Warn(msg,
			"path", r.URL.Path,
			"ip", ClientIP(r),
		)
	}
}

// BypassPaths builds a BypassFunc that exempts exact paths, typically
// the health probes a load balancer polls from one address.
func BypassPaths(paths ...string) func(*http.Request) bool {
	exempt := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		exempt[p] = struct{}{}
	}

	return func(r *http.Request) bool {
		_, ok := exempt[r.URL.Path]
		return ok
	}
}

// ClientIP reports the address a request came from. The rightmost
// X-Forwarded-For entry is the one appended by our own proxy, entries
// left of it are client-supplied and untrusted.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + ClientIP(r)
}

// KeyByUser buckets per account when the request is authenticated and
// falls back to the client IP for anonymous traffic.
func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != 0 {
		return "ratelimit:user:" + strconv.FormatInt(userID, 10)
	}
	return KeyByIP(r)
}

func KeyByUserAndEndpoint(r *http.Request) string {
	return KeyByUser(r) + ":endpoint:" + normalizeEndpoint(r.URL.Path)
}

// normalizeEndpoint collapses path ids so every request to the same
// route lands in the same bucket.
func normalizeEndpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if looksLikeID(part) {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func looksLikeID(s string) bool {
	if len(s) == 36 &&
		s[8] == '-' && s[13] == '-' && s[18] == '-' && s[23] == '-' {
		return true
	}

	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// writeLimitHeaders emits the legacy X-RateLimit trio alongside the
// draft RateLimit header pair.
func writeLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))

	h.Set("RateLimit-Policy", fmt.Sprintf(
		"%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf(
		"%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
}

func writeRateLimited(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := int(res.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.RateLimitedError(retryAfter))
}

const (
	memorySweepInterval = 5 * time.Minute
	memoryBucketTTL     = 10 * time.Minute
)

// memoryLimiter approximates the redis buckets in process while redis
// is unreachable. Counts are per instance, so a multi node deployment
// enforces a looser effective limit until redis comes back.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
}

type memoryBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newMemoryLimiter() *memoryLimiter {
	l := &memoryLimiter{buckets: make(map[string]*memoryBucket)}
	go l.sweep()
	return l
}

func (l *memoryLimiter) sweep() {
	ticker := time.NewTicker(memorySweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-memoryBucketTTL)

		l.mu.Lock()
		for key, bucket := range l.buckets {
			if bucket.lastSeen.Before(cutoff) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *memoryLimiter) allow(
	key string,
	limit redis_rate.Limit,
) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()

	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &memoryBucket{
			limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst),
		}
		l.buckets[key] = bucket
	}
	bucket.lastSeen = time.Now()
	l.mu.Unlock()

	allowed := bucket.limiter.Allow()

	remaining := int(bucket.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: time.Duration(float64(time.Second) / perSecond),
	}

	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = res.ResetAfter
	}

	return res
}

type RoleLimit struct {
	RequestsPerMinute int
	BurstSize         int
}

var DefaultRoleLimits = map[string]RoleLimit{
	"user":      {RequestsPerMinute: 120, BurstSize: 20},
	"moderator": {RequestsPerMinute: 600, BurstSize: 100},
	"admin":     {RequestsPerMinute: 1200, BurstSize: 200},
}

// RoleRateLimiter sizes each account's request budget by its role.
// Unknown and anonymous callers get the plain user budget.
func RoleRateLimiter(
	rdb *redis.Client,
	limits map[string]RoleLimit,
) func(http.Handler) http.Handler {
	limiter := redis_rate.NewLimiter(rdb)
	fallback := newMemoryLimiter()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetUserRole(r.Context())
			if role == "" {
				role = "user"
			}

			budget, ok := limits[role]
			if !ok {
				budget = limits["user"]
			}

			limit := redis_rate.Limit{
				Rate:   budget.RequestsPerMinute,
				Burst:  budget.BurstSize,
				Period: time.Minute,
			}

			// Anonymous traffic is keyed by client IP so strangers do
			// not drain a shared bucket.
			key := KeyByUser(r)

			res, err := limiter.Allow(r.Context(), key, limit)
			if err != nil {
				res = fallback.allow(key, limit)
			}

			w.Header().Set("X-RateLimit-Role", role)
			writeLimitHeaders(w, res, limit)

			if res.Allowed == 0 {
				writeRateLimited(w, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PerWindow builds a limit from the configured request budget and window.
func PerWindow(rate, burst int, window time.Duration) redis_rate.Limit {
	if window <= 0 {
		window = time.Minute
	}
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: window,
	}
}

func PerHour(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Hour,
	}
}
