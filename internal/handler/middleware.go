package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/mquernel/portfolio/backend/internal/metrics"
)

// SecurityHeaders adds security response headers (CSP, X-Frame-Options, etc.)
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("X-XSS-Protection", "0")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses a well-formed incoming X-Request-ID or generates a UUID, and
// echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// limitStore decides whether one more request for key fits the budget.
type limitStore interface {
	allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration, err error)
	name() string
}

// RateLimiter provides IP-based rate limiting on top of a memory or Redis store.
type RateLimiter struct {
	store             limitStore
	trustedProxyCount int
}

// NewRateLimiter creates an in-memory token-bucket limiter allowing maxPerMinute
// requests per client IP, with the full minute available as burst.
// Assumes a single trusted reverse proxy (nginx) by default.
func NewRateLimiter(maxPerMinute int) *RateLimiter {
	return &RateLimiter{store: newMemoryStore(maxPerMinute), trustedProxyCount: 1}
}

// NewRedisRateLimiter creates a fixed-window limiter shared by every replica
// using the same Redis. Redis failures let the request through.
func NewRedisRateLimiter(client *redis.Client, maxPerWindow int, window time.Duration) *RateLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RateLimiter{
		store:             &redisStore{client: client, limit: maxPerWindow, window: window, now: time.Now},
		trustedProxyCount: 1,
	}
}

// WithTrustedProxies sets how many reverse proxies append to X-Forwarded-For.
// Zero ignores the header entirely.
func (rl *RateLimiter) WithTrustedProxies(n int) *RateLimiter {
	if n >= 0 {
		rl.trustedProxyCount = n
	}
	return rl
}

// Close stops background cleanup of the in-memory store.
func (rl *RateLimiter) Close() {
	if ms, ok := rl.store.(*memoryStore); ok {
		ms.stopOnce.Do(func() { close(ms.stop) })
	}
}

// Middleware returns an http.Handler that enforces rate limits.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.clientIP(r)
		ok, retryAfter, err := rl.store.allow(r.Context(), ip)
		if err != nil {
			slog.Warn("rate limit check failed, allowing request", "limiter", rl.store.name(), "error", err)
			ok = true
		}
		if !ok {
			metrics.RateLimitRejected.WithLabelValues(rl.store.name()).Inc()
			w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues(rl.store.name()).Inc()
		next.ServeHTTP(w, r)
	})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP extracts the real client IP, reading from the rightmost trusted
// proxy position in X-Forwarded-For to prevent spoofing.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && rl.trustedProxyCount > 0 {
		parts := strings.Split(xff, ",")
		// The rightmost entry added by our infrastructure is at
		// index len(parts) - trustedProxyCount.
		idx := len(parts) - rl.trustedProxyCount
		if idx >= 0 && idx < len(parts) {
			return strings.TrimSpace(parts[idx])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// memoryStore keeps one token bucket per client IP.
type memoryStore struct {
	every    time.Duration
	burst    int
	mu       sync.Mutex
	visitors map[string]*visitor
	stop     chan struct{}
	stopOnce sync.Once
}

func newMemoryStore(maxPerMinute int) *memoryStore {
	if maxPerMinute < 1 {
		maxPerMinute = 1
	}
	ms := &memoryStore{
		every:    time.Minute / time.Duration(maxPerMinute),
		burst:    maxPerMinute,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
	go ms.cleanupLoop()
	return ms
}

func (ms *memoryStore) name() string { return "memory" }

func (ms *memoryStore) allow(_ context.Context, key string) (bool, time.Duration, error) {
	ms.mu.Lock()
	v, ok := ms.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(ms.every), ms.burst)}
		ms.visitors[key] = v
	}
	v.lastSeen = time.Now()
	ms.mu.Unlock()

	r := v.limiter.Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return false, delay, nil
	}
	return true, 0, nil
}

// cleanupLoop periodically removes idle entries from the visitors map.
func (ms *memoryStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.evictIdle(time.Now().Add(-10 * time.Minute))
		}
	}
}

func (ms *memoryStore) evictIdle(before time.Time) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for ip, v := range ms.visitors {
		if v.lastSeen.Before(before) {
			delete(ms.visitors, ip)
		}
	}
}

// redisStore counts requests per client in fixed windows: INCR on a
// per-window key, expiring once the window is over.
type redisStore struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func (rs *redisStore) name() string { return "redis" }

func (rs *redisStore) allow(ctx context.Context, key string) (bool, time.Duration, error) {
	secs := int64(rs.window / time.Second)
	now := rs.now().Unix()
	bucket := now / secs
	redisKey := fmt.Sprintf("rl:contact:%s:%d", key, bucket)

	cnt, err := rs.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, err
	}
	if cnt == 1 {
		_ = rs.client.Expire(ctx, redisKey, rs.window+time.Second).Err()
	}
	if cnt > int64(rs.limit) {
		remaining := time.Duration((bucket+1)*secs-now) * time.Second
		return false, remaining, nil
	}
	return true, 0, nil
}
