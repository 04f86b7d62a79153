package httpx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bodhivana/storefront/pkg/slogx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit (local limiter only)
	Burst int
}

// Common rate limit profiles for different endpoint types
// These can be overridden via environment variables (see init() below)
var (
	// StrictLimit for authentication endpoints (brute force prevention)
	// Allows 5 requests per minute, with all 5 available as a burst
	// Override with: RATELIMIT_STRICT_REQUESTS, RATELIMIT_STRICT_WINDOW_SEC, RATELIMIT_STRICT_BURST
	StrictLimit = RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		Burst:             5,
	}

	// ModerateLimit for authenticated operations
	// Allows 20 requests per minute, with all 20 available as a burst
	// Override with: RATELIMIT_MODERATE_REQUESTS, RATELIMIT_MODERATE_WINDOW_SEC, RATELIMIT_MODERATE_BURST
	ModerateLimit = RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		Burst:             20,
	}

	// LenientLimit for less sensitive operations
	// Allows 100 requests per minute, with all 100 available as a burst
	// Override with: RATELIMIT_LENIENT_REQUESTS, RATELIMIT_LENIENT_WINDOW_SEC, RATELIMIT_LENIENT_BURST
	LenientLimit = RateLimitConfig{
		RequestsPerWindow: 100,
		Window:            time.Minute,
		Burst:             100,
	}
)

func init() {
	// Allow overriding rate limits via environment variables (useful for testing)
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
}

// ParseRateLimitFromEnv reads rate limit configuration from environment variables.
// Environment variables follow the pattern: RATELIMIT_{prefix}_{field}
// For example: RATELIMIT_STRICT_REQUESTS, RATELIMIT_STRICT_WINDOW_SEC, RATELIMIT_STRICT_BURST
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	// Parse requests per window
	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			config.RequestsPerWindow = requests
		}
	}

	// Parse window duration in seconds
	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	// Parse burst size
	if val := os.Getenv("RATELIMIT_" + prefix + "_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Burst = burst
		}
	}

	return config
}

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
// Implementations must be safe for concurrent use. A non-nil error means
// the backend could not answer; callers fail open on errors so a flaky
// Redis never takes login down with it.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Limit() RateLimitConfig
}

/* Counter-backed limiter (fixed window, shared across replicas) */

// CounterStore increments a windowed counter and reports the count plus
// the remaining window. The first increment of a key starts its window.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// RedisCounterStore implements CounterStore with INCR + EXPIRE, giving
// every replica the same view of a key's counter.
type RedisCounterStore struct {
	Client *redis.Client
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("incr %q: %w", key, err)
	}

	// First hit starts the window.
	if count == 1 {
		if err := s.Client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("expire %q: %w", key, err)
		}
		return count, window, nil
	}

	ttl, err := s.Client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// Key somehow lost its TTL, reset it rather than limiting forever.
		_ = s.Client.Expire(ctx, key, window).Err()
		ttl = window
	}
	return count, ttl, nil
}

// CounterLimiter applies a fixed-window limit over a CounterStore.
type CounterLimiter struct {
	store  CounterStore
	config RateLimitConfig
	prefix string
}

// NewCounterLimiter builds a limiter over the given store. The prefix
// namespaces keys so multiple limiters can share one Redis database.
func NewCounterLimiter(store CounterStore, prefix string, config RateLimitConfig) *CounterLimiter {
	return &CounterLimiter{store: store, config: config, prefix: prefix}
}

func (l *CounterLimiter) Limit() RateLimitConfig { return l.config }

func (l *CounterLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, remaining, err := l.store.Incr(ctx, l.prefix+":"+key, l.config.Window)
	if err != nil {
		return Decision{Allowed: true}, err
	}

	if count > int64(l.config.RequestsPerWindow) {
		return Decision{Allowed: false, RetryAfter: remaining}, nil
	}
	return Decision{Allowed: true}, nil
}

/* In-process limiter (single replica, token bucket) */

// LocalLimiter keeps a token bucket per key in memory. Suitable when the
// service runs as a single replica or when Redis is not configured.
type LocalLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	config   RateLimitConfig

	mu          sync.Mutex
	lastCleanup time.Time
}

func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	return &LocalLimiter{
		rate:        rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:       config.Burst,
		config:      config,
		lastCleanup: time.Now(),
	}
}

func (l *LocalLimiter) Limit() RateLimitConfig { return l.config }

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	limiter := l.getLimiter(key)

	if limiter.Allow() {
		return Decision{Allowed: true}, nil
	}

	// Peek at when the next token frees up without consuming it.
	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()

	return Decision{Allowed: false, RetryAfter: delay}, nil
}

// getLimiter retrieves or creates a token bucket for the given key.
func (l *LocalLimiter) getLimiter(key string) *rate.Limiter {
	// Fast path: limiter already exists
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	// Slow path: create new limiter
	limiter := rate.NewLimiter(l.rate, l.burst)
	actual, _ := l.limiters.LoadOrStore(key, limiter)

	// Periodic cleanup to prevent memory leak
	l.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup removes old limiters that haven't been used recently
// This prevents memory leaks from accumulating limiters for ephemeral keys
func (l *LocalLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Only cleanup once every 5 minutes
	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}

	l.lastCleanup = time.Now()

	// A limiter with a full token bucket hasn't been used recently.
	l.limiters.Range(func(key, value any) bool {
		limiter := value.(*rate.Limiter)
		if limiter.Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

/* Key extraction */

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, user ID, email, etc.)
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// It handles X-Forwarded-For and X-Real-IP headers for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	// Check X-Forwarded-For header (comma-separated list)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// UserIDKeyExtractor extracts the user ID from the request context.
// Returns empty string if no user ID is found.
func UserIDKeyExtractor(r *http.Request) string {
	return UserIDFromCtx(r.Context())
}

// CompositeKeyExtractor combines multiple key extractors with a separator.
// Example: CompositeKeyExtractor(":", IPKeyExtractor, UserIDKeyExtractor)
// would produce keys like "192.168.1.1:user123"
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

/* Middleware */

// RateLimitMiddleware creates a rate limiting middleware backed by the
// given Limiter. The keyExtractor determines how requests are grouped.
func RateLimitMiddleware(limiter Limiter, keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			// Extract the key for this request
			key := keyExtractor(r)
			if key == "" {
				// If we can't extract a key, allow the request but log it
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			decision, err := limiter.Allow(ctx, key)
			if err != nil {
				// Backend trouble: fail open so auth stays reachable.
				log.Warn("rate limit check failed, allowing request", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				config := limiter.Limit()
				retryAfter := max(int(decision.RetryAfter.Seconds()), 1)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", config.Window.String())

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteError(w, http.StatusTooManyRequests,
					"Too many requests. Please try again later.")
				return
			}

			// Request is allowed, continue to next handler
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP creates a rate limiter middleware that limits by IP address only.
func RateLimitByIP(limiter Limiter) Middleware {
	return RateLimitMiddleware(limiter, IPKeyExtractor)
}

// RateLimitByUser creates a rate limiter middleware that limits by
// authenticated user ID. Falls back to IP if no user is authenticated.
func RateLimitByUser(limiter Limiter) Middleware {
	return RateLimitMiddleware(limiter, CompositeKeyExtractor(":",
		UserIDKeyExtractor,
		IPKeyExtractor,
	))
}
