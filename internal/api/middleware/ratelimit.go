package middleware

import (
	"context"
	"credit-approval/internal/config"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const rateLimitWindow = time.Second

// limiter decides whether one more request from key fits in the budget.
type limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type RateLimiterMiddleware struct {
	limiter limiter
	cfg     config.RateLimitConfig
	logger  *slog.Logger
}

// NewRateLimiterMiddleware counts requests in Redis when a client is given so
// that every replica shares the budget, and per process otherwise.
func NewRateLimiterMiddleware(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) *RateLimiterMiddleware {
	logger = logger.With("component", "RateLimiter")
	rl := &RateLimiterMiddleware{cfg: cfg, logger: logger}

	switch {
	case !cfg.Enabled:
		logger.Info("Rate limiting is disabled via configuration.")
	case redisClient != nil:
		logger.Info("Rate limiter backed by Redis", "rps", cfg.RPS, "window", rateLimitWindow)
		rl.limiter = newRedisLimiter(redisClient, cfg)
	default:
		logger.Info("Rate limiter backed by in-memory token buckets", "rps", cfg.RPS, "burst", cfg.Burst)
		rl.limiter = newMemoryLimiter(cfg)
	}
	return rl
}

type memoryLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func newMemoryLimiter(cfg config.RateLimitConfig) *memoryLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	m := &memoryLimiter{rps: rate.Limit(cfg.RPS), burst: burst}
	go m.cleanupLimiters()
	return m
}

func (m *memoryLimiter) getLimiter(key string) *rate.Limiter {
	limiter, _ := m.limiters.LoadOrStore(key, rate.NewLimiter(m.rps, m.burst))
	return limiter.(*rate.Limiter)
}

func (m *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return m.getLimiter(key).Allow(), nil
}

// cleanupLimiters drops buckets that have refilled completely.
func (m *memoryLimiter) cleanupLimiters() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.limiters.Range(func(key, value interface{}) bool {
			limiter := value.(*rate.Limiter)
			if limiter.Tokens() >= float64(m.burst) {
				m.limiters.Delete(key)
			}
			return true
		})
	}
}

// redisLimiter is a fixed window counter keyed by client IP.
type redisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func newRedisLimiter(client *redis.Client, cfg config.RateLimitConfig) *redisLimiter {
	limit := int64(math.Ceil(cfg.RPS))
	if limit < 1 {
		limit = 1
	}
	return &redisLimiter{client: client, limit: limit, window: rateLimitWindow}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe := l.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("rate limit pipeline: %w", err)
	}

	// -1 means the key has no expiry yet, -2 that it vanished in between.
	if ttl := ttlCmd.Val(); ttl < 0 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return true, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return incrCmd.Val() <= l.limit, nil
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		ip := strings.TrimSpace(ips[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if rl.limiter == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)

		allowed, err := rl.limiter.Allow(r.Context(), ip)
		if err != nil {
			// Fail open: an unavailable limiter store must not take the API down.
			rl.logger.ErrorContext(r.Context(), "Rate limiter check failed", "error", err, "ip", ip)
		}
		if !allowed {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rateLimitWindow.Seconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "Rate limit exceeded",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
