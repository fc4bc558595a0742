package middleware

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/MelissaPizarroD/WeightTracker-sub001/internal/metrics"
)

// RateLimiter keeps one token bucket per caller.
type RateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rps      float64
	burst    int
	metrics  *metrics.Manager
}

func NewRateLimiter(rps float64, burst int, m *metrics.Manager) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{rps: rps, burst: burst, metrics: m}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(rate.Limit(l.rps), l.burst))
	return v.(*rate.Limiter)
}

// Handler keys on the authenticated user when present, otherwise the client IP.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.rps <= 0 {
			return c.Next()
		}

		key := ""
		if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
			key = "user:" + userID
		}
		if key == "" {
			ip := c.IP()
			if ip == "" {
				ip = "unknown"
			}
			key = "ip:" + ip
		}

		if !l.limiter(key).Allow() {
			if l.metrics != nil {
				l.metrics.CounterRateLimited.Inc()
			}
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Rate limit exceeded"})
		}
		return c.Next()
	}
}
