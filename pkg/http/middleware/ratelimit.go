package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds request rate per client IP.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
	// Idle limiters are forgotten after this long.
	TTL time.Duration
}

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

type limiterSet struct {
	mu  sync.Mutex
	m   map[string]*visitor
	cfg RateLimitConfig
	now func() time.Time
}

func (s *limiterSet) allow(key string) bool {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(s.cfg.PerSecond), s.cfg.Burst)}
		s.m[key] = v
	}
	v.seen = now
	for k, other := range s.m {
		if now.Sub(other.seen) > s.cfg.TTL {
			delete(s.m, k)
		}
	}
	return v.limiter.AllowN(now, 1)
}

// RateLimit rejects requests beyond the per-IP budget with 429.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	set := &limiterSet{m: make(map[string]*visitor), cfg: cfg, now: time.Now}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !set.allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": "rate limited",
				})
			}
			return next(c)
		}
	}
}
