package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/utils"
)

// RateLimitConfig sizes a per-client token bucket.
type RateLimitConfig struct {
	Scope             string // names the limiter in logs, ex: "login"
	Burst             int    // attempts allowed back to back
	RefillPerIPPerMin int    // attempts regained per minute
	MaxEntries        int    // sweep early once this many clients are tracked (0 = no cap)
	SweepInterval     time.Duration
	IdleTTL           time.Duration // forget clients idle this long
	TrustProxy        bool          // resolve IP from proxy headers when true
	Logger            logger.Logger
	Now               func() time.Time // defaults to time.Now
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.Scope == "" {
		c.Scope = "default"
	}
	c.Burst = max(c.Burst, 1)
	c.RefillPerIPPerMin = max(c.RefillPerIPPerMin, 1)
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	refilled time.Time
	seen     time.Time
}

// take refills the bucket up to capacity and spends one token if it can.
// When it cannot, wait is how long until the next token.
func (b *bucket) take(now time.Time, capacity, perSec float64) (ok bool, left int, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if dt := now.Sub(b.refilled).Seconds(); dt > 0 {
		b.tokens = math.Min(capacity, b.tokens+dt*perSec)
		b.refilled = now
	}
	if b.tokens < 1 {
		return false, 0, time.Duration((1 - b.tokens) / perSec * float64(time.Second))
	}
	b.tokens--
	b.seen = now
	return true, int(b.tokens), 0
}

type limiter struct {
	cfg      RateLimitConfig
	capacity float64
	perSec   float64

	mu        sync.Mutex
	clients   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	cfg = cfg.withDefaults()
	return &limiter{
		cfg:       cfg,
		capacity:  float64(cfg.Burst),
		perSec:    float64(cfg.RefillPerIPPerMin) / 60,
		clients:   make(map[string]*bucket),
		lastSweep: cfg.Now(),
	}
}

// bucketFor returns the client's bucket, sweeping idle clients when due.
func (l *limiter) bucketFor(ip string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries
	if full || now.Sub(l.lastSweep) >= l.cfg.SweepInterval {
		for key, b := range l.clients {
			b.mu.Lock()
			idle := now.Sub(b.seen) > l.cfg.IdleTTL
			b.mu.Unlock()
			if idle {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.clients[ip]
	if !ok {
		b = &bucket{tokens: l.capacity, refilled: now, seen: now}
		l.clients[ip] = b
	}
	return b
}

// RateLimit is a per-client-IP token bucket. Rejections answer 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := l.cfg.Now()
			ip := utils.ClientIP(r, l.cfg.TrustProxy)
			ok, left, wait := l.bucketFor(ip, now).take(now, l.capacity, l.perSec)

			// Set before next writes its status line.
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(left))

			if !ok {
				retry := max(int(math.Ceil(wait.Seconds())), 1)
				l.cfg.Logger.Warn("rate limit exceeded",
					logger.String("scope", l.cfg.Scope),
					logger.String("ip", ip),
					logger.Int("retry_after", retry))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
