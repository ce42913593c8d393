package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/NightSight1044/legalCRM1/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// KeyFunc picks the bucket a request is counted in
type KeyFunc func(c echo.Context) string

// ByIP counts requests per client address
func ByIP(c echo.Context) string {
	return "ip:" + c.RealIP()
}

// ByProfile counts requests per signed-in profile. Requests without a
// session fall back to the client address.
func ByProfile(c echo.Context) string {
	if session := GetSession(c); session != nil {
		return "profile:" + session.ProfileID
	}
	return ByIP(c)
}

// ByFirm counts requests per firm, so every member shares one budget
func ByFirm(c echo.Context) string {
	if tenant := GetTenant(c); tenant != nil {
		return "firm:" + tenant.FirmID
	}
	return ByIP(c)
}

// Policy allows Limit requests per key in each fixed Window
type Policy struct {
	Name    string
	Limit   int
	Window  time.Duration
	Key     KeyFunc
	Message string
}

// RateLimitResponse is the body of a 429
type RateLimitResponse struct {
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter enforces one Policy in memory. Counters are per process.
type Limiter struct {
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

// NewLimiter builds a limiter for p, counting by IP when p has no key
func NewLimiter(p Policy) *Limiter {
	if p.Key == nil {
		p.Key = ByIP
	}
	if p.Message == "" {
		p.Message = "Too many requests. Please try again later."
	}
	return &Limiter{
		policy:  p,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// take counts one request against key
func (l *Limiter) take(key string) (allowed bool, remaining int, resetAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.policy.Window)}
		l.windows[key] = w
	}
	if w.count >= l.policy.Limit {
		return false, 0, w.resetAt
	}
	w.count++
	return true, l.policy.Limit - w.count, w.resetAt
}

// sweep drops expired windows at most once per window length. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(l.policy.Window)
}

// Reset forgets every counter
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*window)
}

// Middleware rejects requests over the limit with a JSON 429
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := l.policy.Key(c)
			allowed, remaining, resetAt := l.take(key)

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.policy.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if allowed {
				return next(c)
			}

			retry := int(math.Ceil(resetAt.Sub(l.now()).Seconds()))
			if retry < 1 {
				retry = 1
			}
			h.Set("Retry-After", strconv.Itoa(retry))

			metrics.RecordRateLimited(l.policy.Name)
			zap.L().Warn("rate limit exceeded",
				zap.String("policy", l.policy.Name),
				zap.String("key", key),
				zap.String("path", c.Path()),
			)
			return c.JSON(http.StatusTooManyRequests, RateLimitResponse{
				Message:    l.policy.Message,
				RetryAfter: retry,
			})
		}
	}
}

var (
	// LoginLimiter allows 5 sign-in attempts per minute per address
	LoginLimiter = NewLimiter(Policy{
		Name:    "login",
		Limit:   5,
		Window:  time.Minute,
		Key:     ByIP,
		Message: "Too many login attempts. Please wait a minute before trying again.",
	})

	// APILimiter caps anonymous and authenticated traffic per address
	APILimiter = NewLimiter(Policy{
		Name:    "api",
		Limit:   120,
		Window:  time.Minute,
		Key:     ByIP,
		Message: "Rate limit exceeded. Please slow down your requests.",
	})

	// ProfileLimiter caps each signed-in profile regardless of address
	ProfileLimiter = NewLimiter(Policy{
		Name:    "profile",
		Limit:   300,
		Window:  time.Minute,
		Key:     ByProfile,
		Message: "Rate limit exceeded. Please slow down your requests.",
	})

	// ImportLimiter allows 10 spreadsheet imports per hour per firm
	ImportLimiter = NewLimiter(Policy{
		Name:    "import",
		Limit:   10,
		Window:  time.Hour,
		Key:     ByFirm,
		Message: "Too many imports. Please try again later.",
	})
)
