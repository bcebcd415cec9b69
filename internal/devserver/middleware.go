package devserver

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"golang.org/x/time/rate"
)

const UserKey = "user"

func abortWith(c *drift.Context, e *Error) {
	_ = c.JSON(e.Status, e.Response())
	c.Abort()
}

// Auth resolves the bearer token to a user. The token's subject must still name a
// registered account.
func Auth(tokens *TokenService, store *Store) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, unauthorized("Not authenticated"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			abortWith(c, unauthorized("Not authenticated"))
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			abortWith(c, unauthorized("Could not validate credentials"))
			return
		}

		user, ok := store.UserByEmail(claims.Subject)
		if !ok {
			abortWith(c, unauthorized("Could not validate credentials"))
			return
		}

		c.Set(UserKey, *user)
		c.Next()
	}
}

func CurrentUser(c *drift.Context) (models.User, bool) {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(models.User); ok {
			return u, true
		}
	}
	return models.User{}, false
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*ipLimiter
}

func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		visitors: make(map[string]*ipLimiter),
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &ipLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Cleanup forgets clients that have been idle for longer than idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) Middleware(logger *slog.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		ip := clientIP(c.Request)
		if !rl.Allow(ip) {
			logger.Warn("login rate limit exceeded", "ip", ip)
			_ = c.JSON(http.StatusTooManyRequests, dto.NewErrorResponse("Too many login attempts, try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
