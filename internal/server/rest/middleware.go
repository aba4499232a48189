package rest

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shepherdhq/memberd/internal/server/auth"
	"github.com/shepherdhq/memberd/internal/server/models"
)

// Context keys populated by BearerAuth.
const (
	ctxUserID             = "user_id"
	ctxEmail              = "email"
	ctxRole               = "role"
	ctxMustChangePassword = "must_change_password"
)

// BearerAuth verifies the Authorization header and loads the access-token
// claims into the request context.
func BearerAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxMustChangePassword, claims.MustChangePassword)
		c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated role
// is in the list. Must run after BearerAuth.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ctxRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		role, ok := value.(models.Role)
		if !ok || !role.AnyOf(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// rateLimiter is a fixed-window per-key counter. Windows are pruned lazily
// on access, so an idle server holds no state.
type rateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	hits   map[string]*rateWindow
	now    func() time.Time
}

type rateWindow struct {
	start time.Time
	count int
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		max:    max,
		window: window,
		hits:   map[string]*rateWindow{},
		now:    time.Now,
	}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.hits[key]
	if !ok || now.Sub(w.start) >= l.window {
		for k, old := range l.hits {
			if now.Sub(old.start) >= l.window {
				delete(l.hits, k)
			}
		}
		l.hits[key] = &rateWindow{start: now, count: 1}
		return true
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	return true
}

// LoginRateLimit throttles credential endpoints per client IP.
func LoginRateLimit(max int, window time.Duration) gin.HandlerFunc {
	limiter := newRateLimiter(max, window)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
