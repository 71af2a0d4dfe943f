package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iapss/iapss-backend/internal/http/response"
	"github.com/iapss/iapss-backend/internal/observability"
	"github.com/iapss/iapss-backend/internal/platform/ctxutil"
	"github.com/iapss/iapss-backend/internal/platform/logger"
	"github.com/iapss/iapss-backend/internal/platform/redisx"
)

// RateLimitPolicy is one fixed-window budget. Limit <= 0 disables it.
type RateLimitPolicy struct {
	Scope  string
	Limit  int
	Window time.Duration
	// Key identifies the caller; defaults to ClientKey.
	Key func(c *gin.Context) string
}

// ClientKey is the caller's user id when authenticated, else the client IP.
func ClientKey(c *gin.Context) string {
	if id := ctxutil.UserID(c.Request.Context()); id != uuid.Nil {
		return "user:" + id.String()
	}
	return "ip:" + c.ClientIP()
}

// IPKey ignores authentication.
func IPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// RateLimit enforces policy through limiter. Limiter errors let the request through.
func RateLimit(limiter redisx.Limiter, policy RateLimitPolicy, log *logger.Logger) gin.HandlerFunc {
	if limiter == nil || policy.Limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if policy.Window <= 0 {
		policy.Window = time.Minute
	}
	if policy.Key == nil {
		policy.Key = ClientKey
	}
	log = log.With("Middleware", "RateLimit", "scope", policy.Scope)

	return func(c *gin.Context) {
		key := policy.Scope + ":" + policy.Key(c)
		decision, err := limiter.Allow(c.Request.Context(), key, policy.Limit, policy.Window)
		if err != nil {
			log.Warn("Rate limiter unavailable, allowing request", "reason", "limiter_error", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(policy.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			if metrics := observability.Current(); metrics != nil {
				metrics.ObserveRateLimited(policy.Scope)
			}
			retry := int(decision.ResetIn.Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			response.AbortError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please slow down.")
			return
		}
		c.Next()
	}
}
