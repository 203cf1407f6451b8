package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/kinfolkhq/kinfolk-server/internal/logger"
)

// RateLimit throttles requests per client IP. Applied to the credential
// endpoints to slow down guessing.
type RateLimit struct {
	limiter *limiter.Limiter
	logger  *logger.Logger
}

// NewRateLimit creates an in-memory rate limiter allowing limit requests
// per period per client IP.
func NewRateLimit(limit int64, period time.Duration, logger *logger.Logger) *RateLimit {
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}
	return &RateLimit{
		limiter: limiter.New(memory.NewStore(), rate),
		logger:  logger,
	}
}

// Handle rejects requests over the limit with RATE_LIMITED.
func (r *RateLimit) Handle(c *gin.Context) {
	limiterCtx, err := r.limiter.Get(c.Request.Context(), c.ClientIP())
	if err != nil {
		r.logger.Error("rate limiter failed", "error", err.Error())
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.FormatInt(limiterCtx.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(limiterCtx.Remaining, 10))

	if limiterCtx.Reached {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "Too many attempts. Please try again later",
			"code":  "RATE_LIMITED",
		})
		return
	}

	c.Next()
}
