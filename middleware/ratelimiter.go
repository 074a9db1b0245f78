package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/amaturano/event-management/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits requests per client IP. Counters live in Redis when a client is
// given, so every instance shares them; otherwise they are per process.
func RateLimiter(client *redis.Client, perMinute int64) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  perMinute,
	}

	var store limiter.Store = memory.NewStore()
	if client != nil {
		s, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "ratelimit"})
		if err != nil {
			log.Printf("⚠️ Redis rate limit store unavailable, using memory: %v", err)
		} else {
			store = s
		}
	}

	// 📊 Limiter instance
	instance := limiter.New(store, rate)

	// 🚦 Gin-compatible middleware
	return ginlimiter.NewMiddleware(instance, ginlimiter.WithLimitReachedHandler(func(c *gin.Context) {
		web.RenderError(c, http.StatusTooManyRequests, "Too many attempts, please wait a minute and try again.")
		c.Abort()
	}))
}
