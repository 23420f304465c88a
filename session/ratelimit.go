package session

import (
	"sync"
	"tenantry/bizerror"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// LoginRateLimit throttles requests per client IP; idle limiters expire after ttl.
func LoginRateLimit(perSecond float64, burst int, ttl time.Duration) gin.HandlerFunc {
	limiters := cache.New(ttl, ttl)
	var mu sync.Mutex

	limiterOf := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if v, found := limiters.Get(key); found {
			limiters.SetDefault(key, v)
			return v.(*rate.Limiter)
		}
		l := rate.NewLimiter(rate.Limit(perSecond), burst)
		limiters.SetDefault(key, l)
		return l
	}

	return func(ctx *gin.Context) {
		if !limiterOf(ctx.ClientIP()).Allow() {
			panic(bizerror.ErrTooManyRequests)
		}
		ctx.Next()
	}
}
