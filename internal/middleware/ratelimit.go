package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter manages rate limiters for each IP
type IPRateLimiter struct {
	ips   map[string]*rateLimiterEntry
	mu    sync.RWMutex
	r     rate.Limit
	burst int
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter creates a new IP-based rate limiter
// r = requests per second, burst = max burst size
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	rl := &IPRateLimiter{
		ips:   make(map[string]*rateLimiterEntry),
		r:     r,
		burst: burst,
	}

	// Cleanup old entries every minute
	go rl.cleanup()

	return rl
}

func (rl *IPRateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, entry := range rl.ips {
			if time.Since(entry.lastSeen) > 3*time.Minute {
				delete(rl.ips, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// GetLimiter returns the rate limiter for the given IP
func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.ips[ip]
	if !exists {
		entry = &rateLimiterEntry{
			limiter:  rate.NewLimiter(rl.r, rl.burst),
			lastSeen: time.Now(),
		}
		rl.ips[ip] = entry
		return entry.limiter
	}

	entry.lastSeen = time.Now()
	return entry.limiter
}

var generalLimiter = NewIPRateLimiter(10, 30)

// GeneralRateLimit applies a per-IP limit to the whole API surface.
func GeneralRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := generalLimiter.GetLimiter(c.ClientIP())
		if !limiter.Allow() {
			logger.Warn().Str("ip", c.ClientIP()).Str("path", c.Request.URL.Path).Msg("rate limit exceeded")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SendRateLimit caps message sends per user via Redis. Fails open when
// Redis is down so messaging keeps working without it.
func SendRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, exists := c.Get("userId")
		if !exists || database.Redis == nil {
			c.Next()
			return
		}

		ok, err := database.CheckRateLimit(userId.(string), "chat_send", limit, window)
		if err != nil {
			logger.Warn().Err(err).Msg("send rate limit check failed, allowing request")
			c.Next()
			return
		}
		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Sending too fast, slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}
