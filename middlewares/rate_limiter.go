package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-admin/utils"
	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a client bucket survives without requests.
const DefaultIdleTTL = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than IdleTTL are dropped.
type RateLimiter struct {
	IdleTTL time.Duration

	limit  rate.Limit
	burst  int
	exempt map[string]bool
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

// NewRateLimiter allows burst requests and then one every interval per IP.
func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		IdleTTL: DefaultIdleTTL,
		limit:   rate.Every(interval),
		burst:   burst,
		exempt:  make(map[string]bool),
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// NewStrictRateLimiter is used on login/register: 5 attempts, then one per 12s.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 12*time.Second)
}

// Exempt skips limiting for the given route patterns (gin full paths such as
// "/admin/floorplan/pointer").
func (rl *RateLimiter) Exempt(paths ...string) *RateLimiter {
	for _, p := range paths {
		rl.exempt[p] = true
	}
	return rl
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.IdleTTL {
		rl.sweep(now)
	}

	cl, ok := rl.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweep runs with rl.mu held.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > rl.IdleTTL {
			delete(rl.clients, ip)
		}
	}
	rl.lastSweep = now
}

// Clients returns the number of tracked client buckets.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.exempt[c.FullPath()] {
			c.Next()
			return
		}
		if !rl.limiter(c.ClientIP()).Allow() {
			utils.RespondJSON(c, http.StatusTooManyRequests, "Too many requests, please wait a moment", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
