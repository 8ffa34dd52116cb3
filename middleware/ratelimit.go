package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"go-plantcare/utils"
)

// limiterIdleTTL is how long an IP may stay quiet before its bucket is
// dropped on the next sweep.
const limiterIdleTTL = 10 * time.Minute

type ipClient struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ipLimiters keeps one token bucket per client IP. Idle entries are swept so
// the map cannot grow without bound.
type ipLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	clients   map[string]*ipClient
}

func newIPLimiters(perMinute, burst int, idleTTL time.Duration) *ipLimiters {
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiters{
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idleTTL: idleTTL,
		clients: make(map[string]*ipClient),
	}
}

func (l *ipLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweepLocked(now)
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &ipClient{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.lim
}

// sweepLocked drops entries idle past the TTL. Callers must hold mu.
func (l *ipLimiters) sweepLocked(now time.Time) {
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idleTTL {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit returns a per-client-IP token bucket middleware. Intended for the
// auth endpoints so password guessing cannot run at line speed.
func RateLimit(perMinute, burst int) gin.HandlerFunc {
	limiters := newIPLimiters(perMinute, burst, limiterIdleTTL)
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			utils.TooManyRequests(c, "Too many requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
