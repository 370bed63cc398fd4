package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

// ipLimiter stores per-IP rate limiters and forgets idle ones.
type ipLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(r rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
		now:      time.Now,
	}
}

func (ipl *ipLimiter) getLimiter(ip string) *rate.Limiter {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()

	entry, exists := ipl.limiters[ip]
	if !exists {
		limiter := rate.NewLimiter(ipl.rate, ipl.burst)
		ipl.limiters[ip] = &limiterEntry{limiter: limiter, lastSeen: ipl.now()}
		return limiter
	}

	entry.lastSeen = ipl.now()
	return entry.limiter
}

// sweep drops limiters not seen within limiterIdleTTL.
func (ipl *ipLimiter) sweep() {
	ipl.mu.Lock()
	defer ipl.mu.Unlock()
	for ip, entry := range ipl.limiters {
		if ipl.now().Sub(entry.lastSeen) > limiterIdleTTL {
			delete(ipl.limiters, ip)
		}
	}
}

// run sweeps periodically until ctx is done.
func (ipl *ipLimiter) run(ctx context.Context) {
	t := time.NewTicker(limiterSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			ipl.sweep()
		}
	}
}

// RateLimit returns middleware that limits requests per client IP. perMinute <= 0
// disables limiting. The sweeper goroutine stops when ctx is done.
func RateLimit(ctx context.Context, perMinute float64, burst int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	ipl := newIPLimiter(rate.Limit(perMinute/60), burst)
	go ipl.run(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ipl.getLimiter(clientIP(r)).Allow() {
				w.Header().Set("Retry-After", "60")
				JSONError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. Proxy headers are resolved
// upstream by chi's RealIP middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
