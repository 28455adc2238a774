package rpc

import (
	"net"
	"net/http"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"chainx/observability"
)

// maxTrackedClients bounds the limiter table; the least recently seen
// clients are evicted first.
const maxTrackedClients = 4096

// rateLimiter applies a token bucket per client.
type rateLimiter struct {
	perSecond  rate.Limit
	burst      int
	trustProxy bool
	metrics    *observability.QueryMetrics

	mu       sync.Mutex
	visitors *lru.Cache[string, *rate.Limiter]
}

func newRateLimiter(perSecond float64, burst int, trustProxy bool) *rateLimiter {
	if burst <= 0 {
		burst = 1
	}
	visitors, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		panic(err)
	}
	return &rateLimiter{
		perSecond:  rate.Limit(perSecond),
		burst:      burst,
		trustProxy: trustProxy,
		metrics:    observability.Query(),
		visitors:   visitors,
	}
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientSource(r, l.trustProxy)) {
			l.metrics.RecordThrottle("rate_limit")
			w.Header().Set("Content-Type", "application/json")
			writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *rateLimiter) allow(source string) bool {
	if source == "" {
		source = "unknown"
	}
	l.mu.Lock()
	limiter, ok := l.visitors.Get(source)
	if !ok {
		limiter = rate.NewLimiter(l.perSecond, l.burst)
		l.visitors.Add(source, limiter)
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// clientSource identifies the caller. Forwarded headers are only honoured
// behind a trusted proxy.
func clientSource(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			parts := strings.Split(forwarded, ",")
			candidate := strings.TrimSpace(parts[0])
			if candidate != "" {
				return candidate
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
