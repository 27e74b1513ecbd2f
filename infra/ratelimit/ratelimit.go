// Package ratelimit provides per-client token-bucket limiting for the
// session creation endpoint.
package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Limiter tracks one token bucket per client IP. Buckets live in a bounded
// LRU so an address scan cannot grow the table without limit; evicting a
// cold bucket merely refills that client on its next visit.
type Limiter struct {
	clients   *lru.Cache[string, *rate.Limiter]
	perMinute int
	logger    *slog.Logger
}

// New builds a limiter allowing perMinute session creations per client IP,
// refilled continuously over the minute. A non-positive perMinute disables
// limiting.
func New(perMinute, cacheSize int, logger *slog.Logger) (*Limiter, error) {
	clients, err := lru.New[string, *rate.Limiter](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Limiter{
		clients:   clients,
		perMinute: perMinute,
		logger:    logger,
	}, nil
}

// Allow consumes one token for ip, reporting whether the request may
// proceed.
func (l *Limiter) Allow(ip string) bool {
	if l.perMinute <= 0 {
		return true
	}

	bucket, ok := l.clients.Get(ip)
	if !ok {
		fresh := rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
		if previous, existed, _ := l.clients.PeekOrAdd(ip, fresh); existed {
			// Another request won the insert race; use its bucket.
			bucket = previous
		} else {
			bucket = fresh
		}
	}
	return bucket.Allow()
}

// Middleware rejects over-limit requests with 429 before they reach the
// wrapped handler.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !l.Allow(ip) {
			l.logger.Warn("rate limit exceeded", "client_ip", ip)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP resolves the caller's address, preferring the first entry of
// X-Forwarded-For when a proxy sits in front.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
