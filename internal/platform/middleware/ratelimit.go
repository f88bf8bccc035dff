// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/respond"
)

// # Rate Limiting

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter keeps one token bucket per client IP.
//
// Two instances run in the server: a generous one in front of every route and
// a strict one in front of the login form.
type IPLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient
	rps     rate.Limit
	burst   int
}

// NewIPLimiter creates a limiter allowing rps requests per second with the given burst.
func NewIPLimiter(rps float64, burst int) *IPLimiter {
	return &IPLimiter{
		clients: make(map[string]*rateLimitClient),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

// Allow reports whether a request from ip may proceed, consuming one token.
func (limiter *IPLimiter) Allow(ip string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	clientInfo, found := limiter.clients[ip]

	// Initialize a new limiter if this is a fresh IP
	if !found {
		clientInfo = &rateLimitClient{limiter: rate.NewLimiter(limiter.rps, limiter.burst)}
		limiter.clients[ip] = clientInfo
	}

	// Update the activity timestamp
	clientInfo.lastSeen = time.Now()

	return clientInfo.limiter.Allow()
}

// Sweep removes clients idle for longer than ttl and returns how many were removed.
func (limiter *IPLimiter) Sweep(ttl time.Duration) int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	removed := 0
	for ip, clientInfo := range limiter.clients {
		if time.Since(clientInfo.lastSeen) > ttl {
			delete(limiter.clients, ip)
			removed++
		}
	}
	return removed
}

// Run sweeps idle clients until ctx is cancelled.
func (limiter *IPLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.Sweep(constants.RateLimitClientTTL)
		case <-ctx.Done():
			// Stop the goroutine when the application shuts down
			return
		}
	}
}

// RetryAfter is the whole number of seconds until one token is available.
func (limiter *IPLimiter) RetryAfter() int {
	if limiter.rps <= 0 {
		return 60
	}
	return int(math.Ceil(1 / float64(limiter.rps)))
}

// RateLimit limits requests per IP using the token bucket algorithm.
// The background sweep stops when ctx is cancelled.
func RateLimit(ctx context.Context, limiter *IPLimiter) func(http.Handler) http.Handler {

	go limiter.Run(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Identify the client by their IP address
			if !limiter.Allow(RealIP(request)) {
				writer.Header().Set("Retry-After", strconv.Itoa(limiter.RetryAfter()))
				respond.Error(writer, request, apperr.RateLimited(limiter.RetryAfter()))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
