// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, session settings and the UI timing
values shared between the public site and the admin console.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Session: Cookie names, lifetimes and storage prefixes.
  - Presentation: Carousel interval and toast duration.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the handlers.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "scholar-web"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Admin forms may carry an image upload, hence the generous value.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// LoginRateLimitRPS throttles credential submissions per IP (one every 6s).
	LoginRateLimitRPS = 1.0 / 6.0

	// LoginRateLimitBurst allows a handful of typos before throttling kicks in.
	LoginRateLimitBurst = 5

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Session

const (
	// SessionCookieName carries the opaque session id. The backend credential never
	// leaves the server.
	SessionCookieName = "scholar_session"

	// DefaultCredentialTTL is used when the backend credential carries no expiry claim.
	DefaultCredentialTTL = 20 * time.Minute

	// AnonymousSessionTTL bounds sessions that only carry flash notices.
	AnonymousSessionTTL = 1 * time.Hour

	// SessionPurgeSchedule is the cron spec for deleting expired session records.
	SessionPurgeSchedule = "@every 10m"

	// PanelPruneSchedule is the cron spec for dropping idle admin panels.
	PanelPruneSchedule = "@every 5m"

	// PanelIdleTTL is how long an admin panel cache survives without use.
	PanelIdleTTL = 30 * time.Minute

	// PanelCacheTTL is how long a panel list is reused before the next page view refetches it.
	PanelCacheTTL = 30 * time.Second
)

// # Presentation

const (
	// CarouselInterval is the auto-advance period of the banner carousel.
	CarouselInterval = 5 * time.Second

	// ToastDuration is how long a notice stays on screen.
	ToastDuration = 4 * time.Second

	// BlogsPerPage is the page size of the public blog list.
	BlogsPerPage = 9

	// MaxUploadBytes bounds multipart admin forms.
	MaxUploadBytes = 16 << 20
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # Probe Field Identifiers

const (
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession = "scholar:session:"
)
