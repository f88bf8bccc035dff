// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and internal/cli are allowed to import net/http server primitives.

Route Groups:

  - Infrastructure: /health, /ready, /metrics, /static/*. No session, no CSRF.
  - Pages: the public site, /login and /feedback. Session loaded, CSRF checked.
  - Admin: /admin*. Same as pages, behind the session gate.
*/
package api

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/taibuivan/scholar/internal/admin"
	"github.com/taibuivan/scholar/internal/auth"
	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/config"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/metrics"
	"github.com/taibuivan/scholar/internal/platform/middleware"
	"github.com/taibuivan/scholar/internal/platform/render"
	"github.com/taibuivan/scholar/internal/session"
	"github.com/taibuivan/scholar/internal/site"
)

// CSRF form and cookie names.
const (
	csrfFieldName  = "csrf_token"
	csrfCookieName = "scholar_csrf"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once by the serve command with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Site serves the public pages and the sitemap.
	Site *site.Handler

	// Auth handles login, logout and the feedback form.
	Auth *auth.Handler

	// Admin serves the content console.
	Admin *admin.Handler
}

// Dependencies are the shared components the router needs besides the handlers.
type Dependencies struct {
	Sessions *session.Manager
	Renderer *render.Renderer
	Metrics  *metrics.Collector
	Static   fs.FS
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. ctx bounds the background sweeps of the rate limiters.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, deps Dependencies, h Handlers) *Server {
	r := chi.NewRouter()

	// # Page Envelope
	// Every rendered page carries the CSRF field, the site profile and the session state.
	deps.Renderer.Use(func(_ http.ResponseWriter, request *http.Request, view *render.View) {
		view.CSRFField = csrf.TemplateField(request)
	})
	deps.Renderer.Use(h.Site.Decorate)
	deps.Renderer.Use(deps.Sessions.Decorate)

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx, middleware.NewIPLimiter(constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)))
	r.Use(middleware.PanicRecovery())
	r.Use(chimw.CleanPath)
	r.Use(chimw.StripSlashes)

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		deps.Renderer.Error(writer, request, apperr.NotFound("Page"))
	})

	// # Infrastructure Endpoints
	// Unauthenticated probes and assets.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}
	if deps.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", staticFiles(deps.Static)))
	}

	// # Pages
	r.Group(func(pages chi.Router) {
		pages.Use(plaintextCSRF(cfg))
		pages.Use(csrf.Protect(cfg.CSRFKey(),
			csrf.Secure(cfg.IsProduction()),
			csrf.Path("/"),
			csrf.HttpOnly(true),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.CookieName(csrfCookieName),
			csrf.FieldName(csrfFieldName),
			csrf.ErrorHandler(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				deps.Renderer.Error(writer, request, apperr.Forbidden("Your form expired. Please go back, reload the page and try again."))
			})),
		))
		pages.Use(deps.Sessions.Load)

		h.Site.RegisterRoutes(pages)
		h.Auth.RegisterRoutes(pages)

		// # Admin
		pages.Group(func(gated chi.Router) {
			gated.Use(deps.Sessions.Gate)
			gated.Post("/admin/logout", h.Auth.Logout)
			h.Admin.RegisterRoutes(gated)
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// plaintextCSRF marks requests as plain HTTP outside production so that the
// CSRF origin check does not demand an HTTPS referer.
func plaintextCSRF(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.IsProduction() {
			return next
		}
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			next.ServeHTTP(writer, csrf.PlaintextHTTPRequest(request))
		})
	}
}

// staticFiles serves assets with a day of browser caching.
func staticFiles(files fs.FS) http.Handler {
	server := http.FileServer(http.FS(files))
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Cache-Control", "public, max-age=86400")
		server.ServeHTTP(writer, request)
	})
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
