// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/ctxutil"
	"github.com/taibuivan/scholar/internal/platform/render"
)

// MessageExpired is the notice shown after logout by expiry or a 401.
const MessageExpired = "Session expired. Please log in."

// Manager binds sessions to requests through the session cookie.
type Manager struct {
	store  Store
	secure bool
	hooks  []func(id string)
}

// NewManager creates a manager over store. secure marks the cookie Secure.
func NewManager(store Store, secure bool) *Manager {
	return &Manager{store: store, secure: secure}
}

// Store returns the underlying store.
func (manager *Manager) Store() Store {
	return manager.store
}

// OnDestroy registers a hook run with the id of every destroyed session.
func (manager *Manager) OnDestroy(hook func(id string)) {
	manager.hooks = append(manager.hooks, hook)
}

// # Middleware

// Load resolves the session cookie into the request context. An expired
// credential is destroyed here and replaced by an anonymous session carrying
// the expiry notice.
func (manager *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		logger := ctxutil.GetLogger(ctx)

		// 1. No cookie, no session
		cookie, err := request.Cookie(constants.SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(writer, request)
			return
		}

		// 2. Resolve the id
		current, err := manager.store.Get(ctx, cookie.Value)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				logger.WarnContext(ctx, "session_load_failed", slog.Any("error", err))
			}
			next.ServeHTTP(writer, request)
			return
		}

		// 3. Expired credentials end here
		if current.Expired() {
			logger.InfoContext(ctx, "session_expired", slog.Time("expired_at", current.ExpiresAt))
			manager.destroy(ctx, current.ID)

			replacement, err := manager.anonymous(writer, request, render.Info(MessageExpired))
			if err != nil {
				logger.WarnContext(ctx, "session_save_failed", slog.Any("error", err))
			}
			current = replacement
		}

		next.ServeHTTP(writer, request.WithContext(WithSession(ctx, current)))
	})
}

// Gate redirects every request without an authenticated session to "/".
// Protected handlers never run for anonymous visitors.
func (manager *Manager) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !FromContext(request.Context()).IsAuthenticated() {
			render.Redirect(writer, request, "/")
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// # Transitions

// Begin starts an authenticated session with a fresh id, carrying over any
// pending notices of the previous one followed by notices.
func (manager *Manager) Begin(writer http.ResponseWriter, request *http.Request, token string, expiresAt time.Time, notices ...render.Notice) (*Session, error) {
	ctx := request.Context()

	started, err := New()
	if err != nil {
		return nil, err
	}
	started.Token = token
	started.ExpiresAt = expiresAt

	// Rotate the id so a pre-login cookie never becomes privileged
	if previous := FromContext(ctx); previous != nil {
		started.Flashes = previous.PopFlashes()
		manager.destroy(ctx, previous.ID)
	}
	for _, notice := range notices {
		started.AddFlash(notice)
	}

	if err := manager.store.Save(ctx, started, started.TTL()); err != nil {
		return nil, err
	}
	manager.setCookie(writer, started.ID)
	return started, nil
}

// Destroy deletes the request's session. When notices are given, a fresh
// anonymous session carries them to the next page; otherwise the cookie is cleared.
func (manager *Manager) Destroy(writer http.ResponseWriter, request *http.Request, notices ...render.Notice) error {
	ctx := request.Context()

	if current := FromContext(ctx); current != nil {
		manager.destroy(ctx, current.ID)
	}

	if len(notices) == 0 {
		manager.clearCookie(writer)
		return nil
	}
	_, err := manager.anonymous(writer, request, notices...)
	return err
}

// Flash queues a notice on the request's session, creating an anonymous one
// if needed. It is meant to be followed by a redirect.
func (manager *Manager) Flash(writer http.ResponseWriter, request *http.Request, notice render.Notice) error {
	current := FromContext(request.Context())
	if current == nil {
		_, err := manager.anonymous(writer, request, notice)
		return err
	}

	current.AddFlash(notice)
	return manager.store.Save(request.Context(), current, current.TTL())
}

// Decorate is a [render.Decorator]: it moves queued notices into the view and
// exposes the authentication state to the layout.
func (manager *Manager) Decorate(_ http.ResponseWriter, request *http.Request, view *render.View) {
	current := FromContext(request.Context())
	if current == nil {
		return
	}

	if flashes := current.PopFlashes(); len(flashes) > 0 {
		view.Notices = append(flashes, view.Notices...)
		if err := manager.store.Save(request.Context(), current, current.TTL()); err != nil {
			ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "session_save_failed", slog.Any("error", err))
		}
	}

	view.Authenticated = current.IsAuthenticated()
	view.ExpiresIn = int(math.Ceil(current.ExpiresIn().Seconds()))
}

// # Internals

func (manager *Manager) anonymous(writer http.ResponseWriter, request *http.Request, notices ...render.Notice) (*Session, error) {
	created, err := New()
	if err != nil {
		return nil, err
	}
	for _, notice := range notices {
		created.AddFlash(notice)
	}

	if err := manager.store.Save(request.Context(), created, created.TTL()); err != nil {
		return nil, err
	}
	manager.setCookie(writer, created.ID)
	return created, nil
}

func (manager *Manager) destroy(ctx context.Context, id string) {
	if err := manager.store.Delete(ctx, id); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_delete_failed", slog.Any("error", err))
	}
	for _, hook := range manager.hooks {
		hook(id)
	}
}

func (manager *Manager) setCookie(writer http.ResponseWriter, id string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   manager.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (manager *Manager) clearCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   manager.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Purge removes expired records from the store.
func (manager *Manager) Purge(ctx context.Context) (int, error) {
	return manager.store.Purge(ctx)
}
