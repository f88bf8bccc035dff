// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session keeps the admin credential and pending notices on the server.

The browser only ever holds an opaque, random session id in an HttpOnly cookie.
The bearer token issued by the content API, its expiry and any flash notices
live in a [Store]: in process memory, in Redis, or in PostgreSQL.

Lifecycle:

  - Anonymous: created lazily to carry a flash notice to the next page.
  - Authenticated: created by a successful login, with a fresh id.
  - Destroyed: by logout, by expiry, or by any 401 from the content API.
*/
package session

import (
	"context"
	"errors"
	"time"

	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/ctxkey"
	"github.com/taibuivan/scholar/internal/platform/render"
	"github.com/taibuivan/scholar/internal/platform/sec"
)

// ErrNotFound is returned by stores for unknown or purged ids.
var ErrNotFound = errors.New("session: not found")

// sessionIDBytes is the entropy of a session id (43 url-safe characters).
const sessionIDBytes = 32

// Session is the server-side state behind one cookie.
type Session struct {
	ID        string          `json:"id"`
	Token     string          `json:"token,omitempty"`
	ExpiresAt time.Time       `json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
	Flashes   []render.Notice `json:"flashes,omitempty"`
}

// New creates an anonymous session with a random id.
func New() (*Session, error) {
	id, err := sec.GenerateSecureToken(sessionIDBytes)
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, CreatedAt: time.Now()}, nil
}

// IsAuthenticated reports whether a token is present and not yet expired.
func (session *Session) IsAuthenticated() bool {
	return session != nil && session.Token != "" && time.Now().Before(session.ExpiresAt)
}

// Expired reports whether the session held a credential that has run out.
func (session *Session) Expired() bool {
	return session != nil && session.Token != "" && !time.Now().Before(session.ExpiresAt)
}

// ExpiresIn is the remaining credential lifetime, or zero when anonymous.
func (session *Session) ExpiresIn() time.Duration {
	if !session.IsAuthenticated() {
		return 0
	}
	return time.Until(session.ExpiresAt)
}

// TTL is how long a store keeps the record. Authenticated records outlive
// their credential by [constants.AnonymousSessionTTL] so that the next request
// still finds them and ends them through the expiry path.
func (session *Session) TTL() time.Duration {
	if session.IsAuthenticated() {
		return session.ExpiresIn() + constants.AnonymousSessionTTL
	}
	return constants.AnonymousSessionTTL
}

// AddFlash queues a notice for the next render.
func (session *Session) AddFlash(notice render.Notice) {
	session.Flashes = append(session.Flashes, notice)
}

// PopFlashes returns and clears the queued notices.
func (session *Session) PopFlashes() []render.Notice {
	flashes := session.Flashes
	session.Flashes = nil
	return flashes
}

// # Storage

// Store persists sessions by id.
type Store interface {

	// Get returns the session, or [ErrNotFound] when missing or past its TTL.
	Get(context context.Context, id string) (*Session, error)

	// Save upserts the session so that it disappears after ttl.
	Save(context context.Context, session *Session, ttl time.Duration) error

	// Delete removes the session. Deleting a missing id is not an error.
	Delete(context context.Context, id string) error

	// Purge removes every record past its TTL and returns how many were removed.
	Purge(context context.Context) (int, error)
}

// # Context

// WithSession attaches session to ctx.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, ctxkey.KeySession, session)
}

// FromContext returns the request's session, or nil.
func FromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(ctxkey.KeySession).(*Session)
	return session
}

// Token is a crud.TokenSource: the bearer token of the authenticated session
// in ctx, read at call time.
func Token(ctx context.Context) (string, error) {
	session := FromContext(ctx)
	if !session.IsAuthenticated() {
		return "", backend.ErrUnauthorized
	}
	return session.Token, nil
}
