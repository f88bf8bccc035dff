// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/render"
	"github.com/taibuivan/scholar/internal/session"
)

// protected records whether the wrapped handler ran.
func protected(ran *bool) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		*ran = true
		writer.WriteHeader(http.StatusOK)
	})
}

func withCookie(request *http.Request, id string) *http.Request {
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: id})
	return request
}

func cookieFrom(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie set", constants.SessionCookieName)
	return nil
}

/*
TestGate_RedirectsWithoutSession covers absent, unknown, anonymous and expired sessions.
*/
func TestGate_RedirectsWithoutSession(t *testing.T) {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, false)
	ctx := context.Background()

	anonymous, _ := session.New()
	require.NoError(t, store.Save(ctx, anonymous, time.Hour))

	expired, _ := session.New()
	expired.Token = "token"
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(ctx, expired, time.Hour))

	tests := []struct {
		name   string
		cookie string
	}{
		{"no_cookie", ""},
		{"unknown_id", "does-not-exist"},
		{"anonymous", anonymous.ID},
		{"expired", expired.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			handler := manager.Load(manager.Gate(protected(&ran)))

			request := httptest.NewRequest(http.MethodGet, "/admin/manage-books", nil)
			if tt.cookie != "" {
				request = withCookie(request, tt.cookie)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.False(t, ran, "protected content must not run")
			assert.Equal(t, http.StatusSeeOther, recorder.Code)
			assert.Equal(t, "/", recorder.Header().Get("Location"))
		})
	}

	_, err := store.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, session.ErrNotFound, "expired sessions are destroyed on sight")
}

/*
TestGate_AllowsAuthenticated lets a valid session through.
*/
func TestGate_AllowsAuthenticated(t *testing.T) {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, false)

	current := sampleSession(t)
	require.NoError(t, store.Save(context.Background(), current, time.Hour))

	ran := false
	recorder := httptest.NewRecorder()
	manager.Load(manager.Gate(protected(&ran))).ServeHTTP(recorder,
		withCookie(httptest.NewRequest(http.MethodGet, "/admin", nil), current.ID))

	assert.True(t, ran)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestManager_ExpiredSessionCarriesNotice logs in, lets the credential run out and
checks that the next request destroys the session and leaves the expiry notice.
*/
func TestManager_ExpiredSessionCarriesNotice(t *testing.T) {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, false)

	dropped := []string{}
	manager.OnDestroy(func(id string) { dropped = append(dropped, id) })

	// 1. Login with a short-lived credential
	login := httptest.NewRecorder()
	started, err := manager.Begin(login, httptest.NewRequest(http.MethodPost, "/login", nil), "token", time.Now().Add(100*time.Millisecond))
	require.NoError(t, err)

	// 2. The credential runs out while the record is still stored
	time.Sleep(200 * time.Millisecond)
	_, err = store.Get(context.Background(), started.ID)
	require.NoError(t, err)

	// 3. Next request
	var seen *session.Session
	handler := manager.Load(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = session.FromContext(request.Context())
	}))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, withCookie(httptest.NewRequest(http.MethodGet, "/", nil), cookieFrom(t, login).Value))

	require.NotNil(t, seen)
	assert.NotEqual(t, started.ID, seen.ID)
	assert.False(t, seen.IsAuthenticated())
	assert.Equal(t, []render.Notice{render.Info(session.MessageExpired)}, seen.Flashes)
	assert.Equal(t, []string{started.ID}, dropped)
	assert.Equal(t, seen.ID, cookieFrom(t, recorder).Value)

	_, err = store.Get(context.Background(), started.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

/*
TestManager_BeginRotatesID issues a fresh id on login and keeps pending notices.
*/
func TestManager_BeginRotatesID(t *testing.T) {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, true)
	ctx := context.Background()

	previous, _ := session.New()
	previous.AddFlash(render.Info("Hello"))
	require.NoError(t, store.Save(ctx, previous, time.Hour))

	request := httptest.NewRequest(http.MethodPost, "/login", nil)
	request = request.WithContext(session.WithSession(request.Context(), previous))
	recorder := httptest.NewRecorder()

	expiresAt := time.Now().Add(15 * time.Minute)
	started, err := manager.Begin(recorder, request, "bearer", expiresAt)
	require.NoError(t, err)

	assert.NotEqual(t, previous.ID, started.ID)
	assert.True(t, started.IsAuthenticated())
	assert.Equal(t, []render.Notice{render.Info("Hello")}, started.Flashes)

	_, err = store.Get(ctx, previous.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	cookie := cookieFrom(t, recorder)
	assert.Equal(t, started.ID, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

/*
TestManager_Destroy deletes the record, runs hooks and optionally carries a notice.
*/
func TestManager_Destroy(t *testing.T) {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, false)
	ctx := context.Background()

	dropped := []string{}
	manager.OnDestroy(func(id string) { dropped = append(dropped, id) })

	t.Run("logout_clears_cookie", func(t *testing.T) {
		current := sampleSession(t)
		require.NoError(t, store.Save(ctx, current, time.Hour))
		request := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
		request = request.WithContext(session.WithSession(request.Context(), current))
		recorder := httptest.NewRecorder()

		require.NoError(t, manager.Destroy(recorder, request))

		_, err := store.Get(ctx, current.ID)
		assert.ErrorIs(t, err, session.ErrNotFound)
		assert.Contains(t, dropped, current.ID)
		assert.Equal(t, -1, cookieFrom(t, recorder).MaxAge)
	})

	t.Run("unauthorized_carries_notice", func(t *testing.T) {
		current := sampleSession(t)
		require.NoError(t, store.Save(ctx, current, time.Hour))
		request := httptest.NewRequest(http.MethodPost, "/admin/manage-books/add", nil)
		request = request.WithContext(session.WithSession(request.Context(), current))
		recorder := httptest.NewRecorder()

		require.NoError(t, manager.Destroy(recorder, request, render.Failure(session.MessageExpired)))

		replacement, err := store.Get(ctx, cookieFrom(t, recorder).Value)
		require.NoError(t, err)
		assert.False(t, replacement.IsAuthenticated())
		assert.Equal(t, session.MessageExpired, replacement.Flashes[0].Message)
	})
}

/*
TestManager_FlashThenDecorate delivers a notice exactly once.
*/
func TestManager_FlashThenDecorate(t *testing.T) {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, false)

	// 1. Flash on a visitor without a session
	recorder := httptest.NewRecorder()
	require.NoError(t, manager.Flash(recorder, httptest.NewRequest(http.MethodPost, "/feedback", nil), render.Success("Thanks!")))
	id := cookieFrom(t, recorder).Value

	// 2. The next page shows it
	nextPage := func() *render.View {
		view := &render.View{}
		handler := manager.Load(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			manager.Decorate(writer, request, view)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), withCookie(httptest.NewRequest(http.MethodGet, "/", nil), id))
		return view
	}

	first := nextPage()
	require.Len(t, first.Notices, 1)
	assert.Equal(t, "Thanks!", first.Notices[0].Message)
	assert.False(t, first.Authenticated)
	assert.Zero(t, first.ExpiresIn)

	// 3. And only once
	assert.Empty(t, nextPage().Notices)
}

/*
TestManager_DecorateAuthenticated exposes the remaining lifetime to the layout.
*/
func TestManager_DecorateAuthenticated(t *testing.T) {
	store := session.NewMemoryStore()
	manager := session.NewManager(store, false)

	current := &session.Session{ID: "s", Token: "t", ExpiresAt: time.Now().Add(90 * time.Second)}
	request := httptest.NewRequest(http.MethodGet, "/admin", nil)
	request = request.WithContext(session.WithSession(request.Context(), current))

	view := &render.View{}
	manager.Decorate(httptest.NewRecorder(), request, view)

	assert.True(t, view.Authenticated)
	assert.InDelta(t, 90, view.ExpiresIn, 2)
}
