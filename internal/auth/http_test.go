// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/scholar/internal/auth"
	"github.com/taibuivan/scholar/internal/backend/backendtest"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/sec"
	"github.com/taibuivan/scholar/internal/session"
	"github.com/taibuivan/scholar/web"
)

type harness struct {
	api    *backendtest.Server
	store  *session.MemoryStore
	router http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	api := backendtest.New(t)
	store := session.NewMemoryStore()
	manager := session.NewManager(store, false)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	renderer.Use(manager.Decorate)

	handler := auth.NewHandler(auth.NewService(api.Client(), sec.NewCredentialInspector(), constants.DefaultCredentialTTL), manager, renderer, nil)

	router := chi.NewRouter()
	router.Use(manager.Load)
	handler.RegisterRoutes(router)
	router.With(manager.Gate).Post("/admin/logout", handler.Logout)

	return &harness{api: api, store: store, router: router}
}

func (harness *harness) post(target string, form url.Values, cookie string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: cookie})
	}
	recorder := httptest.NewRecorder()
	harness.router.ServeHTTP(recorder, request)
	return recorder
}

func (harness *harness) sessionOf(t *testing.T, recorder *httptest.ResponseRecorder) *session.Session {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName && cookie.Value != "" {
			current, err := harness.store.Get(context.Background(), cookie.Value)
			require.NoError(t, err)
			return current
		}
	}
	t.Fatalf("no %s cookie set", constants.SessionCookieName)
	return nil
}

/*
TestLogin_Success starts a session that ends with the credential.
*/
func TestLogin_Success(t *testing.T) {
	site := newHarness(t)
	expiresAt := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	site.api.IssuedToken = signedToken(t, expiresAt)

	recorder := site.post("/login", url.Values{"email": {backendtest.AdminEmail}, "password": {backendtest.AdminPassword}}, "")

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/admin", recorder.Header().Get("Location"))

	current := site.sessionOf(t, recorder)
	assert.True(t, current.IsAuthenticated())
	assert.Equal(t, site.api.IssuedToken, current.Token)
	assert.True(t, current.ExpiresAt.Equal(expiresAt))
	require.Len(t, current.Flashes, 1)
	assert.Equal(t, auth.MessageLoggedIn, current.Flashes[0].Message)
}

/*
TestLogin_Failures show the form again with the right status.
*/
func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name   string
		form   url.Values
		status int
		text   string
	}{
		{"wrong_password", url.Values{"email": {backendtest.AdminEmail}, "password": {"nope"}}, http.StatusUnauthorized, "Invalid email or password"},
		{"missing_password", url.Values{"email": {backendtest.AdminEmail}}, http.StatusBadRequest, "This field is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newHarness(t)

			recorder := site.post("/login", tt.form, "")

			assert.Equal(t, tt.status, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.text)
			assert.Contains(t, recorder.Body.String(), `value="`+backendtest.AdminEmail+`"`)
			assert.Equal(t, 0, site.store.Len())
		})
	}
}

/*
TestFeedback_NeverAuthenticates forwards the message and ignores any token the
API returns.
*/
func TestFeedback_NeverAuthenticates(t *testing.T) {
	site := newHarness(t)

	recorder := site.post("/feedback", url.Values{"email": {"visitor@example.org"}, "message": {"Great lecture"}}, "")

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/#feedback", recorder.Header().Get("Location"))
	require.Len(t, site.api.Feedback, 1)
	assert.Equal(t, "Great lecture", site.api.Feedback[0]["message"])

	current := site.sessionOf(t, recorder)
	assert.False(t, current.IsAuthenticated())
	assert.Empty(t, current.Token)
	require.Len(t, current.Flashes, 1)
	assert.Equal(t, auth.MessageFeedbackSent, current.Flashes[0].Message)
}

/*
TestFeedback_Invalid flashes the first field error without calling the API.
*/
func TestFeedback_Invalid(t *testing.T) {
	site := newHarness(t)

	recorder := site.post("/feedback", url.Values{"email": {"not-an-email"}, "message": {"Hi"}}, "")

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Empty(t, site.api.Feedback)

	current := site.sessionOf(t, recorder)
	require.Len(t, current.Flashes, 1)
	assert.True(t, strings.HasPrefix(current.Flashes[0].Message, "Email: "))
}

/*
TestLogout destroys the session and leaves a notice.
*/
func TestLogout(t *testing.T) {
	site := newHarness(t)

	login := site.post("/login", url.Values{"email": {backendtest.AdminEmail}, "password": {backendtest.AdminPassword}}, "")
	loggedIn := site.sessionOf(t, login)

	recorder := site.post("/admin/logout", url.Values{}, loggedIn.ID)

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/", recorder.Header().Get("Location"))

	_, err := site.store.Get(context.Background(), loggedIn.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	after := site.sessionOf(t, recorder)
	assert.False(t, after.IsAuthenticated())
	assert.Equal(t, auth.MessageLoggedOut, after.Flashes[0].Message)
}
