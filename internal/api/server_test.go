// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/scholar/internal/admin"
	"github.com/taibuivan/scholar/internal/api"
	"github.com/taibuivan/scholar/internal/auth"
	"github.com/taibuivan/scholar/internal/backend/backendtest"
	"github.com/taibuivan/scholar/internal/content"
	"github.com/taibuivan/scholar/internal/crud"
	"github.com/taibuivan/scholar/internal/platform/config"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/metrics"
	"github.com/taibuivan/scholar/internal/platform/sec"
	"github.com/taibuivan/scholar/internal/session"
	"github.com/taibuivan/scholar/internal/site"
	"github.com/taibuivan/scholar/web"
)

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	*http.Client
	base string
}

func newStack(t *testing.T, storeProbe func(context.Context) error) (*backendtest.Server, *browser) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		ServerPort:    "0",
		Environment:   "test",
		SessionSecret: strings.Repeat("s", 32),
		PublicBaseURL: "https://scholar.example",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	backendAPI := backendtest.New(t)
	client := backendAPI.Client()
	collector := metrics.New()

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	manager := session.NewManager(session.NewMemoryStore(), false)
	registry := crud.NewRegistry(client, session.Token, collector)
	manager.OnDestroy(registry.Drop)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckBackend: client.Ping,
		Stores:       []api.Check{{Name: "session_store", Probe: storeProbe}},
	}, logger)

	server := api.NewServer(ctx, cfg, logger, api.Dependencies{
		Sessions: manager,
		Renderer: renderer,
		Metrics:  collector,
		Static:   web.Static(),
	}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Site:      site.NewHandler(content.NewService(client, content.DefaultProfile()), renderer, cfg.PublicBaseURL),
		Auth:      auth.NewHandler(auth.NewService(client, sec.NewCredentialInspector(), constants.DefaultCredentialTTL), manager, renderer, nil),
		Admin:     admin.NewHandler(registry, manager, renderer),
	})

	frontend := httptest.NewServer(server.Handler())
	t.Cleanup(frontend.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return backendAPI, &browser{
		Client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		base: frontend.URL,
	}
}

func (browser *browser) fetch(t *testing.T, target string) (*http.Response, string) {
	t.Helper()
	response, err := browser.Get(browser.base + target)
	require.NoError(t, err)
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response, string(body)
}

func (browser *browser) submit(t *testing.T, target string, form url.Values) *http.Response {
	t.Helper()
	response, err := browser.PostForm(browser.base+target, form)
	require.NoError(t, err)
	_ = response.Body.Close()
	return response
}

func healthy(context.Context) error { return nil }

/*
TestServer_Probes covers liveness, readiness, metrics and static assets.
*/
func TestServer_Probes(t *testing.T) {
	_, browser := newStack(t, healthy)

	response, _ := browser.fetch(t, "/health")
	assert.Equal(t, http.StatusOK, response.StatusCode)

	response, body := browser.fetch(t, "/ready")
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, body, `"backend"`)

	response, body = browser.fetch(t, "/metrics")
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, body, "scholar_http_requests_total")

	response, _ = browser.fetch(t, "/static/css/site.css")
	assert.Equal(t, http.StatusOK, response.StatusCode)

	response, _ = browser.fetch(t, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}

/*
TestServer_ReadinessDegraded answers 503 when the session store is down.
*/
func TestServer_ReadinessDegraded(t *testing.T) {
	_, browser := newStack(t, func(context.Context) error { return errors.New("connection refused") })

	response, body := browser.fetch(t, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, response.StatusCode)
	assert.Contains(t, body, "degraded")
	assert.Contains(t, body, "connection refused")
}

/*
TestServer_AdminGate redirects anonymous visitors away from every admin route.
*/
func TestServer_AdminGate(t *testing.T) {
	_, browser := newStack(t, healthy)

	for _, target := range []string{"/admin", "/admin/manage-books", "/admin/manage-books?tab=edit"} {
		response, _ := browser.fetch(t, target)
		assert.Equal(t, http.StatusSeeOther, response.StatusCode, target)
		assert.Equal(t, "/", response.Header.Get("Location"), target)
	}
}

/*
TestServer_CSRF rejects form posts without the token and accepts the full
login round trip with it.
*/
func TestServer_CSRF(t *testing.T) {
	backendAPI, browser := newStack(t, healthy)

	// 1. No token
	rejected := browser.submit(t, "/feedback", url.Values{"email": {"visitor@example.org"}, "message": {"Hello"}})
	assert.Equal(t, http.StatusForbidden, rejected.StatusCode)
	assert.Empty(t, backendAPI.Feedback)

	// 2. Token from the login form
	_, page := browser.fetch(t, "/login")
	match := csrfPattern.FindStringSubmatch(page)
	require.Len(t, match, 2, "login form carries the CSRF field")

	login := browser.submit(t, "/login", url.Values{
		"csrf_token": {match[1]},
		"email":      {backendtest.AdminEmail},
		"password":   {backendtest.AdminPassword},
	})
	require.Equal(t, http.StatusSeeOther, login.StatusCode)
	assert.Equal(t, "/admin", login.Header.Get("Location"))

	// 3. The session now opens the console
	response, body := browser.fetch(t, "/admin")
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, body, "Logged in successfully!")
	assert.Contains(t, body, `action="/admin/logout"`)
}
