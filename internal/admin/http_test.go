// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/scholar/internal/admin"
	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/backend/backendtest"
	"github.com/taibuivan/scholar/internal/content"
	"github.com/taibuivan/scholar/internal/crud"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/session"
	"github.com/taibuivan/scholar/web"
)

// console is an admin router with one logged-in browser.
type console struct {
	api      *backendtest.Server
	store    *session.MemoryStore
	registry *crud.Registry
	router   http.Handler
	cookie   string
}

func newConsole(t *testing.T) *console {
	t.Helper()

	api := backendtest.New(t)
	store := session.NewMemoryStore()
	manager := session.NewManager(store, false)
	registry := crud.NewRegistry(api.Client(), session.Token, nil)
	manager.OnDestroy(registry.Drop)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	renderer.Use(manager.Decorate)

	router := chi.NewRouter()
	router.Use(manager.Load)
	router.Group(func(gated chi.Router) {
		gated.Use(manager.Gate)
		admin.NewHandler(registry, manager, renderer).RegisterRoutes(gated)
	})

	current, err := session.New()
	require.NoError(t, err)
	current.Token = backendtest.AdminToken
	current.ExpiresAt = time.Now().Add(time.Hour)
	require.NoError(t, store.Save(context.Background(), current, time.Hour))

	return &console{api: api, store: store, registry: registry, router: router, cookie: current.ID}
}

func (console *console) do(request *http.Request) *httptest.ResponseRecorder {
	if console.cookie != "" {
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: console.cookie})
	}
	recorder := httptest.NewRecorder()
	console.router.ServeHTTP(recorder, request)
	return recorder
}

func (console *console) get(target string) *httptest.ResponseRecorder {
	return console.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (console *console) post(target string, form url.Values) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return console.do(request)
}

/*
TestDashboard lists every resource and refuses anonymous visitors.
*/
func TestDashboard(t *testing.T) {
	console := newConsole(t)

	recorder := console.get("/admin")
	assert.Equal(t, http.StatusOK, recorder.Code)
	for _, resource := range admin.Resources {
		assert.Contains(t, recorder.Body.String(), admin.BaseURL(resource))
	}

	console.cookie = ""
	anonymous := console.get("/admin")
	assert.Equal(t, http.StatusSeeOther, anonymous.Code)
	assert.Equal(t, "/", anonymous.Header().Get("Location"))
}

/*
TestPanel_UnknownResource answers 404.
*/
func TestPanel_UnknownResource(t *testing.T) {
	console := newConsole(t)
	assert.Equal(t, http.StatusNotFound, console.get("/admin/manage-widgets").Code)
}

/*
TestAdd_ValidationFailure shows the form again with field errors and never
reaches the API.
*/
func TestAdd_ValidationFailure(t *testing.T) {
	console := newConsole(t)

	recorder := console.post("/admin/manage-yearwise-publications/add", url.Values{
		"title":    {""},
		"year":     {"soon"},
		"category": {content.CategoryJournal},
	})
	body := recorder.Body.String()

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, body, "This field is required")
	assert.Contains(t, body, `value="soon"`)
	assert.Equal(t, 0, console.api.Calls(http.MethodPost, backend.PathYearwisePublications))
}

/*
TestAdd_Success creates the item and flashes the toast on the next page.
*/
func TestAdd_Success(t *testing.T) {
	console := newConsole(t)

	recorder := console.post("/admin/manage-yearwise-publications/add", url.Values{
		"title":    {"Dynamo Action"},
		"year":     {"2024"},
		"category": {content.CategoryJournal},
	})

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	location := recorder.Header().Get("Location")
	assert.Equal(t, "/admin/manage-yearwise-publications?tab=add", location)

	docs := console.api.Docs(backend.PathYearwisePublications)
	require.Len(t, docs, 1)
	assert.Equal(t, "Dynamo Action", docs[0]["title"])

	next := console.get(location)
	assert.Contains(t, next.Body.String(), "Publication added successfully!")
}

/*
TestAdd_RowActions reshape the draft without submitting it.
*/
func TestAdd_RowActions(t *testing.T) {
	console := newConsole(t)

	added := console.post("/admin/manage-books/add", url.Values{
		"title":  {"Deep Dive"},
		"action": {"add-row:buyLinks"},
	})
	assert.Equal(t, http.StatusOK, added.Code)
	assert.Contains(t, added.Body.String(), `name="buyLinks.0.name"`)
	assert.Contains(t, added.Body.String(), `value="Deep Dive"`)

	removed := console.post("/admin/manage-books/add", url.Values{
		"title":           {"Deep Dive"},
		"buyLinks.0.name": {"Shop"},
		"buyLinks.0.url":  {"https://shop.example"},
		"action":          {"remove-row:buyLinks:0"},
	})
	assert.Equal(t, http.StatusOK, removed.Code)
	assert.NotContains(t, removed.Body.String(), `name="buyLinks.0.name"`)

	assert.Equal(t, 0, console.api.Calls(http.MethodPost, backend.PathBooks))
}

/*
TestEdit_FetchesDetailBySlug loads the full book and saves the update.
*/
func TestEdit_FetchesDetailBySlug(t *testing.T) {
	console := newConsole(t)
	console.api.Seed(backend.PathBooks, backendtest.Document{"_id": "b1", "title": "Deep Dive", "about": "On eddies."})

	page := console.get("/admin/manage-books?tab=edit&id=b1")
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `value="Deep Dive"`)
	assert.Equal(t, 1, console.api.Calls(http.MethodGet, backend.PathBooks+"/deep-dive"))

	saved := console.post("/admin/manage-books/edit/b1", url.Values{
		"title": {"Deeper Dive"},
		"about": {"On eddies."},
	})
	require.Equal(t, http.StatusSeeOther, saved.Code)
	assert.Equal(t, "/admin/manage-books?id=b1&tab=edit", saved.Header().Get("Location"))
	assert.Equal(t, "Deeper Dive", console.api.Docs(backend.PathBooks)[0]["title"])
}

/*
TestRemove_PrunesWithoutRefetch deletes after confirmation and serves the next
page from the pruned cache.
*/
func TestRemove_PrunesWithoutRefetch(t *testing.T) {
	console := newConsole(t)
	console.api.Seed(backend.PathBanners,
		backendtest.Document{"_id": "a", "imageUrl": "https://img.example/a.jpg", "description": "Keep me"},
		backendtest.Document{"_id": "b", "imageUrl": "https://img.example/b.jpg", "description": "Remove me"},
	)

	prompt := console.get("/admin/manage-banners/delete/b")
	assert.Equal(t, http.StatusOK, prompt.Code)
	assert.Contains(t, prompt.Body.String(), "Are you sure you want to delete this banner?")

	// Without confirmation nothing happens
	unconfirmed := console.post("/admin/manage-banners/delete/b", url.Values{})
	assert.Equal(t, http.StatusSeeOther, unconfirmed.Code)
	assert.Len(t, console.api.Docs(backend.PathBanners), 2)

	deleted := console.post("/admin/manage-banners/delete/b", url.Values{"confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, deleted.Code)

	next := console.get(deleted.Header().Get("Location"))
	body := next.Body.String()
	assert.Contains(t, body, "Banner deleted successfully!")
	assert.Contains(t, body, "Keep me")
	assert.NotContains(t, body, "Remove me")
	assert.Equal(t, 1, console.api.Calls(http.MethodGet, backend.PathBanners))
}

/*
TestPanel_YearwiseNewestFirst lists publications grouped by year, latest first,
and filters categories without regard to case.
*/
func TestPanel_YearwiseNewestFirst(t *testing.T) {
	console := newConsole(t)
	console.api.Seed(backend.PathYearwisePublications,
		backendtest.Document{"title": "Older paper", "year": 2019, "category": "Journal"},
		backendtest.Document{"title": "Newest paper", "year": 2024, "category": "journal"},
		backendtest.Document{"title": "Middle paper", "year": 2021, "category": "Conference Proceedings"},
	)

	body := console.get("/admin/manage-yearwise-publications?tab=edit").Body.String()
	newest := strings.Index(body, "Newest paper")
	middle := strings.Index(body, "Middle paper")
	older := strings.Index(body, "Older paper")
	require.True(t, newest >= 0 && middle >= 0 && older >= 0)
	assert.Less(t, newest, middle)
	assert.Less(t, middle, older)

	filtered := console.get("/admin/manage-yearwise-publications?tab=edit&filter=Journal").Body.String()
	assert.Contains(t, filtered, "Newest paper")
	assert.Contains(t, filtered, "Older paper")
	assert.NotContains(t, filtered, "Middle paper")
}

/*
TestUnauthorized_DestroysSession ends the session on a 401 and drops its panels.
*/
func TestUnauthorized_DestroysSession(t *testing.T) {
	console := newConsole(t)
	console.api.Seed(backend.PathBanners, backendtest.Document{"_id": "a", "imageUrl": "https://img.example/a.jpg", "description": "Banner"})
	require.Equal(t, http.StatusOK, console.get("/admin/manage-banners?tab=delete").Code)
	require.Equal(t, 1, console.registry.Sessions())

	// The API no longer accepts the stored token
	console.api.Token = "rotated"
	previous := console.cookie

	recorder := console.post("/admin/manage-banners/delete/a", url.Values{"confirm": {"yes"}})

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/", recorder.Header().Get("Location"))
	assert.Equal(t, 0, console.registry.Sessions())

	_, err := console.store.Get(context.Background(), previous)
	assert.True(t, errors.Is(err, session.ErrNotFound))

	// The replacement session is anonymous and carries the notice
	var replacement string
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			replacement = cookie.Value
		}
	}
	require.NotEmpty(t, replacement)
	assert.NotEqual(t, previous, replacement)

	carried, err := console.store.Get(context.Background(), replacement)
	require.NoError(t, err)
	assert.False(t, carried.IsAuthenticated())
	require.Len(t, carried.Flashes, 1)
	assert.Equal(t, session.MessageExpired, carried.Flashes[0].Message)
}

/*
TestAdd_UploadsImage sends the file to the upload endpoint and stores its URL.
*/
func TestAdd_UploadsImage(t *testing.T) {
	console := newConsole(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("description", "Lab photo"))
	part, err := writer.CreateFormFile("imageUrl", "banner.png")
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader([]byte("\x89PNG fake image")))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/admin/manage-banners/add", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	recorder := console.do(request)

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, []string{"banner.png"}, console.api.Uploads)

	docs := console.api.Docs(backend.PathBanners)
	require.Len(t, docs, 1)
	assert.Equal(t, "/uploads/banner.png", docs[0]["imageUrl"])
}
