// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crud_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/backend/backendtest"
	"github.com/taibuivan/scholar/internal/crud"
	"github.com/taibuivan/scholar/internal/platform/apperr"
)

type operationLog struct {
	mu      sync.Mutex
	entries []string
}

func (log *operationLog) ObservePanelOperation(resource, operation string, err error) {
	log.mu.Lock()
	defer log.mu.Unlock()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	log.entries = append(log.entries, resource+":"+operation+":"+outcome)
}

func newBookPanel(t *testing.T) (*crud.Panel, *backendtest.Server, *operationLog) {
	t.Helper()
	api := backendtest.New(t)
	observer := &operationLog{}
	panel := crud.NewPanel(bookResource(), api.Client(), crud.StaticToken(backendtest.AdminToken), observer)
	return panel, api, observer
}

/*
TestPanel_SubmitAddThenList checks that a created record appears exactly once
and the draft is cleared.
*/
func TestPanel_SubmitAddThenList(t *testing.T) {
	panel, api, observer := newBookPanel(t)
	ctx := context.Background()

	require.NoError(t, panel.List(ctx))
	assert.Empty(t, panel.Items())
	assert.Equal(t, crud.PhaseListing, panel.State().Phase)

	err := panel.SubmitAdd(ctx, crud.Record{"title": "T", "about": "A", "image": "img.jpg", "buyLinks": []any{}})
	require.Error(t, err, "image must be a URL or rooted path")
	assert.Equal(t, 0, api.Calls(http.MethodPost, backend.PathBooks))

	draft := crud.Record{"title": "T", "about": "A", "image": "/img.jpg", "buyLinks": []any{}}
	require.NoError(t, panel.SubmitAdd(ctx, draft))

	items := panel.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "T", items[0].Text("title"))
	assert.Equal(t, "t", items[0].Text("slug"))
	assert.Nil(t, panel.Draft())
	assert.Equal(t, crud.PhaseListing, panel.State().Phase)

	require.NoError(t, panel.List(ctx))
	assert.Len(t, panel.Items(), 1)
	assert.Contains(t, observer.entries, "books:add:ok")
}

/*
TestPanel_SubmitAdd_RefreshFailure appends the created record when the list
cannot be refetched.
*/
func TestPanel_SubmitAdd_RefreshFailure(t *testing.T) {
	panel, api, _ := newBookPanel(t)
	ctx := context.Background()

	api.FailWith(http.MethodGet, backend.PathBooks, http.StatusBadRequest, "nope", 1)
	require.NoError(t, panel.SubmitAdd(ctx, crud.Record{"title": "Only"}))

	items := panel.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Only", items[0].Text("title"))
}

/*
TestPanel_SelectForEdit_FetchesDetail checks the secondary GET by slug.
*/
func TestPanel_SelectForEdit_FetchesDetail(t *testing.T) {
	panel, api, _ := newBookPanel(t)
	ctx := context.Background()
	api.Seed(backend.PathBooks, backendtest.Document{"title": "Deep Dive", "about": "Full text", "reviews": []any{}})

	require.NoError(t, panel.List(ctx))
	require.NoError(t, panel.SelectForEdit(ctx, "1"))

	assert.Equal(t, 1, api.Calls(http.MethodGet, backend.PathBooks+"/deep-dive"))
	assert.Equal(t, "Full text", panel.Draft().Text("about"))
	assert.Equal(t, crud.State{Phase: crud.PhaseEditing, ID: "1"}, panel.State())

	err := panel.SelectForEdit(ctx, "missing")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
	assert.Equal(t, crud.PhaseError, panel.State().Phase)
	assert.Equal(t, "1", panel.State().ID)
}

/*
TestPanel_SubmitEdit keeps the draft and the selection.
*/
func TestPanel_SubmitEdit(t *testing.T) {
	panel, api, _ := newBookPanel(t)
	ctx := context.Background()
	api.Seed(backend.PathBooks, backendtest.Document{"title": "Old", "slug": "old"})

	require.NoError(t, panel.List(ctx))
	require.NoError(t, panel.SelectForEdit(ctx, "1"))

	draft := panel.Draft()
	draft["title"] = "New"
	require.NoError(t, panel.SubmitEdit(ctx, "1", draft))

	assert.Equal(t, "New", panel.Draft().Text("title"))
	assert.Equal(t, "1", panel.Draft().ID())
	assert.Equal(t, crud.State{Phase: crud.PhaseEditing, ID: "1"}, panel.State())
	assert.Equal(t, "New", panel.Items()[0].Text("title"))
	assert.Equal(t, "New", api.Docs(backend.PathBooks)[0]["title"])
}

/*
TestPanel_RemoveWithoutRefetch prunes the cache without a second GET.
*/
func TestPanel_RemoveWithoutRefetch(t *testing.T) {
	panel, api, _ := newBookPanel(t)
	ctx := context.Background()
	api.Seed(backend.PathBooks, backendtest.Document{"title": "A"}, backendtest.Document{"title": "B"})

	require.NoError(t, panel.List(ctx))
	require.NoError(t, panel.Remove(ctx, "1"))

	assert.Equal(t, 1, api.Calls(http.MethodGet, backend.PathBooks))
	items := panel.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID())
	assert.Len(t, api.Docs(backend.PathBooks), 1)
}

/*
TestPanel_Unauthorized surfaces the 401 sentinel and enters the error state.
*/
func TestPanel_Unauthorized(t *testing.T) {
	api := backendtest.New(t)
	ctx := context.Background()

	expired := crud.NewPanel(bookResource(), api.Client(), crud.StaticToken("expired-token"), nil)
	err := expired.SubmitAdd(ctx, crud.Record{"title": "T"})
	assert.True(t, backend.IsUnauthorized(err))
	assert.Equal(t, crud.PhaseError, expired.State().Phase)
	assert.Equal(t, "Session expired. Please log in.", expired.State().Reason)
	assert.Equal(t, "T", expired.Draft().Text("title"), "the draft survives a failed submit")

	anonymous := crud.NewPanel(bookResource(), api.Client(), crud.StaticToken(""), nil)
	err = anonymous.Remove(ctx, "1")
	assert.True(t, backend.IsUnauthorized(err))
	assert.Equal(t, 0, api.Calls(http.MethodDelete, backend.PathBooks+"/1"))
}

/*
TestPanel_TokenReadPerCall checks that the token is consulted at call time.
*/
func TestPanel_TokenReadPerCall(t *testing.T) {
	api := backendtest.New(t)
	ctx := context.Background()

	current := "stale"
	tokens := func(context.Context) (string, error) { return current, nil }
	panel := crud.NewPanel(bookResource(), api.Client(), tokens, nil)

	require.Error(t, panel.SubmitAdd(ctx, crud.Record{"title": "T"}))

	current = backendtest.AdminToken
	require.NoError(t, panel.SubmitAdd(ctx, crud.Record{"title": "T"}))
}

/*
TestPanel_ListFailureKeepsCache checks that a failed refresh leaves the cache intact.
*/
func TestPanel_ListFailureKeepsCache(t *testing.T) {
	panel, api, _ := newBookPanel(t)
	ctx := context.Background()
	api.Seed(backend.PathBooks, backendtest.Document{"title": "A"})

	require.NoError(t, panel.List(ctx))
	api.FailWith(http.MethodGet, backend.PathBooks, http.StatusBadRequest, "Broken query", 1)

	err := panel.List(ctx)
	require.Error(t, err)
	assert.Equal(t, crud.State{Phase: crud.PhaseError, Reason: "Broken query"}, panel.State())
	assert.Len(t, panel.Items(), 1)
}

/*
TestPanel_Filtered applies the resource's list filter without regard to case
and sorts by the resource's order.
*/
func TestPanel_Filtered(t *testing.T) {
	api := backendtest.New(t)
	api.Seed(backend.PathYearwisePublications,
		backendtest.Document{"title": "A", "year": 2020, "category": "Journal"},
		backendtest.Document{"title": "B", "year": 2021, "category": "Review Paper"},
		backendtest.Document{"title": "C", "year": "2022", "category": "journal "},
	)
	resource := publicationResource()
	resource.Order = func(a, b crud.Record) int { return b.Int("year") - a.Int("year") }

	panel := crud.NewPanel(resource, api.Client(), nil, nil)
	require.NoError(t, panel.List(context.Background()))

	assert.Len(t, panel.Filtered(""), 3)
	assert.Equal(t, "C", panel.Filtered(crud.FilterAll)[0].Text("title"))

	journal := panel.Filtered("Journal")
	require.Len(t, journal, 2)
	assert.Equal(t, "C", journal[0].Text("title"))
	assert.Equal(t, "A", journal[1].Text("title"))

	// Cache order is untouched
	assert.Equal(t, "A", panel.Items()[0].Text("title"))
}

/*
TestPanel_Refresh reuses a fresh cache.
*/
func TestPanel_Refresh(t *testing.T) {
	panel, api, _ := newBookPanel(t)
	ctx := context.Background()

	assert.True(t, panel.Stale(time.Minute))
	require.NoError(t, panel.Refresh(ctx, time.Minute))
	require.NoError(t, panel.Refresh(ctx, time.Minute))
	assert.Equal(t, 1, api.Calls(http.MethodGet, backend.PathBooks))

	require.NoError(t, panel.Refresh(ctx, 0))
	assert.Equal(t, 2, api.Calls(http.MethodGet, backend.PathBooks))
}

/*
TestPanel_Attach uploads image files and stores the returned URL.
*/
func TestPanel_Attach(t *testing.T) {
	panel, api, _ := newBookPanel(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, form.Close())

	request := httptest.NewRequest(http.MethodPost, "/admin/manage-books/add", &body)
	request.Header.Set("Content-Type", form.FormDataContentType())
	require.NoError(t, request.ParseMultipartForm(1<<20))

	draft := crud.Record{"title": "T", "image": ""}
	files := map[string]*multipart.FileHeader{"image": request.MultipartForm.File["image"][0]}

	require.NoError(t, panel.Attach(context.Background(), draft, files))
	assert.Equal(t, "/uploads/cover.png", draft["image"])
	assert.Equal(t, []string{"cover.png"}, api.Uploads)
}

// blockingBackend parks Create until released. Get serves items.
type blockingBackend struct {
	entered chan struct{}
	release chan struct{}
	items   []crud.Record
}

func (api *blockingBackend) Get(_ context.Context, _ string, out any) error {
	if list, ok := out.(*[]crud.Record); ok {
		*list = api.items
	}
	return nil
}

func (api *blockingBackend) Create(context.Context, string, string, any, any) error {
	close(api.entered)
	<-api.release
	return nil
}

func (api *blockingBackend) Update(context.Context, string, string, any, any) error { return nil }

func (api *blockingBackend) Delete(context.Context, string, string) error { return nil }

func (api *blockingBackend) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", errors.New("not supported")
}

/*
TestPanel_BusyWhileSubmitting refuses a second write during a submission but
still lets the list be read.
*/
func TestPanel_BusyWhileSubmitting(t *testing.T) {
	api := &blockingBackend{entered: make(chan struct{}), release: make(chan struct{})}
	panel := crud.NewPanel(bookResource(), api, crud.StaticToken("token"), nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- panel.SubmitAdd(ctx, crud.Record{"title": "First"}) }()
	<-api.entered

	assert.True(t, panel.State().Busy())
	assert.ErrorIs(t, panel.SubmitAdd(ctx, crud.Record{"title": "Second"}), crud.ErrBusy)
	assert.ErrorIs(t, panel.Remove(ctx, "1"), crud.ErrBusy)

	api.items = []crud.Record{{"_id": "1", "title": "Existing"}}
	require.NoError(t, panel.List(ctx))
	assert.Len(t, panel.Items(), 1)
	assert.True(t, panel.State().Busy())

	close(api.release)
	require.NoError(t, <-done)
	assert.Equal(t, crud.PhaseListing, panel.State().Phase)
}

/*
TestState_Transitions walks the state machine directly.
*/
func TestState_Transitions(t *testing.T) {
	state := crud.Idle()
	assert.Equal(t, "idle", state.String())

	submitting, err := state.Edit("7").Begin()
	require.NoError(t, err)
	assert.Equal(t, crud.State{Phase: crud.PhaseSubmitting, ID: "7"}, submitting)

	_, err = submitting.Begin()
	assert.ErrorIs(t, err, crud.ErrBusy)

	failed := submitting.Fail("Invalid token")
	assert.Equal(t, "error(Invalid token)", failed.String())
	assert.Equal(t, "7", failed.ID)

	assert.Equal(t, "editing(7)", failed.Edit("7").String())
	assert.Equal(t, "listing", failed.Listed().String())
}
