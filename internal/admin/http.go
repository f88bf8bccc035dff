// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package admin is the password-gated content console.

Every managed collection is a [crud.Resource] rendered by one generic panel
page with add, edit and delete tabs. The handlers bind the per-session
[crud.Panel] to requests; the panel owns the list cache, the draft and the
submit state machine.

Failure Taxonomy:

  - Validation: the form is shown again with field errors (400).
  - API failure: the server's message, or a per-operation fallback, as a toast.
  - 401: the session is destroyed and the browser sent to "/".
*/
package admin

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/content"
	"github.com/taibuivan/scholar/internal/crud"
	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/ctxutil"
	"github.com/taibuivan/scholar/internal/platform/render"
	requestutil "github.com/taibuivan/scholar/internal/platform/request"
	"github.com/taibuivan/scholar/internal/session"
)

// # Definitions & Constructors

// Handler serves the admin console.
type Handler struct {
	registry *crud.Registry
	sessions *session.Manager
	renderer *render.Renderer
}

// NewHandler constructs a [Handler].
func NewHandler(registry *crud.Registry, sessions *session.Manager, renderer *render.Renderer) *Handler {
	return &Handler{registry: registry, sessions: sessions, renderer: renderer}
}

// RegisterRoutes mounts the console. The router must already be gated.
//
// # Endpoints
//   - GET  /admin                                : Dashboard.
//   - GET  /admin/manage-{resource}              : Panel (?tab=add|edit|delete&id=&filter=).
//   - POST /admin/manage-{resource}/add          : Create, or a row action on the draft.
//   - POST /admin/manage-{resource}/edit/{id}    : Update, or a row action on the draft.
//   - GET  /admin/manage-{resource}/delete/{id}  : Confirmation prompt.
//   - POST /admin/manage-{resource}/delete/{id}  : Delete (confirm=yes).
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/admin", handler.dashboard)

	scoped := router.With(scope)
	scoped.Get("/admin/manage-{resource}", handler.panelPage)
	scoped.Post("/admin/manage-{resource}/add", handler.add)
	scoped.Post("/admin/manage-{resource}/edit/{id}", handler.edit)
	scoped.Get("/admin/manage-{resource}/delete/{id}", handler.confirmDelete)
	scoped.Post("/admin/manage-{resource}/delete/{id}", handler.remove)
}

// scope records the resource of the URL on the request context.
func scope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := ctxutil.WithResource(request.Context(), requestutil.Param(request, "resource"))
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// dashboard renders one card per resource.
func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	cards := make([]Card, 0, len(Resources))
	for _, resource := range Resources {
		cards = append(cards, Card{Heading: Heading(resource), URL: BaseURL(resource)})
	}

	handler.renderer.Page(writer, request, http.StatusOK, "admin/dashboard", &render.View{
		Title:   "Admin Dashboard",
		Section: "admin",
		Data:    DashboardData{Cards: cards},
	})
}

/*
panelPage renders a resource panel.

GET /admin/manage-{resource}?tab=&id=&filter=

Description: The list is refetched when the cache is older than
[constants.PanelCacheTTL]. On the edit tab an id selects the item, fetching the
full record by slug for resources that need it.

Response:
  - 200: Panel page, with a toast when the list or the item could not be loaded
  - 303: / when the API rejects the session
  - 404: Unknown resource
*/
func (handler *Handler) panelPage(writer http.ResponseWriter, request *http.Request) {
	panel, ok := handler.panel(writer, request)
	if !ok {
		return
	}
	ctx := request.Context()
	resource := panel.Resource()

	tab := content.PickTab(requestutil.Query(request, "tab"), panelTabs)
	id := requestutil.Query(request, "id")
	view := &render.View{Title: "Manage " + Heading(resource), Section: "admin"}

	// 1. The list
	if err := panel.Refresh(ctx, constants.PanelCacheTTL); err != nil {
		if handler.unauthorized(writer, request, err) {
			return
		}
		view.AddNotice(render.Failure(apperr.Message(err, resource.FailureMessage("load"))))
	}

	// 2. The selection
	draft := crud.Record{}
	if tab == TabEdit && id != "" {
		if current := panel.Draft(); current.ID() == id {
			draft = current
		} else if err := panel.SelectForEdit(ctx, id); err != nil {
			if handler.unauthorized(writer, request, err) {
				return
			}
			view.AddNotice(render.Failure(apperr.Message(err, resource.FailureMessage("load"))))
			id = ""
		} else {
			draft = panel.Draft()
		}
	}

	view.Data = handler.panelData(panel, tab, id, requestutil.Query(request, "filter"), draft, nil)
	handler.renderer.Page(writer, request, http.StatusOK, "admin/panel", view)
}

/*
add creates an item.

POST /admin/manage-{resource}/add

Request:
  - Form: resource fields, optional image files, optional action=add-row:f|remove-row:f:i

Response:
  - 200: Draft with one more or one fewer row (row actions)
  - 303: Add tab with a success toast
  - 400: Form again with field errors
*/
func (handler *Handler) add(writer http.ResponseWriter, request *http.Request) {
	panel, ok := handler.panel(writer, request)
	if !ok {
		return
	}
	resource := panel.Resource()

	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.formFailed(writer, request, panel, TabAdd, "", crud.Record{}, err, "add")
		return
	}

	// 1. Row actions only reshape the draft
	if action, isAction := crud.ParseAction(requestutil.Form(request, "action")); isAction {
		draft := resource.Apply(resource.DecodeForEditing(request.PostForm), action)
		handler.renderForm(writer, request, panel, TabAdd, "", draft, nil, http.StatusOK, nil)
		return
	}

	// 2. Upload, then submit
	draft := resource.Decode(request.PostForm)
	err := panel.Attach(request.Context(), draft, requestutil.Files(request))
	if err == nil {
		err = panel.SubmitAdd(request.Context(), draft)
	}
	if err != nil {
		handler.formFailed(writer, request, panel, TabAdd, "", draft, err, "add")
		return
	}

	handler.flash(writer, request, render.Success(resource.SuccessMessage("add")))
	render.Redirect(writer, request, tabURL(resource, TabAdd, nil))
}

/*
edit updates an item.

POST /admin/manage-{resource}/edit/{id}

Response:
  - 200: Draft with one more or one fewer row (row actions)
  - 303: Edit tab on the same item with a success toast
  - 400: Form again with field errors
*/
func (handler *Handler) edit(writer http.ResponseWriter, request *http.Request) {
	panel, ok := handler.panel(writer, request)
	if !ok {
		return
	}
	resource := panel.Resource()
	id := requestutil.Param(request, "id")

	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.formFailed(writer, request, panel, TabEdit, id, panel.Draft(), err, "update")
		return
	}

	if action, isAction := crud.ParseAction(requestutil.Form(request, "action")); isAction {
		draft := resource.Apply(resource.DecodeForEditing(request.PostForm), action)
		draft["_id"] = id
		panel.SetDraft(draft)
		handler.renderForm(writer, request, panel, TabEdit, id, draft, nil, http.StatusOK, nil)
		return
	}

	draft := resource.Decode(request.PostForm)
	err := panel.Attach(request.Context(), draft, requestutil.Files(request))
	if err == nil {
		err = panel.SubmitEdit(request.Context(), id, draft)
	}
	if err != nil {
		draft["_id"] = id
		handler.formFailed(writer, request, panel, TabEdit, id, draft, err, "update")
		return
	}

	handler.flash(writer, request, render.Success(resource.SuccessMessage("update")))
	render.Redirect(writer, request, tabURL(resource, TabEdit, url.Values{"id": {id}}))
}

/*
confirmDelete asks before deleting.

GET /admin/manage-{resource}/delete/{id}

Response:
  - 200: Confirmation prompt naming the item
  - 404: Item not in the list
*/
func (handler *Handler) confirmDelete(writer http.ResponseWriter, request *http.Request) {
	panel, ok := handler.panel(writer, request)
	if !ok {
		return
	}
	resource := panel.Resource()
	id := requestutil.Param(request, "id")

	if err := panel.Refresh(request.Context(), constants.PanelCacheTTL); err != nil && handler.unauthorized(writer, request, err) {
		return
	}

	item, found := findItem(panel.Items(), id)
	if !found {
		handler.renderer.Error(writer, request, apperr.NotFound(resource.Title))
		return
	}

	handler.renderer.Page(writer, request, http.StatusOK, "admin/confirm", &render.View{
		Title:   "Delete " + resource.Title,
		Section: "admin",
		Data: ConfirmData{
			Heading: "Delete " + resource.Title,
			Label:   resource.ItemLabel(item),
			Prompt:  resource.ConfirmText(),
			Action:  BaseURL(resource) + "/delete/" + url.PathEscape(id),
			Cancel:  tabURL(resource, TabDelete, nil),
		},
	})
}

/*
remove deletes an item after confirmation.

POST /admin/manage-{resource}/delete/{id}

Request:
  - Form: confirm=yes

Response:
  - 303: Delete tab with a toast; the list is pruned locally, not refetched
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	panel, ok := handler.panel(writer, request)
	if !ok {
		return
	}
	resource := panel.Resource()
	back := tabURL(resource, TabDelete, nil)

	if err := requestutil.ParseForm(writer, request); err != nil || requestutil.Form(request, "confirm") != "yes" {
		render.Redirect(writer, request, back)
		return
	}

	if err := panel.Remove(request.Context(), requestutil.Param(request, "id")); err != nil {
		if handler.unauthorized(writer, request, err) {
			return
		}
		handler.logFailure(request, "delete", err)
		handler.flash(writer, request, render.Failure(apperr.Message(err, resource.FailureMessage("delete"))))
		render.Redirect(writer, request, back)
		return
	}

	handler.flash(writer, request, render.Success(resource.SuccessMessage("delete")))
	render.Redirect(writer, request, back)
}

// # Helpers

// panel resolves the resource of the URL into the session's panel.
func (handler *Handler) panel(writer http.ResponseWriter, request *http.Request) (*crud.Panel, bool) {
	resource, found := Lookup(ctxutil.GetResource(request.Context()))
	if !found {
		handler.renderer.Error(writer, request, apperr.NotFound("Page"))
		return nil, false
	}

	current := session.FromContext(request.Context())
	if current == nil {
		render.Redirect(writer, request, "/")
		return nil, false
	}
	return handler.registry.Panel(current.ID, resource), true
}

// panelData assembles the panel page for a tab.
func (handler *Handler) panelData(panel *crud.Panel, tab, id, filter string, draft crud.Record, fieldErrors map[string]string) PanelData {
	resource := panel.Resource()
	if tab != TabEdit {
		id = ""
	}

	data := PanelData{
		Heading:   Heading(resource),
		Resource:  resource,
		Tab:       tab,
		Tabs:      tabBar(resource, tab),
		Selected:  id,
		Multipart: resource.Upload,
		State:     panel.State().String(),
	}

	if tab != TabAdd {
		data.Filter = filterView(resource, filter)
		data.Items = itemViews(resource, panel.Filtered(filter), tab, filter, id)
	}

	switch {
	case tab == TabAdd:
		data.Action = BaseURL(resource) + "/add"
	case tab == TabEdit && id != "":
		data.Action = BaseURL(resource) + "/edit/" + url.PathEscape(id)
	}
	if data.HasForm() {
		data.Inputs = resource.Inputs(draft, fieldErrors)
	}
	return data
}

// renderForm shows the panel with draft in its form.
func (handler *Handler) renderForm(writer http.ResponseWriter, request *http.Request, panel *crud.Panel, tab, id string, draft crud.Record, fieldErrors map[string]string, status int, notice *render.Notice) {
	view := &render.View{Title: "Manage " + Heading(panel.Resource()), Section: "admin"}
	if notice != nil {
		view.AddNotice(*notice)
	}
	view.Data = handler.panelData(panel, tab, id, "", draft, fieldErrors)
	handler.renderer.Page(writer, request, status, "admin/panel", view)
}

// formFailed handles a failed add or update: 401 ends the session, anything
// else shows the form again with the submitted values.
func (handler *Handler) formFailed(writer http.ResponseWriter, request *http.Request, panel *crud.Panel, tab, id string, draft crud.Record, err error, operation string) {
	if handler.unauthorized(writer, request, err) {
		return
	}
	resource := panel.Resource()

	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.Internal(err)
	}
	handler.logFailure(request, operation, err)

	notice := render.Failure(apperr.Message(err, resource.FailureMessage(operation)))
	handler.renderForm(writer, request, panel, tab, id, draft, appError.FieldMap(), appError.HTTPStatus, &notice)
}

// unauthorized ends the session when err is a 401 from the API and reports whether it did.
func (handler *Handler) unauthorized(writer http.ResponseWriter, request *http.Request, err error) bool {
	if !backend.IsUnauthorized(err) {
		return false
	}

	ctx := request.Context()
	ctxutil.GetLogger(ctx).InfoContext(ctx, "admin_session_rejected", slog.String("path", request.URL.Path))

	if destroyErr := handler.sessions.Destroy(writer, request, render.Failure(session.MessageExpired)); destroyErr != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_destroy_failed", slog.Any("error", destroyErr))
	}
	render.Redirect(writer, request, "/")
	return true
}

func (handler *Handler) flash(writer http.ResponseWriter, request *http.Request, notice render.Notice) {
	if err := handler.sessions.Flash(writer, request, notice); err != nil {
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "session_flash_failed", slog.Any("error", err))
	}
}

func (handler *Handler) logFailure(request *http.Request, operation string, err error) {
	ctx := request.Context()
	level := slog.LevelWarn
	if appError := apperr.As(err); appError == nil || appError.HTTPStatus >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	ctxutil.GetLogger(ctx).Log(ctx, level, "admin_operation_failed",
		slog.String("operation", operation),
		slog.Any("error", err),
	)
}

func findItem(items []crud.Record, id string) (crud.Record, bool) {
	for _, item := range items {
		if item.ID() == id {
			return item, true
		}
	}
	return nil, false
}
