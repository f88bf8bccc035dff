// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package render turns page data into HTML responses.

Every page is parsed once at startup from the embedded template tree as its own
template set: the shared layout, every partial, and the page file itself. Pages
only define the blocks "title" and "content", so two pages never collide on a
block name.

Architecture:

  - View: the envelope every template receives (notices, session state, CSRF field, page data).
  - Decorators: hooks that fill the envelope per request (session, site profile).
  - Errors: [apperr.AppError] statuses map onto the shared error page.
*/
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/ctxutil"
)

// Notice kinds, mirrored by CSS classes in the layout.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// Notice is a transient message shown as a toast.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Success builds a success notice.
func Success(message string) Notice { return Notice{Kind: NoticeSuccess, Message: message} }

// Failure builds an error notice.
func Failure(message string) Notice { return Notice{Kind: NoticeError, Message: message} }

// Info builds an informational notice.
func Info(message string) Notice { return Notice{Kind: NoticeInfo, Message: message} }

// View is the data every template is executed with.
type View struct {
	Title   string
	Section string
	Path    string

	Notices       []Notice
	Authenticated bool

	// ExpiresIn is the number of seconds until the admin session ends; zero disables the refresh.
	ExpiresIn int

	// Refresh, when set, reloads the page after a delay (carousel auto-advance).
	Refresh *Refresh

	CSRFField   template.HTML
	ToastMillis int64

	Site any
	Data any
}

// AddNotice appends a notice to the view.
func (view *View) AddNotice(notice Notice) {
	view.Notices = append(view.Notices, notice)
}

// ExpiredURL is where an admin page sends the browser once the session ends.
const ExpiredURL = "/login?expired=1"

// Refresh is a meta refresh to URL after Seconds.
type Refresh struct {
	Seconds int
	URL     string
}

// Content is the value of the meta refresh content attribute.
func (refresh *Refresh) Content() string {
	return fmt.Sprintf("%d;url=%s", refresh.Seconds, refresh.URL)
}

// MetaRefresh returns whichever reload comes first: the page's own refresh or
// the end of the admin session.
func (view *View) MetaRefresh() *Refresh {
	var expiry *Refresh
	if view.Authenticated && view.ExpiresIn > 0 {
		expiry = &Refresh{Seconds: view.ExpiresIn, URL: ExpiredURL}
	}

	switch {
	case view.Refresh == nil:
		return expiry
	case expiry == nil || view.Refresh.Seconds < expiry.Seconds:
		return view.Refresh
	default:
		return expiry
	}
}

// Tab is one entry of a tab bar.
type Tab struct {
	Label  string
	URL    string
	Active bool
}

// Decorator fills request-scoped parts of a [View] before execution.
type Decorator func(writer http.ResponseWriter, request *http.Request, view *View)

// Renderer executes pre-parsed page templates.
type Renderer struct {
	pages      map[string]*template.Template
	decorators []Decorator
}

// New parses every page under pages/ of files, each combined with
// layouts/*.html and partials/*.html.
func New(files fs.FS, funcs template.FuncMap) (*Renderer, error) {
	shared := []string{"layouts/*.html", "partials/*.html"}

	pageFiles, err := fs.Glob(files, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: glob pages: %w", err)
	}
	adminFiles, err := fs.Glob(files, "pages/admin/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: glob admin pages: %w", err)
	}

	renderer := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range append(pageFiles, adminFiles...) {
		name := strings.TrimSuffix(strings.TrimPrefix(file, "pages/"), path.Ext(file))

		patterns := append(append([]string{}, shared...), file)
		page, err := template.New(path.Base(file)).Funcs(funcs).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", file, err)
		}
		renderer.pages[name] = page
	}

	if len(renderer.pages) == 0 {
		return nil, errors.New("render: no page templates found")
	}
	return renderer, nil
}

// Use registers a decorator, applied in registration order.
func (renderer *Renderer) Use(decorator Decorator) {
	renderer.decorators = append(renderer.decorators, decorator)
}

// Has reports whether a page template exists.
func (renderer *Renderer) Has(name string) bool {
	_, ok := renderer.pages[name]
	return ok
}

// Page renders the named page with the given status.
//
// The page is executed into a buffer first so that a template failure still
// produces a clean 500 instead of a half-written document.
func (renderer *Renderer) Page(writer http.ResponseWriter, request *http.Request, status int, name string, view *View) {
	page, ok := renderer.pages[name]
	if !ok {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "template_missing", slog.String("page", name))
		http.Error(writer, "template not found", http.StatusInternalServerError)
		return
	}

	// 1. Fill the request-scoped envelope
	if view == nil {
		view = &View{}
	}
	view.Path = request.URL.Path
	view.ToastMillis = constants.ToastDuration.Milliseconds()
	for _, decorate := range renderer.decorators {
		decorate(writer, request, view)
	}

	// 2. Execute into a buffer
	var buffer bytes.Buffer
	if err := page.ExecuteTemplate(&buffer, "layout", view); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "template_execute_failed",
			slog.String("page", name),
			slog.Any("error", err),
		)
		http.Error(writer, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	// 3. Flush
	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.Header().Set("Cache-Control", "no-store")
	writer.WriteHeader(status)
	_, _ = buffer.WriteTo(writer)
}

// ErrorData is the page data of the shared error page.
type ErrorData struct {
	Status  int
	Message string
}

// Error renders the shared error page for err, using the status of its
// [apperr.AppError] (500 for anything else).
func (renderer *Renderer) Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "page_server_error",
			slog.String("code", appError.Code),
			slog.Any("cause", appError.Cause),
		)
	}

	renderer.Page(writer, request, appError.HTTPStatus, "error", &View{
		Title: http.StatusText(appError.HTTPStatus),
		Data:  ErrorData{Status: appError.HTTPStatus, Message: appError.Message},
	})
}

// Redirect issues a 303 See Other, the only redirect used after form posts.
func Redirect(writer http.ResponseWriter, request *http.Request, target string) {
	http.Redirect(writer, request, target, http.StatusSeeOther)
}
