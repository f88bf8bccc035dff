// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/ctxutil"
	"github.com/taibuivan/scholar/internal/platform/render"
	requestutil "github.com/taibuivan/scholar/internal/platform/request"
	"github.com/taibuivan/scholar/internal/session"
)

// Notice texts.
const (
	MessageLoggedIn     = "Logged in successfully!"
	MessageLoggedOut    = "You have been logged out."
	MessageFeedbackSent = "Thank you! Your feedback has been sent."
	MessageFeedbackFail = "Failed to send feedback. Please try again."
	MessageLoginFail    = "Login failed. Please try again."
)

// # Definitions & Constructors

// Handler serves the login, logout and feedback endpoints.
type Handler struct {
	service  *Service
	sessions *session.Manager
	renderer *render.Renderer
	throttle func(http.Handler) http.Handler
}

// NewHandler constructs a [Handler]. throttle guards credential submissions.
func NewHandler(service *Service, sessions *session.Manager, renderer *render.Renderer, throttle func(http.Handler) http.Handler) *Handler {
	if throttle == nil {
		throttle = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{service: service, sessions: sessions, renderer: renderer, throttle: throttle}
}

// RegisterRoutes mounts the public endpoints.
//
// # Endpoints
//   - GET  /login    : Login form.
//   - POST /login    : Exchanges credentials for an admin session (throttled).
//   - POST /feedback : Forwards a visitor message; never authenticates.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/login", handler.loginForm)
	router.With(handler.throttle).Post("/login", handler.login)
	router.Post("/feedback", handler.feedback)
}

// LoginData is the page data of the login form.
type LoginData struct {
	Email  string
	Errors map[string]string
}

/*
loginForm renders the login page.

GET /login

Response:
  - 200: Login form (with an expiry notice when ?expired=1)
  - 303: /admin when already authenticated
*/
func (handler *Handler) loginForm(writer http.ResponseWriter, request *http.Request) {
	if session.FromContext(request.Context()).IsAuthenticated() {
		render.Redirect(writer, request, "/admin")
		return
	}

	view := &render.View{Title: "Admin Login", Section: "login", Data: LoginData{}}
	if requestutil.Query(request, "expired") != "" {
		view.AddNotice(render.Info(session.MessageExpired))
	}
	handler.renderer.Page(writer, request, http.StatusOK, "login", view)
}

/*
login authenticates the administrator.

POST /login

Request:
  - Form: email, password

Response:
  - 303: /admin with a fresh session
  - 401: Form again, invalid credentials
  - 400: Form again, field errors
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.loginFailed(writer, request, "", err)
		return
	}

	input := LoginInput{
		Email:    requestutil.Form(request, FieldEmail),
		Password: request.PostFormValue(FieldPassword),
	}

	grant, err := handler.service.Login(request.Context(), input)
	if err != nil {
		handler.loginFailed(writer, request, input.Email, err)
		return
	}

	if _, err := handler.sessions.Begin(writer, request, grant.Token, grant.ExpiresAt, render.Success(MessageLoggedIn)); err != nil {
		handler.loginFailed(writer, request, input.Email, apperr.Internal(err))
		return
	}

	ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "admin_login_succeeded",
		slog.String("subject", grant.Subject),
		slog.Time("expires_at", grant.ExpiresAt),
	)

	render.Redirect(writer, request, "/admin")
}

func (handler *Handler) loginFailed(writer http.ResponseWriter, request *http.Request, email string, err error) {
	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "admin_login_failed", slog.Any("error", err))
	} else {
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "admin_login_rejected", slog.String("code", appError.Code))
	}

	view := &render.View{
		Title:   "Admin Login",
		Section: "login",
		Data:    LoginData{Email: email, Errors: appError.FieldMap()},
	}
	view.AddNotice(render.Failure(apperr.Message(err, MessageLoginFail)))
	handler.renderer.Page(writer, request, appError.HTTPStatus, "login", view)
}

/*
feedback forwards a visitor message.

POST /feedback

Request:
  - Form: email, message

Response:
  - 303: back to the home page's feedback section with a notice
*/
func (handler *Handler) feedback(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	notice := render.Success(MessageFeedbackSent)

	err := requestutil.ParseForm(writer, request)
	if err == nil {
		err = handler.service.SendFeedback(ctx, FeedbackInput{
			Email:   requestutil.Form(request, FieldEmail),
			Message: requestutil.Form(request, FieldMessage),
		})
	}

	if err != nil {
		message := apperr.Message(err, MessageFeedbackFail)
		if appError := apperr.As(err); appError != nil && len(appError.Details) > 0 {
			message = appError.Details[0].Message
			if appError.Details[0].Field == FieldEmail {
				message = "Email: " + message
			} else {
				message = "Message: " + message
			}
		}
		// The feedback endpoint has nothing to do with the admin session
		if errors.Is(err, backend.ErrUnauthorized) {
			message = MessageFeedbackFail
		}
		ctxutil.GetLogger(ctx).WarnContext(ctx, "feedback_failed", slog.Any("error", err))
		notice = render.Failure(message)
	}

	if err := handler.sessions.Flash(writer, request, notice); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_flash_failed", slog.Any("error", err))
	}
	render.Redirect(writer, request, "/#feedback")
}

/*
Logout ends the admin session.

POST /admin/logout

Response:
  - 303: / with a notice
*/
func (handler *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	if err := handler.sessions.Destroy(writer, request, render.Info(MessageLoggedOut)); err != nil {
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "session_destroy_failed", slog.Any("error", err))
	}
	render.Redirect(writer, request, "/")
}
