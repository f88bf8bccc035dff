// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond writes the answers that never go through the template set:
// health probes, readiness, and the rejections of the rate limiter and the
// panic guard, which run before a page could be rendered.
//
// Probes and scripts get a JSON envelope. Browsers (Accept: text/html) get a
// bare HTML page with the same message and a link home.
package respond

import (
	"encoding/json"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/ctxutil"
)

// SuccessEnvelope is the JSON envelope for successful responses.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	RequestID string              `json:"request_id,omitempty"`
	Details   []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes payload with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 with data in the success envelope.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Error answers with err, as HTML or JSON depending on the Accept header.
// Errors that are not an [apperr.AppError] are logged and reported as a 500
// without their details.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger.ErrorContext(ctx, "unhandled_error_swallowed", slog.String("error", err.Error()))
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "server_error",
			slog.String("code", appError.Code),
			slog.Any("cause", appError.Cause),
		)
	}

	if WantsHTML(request) {
		page(writer, appError)
		return
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:     appError.Message,
		Code:      appError.Code,
		RequestID: ctxutil.GetRequestID(ctx),
		Details:   appError.Details,
	})
}

// WantsHTML reports whether the client prefers an HTML page.
func WantsHTML(request *http.Request) bool {
	return strings.Contains(request.Header.Get("Accept"), "text/html")
}

func page(writer http.ResponseWriter, appError *apperr.AppError) {
	title := http.StatusText(appError.HTTPStatus)
	if title == "" {
		title = "Error"
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(appError.HTTPStatus)
	_, _ = writer.Write([]byte("<!doctype html><title>" + html.EscapeString(title) + "</title>" +
		"<h1>" + html.EscapeString(title) + "</h1>" +
		"<p>" + html.EscapeString(appError.Message) + "</p>" +
		"<p><a href=\"/\">Back to home</a></p>"))
}
