// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and the form
parsing used by every admin and public POST handler, ensuring consistent error
handling and size limits.
*/
package requestutil

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/validate"
)

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Query returns the trimmed value of a query-string parameter.
*/
func Query(request *http.Request, name string) string {
	return strings.TrimSpace(request.URL.Query().Get(name))
}

/*
QueryInt parses an integer query parameter, returning fallback when it is
missing, malformed, or below one.
*/
func QueryInt(request *http.Request, name string, fallback int) int {
	raw := Query(request, name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

/*
ParseForm parses a urlencoded or multipart body.

Multipart bodies are capped at [constants.MaxUploadBytes]; anything above that
is rejected with validate.ErrInvalidForm.

Returns:
  - error: validate.ErrInvalidForm if parsing fails, otherwise nil
*/
func ParseForm(writer http.ResponseWriter, request *http.Request) error {
	contentType := request.Header.Get("Content-Type")

	// 1. Multipart (forms with an image field)
	if strings.HasPrefix(contentType, "multipart/form-data") {
		request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBytes)
		if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
			return validate.ErrInvalidForm
		}
		return nil
	}

	// 2. Plain urlencoded forms
	if err := request.ParseForm(); err != nil {
		return validate.ErrInvalidForm
	}
	return nil
}

/*
Form returns the trimmed value of a parsed form field.
*/
func Form(request *http.Request, name string) string {
	return strings.TrimSpace(request.PostFormValue(name))
}

/*
Files returns the first non-empty uploaded file of every multipart field.
*/
func Files(request *http.Request) map[string]*multipart.FileHeader {
	files := map[string]*multipart.FileHeader{}
	if request.MultipartForm == nil {
		return files
	}
	for name, headers := range request.MultipartForm.File {
		if len(headers) > 0 && headers[0].Size > 0 {
			files[name] = headers[0]
		}
	}
	return files
}
