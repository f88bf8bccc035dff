// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/taibuivan/scholar/internal/platform/apperr"
)

var (
	// ErrUnauthorized is returned for every 401 on a protected call.
	ErrUnauthorized = apperr.Unauthorized("Session expired. Please log in.")

	// ErrInvalidCredentials is returned by Login when the API refuses the credentials.
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")
)

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// statusError maps a non-2xx status and body onto an application error.
func statusError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return apperr.NotFound("Resource")
	}

	// An empty message lets callers substitute their own fallback text
	return apperr.Upstream(status, serverMessage(body))
}

// serverMessage extracts a human-readable message from common error bodies.
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "msg"} {
		if text, ok := payload[key].(string); ok && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return ""
}
