// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey defines the typed context keys shared by middleware, the
// session layer and the console handlers.
package ctxkey

// key is unexported so that no other package can collide with these values.
type key string

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeySession carries the visitor's session record.
	KeySession key = "session"

	// KeyLogger carries the request-scoped [*log/slog.Logger].
	KeyLogger key = "logger"

	// KeyResource carries the name of the console resource a request targets.
	KeyResource key = "admin_resource"
)
