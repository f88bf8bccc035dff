// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil reads and writes the request-scoped values of [context.Context].
//
// Session values have their own accessors in the session package so that this
// package stays free of domain imports.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/scholar/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID attaches the correlation ID of the request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the correlation ID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the request logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Console Scope

// WithResource records the console resource of the request and tags every
// later log line of the request with it.
func WithResource(ctx context.Context, name string) context.Context {
	ctx = context.WithValue(ctx, ctxkey.KeyResource, name)
	return WithLogger(ctx, GetLogger(ctx).With(slog.String("resource", name)))
}

// GetResource returns the console resource, or "" outside the console.
func GetResource(ctx context.Context) string {
	name, _ := ctx.Value(ctxkey.KeyResource).(string)
	return name
}
