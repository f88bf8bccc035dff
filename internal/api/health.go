// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/respond"
)

// Check is one named readiness probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {

	// CheckBackend pings the content API. It is always present.
	CheckBackend func(ctx context.Context) error

	// Stores are the session store connections in use (redis or postgres), if any.
	Stores []Check
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// checkResult is the outcome of one probe.
type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// readiness handles GET /ready (Readiness probe).
//
// The site is ready when the content API answers and the session store is
// reachable. Anything else answers 503 with the failing checks.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	checks := make([]Check, 0, len(handler.dependencies.Stores)+1)
	if handler.dependencies.CheckBackend != nil {
		checks = append(checks, Check{Name: "backend", Probe: handler.dependencies.CheckBackend})
	}
	checks = append(checks, handler.dependencies.Stores...)

	results := make([]checkResult, 0, len(checks))
	isSystemReady := true

	for _, check := range checks {
		result := checkResult{Name: check.Name, IsOK: true}
		if err := check.Probe(ctx); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.ErrorContext(ctx, "readiness_check_failed", slog.String("dependency", check.Name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	responseStatus := "ready"
	httpStatus := http.StatusOK
	if !isSystemReady {
		responseStatus = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: responseStatus,
		constants.FieldChecks: results,
	}})
}
