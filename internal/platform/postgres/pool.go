// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres connects the durable session store.
//
// Content is owned by the external REST API; the only table this process
// touches is `sessions`, created by ./migrations.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/scholar/internal/platform/constants"
)

// Pool limits for single-row session lookups.
const (
	maxConns          = 8
	minConns          = 1
	maxConnLifetime   = time.Hour
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// Pinger is the part of *pgxpool.Pool the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPool opens the pool and pings it once before returning.
//
// # Parameters
//   - ctx: bounds the first connection attempt.
//   - dsn: DATABASE_URL, a postgres:// URL or libpq string.
//   - logger: receives the connection event.
func NewPool(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DATABASE_URL: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	poolConfig.ConnConfig.RuntimeParams["application_name"] = constants.AppName

	// A session query slower than a whole request is a fault, not a wait.
	poolConfig.AfterConnect = func(ctx context.Context, connection *pgx.Conn) error {
		statement := fmt.Sprintf("SET statement_timeout = '%dms'", constants.GlobalRequestTimeout.Milliseconds())
		_, err := connection.Exec(ctx, statement)
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool: %w", err)
	}
	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("session_store_connected",
		slog.String("store", "postgres"),
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(poolConfig.MaxConns)),
	)
	return pool, nil
}

// Ping checks the pool within a short deadline.
func Ping(ctx context.Context, pool Pinger) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}

// Probe binds [Ping] to pool for the readiness endpoint.
func Probe(pool Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		return Ping(ctx, pool)
	}
}
