// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects the shared session store.

Several web processes behind a load balancer must see the same admin sessions,
so SESSION_STORE=redis keeps them in one Redis keyspace under
[constants.RedisPrefixSession], each key expiring with its session.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/scholar/internal/platform/constants"
)

// Connection limits. Session traffic is one GET per page view plus one SET per
// flash, login or logout.
const (
	poolSize     = 5
	minIdleConns = 1
	maxIdleConns = 3

	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	pingTimeout = 2 * time.Second
)

// NewClient connects to redisURL and pings it once before returning.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid REDIS_URL: %w", err)
	}

	options.ClientName = constants.AppName
	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.MaxIdleConns = maxIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = ioTimeout
	options.WriteTimeout = ioTimeout

	client := redis.NewClient(options)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("session_store_connected",
		slog.String("store", "redis"),
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.String("key_prefix", constants.RedisPrefixSession),
	)
	return client, nil
}

// Ping checks the connection within a short deadline.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}

// Probe binds [Ping] to client for the readiness endpoint.
func Probe(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		return Ping(ctx, client)
	}
}
