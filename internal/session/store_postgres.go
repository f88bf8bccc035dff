// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/scholar/internal/platform/database/schema"
	"github.com/taibuivan/scholar/internal/platform/dberr"
)

// Querier is the subset of *pgxpool.Pool the PostgreSQL store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the `sessions` table created by the
// migrations under ./migrations.
type PostgresStore struct {
	pool Querier
}

// NewPostgresStore creates a PostgreSQL-backed Store.
func NewPostgresStore(pool Querier) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Get retrieves a session that has not reached its purge time.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Session: Decoded session
  - error: ErrNotFound or connectivity errors
*/
func (repository *PostgresStore) Get(context context.Context, id string) (*Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s > now()`,
		schema.Session.Payload,
		schema.Session.Table,
		schema.Session.ID,
		schema.Session.PurgeAt,
	)

	var payload []byte
	if err := repository.pool.QueryRow(context, query, id).Scan(&payload); err != nil {
		return nil, dberr.Wrap(err, "postgres_session_get_failed", ErrNotFound)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("postgres_session_decode_failed: %w", err)
	}
	return &session, nil
}

/*
Save upserts the session and moves its purge time to now + ttl.

Parameters:
  - context: context.Context
  - session: *Session
  - ttl: time.Duration

Returns:
  - error: Encoding or database failures
*/
func (repository *PostgresStore) Save(context context.Context, session *Session, ttl time.Duration) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (%[2]s) DO UPDATE
		SET %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s, %[6]s = now()`,
		schema.Session.Table,
		schema.Session.ID,
		schema.Session.Payload,
		schema.Session.PurgeAt,
		schema.Session.CreatedAt,
		schema.Session.UpdatedAt,
	)

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("postgres_session_encode_failed: %w", err)
	}

	_, err = repository.pool.Exec(context, query, session.ID, payload, time.Now().Add(ttl), session.CreatedAt)
	return dberr.Wrap(err, "postgres_session_save_failed", nil)
}

// Delete removes the row.
func (repository *PostgresStore) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Session.Table, schema.Session.ID)

	_, err := repository.pool.Exec(context, query, id)
	return dberr.Wrap(err, "postgres_session_delete_failed", nil)
}

// Purge deletes every row past its purge time.
func (repository *PostgresStore) Purge(context context.Context) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= now()`, schema.Session.Table, schema.Session.PurgeAt)

	tag, err := repository.pool.Exec(context, query)
	if err != nil {
		return 0, dberr.Wrap(err, "postgres_session_purge_failed", nil)
	}
	return int(tag.RowsAffected()), nil
}
