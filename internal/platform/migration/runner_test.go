// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/scholar/internal/platform/migration"
)

/*
TestToPgx5DSN checks the scheme rewrite expected by the pgx/v5 migrate driver.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/scholar", "pgx5://u:p@db:5432/scholar"},
		{"postgresql://u@db/scholar?sslmode=disable", "pgx5://u@db/scholar?sslmode=disable"},
		{"pgx5://u@db/scholar", "pgx5://u@db/scholar"},
		{"host=db user=u dbname=scholar", "host=db user=u dbname=scholar"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
	}
}

/*
TestSource_Embedded lists the session migrations compiled into the binary.
*/
func TestSource_Embedded(t *testing.T) {
	files, err := migration.Source("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = files.Close() })

	first, err := files.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, identifier, err := files.ReadUp(first)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "sessions", identifier)

	body, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS sessions")
}

/*
TestSource_Directory reads the same files from disk.
*/
func TestSource_Directory(t *testing.T) {
	files, err := migration.Source("../../../migrations")
	require.NoError(t, err)
	t.Cleanup(func() { _ = files.Close() })

	_, err = files.Next(1)
	assert.Error(t, err, "only one migration exists")

	_, err = migration.Source(t.TempDir() + "/missing")
	assert.Error(t, err)
}
