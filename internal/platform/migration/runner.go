// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the session table schema with golang-migrate.
//
// Migrations run at startup only when SESSION_STORE=postgres, before the
// server accepts traffic. The SQL files are embedded in the binary; setting
// MIGRATION_PATH reads them from disk instead.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/taibuivan/scholar/migrations"
)

// Source opens the migration files: the embedded set when path is empty,
// otherwise the directory at path.
func Source(path string) (source.Driver, error) {
	if path == "" {
		driver, err := iofs.New(migrations.FS, ".")
		if err != nil {
			return nil, fmt.Errorf("migration: open embedded set: %w", err)
		}
		return driver, nil
	}

	driver, err := (&file.File{}).Open("file://" + path)
	if err != nil {
		return nil, fmt.Errorf("migration: open %s: %w", path, err)
	}
	return driver, nil
}

/*
RunUp applies all pending UP migrations.

 1. Open the source and the database.
 2. Refuse to run over a dirty version.
 3. Apply what is pending and log the version change.
*/
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	files, err := Source(migrationsPath)
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithSourceInstance("scholar", files, ToPgx5DSN(dsn))
	if err != nil {
		_ = files.Close()
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceError, dbError := migrator.Close()
		if sourceError != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
		}
		if dbError != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbError))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	currentVersion, isDirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}
	if isDirty {
		return fmt.Errorf("migration: sessions schema is dirty at version %d (fix it by hand, then force the version)", currentVersion)
	}

	origin := "embedded"
	if migrationsPath != "" {
		origin = migrationsPath
	}
	logger.Info("migration_started", slog.String("source", origin), slog.Int("current_version", int(currentVersion)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	logger.Info("migration_successful",
		slog.Int("from_version", int(currentVersion)),
		slog.Int("to_version", int(newVersion)),
	)
	return nil
}

// ToPgx5DSN rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// registered by the golang-migrate pgx/v5 driver. Other DSNs pass through.
func ToPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger routes golang-migrate's output through slog.
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_log", slog.String("line", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l *migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
