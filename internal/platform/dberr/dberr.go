// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// the errors the stores return.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Wrap classifies a database error.
//
// A query that matched no row becomes notFound; anything else is annotated with
// action and keeps its cause for [errors.Is].
func Wrap(err error, action string, notFound error) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}

	// 2. Everything else is a store failure
	return fmt.Errorf("%s: %w", action, err)
}
