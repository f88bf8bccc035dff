// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns created by ./migrations.
package schema

// SessionTable represents the 'sessions' table
type SessionTable struct {
	Table     string
	ID        string
	Payload   string
	PurgeAt   string
	CreatedAt string
	UpdatedAt string
}

// Session is the schema definition for sessions
var Session = SessionTable{
	Table:     "sessions",
	ID:        "id",
	Payload:   "payload",
	PurgeAt:   "purge_at",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

// Columns returns all standard column names
func (t SessionTable) Columns() []string {
	return []string{t.ID, t.Payload, t.PurgeAt, t.CreatedAt, t.UpdatedAt}
}
