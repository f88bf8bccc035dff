// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crud

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one loosely typed document as the content API returns it.
type Record map[string]any

// ID returns the record's "_id", or "" when absent.
func (record Record) ID() string {
	return record.Text("_id")
}

// Text returns the field as a display string. Numbers decoded from JSON keep
// their integer form ("2021", not "2021.000000").
func (record Record) Text(key string) string {
	switch value := record[key].(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	default:
		return fmt.Sprint(value)
	}
}

// Int returns the field as an integer, or 0 when absent or not numeric.
func (record Record) Int(key string) int {
	number, err := strconv.Atoi(strings.TrimSpace(record.Text(key)))
	if err != nil {
		return 0
	}
	return number
}

// Rows returns a sub-document array such as "buyLinks" as plain maps.
// Entries that are not objects are skipped.
func (record Record) Rows(key string) []map[string]any {
	raw, ok := record[key].([]any)
	if !ok {
		if typed, ok := record[key].([]map[string]any); ok {
			return typed
		}
		return nil
	}

	rows := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if row, ok := entry.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// Clone returns a deep copy, so drafts never alias the list cache.
func (record Record) Clone() Record {
	if record == nil {
		return nil
	}
	return cloneValue(map[string]any(record)).(map[string]any)
}

// Without returns a copy with the given keys removed.
func (record Record) Without(keys ...string) Record {
	copied := record.Clone()
	if copied == nil {
		copied = Record{}
	}
	for _, key := range keys {
		delete(copied, key)
	}
	return copied
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(typed))
		for key, inner := range typed {
			copied[key] = cloneValue(inner)
		}
		return copied
	case Record:
		return cloneValue(map[string]any(typed))
	case []any:
		copied := make([]any, len(typed))
		for index, inner := range typed {
			copied[index] = cloneValue(inner)
		}
		return copied
	case []map[string]any:
		copied := make([]any, len(typed))
		for index, inner := range typed {
			copied[index] = cloneValue(inner)
		}
		return copied
	default:
		return value
	}
}

// cell renders a row cell the same way [Record.Text] renders a field.
func cell(row map[string]any, key string) string {
	return Record(row).Text(key)
}

// blank reports whether every cell of a row is empty.
func blank(row map[string]any) bool {
	for key := range row {
		if strings.TrimSpace(cell(row, key)) != "" {
			return false
		}
	}
	return true
}
