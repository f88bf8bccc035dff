// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides page-based slicing for list pages.
//
// # Overview
//
// The content API returns whole collections; long public lists (the blog) are
// paged in process. Page numbers are 1-indexed and clamped into range.
package pagination

const (
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Meta is the pagination metadata handed to templates.
type Meta struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (m Meta) HasPrev() bool { return m.Page > 1 }

// HasNext reports whether a next page exists.
func (m Meta) HasNext() bool { return m.Page < m.TotalPages }

// Prev returns the previous page number.
func (m Meta) Prev() int { return m.Page - 1 }

// Next returns the next page number.
func (m Meta) Next() int { return m.Page + 1 }

// Pages lists every page number, for numbered links.
func (m Meta) Pages() []int {
	pages := make([]int, m.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// NewMeta constructs pagination metadata, clamping page into [1, TotalPages].
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	if page < DefaultPage {
		page = DefaultPage
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first item on the page.
func (m Meta) Offset() int {
	if m.Page <= 1 {
		return 0
	}
	return (m.Page - 1) * m.Limit
}

// Paginate returns the items of the requested page along with its metadata.
func Paginate[T any](items []T, page, limit int) ([]T, Meta) {
	meta := NewMeta(page, limit, len(items))
	if limit <= 0 {
		return items, meta
	}

	start := meta.Offset()
	if start >= len(items) {
		return []T{}, meta
	}
	end := min(start+limit, len(items))
	return items[start:end], meta
}
