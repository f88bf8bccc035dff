// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/internal/platform/ctxutil"
)

// # Dependencies

// Backend is the subset of the content API client a panel needs.
type Backend interface {
	Get(ctx context.Context, path string, out any) error
	Create(ctx context.Context, path, token string, body, out any) error
	Update(ctx context.Context, path, token string, body, out any) error
	Delete(ctx context.Context, path, token string) error
	Upload(ctx context.Context, token, filename string, content io.Reader) (string, error)
}

// TokenSource returns the bearer token of the caller. It is consulted on every
// mutating call, never cached by the panel.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken is a TokenSource for a fixed token (CLI use).
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		if token == "" {
			return "", backend.ErrUnauthorized
		}
		return token, nil
	}
}

// Observer records the outcome of every panel operation.
type Observer interface {
	ObservePanelOperation(resource, operation string, err error)
}

// # Panel

// Panel is the working state of one admin resource for one session.
type Panel struct {
	resource *Resource
	backend  Backend
	tokens   TokenSource
	observer Observer

	mu        sync.Mutex
	state     State
	items     []Record
	draft     Record
	fetchedAt time.Time
	usedAt    time.Time
}

// NewPanel creates an idle panel with an empty cache. observer may be nil.
func NewPanel(resource *Resource, api Backend, tokens TokenSource, observer Observer) *Panel {
	return &Panel{
		resource: resource,
		backend:  api,
		tokens:   tokens,
		observer: observer,
		state:    Idle(),
		items:    []Record{},
		usedAt:   time.Now(),
	}
}

// Resource returns the panel's configuration.
func (panel *Panel) Resource() *Resource {
	return panel.resource
}

// # Operations

// List fetches the collection into the cache. On failure the previous cache is kept.
// While a submission is in flight the cache is still refreshed but the state is
// left to the submission.
func (panel *Panel) List(ctx context.Context) error {
	err := panel.run(ctx, "list", func(previous State) (State, error) {
		items, err := panel.fetch(ctx)
		if err != nil {
			return previous, err
		}

		panel.mu.Lock()
		panel.items = items
		panel.fetchedAt = time.Now()
		panel.mu.Unlock()

		// Listing does not abandon a selection in progress
		if previous.Editing() {
			return previous, nil
		}
		return previous.Listed(), nil
	})
	if errors.Is(err, ErrBusy) {
		return panel.peek(ctx)
	}
	return err
}

// Refresh lists only when the cache is older than maxAge.
func (panel *Panel) Refresh(ctx context.Context, maxAge time.Duration) error {
	panel.mu.Lock()
	panel.usedAt = time.Now()
	panel.mu.Unlock()

	if !panel.Stale(maxAge) {
		return nil
	}
	return panel.List(ctx)
}

// SelectForEdit loads item id into the draft. Resources with a DetailKey fetch
// the full record by that key first.
func (panel *Panel) SelectForEdit(ctx context.Context, id string) error {
	return panel.run(ctx, "select", func(previous State) (State, error) {
		item, ok := panel.cached(id)
		if !ok {
			return previous, apperr.NotFound(panel.resource.Title)
		}

		selected := item
		if key := item.Text(panel.resource.DetailKey); panel.resource.DetailKey != "" && key != "" {
			var full Record
			if err := panel.backend.Get(ctx, panel.itemPath(key), &full); err != nil {
				return previous, err
			}
			selected = full
		}

		panel.mu.Lock()
		panel.draft = selected.Clone()
		panel.mu.Unlock()

		return previous.Edit(id), nil
	})
}

// SubmitAdd validates and POSTs draft. On success the list is refreshed and the
// draft cleared; if the refresh fails the created record is appended instead.
func (panel *Panel) SubmitAdd(ctx context.Context, draft Record) error {
	if err := panel.resource.Validate(draft, OpAdd); err != nil {
		panel.keepDraft(draft)
		return err
	}

	return panel.run(ctx, "add", func(previous State) (State, error) {
		panel.keepDraft(draft)

		token, err := panel.token(ctx)
		if err != nil {
			return previous, err
		}

		var created Record
		if err := panel.backend.Create(ctx, panel.resource.Path, token, draft.Without("_id"), &created); err != nil {
			return previous, err
		}

		items, refreshErr := panel.fetch(ctx)

		panel.mu.Lock()
		defer panel.mu.Unlock()

		if refreshErr != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "panel_refresh_failed",
				slog.String("resource", panel.resource.Name),
				slog.Any("error", refreshErr),
			)
			if created.ID() != "" && !panel.contains(created.ID()) {
				panel.items = append(panel.items, created)
			}
		} else {
			panel.items = items
			panel.fetchedAt = time.Now()
		}
		panel.draft = nil

		return previous.Listed(), nil
	})
}

// SubmitEdit validates and PUTs draft to item id. The draft is retained and the
// panel stays on the record.
func (panel *Panel) SubmitEdit(ctx context.Context, id string, draft Record) error {
	if err := panel.resource.Validate(draft, OpEdit); err != nil {
		panel.keepDraft(draft)
		return err
	}

	return panel.run(ctx, "update", func(previous State) (State, error) {
		panel.keepDraft(draft)

		token, err := panel.token(ctx)
		if err != nil {
			return previous, err
		}

		if err := panel.backend.Update(ctx, panel.itemPath(id), token, draft.Without("_id"), nil); err != nil {
			return previous, err
		}

		saved := draft.Clone()
		saved["_id"] = id
		items, refreshErr := panel.fetch(ctx)

		panel.mu.Lock()
		defer panel.mu.Unlock()

		if refreshErr != nil {
			panel.replace(saved)
		} else {
			panel.items = items
			panel.fetchedAt = time.Now()
		}
		panel.draft = saved

		return previous.Edit(id), nil
	})
}

// Remove DELETEs item id and prunes it from the cache without refetching.
func (panel *Panel) Remove(ctx context.Context, id string) error {
	return panel.run(ctx, "delete", func(previous State) (State, error) {
		token, err := panel.token(ctx)
		if err != nil {
			return previous, err
		}

		if err := panel.backend.Delete(ctx, panel.itemPath(id), token); err != nil {
			return previous, err
		}

		panel.mu.Lock()
		defer panel.mu.Unlock()

		panel.items = slices.DeleteFunc(panel.items, func(item Record) bool {
			return item.ID() == id
		})
		if panel.draft.ID() == id {
			panel.draft = nil
		}

		return previous.Listed(), nil
	})
}

// Attach uploads every image file of files and stores the returned URL in draft.
// Fields without a file keep the URL typed into the form.
func (panel *Panel) Attach(ctx context.Context, draft Record, files map[string]*multipart.FileHeader) error {
	if !panel.resource.Upload || len(files) == 0 {
		return nil
	}

	return panel.run(ctx, "upload", func(previous State) (State, error) {
		for _, field := range panel.resource.Fields {
			header, ok := files[field.Name]
			if field.Kind != KindImage || !ok {
				continue
			}

			token, err := panel.token(ctx)
			if err != nil {
				return previous, err
			}

			imageURL, err := panel.upload(ctx, token, header)
			if err != nil {
				return previous, err
			}
			draft[field.Name] = imageURL
		}
		return previous, nil
	})
}

// # Accessors

// Items returns a copy of the cached list.
func (panel *Panel) Items() []Record {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return slices.Clone(panel.items)
}

// Filtered returns the cached items matching the resource's list filter,
// compared without regard to case, in the resource's order. An empty value or
// [FilterAll] keeps everything.
func (panel *Panel) Filtered(value string) []Record {
	items := panel.Items()

	filter := panel.resource.ListFilter
	if filter != nil && value != "" && value != FilterAll {
		items = slices.DeleteFunc(items, func(item Record) bool {
			return !strings.EqualFold(strings.TrimSpace(item.Text(filter.Field)), strings.TrimSpace(value))
		})
	}

	if panel.resource.Order != nil {
		slices.SortStableFunc(items, panel.resource.Order)
	}
	return items
}

// Draft returns a copy of the working draft (nil when empty).
func (panel *Panel) Draft() Record {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.draft.Clone()
}

// SetDraft replaces the working draft, e.g. after a row action.
func (panel *Panel) SetDraft(draft Record) {
	panel.keepDraft(draft)
}

// State returns the current state.
func (panel *Panel) State() State {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.state
}

// Stale reports whether the cache was never filled or is older than maxAge.
func (panel *Panel) Stale(maxAge time.Duration) bool {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.fetchedAt.IsZero() || time.Since(panel.fetchedAt) > maxAge
}

// LastUsed is the start time of the most recent operation.
func (panel *Panel) LastUsed() time.Time {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return panel.usedAt
}

// # Internals

// run moves the panel into Submitting for the duration of body and applies the
// resulting state. A failing body leaves Error(reason).
func (panel *Panel) run(ctx context.Context, operation string, body func(previous State) (State, error)) error {

	// 1. Enter Submitting, refusing concurrent operations
	panel.mu.Lock()
	next, err := panel.state.Begin()
	if err != nil {
		panel.mu.Unlock()
		return err
	}
	previous := panel.state
	panel.state = next
	panel.usedAt = time.Now()
	panel.mu.Unlock()

	// 2. Perform the remote work without holding the lock
	final, err := body(previous)

	// 3. Settle
	panel.mu.Lock()
	if err != nil {
		final = previous.Fail(apperr.Message(err, panel.resource.FailureMessage(operationVerb(operation))))
	}
	panel.state = final
	panel.mu.Unlock()

	if panel.observer != nil {
		panel.observer.ObservePanelOperation(panel.resource.Name, operation, err)
	}
	return err
}

// peek refreshes the cache without touching the state.
func (panel *Panel) peek(ctx context.Context) error {
	items, err := panel.fetch(ctx)
	if panel.observer != nil {
		panel.observer.ObservePanelOperation(panel.resource.Name, "list", err)
	}
	if err != nil {
		return err
	}

	panel.mu.Lock()
	panel.items = items
	panel.fetchedAt = time.Now()
	panel.mu.Unlock()
	return nil
}

func (panel *Panel) fetch(ctx context.Context) ([]Record, error) {
	var items []Record
	if err := panel.backend.Get(ctx, panel.resource.Path, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []Record{}
	}
	return items, nil
}

func (panel *Panel) token(ctx context.Context) (string, error) {
	if panel.tokens == nil {
		return "", backend.ErrUnauthorized
	}
	token, err := panel.tokens(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", backend.ErrUnauthorized
	}
	return token, nil
}

func (panel *Panel) upload(ctx context.Context, token string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("open upload %q: %w", header.Filename, err))
	}
	defer file.Close()

	return panel.backend.Upload(ctx, token, header.Filename, file)
}

func (panel *Panel) itemPath(key string) string {
	return panel.resource.Path + "/" + url.PathEscape(key)
}

func (panel *Panel) cached(id string) (Record, bool) {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	for _, item := range panel.items {
		if item.ID() == id {
			return item, true
		}
	}
	return nil, false
}

// contains and replace expect panel.mu to be held.
func (panel *Panel) contains(id string) bool {
	return slices.ContainsFunc(panel.items, func(item Record) bool { return item.ID() == id })
}

func (panel *Panel) replace(saved Record) {
	for index, item := range panel.items {
		if item.ID() == saved.ID() {
			panel.items[index] = saved
			return
		}
	}
}

func (panel *Panel) keepDraft(draft Record) {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	panel.draft = draft.Clone()
}

// operationVerb maps an operation onto the verb of its fallback notice.
func operationVerb(operation string) string {
	switch operation {
	case "list", "select":
		return "load"
	}
	return operation
}
