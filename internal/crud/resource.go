// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package crud implements the generic admin panel shared by every content resource.

A [Resource] is a configuration object: the backend path, the form schema and a
few presentation hooks. One [Panel] per (session, resource) holds the list cache,
the working draft and the finite state machine that serialises submissions.

Lifecycle:

  - Listing: GET the collection and cache it.
  - Editing: select an item (with an optional secondary fetch by slug) into the draft.
  - Submitting: POST/PUT/DELETE with the bearer token read at call time.

Nothing in this package knows about HTTP handlers or sessions. The admin
package binds panels to requests; the CLI drives them from a terminal.
*/
package crud

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/taibuivan/scholar/internal/platform/validate"
)

// # Schema

// Kind selects the input widget and the decode rule of a field.
type Kind int

const (
	KindText Kind = iota
	KindTextArea
	KindHTML
	KindNumber
	KindURL
	KindSelect
	KindImage
	KindRows
)

// Option is one choice of a select input or list filter.
type Option struct {
	Value string
	Label string
}

// Field describes one input of a resource form.
type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Required    bool
	Placeholder string
	Options     []Option

	// RequiredOnAdd makes the field mandatory only when creating (team member images).
	RequiredOnAdd bool

	// Rows is the cell schema of a [KindRows] field.
	Rows []Field
}

// Widget names the input rendered for the field.
func (field Field) Widget() string {
	switch field.Kind {
	case KindTextArea, KindHTML:
		return "textarea"
	case KindNumber:
		return "number"
	case KindURL:
		return "url"
	case KindSelect:
		return "select"
	case KindImage:
		return "image"
	case KindRows:
		return "rows"
	default:
		return "text"
	}
}

// Rich reports whether the field holds editor HTML.
func (field Field) Rich() bool {
	return field.Kind == KindHTML
}

// Multiline reports whether the field renders as a textarea.
func (field Field) Multiline() bool {
	return field.Kind == KindTextArea || field.Kind == KindHTML
}

// Filter describes the "filter by category/type" select of the edit and delete tabs.
type Filter struct {
	Field   string
	Label   string
	Options []Option
}

// FilterAll is the filter value that keeps every item.
const FilterAll = "All"

// Operation distinguishes the two submit paths for validation.
type Operation int

const (
	OpAdd Operation = iota
	OpEdit
)

// Resource is the configuration of one admin panel.
type Resource struct {
	// Name is the URL segment: /admin/manage-{Name}.
	Name string

	// Title is the singular display name used in notices ("Book", "Team member").
	Title string

	// Path is the backend collection path.
	Path string

	Fields []Field

	// Label renders an item in the selection list. Defaults to the "title" field.
	Label func(Record) string

	// DetailKey, when set, triggers a secondary GET Path/{record[DetailKey]}
	// to obtain the full record before editing.
	DetailKey string

	ListFilter *Filter

	// Order sorts the selection list. Nil keeps the API order.
	Order func(a, b Record) int

	// Upload enables multipart forms and image uploads.
	Upload bool

	// Confirm is the text of the delete confirmation prompt.
	Confirm string
}

// DefaultConfirm is the delete prompt when a resource does not set its own.
const DefaultConfirm = "Are you sure? This action is irreversible."

// ItemLabel renders record for the selection list.
func (resource *Resource) ItemLabel(record Record) string {
	if resource.Label != nil {
		return resource.Label(record)
	}
	if title := record.Text("title"); title != "" {
		return title
	}
	return record.ID()
}

// ConfirmText is the delete confirmation prompt.
func (resource *Resource) ConfirmText() string {
	if resource.Confirm != "" {
		return resource.Confirm
	}
	return DefaultConfirm
}

// Field returns the schema entry called name.
func (resource *Resource) Field(name string) (Field, bool) {
	for _, field := range resource.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// # Notices

// SuccessMessage is the toast after a successful operation ("Book added successfully!").
func (resource *Resource) SuccessMessage(operation string) string {
	return fmt.Sprintf("%s %s successfully!", resource.Title, pastTense(operation))
}

// FailureMessage is the fallback toast when the API gives no reason ("Failed to add book").
func (resource *Resource) FailureMessage(operation string) string {
	return fmt.Sprintf("Failed to %s %s", operation, strings.ToLower(resource.Title))
}

func pastTense(operation string) string {
	switch operation {
	case "add":
		return "added"
	case "update":
		return "updated"
	case "delete":
		return "deleted"
	case "load":
		return "loaded"
	}
	return operation + "ed"
}

// # Decoding

// Decode builds a draft from submitted form values. Rows whose cells are all
// blank are dropped.
func (resource *Resource) Decode(values url.Values) Record {
	return resource.decode(values, false)
}

// DecodeForEditing keeps blank rows, so a draft re-rendered after a row action
// does not lose the row the admin just added.
func (resource *Resource) DecodeForEditing(values url.Values) Record {
	return resource.decode(values, true)
}

func (resource *Resource) decode(values url.Values, keepBlank bool) Record {
	draft := Record{}
	for _, field := range resource.Fields {
		switch field.Kind {
		case KindRows:
			draft[field.Name] = decodeRows(values, field, keepBlank)
		case KindNumber:
			raw := strings.TrimSpace(values.Get(field.Name))
			if number, err := strconv.Atoi(raw); err == nil {
				draft[field.Name] = number
			} else {
				draft[field.Name] = raw
			}
		case KindHTML:
			draft[field.Name] = values.Get(field.Name)
		default:
			draft[field.Name] = strings.TrimSpace(values.Get(field.Name))
		}
	}
	return draft
}

// decodeRows collects "field.{i}.{cell}" keys in index order.
func decodeRows(values url.Values, field Field, keepBlank bool) []any {
	prefix := field.Name + "."
	indexes := []int{}
	for key := range values {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		position, _, found := strings.Cut(rest, ".")
		if !found {
			continue
		}
		index, err := strconv.Atoi(position)
		if err != nil || index < 0 || slices.Contains(indexes, index) {
			continue
		}
		indexes = append(indexes, index)
	}
	slices.Sort(indexes)

	rows := make([]any, 0, len(indexes))
	for _, index := range indexes {
		row := map[string]any{}
		for _, sub := range field.Rows {
			row[sub.Name] = strings.TrimSpace(values.Get(rowKey(field.Name, index, sub.Name)))
		}
		if !keepBlank && blank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func rowKey(field string, index int, sub string) string {
	return field + "." + strconv.Itoa(index) + "." + sub
}

// # Row actions

// Action is an "add row" or "remove row" request carried by the submit button.
type Action struct {
	Kind  string
	Field string
	Index int
}

const (
	ActionAddRow    = "add-row"
	ActionRemoveRow = "remove-row"
)

// ParseAction reads "add-row:<field>" or "remove-row:<field>:<index>".
func ParseAction(raw string) (Action, bool) {
	parts := strings.Split(raw, ":")
	switch {
	case len(parts) == 2 && parts[0] == ActionAddRow && parts[1] != "":
		return Action{Kind: ActionAddRow, Field: parts[1]}, true
	case len(parts) == 3 && parts[0] == ActionRemoveRow && parts[1] != "":
		index, err := strconv.Atoi(parts[2])
		if err != nil || index < 0 {
			return Action{}, false
		}
		return Action{Kind: ActionRemoveRow, Field: parts[1], Index: index}, true
	}
	return Action{}, false
}

// Apply returns a copy of draft with the row action performed.
// Removing the last row is allowed; an out-of-range index is ignored.
func (resource *Resource) Apply(draft Record, action Action) Record {
	field, ok := resource.Field(action.Field)
	if !ok || field.Kind != KindRows {
		return draft
	}

	next := draft.Clone()
	if next == nil {
		next = Record{}
	}
	rows, _ := next[field.Name].([]any)

	switch action.Kind {
	case ActionAddRow:
		row := map[string]any{}
		for _, sub := range field.Rows {
			row[sub.Name] = ""
		}
		rows = append(rows, row)
	case ActionRemoveRow:
		if action.Index < len(rows) {
			rows = append(rows[:action.Index:action.Index], rows[action.Index+1:]...)
		}
	}

	if rows == nil {
		rows = []any{}
	}
	next[field.Name] = rows
	return next
}

// # Validation

// Validate applies the schema rules to draft. A draft that fails is never
// submitted.
func (resource *Resource) Validate(draft Record, operation Operation) error {
	v := &validate.Validator{}

	for _, field := range resource.Fields {
		value := draft.Text(field.Name)

		if field.Required {
			v.Required(field.Name, value)
		}
		if field.RequiredOnAdd && operation == OpAdd {
			v.Custom(field.Name, strings.TrimSpace(value) == "", field.Label+" is required")
		}

		switch field.Kind {
		case KindNumber:
			v.Number(field.Name, value)
		case KindURL, KindImage:
			v.URL(field.Name, value)
		case KindSelect:
			if value != "" && len(field.Options) > 0 {
				v.OneOf(field.Name, value, optionValues(field.Options)...)
			}
		case KindRows:
			for index, row := range draft.Rows(field.Name) {
				for _, sub := range field.Rows {
					key := rowKey(field.Name, index, sub.Name)
					if sub.Required {
						v.Required(key, cell(row, sub.Name))
					}
					if sub.Kind == KindURL {
						v.URL(key, cell(row, sub.Name))
					}
				}
			}
		}
	}

	return v.Err()
}

func optionValues(options []Option) []string {
	values := make([]string, len(options))
	for index, option := range options {
		values[index] = option.Value
	}
	return values
}

// # Presentation

// Input is one field of a rendered form with its current value.
type Input struct {
	Field
	Key   string
	Value string
	Error string
	Rows  []RowInput
}

// RowInput is one rendered row of a [KindRows] field.
type RowInput struct {
	Index int
	Cells []Input
}

// Inputs pairs the schema with the values of draft and the field errors of a
// failed validation (keys as in [apperr.AppError.FieldMap]).
func (resource *Resource) Inputs(draft Record, errors map[string]string) []Input {
	inputs := make([]Input, 0, len(resource.Fields))
	for _, field := range resource.Fields {
		input := Input{Field: field, Key: field.Name, Value: draft.Text(field.Name), Error: errors[field.Name]}

		if field.Kind == KindRows {
			for index, row := range draft.Rows(field.Name) {
				rendered := RowInput{Index: index}
				for _, sub := range field.Rows {
					key := rowKey(field.Name, index, sub.Name)
					rendered.Cells = append(rendered.Cells, Input{
						Field: sub,
						Key:   key,
						Value: cell(row, sub.Name),
						Error: errors[key],
					})
				}
				input.Rows = append(input.Rows, rendered)
			}
		}
		inputs = append(inputs, input)
	}
	return inputs
}
