// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"net/url"

	"github.com/taibuivan/scholar/internal/crud"
	"github.com/taibuivan/scholar/internal/platform/render"
)

// Panel tabs.
const (
	TabAdd    = "add"
	TabEdit   = "edit"
	TabDelete = "delete"
)

var panelTabs = []string{TabAdd, TabEdit, TabDelete}

// headings are the plural names shown on the dashboard and panel pages.
var headings = map[string]string{
	"banners":                  "Banners",
	"books":                    "Books",
	"blogs":                    "Blogs",
	"courses":                  "Courses",
	"talks-articles":           "Talks & Articles",
	"team-members":             "Team Members",
	"yearwise-publications":    "Yearwise Publications",
	"subjectwise-publications": "Subjectwise Publications",
}

// Heading is the plural display name of a resource.
func Heading(resource *crud.Resource) string {
	if heading, ok := headings[resource.Name]; ok {
		return heading
	}
	return resource.Title
}

// BaseURL is the panel page of a resource.
func BaseURL(resource *crud.Resource) string {
	return "/admin/manage-" + resource.Name
}

// # Page Data

// DashboardData is the page data of the admin landing page.
type DashboardData struct {
	Cards []Card
}

// Card links to one resource panel.
type Card struct {
	Heading string
	URL     string
}

// PanelData is the page data of a resource panel.
type PanelData struct {
	Heading  string
	Resource *crud.Resource
	Tab      string
	Tabs     []render.Tab

	// Listing (edit and delete tabs)
	Filter   *FilterView
	Items    []ItemView
	Selected string

	// Form (add tab, and edit tab once an item is selected)
	Inputs    []crud.Input
	Action    string
	Multipart bool
	State     string
}

// HasForm reports whether the page shows the resource form.
func (data PanelData) HasForm() bool {
	return data.Tab == TabAdd || data.Tab == TabEdit && data.Selected != ""
}

// FilterView is the list filter select.
type FilterView struct {
	Label    string
	Options  []crud.Option
	Selected string
}

// ItemView is one entry of the selection list.
type ItemView struct {
	ID     string
	Label  string
	URL    string
	Active bool
}

// ConfirmData is the page data of the delete confirmation.
type ConfirmData struct {
	Heading string
	Label   string
	Prompt  string
	Action  string
	Cancel  string
}

// # Builders

func tabURL(resource *crud.Resource, tab string, query url.Values) string {
	values := url.Values{"tab": {tab}}
	for key, list := range query {
		values[key] = list
	}
	return BaseURL(resource) + "?" + values.Encode()
}

func tabBar(resource *crud.Resource, active string) []render.Tab {
	labels := map[string]string{
		TabAdd:    "Add " + resource.Title,
		TabEdit:   "Edit " + resource.Title,
		TabDelete: "Delete " + resource.Title,
	}
	tabs := make([]render.Tab, 0, len(panelTabs))
	for _, tab := range panelTabs {
		tabs = append(tabs, render.Tab{Label: labels[tab], URL: tabURL(resource, tab, nil), Active: tab == active})
	}
	return tabs
}

func filterView(resource *crud.Resource, selected string) *FilterView {
	if resource.ListFilter == nil {
		return nil
	}
	if selected == "" {
		selected = crud.FilterAll
	}
	all := crud.Option{Value: crud.FilterAll, Label: "All " + resource.ListFilter.Label}
	return &FilterView{
		Label:    resource.ListFilter.Label,
		Options:  append([]crud.Option{all}, resource.ListFilter.Options...),
		Selected: selected,
	}
}

func itemViews(resource *crud.Resource, items []crud.Record, tab, filter, selected string) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{ID: item.ID(), Label: resource.ItemLabel(item), Active: item.ID() == selected}
		if tab == TabDelete {
			view.URL = BaseURL(resource) + "/delete/" + url.PathEscape(item.ID())
		} else {
			query := url.Values{"id": {item.ID()}}
			if filter != "" {
				query.Set("filter", filter)
			}
			view.URL = tabURL(resource, TabEdit, query)
		}
		views = append(views, view)
	}
	return views
}
