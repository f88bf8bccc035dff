// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package site

import (
	"fmt"
	"net/url"

	"github.com/taibuivan/scholar/internal/carousel"
	"github.com/taibuivan/scholar/internal/content"
	"github.com/taibuivan/scholar/internal/platform/render"
	"github.com/taibuivan/scholar/pkg/pagination"
)

// # Page Data

// HomeData is the page data of the home page.
type HomeData struct {
	Carousel CarouselView
	Profile  *content.Profile
}

// CarouselView is the rendered state of the banner carousel.
type CarouselView struct {
	Current     content.Banner
	HasCurrent  bool
	Placeholder string
	Position    int
	Len         int
	PrevURL     string
	NextURL     string
	Dots        []DotLink
}

// DotLink is a carousel indicator linking to its slide.
type DotLink struct {
	Label  string
	URL    string
	Active bool
}

// AboutData is the page data of the about page.
type AboutData struct {
	Profile *content.Profile
}

// BooksData is the page data of the book list.
type BooksData struct {
	Books []content.Book
}

// BookData is the page data of a book.
type BookData struct {
	Book *content.Book
}

// TeamData is the page data of the team page.
type TeamData struct {
	Present []content.TeamMember
	Past    []content.TeamMember
}

// BlogsData is the page data of one page of the blog list.
type BlogsData struct {
	Blogs []content.Blog
	Meta  pagination.Meta
}

// PageURL links to page n of the blog list.
func (data BlogsData) PageURL(n int) string {
	return fmt.Sprintf("/blogs?page=%d", n)
}

// BlogData is the page data of a blog post.
type BlogData struct {
	Blog *content.Blog
}

// TabbedData is the page data of the tabbed collection pages.
type TabbedData[T any] struct {
	Heading string
	Tabs    []render.Tab
	Active  string
	Items   []T
	Empty   string
}

// # Builders

func carouselView(state *carousel.Carousel) CarouselView {
	view := CarouselView{Placeholder: carousel.Placeholder, Len: state.Len()}

	current, ok := state.Current()
	if !ok {
		return view
	}
	view.Current = current
	view.HasCurrent = true
	view.Position = state.Index() + 1
	view.PrevURL = slideURL(state.PrevIndex())
	view.NextURL = slideURL(state.NextIndex())
	for _, dot := range state.Dots() {
		view.Dots = append(view.Dots, DotLink{
			Label:  fmt.Sprintf("Slide %d of %d", dot.Index+1, state.Len()),
			URL:    slideURL(dot.Index),
			Active: dot.Active,
		})
	}
	return view
}

func slideURL(index int) string {
	return fmt.Sprintf("/?slide=%d", index)
}

// tabs builds a tab bar over values, linking to base?tab=value.
func tabs(base string, values []string, labels map[string]string, active string) []render.Tab {
	result := make([]render.Tab, 0, len(values))
	for _, value := range values {
		label := value
		if custom, ok := labels[value]; ok {
			label = custom
		}
		result = append(result, render.Tab{
			Label:  label,
			URL:    base + "?tab=" + url.QueryEscape(value),
			Active: value == active,
		})
	}
	return result
}
