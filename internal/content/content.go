// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package content defines the documents published on the public site and the
read-side service that fetches them from the content API.

Every document is owned by the API and identified by its `_id`. The types here
decode the API's JSON for the public pages; the admin console works on the
same documents as untyped records.

Architecture:

  - Types: one struct per collection, JSON tags matching the API.
  - Filters: pure functions behind the category and type tabs.
  - Service: one method per page, backed by a [Reader].
  - Profile: the site copy, read from a YAML file.
*/
package content

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// # Categories

// Yearwise publication categories.
const (
	CategoryJournal    = "Journal"
	CategoryReview     = "Review Paper"
	CategoryConference = "Conference Proceedings"
)

// YearwiseCategories lists the yearwise tabs in display order.
var YearwiseCategories = []string{CategoryJournal, CategoryReview, CategoryConference}

// SubjectCategories lists the research areas of subjectwise publications in display order.
var SubjectCategories = []string{
	"MHD Turbulence",
	"Turbulence Convection",
	"Turbulence (Misc)",
	"Nonequilibrium Statmech",
	"HPC",
}

// Talk/article and team/course discriminators.
const (
	TypeTalk    = "talk"
	TypeArticle = "article"

	MemberPresent = "present"
	MemberPast    = "past"

	CourseOnline  = "online"
	CourseOffline = "offline"
)

// # Documents

// Banner is one slide of the home page carousel.
type Banner struct {
	ID          string `json:"_id"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
}

// BuyLink points to a store selling a book.
type BuyLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Review is a quoted review of a book.
type Review struct {
	Reviewer string `json:"reviewer"`
	Text     string `json:"text"`
}

// Book is a published book.
type Book struct {
	ID       string    `json:"_id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	About    string    `json:"about"`
	Image    string    `json:"image"`
	BuyLinks []BuyLink `json:"buyLinks"`
	Reviews  []Review  `json:"reviews"`
}

// Blog is a blog post. Content is the summary, FullContent the editor HTML.
type Blog struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Content     string `json:"content"`
	FullContent string `json:"fullContent"`
	Image       string `json:"image"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Published formats CreatedAt as a date, or returns "" when it is missing or unparseable.
func (blog Blog) Published() string {
	if created, ok := blog.created(); ok {
		return created.Format("2 January 2006")
	}
	return ""
}

// PublishedISO is CreatedAt as YYYY-MM-DD, or "".
func (blog Blog) PublishedISO() string {
	if created, ok := blog.created(); ok {
		return created.Format(time.DateOnly)
	}
	return ""
}

func (blog Blog) created() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if parsed, err := time.Parse(layout, blog.CreatedAt); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// YearwisePublication is a publication listed under its venue category.
type YearwisePublication struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Year     Year   `json:"year"`
	Category string `json:"category"`
	Link     string `json:"link"`
}

// SubjectwisePublication is a publication listed under its research area.
type SubjectwisePublication struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Year        Year   `json:"year"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Image       string `json:"image"`
}

// TalkArticle is a talk or an article.
type TalkArticle struct {
	ID      string `json:"_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
	DocLink string `json:"docLink"`
	Type    string `json:"type"`
}

// TeamMember is a present or past group member.
type TeamMember struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	About string `json:"about"`
	Image string `json:"image"`
	Type  string `json:"type"`
}

// Course is an online or offline course.
type Course struct {
	ID       string `json:"_id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	Image    string `json:"image" yaml:"image"`
	DocLink  string `json:"docLink" yaml:"docLink"`
	Category string `json:"category" yaml:"category"`
}

// # Year

// Year is a publication year. The API stores it as a number or as a numeric
// string depending on how the document was entered; both decode.
type Year int

// UnmarshalJSON accepts 2021, "2021", "" and null. Any other value, such as
// "2021-22", decodes as 0 (unknown).
func (year *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*year = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		raw = strings.TrimSpace(text)
		if raw == "" {
			*year = 0
			return nil
		}
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*year = 0
		return nil
	}
	*year = Year(int(value))
	return nil
}

// String renders the year, or an empty string when unknown.
func (year Year) String() string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(int(year))
}
