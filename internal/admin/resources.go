// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"cmp"

	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/content"
	"github.com/taibuivan/scholar/internal/crud"
	"github.com/taibuivan/scholar/internal/platform/textfmt"
)

// # Resource Definitions

func options(values ...string) []crud.Option {
	result := make([]crud.Option, 0, len(values))
	for _, value := range values {
		result = append(result, crud.Option{Value: value, Label: value})
	}
	return result
}

var (
	talkTypes = []crud.Option{
		{Value: content.TypeTalk, Label: "Talk"},
		{Value: content.TypeArticle, Label: "Article"},
	}
	memberTypes = []crud.Option{
		{Value: content.MemberPresent, Label: "Present Member"},
		{Value: content.MemberPast, Label: "Past Member"},
	}
	courseCategories = []crud.Option{
		{Value: content.CourseOnline, Label: "Online"},
		{Value: content.CourseOffline, Label: "Offline"},
	}
)

func imageField(required bool) crud.Field {
	return crud.Field{Name: "image", Label: "Image", Kind: crud.KindImage, Required: required, Placeholder: "https://example.com/image.jpg"}
}

// Banners manages the home page carousel.
var Banners = &crud.Resource{
	Name:  "banners",
	Title: "Banner",
	Path:  backend.PathBanners,
	Fields: []crud.Field{
		{Name: "imageUrl", Label: "Image", Kind: crud.KindImage, Required: true, Placeholder: "https://example.com/banner-image.jpg"},
		{Name: "description", Label: "Description", Kind: crud.KindTextArea, Required: true, Placeholder: "Enter an engaging description for this banner..."},
	},
	Label: func(record crud.Record) string {
		return textfmt.Excerpt(record.Text("description"), 60)
	},
	Upload:  true,
	Confirm: "Are you sure you want to delete this banner?",
}

// Books manages the books and their buy links and reviews.
var Books = &crud.Resource{
	Name:  "books",
	Title: "Book",
	Path:  backend.PathBooks,
	Fields: []crud.Field{
		{Name: "title", Label: "Title", Kind: crud.KindText, Required: true, Placeholder: "Enter book title"},
		{Name: "about", Label: "About", Kind: crud.KindTextArea, Placeholder: "Describe the book..."},
		imageField(false),
		{Name: "buyLinks", Label: "Buy Link", Kind: crud.KindRows, Rows: []crud.Field{
			{Name: "name", Label: "Store", Kind: crud.KindText, Required: true, Placeholder: "Amazon, Barnes & Noble, etc."},
			{Name: "url", Label: "URL", Kind: crud.KindURL, Required: true, Placeholder: "https://..."},
		}},
		{Name: "reviews", Label: "Review", Kind: crud.KindRows, Rows: []crud.Field{
			{Name: "reviewer", Label: "Reviewer", Kind: crud.KindText, Required: true, Placeholder: "John Doe, Book Magazine, etc."},
			{Name: "text", Label: "Review", Kind: crud.KindTextArea, Required: true, Placeholder: "This book is amazing..."},
		}},
	},
	DetailKey: "slug",
	Upload:    true,
}

// Blogs manages the blog posts.
var Blogs = &crud.Resource{
	Name:  "blogs",
	Title: "Blog post",
	Path:  backend.PathBlogs,
	Fields: []crud.Field{
		{Name: "title", Label: "Title", Kind: crud.KindText, Required: true, Placeholder: "Enter an engaging blog title"},
		imageField(false),
		{Name: "content", Label: "Summary", Kind: crud.KindTextArea, Required: true, Placeholder: "Brief summary that appears on blog cards (2-3 sentences)"},
		{Name: "fullContent", Label: "Full Content", Kind: crud.KindHTML, Required: true, Placeholder: "Write the full blog content here. You can use HTML formatting if needed."},
	},
	DetailKey: "slug",
	Upload:    true,
	Confirm:   "Are you sure you want to delete this blog post?",
}

// Courses manages the online and offline courses.
var Courses = &crud.Resource{
	Name:  "courses",
	Title: "Course",
	Path:  backend.PathCourses,
	Fields: []crud.Field{
		{Name: "title", Label: "Title", Kind: crud.KindText, Required: true, Placeholder: "Enter course title"},
		{Name: "content", Label: "Description", Kind: crud.KindTextArea, Placeholder: "What the course covers..."},
		imageField(false),
		{Name: "docLink", Label: "Document Link", Kind: crud.KindURL, Placeholder: "https://example.com/syllabus.pdf"},
		{Name: "category", Label: "Category", Kind: crud.KindSelect, Required: true, Options: courseCategories},
	},
	ListFilter: &crud.Filter{Field: "category", Label: "Categories", Options: courseCategories},
	Upload:     true,
	Confirm:    "Are you sure you want to delete this course?",
}

// TalksArticles manages the talks and articles.
var TalksArticles = &crud.Resource{
	Name:  "talks-articles",
	Title: "Item",
	Path:  backend.PathTalksArticles,
	Fields: []crud.Field{
		{Name: "title", Label: "Title", Kind: crud.KindText, Required: true, Placeholder: "Enter title of the talk or article"},
		{Name: "content", Label: "Content", Kind: crud.KindTextArea, Placeholder: "Provide details about the talk or article content..."},
		imageField(false),
		{Name: "docLink", Label: "Document Link", Kind: crud.KindURL, Placeholder: "https://example.com/document.pdf"},
		{Name: "type", Label: "Type", Kind: crud.KindSelect, Required: true, Options: talkTypes},
	},
	ListFilter: &crud.Filter{Field: "type", Label: "Types", Options: talkTypes},
	Upload:     true,
	Confirm:    "Are you sure you want to delete this?",
}

// TeamMembers manages the group members. A new member needs a photo.
var TeamMembers = &crud.Resource{
	Name:  "team-members",
	Title: "Team member",
	Path:  backend.PathTeam,
	Fields: []crud.Field{
		{Name: "name", Label: "Name", Kind: crud.KindText, Required: true, Placeholder: "Enter team member's full name"},
		{Name: "title", Label: "Title", Kind: crud.KindText, Required: true, Placeholder: "e.g., Research Assistant, PhD Student"},
		{Name: "about", Label: "About", Kind: crud.KindTextArea, Placeholder: "Describe the team member's role, research interests, or background..."},
		{Name: "image", Label: "Image", Kind: crud.KindImage, RequiredOnAdd: true, Placeholder: "https://example.com/photo.jpg"},
		{Name: "type", Label: "Type", Kind: crud.KindSelect, Required: true, Options: memberTypes},
	},
	Label: func(record crud.Record) string {
		return record.Text("name")
	},
	ListFilter: &crud.Filter{Field: "type", Label: "Members", Options: memberTypes},
	Upload:     true,
	Confirm:    "Are you sure you want to delete this team member?",
}

// YearwisePublications manages the publications listed by venue.
var YearwisePublications = &crud.Resource{
	Name:  "yearwise-publications",
	Title: "Publication",
	Path:  backend.PathYearwisePublications,
	Fields: []crud.Field{
		{Name: "title", Label: "Title", Kind: crud.KindText, Required: true, Placeholder: "Enter publication title"},
		{Name: "year", Label: "Year", Kind: crud.KindNumber, Required: true, Placeholder: "2024"},
		{Name: "category", Label: "Category", Kind: crud.KindSelect, Required: true, Options: options(content.YearwiseCategories...)},
		{Name: "link", Label: "Link", Kind: crud.KindURL, Placeholder: "https://example.com/publication"},
	},
	Label:      publicationLabel,
	ListFilter: &crud.Filter{Field: "category", Label: "Categories", Options: options(content.YearwiseCategories...)},
	Order:      newestFirst,
	Confirm:    "Are you sure you want to delete this publication?",
}

// SubjectwisePublications manages the publications listed by research area.
var SubjectwisePublications = &crud.Resource{
	Name:  "subjectwise-publications",
	Title: "Publication",
	Path:  backend.PathSubjectwisePublications,
	Fields: []crud.Field{
		{Name: "title", Label: "Title", Kind: crud.KindText, Required: true, Placeholder: "Enter publication title"},
		{Name: "year", Label: "Year", Kind: crud.KindNumber, Required: true, Placeholder: "2024"},
		{Name: "category", Label: "Category", Kind: crud.KindSelect, Required: true, Options: options(content.SubjectCategories...)},
		{Name: "description", Label: "Description", Kind: crud.KindTextArea, Placeholder: "Enter publication description"},
		{Name: "link", Label: "Link", Kind: crud.KindURL, Placeholder: "https://example.com/publication"},
		imageField(false),
	},
	Label:      publicationLabel,
	ListFilter: &crud.Filter{Field: "category", Label: "Categories", Options: options(content.SubjectCategories...)},
	Upload:     true,
	Confirm:    "Are you sure you want to delete this publication?",
}

// newestFirst groups publications by year, latest year on top.
func newestFirst(a, b crud.Record) int {
	return cmp.Compare(b.Int("year"), a.Int("year"))
}

func publicationLabel(record crud.Record) string {
	if year := record.Text("year"); year != "" {
		return record.Text("title") + " (" + year + ")"
	}
	return record.Text("title")
}

// Resources lists every managed collection in dashboard order.
var Resources = []*crud.Resource{
	Banners,
	Books,
	Blogs,
	YearwisePublications,
	SubjectwisePublications,
	TalksArticles,
	TeamMembers,
	Courses,
}

// Lookup finds a resource by its URL segment.
func Lookup(name string) (*crud.Resource, bool) {
	for _, resource := range Resources {
		if resource.Name == name {
			return resource, true
		}
	}
	return nil, false
}
