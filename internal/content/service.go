// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"context"
	"net/url"

	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/internal/platform/apperr"
	"github.com/taibuivan/scholar/pkg/slug"
)

// Reader is the read side of the content API.
type Reader interface {
	Get(ctx context.Context, path string, out any) error
}

// Service fetches public documents.
type Service struct {
	reader  Reader
	profile *Profile
}

// NewService creates a Service. A nil profile means [DefaultProfile].
func NewService(reader Reader, profile *Profile) *Service {
	if profile == nil {
		profile = DefaultProfile()
	}
	return &Service{reader: reader, profile: profile}
}

// Profile returns the site copy.
func (service *Service) Profile() *Profile {
	return service.profile
}

// Banners returns the carousel slides in API order.
func (service *Service) Banners(ctx context.Context) ([]Banner, error) {
	return list[Banner](ctx, service.reader, backend.PathBanners)
}

// Books returns every book with a usable slug.
func (service *Service) Books(ctx context.Context) ([]Book, error) {
	books, err := list[Book](ctx, service.reader, backend.PathBooks)
	for index := range books {
		books[index].Slug = slug.Or(books[index].Slug, books[index].Title)
	}
	return books, err
}

// Book returns the full book addressed by key.
func (service *Service) Book(ctx context.Context, key string) (*Book, error) {
	var book Book
	if err := service.reader.Get(ctx, backend.PathBooks+"/"+url.PathEscape(key), &book); err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.NotFound("Book")
		}
		return nil, err
	}
	book.Slug = slug.Or(book.Slug, book.Title)
	return &book, nil
}

// Blogs returns every post with a usable slug.
func (service *Service) Blogs(ctx context.Context) ([]Blog, error) {
	blogs, err := list[Blog](ctx, service.reader, backend.PathBlogs)
	for index := range blogs {
		blogs[index].Slug = slug.Or(blogs[index].Slug, blogs[index].Title)
	}
	return blogs, err
}

// Blog returns the full post addressed by key.
//
// Posts created before slugs were stored are only reachable through their
// title, so a 404 on the detail endpoint falls back to a scan of the list.
func (service *Service) Blog(ctx context.Context, key string) (*Blog, error) {
	var blog Blog
	err := service.reader.Get(ctx, backend.PathBlogs+"/"+url.PathEscape(key), &blog)
	if err == nil {
		blog.Slug = slug.Or(blog.Slug, blog.Title)
		return &blog, nil
	}
	if !apperr.HasCode(err, "NOT_FOUND") {
		return nil, err
	}

	blogs, listErr := service.Blogs(ctx)
	if listErr != nil {
		return nil, listErr
	}
	for index := range blogs {
		if blogs[index].Slug == key || slug.Match(key, blogs[index].Title) {
			return &blogs[index], nil
		}
	}
	return nil, apperr.NotFound("Blog")
}

// Team returns every member.
func (service *Service) Team(ctx context.Context) ([]TeamMember, error) {
	return list[TeamMember](ctx, service.reader, backend.PathTeam)
}

// YearwisePublications returns every yearwise publication.
func (service *Service) YearwisePublications(ctx context.Context) ([]YearwisePublication, error) {
	return list[YearwisePublication](ctx, service.reader, backend.PathYearwisePublications)
}

// SubjectwisePublications returns every subjectwise publication.
func (service *Service) SubjectwisePublications(ctx context.Context) ([]SubjectwisePublication, error) {
	return list[SubjectwisePublication](ctx, service.reader, backend.PathSubjectwisePublications)
}

// TalksArticles returns every talk and article.
func (service *Service) TalksArticles(ctx context.Context) ([]TalkArticle, error) {
	return list[TalkArticle](ctx, service.reader, backend.PathTalksArticles)
}

// Courses returns the static courses of the profile when it lists any,
// otherwise the API collection.
func (service *Service) Courses(ctx context.Context) ([]Course, error) {
	if len(service.profile.Courses) > 0 {
		return service.profile.Courses, nil
	}
	return list[Course](ctx, service.reader, backend.PathCourses)
}

// list fetches a collection. The result is never nil, even on error.
func list[T any](ctx context.Context, reader Reader, path string) ([]T, error) {
	var items []T
	if err := reader.Get(ctx, path, &items); err != nil {
		return []T{}, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
