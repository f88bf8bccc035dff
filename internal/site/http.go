// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package site serves the public pages of the academic profile.

Every handler is fetch-then-render: one read through [content.Service], one
page. A failed collection read still renders the page, empty, with an error
notice; a missing document renders the 404 page.
*/
package site

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/scholar/internal/carousel"
	"github.com/taibuivan/scholar/internal/content"
	"github.com/taibuivan/scholar/internal/platform/constants"
	"github.com/taibuivan/scholar/internal/platform/ctxutil"
	"github.com/taibuivan/scholar/internal/platform/render"
	requestutil "github.com/taibuivan/scholar/internal/platform/request"
	"github.com/taibuivan/scholar/pkg/pagination"
)

// # Definitions & Constructors

// Handler serves the public site.
type Handler struct {
	content  *content.Service
	renderer *render.Renderer
	baseURL  string
}

// NewHandler constructs a [Handler]. baseURL is the canonical origin used in the sitemap.
func NewHandler(service *content.Service, renderer *render.Renderer, baseURL string) *Handler {
	return &Handler{content: service, renderer: renderer, baseURL: strings.TrimRight(baseURL, "/")}
}

// RegisterRoutes mounts the public pages.
//
// # Endpoints
//   - GET /                          : Carousel, introduction and feedback form.
//   - GET /about                     : Biography.
//   - GET /books, /books/{slug}      : Books and book detail.
//   - GET /team                      : Present and past members.
//   - GET /blogs, /blogs/{slug}      : Paginated posts and post detail.
//   - GET /publications/yearwise     : Publications by venue (?tab=).
//   - GET /publications/subjectwise  : Publications by research area (?tab=).
//   - GET /talks-articles            : Talks or articles (?tab=).
//   - GET /courses                   : Online or offline courses (?tab=).
//   - GET /sitemap.xml               : Every public URL.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.home)
	router.Get("/about", handler.about)
	router.Get("/books", handler.books)
	router.Get("/books/{slug}", handler.book)
	router.Get("/team", handler.team)
	router.Get("/blogs", handler.blogs)
	router.Get("/blogs/{slug}", handler.blog)
	router.Get("/publications/yearwise", handler.yearwise)
	router.Get("/publications/subjectwise", handler.subjectwise)
	router.Get("/talks-articles", handler.talksArticles)
	router.Get("/courses", handler.courses)
	router.Get("/sitemap.xml", handler.sitemap)
}

// Decorate is a [render.Decorator] exposing the site profile to the layout.
func (handler *Handler) Decorate(_ http.ResponseWriter, _ *http.Request, view *render.View) {
	view.Site = handler.content.Profile()
}

// # Pages

/*
home renders the landing page.

GET /?slide=

Response:
  - 200: Carousel at the requested slide, auto-advancing when there are two or more banners
*/
func (handler *Handler) home(writer http.ResponseWriter, request *http.Request) {
	view := &render.View{Title: "Home", Section: "home"}

	banners, err := handler.content.Banners(request.Context())
	handler.listFailed(request, view, "banners", err)

	state := carousel.New(banners, requestutil.QueryInt(request, "slide", 0))
	if state.AutoAdvance() {
		view.Refresh = &render.Refresh{Seconds: state.IntervalSeconds(), URL: slideURL(state.NextIndex())}
	}

	view.Data = HomeData{Carousel: carouselView(state), Profile: handler.content.Profile()}
	handler.renderer.Page(writer, request, http.StatusOK, "home", view)
}

// about renders the biography.
func (handler *Handler) about(writer http.ResponseWriter, request *http.Request) {
	handler.renderer.Page(writer, request, http.StatusOK, "about", &render.View{
		Title:   "About",
		Section: "about",
		Data:    AboutData{Profile: handler.content.Profile()},
	})
}

// books renders every book.
func (handler *Handler) books(writer http.ResponseWriter, request *http.Request) {
	view := &render.View{Title: "Books", Section: "books"}

	books, err := handler.content.Books(request.Context())
	handler.listFailed(request, view, "books", err)

	view.Data = BooksData{Books: books}
	handler.renderer.Page(writer, request, http.StatusOK, "books", view)
}

/*
book renders one book.

GET /books/{slug}

Response:
  - 200: About, buy links and reviews
  - 404: Book not found
*/
func (handler *Handler) book(writer http.ResponseWriter, request *http.Request) {
	book, err := handler.content.Book(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		handler.renderer.Error(writer, request, err)
		return
	}

	handler.renderer.Page(writer, request, http.StatusOK, "book", &render.View{
		Title:   book.Title,
		Section: "books",
		Data:    BookData{Book: book},
	})
}

// team renders the group, present members first.
func (handler *Handler) team(writer http.ResponseWriter, request *http.Request) {
	view := &render.View{Title: "Team", Section: "team"}

	members, err := handler.content.Team(request.Context())
	handler.listFailed(request, view, "team members", err)

	present, past := content.SplitTeam(members)
	view.Data = TeamData{Present: present, Past: past}
	handler.renderer.Page(writer, request, http.StatusOK, "team", view)
}

/*
blogs renders one page of posts.

GET /blogs?page=

Response:
  - 200: Posts of the page; out-of-range pages are clamped
*/
func (handler *Handler) blogs(writer http.ResponseWriter, request *http.Request) {
	view := &render.View{Title: "Blog", Section: "blogs"}

	blogs, err := handler.content.Blogs(request.Context())
	handler.listFailed(request, view, "blog posts", err)

	page, meta := pagination.Paginate(blogs, requestutil.QueryInt(request, "page", pagination.DefaultPage), constants.BlogsPerPage)
	view.Data = BlogsData{Blogs: page, Meta: meta}
	handler.renderer.Page(writer, request, http.StatusOK, "blogs", view)
}

/*
blog renders one post.

GET /blogs/{slug}

Response:
  - 200: Sanitized full content
  - 404: Blog not found
*/
func (handler *Handler) blog(writer http.ResponseWriter, request *http.Request) {
	blog, err := handler.content.Blog(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		handler.renderer.Error(writer, request, err)
		return
	}

	handler.renderer.Page(writer, request, http.StatusOK, "blog", &render.View{
		Title:   blog.Title,
		Section: "blogs",
		Data:    BlogData{Blog: blog},
	})
}

// # Tabbed Pages

// yearwise renders the publications of one venue category, newest first.
func (handler *Handler) yearwise(writer http.ResponseWriter, request *http.Request) {
	view := &render.View{Title: "Yearwise Publications", Section: "publications"}

	items, err := handler.content.YearwisePublications(request.Context())
	handler.listFailed(request, view, "publications", err)

	active := content.PickTab(requestutil.Query(request, "tab"), content.YearwiseCategories)
	view.Data = TabbedData[content.YearwisePublication]{
		Heading: "Yearwise Publications",
		Tabs:    tabs(request.URL.Path, content.YearwiseCategories, nil, active),
		Active:  active,
		Items:   content.FilterYearwise(items, active),
		Empty:   "No publications in this category.",
	}
	handler.renderer.Page(writer, request, http.StatusOK, "yearwise", view)
}

// subjectwise renders the publications of one research area.
func (handler *Handler) subjectwise(writer http.ResponseWriter, request *http.Request) {
	view := &render.View{Title: "Subjectwise Publications", Section: "publications"}

	items, err := handler.content.SubjectwisePublications(request.Context())
	handler.listFailed(request, view, "publications", err)

	active := content.PickTab(requestutil.Query(request, "tab"), content.SubjectCategories)
	view.Data = TabbedData[content.SubjectwisePublication]{
		Heading: "Subjectwise Publications",
		Tabs:    tabs(request.URL.Path, content.SubjectCategories, nil, active),
		Active:  active,
		Items:   content.FilterSubjectwise(items, active),
		Empty:   "No publications in this area.",
	}
	handler.renderer.Page(writer, request, http.StatusOK, "subjectwise", view)
}

// talksArticles renders the talks or the articles.
func (handler *Handler) talksArticles(writer http.ResponseWriter, request *http.Request) {
	view := &render.View{Title: "Talks & Articles", Section: "talks-articles"}

	items, err := handler.content.TalksArticles(request.Context())
	handler.listFailed(request, view, "talks and articles", err)

	values := []string{content.TabTalks, content.TabArticles}
	active := content.PickTab(requestutil.Query(request, "tab"), values)
	view.Data = TabbedData[content.TalkArticle]{
		Heading: "Talks & Articles",
		Tabs:    tabs(request.URL.Path, values, map[string]string{content.TabTalks: "Talks", content.TabArticles: "Articles"}, active),
		Active:  active,
		Items:   content.FilterTalksArticles(items, active),
		Empty:   "Nothing here yet.",
	}
	handler.renderer.Page(writer, request, http.StatusOK, "talks-articles", view)
}

// courses renders the online or offline courses.
func (handler *Handler) courses(writer http.ResponseWriter, request *http.Request) {
	view := &render.View{Title: "Courses", Section: "courses"}

	items, err := handler.content.Courses(request.Context())
	handler.listFailed(request, view, "courses", err)

	values := []string{content.CourseOnline, content.CourseOffline}
	active := content.PickTab(requestutil.Query(request, "tab"), values)
	view.Data = TabbedData[content.Course]{
		Heading: "Courses",
		Tabs:    tabs(request.URL.Path, values, map[string]string{content.CourseOnline: "Online Courses", content.CourseOffline: "Offline Courses"}, active),
		Active:  active,
		Items:   content.FilterCourses(items, active),
		Empty:   "No courses available.",
	}
	handler.renderer.Page(writer, request, http.StatusOK, "courses", view)
}

// # Helpers

// listFailed logs a failed collection read and adds the public error notice.
func (handler *Handler) listFailed(request *http.Request, view *render.View, what string, err error) {
	if err == nil {
		return
	}
	ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "content_fetch_failed",
		slog.String("collection", what),
		slog.Any("error", err),
	)
	view.AddNotice(render.Failure("Could not load " + what + ". Please try again later."))
}
