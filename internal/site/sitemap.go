// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package site

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/taibuivan/scholar/internal/platform/ctxutil"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URLSet is the root element of a sitemap.
type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapURL is one sitemap entry.
type SitemapURL struct {
	Location     string `xml:"loc"`
	LastModified string `xml:"lastmod,omitempty"`
	ChangeFreq   string `xml:"changefreq,omitempty"`
}

// staticPaths are the pages that exist regardless of content.
var staticPaths = []string{
	"/",
	"/about",
	"/books",
	"/team",
	"/blogs",
	"/publications/yearwise",
	"/publications/subjectwise",
	"/talks-articles",
	"/courses",
}

/*
sitemap lists every public URL.

GET /sitemap.xml

Description: Static pages always appear. Book and blog detail pages appear
when their collections can be read; a failed read only shortens the list.
*/
func (handler *Handler) sitemap(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	set := URLSet{Xmlns: sitemapNamespace}
	for _, path := range staticPaths {
		set.URLs = append(set.URLs, SitemapURL{Location: handler.baseURL + path, ChangeFreq: "weekly"})
	}

	// 1. Books
	books, err := handler.content.Books(ctx)
	if err != nil {
		logger.WarnContext(ctx, "sitemap_books_failed", slog.Any("error", err))
	}
	for _, book := range books {
		set.URLs = append(set.URLs, SitemapURL{Location: handler.baseURL + "/books/" + url.PathEscape(book.Slug), ChangeFreq: "monthly"})
	}

	// 2. Blogs
	blogs, err := handler.content.Blogs(ctx)
	if err != nil {
		logger.WarnContext(ctx, "sitemap_blogs_failed", slog.Any("error", err))
	}
	for _, blog := range blogs {
		set.URLs = append(set.URLs, SitemapURL{
			Location:     handler.baseURL + "/blogs/" + url.PathEscape(blog.Slug),
			LastModified: blog.PublishedISO(),
			ChangeFreq:   "monthly",
		})
	}

	// 3. Encode
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		handler.renderer.Error(writer, request, err)
		return
	}

	writer.Header().Set("Content-Type", "application/xml; charset=utf-8")
	writer.Header().Set("Cache-Control", "public, max-age=3600")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte(xml.Header))
	_, _ = writer.Write(body)
}
