// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package web embeds the HTML templates and static assets of the site.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"github.com/taibuivan/scholar/internal/platform/render"
	"github.com/taibuivan/scholar/internal/platform/textfmt"
)

//go:embed templates
var templates embed.FS

//go:embed static
var static embed.FS

// Templates returns the template tree rooted at layouts/, partials/ and pages/.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static returns the assets served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// FuncMap is the text helpers plus the few the layouts need.
func FuncMap() template.FuncMap {
	funcs := textfmt.FuncMap()
	funcs["year"] = func() int { return time.Now().Year() }
	funcs["add"] = func(a, b int) int { return a + b }
	return funcs
}

// NewRenderer parses every embedded page.
func NewRenderer() (*render.Renderer, error) {
	return render.New(Templates(), FuncMap())
}
