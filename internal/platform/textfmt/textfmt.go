// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package textfmt turns backend-provided text into safe HTML for the templates.

Content arrives from the REST API in two shapes: rich HTML written in the admin
editor (blog fullContent) and plain or lightly formatted prose (book about,
publication descriptions, team bios). Both pass through a bluemonday policy
before they reach a template as [template.HTML].

Architecture:

  - Prose: goldmark renders markdown with hard wraps, then UGC sanitization.
  - SanitizeHTML: UGC sanitization only, for editor output.
  - Excerpt: tag stripping plus rune-safe truncation for cards.
*/
package textfmt

import (
	"bytes"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			// raw HTML is allowed through and cleaned by ugcPolicy below
			gmhtml.WithUnsafe(),
		),
	)

	ugcPolicy       = newUGCPolicy()
	stripTagsPolicy = bluemonday.StripTagsPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span", "pre", "div", "p", "img")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// Prose renders markdown (or plain text with line breaks) into sanitized HTML.
func Prose(source string) template.HTML {
	if strings.TrimSpace(source) == "" {
		return ""
	}

	var buffer bytes.Buffer
	if err := markdown.Convert([]byte(source), &buffer); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(ugcPolicy.SanitizeBytes(buffer.Bytes()))
}

// SanitizeHTML cleans editor-produced HTML, dropping scripts, handlers and unsafe URLs.
func SanitizeHTML(source string) template.HTML {
	return template.HTML(ugcPolicy.Sanitize(source))
}

// StripTags removes every tag and returns plain text with collapsed whitespace.
func StripTags(source string) string {
	return strings.Join(strings.Fields(stripTagsPolicy.Sanitize(source)), " ")
}

// Excerpt returns at most limit runes of the tag-stripped text, cut at a word
// boundary when possible and suffixed with an ellipsis when shortened.
func Excerpt(source string, limit int) string {
	text := StripTags(source)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if runes[limit] != ' ' {
		if index := strings.LastIndex(cut, " "); index > len(cut)/2 {
			cut = cut[:index]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

// FuncMap exposes the helpers to html/template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"prose":     Prose,
		"sanitize":  SanitizeHTML,
		"excerpt":   Excerpt,
		"striptags": StripTags,
	}
}
