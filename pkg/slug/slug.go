// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives the URL keys of books and blog posts.
//
// The content API usually stores a slug with the record ("/blogs/energy-cascade").
// When it does not, the key is derived from the title with [From], and links
// written against either form are resolved with [Match].
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented letters and drops the combining marks (é → e).
var stripMarks = transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}), norm.NFC)

// From lowercases s, removes accents, and joins every run of ASCII letters and
// digits with a single hyphen. Anything else is a separator.
func From(s string) string {
	plain, _, err := transform.String(stripMarks, s)
	if err != nil {
		plain = s
	}

	var builder strings.Builder
	builder.Grow(len(plain))

	pendingHyphen := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			builder.WriteRune(r)
			pendingHyphen = false
			continue
		}
		pendingHyphen = true
	}
	return builder.String()
}

// Or returns existing when it is non-empty, otherwise the slug of title.
func Or(existing, title string) string {
	if existing = strings.TrimSpace(existing); existing != "" {
		return existing
	}
	return From(title)
}

// Match reports whether key addresses a record with the given title, comparing
// both sides in slug form.
func Match(key, title string) bool {
	normalized := From(key)
	return normalized != "" && normalized == From(title)
}
