// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"cmp"
	"slices"
	"strings"

	"github.com/taibuivan/scholar/pkg/slice"
)

// FilterYearwise keeps the publications whose category matches case-insensitively,
// newest first. Publications of the same year keep their API order.
func FilterYearwise(items []YearwisePublication, category string) []YearwisePublication {
	filtered := slice.Filter(items, func(item YearwisePublication) bool {
		return strings.EqualFold(strings.TrimSpace(item.Category), strings.TrimSpace(category))
	})
	slices.SortStableFunc(filtered, func(a, b YearwisePublication) int {
		return cmp.Compare(b.Year, a.Year)
	})
	return filtered
}

// FilterSubjectwise keeps the publications of one research area.
func FilterSubjectwise(items []SubjectwisePublication, category string) []SubjectwisePublication {
	return slice.Filter(items, func(item SubjectwisePublication) bool {
		return item.Category == category
	})
}

// Tabs of the talks and articles page.
const (
	TabTalks    = "talks"
	TabArticles = "articles"
)

// FilterTalksArticles keeps the items of a tab: "talks" selects type "talk",
// "articles" selects type "article".
func FilterTalksArticles(items []TalkArticle, tab string) []TalkArticle {
	kind := strings.TrimSuffix(tab, "s")
	return slice.Filter(items, func(item TalkArticle) bool {
		return item.Type == kind
	})
}

// SplitTeam separates present and past members, keeping API order. Members
// with any other type are dropped.
func SplitTeam(items []TeamMember) (present, past []TeamMember) {
	present, rest := slice.Partition(items, func(item TeamMember) bool { return item.Type == MemberPresent })
	past = slice.Filter(rest, func(item TeamMember) bool { return item.Type == MemberPast })
	return present, past
}

// FilterCourses keeps the courses of one category.
func FilterCourses(items []Course, category string) []Course {
	return slice.Filter(items, func(item Course) bool {
		return item.Category == category
	})
}

// PickTab returns requested when it is one of allowed, otherwise the first allowed value.
func PickTab(requested string, allowed []string) string {
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, requested) {
			return candidate
		}
	}
	if len(allowed) == 0 {
		return ""
	}
	return allowed[0]
}
