// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package carousel holds the state of the home page banner carousel.
//
// The carousel is rendered on the server: the current slide comes from the
// `slide` query parameter, the arrows and dots are links, and auto-advance is
// a timed refresh to the next slide. Every move keeps the index inside
// [0, Len()); with no banners every move is a no-op.
package carousel

import (
	"time"

	"github.com/taibuivan/scholar/internal/content"
	"github.com/taibuivan/scholar/internal/platform/constants"
)

// Placeholder is shown instead of the carousel when there are no banners.
const Placeholder = "No banners available."

// Carousel is an ordered list of banners and the index of the visible one.
type Carousel struct {
	banners []content.Banner
	index   int
}

// Dot is one direct-jump indicator.
type Dot struct {
	Index  int
	Active bool
}

// New creates a carousel showing start, or the first banner when start is out of range.
func New(banners []content.Banner, start int) *Carousel {
	carousel := &Carousel{banners: banners}
	carousel.GoTo(start)
	return carousel
}

// Len returns the number of banners.
func (carousel *Carousel) Len() int { return len(carousel.banners) }

// Empty reports whether there is nothing to show.
func (carousel *Carousel) Empty() bool { return len(carousel.banners) == 0 }

// Index returns the visible slide.
func (carousel *Carousel) Index() int { return carousel.index }

// Next advances by one, wrapping to the first banner.
func (carousel *Carousel) Next() {
	carousel.index = carousel.NextIndex()
}

// Prev steps back by one, wrapping to the last banner.
func (carousel *Carousel) Prev() {
	carousel.index = carousel.PrevIndex()
}

// NextIndex is the index Next would move to.
func (carousel *Carousel) NextIndex() int {
	if carousel.Empty() {
		return 0
	}
	return (carousel.index + 1) % len(carousel.banners)
}

// PrevIndex is the index Prev would move to.
func (carousel *Carousel) PrevIndex() int {
	if carousel.Empty() {
		return 0
	}
	return (carousel.index - 1 + len(carousel.banners)) % len(carousel.banners)
}

// GoTo jumps to index. Out-of-range values are ignored and reported as false.
func (carousel *Carousel) GoTo(index int) bool {
	if index < 0 || index >= len(carousel.banners) {
		return false
	}
	carousel.index = index
	return true
}

// Current returns the visible banner, or false when there are none.
func (carousel *Carousel) Current() (content.Banner, bool) {
	if carousel.Empty() {
		return content.Banner{}, false
	}
	return carousel.banners[carousel.index], true
}

// Dots returns one indicator per banner.
func (carousel *Carousel) Dots() []Dot {
	dots := make([]Dot, len(carousel.banners))
	for index := range dots {
		dots[index] = Dot{Index: index, Active: index == carousel.index}
	}
	return dots
}

// AutoAdvance reports whether the timer should be armed. A single banner has
// nowhere to advance to.
func (carousel *Carousel) AutoAdvance() bool {
	return len(carousel.banners) > 1
}

// Interval is the auto-advance period.
func (carousel *Carousel) Interval() time.Duration {
	return constants.CarouselInterval
}

// IntervalSeconds is [Carousel.Interval] in whole seconds, for the refresh header.
func (carousel *Carousel) IntervalSeconds() int {
	return int(carousel.Interval() / time.Second)
}
