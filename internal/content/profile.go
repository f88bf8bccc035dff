// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Link is a labelled external link (social profiles in the header and footer).
type Link struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Profile is the static copy of the site: who the site is about and what is new.
type Profile struct {
	Name       string   `yaml:"name"`
	Tagline    string   `yaml:"tagline"`
	Intro      string   `yaml:"intro"`
	About      string   `yaml:"about"`
	WhatsNew   []string `yaml:"whatsNew"`
	Newsletter string   `yaml:"newsletter"`
	Social     []Link   `yaml:"social"`

	// Courses, when listed, replace the courses collection of the API.
	Courses []Course `yaml:"courses"`
}

// DefaultProfile is used when no profile file exists.
func DefaultProfile() *Profile {
	return &Profile{
		Name:       "Scholar",
		Tagline:    "Physicist and Thinker",
		Intro:      "Researcher in turbulence and nonequilibrium statistical mechanics.",
		Newsletter: "Send a note or a suggestion. Every message is read.",
	}
}

// LoadProfile reads a YAML profile. A missing file yields [DefaultProfile].
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultProfile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("content: read profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML profile and fills blanks from [DefaultProfile].
func ParseProfile(data []byte) (*Profile, error) {
	profile := &Profile{}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("content: parse profile: %w", err)
	}

	defaults := DefaultProfile()
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = defaults.Name
	}
	if strings.TrimSpace(profile.Tagline) == "" {
		profile.Tagline = defaults.Tagline
	}

	for index, course := range profile.Courses {
		if course.Category != CourseOnline && course.Category != CourseOffline {
			return nil, fmt.Errorf("content: course %q has category %q, want online or offline", course.Title, course.Category)
		}
		if course.ID == "" {
			profile.Courses[index].ID = fmt.Sprintf("static-%d", index+1)
		}
	}
	return profile, nil
}
