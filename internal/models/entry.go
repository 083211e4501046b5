// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// EntryStatus represents the publishing state of an entry.
type EntryStatus string

const (
	EntryStatusEdit      EntryStatus = "EDIT"
	EntryStatusPending   EntryStatus = "PENDING"
	EntryStatusQueue     EntryStatus = "QUEUE"
	EntryStatusPublished EntryStatus = "PUBLISHED"
	EntryStatusArchived  EntryStatus = "ARCHIVED"
	EntryStatusRemoved   EntryStatus = "REMOVED"
)

// LiveStatuses returns the statuses under which an entry is publicly live.
func LiveStatuses() []EntryStatus {
	return []EntryStatus{EntryStatusPublished, EntryStatusArchived}
}

// EntryType is the presentation format of an entry.
type EntryType string

const (
	EntryTypeScrollable EntryType = "SCROLLABLE"
	EntryTypeSlideshow  EntryType = "SLIDESHOW"
	EntryTypeVideo      EntryType = "VIDEO"
)

// Section placements and the section type used for internally hosted video.
const (
	SectionPlacementBody          = "body"
	SectionPlacementFeaturedVideo = "featured_video"

	SectionTypeText          = "text"
	SectionTypeInternalVideo = "video:internal"
)

// Entry is a published (or publishable) piece of content together with the
// collections the engine resolves against. Collections are loaded by the
// storage layer; the engine never lazily fetches them.
type Entry struct {
	ID               int64       `json:"id"`
	SiteID           string      `json:"site_id"`
	Title            string      `json:"title"`
	HeroShorterTitle string      `json:"hero_shorter_title,omitempty"`
	Basename         string      `json:"basename"`
	Body             string      `json:"body"`
	Status           EntryStatus `json:"status"`
	Type             EntryType   `json:"type"`
	PublishedAt      *time.Time  `json:"published_at,omitempty"`
	ModifiedAt       *time.Time  `json:"modified_at,omitempty"`

	Categories []EntryCategory `json:"categories,omitempty"`
	Tags       []EntryTag      `json:"tags,omitempty"`
	Assets     []EntryAsset    `json:"assets,omitempty"`
	Sections   []EntrySection  `json:"sections,omitempty"`
}

// IsLive returns true if the entry is published or archived.
func (e *Entry) IsLive() bool {
	return e.Status == EntryStatusPublished || e.Status == EntryStatusArchived
}

// IsBodyEmpty reports whether the stored body column is empty.
func (e *Entry) IsBodyEmpty() bool {
	return e.Body == ""
}

// ShortTitle returns the hero shorter title when one is set.
func (e *Entry) ShortTitle() string {
	if e.HeroShorterTitle != "" {
		return e.HeroShorterTitle
	}
	return e.Title
}

// EntryCategory associates an entry with a category.
type EntryCategory struct {
	EntryID    int64     `json:"entry_id"`
	CategoryID int64     `json:"category_id"`
	IsPrimary  bool      `json:"is_primary"`
	Category   *Category `json:"category,omitempty"`
}

// EntryTag associates an entry with a tag.
type EntryTag struct {
	EntryID   int64 `json:"entry_id"`
	TagID     int64 `json:"tag_id"`
	IsPrimary bool  `json:"is_primary"`
	Tag       *Tag  `json:"tag,omitempty"`
}

// EntrySection is one block of a sectioned entry body.
type EntrySection struct {
	ID           int64  `json:"id"`
	EntryID      int64  `json:"entry_id"`
	Placement    string `json:"placement"`
	Type         string `json:"type"`
	Content      string `json:"content"`
	DisplayOrder int    `json:"display_order"`
}
