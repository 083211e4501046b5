// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CategoryType classifies a category within the editorial taxonomy.
type CategoryType string

const (
	CategoryTypeGlobal CategoryType = "GLOBAL"
	CategoryTypeLocal  CategoryType = "LOCAL"
	CategoryTypePoly   CategoryType = "POLY"
)

// CategoryTypes returns every known category type.
func CategoryTypes() []CategoryType {
	return []CategoryType{CategoryTypeGlobal, CategoryTypeLocal, CategoryTypePoly}
}

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeGlobal, CategoryTypeLocal, CategoryTypePoly:
		return true
	}
	return false
}

// Category is a node in a site's content taxonomy tree. Fullpath is the
// slash-joined slug path from the root and is kept in sync with ParentID
// by the taxonomy package; it is never used for traversal.
type Category struct {
	ID           int64        `json:"id"`
	SiteID       string       `json:"site_id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Fullpath     string       `json:"fullpath"`
	ParentID     *int64       `json:"parent_id"`
	IsActive     bool         `json:"is_active"`
	IsVisible    bool         `json:"is_visible"`
	DisplayOrder int          `json:"display_order"`
	IsRoot       bool         `json:"is_root"`
	Type         CategoryType `json:"type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Loaded reports whether c refers to a stored category. A nil or zero
// category is the "none" result of lookups.
func (c *Category) Loaded() bool {
	return c != nil && c.ID != 0
}

// HasParent reports whether the category has a parent reference.
func (c *Category) HasParent() bool {
	return c != nil && c.ParentID != nil && *c.ParentID != 0
}

// ParentIDValue returns the parent id, or 0 when the category has none.
func (c *Category) ParentIDValue() int64 {
	if !c.HasParent() {
		return 0
	}
	return *c.ParentID
}

// IsPublished returns true when the category is both active and visible.
func (c *Category) IsPublished() bool {
	return c.IsActive && c.IsVisible
}

// MetaEntry is a named metadata key shared by all categories.
type MetaEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MetaValue binds a MetaEntry to a category. When PassDown is set,
// descendants without their own value for the key inherit this one.
type MetaValue struct {
	ID         int64  `json:"id"`
	MetaID     int64  `json:"meta_id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	PassDown   bool   `json:"pass_down"`
}

// Tag is an editorial tag, optionally owned by a category.
type Tag struct {
	ID         int64  `json:"id"`
	Tag        string `json:"tag"`
	Slug       string `json:"slug"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Hidden     bool   `json:"hidden"`
}
