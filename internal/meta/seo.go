// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package meta

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"taxonomy/internal/models"
)

// SEOMetadata is the page metadata of a category listing.
type SEOMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	NoIndex     bool   `json:"noindex"`
}

// SetTrending stores the slugs of the tags that exist, in the given order.
// Unknown slugs are dropped. The value is never passed down.
func (m *Cache) SetTrending(ctx context.Context, c *models.Category, slugs []string) error {
	kept := make([]string, 0, len(slugs))
	for _, s := range slugs {
		t, err := m.storage.TagBySlug(ctx, strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("find tag: %w", err)
		}
		if t != nil {
			kept = append(kept, t.Slug)
		}
	}
	return m.Set(ctx, c, KeyTrending, strings.Join(kept, ","), false)
}

// Trending returns c's trending tags. It returns nil when none are set or
// when any stored slug no longer resolves to a tag.
func (m *Cache) Trending(ctx context.Context, c *models.Category) ([]models.Tag, error) {
	own, err := m.GetAll(ctx, c)
	if err != nil {
		return nil, err
	}
	raw := own[KeyTrending]
	if raw == "" {
		return nil, nil
	}

	var tags []models.Tag
	for _, s := range strings.Split(raw, ",") {
		t, err := m.storage.TagBySlug(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("find tag: %w", err)
		}
		if t == nil {
			return nil, nil
		}
		tags = append(tags, *t)
	}
	return tags, nil
}

// SEO returns the listing metadata of c for the given page number. Unset
// title falls back to the names of c and its ancestors; description and
// keywords fall back to the configured defaults.
func (m *Cache) SEO(ctx context.Context, c *models.Category, page int) (SEOMetadata, error) {
	own, err := m.GetAll(ctx, c)
	if err != nil {
		return SEOMetadata{}, err
	}

	md := SEOMetadata{
		Title:       own[KeyTitle],
		Description: cmp.Or(own[KeyDescription], m.opts.DefaultDescription),
		Keywords:    cmp.Or(own[KeyKeywords], m.opts.DefaultKeywords),
		NoIndex:     truthy(own[KeyNoIndex]),
	}
	if md.Title == "" {
		chain, err := m.categories.Ancestors(ctx, c, true, false)
		if err != nil {
			return SEOMetadata{}, err
		}
		names := make([]string, len(chain))
		for i, a := range chain {
			names[i] = a.Name
		}
		md.Title = strings.Join(names, ", ")
	}
	if page > 1 || (c.Loaded() && slices.Contains(m.opts.NoIndexSlugs, c.Slug)) {
		md.NoIndex = true
	}
	return md, nil
}

func truthy(v string) bool {
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}
