// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package aggregate assembles entry level views from the category tree,
// the metadata cache and the asset resolver.
package aggregate

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"taxonomy/internal/assets"
	"taxonomy/internal/markdown"
	"taxonomy/internal/meta"
	"taxonomy/internal/models"
	"taxonomy/internal/taxonomy"
)

// Options configure an Aggregator.
type Options struct {
	// ExcludedTagTypes are tag types never reported as an entry's primary tag.
	ExcludedTagTypes []string
	// MainAssetPolicy picks the main asset shown in views.
	MainAssetPolicy assets.Policy
}

// Aggregator composes entry views. It holds no locks.
type Aggregator struct {
	categories *taxonomy.CategoryStore
	meta       *meta.Cache
	assets     *assets.Resolver
	excluded   mapset.Set[string]
	policy     assets.Policy
}

// New creates an Aggregator.
func New(categories *taxonomy.CategoryStore, mc *meta.Cache, resolver *assets.Resolver, opts Options) *Aggregator {
	return &Aggregator{
		categories: categories,
		meta:       mc,
		assets:     resolver,
		excluded:   mapset.NewThreadUnsafeSet(opts.ExcludedTagTypes...),
		policy:     opts.MainAssetPolicy,
	}
}

// activeCategories returns the loaded active categories of e.
func activeCategories(e *models.Entry) []models.EntryCategory {
	if e == nil {
		return nil
	}
	var out []models.EntryCategory
	for _, ec := range e.Categories {
		if ec.Category.Loaded() && ec.Category.IsActive {
			out = append(out, ec)
		}
	}
	return out
}

// PrimaryCategory returns e's active primary category, or nil. When
// several are flagged primary the lowest display order, then id, wins.
func (a *Aggregator) PrimaryCategory(e *models.Entry) *models.Category {
	var best *models.Category
	for _, ec := range activeCategories(e) {
		if !ec.IsPrimary {
			continue
		}
		c := ec.Category
		if best == nil || cmp.Or(cmp.Compare(c.DisplayOrder, best.DisplayOrder), cmp.Compare(c.ID, best.ID)) < 0 {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// Breadcrumbs returns the primary category and its ancestors from the
// top level down. The root is not included.
func (a *Aggregator) Breadcrumbs(ctx context.Context, e *models.Entry) ([]models.Category, error) {
	primary := a.PrimaryCategory(e)
	if primary == nil {
		return []models.Category{}, nil
	}
	chain, err := a.categories.Ancestors(ctx, primary, true, false)
	if err != nil {
		return nil, err
	}
	slices.Reverse(chain)
	return chain, nil
}

// AllCategories returns every active category of e together with its
// ancestors, top level first, each category once.
func (a *Aggregator) AllCategories(ctx context.Context, e *models.Entry) ([]models.Category, error) {
	var all []models.Category
	for _, ec := range activeCategories(e) {
		chain, err := a.categories.Ancestors(ctx, ec.Category, true, false)
		if err != nil {
			return nil, err
		}
		all = append(all, chain...)
	}
	slices.Reverse(all)

	seen := mapset.NewThreadUnsafeSet[int64]()
	return slices.DeleteFunc(all, func(c models.Category) bool { return !seen.Add(c.ID) }), nil
}

// HasCategory reports whether slug names one of AllCategories.
func (a *Aggregator) HasCategory(ctx context.Context, e *models.Entry, slug string) (bool, error) {
	all, err := a.AllCategories(ctx, e)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(all, func(c models.Category) bool { return c.Slug == slug }), nil
}

// CategoryIDs returns the ids of e's active categories.
func (a *Aggregator) CategoryIDs(e *models.Entry) []int64 {
	active := activeCategories(e)
	ids := make([]int64, len(active))
	for i, ec := range active {
		ids[i] = ec.CategoryID
	}
	return ids
}

// GlobalCategory returns c itself or its nearest active GLOBAL ancestor.
func (a *Aggregator) GlobalCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	chain, err := a.categories.Ancestors(ctx, c, true, true)
	if err != nil {
		return nil, err
	}
	for _, p := range chain {
		if p.Type == models.CategoryTypeGlobal && p.IsActive {
			return &p, nil
		}
	}
	return nil, nil
}

// ModuleCategory returns the section an entry belongs to: the parent of
// its primary category, or the primary category itself when it sits at
// the top level or subcategory is set.
func (a *Aggregator) ModuleCategory(ctx context.Context, e *models.Entry, subcategory bool) (*models.Category, error) {
	primary := a.PrimaryCategory(e)
	if primary == nil {
		return nil, nil
	}
	chain, err := a.categories.Ancestors(ctx, primary, true, false)
	if err != nil {
		return nil, err
	}
	if !subcategory && len(chain) > 1 {
		return &chain[1], nil
	}
	return &chain[0], nil
}

// PrimaryTag returns e's primary tag unless its type is excluded.
func (a *Aggregator) PrimaryTag(e *models.Entry) *models.Tag {
	if e == nil {
		return nil
	}
	for _, et := range e.Tags {
		if et.IsPrimary && et.Tag != nil && !a.excluded.Contains(et.Tag.Type) {
			t := *et.Tag
			return &t
		}
	}
	return nil
}

// bodySections returns the body-placed sections of e in display order.
func bodySections(e *models.Entry) []models.EntrySection {
	var out []models.EntrySection
	for _, s := range e.Sections {
		if s.Placement == models.SectionPlacementBody {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b models.EntrySection) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// Body returns the stored body of e. An empty body is synthesized from
// the body sections: text sections are rendered from markdown, the rest
// are used as stored.
func (a *Aggregator) Body(e *models.Entry) (string, error) {
	if e == nil {
		return "", nil
	}
	if !e.IsBodyEmpty() {
		return e.Body, nil
	}

	var parts []string
	for _, s := range bodySections(e) {
		content := s.Content
		if s.Type == models.SectionTypeText {
			html, err := markdown.ToHTML(s.Content)
			if err != nil {
				return "", fmt.Errorf("render section %d: %w", s.ID, err)
			}
			content = html
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, "\n"), nil
}

// HasFeaturedVideo reports whether e leads with exactly one internal
// video. Entries without a stored body need it as their first body
// section; others need a featured video section.
func (a *Aggregator) HasFeaturedVideo(e *models.Entry) bool {
	if e == nil {
		return false
	}
	body := bodySections(e)
	if e.IsBodyEmpty() && len(body) > 0 {
		if body[0].Type != models.SectionTypeInternalVideo {
			return false
		}
		n := 0
		for _, s := range body {
			if s.Type == models.SectionTypeInternalVideo {
				n++
			}
		}
		return n == 1
	}
	return slices.ContainsFunc(e.Sections, func(s models.EntrySection) bool {
		return s.Placement == models.SectionPlacementFeaturedVideo && s.Type == models.SectionTypeInternalVideo
	})
}

// NewestEntry returns the most recently published entry of c, or nil.
func (a *Aggregator) NewestEntry(ctx context.Context, c *models.Category) (*models.Entry, error) {
	if !c.Loaded() {
		return nil, nil
	}
	e, err := a.categories.Storage().NewestEntry(ctx, c.ID, models.EntryStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("find newest entry: %w", err)
	}
	return e, nil
}
