// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package aggregate

import (
	"context"
	"fmt"

	"taxonomy/internal/models"
)

// EntryView is everything a page needs to render one entry.
type EntryView struct {
	Entry           *models.Entry      `json:"entry"`
	Live            bool               `json:"live"`
	PrimaryCategory *models.Category   `json:"primary_category"`
	Breadcrumbs     []models.Category  `json:"breadcrumbs"`
	GlobalCategory  *models.Category   `json:"global_category"`
	PrimaryTag      *models.Tag        `json:"primary_tag"`
	Meta            map[string]string  `json:"meta"`
	MainAsset       *models.EntryAsset `json:"main_asset"`
	FeaturedVideo   bool               `json:"featured_video"`
	Body            string             `json:"body"`
}

// View builds the view of e. Meta holds the primary category's own values.
func (a *Aggregator) View(ctx context.Context, e *models.Entry) (*EntryView, error) {
	if e == nil {
		return nil, nil
	}
	v := &EntryView{
		Entry:           e,
		Live:            e.IsLive(),
		PrimaryCategory: a.PrimaryCategory(e),
		PrimaryTag:      a.PrimaryTag(e),
		MainAsset:       a.assets.Main(e, a.policy),
		FeaturedVideo:   a.HasFeaturedVideo(e),
		Meta:            map[string]string{},
	}

	var err error
	if v.Breadcrumbs, err = a.Breadcrumbs(ctx, e); err != nil {
		return nil, err
	}
	if v.PrimaryCategory != nil {
		if v.GlobalCategory, err = a.GlobalCategory(ctx, v.PrimaryCategory); err != nil {
			return nil, err
		}
		if v.Meta, err = a.meta.GetAll(ctx, v.PrimaryCategory); err != nil {
			return nil, err
		}
	}
	if v.Body, err = a.Body(e); err != nil {
		return nil, err
	}
	return v, nil
}

// ViewByID loads entry id and builds its view. Returns nil when the entry
// does not exist.
func (a *Aggregator) ViewByID(ctx context.Context, id int64) (*EntryView, error) {
	e, err := a.categories.Storage().EntryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find entry: %w", err)
	}
	return a.View(ctx, e)
}
