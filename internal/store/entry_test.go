// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxonomy/internal/models"
)

func publishedAt(day int) *time.Time {
	t := time.Date(2026, time.March, day, 9, 0, 0, 0, time.UTC)
	return &t
}

func TestEntryRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		fashion := saveCategory(t, s, "us", "fashion", root, func(c *models.Category) { c.DisplayOrder = 2 })
		beauty := saveCategory(t, s, "us", "beauty", root, func(c *models.Category) { c.DisplayOrder = 1 })
		tag := &models.Tag{Tag: "Sneakers", Slug: "sneakers", Name: "Sneakers"}
		require.NoError(t, s.SaveTag(ctx, tag))

		media := uuid.New()
		e := &models.Entry{
			SiteID:      "us",
			Title:       "Spring sneakers",
			Basename:    "spring-sneakers",
			Status:      models.EntryStatusPublished,
			Type:        models.EntryTypeScrollable,
			PublishedAt: publishedAt(1),
			Categories: []models.EntryCategory{
				{CategoryID: fashion.ID, IsPrimary: true},
				{CategoryID: beauty.ID},
			},
			Tags: []models.EntryTag{{TagID: tag.ID, IsPrimary: true}},
			Assets: []models.EntryAsset{
				{Type: models.AssetTypeMain, DisplayOrder: 2, IsActive: true, Asset: models.Asset{Kind: models.AssetKindImage, Title: "second", MediaID: &media}},
				{Type: models.AssetTypeMain, DisplayOrder: 1, IsActive: false, Crop: models.Crop{X: 1, Y: 2, W: 30, H: 40}, Asset: models.Asset{Kind: models.AssetKindImage, Title: "first"}},
				{Type: models.AssetTypeEmbedded, DisplayOrder: 3, IsActive: true, Asset: models.Asset{Kind: models.AssetKindVideo, Source: models.VideoSourceInternal, Title: "clip"}},
			},
			Sections: []models.EntrySection{
				{Placement: models.SectionPlacementBody, Type: models.SectionTypeText, Content: "b", DisplayOrder: 2},
				{Placement: models.SectionPlacementBody, Type: models.SectionTypeText, Content: "a", DisplayOrder: 1},
			},
		}
		require.NoError(t, s.SaveEntry(ctx, e))
		require.NotZero(t, e.ID)

		got, err := s.EntryByID(ctx, e.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Spring sneakers", got.Title)
		assert.Equal(t, models.EntryStatusPublished, got.Status)
		require.NotNil(t, got.PublishedAt)
		assert.True(t, got.PublishedAt.Equal(*publishedAt(1)))
		assert.Nil(t, got.ModifiedAt)

		require.Len(t, got.Categories, 2)
		assert.Equal(t, beauty.ID, got.Categories[0].CategoryID, "ordered by category display order")
		require.NotNil(t, got.Categories[1].Category)
		assert.Equal(t, "us/fashion", got.Categories[1].Category.Fullpath)
		assert.True(t, got.Categories[1].IsPrimary)

		require.Len(t, got.Tags, 1)
		require.NotNil(t, got.Tags[0].Tag)
		assert.Equal(t, "sneakers", got.Tags[0].Tag.Slug)

		require.Len(t, got.Assets, 3)
		assert.Equal(t, "first", got.Assets[0].Asset.Title)
		assert.Equal(t, models.Crop{X: 1, Y: 2, W: 30, H: 40}, got.Assets[0].Crop)
		assert.Nil(t, got.Assets[0].Asset.MediaID)
		require.NotNil(t, got.Assets[1].Asset.MediaID)
		assert.Equal(t, media, *got.Assets[1].Asset.MediaID)
		assert.True(t, got.Assets[2].Asset.IsInternalVideo())

		require.Len(t, got.Sections, 2)
		assert.Equal(t, "a", got.Sections[0].Content)

		missing, err := s.EntryByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestSaveEntryReplacesCollections(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		fashion := saveCategory(t, s, "us", "fashion", root)
		beauty := saveCategory(t, s, "us", "beauty", root)

		e := &models.Entry{
			SiteID:     "us",
			Title:      "t",
			Basename:   "t",
			Status:     models.EntryStatusEdit,
			Type:       models.EntryTypeScrollable,
			Categories: []models.EntryCategory{{CategoryID: fashion.ID, IsPrimary: true}},
		}
		require.NoError(t, s.SaveEntry(ctx, e))

		e.Title = "t2"
		e.Categories = []models.EntryCategory{{CategoryID: beauty.ID, IsPrimary: true}}
		require.NoError(t, s.SaveEntry(ctx, e))

		got, err := s.EntryByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "t2", got.Title)
		require.Len(t, got.Categories, 1)
		assert.Equal(t, beauty.ID, got.Categories[0].CategoryID)

		n, err := s.CountCategoryEntries(ctx, fashion.ID, false)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestCountCategoryEntries(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		fashion := saveCategory(t, s, "us", "fashion", root)

		for i, primary := range []bool{true, false, true} {
			e := &models.Entry{
				SiteID:     "us",
				Title:      "e",
				Basename:   "e" + string(rune('a'+i)),
				Status:     models.EntryStatusPublished,
				Type:       models.EntryTypeScrollable,
				Categories: []models.EntryCategory{{CategoryID: fashion.ID, IsPrimary: primary}},
			}
			require.NoError(t, s.SaveEntry(ctx, e))
		}

		all, err := s.CountCategoryEntries(ctx, fashion.ID, false)
		require.NoError(t, err)
		assert.Equal(t, 3, all)

		primary, err := s.CountCategoryEntries(ctx, fashion.ID, true)
		require.NoError(t, err)
		assert.Equal(t, 2, primary)

		none, err := s.CountCategoryEntries(ctx, root.ID, false)
		require.NoError(t, err)
		assert.Zero(t, none)
	})
}

func TestNewestEntry(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		fashion := saveCategory(t, s, "us", "fashion", root)

		save := func(title string, status models.EntryStatus, at *time.Time) *models.Entry {
			e := &models.Entry{
				SiteID:      "us",
				Title:       title,
				Basename:    title,
				Status:      status,
				Type:        models.EntryTypeScrollable,
				PublishedAt: at,
				Categories:  []models.EntryCategory{{CategoryID: fashion.ID, IsPrimary: true}},
			}
			require.NoError(t, s.SaveEntry(ctx, e))
			return e
		}

		save("old", models.EntryStatusPublished, publishedAt(1))
		newest := save("new", models.EntryStatusPublished, publishedAt(5))
		save("draft", models.EntryStatusEdit, publishedAt(9))
		save("undated", models.EntryStatusPublished, nil)

		got, err := s.NewestEntry(ctx, fashion.ID, models.EntryStatusPublished)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, newest.ID, got.ID)
		assert.Len(t, got.Categories, 1)

		none, err := s.NewestEntry(ctx, root.ID, models.EntryStatusPublished)
		require.NoError(t, err)
		assert.Nil(t, none)
	})
}

func TestInvalidationLog(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()

		// Log is best-effort and never fails the caller.
		s.LogInvalidation(ctx, "category", 7, "set")
		s.LogInvalidation(ctx, "category", 8, "delete")

		entries, err := s.RecentInvalidations(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(8), entries[0].EntityID, "newest first")
		assert.Equal(t, "delete", entries[0].Action)
		assert.Equal(t, "category", entries[1].EntityType)
		assert.False(t, entries[1].InvalidatedAt.IsZero())

		limited, err := s.RecentInvalidations(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}
