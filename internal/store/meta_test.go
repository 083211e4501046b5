// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxonomy/internal/models"
)

func TestMetaValues(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		c := saveCategory(t, s, "us", "fashion", root)

		title := &models.MetaEntry{Name: "title"}
		desc := &models.MetaEntry{Name: "description"}
		require.NoError(t, s.SaveMetaEntry(ctx, title))
		require.NoError(t, s.SaveMetaEntry(ctx, desc))
		assert.Error(t, s.SaveMetaEntry(ctx, &models.MetaEntry{Name: "title"}), "names are unique")

		got, err := s.MetaEntryByName(ctx, "title")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, title.ID, got.ID)

		none, err := s.MetaEntryByName(ctx, "keywords")
		require.NoError(t, err)
		assert.Nil(t, none)

		require.NoError(t, s.SaveMetaValue(ctx, &models.MetaValue{MetaID: title.ID, CategoryID: c.ID, Value: "Fashion", PassDown: true}))
		require.NoError(t, s.SaveMetaValue(ctx, &models.MetaValue{MetaID: desc.ID, CategoryID: c.ID, Value: "All about fashion"}))
		assert.Error(t, s.SaveMetaValue(ctx, &models.MetaValue{MetaID: title.ID, CategoryID: c.ID, Value: "dup"}),
			"one value per key and category")

		values, err := s.MetaValuesByCategory(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, "description", values[0].Name)
		assert.Equal(t, "title", values[1].Name)
		assert.Equal(t, "Fashion", values[1].Value)
		assert.True(t, values[1].PassDown)

		v, err := s.MetaValue(ctx, c.ID, title.ID)
		require.NoError(t, err)
		require.NotNil(t, v)
		v.Value = "Style"
		require.NoError(t, s.SaveMetaValue(ctx, v))

		v, err = s.MetaValue(ctx, c.ID, title.ID)
		require.NoError(t, err)
		assert.Equal(t, "Style", v.Value)
		assert.Equal(t, "title", v.Name)

		absent, err := s.MetaValue(ctx, root.ID, title.ID)
		require.NoError(t, err)
		assert.Nil(t, absent)

		require.NoError(t, s.DeleteMetaValues(ctx, c.ID))
		values, err = s.MetaValuesByCategory(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, values)
	})
}

func TestTags(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		c := saveCategory(t, s, "us", "fashion", root)

		owned := &models.Tag{Tag: "Sneakers", Slug: "sneakers", Name: "Sneakers", CategoryID: ptr(c.ID)}
		free := &models.Tag{Tag: "Summer", Slug: "summer", Name: "Summer", Type: "season", Hidden: true}
		require.NoError(t, s.SaveTag(ctx, owned))
		require.NoError(t, s.SaveTag(ctx, free))
		assert.Error(t, s.SaveTag(ctx, &models.Tag{Tag: "x", Slug: "summer"}), "slugs are unique")

		got, err := s.TagBySlug(ctx, "summer")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "season", got.Type)
		assert.True(t, got.Hidden)
		assert.Nil(t, got.CategoryID)

		none, err := s.TagBySlug(ctx, "winter")
		require.NoError(t, err)
		assert.Nil(t, none)

		tags, err := s.TagsByCategory(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, owned.ID, tags[0].ID)

		owned.Name = "Trainers"
		require.NoError(t, s.SaveTag(ctx, owned))
		got, err = s.TagBySlug(ctx, "sneakers")
		require.NoError(t, err)
		assert.Equal(t, "Trainers", got.Name)
	})
}

func TestDeleteCategoryCascadesOwnedRows(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		c := saveCategory(t, s, "us", "fashion", root)

		key := &models.MetaEntry{Name: "title"}
		require.NoError(t, s.SaveMetaEntry(ctx, key))
		require.NoError(t, s.SaveMetaValue(ctx, &models.MetaValue{MetaID: key.ID, CategoryID: c.ID, Value: "x"}))
		tag := &models.Tag{Tag: "Sneakers", Slug: "sneakers", CategoryID: ptr(c.ID)}
		require.NoError(t, s.SaveTag(ctx, tag))

		require.NoError(t, s.DeleteCategory(ctx, c.ID))

		values, err := s.MetaValuesByCategory(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, values)

		got, err := s.TagBySlug(ctx, "sneakers")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.CategoryID, "tag survives without its category")
	})
}
