// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxonomy/internal/models"
)

func categoryIDs(items []models.Category) []int64 {
	ids := make([]int64, len(items))
	for i, c := range items {
		ids[i] = c.ID
	}
	return ids
}

func TestCategoryRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		child := saveCategory(t, s, "us", "fashion", root, func(c *models.Category) {
			c.Type = models.CategoryTypeGlobal
			c.DisplayOrder = 3
		})

		got, err := s.CategoryByID(ctx, child.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "us/fashion", got.Fullpath)
		assert.Equal(t, models.CategoryTypeGlobal, got.Type)
		assert.Equal(t, 3, got.DisplayOrder)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, root.ID, *got.ParentID)
		assert.False(t, got.CreatedAt.IsZero())

		gotRoot, err := s.CategoryByID(ctx, root.ID)
		require.NoError(t, err)
		assert.Nil(t, gotRoot.ParentID)
		assert.True(t, gotRoot.IsRoot)

		missing, err := s.CategoryByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestCategoryUpdate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		c := saveCategory(t, s, "us", "fashion", root)

		c.Name = "Fashion & Style"
		c.IsActive = false
		require.NoError(t, s.SaveCategory(ctx, c))

		got, err := s.CategoryByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fashion & Style", got.Name)
		assert.False(t, got.IsActive)

		ghost := &models.Category{ID: 4242, SiteID: "us", Slug: "x", Fullpath: "us/x", Type: models.CategoryTypeLocal}
		err = s.SaveCategory(ctx, ghost)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestChildCategoriesOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		root := saveCategory(t, s, "us", "us", nil)
		b := saveCategory(t, s, "us", "beauty", root, func(c *models.Category) { c.DisplayOrder = 2 })
		f := saveCategory(t, s, "us", "fashion", root, func(c *models.Category) { c.DisplayOrder = 1 })
		h := saveCategory(t, s, "us", "health", root, func(c *models.Category) { c.DisplayOrder = 2 })
		saveCategory(t, s, "us", "shoes", f)

		children, err := s.ChildCategories(context.Background(), root.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{f.ID, b.ID, h.ID}, categoryIDs(children))
	})
}

func TestFindCategories(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		us := saveCategory(t, s, "us", "us", nil)
		fashion := saveCategory(t, s, "us", "fashion", us, func(c *models.Category) {
			c.Type = models.CategoryTypeGlobal
			c.DisplayOrder = 2
		})
		shoes := saveCategory(t, s, "us", "shoes", fashion)
		upper := saveCategory(t, s, "us", "Fashionable", us, func(c *models.Category) {
			c.IsActive = false
			c.DisplayOrder = 1
		})
		uk := saveCategory(t, s, "uk", "uk", nil)

		tests := []struct {
			name   string
			filter CategoryFilter
			want   []int64
		}{
			{name: "site", filter: CategoryFilter{SiteID: "uk"}, want: []int64{uk.ID}},
			{name: "fullpath", filter: CategoryFilter{Fullpath: "us/fashion/shoes"}, want: []int64{shoes.ID}},
			{
				name:   "prefix is case-sensitive",
				filter: CategoryFilter{FullpathPrefix: "us/fashion", Order: OrderFullpath},
				want:   []int64{fashion.ID, shoes.ID},
			},
			{name: "type", filter: CategoryFilter{Type: models.CategoryTypeGlobal}, want: []int64{fashion.ID}},
			{
				name:   "only active children of us",
				filter: CategoryFilter{SiteID: "us", FullpathPrefix: "us/", OnlyActive: true, Order: OrderFullpath},
				want:   []int64{fashion.ID, shoes.ID},
			},
			{name: "roots", filter: CategoryFilter{RootsOnly: true, Order: OrderFullpath}, want: []int64{uk.ID, us.ID}},
			{
				name:   "active first",
				filter: CategoryFilter{SiteID: "us", FullpathPrefix: "us/", ActiveFirst: true},
				want:   []int64{shoes.ID, fashion.ID, upper.ID},
			},
			{name: "limit", filter: CategoryFilter{SiteID: "us", Order: OrderFullpath, Limit: 1}, want: []int64{us.ID}},
			{name: "no match", filter: CategoryFilter{Fullpath: "nope"}, want: []int64{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.FindCategories(ctx, tt.filter)
				require.NoError(t, err)
				assert.Equal(t, tt.want, categoryIDs(got))
			})
		}
	})
}

func TestSecondRootRejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		saveCategory(t, s, "us", "us", nil)
		dup := &models.Category{SiteID: "us", Slug: "other", Fullpath: "other", IsRoot: true, Type: models.CategoryTypeLocal}
		assert.Error(t, s.SaveCategory(context.Background(), dup))
	})
}

func TestDeleteCategory(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		parent := saveCategory(t, s, "us", "fashion", root)
		leaf := saveCategory(t, s, "us", "shoes", parent)

		// A parent cannot go while a child references it.
		assert.Error(t, s.DeleteCategory(ctx, parent.ID))

		require.NoError(t, s.DeleteCategory(ctx, leaf.ID))
		require.NoError(t, s.DeleteCategory(ctx, parent.ID))

		got, err := s.CategoryByID(ctx, parent.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		err = s.DeleteCategory(ctx, parent.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestWithTxRollback(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)
		boom := errors.New("boom")

		var created int64
		err := s.WithTx(ctx, func(tx Storage) error {
			c := saveCategory(t, tx, "us", "fashion", root)
			created = c.ID

			// Nested scopes join the outer transaction.
			return tx.WithTx(ctx, func(inner Storage) error {
				root.Name = "renamed"
				if err := inner.SaveCategory(ctx, root); err != nil {
					return err
				}
				return boom
			})
		})
		require.ErrorIs(t, err, boom)

		got, err := s.CategoryByID(ctx, created)
		require.NoError(t, err)
		assert.Nil(t, got)

		gotRoot, err := s.CategoryByID(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, "us", gotRoot.Name)
	})
}

func TestWithTxCommit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		root := saveCategory(t, s, "us", "us", nil)

		var created int64
		err := s.WithTx(ctx, func(tx Storage) error {
			created = saveCategory(t, tx, "us", "fashion", root).ID
			return nil
		})
		require.NoError(t, err)

		got, err := s.CategoryByID(ctx, created)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "us/fashion", got.Fullpath)
	})
}

func TestMemoryRollbackKeepsOutsideWrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	root := saveCategory(t, m, "us", "us", nil)
	boom := errors.New("boom")

	opened := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- m.WithTx(ctx, func(tx Storage) error {
			c := &models.Category{SiteID: "us", Name: "Tmp", Slug: "tmp", Fullpath: "us/tmp", ParentID: ptr(root.ID)}
			if err := tx.SaveCategory(ctx, c); err != nil {
				return err
			}
			close(opened)
			<-release
			return boom
		})
	}()
	<-opened

	outside := make(chan struct{})
	go func() {
		m.LogInvalidation(ctx, "category", root.ID, "meta_set")
		root.Name = "Renamed"
		_ = m.SaveCategory(ctx, root)
		close(outside)
	}()

	// Give the outside writer time to reach the store before the rollback.
	time.Sleep(20 * time.Millisecond)
	close(release)
	require.ErrorIs(t, <-txDone, boom)
	<-outside

	log, err := m.RecentInvalidations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "meta_set", log[0].Action)

	got, err := m.CategoryByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	children, err := m.ChildCategories(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, children)
}
