// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go runs the same behavioural suite against the SQL store on
// an in-memory SQLite database and against the Memory store.
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"taxonomy/internal/database"
	"taxonomy/internal/models"
)

// testDB opens a private in-memory SQLite database with the schema applied.
// The connection is closed when the test finishes.
func testDB(t *testing.T) *SQL {
	t.Helper()

	db, err := database.Connect(database.SQLite, "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, database.SQLite))
	return NewSQL(db)
}

// forEachBackend runs fn once per Storage implementation.
func forEachBackend(t *testing.T, fn func(t *testing.T, s Storage)) {
	t.Helper()
	t.Run("sql", func(t *testing.T) { fn(t, testDB(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}

func ptr[T any](v T) *T { return &v }

// saveCategory stores a category under parent (nil for a root).
func saveCategory(t *testing.T, s Storage, site, slug string, parent *models.Category, mutate ...func(*models.Category)) *models.Category {
	t.Helper()
	c := &models.Category{
		SiteID:    site,
		Name:      slug,
		Slug:      slug,
		Fullpath:  slug,
		IsActive:  true,
		IsVisible: true,
		Type:      models.CategoryTypeLocal,
	}
	if parent == nil {
		c.IsRoot = true
	} else {
		c.ParentID = ptr(parent.ID)
		c.Fullpath = parent.Fullpath + "/" + slug
	}
	for _, m := range mutate {
		m(c)
	}
	require.NoError(t, s.SaveCategory(context.Background(), c))
	require.NotZero(t, c.ID)
	return c
}
