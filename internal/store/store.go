// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store is the storage collaborator of the taxonomy engine. Storage
// is the narrow read/write contract the engine calls through; SQL implements
// it over database/sql (PostgreSQL via pgx, or SQLite) and Memory implements
// it in process for tests and tooling.
//
// Lookups return nil with a nil error when a record does not exist.
package store

import (
	"context"
	"errors"
	"time"

	"taxonomy/internal/models"
)

// ErrNotFound is returned by writes that target a record which does not exist.
var ErrNotFound = errors.New("record not found")

// CategoryOrder selects the sort order of FindCategories.
type CategoryOrder int

const (
	// OrderDisplay sorts by display_order, then id.
	OrderDisplay CategoryOrder = iota
	// OrderFullpath sorts by fullpath, then id.
	OrderFullpath
)

// CategoryFilter narrows FindCategories. Zero-valued fields do not filter.
type CategoryFilter struct {
	SiteID         string
	Fullpath       string
	FullpathPrefix string
	Type           models.CategoryType
	OnlyActive     bool
	// RootsOnly keeps categories flagged is_root that have no parent.
	RootsOnly bool
	// ActiveFirst sorts active categories ahead of inactive ones.
	ActiveFirst bool
	Order       CategoryOrder
	Limit       int
}

// Storage is the record-level contract used by the engine.
type Storage interface {
	CategoryByID(ctx context.Context, id int64) (*models.Category, error)
	FindCategories(ctx context.Context, f CategoryFilter) ([]models.Category, error)
	// ChildCategories returns the direct children of parentID ordered by display_order, id.
	ChildCategories(ctx context.Context, parentID int64) ([]models.Category, error)
	// SaveCategory inserts when c.ID is zero and updates otherwise.
	SaveCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	MetaEntryByName(ctx context.Context, name string) (*models.MetaEntry, error)
	SaveMetaEntry(ctx context.Context, m *models.MetaEntry) error
	// MetaValuesByCategory returns the values owned by a category with Name filled in.
	MetaValuesByCategory(ctx context.Context, categoryID int64) ([]models.MetaValue, error)
	MetaValue(ctx context.Context, categoryID, metaID int64) (*models.MetaValue, error)
	SaveMetaValue(ctx context.Context, v *models.MetaValue) error
	DeleteMetaValues(ctx context.Context, categoryID int64) error

	TagBySlug(ctx context.Context, slug string) (*models.Tag, error)
	TagsByCategory(ctx context.Context, categoryID int64) ([]models.Tag, error)
	SaveTag(ctx context.Context, t *models.Tag) error

	// EntryByID loads an entry with its categories, tags, assets and sections.
	EntryByID(ctx context.Context, id int64) (*models.Entry, error)
	// SaveEntry stores the entry row and replaces its collections.
	SaveEntry(ctx context.Context, e *models.Entry) error
	CountCategoryEntries(ctx context.Context, categoryID int64, primaryOnly bool) (int, error)
	// NewestEntry returns the most recently published entry of a category with the given status.
	NewestEntry(ctx context.Context, categoryID int64, status models.EntryStatus) (*models.Entry, error)

	// LogInvalidation records a cache invalidation event. It is best-effort.
	LogInvalidation(ctx context.Context, entityType string, entityID int64, action string)
	RecentInvalidations(ctx context.Context, limit int) ([]InvalidationEntry, error)

	// WithTx runs fn against a transactional view of the storage. fn's
	// writes are committed when it returns nil and discarded otherwise.
	// Nested calls join the outer transaction.
	WithTx(ctx context.Context, fn func(tx Storage) error) error
}

// InvalidationEntry is a single recorded cache invalidation.
type InvalidationEntry struct {
	ID            int64
	EntityType    string
	EntityID      int64
	Action        string
	InvalidatedAt time.Time
}
