// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"taxonomy/internal/models"
)

// ErrConflict is returned by Memory when a write would break a uniqueness
// or reference constraint that the SQL schema enforces.
var ErrConflict = errors.New("constraint violation")

// Memory is an in-process Storage with the same constraints as the SQL
// schema. Transactions roll back by restoring a snapshot, so every write
// made outside WithTx waits for the running transaction to finish.
type Memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	seq         map[string]int64
	categories  map[int64]*models.Category
	metaEntries map[int64]*models.MetaEntry
	metaValues  map[int64]*models.MetaValue
	tags        map[int64]*models.Tag
	entries     map[int64]*models.Entry
	assets      map[int64]models.Asset
	log         []InvalidationEntry
}

var _ Storage = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		seq:         make(map[string]int64),
		categories:  make(map[int64]*models.Category),
		metaEntries: make(map[int64]*models.MetaEntry),
		metaValues:  make(map[int64]*models.MetaValue),
		tags:        make(map[int64]*models.Tag),
		entries:     make(map[int64]*models.Entry),
		assets:      make(map[int64]models.Asset),
	}
}

func (m *Memory) next(table string) int64 {
	m.seq[table]++
	return m.seq[table]
}

func cloneCategory(c *models.Category) *models.Category {
	cp := *c
	if c.ParentID != nil {
		id := *c.ParentID
		cp.ParentID = &id
	}
	return &cp
}

func cloneTag(t *models.Tag) *models.Tag {
	cp := *t
	if t.CategoryID != nil {
		id := *t.CategoryID
		cp.CategoryID = &id
	}
	return &cp
}

func cloneEntry(e *models.Entry) *models.Entry {
	cp := *e
	cp.Categories = slices.Clone(e.Categories)
	cp.Tags = slices.Clone(e.Tags)
	cp.Assets = slices.Clone(e.Assets)
	cp.Sections = slices.Clone(e.Sections)
	for i := range cp.Categories {
		cp.Categories[i].Category = nil
	}
	for i := range cp.Tags {
		cp.Tags[i].Tag = nil
	}
	return &cp
}

// CategoryByID retrieves a category by ID. Returns nil if not found.
func (m *Memory) CategoryByID(_ context.Context, id int64) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.categories[id]; ok {
		return cloneCategory(c), nil
	}
	return nil, nil
}

// FindCategories returns the categories matching f.
func (m *Memory) FindCategories(_ context.Context, f CategoryFilter) ([]models.Category, error) {
	m.mu.RLock()
	var items []models.Category
	for _, c := range m.categories {
		switch {
		case f.SiteID != "" && c.SiteID != f.SiteID,
			f.Fullpath != "" && c.Fullpath != f.Fullpath,
			f.FullpathPrefix != "" && !strings.HasPrefix(c.Fullpath, f.FullpathPrefix),
			f.Type != "" && c.Type != f.Type,
			f.OnlyActive && !c.IsActive,
			f.RootsOnly && (!c.IsRoot || c.HasParent()):
			continue
		}
		items = append(items, *cloneCategory(c))
	}
	m.mu.RUnlock()

	slices.SortFunc(items, func(a, b models.Category) int {
		if f.ActiveFirst && a.IsActive != b.IsActive {
			if a.IsActive {
				return -1
			}
			return 1
		}
		if f.Order == OrderFullpath {
			return cmp.Or(strings.Compare(a.Fullpath, b.Fullpath), cmp.Compare(a.ID, b.ID))
		}
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
	})
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items, nil
}

// ChildCategories returns the direct children of parentID.
func (m *Memory) ChildCategories(_ context.Context, parentID int64) ([]models.Category, error) {
	m.mu.RLock()
	var items []models.Category
	for _, c := range m.categories {
		if c.ParentIDValue() == parentID {
			items = append(items, *cloneCategory(c))
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(items, func(a, b models.Category) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
	})
	return items, nil
}

func (m *Memory) saveCategory(c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID != 0 {
		if _, ok := m.categories[c.ID]; !ok {
			return fmt.Errorf("update category %d: %w", c.ID, ErrNotFound)
		}
	}
	if c.HasParent() {
		if _, ok := m.categories[*c.ParentID]; !ok {
			return fmt.Errorf("save category: parent %d: %w", *c.ParentID, ErrConflict)
		}
	}
	if c.IsRoot {
		for _, other := range m.categories {
			if other.IsRoot && other.SiteID == c.SiteID && other.ID != c.ID {
				return fmt.Errorf("save category: second root for site %q: %w", c.SiteID, ErrConflict)
			}
		}
	}

	now := time.Now().UTC()
	if c.ID == 0 {
		c.ID = m.next("categories")
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	m.categories[c.ID] = cloneCategory(c)
	return nil
}

func (m *Memory) deleteCategory(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return fmt.Errorf("delete category %d: %w", id, ErrNotFound)
	}
	for _, c := range m.categories {
		if c.ParentIDValue() == id {
			return fmt.Errorf("delete category %d: child %d still references it: %w", id, c.ID, ErrConflict)
		}
	}
	delete(m.categories, id)

	for vid, v := range m.metaValues {
		if v.CategoryID == id {
			delete(m.metaValues, vid)
		}
	}
	for _, t := range m.tags {
		if t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
		}
	}
	for _, e := range m.entries {
		e.Categories = slices.DeleteFunc(e.Categories, func(ec models.EntryCategory) bool {
			return ec.CategoryID == id
		})
	}
	return nil
}

// MetaEntryByName retrieves a metadata key by name. Returns nil if not found.
func (m *Memory) MetaEntryByName(_ context.Context, name string) (*models.MetaEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.metaEntries {
		if e.Name == name {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) saveMetaEntry(e *models.MetaEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.metaEntries {
		if other.Name == e.Name && other.ID != e.ID {
			return fmt.Errorf("save meta entry %q: %w", e.Name, ErrConflict)
		}
	}
	if e.ID == 0 {
		e.ID = m.next("meta_entries")
	} else if _, ok := m.metaEntries[e.ID]; !ok {
		return fmt.Errorf("update meta entry %d: %w", e.ID, ErrNotFound)
	}
	cp := *e
	m.metaEntries[e.ID] = &cp
	return nil
}

func (m *Memory) withName(v *models.MetaValue) models.MetaValue {
	cp := *v
	if e, ok := m.metaEntries[v.MetaID]; ok {
		cp.Name = e.Name
	}
	return cp
}

// MetaValuesByCategory returns the values owned by a category, ordered by key name.
func (m *Memory) MetaValuesByCategory(_ context.Context, categoryID int64) ([]models.MetaValue, error) {
	m.mu.RLock()
	var items []models.MetaValue
	for _, v := range m.metaValues {
		if v.CategoryID == categoryID {
			items = append(items, m.withName(v))
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(items, func(a, b models.MetaValue) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return items, nil
}

// MetaValue retrieves the value of one key on one category. Returns nil if not set.
func (m *Memory) MetaValue(_ context.Context, categoryID, metaID int64) (*models.MetaValue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.metaValues {
		if v.CategoryID == categoryID && v.MetaID == metaID {
			cp := m.withName(v)
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) saveMetaValue(v *models.MetaValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[v.CategoryID]; !ok {
		return fmt.Errorf("save meta value: category %d: %w", v.CategoryID, ErrConflict)
	}
	if _, ok := m.metaEntries[v.MetaID]; !ok {
		return fmt.Errorf("save meta value: meta entry %d: %w", v.MetaID, ErrConflict)
	}
	for _, other := range m.metaValues {
		if other.CategoryID == v.CategoryID && other.MetaID == v.MetaID && other.ID != v.ID {
			return fmt.Errorf("save meta value: duplicate key %d on category %d: %w", v.MetaID, v.CategoryID, ErrConflict)
		}
	}
	if v.ID == 0 {
		v.ID = m.next("meta_values")
	} else if _, ok := m.metaValues[v.ID]; !ok {
		return fmt.Errorf("update meta value %d: %w", v.ID, ErrNotFound)
	}
	cp := *v
	m.metaValues[v.ID] = &cp
	return nil
}

func (m *Memory) deleteMetaValues(categoryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.DeleteFunc(m.metaValues, func(_ int64, v *models.MetaValue) bool {
		return v.CategoryID == categoryID
	})
	return nil
}

// TagBySlug retrieves a tag by slug. Returns nil if not found.
func (m *Memory) TagBySlug(_ context.Context, slug string) (*models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tags {
		if t.Slug == slug {
			return cloneTag(t), nil
		}
	}
	return nil, nil
}

// TagsByCategory returns the tags owned by a category.
func (m *Memory) TagsByCategory(_ context.Context, categoryID int64) ([]models.Tag, error) {
	m.mu.RLock()
	var items []models.Tag
	for _, t := range m.tags {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			items = append(items, *cloneTag(t))
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(items, func(a, b models.Tag) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (m *Memory) saveTag(t *models.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.tags {
		if other.Slug == t.Slug && other.ID != t.ID {
			return fmt.Errorf("save tag %q: %w", t.Slug, ErrConflict)
		}
	}
	if t.CategoryID != nil {
		if _, ok := m.categories[*t.CategoryID]; !ok {
			return fmt.Errorf("save tag: category %d: %w", *t.CategoryID, ErrConflict)
		}
	}
	if t.ID == 0 {
		t.ID = m.next("tags")
	} else if _, ok := m.tags[t.ID]; !ok {
		return fmt.Errorf("update tag %d: %w", t.ID, ErrNotFound)
	}
	m.tags[t.ID] = cloneTag(t)
	return nil
}

// EntryByID retrieves an entry with its collections. Returns nil if not found.
func (m *Memory) EntryByID(_ context.Context, id int64) (*models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entryByID(id), nil
}

func (m *Memory) entryByID(id int64) *models.Entry {
	stored, ok := m.entries[id]
	if !ok {
		return nil
	}
	e := cloneEntry(stored)

	for i := range e.Categories {
		if c, ok := m.categories[e.Categories[i].CategoryID]; ok {
			e.Categories[i].Category = cloneCategory(c)
		}
	}
	slices.SortStableFunc(e.Categories, func(a, b models.EntryCategory) int {
		if a.Category == nil || b.Category == nil {
			return 0
		}
		return cmp.Or(cmp.Compare(a.Category.DisplayOrder, b.Category.DisplayOrder), cmp.Compare(a.CategoryID, b.CategoryID))
	})

	for i := range e.Tags {
		if t, ok := m.tags[e.Tags[i].TagID]; ok {
			e.Tags[i].Tag = cloneTag(t)
		}
	}
	slices.SortStableFunc(e.Tags, func(a, b models.EntryTag) int {
		return cmp.Compare(a.TagID, b.TagID)
	})

	for i := range e.Assets {
		e.Assets[i].Asset = m.assets[e.Assets[i].Asset.ID]
	}
	slices.SortStableFunc(e.Assets, func(a, b models.EntryAsset) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
	})
	slices.SortStableFunc(e.Sections, func(a, b models.EntrySection) int {
		return cmp.Or(cmp.Compare(a.DisplayOrder, b.DisplayOrder), cmp.Compare(a.ID, b.ID))
	})
	return e
}

func (m *Memory) saveEntry(e *models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID != 0 {
		if _, ok := m.entries[e.ID]; !ok {
			return fmt.Errorf("update entry %d: %w", e.ID, ErrNotFound)
		}
	}
	for i := range e.Categories {
		ec := &e.Categories[i]
		if ec.CategoryID == 0 && ec.Category != nil {
			ec.CategoryID = ec.Category.ID
		}
		if _, ok := m.categories[ec.CategoryID]; !ok {
			return fmt.Errorf("save entry: category %d: %w", ec.CategoryID, ErrConflict)
		}
	}
	for i := range e.Tags {
		et := &e.Tags[i]
		if et.TagID == 0 && et.Tag != nil {
			et.TagID = et.Tag.ID
		}
		if _, ok := m.tags[et.TagID]; !ok {
			return fmt.Errorf("save entry: tag %d: %w", et.TagID, ErrConflict)
		}
	}

	if e.ID == 0 {
		e.ID = m.next("entries")
	}
	for i := range e.Categories {
		e.Categories[i].EntryID = e.ID
	}
	for i := range e.Tags {
		e.Tags[i].EntryID = e.ID
	}
	for i := range e.Assets {
		ea := &e.Assets[i]
		ea.EntryID = e.ID
		if ea.Asset.ID == 0 {
			ea.Asset.ID = m.next("assets")
			m.assets[ea.Asset.ID] = ea.Asset
		}
		ea.ID = m.next("entry_assets")
	}
	for i := range e.Sections {
		sec := &e.Sections[i]
		sec.EntryID = e.ID
		sec.ID = m.next("entry_sections")
	}
	m.entries[e.ID] = cloneEntry(e)
	return nil
}

// CountCategoryEntries counts the entries associated with a category.
func (m *Memory) CountCategoryEntries(_ context.Context, categoryID int64, primaryOnly bool) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		for _, ec := range e.Categories {
			if ec.CategoryID == categoryID && (!primaryOnly || ec.IsPrimary) {
				n++
			}
		}
	}
	return n, nil
}

// NewestEntry returns the most recently published entry of a category. Returns nil if none.
func (m *Memory) NewestEntry(_ context.Context, categoryID int64, status models.EntryStatus) (*models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *models.Entry
	for _, e := range m.entries {
		if e.Status != status || e.PublishedAt == nil {
			continue
		}
		if !slices.ContainsFunc(e.Categories, func(ec models.EntryCategory) bool { return ec.CategoryID == categoryID }) {
			continue
		}
		if best == nil || e.PublishedAt.After(*best.PublishedAt) ||
			(e.PublishedAt.Equal(*best.PublishedAt) && e.ID > best.ID) {
			best = e
		}
	}
	if best == nil {
		return nil, nil
	}
	return m.entryByID(best.ID), nil
}

func (m *Memory) logInvalidation(entityType string, entityID int64, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = append(m.log, InvalidationEntry{
		ID:            m.next("cache_invalidation_log"),
		EntityType:    entityType,
		EntityID:      entityID,
		Action:        action,
		InvalidatedAt: time.Now().UTC(),
	})
}

// RecentInvalidations returns the most recent events, newest first.
func (m *Memory) RecentInvalidations(_ context.Context, limit int) ([]InvalidationEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []InvalidationEntry
	for i := len(m.log) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.log[i])
	}
	return out, nil
}

// SaveCategory inserts or updates a category.
func (m *Memory) SaveCategory(_ context.Context, c *models.Category) error {
	defer m.exclusive()()
	return m.saveCategory(c)
}

// DeleteCategory removes a single category. It fails while children exist.
func (m *Memory) DeleteCategory(_ context.Context, id int64) error {
	defer m.exclusive()()
	return m.deleteCategory(id)
}

// SaveMetaEntry inserts or updates a metadata key.
func (m *Memory) SaveMetaEntry(_ context.Context, e *models.MetaEntry) error {
	defer m.exclusive()()
	return m.saveMetaEntry(e)
}

// SaveMetaValue inserts or updates a metadata value.
func (m *Memory) SaveMetaValue(_ context.Context, v *models.MetaValue) error {
	defer m.exclusive()()
	return m.saveMetaValue(v)
}

// DeleteMetaValues removes every value owned by a category.
func (m *Memory) DeleteMetaValues(_ context.Context, categoryID int64) error {
	defer m.exclusive()()
	return m.deleteMetaValues(categoryID)
}

// SaveTag inserts or updates a tag.
func (m *Memory) SaveTag(_ context.Context, t *models.Tag) error {
	defer m.exclusive()()
	return m.saveTag(t)
}

// SaveEntry stores the entry and replaces its collections.
func (m *Memory) SaveEntry(_ context.Context, e *models.Entry) error {
	defer m.exclusive()()
	return m.saveEntry(e)
}

// LogInvalidation records a cache invalidation event.
func (m *Memory) LogInvalidation(_ context.Context, entityType string, entityID int64, action string) {
	defer m.exclusive()()
	m.logInvalidation(entityType, entityID, action)
}

// exclusive waits for any running transaction and returns the release func.
func (m *Memory) exclusive() func() {
	m.txMu.Lock()
	return m.txMu.Unlock
}

// memoryTx is the view handed to WithTx callbacks. It already holds the
// transaction lock. Nested WithTx calls run directly against it.
type memoryTx struct {
	*Memory
}

func (t memoryTx) SaveCategory(_ context.Context, c *models.Category) error {
	return t.saveCategory(c)
}

func (t memoryTx) DeleteCategory(_ context.Context, id int64) error {
	return t.deleteCategory(id)
}

func (t memoryTx) SaveMetaEntry(_ context.Context, e *models.MetaEntry) error {
	return t.saveMetaEntry(e)
}

func (t memoryTx) SaveMetaValue(_ context.Context, v *models.MetaValue) error {
	return t.saveMetaValue(v)
}

func (t memoryTx) DeleteMetaValues(_ context.Context, categoryID int64) error {
	return t.deleteMetaValues(categoryID)
}

func (t memoryTx) SaveTag(_ context.Context, tag *models.Tag) error {
	return t.saveTag(tag)
}

func (t memoryTx) SaveEntry(_ context.Context, e *models.Entry) error {
	return t.saveEntry(e)
}

func (t memoryTx) LogInvalidation(_ context.Context, entityType string, entityID int64, action string) {
	t.logInvalidation(entityType, entityID, action)
}

func (t memoryTx) WithTx(_ context.Context, fn func(tx Storage) error) error {
	return fn(t)
}

type memorySnapshot struct {
	seq         map[string]int64
	categories  map[int64]*models.Category
	metaEntries map[int64]*models.MetaEntry
	metaValues  map[int64]*models.MetaValue
	tags        map[int64]*models.Tag
	entries     map[int64]*models.Entry
	assets      map[int64]models.Asset
	log         []InvalidationEntry
}

func (m *Memory) snapshot() memorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := memorySnapshot{
		seq:         maps.Clone(m.seq),
		categories:  make(map[int64]*models.Category, len(m.categories)),
		metaEntries: make(map[int64]*models.MetaEntry, len(m.metaEntries)),
		metaValues:  make(map[int64]*models.MetaValue, len(m.metaValues)),
		tags:        make(map[int64]*models.Tag, len(m.tags)),
		entries:     make(map[int64]*models.Entry, len(m.entries)),
		assets:      maps.Clone(m.assets),
		log:         slices.Clone(m.log),
	}
	for id, c := range m.categories {
		s.categories[id] = cloneCategory(c)
	}
	for id, e := range m.metaEntries {
		cp := *e
		s.metaEntries[id] = &cp
	}
	for id, v := range m.metaValues {
		cp := *v
		s.metaValues[id] = &cp
	}
	for id, t := range m.tags {
		s.tags[id] = cloneTag(t)
	}
	for id, e := range m.entries {
		s.entries[id] = cloneEntry(e)
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq = s.seq
	m.categories = s.categories
	m.metaEntries = s.metaEntries
	m.metaValues = s.metaValues
	m.tags = s.tags
	m.entries = s.entries
	m.assets = s.assets
	m.log = s.log
}

// WithTx runs fn with all-or-nothing semantics.
func (m *Memory) WithTx(_ context.Context, fn func(tx Storage) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(memoryTx{m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}
