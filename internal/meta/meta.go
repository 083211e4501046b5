// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package meta serves per-category metadata dictionaries. Dictionaries are
// read through a cache store and rebuilt from storage on a miss; every
// write invalidates and rebuilds the affected dictionary before it returns. Values flagged
// pass-down are inherited by descendants that do not set the key.
package meta

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"taxonomy/internal/cache"
	"taxonomy/internal/models"
	"taxonomy/internal/store"
	"taxonomy/internal/taxonomy"
)

// Well-known metadata keys.
const (
	KeyTitle       = "meta_title"
	KeyDescription = "meta_description"
	KeyKeywords    = "meta_keywords"
	KeyNoIndex     = "noindex"
	KeyTrending    = "trending"
)

// Options tune inheritance and SEO defaults.
type Options struct {
	// InheritFromRoot lets the site root pass values down.
	InheritFromRoot bool
	// Inheritable reports whether a key may be inherited. Nil accepts all keys.
	Inheritable func(key string) bool

	DefaultDescription string
	DefaultKeywords    string
	// NoIndexSlugs are category slugs that are never indexed.
	NoIndexSlugs []string
}

// Cache is the metadata cache. Reads take no locks. Each category has a
// write generation; a rebuild that overlaps a write to the same category
// drops the dictionary it stored, so the next read loads committed values.
// Generations are per process.
type Cache struct {
	storage    store.Storage
	store      cache.Store
	categories *taxonomy.CategoryStore
	opts       Options

	gens sync.Map // category id -> *atomic.Uint64
}

// New creates a Cache.
func New(storage store.Storage, cs cache.Store, categories *taxonomy.CategoryStore, opts Options) *Cache {
	return &Cache{storage: storage, store: cs, categories: categories, opts: opts}
}

// Key returns the cache key of a category's dictionary.
func Key(categoryID int64) string {
	return "meta:" + strconv.FormatInt(categoryID, 10)
}

// dictionary returns c's own dictionary, rebuilding it on a miss.
func (m *Cache) dictionary(ctx context.Context, categoryID int64) (cache.Dictionary, error) {
	d, ok, err := m.store.Get(ctx, Key(categoryID))
	if err != nil {
		return nil, fmt.Errorf("read meta cache: %w", err)
	}
	if ok {
		return d, nil
	}
	return m.rebuild(ctx, categoryID)
}

func (m *Cache) generation(categoryID int64) *atomic.Uint64 {
	g, _ := m.gens.LoadOrStore(categoryID, new(atomic.Uint64))
	return g.(*atomic.Uint64)
}

// invalidate bumps the category's generation and evicts its dictionary.
// Callers invalidate after the write has committed.
func (m *Cache) invalidate(ctx context.Context, categoryID int64) error {
	m.generation(categoryID).Add(1)
	if err := m.store.Delete(ctx, Key(categoryID)); err != nil {
		return fmt.Errorf("evict meta cache: %w", err)
	}
	return nil
}

func (m *Cache) rebuild(ctx context.Context, categoryID int64) (cache.Dictionary, error) {
	gen := m.generation(categoryID)
	seen := gen.Load()

	values, err := m.storage.MetaValuesByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load meta values: %w", err)
	}
	d := make(cache.Dictionary, len(values))
	for _, v := range values {
		d[v.Name] = cache.Record{Value: v.Value, PassDown: v.PassDown}
	}
	if err := m.store.Set(ctx, Key(categoryID), d); err != nil {
		return nil, fmt.Errorf("write meta cache: %w", err)
	}
	if gen.Load() != seen {
		// A write committed while d was loading.
		if err := m.store.Delete(ctx, Key(categoryID)); err != nil {
			return nil, fmt.Errorf("evict meta cache: %w", err)
		}
	}
	return d, nil
}

// GetAll returns c's own values by key. Inherited values are not included.
func (m *Cache) GetAll(ctx context.Context, c *models.Category) (map[string]string, error) {
	if !c.Loaded() {
		return map[string]string{}, nil
	}
	d, err := m.dictionary(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(d))
	for k, r := range d {
		out[k] = r.Value
	}
	return out, nil
}

// Get returns the value of key for c. When c does not set key, the
// nearest ancestor holding a pass-down value for it wins.
func (m *Cache) Get(ctx context.Context, c *models.Category, key string) (string, bool, error) {
	if !c.Loaded() {
		return "", false, nil
	}
	d, err := m.dictionary(ctx, c.ID)
	if err != nil {
		return "", false, err
	}
	if r, ok := d[key]; ok {
		return r.Value, true, nil
	}
	if m.opts.Inheritable != nil && !m.opts.Inheritable(key) {
		return "", false, nil
	}

	ancestors, err := m.categories.Ancestors(ctx, c, false, m.opts.InheritFromRoot)
	if err != nil {
		return "", false, err
	}
	for _, a := range ancestors {
		d, err := m.dictionary(ctx, a.ID)
		if err != nil {
			return "", false, err
		}
		if r, ok := d[key]; ok && r.PassDown {
			return r.Value, true, nil
		}
	}
	return "", false, nil
}

// Set stores value under key for c, then evicts and rebuilds c's dictionary.
func (m *Cache) Set(ctx context.Context, c *models.Category, key, value string, passDown bool) error {
	if !c.Loaded() {
		return fmt.Errorf("set meta %q: %w", key, taxonomy.ErrCategoryNotFound)
	}

	err := m.storage.WithTx(ctx, func(tx store.Storage) error {
		entry, err := tx.MetaEntryByName(ctx, key)
		if err != nil {
			return fmt.Errorf("find meta entry: %w", err)
		}
		if entry == nil {
			entry = &models.MetaEntry{Name: key}
			if err := tx.SaveMetaEntry(ctx, entry); err != nil {
				return fmt.Errorf("create meta entry: %w", err)
			}
		}

		v, err := tx.MetaValue(ctx, c.ID, entry.ID)
		if err != nil {
			return fmt.Errorf("find meta value: %w", err)
		}
		if v == nil {
			v = &models.MetaValue{MetaID: entry.ID, CategoryID: c.ID}
		}
		v.Name = key
		v.Value = value
		v.PassDown = passDown
		if err := tx.SaveMetaValue(ctx, v); err != nil {
			return fmt.Errorf("save meta value: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := m.invalidate(ctx, c.ID); err != nil {
		return err
	}
	m.storage.LogInvalidation(ctx, "category", c.ID, "meta_set")
	if _, err := m.rebuild(ctx, c.ID); err != nil {
		return err
	}
	return nil
}

// Refresh rebuilds c's dictionary from storage.
func (m *Cache) Refresh(ctx context.Context, c *models.Category) error {
	if !c.Loaded() {
		return nil
	}
	if err := m.invalidate(ctx, c.ID); err != nil {
		return err
	}
	m.storage.LogInvalidation(ctx, "category", c.ID, "meta_refresh")
	if _, err := m.rebuild(ctx, c.ID); err != nil {
		return err
	}
	return nil
}

// Forget drops the cached dictionaries of the given categories, typically
// the ids returned by taxonomy.CategoryStore.CascadeDelete.
func (m *Cache) Forget(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		m.generation(id).Add(1)
		keys[i] = Key(id)
	}
	if err := m.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("evict meta cache: %w", err)
	}
	for _, id := range ids {
		m.storage.LogInvalidation(ctx, "category", id, "meta_forget")
	}
	return nil
}
