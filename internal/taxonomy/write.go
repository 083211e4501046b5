// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"taxonomy/internal/models"
	"taxonomy/internal/pathindex"
	"taxonomy/internal/slug"
	"taxonomy/internal/store"
)

// lock acquires the structural write lock of siteID and returns its release.
func (s *CategoryStore) lock(siteID string) func() {
	v, _ := s.locks.LoadOrStore(siteID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// loadIndex builds a path index over every category of siteID.
func loadIndex(ctx context.Context, tx store.Storage, siteID string) (*pathindex.Index, error) {
	cats, err := tx.FindCategories(ctx, store.CategoryFilter{SiteID: siteID})
	if err != nil {
		return nil, fmt.Errorf("load site categories: %w", err)
	}
	nodes := make([]pathindex.Node, len(cats))
	for i, c := range cats {
		nodes[i] = pathindex.Node{ID: c.ID, ParentID: c.ParentIDValue(), Slug: c.Slug, Fullpath: c.Fullpath}
	}
	ix, err := pathindex.New(nodes)
	if err != nil {
		return nil, fmt.Errorf("index site categories: %w", err)
	}
	return ix, nil
}

// Create stores a new category. The slug defaults to one generated from
// the name. A root must be the only root of its site; any other category
// needs an existing parent on the same site. Fullpath is computed.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}
	c.Slug = pathindex.NormalizePath(c.Slug)
	if !slug.Valid(c.Slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, c.Slug)
	}
	if c.Type == "" {
		c.Type = models.CategoryTypeLocal
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategoryType, c.Type)
	}

	defer s.lock(c.SiteID)()

	return s.storage.WithTx(ctx, func(tx store.Storage) error {
		parentPath := ""
		if c.IsRoot {
			if c.HasParent() {
				return fmt.Errorf("create root %q: %w", c.Slug, ErrMoveRoot)
			}
			_, err := rootOf(ctx, tx, c.SiteID)
			if err == nil {
				return fmt.Errorf("create root %q: %w", c.Slug, ErrDuplicateRoot)
			}
			if !errors.Is(err, ErrRootNotFound) {
				return err
			}
			c.ParentID = nil
		} else {
			if !c.HasParent() {
				return fmt.Errorf("create category %q: %w", c.Slug, ErrParentNotFound)
			}
			parent, err := tx.CategoryByID(ctx, *c.ParentID)
			if err != nil {
				return fmt.Errorf("find parent category: %w", err)
			}
			if parent == nil {
				return fmt.Errorf("create category %q under %d: %w", c.Slug, *c.ParentID, ErrParentNotFound)
			}
			if parent.SiteID != c.SiteID {
				return fmt.Errorf("create category %q under %d: %w", c.Slug, parent.ID, ErrCrossSiteParent)
			}
			parentPath = parent.Fullpath
		}

		c.Fullpath = pathindex.JoinPath(parentPath, c.Slug)
		if err := tx.SaveCategory(ctx, c); err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
}

// Update saves c. Name, flags, display order and type are written as
// given; slug and parent changes are applied through the path index so
// the fullpath of c and all of its descendants follows.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategoryType, c.Type)
	}
	c.Slug = pathindex.NormalizePath(c.Slug)
	if !slug.Valid(c.Slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, c.Slug)
	}

	current, err := s.ByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("update category %d: %w", c.ID, ErrCategoryNotFound)
	}

	return s.restructure(ctx, current.SiteID, c.ID, func(existing *models.Category) {
		existing.Name = c.Name
		existing.IsActive = c.IsActive
		existing.IsVisible = c.IsVisible
		existing.DisplayOrder = c.DisplayOrder
		existing.Type = c.Type
		existing.Slug = c.Slug
		existing.ParentID = c.ParentID
	}, c)
}

// Rename changes the slug of category id.
func (s *CategoryStore) Rename(ctx context.Context, id int64, newSlug string) (*models.Category, error) {
	newSlug = pathindex.NormalizePath(newSlug)
	if !slug.Valid(newSlug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, newSlug)
	}
	return s.edit(ctx, id, func(c *models.Category) { c.Slug = newSlug })
}

// Reparent moves category id under newParentID.
func (s *CategoryStore) Reparent(ctx context.Context, id, newParentID int64) (*models.Category, error) {
	return s.edit(ctx, id, func(c *models.Category) { c.ParentID = &newParentID })
}

func (s *CategoryStore) edit(ctx context.Context, id int64, mutate func(*models.Category)) (*models.Category, error) {
	current, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("edit category %d: %w", id, ErrCategoryNotFound)
	}
	var out models.Category
	if err := s.restructure(ctx, current.SiteID, id, mutate, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// restructure re-reads category id under the site lock, applies mutate and
// persists the category together with every descendant whose fullpath
// changed. The saved category is copied into out.
func (s *CategoryStore) restructure(ctx context.Context, siteID string, id int64, mutate func(*models.Category), out *models.Category) error {
	defer s.lock(siteID)()

	return s.storage.WithTx(ctx, func(tx store.Storage) error {
		c, err := tx.CategoryByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find category: %w", err)
		}
		if c == nil {
			return fmt.Errorf("edit category %d: %w", id, ErrCategoryNotFound)
		}
		oldParent, oldSlug := c.ParentIDValue(), c.Slug

		mutate(c)
		c.SiteID = siteID
		newParent := c.ParentIDValue()

		if newParent != oldParent {
			if c.IsRoot {
				return fmt.Errorf("move category %d: %w", id, ErrMoveRoot)
			}
			if newParent == 0 {
				return fmt.Errorf("move category %d: %w", id, ErrParentNotFound)
			}
			parent, err := tx.CategoryByID(ctx, newParent)
			if err != nil {
				return fmt.Errorf("find parent category: %w", err)
			}
			if parent == nil {
				return fmt.Errorf("move category %d under %d: %w", id, newParent, ErrParentNotFound)
			}
			if parent.SiteID != siteID {
				return fmt.Errorf("move category %d under %d: %w", id, newParent, ErrCrossSiteParent)
			}
		}

		var changed []pathindex.Node
		if newParent != oldParent || c.Slug != oldSlug {
			ix, err := loadIndex(ctx, tx, siteID)
			if err != nil {
				return err
			}
			if newParent != oldParent {
				if changed, err = ix.Reparent(id, newParent); err != nil {
					return err
				}
			}
			if c.Slug != oldSlug {
				renamed, err := ix.Rename(id, c.Slug)
				if err != nil {
					return err
				}
				changed = mergeChanged(changed, renamed)
			}
			if n, ok := ix.Get(id); ok {
				c.Fullpath = n.Fullpath
			}
		}

		if err := tx.SaveCategory(ctx, c); err != nil {
			return fmt.Errorf("save category: %w", err)
		}
		for _, n := range changed {
			if n.ID == id {
				continue
			}
			d, err := tx.CategoryByID(ctx, n.ID)
			if err != nil {
				return fmt.Errorf("find descendant: %w", err)
			}
			if d == nil {
				continue
			}
			d.Fullpath = n.Fullpath
			if err := tx.SaveCategory(ctx, d); err != nil {
				return fmt.Errorf("save descendant path: %w", err)
			}
		}
		if out != nil {
			*out = *c
		}
		return nil
	})
}

// mergeChanged keeps the latest path per node id.
func mergeChanged(a, b []pathindex.Node) []pathindex.Node {
	pos := make(map[int64]int, len(a))
	for i, n := range a {
		pos[n.ID] = i
	}
	for _, n := range b {
		if i, ok := pos[n.ID]; ok {
			a[i] = n
			continue
		}
		pos[n.ID] = len(a)
		a = append(a, n)
	}
	return a
}

// CascadeDelete removes category id with its metadata values and its whole
// subtree inside one transaction. It returns the removed ids, deepest
// first, so callers can evict cached data. Any failure rolls the
// transaction back and is reported as *CascadeDeleteError.
func (s *CategoryStore) CascadeDelete(ctx context.Context, id int64) ([]int64, error) {
	c, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("delete category %d: %w", id, ErrCategoryNotFound)
	}

	defer s.lock(c.SiteID)()

	var deleted []int64
	err = s.storage.WithTx(ctx, func(tx store.Storage) error {
		deleted = deleted[:0]
		seen := mapset.NewThreadUnsafeSet[int64]()

		var remove func(id int64, depth int) error
		remove = func(id int64, depth int) error {
			if !seen.Add(id) || depth > MaxDepth {
				return &CascadeDeleteError{CategoryID: id, Err: &pathindex.CycleError{NodeID: id}}
			}
			if err := tx.DeleteMetaValues(ctx, id); err != nil {
				return &CascadeDeleteError{CategoryID: id, Err: err}
			}
			children, err := tx.ChildCategories(ctx, id)
			if err != nil {
				return &CascadeDeleteError{CategoryID: id, Err: err}
			}
			for _, ch := range children {
				if err := remove(ch.ID, depth+1); err != nil {
					return err
				}
			}
			if err := tx.DeleteCategory(ctx, id); err != nil {
				return &CascadeDeleteError{CategoryID: id, Err: err}
			}
			deleted = append(deleted, id)
			return nil
		}
		return remove(id, 0)
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Verify checks that every stored fullpath of siteID matches the parent graph.
func (s *CategoryStore) Verify(ctx context.Context, siteID string) error {
	ix, err := loadIndex(ctx, s.storage, siteID)
	if err != nil {
		return err
	}
	return ix.Verify()
}
