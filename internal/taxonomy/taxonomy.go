// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy navigates and edits the category tree of each site.
// Traversal always follows parent references; fullpath is only used for
// lookups. Structural writes are serialized per site and keep every
// fullpath in step with the parent graph through pathindex.
package taxonomy

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"taxonomy/internal/models"
	"taxonomy/internal/pathindex"
	"taxonomy/internal/store"
)

// MaxDepth bounds every upward or downward walk of the tree.
const MaxDepth = 64

// CategoryStore exposes tree navigation and structural writes over a
// storage collaborator. It is safe for concurrent use.
type CategoryStore struct {
	storage store.Storage

	// locks holds one *sync.Mutex per site id.
	locks sync.Map
}

// NewCategoryStore creates a CategoryStore backed by storage.
func NewCategoryStore(storage store.Storage) *CategoryStore {
	return &CategoryStore{storage: storage}
}

// Storage returns the underlying storage collaborator.
func (s *CategoryStore) Storage() store.Storage {
	return s.storage
}

// ByID returns the category with the given id, or nil.
func (s *CategoryStore) ByID(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.storage.CategoryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// Parent returns c's parent, or nil when c has none.
func (s *CategoryStore) Parent(ctx context.Context, c *models.Category) (*models.Category, error) {
	return parentOf(ctx, s.storage, c)
}

func parentOf(ctx context.Context, st store.Storage, c *models.Category) (*models.Category, error) {
	if !c.HasParent() {
		return nil, nil
	}
	p, err := st.CategoryByID(ctx, *c.ParentID)
	if err != nil {
		return nil, fmt.Errorf("find parent category: %w", err)
	}
	return p, nil
}

// Children returns c's direct children ordered by display order.
func (s *CategoryStore) Children(ctx context.Context, c *models.Category, onlyActive bool) ([]models.Category, error) {
	if !c.Loaded() {
		return nil, nil
	}
	children, err := s.storage.ChildCategories(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	if onlyActive {
		children = slices.DeleteFunc(children, func(ch models.Category) bool { return !ch.IsActive })
	}
	return children, nil
}

// ActiveChildrenBySlug returns c's active children ordered by slug.
func (s *CategoryStore) ActiveChildrenBySlug(ctx context.Context, c *models.Category) ([]models.Category, error) {
	children, err := s.Children(ctx, c, true)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(children, func(a, b models.Category) int {
		return strings.Compare(a.Slug, b.Slug)
	})
	return children, nil
}

// Ancestors returns the chain above c, nearest first. With includeSelf, c
// leads the chain. The root is left out unless includeRoot is set. A chain
// that revisits a node or exceeds MaxDepth fails with *pathindex.CycleError.
func (s *CategoryStore) Ancestors(ctx context.Context, c *models.Category, includeSelf, includeRoot bool) ([]models.Category, error) {
	return ancestors(ctx, s.storage, c, includeSelf, includeRoot)
}

func ancestors(ctx context.Context, st store.Storage, c *models.Category, includeSelf, includeRoot bool) ([]models.Category, error) {
	if !c.Loaded() {
		return nil, nil
	}
	var out []models.Category
	if includeSelf {
		out = append(out, *c)
	}

	seen := mapset.NewThreadUnsafeSet(c.ID)
	cur := c
	for cur.HasParent() {
		parent, err := parentOf(ctx, st, cur)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		if !seen.Add(parent.ID) || seen.Cardinality() > MaxDepth {
			return nil, &pathindex.CycleError{NodeID: cur.ID, ParentID: parent.ID}
		}
		if parent.IsRoot && !includeRoot {
			break
		}
		out = append(out, *parent)
		cur = parent
	}
	return out, nil
}

// FindByFullpath looks a category up by path. In exact mode the fullpath
// must equal path. With firstMatch, the first category (by fullpath) whose
// fullpath starts with path's first segment is returned. Returns nil when
// nothing matches.
func (s *CategoryStore) FindByFullpath(ctx context.Context, path string, firstMatch, onlyActive bool) (*models.Category, error) {
	path = pathindex.NormalizePath(path)
	if path == "" {
		return nil, nil
	}

	f := store.CategoryFilter{OnlyActive: onlyActive, Order: store.OrderFullpath, Limit: 1}
	if firstMatch {
		f.FullpathPrefix = pathindex.FirstSegment(path)
	} else {
		f.Fullpath = path
	}

	found, err := s.storage.FindCategories(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find category by fullpath: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// FindByPath returns the category whose fullpath equals path, preferring
// active rows. When nothing matches and defaultPath is set, the category
// at defaultPath is returned instead.
func (s *CategoryStore) FindByPath(ctx context.Context, path string, onlyActive bool, defaultPath string) (*models.Category, error) {
	lookup := func(p string, onlyActive bool) (*models.Category, error) {
		found, err := s.storage.FindCategories(ctx, store.CategoryFilter{
			Fullpath:    p,
			OnlyActive:  onlyActive,
			ActiveFirst: true,
			Limit:       1,
		})
		if err != nil {
			return nil, fmt.Errorf("find category by path: %w", err)
		}
		if len(found) == 0 {
			return nil, nil
		}
		return &found[0], nil
	}

	if path = pathindex.NormalizePath(path); path != "" {
		c, err := lookup(path, onlyActive)
		if err != nil || c != nil {
			return c, err
		}
	}
	if defaultPath = pathindex.NormalizePath(defaultPath); defaultPath != "" {
		return lookup(defaultPath, false)
	}
	return nil, nil
}

// Root returns the root category of siteID.
func (s *CategoryStore) Root(ctx context.Context, siteID string) (*models.Category, error) {
	return rootOf(ctx, s.storage, siteID)
}

func rootOf(ctx context.Context, st store.Storage, siteID string) (*models.Category, error) {
	found, err := st.FindCategories(ctx, store.CategoryFilter{SiteID: siteID, RootsOnly: true, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("find root category: %w", err)
	}
	if len(found) == 0 {
		return nil, &RootNotFoundError{SiteID: siteID}
	}
	return &found[0], nil
}

// LocalCategories returns the active LOCAL categories of siteID.
func (s *CategoryStore) LocalCategories(ctx context.Context, siteID string) ([]models.Category, error) {
	found, err := s.storage.FindCategories(ctx, store.CategoryFilter{
		SiteID:     siteID,
		Type:       models.CategoryTypeLocal,
		OnlyActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list local categories: %w", err)
	}
	return found, nil
}

// CountEntries counts the entries associated with c, optionally only those
// where c is the primary category. With recursive, the counts of every
// descendant are added.
func (s *CategoryStore) CountEntries(ctx context.Context, c *models.Category, recursive, primaryOnly bool) (int, error) {
	if !c.Loaded() {
		return 0, nil
	}

	total := 0
	seen := mapset.NewThreadUnsafeSet[int64]()
	var walk func(id int64, depth int) error
	walk = func(id int64, depth int) error {
		if !seen.Add(id) || depth > MaxDepth {
			return &pathindex.CycleError{NodeID: id}
		}
		n, err := s.storage.CountCategoryEntries(ctx, id, primaryOnly)
		if err != nil {
			return fmt.Errorf("count entries: %w", err)
		}
		total += n
		if !recursive {
			return nil
		}
		children, err := s.storage.ChildCategories(ctx, id)
		if err != nil {
			return fmt.Errorf("list children: %w", err)
		}
		for _, ch := range children {
			if err := walk(ch.ID, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(c.ID, 0); err != nil {
		return 0, err
	}
	return total, nil
}

// TreeNode is one category of a subtree with its active children.
type TreeNode struct {
	Category models.Category `json:"category"`
	Tags     []models.Tag    `json:"tags,omitempty"`
	Children []*TreeNode     `json:"children"`
}

// Subtree builds the tree below rootID in pre-order. Only active children
// are included, ordered by type descending, then display order and id.
// Returns nil when rootID does not exist.
func (s *CategoryStore) Subtree(ctx context.Context, rootID int64, includeTags bool) (*TreeNode, error) {
	c, err := s.ByID(ctx, rootID)
	if err != nil || c == nil {
		return nil, err
	}
	return s.subtree(ctx, *c, includeTags, mapset.NewThreadUnsafeSet[int64](), 0)
}

func (s *CategoryStore) subtree(ctx context.Context, c models.Category, includeTags bool, seen mapset.Set[int64], depth int) (*TreeNode, error) {
	if !seen.Add(c.ID) || depth > MaxDepth {
		return nil, &pathindex.CycleError{NodeID: c.ID, ParentID: c.ParentIDValue()}
	}

	node := &TreeNode{Category: c, Children: []*TreeNode{}}
	if includeTags {
		tags, err := s.storage.TagsByCategory(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list category tags: %w", err)
		}
		node.Tags = tags
	}

	children, err := s.Children(ctx, &c, true)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(children, func(a, b models.Category) int {
		return cmp.Or(
			strings.Compare(string(b.Type), string(a.Type)),
			cmp.Compare(a.DisplayOrder, b.DisplayOrder),
			cmp.Compare(a.ID, b.ID),
		)
	})
	for _, ch := range children {
		child, err := s.subtree(ctx, ch, includeTags, seen, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// SubtreesOfType returns one subtree per category of type t on siteID.
// An empty siteID covers every site.
func (s *CategoryStore) SubtreesOfType(ctx context.Context, siteID string, t models.CategoryType, includeTags bool) ([]*TreeNode, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategoryType, t)
	}
	found, err := s.storage.FindCategories(ctx, store.CategoryFilter{SiteID: siteID, Type: t})
	if err != nil {
		return nil, fmt.Errorf("list categories of type: %w", err)
	}

	trees := make([]*TreeNode, 0, len(found))
	for _, c := range found {
		tree, err := s.subtree(ctx, c, includeTags, mapset.NewThreadUnsafeSet[int64](), 0)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// Walk visits tree in pre-order with each node's depth.
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int)) {
	var visit func(node *TreeNode, depth int)
	visit = func(node *TreeNode, depth int) {
		fn(node, depth)
		for _, ch := range node.Children {
			visit(ch, depth+1)
		}
	}
	if n != nil {
		visit(n, 0)
	}
}
