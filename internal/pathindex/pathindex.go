// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pathindex keeps the materialized fullpath of category nodes
// consistent with their parent references. It holds a node table keyed by
// id, with parents stored as ids rather than pointers, and performs no I/O:
// callers load a site's nodes, apply a structural change here, and persist
// the nodes the index reports as changed.
package pathindex

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrCycle matches every *CycleError.
	ErrCycle = errors.New("category cycle")
	// ErrUnknownNode is returned when an operation names an id the index does not hold.
	ErrUnknownNode = errors.New("unknown category node")
	// ErrDuplicateNode is returned when a node id is added twice.
	ErrDuplicateNode = errors.New("duplicate category node")
	// ErrDanglingParent is returned when a node references a parent the index does not hold.
	ErrDanglingParent = errors.New("category parent not in index")
)

// CycleError reports a parent assignment that would make a node its own ancestor.
type CycleError struct {
	NodeID   int64
	ParentID int64
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("category %d under parent %d forms a cycle", e.NodeID, e.ParentID)
}

// Is makes errors.Is(err, ErrCycle) match.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// Node is one category in the index. ParentID 0 means no parent.
type Node struct {
	ID       int64
	ParentID int64
	Slug     string
	Fullpath string
}

// Index is a node table with a parent-to-children lookup. It is not safe
// for concurrent mutation; the taxonomy package serializes structural writes.
type Index struct {
	nodes    map[int64]*Node
	children map[int64][]int64
}

// New builds an index from nodes. Stored fullpaths are kept as-is so that
// Verify can report drift; use RecomputePath to repair.
func New(nodes []Node) (*Index, error) {
	ix := &Index{
		nodes:    make(map[int64]*Node, len(nodes)),
		children: make(map[int64][]int64),
	}
	for _, n := range nodes {
		if _, ok := ix.nodes[n.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID)
		}
		n.Slug = NormalizePath(n.Slug)
		ix.nodes[n.ID] = &n
	}
	for _, n := range ix.nodes {
		if n.ParentID == 0 {
			continue
		}
		if _, ok := ix.nodes[n.ParentID]; !ok {
			return nil, fmt.Errorf("%w: node %d references %d", ErrDanglingParent, n.ID, n.ParentID)
		}
		ix.link(n.ParentID, n.ID)
	}
	for id := range ix.nodes {
		if err := ix.checkChain(id); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// checkChain walks from id to its root and fails if the walk revisits a node.
func (ix *Index) checkChain(id int64) error {
	seen := make(map[int64]bool)
	for cur := id; cur != 0; cur = ix.nodes[cur].ParentID {
		if seen[cur] {
			return &CycleError{NodeID: id, ParentID: ix.nodes[id].ParentID}
		}
		seen[cur] = true
	}
	return nil
}

func (ix *Index) link(parentID, id int64) {
	kids := ix.children[parentID]
	i, _ := slices.BinarySearch(kids, id)
	ix.children[parentID] = slices.Insert(kids, i, id)
}

func (ix *Index) unlink(parentID, id int64) {
	kids := ix.children[parentID]
	if i, ok := slices.BinarySearch(kids, id); ok {
		ix.children[parentID] = slices.Delete(kids, i, i+1)
	}
	if len(ix.children[parentID]) == 0 {
		delete(ix.children, parentID)
	}
}

// Len returns the number of nodes held.
func (ix *Index) Len() int {
	return len(ix.nodes)
}

// Get returns a copy of the node with the given id.
func (ix *Index) Get(id int64) (Node, bool) {
	n, ok := ix.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Children returns the ids of id's direct children in ascending order.
func (ix *Index) Children(id int64) []int64 {
	return slices.Clone(ix.children[id])
}

// Add inserts a new node, computing its fullpath from its parent.
func (ix *Index) Add(n Node) (Node, error) {
	if _, ok := ix.nodes[n.ID]; ok {
		return Node{}, fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID)
	}
	n.Slug = NormalizePath(n.Slug)
	parentPath := ""
	if n.ParentID != 0 {
		p, ok := ix.nodes[n.ParentID]
		if !ok {
			return Node{}, fmt.Errorf("%w: node %d references %d", ErrDanglingParent, n.ID, n.ParentID)
		}
		parentPath = p.Fullpath
		ix.link(n.ParentID, n.ID)
	}
	n.Fullpath = JoinPath(parentPath, n.Slug)
	ix.nodes[n.ID] = &n
	return n, nil
}

// DetectCycle fails with *CycleError when newParentID is id itself or one
// of id's descendants.
func (ix *Index) DetectCycle(id, newParentID int64) error {
	if newParentID == 0 {
		return nil
	}
	if newParentID == id {
		return &CycleError{NodeID: id, ParentID: newParentID}
	}
	steps := 0
	for cur := newParentID; cur != 0; {
		if cur == id {
			return &CycleError{NodeID: id, ParentID: newParentID}
		}
		n, ok := ix.nodes[cur]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownNode, cur)
		}
		steps++
		if steps > len(ix.nodes) {
			return &CycleError{NodeID: cur, ParentID: n.ParentID}
		}
		cur = n.ParentID
	}
	return nil
}

// Reparent moves id under newParentID (0 detaches it) and recomputes the
// fullpath of id and its descendants. The index is unchanged on error.
func (ix *Index) Reparent(id, newParentID int64) ([]Node, error) {
	n, ok := ix.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if newParentID != 0 {
		if _, ok := ix.nodes[newParentID]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownNode, newParentID)
		}
	}
	if err := ix.DetectCycle(id, newParentID); err != nil {
		return nil, err
	}
	if n.ParentID != 0 {
		ix.unlink(n.ParentID, id)
	}
	n.ParentID = newParentID
	if newParentID != 0 {
		ix.link(newParentID, id)
	}
	return ix.RecomputePath(id), nil
}

// Rename changes id's slug and recomputes the affected fullpaths.
func (ix *Index) Rename(id int64, slug string) ([]Node, error) {
	n, ok := ix.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	n.Slug = NormalizePath(slug)
	return ix.RecomputePath(id), nil
}

// RecomputePath recomputes the fullpath of id and every descendant in
// pre-order and returns copies of the nodes whose fullpath changed.
func (ix *Index) RecomputePath(id int64) []Node {
	if _, ok := ix.nodes[id]; !ok {
		return nil
	}
	var changed []Node
	stack := []int64{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := ix.nodes[cur]
		want := JoinPath(ix.parentPath(n), n.Slug)
		if n.Fullpath != want {
			n.Fullpath = want
			changed = append(changed, *n)
		}

		kids := ix.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return changed
}

func (ix *Index) parentPath(n *Node) string {
	if n.ParentID == 0 {
		return ""
	}
	if p, ok := ix.nodes[n.ParentID]; ok {
		return p.Fullpath
	}
	return ""
}

// Descendants returns every descendant of id in pre-order, excluding id.
func (ix *Index) Descendants(id int64) []int64 {
	var out []int64
	stack := slices.Clone(ix.children[id])
	slices.Reverse(stack)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		kids := ix.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Ancestors returns id's ancestors nearest-first.
func (ix *Index) Ancestors(id int64) []int64 {
	var out []int64
	n, ok := ix.nodes[id]
	if !ok {
		return nil
	}
	for cur := n.ParentID; cur != 0 && len(out) < len(ix.nodes); {
		out = append(out, cur)
		cur = ix.nodes[cur].ParentID
	}
	return out
}

// Depth returns the number of ancestors of id.
func (ix *Index) Depth(id int64) int {
	return len(ix.Ancestors(id))
}

// Remove deletes id and its subtree, returning the removed ids children-first.
func (ix *Index) Remove(id int64) []int64 {
	n, ok := ix.nodes[id]
	if !ok {
		return nil
	}
	subtree := append([]int64{id}, ix.Descendants(id)...)
	slices.Reverse(subtree)
	if n.ParentID != 0 {
		ix.unlink(n.ParentID, id)
	}
	for _, cur := range subtree {
		delete(ix.children, cur)
		delete(ix.nodes, cur)
	}
	return subtree
}

// Verify checks that every stored fullpath matches the parent graph.
func (ix *Index) Verify() error {
	ids := make([]int64, 0, len(ix.nodes))
	for id := range ix.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var errs []error
	for _, id := range ids {
		n := ix.nodes[id]
		if want := JoinPath(ix.parentPath(n), n.Slug); n.Fullpath != want {
			errs = append(errs, fmt.Errorf("category %d: fullpath %q, want %q", id, n.Fullpath, want))
		}
	}
	return errors.Join(errs...)
}
