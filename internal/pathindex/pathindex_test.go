// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pathindex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleIndex builds:
//
//	1 us
//	├── 2 us/fashion
//	│   └── 4 us/fashion/shoes
//	│       └── 5 us/fashion/shoes/boots
//	└── 3 us/beauty
func sampleIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := New([]Node{
		{ID: 1, Slug: "us", Fullpath: "us"},
		{ID: 2, ParentID: 1, Slug: "fashion", Fullpath: "us/fashion"},
		{ID: 3, ParentID: 1, Slug: "beauty", Fullpath: "us/beauty"},
		{ID: 4, ParentID: 2, Slug: "shoes", Fullpath: "us/fashion/shoes"},
		{ID: 5, ParentID: 4, Slug: "boots", Fullpath: "us/fashion/shoes/boots"},
	})
	require.NoError(t, err)
	require.NoError(t, ix.Verify())
	return ix
}

func fullpath(t *testing.T, ix *Index, id int64) string {
	t.Helper()
	n, ok := ix.Get(id)
	require.True(t, ok, "node %d missing", id)
	return n.Fullpath
}

func TestNewRejectsBadGraphs(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		want  error
	}{
		{
			name:  "duplicate id",
			nodes: []Node{{ID: 1, Slug: "a"}, {ID: 1, Slug: "b"}},
			want:  ErrDuplicateNode,
		},
		{
			name:  "dangling parent",
			nodes: []Node{{ID: 1, Slug: "a"}, {ID: 2, ParentID: 9, Slug: "b"}},
			want:  ErrDanglingParent,
		},
		{
			name:  "two node cycle",
			nodes: []Node{{ID: 1, ParentID: 2, Slug: "a"}, {ID: 2, ParentID: 1, Slug: "b"}},
			want:  ErrCycle,
		},
		{
			name:  "self parent",
			nodes: []Node{{ID: 1, ParentID: 1, Slug: "a"}},
			want:  ErrCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.nodes)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAddComputesFullpath(t *testing.T) {
	ix := sampleIndex(t)

	n, err := ix.Add(Node{ID: 6, ParentID: 4, Slug: "/sneakers/"})
	require.NoError(t, err)
	assert.Equal(t, "sneakers", n.Slug)
	assert.Equal(t, "us/fashion/shoes/sneakers", n.Fullpath)
	assert.Equal(t, []int64{5, 6}, ix.Children(4))

	root, err := ix.Add(Node{ID: 7, Slug: "uk"})
	require.NoError(t, err)
	assert.Equal(t, "uk", root.Fullpath)

	_, err = ix.Add(Node{ID: 8, ParentID: 99, Slug: "x"})
	assert.ErrorIs(t, err, ErrDanglingParent)

	_, err = ix.Add(Node{ID: 2, Slug: "again"})
	assert.ErrorIs(t, err, ErrDuplicateNode)

	require.NoError(t, ix.Verify())
}

func TestRenameRecomputesDescendants(t *testing.T) {
	ix := sampleIndex(t)

	changed, err := ix.Rename(2, "style")
	require.NoError(t, err)

	ids := make([]int64, 0, len(changed))
	for _, n := range changed {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int64{2, 4, 5}, ids, "pre-order, only affected nodes")
	assert.Equal(t, "us/style", fullpath(t, ix, 2))
	assert.Equal(t, "us/style/shoes", fullpath(t, ix, 4))
	assert.Equal(t, "us/style/shoes/boots", fullpath(t, ix, 5))
	assert.Equal(t, "us/beauty", fullpath(t, ix, 3))
	require.NoError(t, ix.Verify())
}

func TestRenameSameSlugChangesNothing(t *testing.T) {
	ix := sampleIndex(t)
	changed, err := ix.Rename(2, "fashion")
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestReparentMovesSubtree(t *testing.T) {
	ix := sampleIndex(t)

	changed, err := ix.Reparent(4, 3)
	require.NoError(t, err)
	assert.Len(t, changed, 2)
	assert.Equal(t, "us/beauty/shoes", fullpath(t, ix, 4))
	assert.Equal(t, "us/beauty/shoes/boots", fullpath(t, ix, 5))
	assert.Empty(t, ix.Children(2))
	assert.Equal(t, []int64{4}, ix.Children(3))
	assert.Equal(t, []int64{4, 3, 1}, ix.Ancestors(5))
	require.NoError(t, ix.Verify())
}

func TestReparentToTopLevel(t *testing.T) {
	ix := sampleIndex(t)

	_, err := ix.Reparent(4, 0)
	require.NoError(t, err)
	assert.Equal(t, "shoes", fullpath(t, ix, 4))
	assert.Equal(t, "shoes/boots", fullpath(t, ix, 5))
	assert.Equal(t, 0, ix.Depth(4))
	require.NoError(t, ix.Verify())
}

func TestReparentCycleLeavesIndexUnchanged(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		newParent int64
	}{
		{name: "onto itself", id: 2, newParent: 2},
		{name: "onto child", id: 2, newParent: 4},
		{name: "onto grandchild", id: 2, newParent: 5},
		{name: "root onto leaf", id: 1, newParent: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := sampleIndex(t)
			before := map[int64]Node{}
			for id := int64(1); id <= 5; id++ {
				before[id], _ = ix.Get(id)
			}

			_, err := ix.Reparent(tt.id, tt.newParent)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCycle)

			var cycleErr *CycleError
			require.True(t, errors.As(err, &cycleErr))
			assert.Equal(t, tt.id, cycleErr.NodeID)
			assert.Equal(t, tt.newParent, cycleErr.ParentID)

			for id, n := range before {
				got, _ := ix.Get(id)
				assert.Equal(t, n, got)
			}
			assert.Equal(t, []int64{2, 3}, ix.Children(1))
		})
	}
}

func TestReparentUnknownNodes(t *testing.T) {
	ix := sampleIndex(t)
	_, err := ix.Reparent(42, 1)
	assert.ErrorIs(t, err, ErrUnknownNode)
	_, err = ix.Reparent(2, 42)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestDetectCycleAllowsSiblingsAndAncestors(t *testing.T) {
	ix := sampleIndex(t)
	assert.NoError(t, ix.DetectCycle(4, 3))
	assert.NoError(t, ix.DetectCycle(5, 1))
	assert.NoError(t, ix.DetectCycle(5, 0))
}

func TestDescendantsPreOrder(t *testing.T) {
	ix := sampleIndex(t)
	assert.Equal(t, []int64{2, 4, 5, 3}, ix.Descendants(1))
	assert.Empty(t, ix.Descendants(5))
}

func TestRemoveSubtree(t *testing.T) {
	ix := sampleIndex(t)

	removed := ix.Remove(2)
	assert.Equal(t, []int64{5, 4, 2}, removed, "children first")
	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, []int64{3}, ix.Children(1))

	_, ok := ix.Get(4)
	assert.False(t, ok)
	assert.Nil(t, ix.Remove(2))
}

func TestVerifyReportsDrift(t *testing.T) {
	ix, err := New([]Node{
		{ID: 1, Slug: "us", Fullpath: "us"},
		{ID: 2, ParentID: 1, Slug: "fashion", Fullpath: "fashion"},
	})
	require.NoError(t, err)

	err = ix.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `category 2: fullpath "fashion", want "us/fashion"`)

	changed := ix.RecomputePath(1)
	assert.Len(t, changed, 1)
	assert.NoError(t, ix.Verify())
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, "a/b", NormalizePath("/a/b/"))
	assert.Equal(t, "a/b", NormalizePath("  a/b  "))
	assert.Equal(t, "slug", JoinPath("", "slug"))
	assert.Equal(t, "us/slug", JoinPath("/us/", "/slug"))
	assert.Equal(t, "us", JoinPath("us", ""))
	assert.Equal(t, "us/fashion/shoes", JoinSegments("us", "", "/fashion/", "shoes"))
	assert.Equal(t, "", JoinSegments())
	assert.Equal(t, "us", FirstSegment("/us/fashion"))
	assert.Equal(t, "us", FirstSegment("us"))
	assert.Equal(t, "", FirstSegment(""))
}

func TestSlugComparisonIsCaseSensitive(t *testing.T) {
	ix := sampleIndex(t)
	_, err := ix.Rename(3, "Beauty")
	require.NoError(t, err)
	assert.Equal(t, "us/Beauty", fullpath(t, ix, 3))
}
