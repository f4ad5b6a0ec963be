// Copyright 2026 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/sortdesc"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// testGroup is a minimal Container holding group level tables in order.
type testGroup struct {
	alloc  array.Allocator
	tables []*Table
}

func newTestGroup() *testGroup {
	return &testGroup{alloc: array.NewMemAllocator()}
}

func (g *testGroup) TableCount() int {
	return len(g.tables)
}

func (g *testGroup) TableByIndex(ndx int) (*Table, error) {
	if ndx < 0 || ndx >= len(g.tables) {
		return nil, coreerr.ErrIndexOutOfRange.New("table", ndx, len(g.tables))
	}
	return g.tables[ndx], nil
}

func (g *testGroup) IndexOf(t *Table) int {
	for i, tbl := range g.tables {
		if tbl == t {
			return i
		}
	}
	return -1
}

func (g *testGroup) add(t *testing.T) *Table {
	ref, err := CreateStorage(g.alloc)
	require.NoError(t, err)
	tbl, err := Attach(g.alloc, ref, g)
	require.NoError(t, err)
	g.tables = append(g.tables, tbl)
	return tbl
}

// linkedPair returns a target table with an int column "score" holding scores
// and an origin table with a link column "l" and a link list column "ll" both
// pointing at the target.
func linkedPair(t *testing.T, originRows int, scores ...int64) (*testGroup, *Table, *Table) {
	g := newTestGroup()
	target := g.add(t)
	_, err := target.AddColumn(typeinfo.Int, "score", false)
	require.NoError(t, err)
	_, err = target.AddEmptyRow(len(scores))
	require.NoError(t, err)
	for row, s := range scores {
		require.NoError(t, target.SetInt(0, row, s))
	}

	origin := g.add(t)
	_, err = origin.AddColumnLink(typeinfo.Link, "l", target)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(typeinfo.LinkList, "ll", target)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(originRows)
	require.NoError(t, err)
	return g, target, origin
}

func links(t *testing.T, tbl *Table, col int) []int {
	targets := make([]int, tbl.Size())
	for row := range targets {
		target, err := tbl.GetLink(col, row)
		require.NoError(t, err)
		targets[row] = target
	}
	return targets
}

func TestLinks(t *testing.T) {
	_, target, origin := linkedPair(t, 3, 10, 20, 30)

	nullable, err := origin.IsNullable(0)
	require.NoError(t, err)
	assert.True(t, nullable)
	assert.Equal(t, []int{-1, -1, -1}, links(t, origin, 0))

	require.NoError(t, origin.SetLink(0, 0, 2))
	require.NoError(t, origin.SetLink(0, 1, 2))
	require.NoError(t, origin.SetAny(0, 2, 0))
	assert.Equal(t, []int{2, 2, 0}, links(t, origin, 0))

	linked, err := origin.GetLinkTarget(0)
	require.NoError(t, err)
	assert.Same(t, target, linked)
	v, err := origin.Get(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	n, err := target.GetBacklinkCount(2, origin, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	back, err := target.GetBacklink(2, origin, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, back)
	_, err = target.GetBacklink(2, origin, 0, 2)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
	n, err = target.GetBacklinkCountAll(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, origin.NullifyLink(0, 2))
	isNull, err := origin.IsNullLink(0, 2)
	require.NoError(t, err)
	assert.True(t, isNull)
	n, err = target.GetBacklinkCountAll(0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, origin.SetNull(0, 0))
	n, err = target.GetBacklinkCount(2, origin, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = origin.SetLink(0, 0, 3)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
	_, err = target.GetLinkTarget(0)
	assert.True(t, coreerr.ErrTypeMismatch.Is(err))

	require.NoError(t, origin.Verify())
	require.NoError(t, target.Verify())
}

func TestRemovingTargetRowsUpdatesLinks(t *testing.T) {
	_, target, origin := linkedPair(t, 3, 0, 1, 2, 3)
	for row, tgt := range []int{3, 1, 2} {
		require.NoError(t, origin.SetLink(0, row, tgt))
	}
	lv, err := origin.GetLinkList(1, 0)
	require.NoError(t, err)
	for _, tgt := range []int{3, 0, 3} {
		require.NoError(t, lv.Add(tgt))
	}

	originVersion := origin.Version()
	require.NoError(t, target.RemoveRow(1))
	assert.Greater(t, origin.Version(), originVersion)
	assert.Equal(t, []int{2, -1, 1}, links(t, origin, 0))
	targets, err := lv.Targets()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 2}, targets)
	require.NoError(t, origin.Verify())

	require.NoError(t, target.MoveLastOver(0))
	assert.Equal(t, []int{0, -1, 1}, links(t, origin, 0))
	targets, err = lv.Targets()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, targets)

	n, err := target.GetBacklinkCount(0, origin, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = target.GetBacklinkCountAll(0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, origin.Verify())

	require.NoError(t, target.Clear())
	assert.Equal(t, []int{-1, -1, -1}, links(t, origin, 0))
	assert.Equal(t, 0, lv.Size())
	require.NoError(t, origin.Verify())
}

func TestRemovingOriginRowsUpdatesBacklinks(t *testing.T) {
	_, target, origin := linkedPair(t, 3, 0, 1)
	for row, tgt := range []int{0, 1, 0} {
		require.NoError(t, origin.SetLink(0, row, tgt))
	}

	require.NoError(t, origin.RemoveRow(0))
	n, err := target.GetBacklinkCount(0, origin, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	back, err := target.GetBacklink(0, origin, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, back)

	require.NoError(t, origin.MoveLastOver(0))
	back, err = target.GetBacklink(0, origin, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, back)
	require.NoError(t, origin.Verify())

	require.NoError(t, origin.Clear())
	n, err = target.GetBacklinkCountAll(0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.NoError(t, origin.Verify())
}

func TestLinkColumnsFollowSchemaChanges(t *testing.T) {
	_, target, origin := linkedPair(t, 2, 5, 6)
	require.NoError(t, origin.SetLink(0, 0, 1))
	lv, err := origin.GetLinkList(1, 1)
	require.NoError(t, err)
	require.NoError(t, lv.Add(1))

	require.NoError(t, origin.InsertColumn(0, typeinfo.Bool, "b", false))
	assert.Equal(t, 1, origin.ColumnIndex("l"))
	n, err := target.GetBacklinkCount(1, origin, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = target.GetBacklinkCount(1, origin, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, lv.Size())
	require.NoError(t, origin.Verify())

	require.NoError(t, origin.RemoveColumn(1))
	n, err = target.GetBacklinkCount(1, origin, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, lv.IsAttached())
	require.NoError(t, origin.Verify())

	require.NoError(t, origin.RemoveColumn(1))
	assert.False(t, lv.IsAttached())
	n, err = target.GetBacklinkCountAll(1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 2, origin.Size())
	require.NoError(t, target.Verify())
}

func TestCrossTableLinks(t *testing.T) {
	g, target, _ := linkedPair(t, 0, 1)
	alloc := g.alloc

	free, err := New(alloc)
	require.NoError(t, err)
	_, err = free.AddColumnLink(typeinfo.Link, "l", target)
	assert.True(t, coreerr.ErrCrossTableLink.Is(err))

	member := g.add(t)
	_, err = member.AddColumnLink(typeinfo.Link, "l", free)
	assert.True(t, coreerr.ErrCrossTableLink.Is(err))
	_, err = member.AddColumnLink(typeinfo.Int, "i", target)
	assert.True(t, coreerr.ErrTypeMismatch.Is(err))
	_, err = member.AddColumnLink(typeinfo.LinkList, "ll", nil)
	assert.True(t, ErrLinkTargetRequired.Is(err))

	_, err = member.AddColumn(typeinfo.Table, "sub", false)
	require.NoError(t, err)
	desc, err := member.GetDescriptor()
	require.NoError(t, err)
	subdesc, err := desc.GetSubdescriptor(0)
	require.NoError(t, err)
	_, err = subdesc.AddColumnLink(typeinfo.Link, "l", target)
	assert.True(t, coreerr.ErrCrossTableLink.Is(err))

	_, err = target.GetBacklinkCount(0, free, 0)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
	_, err = free.AddColumn(typeinfo.Int, "i", false)
	require.NoError(t, err)
	_, err = target.GetBacklinkCount(0, free, 0)
	assert.True(t, coreerr.ErrCrossTableLink.Is(err))
}

func TestSelfLinks(t *testing.T) {
	g := newTestGroup()
	tree := g.add(t)
	_, err := tree.AddColumn(typeinfo.String, "name", false)
	require.NoError(t, err)
	_, err = tree.AddColumnLink(typeinfo.Link, "parent", tree)
	require.NoError(t, err)
	_, err = tree.AddEmptyRow(4)
	require.NoError(t, err)
	for row, parent := range []int{-1, 0, 0, 1} {
		require.NoError(t, tree.SetString(0, row, string(rune('a'+row))))
		require.NoError(t, tree.SetLink(1, row, parent))
	}
	n, err := tree.GetBacklinkCount(0, tree, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, tree.Verify())

	require.NoError(t, tree.RemoveRow(0))
	assert.Equal(t, []int{-1, -1, 0}, links(t, tree, 1))
	require.NoError(t, tree.Verify())

	require.NoError(t, tree.MoveLastOver(0))
	assert.Equal(t, []int{-1, -1}, links(t, tree, 1))
	require.NoError(t, tree.Verify())
}

func TestLinkView(t *testing.T) {
	_, target, origin := linkedPair(t, 2, 5, 3, 9, 1)

	lv, err := origin.GetLinkList(1, 0)
	require.NoError(t, err)
	same, err := origin.GetLinkList(1, 0)
	require.NoError(t, err)
	assert.Same(t, lv, same)
	assert.Same(t, origin, lv.GetOriginTable())
	assert.Equal(t, 0, lv.GetOriginRowIndex())
	lvTarget, err := lv.GetTarget()
	require.NoError(t, err)
	assert.Same(t, target, lvTarget)

	require.NoError(t, lv.Add(2))
	require.NoError(t, lv.Add(0))
	require.NoError(t, lv.Insert(1, 1))
	targets, err := lv.Targets()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, targets)
	i, err := lv.Find(1)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	i, err = lv.Find(3)
	require.NoError(t, err)
	assert.Equal(t, -1, i)

	require.NoError(t, lv.Set(0, 3))
	require.NoError(t, lv.Move(0, 2))
	targets, err = lv.Targets()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 3}, targets)
	require.NoError(t, lv.Remove(1))
	require.NoError(t, lv.Add(0))
	require.NoError(t, lv.Add(2))

	size, err := origin.GetLinkListSize(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, size)
	n, err := target.GetBacklinkCount(3, origin, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tests := []struct {
		name      string
		ascending bool
		expected  []int
	}{
		{"ascending", true, []int{3, 1, 0, 2}},
		{"descending", false, []int{2, 0, 1, 3}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.NoError(t, lv.Sort(0, test.ascending))
			targets, err := lv.Targets()
			require.NoError(t, err)
			assert.Equal(t, test.expected, targets)
		})
	}

	err = lv.Add(4)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
	err = lv.Insert(9, 0)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
	err = lv.Remove(4)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
	require.NoError(t, origin.Verify())

	require.NoError(t, lv.Clear())
	assert.Equal(t, 0, lv.Size())
	n, err = target.GetBacklinkCountAll(3)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	other, err := origin.GetLinkList(1, 1)
	require.NoError(t, err)
	require.NoError(t, other.Add(0))
	require.NoError(t, origin.RemoveRow(0))
	assert.False(t, lv.IsAttached())
	assert.Equal(t, 0, other.GetOriginRowIndex())
	assert.Equal(t, 0, lv.Size())
	_, err = lv.Targets()
	assert.True(t, coreerr.ErrInvalidAccessorState.Is(err))

	other.Release()
	assert.False(t, other.IsAttached())
	require.NoError(t, origin.Verify())
}

func TestRemovingLinkColumnDropsBacklinkColumn(t *testing.T) {
	_, target, origin := linkedPair(t, 2, 5, 6)
	nullable, err := origin.IsNullable(1)
	require.NoError(t, err)
	assert.False(t, nullable)

	require.NoError(t, origin.SetLink(0, 0, 1))
	require.NoError(t, origin.SetLink(0, 1, 1))
	lv, err := origin.GetLinkList(1, 0)
	require.NoError(t, err)
	require.NoError(t, lv.Add(1))
	require.Len(t, target.blCols, 2)
	n, err := target.GetBacklinkCountAll(1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, origin.RemoveColumn(0))
	assert.Len(t, target.blCols, 1)
	n, err = target.GetBacklinkCountAll(1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = target.GetBacklinkCount(1, origin, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, target.Verify())

	require.NoError(t, origin.RemoveColumn(0))
	assert.Empty(t, target.blCols)
	n, err = target.GetBacklinkCountAll(1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.NoError(t, target.Verify())
	require.NoError(t, origin.Verify())
}

func TestLinkViewSortNeedsTargetTable(t *testing.T) {
	_, target, origin := linkedPair(t, 1, 5, 3)
	lv, err := origin.GetLinkList(1, 0)
	require.NoError(t, err)
	require.NoError(t, lv.Add(0))
	require.NoError(t, lv.Add(1))

	onOrigin, err := sortdesc.New(origin, [][]int{{0, 0}}, nil)
	require.NoError(t, err)
	err = lv.SortBy(onOrigin)
	assert.True(t, coreerr.ErrInvalidSortChain.Is(err))
	err = lv.SortBy(nil)
	assert.True(t, coreerr.ErrInvalidSortChain.Is(err))

	onTarget, err := sortdesc.New(target, [][]int{{0}}, nil)
	require.NoError(t, err)
	require.NoError(t, lv.SortBy(onTarget))
	targets, err := lv.Targets()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, targets)
}
