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

package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/sortdesc"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

type oneColumn struct {
	col column.Column
}

func (oc oneColumn) ColumnCount() int {
	return 1
}

func (oc oneColumn) ColumnBase(int) (column.Base, error) {
	return oc.col, nil
}

func TestAdjustments(t *testing.T) {
	tests := []struct {
		name     string
		adjust   func(ri *RowIndexes)
		expected []int
	}{
		{"insert", func(ri *RowIndexes) { ri.AdjustInserted(2, 3) }, []int{5, 0, 6, 1}},
		{"erase", func(ri *RowIndexes) { ri.AdjustErased(2) }, []int{DetachedRow, 0, 2, 1}},
		{"move last over", func(ri *RowIndexes) { ri.AdjustMoveLastOver(0, 3) }, []int{2, DetachedRow, 0, 1}},
		{"move last over last", func(ri *RowIndexes) { ri.AdjustMoveLastOver(3, 3) }, []int{2, 0, DetachedRow, 1}},
		{"clear", func(ri *RowIndexes) { ri.AdjustCleared() }, []int{DetachedRow, DetachedRow, DetachedRow, DetachedRow}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ri := NewRowIndexes([]int{2, 0, 3, 1})
			test.adjust(ri)
			assert.Equal(t, test.expected, ri.Rows())
		})
	}
}

func TestRowIndex(t *testing.T) {
	ri := NewRowIndexes([]int{4, DetachedRow})
	row, err := ri.RowIndex(0)
	require.NoError(t, err)
	assert.Equal(t, 4, row)
	assert.True(t, ri.IsRowAttached(0))
	assert.False(t, ri.IsRowAttached(1))
	_, err = ri.RowIndex(2)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
}

// intColumn returns a one column table holding values.
func intColumn(t *testing.T, values ...int64) oneColumn {
	alloc := array.NewMemAllocator()
	traits := typeinfo.MustLookup(typeinfo.Int, false)
	n, err := column.CreateLeaf(alloc, traits, 0)
	require.NoError(t, err)
	for _, v := range values {
		n.Add(v)
	}
	return oneColumn{column.New(alloc, traits, 0, n, nil)}
}

func sortOn(t *testing.T, tbl oneColumn) *sortdesc.DescriptorOrdering {
	sd, err := sortdesc.New(tbl, [][]int{{0}}, nil)
	require.NoError(t, err)
	o := sortdesc.NewOrdering()
	o.AppendSort(sd)
	return o
}

func TestDoSort(t *testing.T) {
	o := sortOn(t, intColumn(t, 30, 10, 20, 10))

	ri := NewRowIndexes([]int{0, 1, 2, 3})
	ri.AdjustErased(2)
	require.NoError(t, ri.DoSort(o))
	assert.Equal(t, []int{1, 2, 0}, ri.Rows())

	require.NoError(t, ri.DoSort(nil))
	assert.Equal(t, 3, ri.Size())
}

func TestDoSortFailureKeepsEntries(t *testing.T) {
	tbl := intColumn(t, 30, 10, 20)
	o := sortOn(t, tbl)
	tbl.col.Detach()

	ri := NewRowIndexes([]int{DetachedRow, 0, 1, 2})
	err := ri.DoSort(o)
	assert.True(t, coreerr.ErrInvalidAccessorState.Is(err))
	assert.Equal(t, []int{DetachedRow, 0, 1, 2}, ri.Rows())
	assert.False(t, ri.IsRowAttached(0))
}
