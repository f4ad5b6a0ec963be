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
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

func TestCopyAndEqual(t *testing.T) {
	alloc := array.NewMemAllocator()
	tbl, _ := parentTable(t, alloc, 3)
	_, err := tbl.AddColumn(typeinfo.String, "name", true)
	require.NoError(t, err)
	require.NoError(t, tbl.SetString(2, 1, "one"))
	st, err := tbl.GetSubtable(1, 2)
	require.NoError(t, err)
	fillSubtable(t, st, 4, 5)

	cp, err := tbl.Copy()
	require.NoError(t, err)
	assert.False(t, cp.HasSharedType())
	assert.NotEqual(t, tbl.Ref(), cp.Ref())
	eq, err := tbl.Equal(cp)
	require.NoError(t, err)
	assert.True(t, eq)
	require.NoError(t, cp.Verify())

	cpSub, err := cp.GetSubtable(1, 2)
	require.NoError(t, err)
	require.NoError(t, cpSub.SetInt(0, 0, 40))
	eq, err = tbl.Equal(cp)
	require.NoError(t, err)
	assert.False(t, eq)
	assert.Equal(t, []int64{4, 5}, intValues(t, st, 0))

	require.NoError(t, cpSub.SetInt(0, 0, 4))
	eq, err = cp.Equal(tbl)
	require.NoError(t, err)
	assert.True(t, eq)

	_, err = cp.AddColumn(typeinfo.Bool, "extra", false)
	require.NoError(t, err)
	eq, err = tbl.Equal(cp)
	require.NoError(t, err)
	assert.False(t, eq)

	live := alloc.Live()
	require.NoError(t, cp.Close())
	assert.Less(t, alloc.Live(), live)
	_, err = tbl.Equal(cp)
	assert.True(t, coreerr.ErrInvalidAccessorState.Is(err))
}

func TestCopyDegenerateSubtable(t *testing.T) {
	tbl, _ := parentTable(t, array.NewMemAllocator(), 1)
	st, err := tbl.GetSubtable(1, 0)
	require.NoError(t, err)
	require.True(t, st.IsDegenerate())

	cp, err := st.Copy()
	require.NoError(t, err)
	assert.False(t, cp.HasSharedType())
	assert.Equal(t, 1, cp.ColumnCount())
	assert.Equal(t, 0, cp.Size())
	fillSubtable(t, cp, 1)

	eq, err := st.Equal(cp)
	require.NoError(t, err)
	assert.False(t, eq)
	require.NoError(t, tbl.SetSubtable(1, 0, cp))
	eq, err = st.Equal(cp)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestCopyRejectsLinks(t *testing.T) {
	_, target, origin := linkedPair(t, 1, 1)
	_, err := origin.Copy()
	assert.True(t, coreerr.ErrCrossTableLink.Is(err))

	cp, err := target.Copy()
	require.NoError(t, err)
	assert.False(t, cp.IsGroupLevel())
	assert.Equal(t, 1, cp.Size())
}

func TestVerifyDetectsInconsistency(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(tbl *Table)
	}{
		{"row count", func(tbl *Table) {
			setRowCount(tbl.columns, tbl.size+1)
		}},
		{"column size", func(tbl *Table) {
			leaf := tbl.cols[0].Node()
			leaf.Add(int64(0))
		}},
		{"missing leaf", func(tbl *Table) {
			tbl.columns.Erase(1)
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tbl := intTable(t, array.NewMemAllocator(), 1, 2, 3)
			require.NoError(t, tbl.Verify())
			test.corrupt(tbl)
			assert.True(t, ErrInconsistent.Is(tbl.Verify()))
		})
	}

	_, target, origin := linkedPair(t, 2, 1, 2)
	require.NoError(t, origin.SetLink(0, 0, 1))
	bl := target.findBacklink(origin.GetIndexInGroup(), 0)
	require.NotNil(t, bl)
	require.NoError(t, bl.AddOrigin(0, 1))
	assert.True(t, ErrInconsistent.Is(origin.Verify()))
}
