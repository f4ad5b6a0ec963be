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

	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// twoAccessors returns a writer and a reader accessor over one stored table.
func twoAccessors(t *testing.T) (*Table, *Table) {
	alloc := array.NewMemAllocator()
	writer, err := New(alloc)
	require.NoError(t, err)
	_, err = writer.AddColumn(typeinfo.Int, "v", false)
	require.NoError(t, err)
	fillSubtable(t, writer, 1, 2, 3)

	reader, err := Attach(alloc, writer.Ref(), nil)
	require.NoError(t, err)
	return writer, reader
}

func TestRefreshPicksUpForeignChanges(t *testing.T) {
	writer, reader := twoAccessors(t)
	assert.Equal(t, []int64{1, 2, 3}, intValues(t, reader, 0))
	row, err := reader.Row(2)
	require.NoError(t, err)
	col, err := reader.ColumnBase(0)
	require.NoError(t, err)

	require.NoError(t, writer.InsertColumn(0, typeinfo.String, "s", false))
	require.NoError(t, writer.RemoveRow(2))
	require.NoError(t, writer.SetString(0, 0, "zero"))

	require.NoError(t, reader.RefreshAccessorTree())
	assert.Equal(t, 1, reader.ColumnCount())

	reader.MarkDirty()
	assert.True(t, reader.IsDirty())
	before := reader.Version()
	require.NoError(t, reader.RefreshAccessorTree())
	assert.False(t, reader.IsDirty())
	assert.Greater(t, reader.Version(), before)

	assert.Equal(t, 2, reader.ColumnCount())
	assert.Equal(t, 2, reader.Size())
	assert.Equal(t, []int64{1, 2}, intValues(t, reader, 1))
	s, err := reader.GetString(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "zero", s)
	assert.False(t, row.IsAttached())
	assert.Equal(t, 1, col.Index())
	assert.False(t, col.IsDetached())
	require.NoError(t, reader.Verify())

	require.NoError(t, reader.RefreshAccessorTree())
}

func TestRefreshRebindsSubtables(t *testing.T) {
	alloc := array.NewMemAllocator()
	writer, _ := parentTable(t, alloc, 2)
	reader, err := Attach(alloc, writer.Ref(), nil)
	require.NoError(t, err)

	kept, err := reader.GetSubtable(1, 0)
	require.NoError(t, err)
	dropped, err := reader.GetSubtable(1, 1)
	require.NoError(t, err)
	require.True(t, kept.IsDegenerate())

	st, err := writer.GetSubtable(1, 0)
	require.NoError(t, err)
	fillSubtable(t, st, 8, 9)
	require.NoError(t, writer.RemoveRow(1))

	reader.MarkDirty()
	assert.True(t, kept.IsDirty())
	require.NoError(t, reader.RefreshAccessorTree())

	assert.True(t, kept.IsAttached())
	assert.False(t, kept.IsDegenerate())
	assert.Equal(t, []int64{8, 9}, intValues(t, kept, 0))
	assert.False(t, dropped.IsAttached())
	assert.False(t, kept.IsDirty())
	require.NoError(t, reader.Verify())
}

func TestRefreshFailureDetaches(t *testing.T) {
	writer, reader := twoAccessors(t)
	v, err := reader.View()
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	reader.MarkDirty()
	err = reader.RefreshAccessorTree()
	assert.True(t, array.ErrInvalidRef.Is(err))
	assert.False(t, reader.IsAttached())
	assert.False(t, v.IsAttached())
}
