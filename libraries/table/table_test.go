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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// intTable returns a freestanding table with one int column holding values.
func intTable(t *testing.T, alloc array.Allocator, values ...int64) *Table {
	tbl, err := New(alloc)
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.Int, "v", false)
	require.NoError(t, err)
	_, err = tbl.AddEmptyRow(len(values))
	require.NoError(t, err)
	for row, v := range values {
		require.NoError(t, tbl.SetInt(0, row, v))
	}
	return tbl
}

func intValues(t *testing.T, tbl *Table, col int) []int64 {
	values := make([]int64, tbl.Size())
	for row := range values {
		v, err := tbl.GetInt(col, row)
		require.NoError(t, err)
		values[row] = v
	}
	return values
}

func requireColumnSizes(t *testing.T, tbl *Table) {
	for i := 0; i < tbl.ColumnCount(); i++ {
		c, err := tbl.ColumnBase(i)
		require.NoError(t, err)
		require.Equal(t, tbl.Size(), c.Size(), "column %d", i)
	}
	require.NoError(t, tbl.Verify())
}

func TestNewTable(t *testing.T) {
	alloc := array.NewMemAllocator()
	tbl, err := New(alloc)
	require.NoError(t, err)

	assert.True(t, tbl.IsAttached())
	assert.False(t, tbl.HasSharedType())
	assert.False(t, tbl.IsGroupLevel())
	assert.Equal(t, -1, tbl.GetIndexInGroup())
	parent, col := tbl.GetParentTable()
	assert.Nil(t, parent)
	assert.Equal(t, -1, col)
	assert.Equal(t, 0, tbl.Size())
	assert.Equal(t, 0, tbl.ColumnCount())

	_, err = tbl.AddEmptyRow(1)
	assert.True(t, ErrTableHasNoColumns.Is(err))

	require.NoError(t, tbl.Close())
	assert.False(t, tbl.IsAttached())
	assert.Equal(t, 0, alloc.Live())
}

func TestColumns(t *testing.T) {
	tbl, err := New(array.NewMemAllocator())
	require.NoError(t, err)

	for _, c := range []struct {
		dt       typeinfo.DataType
		name     string
		nullable bool
	}{
		{typeinfo.Int, "int", false},
		{typeinfo.String, "string", true},
		{typeinfo.Double, "double", false},
		{typeinfo.Table, "table", false},
	} {
		_, err := tbl.AddColumn(c.dt, c.name, c.nullable)
		require.NoError(t, err)
	}
	require.NoError(t, tbl.InsertColumn(1, typeinfo.Bool, "bool", false))

	tests := []struct {
		ndx      int
		name     string
		dt       typeinfo.DataType
		nullable bool
	}{
		{0, "int", typeinfo.Int, false},
		{1, "bool", typeinfo.Bool, false},
		{2, "string", typeinfo.String, true},
		{3, "double", typeinfo.Double, false},
		{4, "table", typeinfo.Table, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			name, err := tbl.ColumnName(test.ndx)
			require.NoError(t, err)
			assert.Equal(t, test.name, name)
			dt, err := tbl.ColumnType(test.ndx)
			require.NoError(t, err)
			assert.Equal(t, test.dt, dt)
			nullable, err := tbl.IsNullable(test.ndx)
			require.NoError(t, err)
			assert.Equal(t, test.nullable, nullable)
			assert.Equal(t, test.ndx, tbl.ColumnIndex(test.name))
		})
	}

	_, err = tbl.AddColumn(typeinfo.Int, "int", false)
	assert.True(t, coreerr.ErrColumnNameCollision.Is(err))
	_, err = tbl.AddColumn(typeinfo.Link, "link", true)
	assert.True(t, ErrLinkTargetRequired.Is(err))
	_, err = tbl.ColumnName(5)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))

	require.NoError(t, tbl.RenameColumn(0, "number"))
	assert.Equal(t, 0, tbl.ColumnIndex("number"))
	assert.Equal(t, -1, tbl.ColumnIndex("int"))

	require.NoError(t, tbl.RemoveColumn(1))
	assert.Equal(t, 4, tbl.ColumnCount())
	assert.Equal(t, 1, tbl.ColumnIndex("string"))
	for i := 0; i < tbl.ColumnCount(); i++ {
		c, err := tbl.ColumnBase(i)
		require.NoError(t, err)
		assert.Equal(t, i, c.Index())
	}
}

func TestColumnAccessorsSurviveRenumbering(t *testing.T) {
	tbl := intTable(t, array.NewMemAllocator(), 1, 2)
	_, err := tbl.AddColumn(typeinfo.String, "s", false)
	require.NoError(t, err)
	s, err := tbl.ColumnBase(1)
	require.NoError(t, err)

	require.NoError(t, tbl.InsertColumn(0, typeinfo.Bool, "b", false))
	assert.Equal(t, 2, s.Index())
	same, err := tbl.ColumnBase(2)
	require.NoError(t, err)
	assert.Same(t, s, same)

	require.NoError(t, tbl.RemoveColumn(2))
	assert.True(t, s.IsDetached())
	requireColumnSizes(t, tbl)
}

func TestInsertRemoveRows(t *testing.T) {
	tbl := intTable(t, array.NewMemAllocator(), 10, 20, 30)
	_, err := tbl.AddColumn(typeinfo.String, "s", true)
	require.NoError(t, err)
	requireColumnSizes(t, tbl)

	tests := []struct {
		name string
		row  int
		n    int
	}{
		{"front", 0, 1},
		{"middle", 1, 2},
		{"end", 3, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			before := intValues(t, tbl, 0)
			require.NoError(t, tbl.InsertEmptyRow(test.row, test.n))
			assert.Equal(t, len(before)+test.n, tbl.Size())
			requireColumnSizes(t, tbl)

			for i := 0; i < test.n; i++ {
				v, err := tbl.GetInt(0, test.row+i)
				require.NoError(t, err)
				assert.Equal(t, int64(0), v)
				isNull, err := tbl.IsNull(1, test.row+i)
				require.NoError(t, err)
				assert.True(t, isNull)
			}
			for i := 0; i < test.n; i++ {
				require.NoError(t, tbl.RemoveRow(test.row))
			}
			assert.Equal(t, before, intValues(t, tbl, 0))
			requireColumnSizes(t, tbl)
		})
	}

	err = tbl.InsertEmptyRow(5, 1)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
	err = tbl.RemoveRow(3)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))

	require.NoError(t, tbl.RemoveLast())
	assert.Equal(t, []int64{10, 20}, intValues(t, tbl, 0))
	require.NoError(t, tbl.Clear())
	assert.True(t, tbl.IsEmpty())
	requireColumnSizes(t, tbl)
}

func TestMoveLastOver(t *testing.T) {
	tests := []struct {
		name     string
		row      int
		expected []int64
	}{
		{"first", 0, []int64{4, 1, 2, 3}},
		{"middle", 2, []int64{0, 1, 4, 3}},
		{"last", 4, []int64{0, 1, 2, 3}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tbl := intTable(t, array.NewMemAllocator(), 0, 1, 2, 3, 4)
			require.NoError(t, tbl.MoveLastOver(test.row))
			assert.Equal(t, test.expected, intValues(t, tbl, 0))
			requireColumnSizes(t, tbl)
		})
	}

	a := intTable(t, array.NewMemAllocator(), 0, 1, 2)
	b := intTable(t, array.NewMemAllocator(), 0, 1, 2)
	require.NoError(t, a.MoveLastOver(2))
	require.NoError(t, b.RemoveRow(2))
	assert.Equal(t, intValues(t, b, 0), intValues(t, a, 0))
}

func TestRowAccessors(t *testing.T) {
	tbl := intTable(t, array.NewMemAllocator(), 0, 1, 2, 3, 4)
	rows := make([]*Row, 5)
	for i := range rows {
		r, err := tbl.Row(i)
		require.NoError(t, err)
		rows[i] = r
	}

	require.NoError(t, tbl.InsertEmptyRow(0, 1))
	for i, r := range rows {
		assert.Equal(t, i+1, r.Index())
	}

	require.NoError(t, tbl.RemoveRow(2))
	assert.False(t, rows[1].IsAttached())
	assert.Equal(t, 2, rows[2].Index())

	require.NoError(t, tbl.MoveLastOver(1))
	assert.False(t, rows[0].IsAttached())
	assert.Equal(t, 1, rows[4].Index())
	v, err := rows[4].GetInt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)

	require.NoError(t, rows[4].SetInt(0, 40))
	v, err = tbl.GetInt(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(40), v)
	require.NoError(t, rows[4].Set(0, 41))
	got, err := rows[4].Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(41), got)

	require.NoError(t, rows[2].Remove())
	assert.False(t, rows[2].IsAttached())
	_, err = rows[2].GetInt(0)
	assert.True(t, coreerr.ErrInvalidAccessorState.Is(err))

	rows[3].Release()
	require.NoError(t, tbl.Clear())
	assert.False(t, rows[4].IsAttached())
}

func TestTypedCells(t *testing.T) {
	tbl, err := New(array.NewMemAllocator())
	require.NoError(t, err)
	types := []typeinfo.DataType{
		typeinfo.Int, typeinfo.Bool, typeinfo.Float, typeinfo.Double, typeinfo.String,
		typeinfo.Binary, typeinfo.Timestamp, typeinfo.OldDateTime, typeinfo.Mixed,
	}
	for _, dt := range types {
		_, err := tbl.AddColumn(dt, dt.String(), false)
		require.NoError(t, err)
	}
	_, err = tbl.AddEmptyRow(1)
	require.NoError(t, err)

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, tbl.SetInt(0, 0, -7))
	require.NoError(t, tbl.SetBool(1, 0, true))
	require.NoError(t, tbl.SetFloat(2, 0, 1.5))
	require.NoError(t, tbl.SetDouble(3, 0, 2.25))
	require.NoError(t, tbl.SetString(4, 0, "hello"))
	require.NoError(t, tbl.SetBinary(5, 0, []byte{1, 2}))
	require.NoError(t, tbl.SetTimestamp(6, 0, ts))
	require.NoError(t, tbl.SetOldDateTime(7, 0, 86400))
	require.NoError(t, tbl.SetMixed(8, 0, "mixed"))

	i, err := tbl.GetInt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), i)
	b, err := tbl.GetBool(1, 0)
	require.NoError(t, err)
	assert.True(t, b)
	f, err := tbl.GetFloat(2, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)
	d, err := tbl.GetDouble(3, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.25, d)
	s, err := tbl.GetString(4, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
	bin, err := tbl.GetBinary(5, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, bin)
	got, err := tbl.GetTimestamp(6, 0)
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))
	dt, err := tbl.GetOldDateTime(7, 0)
	require.NoError(t, err)
	assert.Equal(t, typeinfo.DateTime(86400), dt)
	m, err := tbl.GetMixed(8, 0)
	require.NoError(t, err)
	assert.Equal(t, typeinfo.MixedValue{Type: typeinfo.String, Value: "mixed"}, m)

	bin[0] = 9
	again, err := tbl.GetBinary(5, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(1), again[0])

	assert.Equal(t, int64(-7), GetUnchecked[int64](tbl, 0, 0))
}

func TestTypeMismatch(t *testing.T) {
	tbl := intTable(t, array.NewMemAllocator(), 1)
	_, err := tbl.AddColumn(typeinfo.String, "s", false)
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"get string from int", func() error { _, err := tbl.GetString(0, 0); return err }},
		{"set int on string", func() error { return tbl.SetInt(1, 0, 1) }},
		{"get double from int", func() error { _, err := tbl.GetDouble(0, 0); return err }},
		{"get subtable from int", func() error { _, err := tbl.GetSubtable(0, 0); return err }},
		{"get link from string", func() error { _, err := tbl.GetLink(1, 0); return err }},
		{"sum of string", func() error { _, err := tbl.SumInt(1); return err }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.fn()
			assert.True(t, coreerr.ErrTypeMismatch.Is(err), "unexpected error %v", err)
		})
	}

	_, err = tbl.GetInt(0, 1)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
	_, err = tbl.GetInt(2, 0)
	assert.True(t, coreerr.ErrIndexOutOfRange.Is(err))
}

func TestNulls(t *testing.T) {
	tbl, err := New(array.NewMemAllocator())
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.Int, "nullable", true)
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.Int, "required", false)
	require.NoError(t, err)
	_, err = tbl.AddEmptyRow(1)
	require.NoError(t, err)

	isNull, err := tbl.IsNull(0, 0)
	require.NoError(t, err)
	assert.True(t, isNull)
	require.NoError(t, tbl.SetInt(0, 0, 3))
	isNull, err = tbl.IsNull(0, 0)
	require.NoError(t, err)
	assert.False(t, isNull)
	require.NoError(t, tbl.SetNull(0, 0))
	v, err := tbl.Get(0, 0)
	require.NoError(t, err)
	assert.Nil(t, v)

	err = tbl.SetNull(1, 0)
	assert.True(t, ErrColumnNotNullable.Is(err))
	require.NoError(t, tbl.SetAny(0, 0, nil))
}

func TestSetAny(t *testing.T) {
	tbl, err := New(array.NewMemAllocator())
	require.NoError(t, err)
	for _, dt := range []typeinfo.DataType{typeinfo.Int, typeinfo.Float, typeinfo.String, typeinfo.Binary} {
		_, err := tbl.AddColumn(dt, dt.String(), false)
		require.NoError(t, err)
	}
	_, err = tbl.AddEmptyRow(1)
	require.NoError(t, err)

	tests := []struct {
		col      int
		in       interface{}
		expected interface{}
	}{
		{0, 5, int64(5)},
		{0, int32(6), int64(6)},
		{1, 2.5, float32(2.5)},
		{1, 3, float32(3)},
		{2, []byte("b"), "b"},
		{3, "s", []byte("s")},
	}
	for _, test := range tests {
		require.NoError(t, tbl.SetAny(test.col, 0, test.in))
		v, err := tbl.Get(test.col, 0)
		require.NoError(t, err)
		assert.Equal(t, test.expected, v)
	}

	err = tbl.SetAny(0, 0, "x")
	assert.True(t, ErrUnsupportedValue.Is(err))
	err = tbl.SetAny(1, 0, 1e300)
	assert.True(t, ErrUnsupportedValue.Is(err))
}

func TestLowerUpperBound(t *testing.T) {
	tbl := intTable(t, array.NewMemAllocator(), 3, 3, 3, 4, 4, 4, 5, 6, 7, 9, 9, 9)

	tests := []struct {
		v     int64
		lower int
		upper int
	}{
		{4, 3, 6},
		{8, 9, 9},
		{15, 12, 12},
		{0, 0, 0},
		{3, 0, 3},
		{9, 9, 12},
	}
	for _, test := range tests {
		lower, err := tbl.LowerBound(0, test.v)
		require.NoError(t, err)
		upper, err := tbl.UpperBound(0, test.v)
		require.NoError(t, err)
		assert.Equal(t, test.lower, lower, "lower bound of %d", test.v)
		assert.Equal(t, test.upper, upper, "upper bound of %d", test.v)
	}
}

func TestFindAndIndex(t *testing.T) {
	tbl := intTable(t, array.NewMemAllocator(), 5, 3, 5, 1)
	_, err := tbl.AddColumn(typeinfo.String, "s", false)
	require.NoError(t, err)
	for row, s := range []string{"a", "b", "a", "c"} {
		require.NoError(t, tbl.SetString(1, row, s))
	}

	for _, indexed := range []bool{false, true} {
		if indexed {
			require.NoError(t, tbl.SetIndex(0))
			require.NoError(t, tbl.SetIndex(1))
			assert.True(t, tbl.HasIndex(0))
		}
		row, err := tbl.FindFirstInt(0, 5)
		require.NoError(t, err)
		assert.Equal(t, 0, row)
		row, err = tbl.FindFirstString(1, "c")
		require.NoError(t, err)
		assert.Equal(t, 3, row)
		row, err = tbl.FindFirst(1, "z")
		require.NoError(t, err)
		assert.Equal(t, -1, row)
		n, err := tbl.CountInt(0, 5)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = tbl.CountString(1, "b")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	require.NoError(t, tbl.SetInt(0, 3, 5))
	n, err := tbl.CountInt(0, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, tbl.RemoveRow(0))
	row, err := tbl.FindFirstInt(0, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	require.NoError(t, tbl.RemoveIndex(0))
	assert.False(t, tbl.HasIndex(0))
}

func TestAggregates(t *testing.T) {
	tbl, err := New(array.NewMemAllocator())
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.Int, "i", true)
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.Float, "f", false)
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.Double, "d", false)
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.Timestamp, "ts", false)
	require.NoError(t, err)
	_, err = tbl.AddEmptyRow(4)
	require.NoError(t, err)

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for row, v := range []int64{4, 2, 9} {
		require.NoError(t, tbl.SetInt(0, row, v))
	}
	for row, v := range []float32{1.5, 2.5, 3.5, 0.5} {
		require.NoError(t, tbl.SetFloat(1, row, v))
		require.NoError(t, tbl.SetDouble(2, row, float64(v)*2))
		require.NoError(t, tbl.SetTimestamp(3, row, base.Add(time.Duration(row%3)*time.Hour)))
	}

	sum, err := tbl.SumInt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(15), sum)
	avg, err := tbl.AverageInt(0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)
	minV, minRow, err := tbl.MinimumInt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), minV)
	assert.Equal(t, 1, minRow)
	maxV, maxRow, err := tbl.MaximumInt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), maxV)
	assert.Equal(t, 2, maxRow)

	fsum, err := tbl.SumFloat(1)
	require.NoError(t, err)
	assert.Equal(t, 8.0, fsum)
	favg, err := tbl.AverageFloat(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, favg)
	fmin, row, err := tbl.MinimumFloat(1)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), fmin)
	assert.Equal(t, 3, row)
	fmax, _, err := tbl.MaximumFloat(1)
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), fmax)

	dsum, err := tbl.SumDouble(2)
	require.NoError(t, err)
	assert.Equal(t, 16.0, dsum)
	davg, err := tbl.AverageDouble(2)
	require.NoError(t, err)
	assert.Equal(t, 4.0, davg)
	dmax, _, err := tbl.MaximumDouble(2)
	require.NoError(t, err)
	assert.Equal(t, 7.0, dmax)
	dmin, _, err := tbl.MinimumDouble(2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, dmin)

	tsMax, row, err := tbl.MaximumTimestamp(3)
	require.NoError(t, err)
	assert.True(t, base.Add(2*time.Hour).Equal(tsMax))
	assert.Equal(t, 2, row)
	tsMin, row, err := tbl.MinimumTimestamp(3)
	require.NoError(t, err)
	assert.True(t, base.Equal(tsMin))
	assert.Equal(t, 0, row)

	empty := intTable(t, array.NewMemAllocator())
	_, row, err = empty.MinimumInt(0)
	require.NoError(t, err)
	assert.Equal(t, -1, row)
	avg, err = empty.AverageInt(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)
}

func TestGroupByAggregate(t *testing.T) {
	alloc := array.NewMemAllocator()
	tbl, err := New(alloc)
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.String, "name", true)
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.Int, "score", false)
	require.NoError(t, err)
	data := []struct {
		name  interface{}
		score int64
	}{
		{"b", 3}, {"a", 1}, {"b", 5}, {nil, 100}, {"a", 2}, {"c", 7},
	}
	_, err = tbl.AddEmptyRow(len(data))
	require.NoError(t, err)
	for row, d := range data {
		require.NoError(t, tbl.SetAny(0, row, d.name))
		require.NoError(t, tbl.SetInt(1, row, d.score))
	}

	tests := []struct {
		op       typeinfo.Action
		dt       typeinfo.DataType
		expected []interface{}
	}{
		{typeinfo.ActCount, typeinfo.Int, []interface{}{int64(2), int64(2), int64(1)}},
		{typeinfo.ActSum, typeinfo.Int, []interface{}{int64(8), int64(3), int64(7)}},
		{typeinfo.ActAverage, typeinfo.Double, []interface{}{4.0, 1.5, 7.0}},
		{typeinfo.ActMin, typeinfo.Int, []interface{}{int64(3), int64(1), int64(7)}},
		{typeinfo.ActMax, typeinfo.Int, []interface{}{int64(5), int64(2), int64(7)}},
	}
	for _, test := range tests {
		t.Run(test.op.String(), func(t *testing.T) {
			result, err := New(alloc)
			require.NoError(t, err)
			require.NoError(t, tbl.Aggregate(0, 1, test.op, result))

			require.Equal(t, 3, result.Size())
			dt, err := result.ColumnType(1)
			require.NoError(t, err)
			assert.Equal(t, test.dt, dt)
			for row, key := range []string{"b", "a", "c"} {
				s, err := result.GetString(0, row)
				require.NoError(t, err)
				assert.Equal(t, key, s)
				v, err := result.Get(1, row)
				require.NoError(t, err)
				assert.Equal(t, test.expected[row], v)
			}
			require.NoError(t, result.Close())
		})
	}

	result := intTable(t, alloc)
	err = tbl.Aggregate(0, 1, typeinfo.ActSum, result)
	assert.True(t, ErrSchemaMismatch.Is(err))
	err = tbl.Aggregate(1, 1, typeinfo.ActSum, result)
	assert.True(t, coreerr.ErrTypeMismatch.Is(err))
}

func TestDetachIsRecursive(t *testing.T) {
	tbl := intTable(t, array.NewMemAllocator(), 1, 2)
	_, err := tbl.AddColumn(typeinfo.Table, "sub", false)
	require.NoError(t, err)

	sub, err := tbl.GetSubtable(1, 0)
	require.NoError(t, err)
	view, err := tbl.View()
	require.NoError(t, err)
	row, err := tbl.Row(1)
	require.NoError(t, err)
	desc, err := tbl.GetDescriptor()
	require.NoError(t, err)
	col, err := tbl.ColumnBase(0)
	require.NoError(t, err)

	tbl.Detach()
	tbl.Detach()

	assert.False(t, tbl.IsAttached())
	assert.False(t, sub.IsAttached())
	assert.False(t, view.IsAttached())
	assert.False(t, row.IsAttached())
	assert.False(t, desc.IsAttached())
	assert.True(t, col.IsDetached())
	assert.Equal(t, 0, tbl.Size())

	_, err = tbl.GetInt(0, 0)
	assert.True(t, coreerr.ErrInvalidAccessorState.Is(err))
	_, err = sub.AddEmptyRow(1)
	assert.True(t, coreerr.ErrInvalidAccessorState.Is(err))
	_, err = view.SyncIfNeeded()
	assert.True(t, coreerr.ErrInvalidAccessorState.Is(err))
	_, err = desc.AddColumn(typeinfo.Int, "x", false)
	assert.True(t, coreerr.IsDetached(err))
}

func TestAllocationFailureDetaches(t *testing.T) {
	tests := []struct {
		name         string
		detachesRoot bool
		fn           func(tbl *Table) error
	}{
		{"add column", true, func(tbl *Table) error {
			_, err := tbl.AddColumn(typeinfo.String, "s", false)
			return err
		}},
		{"materialize subtable", false, func(tbl *Table) error {
			sub, err := tbl.GetSubtable(1, 0)
			if err != nil {
				return err
			}
			_, err = sub.AddEmptyRow(1)
			return err
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			alloc := array.NewMemAllocator()
			tbl := intTable(t, alloc, 1, 2)
			_, err := tbl.AddColumn(typeinfo.Table, "sub", false)
			require.NoError(t, err)
			sub, err := tbl.GetSubtable(1, 1)
			require.NoError(t, err)
			_, err = sub.AddColumn(typeinfo.Int, "x", false)
			assert.True(t, coreerr.ErrSharedSchemaViolation.Is(err))
			desc, err := tbl.GetDescriptor()
			require.NoError(t, err)
			subdesc, err := desc.GetSubdescriptor(1)
			require.NoError(t, err)
			_, err = subdesc.AddColumn(typeinfo.Int, "x", false)
			require.NoError(t, err)

			alloc.FailAfter(0)
			err = test.fn(tbl)
			alloc.FailAfter(-1)
			assert.True(t, array.ErrAllocationFailure.Is(err), "unexpected error %v", err)

			assert.Equal(t, !test.detachesRoot, tbl.IsAttached())
			if test.detachesRoot {
				assert.False(t, sub.IsAttached())
			}
		})
	}
}

func TestReleaseFreesStorage(t *testing.T) {
	alloc := array.NewMemAllocator()
	tbl, err := Create(alloc)
	require.NoError(t, err)
	_, err = tbl.AddColumn(typeinfo.Int, "v", false)
	require.NoError(t, err)

	tbl.Acquire()
	tbl.Release()
	assert.True(t, tbl.IsAttached())
	tbl.Release()
	assert.False(t, tbl.IsAttached())
	assert.Equal(t, 0, alloc.Live())
}
