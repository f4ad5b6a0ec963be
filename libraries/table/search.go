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
	"sort"

	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/schema"
	"github.com/dolthub/tightstore/libraries/typeinfo"
)

// cellValue is the value searches compare against: the raw cell except for
// links, which read as their target row.
func (t *Table) cellValue(col, row int) interface{} {
	if l, ok := t.cols[col].(*column.Link); ok {
		if target, ok := l.TargetRow(row); ok {
			return int64(target)
		}
		return nil
	}
	return t.cols[col].Get(row)
}

func (t *Table) searchable(col int) error {
	if err := t.checkColumn(col); err != nil {
		return err
	}
	switch dt := t.cols[col].Type(); dt {
	case typeinfo.Table, typeinfo.LinkList:
		return coreerr.ErrTypeMismatch.New(col, dt, typeinfo.Int)
	}
	return nil
}

// FindFirst returns the first row whose cell in col equals v, or -1. v is
// converted like in SetAny.
func (t *Table) FindFirst(col int, v interface{}) (int, error) {
	if err := t.searchable(col); err != nil {
		return -1, err
	}
	key, err := t.convert(col, v)
	if err != nil {
		return -1, err
	}
	if ix, ok := t.indexes[t.cols[col]]; ok {
		return ix.FindFirst(key), nil
	}
	for row := 0; row < t.size; row++ {
		if column.ValuesEqual(t.cellValue(col, row), key) {
			return row, nil
		}
	}
	return -1, nil
}

func (t *Table) FindFirstInt(col int, v int64) (int, error) {
	return t.FindFirst(col, v)
}

func (t *Table) FindFirstString(col int, v string) (int, error) {
	return t.FindFirst(col, v)
}

// Count returns the number of rows whose cell in col equals v.
func (t *Table) Count(col int, v interface{}) (int, error) {
	if err := t.searchable(col); err != nil {
		return 0, err
	}
	key, err := t.convert(col, v)
	if err != nil {
		return 0, err
	}
	if ix, ok := t.indexes[t.cols[col]]; ok {
		return ix.Count(key), nil
	}
	n := 0
	for row := 0; row < t.size; row++ {
		if column.ValuesEqual(t.cellValue(col, row), key) {
			n++
		}
	}
	return n, nil
}

// findAll returns the rows whose cell in col equals v, in table order.
func (t *Table) findAll(col int, v interface{}) []int {
	key, err := t.convert(col, v)
	if err != nil {
		return nil
	}
	if ix, ok := t.indexes[t.cols[col]]; ok {
		return ix.FindAll(key)
	}
	var rows []int
	for row := 0; row < t.size; row++ {
		if column.ValuesEqual(t.cellValue(col, row), key) {
			rows = append(rows, row)
		}
	}
	return rows
}

// LowerBound returns the first row whose value in col is not less than v. The
// column must be sorted ascending. It returns the table size if there is no
// such row.
func (t *Table) LowerBound(col int, v interface{}) (int, error) {
	return t.bound(col, v, func(c int) bool { return c >= 0 })
}

// UpperBound returns the first row whose value in col is greater than v. The
// column must be sorted ascending. It returns the table size if there is no
// such row.
func (t *Table) UpperBound(col int, v interface{}) (int, error) {
	return t.bound(col, v, func(c int) bool { return c > 0 })
}

func (t *Table) bound(col int, v interface{}, pred func(c int) bool) (int, error) {
	if err := t.searchable(col); err != nil {
		return 0, err
	}
	key, err := t.convert(col, v)
	if err != nil {
		return 0, err
	}
	return sort.Search(t.size, func(row int) bool {
		return pred(column.CompareValues(t.cellValue(col, row), key))
	}), nil
}

// SetIndex attaches a search index to col. Only tables with an independent
// schema can carry indexes.
func (t *Table) SetIndex(col int) error {
	if err := t.searchable(col); err != nil {
		return err
	}
	if t.HasSharedType() {
		return coreerr.ErrSharedSchemaViolation.New()
	}
	if dt := t.cols[col].Type(); dt.IsLink() {
		return coreerr.ErrTypeMismatch.New(col, dt, typeinfo.Int)
	}
	return t.mutate("set index", func() error {
		s := t.spec()
		s.SetColumnAttr(col, s.ColumnAttr(col)|schema.AttrIndexed)
		t.buildIndexes()
		return nil
	})
}

// HasIndex returns true if col carries a search index.
func (t *Table) HasIndex(col int) bool {
	if t.checkColumn(col) != nil {
		return false
	}
	_, ok := t.indexes[t.cols[col]]
	return ok
}

func (t *Table) RemoveIndex(col int) error {
	if err := t.checkColumn(col); err != nil {
		return err
	}
	if t.HasSharedType() {
		return coreerr.ErrSharedSchemaViolation.New()
	}
	return t.mutate("remove index", func() error {
		s := t.spec()
		s.SetColumnAttr(col, s.ColumnAttr(col)&^schema.AttrIndexed)
		t.buildIndexes()
		return nil
	})
}
