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
	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/index"
	"github.com/dolthub/tightstore/libraries/schema"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// buildColumns brings the column accessors in line with the spec and the
// columns node. Accessors whose leaf is unchanged are kept and renumbered, new
// leaves get new accessors and accessors of leaves that are gone are detached.
// Degenerate tables match accessors by position.
func (t *Table) buildColumns() error {
	s := t.spec()
	byRef := make(map[array.Ref]column.Column)
	for _, c := range t.cols {
		if n := c.Node(); n != nil {
			byRef[n.Ref()] = c
		}
	}

	old := t.cols
	used := make(map[column.Column]bool)
	cols := make([]column.Column, s.ColumnCount())
	for i := range cols {
		traits := s.Traits(i)

		var leaf *array.Node
		if t.columns != nil {
			n, err := t.alloc.Translate(t.columns.GetRef(1 + i))
			if err != nil {
				return err
			}
			n.SetParent(t.columns, 1+i)
			leaf = n
		}

		var c column.Column
		if leaf != nil {
			if prev, ok := byRef[leaf.Ref()]; ok && prev.Traits() == traits && !used[prev] {
				c = prev
			}
		} else if i < len(old) && old[i].Node() == nil && old[i].Traits() == traits && !used[old[i]] {
			c = old[i]
		}
		if c == nil {
			c = column.New(t.alloc, traits, i, leaf, nil)
		}

		c.SetIndex(i)
		c.SetNode(leaf)
		used[c] = true
		cols[i] = c
	}

	for _, c := range old {
		if !used[c] {
			t.dropIndex(c)
			c.Detach()
		}
	}
	t.cols = cols
	t.wireResolvers()
	return nil
}

// insertColumnAccessor adds an accessor for a column inserted at ndx.
func (t *Table) insertColumnAccessor(ndx int) error {
	if t.columns != nil {
		return t.buildColumns()
	}
	c := column.New(t.alloc, t.spec().Traits(ndx), ndx, nil, nil)
	t.cols = append(t.cols, nil)
	copy(t.cols[ndx+1:], t.cols[ndx:])
	t.cols[ndx] = c
	t.renumberColumns()
	return nil
}

// removeColumnAccessor detaches the accessor of the column removed at ndx.
func (t *Table) removeColumnAccessor(ndx int) error {
	if t.columns != nil {
		return t.buildColumns()
	}
	t.dropIndex(t.cols[ndx])
	t.cols[ndx].Detach()
	t.cols = append(t.cols[:ndx], t.cols[ndx+1:]...)
	t.renumberColumns()
	return nil
}

func (t *Table) renumberColumns() {
	for i, c := range t.cols {
		c.SetIndex(i)
	}
	t.wireResolvers()
}

func (t *Table) wireResolvers() {
	for _, c := range t.cols {
		switch lc := c.(type) {
		case *column.Link:
			lc.SetResolver(t.resolver(lc))
		case *column.LinkList:
			lc.SetResolver(t.resolver(lc))
		}
	}
}

func (t *Table) resolver(c column.Column) column.Resolver {
	return func() (column.TableBase, error) {
		target, err := t.linkTargetTable(c.Index())
		if err != nil {
			return nil, err
		}
		return target, nil
	}
}

// buildBacklinks recreates the accessors of the hidden back-link columns.
func (t *Table) buildBacklinks() error {
	for _, bl := range t.blCols {
		bl.Detach()
	}
	t.blCols = nil
	if t.backlinks == nil {
		return nil
	}

	for i := 0; i < t.backlinks.Size(); i++ {
		entry, err := t.alloc.Translate(t.backlinks.GetRef(i))
		if err != nil {
			return err
		}
		entry.SetParent(t.backlinks, i)
		bl, err := column.OpenBackLink(t.alloc, entry)
		if err != nil {
			return err
		}
		t.blCols = append(t.blCols, bl)
	}
	return nil
}

// buildIndexes creates search indexes for the columns flagged as indexed.
func (t *Table) buildIndexes() {
	if t.binding.shared() {
		return
	}
	s := t.spec()
	for i, c := range t.cols {
		if s.ColumnAttr(i)&schema.AttrIndexed == 0 {
			t.dropIndex(c)
			continue
		}
		if _, ok := t.indexes[c]; !ok {
			t.indexes[c] = index.New(c)
		}
	}
}

func (t *Table) dropIndex(c column.Column) {
	delete(t.indexes, c)
}

func (t *Table) invalidateIndexes() {
	for _, ix := range t.indexes {
		ix.Invalidate()
	}
}

// ColumnCount returns the number of public columns.
func (t *Table) ColumnCount() int {
	return len(t.cols)
}

// ColumnBase returns the accessor of column ndx.
func (t *Table) ColumnBase(ndx int) (column.Base, error) {
	if err := t.checkColumn(ndx); err != nil {
		return nil, err
	}
	return t.cols[ndx], nil
}

func (t *Table) ColumnName(ndx int) (string, error) {
	if err := t.checkColumn(ndx); err != nil {
		return "", err
	}
	return t.spec().ColumnName(ndx), nil
}

func (t *Table) ColumnType(ndx int) (typeinfo.DataType, error) {
	if err := t.checkColumn(ndx); err != nil {
		return 0, err
	}
	return t.cols[ndx].Type(), nil
}

func (t *Table) IsNullable(ndx int) (bool, error) {
	if err := t.checkColumn(ndx); err != nil {
		return false, err
	}
	return t.cols[ndx].IsNullable(), nil
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t.state != attached {
		return -1
	}
	return t.spec().ColumnIndex(name)
}

func (t *Table) checkColumn(ndx int) error {
	if err := t.checkAttached(); err != nil {
		return err
	}
	if ndx < 0 || ndx >= len(t.cols) {
		return coreerr.ErrIndexOutOfRange.New("column", ndx, len(t.cols))
	}
	return nil
}

func (t *Table) checkRow(row int) error {
	if row < 0 || row >= t.size {
		return coreerr.ErrIndexOutOfRange.New("row", row, t.size)
	}
	return nil
}

func (t *Table) checkCell(col, row int) error {
	if err := t.checkColumn(col); err != nil {
		return err
	}
	return t.checkRow(row)
}

func (t *Table) checkType(col int, dt typeinfo.DataType) error {
	if actual := t.cols[col].Type(); actual != dt {
		return coreerr.ErrTypeMismatch.New(col, actual, dt)
	}
	return nil
}

// linkTargetTable resolves the target of the link column col.
func (t *Table) linkTargetTable(col int) (*Table, error) {
	if t.container == nil {
		return nil, coreerr.ErrCrossTableLink.New()
	}
	target, err := t.container.TableByIndex(t.spec().LinkTarget(col))
	if err != nil {
		return nil, err
	}
	if err := target.checkAttached(); err != nil {
		return nil, err
	}
	return target, nil
}

// findBacklink returns the back-link column recording links from column
// originCol of the container table originTable.
func (t *Table) findBacklink(originTable, originCol int) *column.BackLink {
	for _, bl := range t.blCols {
		if bl.OriginTable() == originTable && bl.OriginCol() == originCol {
			return bl
		}
	}
	return nil
}

// linkPeer returns the target table and the back-link column it keeps for the
// link column col.
func (t *Table) linkPeer(col int) (*Table, *column.BackLink, error) {
	target, err := t.linkTargetTable(col)
	if err != nil {
		return nil, nil, err
	}
	bl := target.findBacklink(t.GetIndexInGroup(), col)
	if bl == nil {
		return nil, nil, ErrInconsistent.New("missing back-link column")
	}
	return target, bl, nil
}

// originColumn returns the origin table and link column recorded by bl.
func (t *Table) originColumn(bl *column.BackLink) (*Table, column.Column, error) {
	if t.container == nil {
		return nil, nil, coreerr.ErrCrossTableLink.New()
	}
	origin, err := t.container.TableByIndex(bl.OriginTable())
	if err != nil {
		return nil, nil, err
	}
	if err := origin.checkColumn(bl.OriginCol()); err != nil {
		return nil, nil, err
	}
	return origin, origin.cols[bl.OriginCol()], nil
}

// linkColumns returns the indices of the link and link list columns.
func (t *Table) linkColumns() []int {
	var cols []int
	for i, c := range t.cols {
		if c.Type().IsLink() {
			cols = append(cols, i)
		}
	}
	return cols
}
