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
	"github.com/dolthub/tightstore/libraries/schema"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// GetSubtable returns the accessor of the subtable in a cell of a table
// column. The accessor is shared with other callers asking for the same cell
// and holds one reference for the caller, to be dropped with Release.
func (t *Table) GetSubtable(col, row int) (*Table, error) {
	if err := t.checkCell(col, row); err != nil {
		return nil, err
	}
	if err := t.checkType(col, typeinfo.Table); err != nil {
		return nil, err
	}

	for _, st := range t.subtables {
		if st.parentCol == col && st.parentRow == row && st.IsAttached() {
			st.refs++
			return st, nil
		}
	}

	h, err := t.subspecHandle(col)
	if err != nil {
		return nil, err
	}
	st := newTable(t.alloc)
	st.parent, st.parentCol, st.parentRow = t, col, row
	st.managed, st.refs = true, 1
	st.binding = newSharedSchema(h)
	if err := st.openCell(); err != nil {
		st.binding.release()
		return nil, err
	}
	st.state = attached
	t.subtables = append(t.subtables, st)
	st.logger().Trace("attached subtable accessor")
	return st, nil
}

// openCell binds a subtable accessor to the columns node in its parent cell.
func (t *Table) openCell() error {
	cell := t.parent.cols[t.parentCol].(*column.Subtable)
	t.columns = nil
	t.size = 0
	if ref := cell.CellRef(t.parentRow); !ref.IsNull() {
		cols, err := t.alloc.Translate(ref)
		if err != nil {
			return err
		}
		cols.SetParent(cell.Node(), t.parentRow)
		t.columns = cols
		t.size = rowCount(cols)
	} else {
		for _, c := range t.cols {
			c.SetNode(nil)
		}
	}
	return t.buildColumns()
}

// subspecHandle returns the handle through which the subtables of col share
// the nested spec.
func (t *Table) subspecHandle(col int) (*schema.Handle, error) {
	ref := t.spec().SubspecRef(col)
	if h, ok := t.handles[ref]; ok {
		return h, nil
	}
	s, err := t.spec().Subspec(col)
	if err != nil {
		return nil, err
	}
	h := schema.NewHandle(s, func() {
		delete(t.handles, ref)
	})
	t.handles[ref] = h
	return h, nil
}

// GetSubtableSize returns the number of rows of a subtable without creating
// an accessor for it.
func (t *Table) GetSubtableSize(col, row int) (int, error) {
	if err := t.checkCell(col, row); err != nil {
		return 0, err
	}
	if err := t.checkType(col, typeinfo.Table); err != nil {
		return 0, err
	}
	ref := t.cols[col].(*column.Subtable).CellRef(row)
	if ref.IsNull() {
		return 0, nil
	}
	cols, err := t.alloc.Translate(ref)
	if err != nil {
		return 0, err
	}
	return rowCount(cols), nil
}

// ClearSubtable frees the storage of a subtable, leaving it degenerate.
func (t *Table) ClearSubtable(col, row int) error {
	if err := t.checkCell(col, row); err != nil {
		return err
	}
	if err := t.checkType(col, typeinfo.Table); err != nil {
		return err
	}
	return t.mutate("clear subtable", func() error {
		if err := t.cols[col].(*column.Subtable).ClearCell(row); err != nil {
			return err
		}
		return t.reopenSubtable(col, row)
	})
}

// SetSubtable replaces the content of a subtable with a copy of the rows of
// src, which must have the same schema. A nil src clears the subtable.
func (t *Table) SetSubtable(col, row int, src *Table) error {
	if src == nil {
		return t.ClearSubtable(col, row)
	}
	if err := t.checkCell(col, row); err != nil {
		return err
	}
	if err := t.checkType(col, typeinfo.Table); err != nil {
		return err
	}
	if err := src.checkAttached(); err != nil {
		return err
	}
	if src.alloc != t.alloc {
		return ErrSchemaMismatch.New("tables use different allocators")
	}
	sub, err := t.spec().Subspec(col)
	if err != nil {
		return err
	}
	if !sub.Equal(src.spec()) {
		return ErrSchemaMismatch.New("source table schema differs from the column schema")
	}
	if len(src.linkColumns()) > 0 {
		return coreerr.ErrCrossTableLink.New()
	}

	return t.mutate("set subtable", func() error {
		ref := array.NullRef
		if src.columns != nil && src.size > 0 {
			clone, err := array.CloneDeep(t.alloc, src.columns.Ref())
			if err != nil {
				return err
			}
			ref = clone
		}
		cell := t.cols[col].(*column.Subtable)
		if err := cell.ClearCell(row); err != nil {
			_ = array.DestroyDeep(t.alloc, ref)
			return err
		}
		if err := cell.SetCellRef(row, ref); err != nil {
			return err
		}
		return t.reopenSubtable(col, row)
	})
}

// reopenSubtable rebinds a live subtable accessor after its cell changed.
func (t *Table) reopenSubtable(col, row int) error {
	for _, st := range t.subtables {
		if st.parentCol != col || st.parentRow != row {
			continue
		}
		st.detachDependents()
		if err := st.openCell(); err != nil {
			return err
		}
		st.version++
	}
	return nil
}

// detachDependents detaches everything hanging off t while keeping t itself
// attached. It is used when the content of t is replaced wholesale.
func (t *Table) detachDependents() {
	for _, st := range t.subtables {
		st.Detach()
	}
	for _, r := range t.rows {
		r.detach()
	}
	for _, lv := range t.linkViews {
		lv.detach()
	}
	for _, v := range t.views {
		v.rows.AdjustCleared()
	}
	t.subtables, t.rows, t.linkViews = nil, nil, nil
	t.invalidateIndexes()
}
