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
)

// Size returns the number of rows, 0 for a detached table.
func (t *Table) Size() int {
	return t.size
}

func (t *Table) IsEmpty() bool {
	return t.size == 0
}

// AddEmptyRow appends n rows holding default values and returns the index of
// the first one.
func (t *Table) AddEmptyRow(n int) (int, error) {
	row := t.size
	return row, t.InsertEmptyRow(row, n)
}

// InsertEmptyRow inserts n rows holding default values at row.
func (t *Table) InsertEmptyRow(row, n int) error {
	if err := t.checkAttached(); err != nil {
		return err
	}
	if row < 0 || row > t.size {
		return coreerr.ErrIndexOutOfRange.New("row", row, t.size+1)
	}
	if len(t.cols) == 0 {
		return ErrTableHasNoColumns.New()
	}
	if n <= 0 {
		return nil
	}
	return t.mutate("insert rows", func() error {
		return t.insertRows(row, n)
	})
}

// RemoveRow removes row, shifting the rows after it down by one.
func (t *Table) RemoveRow(row int) error {
	if err := t.checkAttached(); err != nil {
		return err
	}
	if err := t.checkRow(row); err != nil {
		return err
	}
	return t.mutate("remove row", func() error {
		return t.eraseRow(row, false)
	})
}

func (t *Table) RemoveLast() error {
	return t.RemoveRow(t.size - 1)
}

// MoveLastOver removes row by overwriting it with the last row. The order of
// the remaining rows is not preserved.
func (t *Table) MoveLastOver(row int) error {
	if err := t.checkAttached(); err != nil {
		return err
	}
	if err := t.checkRow(row); err != nil {
		return err
	}
	return t.mutate("move last over", func() error {
		return t.eraseRow(row, true)
	})
}

// Clear removes every row.
func (t *Table) Clear() error {
	return t.mutate("clear", t.clearRows)
}

// materialize gives a degenerate subtable its storage.
func (t *Table) materialize() error {
	if t.columns != nil {
		return nil
	}
	cols, err := createColumns(t.alloc, t.spec(), 0)
	if err != nil {
		return err
	}
	cell := t.parent.cols[t.parentCol].(*column.Subtable)
	if err := cell.SetCellRef(t.parentRow, cols.Ref()); err != nil {
		return err
	}
	t.columns = cols
	for i, c := range t.cols {
		leaf, err := t.alloc.Translate(cols.GetRef(1 + i))
		if err != nil {
			return err
		}
		leaf.SetParent(cols, 1+i)
		c.SetNode(leaf)
	}
	t.logger().Trace("materialized subtable")
	return nil
}

func (t *Table) insertRows(row, n int) error {
	if err := t.materialize(); err != nil {
		return err
	}

	shift := func(r int) int {
		if r >= row {
			return r + n
		}
		return r
	}
	touched, err := t.replaceOutgoingOrigins(shift)
	if err != nil {
		return err
	}
	incoming, err := t.replaceIncomingTargets(shift)
	if err != nil {
		return err
	}

	for _, c := range t.cols {
		c.InsertRows(row, n)
	}
	for _, bl := range t.blCols {
		bl.InsertRows(row, n)
	}
	t.size += n
	setRowCount(t.columns, t.size)

	t.adjustInserted(row, n)
	bumpOthers(t, touched, incoming)
	return nil
}

// eraseRow removes row, or moves the last row over it.
func (t *Table) eraseRow(row int, moveLast bool) error {
	last := t.size - 1

	touched, err := t.unlinkOriginRow(row)
	if err != nil {
		return err
	}

	var remap func(r int) int
	if moveLast {
		remap = func(r int) int {
			switch r {
			case row:
				return -1
			case last:
				return row
			}
			return r
		}
	} else {
		remap = func(r int) int {
			switch {
			case r == row:
				return -1
			case r > row:
				return r - 1
			}
			return r
		}
	}
	if _, err := t.replaceOutgoingOrigins(remap); err != nil {
		return err
	}
	incoming, err := t.replaceIncomingTargets(remap)
	if err != nil {
		return err
	}

	for _, c := range t.cols {
		if moveLast {
			err = c.MoveLastOver(row, last)
		} else {
			err = c.EraseRow(row)
		}
		if err != nil {
			return err
		}
	}
	for _, bl := range t.blCols {
		if moveLast {
			err = bl.MoveLastOver(row, last)
		} else {
			err = bl.EraseRow(row)
		}
		if err != nil {
			return err
		}
	}
	t.size--
	setRowCount(t.columns, t.size)

	if moveLast {
		t.adjustMovedLastOver(row, last)
	} else {
		t.adjustErased(row)
	}
	bumpOthers(t, touched, incoming)
	return nil
}

func (t *Table) clearRows() error {
	if t.columns == nil || t.size == 0 {
		return nil
	}

	touched := make(map[*Table]bool)
	for _, col := range t.linkColumns() {
		target, bl, err := t.linkPeer(col)
		if err != nil {
			return err
		}
		if err := bl.ClearOrigins(); err != nil {
			return err
		}
		touched[target] = true
	}
	incoming, err := t.replaceIncomingTargets(func(int) int { return -1 })
	if err != nil {
		return err
	}

	for _, c := range t.cols {
		if err := c.ClearRows(); err != nil {
			return err
		}
	}
	for _, bl := range t.blCols {
		if err := bl.ClearRows(); err != nil {
			return err
		}
	}
	t.size = 0
	setRowCount(t.columns, 0)

	t.adjustCleared()
	bumpOthers(t, touched, incoming)
	return nil
}

// unlinkOriginRow drops the back-link records of the links held by row.
func (t *Table) unlinkOriginRow(row int) (map[*Table]bool, error) {
	touched := make(map[*Table]bool)
	for _, col := range t.linkColumns() {
		target, bl, err := t.linkPeer(col)
		if err != nil {
			return nil, err
		}
		switch lc := t.cols[col].(type) {
		case *column.Link:
			if tgt, ok := lc.TargetRow(row); ok {
				if err := bl.RemoveOrigin(tgt, row); err != nil {
					return nil, err
				}
			}
		case *column.LinkList:
			targets, err := lc.Targets(row)
			if err != nil {
				return nil, err
			}
			for _, tgt := range targets {
				if err := bl.RemoveOrigin(tgt, row); err != nil {
					return nil, err
				}
			}
		}
		touched[target] = true
	}
	return touched, nil
}

// replaceOutgoingOrigins maps the origin rows recorded for the link columns of
// t through fn.
func (t *Table) replaceOutgoingOrigins(fn func(int) int) (map[*Table]bool, error) {
	touched := make(map[*Table]bool)
	for _, col := range t.linkColumns() {
		target, bl, err := t.linkPeer(col)
		if err != nil {
			return nil, err
		}
		if err := bl.ReplaceOrigins(fn); err != nil {
			return nil, err
		}
		touched[target] = true
	}
	return touched, nil
}

// replaceIncomingTargets maps the target rows of every link pointing at t
// through fn. Links mapped to a negative row are nulled or dropped from their
// list.
func (t *Table) replaceIncomingTargets(fn func(int) int) (map[*Table]bool, error) {
	touched := make(map[*Table]bool)
	for _, bl := range t.blCols {
		origin, c, err := t.originColumn(bl)
		if err != nil {
			return nil, err
		}
		switch lc := c.(type) {
		case *column.Link:
			lc.ReplaceTargets(fn)
		case *column.LinkList:
			if err := lc.ReplaceTargets(fn); err != nil {
				return nil, err
			}
		}
		touched[origin] = true
	}
	return touched, nil
}

func bumpOthers(t *Table, sets ...map[*Table]bool) {
	for _, set := range sets {
		for other := range set {
			if other != t {
				other.bumpVersion()
			}
		}
	}
}

func (t *Table) adjustInserted(row, n int) {
	for _, r := range t.rows {
		if r.row >= row {
			r.row += n
		}
	}
	for _, v := range t.views {
		v.rows.AdjustInserted(row, n)
	}
	for _, lv := range t.linkViews {
		if lv.row >= row {
			lv.row += n
		}
	}
	for _, st := range t.subtables {
		if st.parentRow >= row {
			st.parentRow += n
		}
	}
	t.invalidateIndexes()
}

func (t *Table) adjustErased(row int) {
	t.remapAccessors(func(r int) int {
		switch {
		case r == row:
			return -1
		case r > row:
			return r - 1
		}
		return r
	})
	for _, v := range t.views {
		v.rows.AdjustErased(row)
	}
}

func (t *Table) adjustMovedLastOver(row, last int) {
	t.remapAccessors(func(r int) int {
		switch r {
		case row:
			return -1
		case last:
			return row
		}
		return r
	})
	for _, v := range t.views {
		v.rows.AdjustMoveLastOver(row, last)
	}
}

func (t *Table) adjustCleared() {
	t.remapAccessors(func(int) int { return -1 })
	for _, v := range t.views {
		v.rows.AdjustCleared()
	}
}

// remapAccessors moves the row, link list and subtable accessors to the row fn
// returns for them, detaching those mapped to a negative row.
func (t *Table) remapAccessors(fn func(int) int) {
	rows := t.rows[:0]
	for _, r := range t.rows {
		if r.row = fn(r.row); r.row < 0 {
			r.detach()
			continue
		}
		rows = append(rows, r)
	}
	t.rows = rows

	linkViews := t.linkViews[:0]
	for _, lv := range t.linkViews {
		if lv.row = fn(lv.row); lv.row < 0 {
			lv.detach()
			continue
		}
		linkViews = append(linkViews, lv)
	}
	t.linkViews = linkViews

	subtables := t.subtables[:0]
	for _, st := range t.subtables {
		if st.parentRow = fn(st.parentRow); st.parentRow < 0 {
			st.Detach()
			continue
		}
		subtables = append(subtables, st)
	}
	t.subtables = subtables

	t.invalidateIndexes()
}
