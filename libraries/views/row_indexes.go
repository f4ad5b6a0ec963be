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
	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/sortdesc"
)

// DetachedRow marks an entry whose row has been removed from the table.
const DetachedRow = -1

// View is a materialized projection of rows of a table.
type View interface {
	// ColumnBase returns a column of the table the view indexes into.
	ColumnBase(ndx int) (column.Base, error)
	Size() int
	// SyncIfNeeded brings the view up to date with its table and returns the
	// version it is now in sync with.
	SyncIfNeeded() (uint64, error)
	// IsInSync reports whether the view reflects the current table content
	// without recomputing it.
	IsInSync() bool
}

// RowIndexes is the ordered row index sequence at the core of every view. Table
// mutations adjust the entries so they keep addressing the same rows; entries
// whose row is removed become DetachedRow.
type RowIndexes struct {
	rows []int
}

// NewRowIndexes takes ownership of rows.
func NewRowIndexes(rows []int) *RowIndexes {
	return &RowIndexes{rows: rows}
}

func (ri *RowIndexes) Size() int {
	return len(ri.rows)
}

// RowIndex returns entry i, DetachedRow if its row was removed.
func (ri *RowIndexes) RowIndex(i int) (int, error) {
	if i < 0 || i >= len(ri.rows) {
		return 0, coreerr.ErrIndexOutOfRange.New("view", i, len(ri.rows))
	}
	return ri.rows[i], nil
}

// IsRowAttached returns false for entries whose row was removed.
func (ri *RowIndexes) IsRowAttached(i int) bool {
	return ri.rows[i] != DetachedRow
}

// Rows returns a copy of the entries.
func (ri *RowIndexes) Rows() []int {
	return append([]int(nil), ri.rows...)
}

// SetRows replaces the entries, taking ownership of rows.
func (ri *RowIndexes) SetRows(rows []int) {
	ri.rows = rows
}

// DoSort applies o to the entries. Detached entries are dropped first. The
// entries are left untouched if o fails.
func (ri *RowIndexes) DoSort(o *sortdesc.DescriptorOrdering) error {
	if o == nil || o.IsEmpty() {
		return nil
	}

	live := make([]int, 0, len(ri.rows))
	for _, row := range ri.rows {
		if row != DetachedRow {
			live = append(live, row)
		}
	}
	sorted, err := o.Apply(live)
	if err != nil {
		return err
	}
	ri.rows = sorted
	return nil
}

// AdjustInserted shifts entries for n rows inserted at row.
func (ri *RowIndexes) AdjustInserted(row, n int) {
	for i, r := range ri.rows {
		if r >= row {
			ri.rows[i] = r + n
		}
	}
}

// AdjustErased detaches entries of row and shifts entries of later rows.
func (ri *RowIndexes) AdjustErased(row int) {
	for i, r := range ri.rows {
		switch {
		case r == row:
			ri.rows[i] = DetachedRow
		case r > row:
			ri.rows[i] = r - 1
		}
	}
}

// AdjustMoveLastOver detaches entries of row and points entries of last at
// row.
func (ri *RowIndexes) AdjustMoveLastOver(row, last int) {
	for i, r := range ri.rows {
		switch {
		case r == row:
			ri.rows[i] = DetachedRow
		case r == last:
			ri.rows[i] = row
		}
	}
}

// AdjustCleared detaches every entry.
func (ri *RowIndexes) AdjustCleared() {
	for i := range ri.rows {
		ri.rows[i] = DetachedRow
	}
}
