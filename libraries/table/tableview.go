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
	"github.com/dolthub/tightstore/libraries/sortdesc"
	"github.com/dolthub/tightstore/libraries/views"
)

// TableView is an ordered selection of rows of a table. It remembers how its
// rows were produced (a search, a predicate, a range) and the ordering applied
// on top, so SyncIfNeeded can recompute it after the table, or a table the
// ordering reads through a link, changed. Between syncs the row indexes are
// adjusted to follow row insertions and removals.
type TableView struct {
	table    *Table
	rows     *views.RowIndexes
	producer func() ([]int, error)
	ordering *sortdesc.DescriptorOrdering
	version  uint64
	linked   []tableVersion
	detached bool
}

// tableVersion is the version a linked table had when the view last read it.
type tableVersion struct {
	table   *Table
	version uint64
}

var _ views.View = (*TableView)(nil)

func (t *Table) newView(producer func() ([]int, error), ordering *sortdesc.DescriptorOrdering) (*TableView, error) {
	if err := t.checkAttached(); err != nil {
		return nil, err
	}
	if ordering == nil {
		ordering = sortdesc.NewOrdering()
	}
	v := &TableView{table: t, rows: views.NewRowIndexes(nil), producer: producer, ordering: ordering}
	if err := v.recompute(); err != nil {
		return nil, err
	}
	t.views = append(t.views, v)
	return v, nil
}

func (t *Table) allRows() ([]int, error) {
	rows := make([]int, t.size)
	for i := range rows {
		rows[i] = i
	}
	return rows, nil
}

// View returns a view of every row in table order.
func (t *Table) View() (*TableView, error) {
	return t.newView(t.allRows, nil)
}

// Where returns a view of the rows for which pred returns true.
func (t *Table) Where(pred func(row int) bool) (*TableView, error) {
	return t.newView(func() ([]int, error) {
		var rows []int
		for row := 0; row < t.size; row++ {
			if pred(row) {
				rows = append(rows, row)
			}
		}
		return rows, nil
	}, nil)
}

// FindAll returns a view of the rows whose cell in col equals v.
func (t *Table) FindAll(col int, v interface{}) (*TableView, error) {
	if err := t.checkColumn(col); err != nil {
		return nil, err
	}
	c := t.cols[col]
	return t.newView(func() ([]int, error) {
		if c.IsDetached() {
			return nil, coreerr.ErrInvalidAccessorState.New("column")
		}
		return t.findAll(c.Index(), v), nil
	}, nil)
}

func (t *Table) FindAllInt(col int, v int64) (*TableView, error) {
	return t.FindAll(col, v)
}

func (t *Table) FindAllString(col int, v string) (*TableView, error) {
	return t.FindAll(col, v)
}

// GetSortedView returns a view of every row sorted on col.
func (t *Table) GetSortedView(col int, ascending bool) (*TableView, error) {
	sd, err := sortdesc.New(t, [][]int{{col}}, []bool{ascending})
	if err != nil {
		return nil, err
	}
	o := sortdesc.NewOrdering()
	o.AppendSort(sd)
	return t.newView(t.allRows, o)
}

// GetDistinctView returns a view holding the first row of every distinct value
// of col.
func (t *Table) GetDistinctView(col int) (*TableView, error) {
	sd, err := sortdesc.NewDistinct(t, [][]int{{col}})
	if err != nil {
		return nil, err
	}
	o := sortdesc.NewOrdering()
	o.AppendDistinct(sd)
	return t.newView(t.allRows, o)
}

// GetRangeView returns a view of the rows in [begin, end). Rows past the end
// of the table are dropped when the view is synced after a removal.
func (t *Table) GetRangeView(begin, end int) (*TableView, error) {
	if err := t.checkAttached(); err != nil {
		return nil, err
	}
	if begin < 0 || begin > t.size {
		return nil, coreerr.ErrIndexOutOfRange.New("row", begin, t.size+1)
	}
	if end < begin || end > t.size {
		return nil, coreerr.ErrIndexOutOfRange.New("row", end, t.size+1)
	}
	return t.newView(func() ([]int, error) {
		var rows []int
		for row := begin; row < end && row < t.size; row++ {
			rows = append(rows, row)
		}
		return rows, nil
	}, nil)
}

func (v *TableView) detach() {
	v.detached = true
}

func (v *TableView) check() error {
	if v.detached || !v.table.IsAttached() {
		return coreerr.ErrInvalidAccessorState.New("view")
	}
	return nil
}

func (v *TableView) IsAttached() bool {
	return v.check() == nil
}

func (v *TableView) Table() *Table {
	return v.table
}

func (v *TableView) Size() int {
	return v.rows.Size()
}

func (v *TableView) IsEmpty() bool {
	return v.rows.Size() == 0
}

// RowIndex returns the table row of entry i, views.DetachedRow if the row was
// removed since the view was last synced.
func (v *TableView) RowIndex(i int) (int, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	return v.rows.RowIndex(i)
}

func (v *TableView) IsRowAttached(i int) bool {
	return v.rows.IsRowAttached(i)
}

// Rows returns a copy of the table rows in view order.
func (v *TableView) Rows() []int {
	return v.rows.Rows()
}

func (v *TableView) row(i int) (int, error) {
	row, err := v.RowIndex(i)
	if err != nil {
		return 0, err
	}
	if row == views.DetachedRow {
		return 0, coreerr.ErrInvalidAccessorState.New("view row")
	}
	return row, nil
}

// Get returns the raw value of column col at entry i.
func (v *TableView) Get(col, i int) (interface{}, error) {
	row, err := v.row(i)
	if err != nil {
		return nil, err
	}
	return v.table.Get(col, row)
}

func (v *TableView) GetInt(col, i int) (int64, error) {
	row, err := v.row(i)
	if err != nil {
		return 0, err
	}
	return v.table.GetInt(col, row)
}

func (v *TableView) GetDouble(col, i int) (float64, error) {
	row, err := v.row(i)
	if err != nil {
		return 0, err
	}
	return v.table.GetDouble(col, row)
}

func (v *TableView) GetString(col, i int) (string, error) {
	row, err := v.row(i)
	if err != nil {
		return "", err
	}
	return v.table.GetString(col, row)
}

// ColumnBase returns a column of the viewed table.
func (v *TableView) ColumnBase(ndx int) (column.Base, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	return v.table.ColumnBase(ndx)
}

// IsInSync returns true if neither the table nor any table the ordering
// reads through links has changed since the view was last computed.
func (v *TableView) IsInSync() bool {
	return v.IsAttached() && v.upToDate()
}

func (v *TableView) upToDate() bool {
	if v.version != v.table.version {
		return false
	}
	for _, tv := range v.linked {
		if tv.table.version != tv.version {
			return false
		}
	}
	return true
}

// trackLinked starts following the tables other than its own that the
// ordering reads. Tables already followed keep their recorded version.
func (v *TableView) trackLinked() {
	for _, tb := range v.ordering.Tables() {
		lt, ok := tb.(*Table)
		if !ok || lt == v.table || v.tracks(lt) {
			continue
		}
		v.linked = append(v.linked, tableVersion{table: lt, version: lt.version})
	}
}

func (v *TableView) tracks(t *Table) bool {
	for _, tv := range v.linked {
		if tv.table == t {
			return true
		}
	}
	return false
}

// SyncIfNeeded recomputes the view if it is out of sync and returns the table
// version the view reflects.
func (v *TableView) SyncIfNeeded() (uint64, error) {
	if err := v.check(); err != nil {
		return 0, err
	}
	if !v.upToDate() {
		if err := v.recompute(); err != nil {
			return 0, err
		}
	}
	return v.version, nil
}

func (v *TableView) recompute() error {
	rows, err := v.producer()
	if err != nil {
		return err
	}
	next := views.NewRowIndexes(rows)
	if err := next.DoSort(v.ordering); err != nil {
		return err
	}
	v.rows = next
	v.version = v.table.version
	v.linked = nil
	v.trackLinked()
	return nil
}

// Sort adds a sort stage on col to the view's ordering and applies it.
func (v *TableView) Sort(col int, ascending bool) error {
	if err := v.check(); err != nil {
		return err
	}
	sd, err := sortdesc.New(v.table, [][]int{{col}}, []bool{ascending})
	if err != nil {
		return err
	}
	o := sortdesc.NewOrdering()
	o.AppendSort(sd)
	return v.ApplyOrdering(o)
}

// Distinct adds a distinct stage on col to the view's ordering and applies it.
func (v *TableView) Distinct(col int) error {
	if err := v.check(); err != nil {
		return err
	}
	sd, err := sortdesc.NewDistinct(v.table, [][]int{{col}})
	if err != nil {
		return err
	}
	o := sortdesc.NewOrdering()
	o.AppendDistinct(sd)
	return v.ApplyOrdering(o)
}

// ApplyOrdering appends the stages of o to the view's ordering and applies
// them to the current rows.
func (v *TableView) ApplyOrdering(o *sortdesc.DescriptorOrdering) error {
	if err := v.check(); err != nil {
		return err
	}
	if err := v.rows.DoSort(o); err != nil {
		return err
	}
	merged := v.ordering.Clone()
	for i := 0; i < o.Size(); i++ {
		sd, err := o.At(i)
		if err != nil {
			return err
		}
		if o.IsSort(i) {
			merged.AppendSort(sd)
		} else {
			merged.AppendDistinct(sd)
		}
	}
	v.ordering = merged
	v.trackLinked()
	return nil
}

// Ordering returns a copy of the stages the view applies.
func (v *TableView) Ordering() *sortdesc.DescriptorOrdering {
	return v.ordering.Clone()
}

// Release unregisters the view from its table.
func (v *TableView) Release() {
	if v.detached {
		return
	}
	v.detach()
	t := v.table
	for i, cached := range t.views {
		if cached == v {
			t.views = append(t.views[:i], t.views[i+1:]...)
			return
		}
	}
}
