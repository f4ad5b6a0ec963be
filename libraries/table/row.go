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
	"time"

	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/typeinfo"
)

// Row is an accessor for one row. It follows its row when rows before it are
// inserted or removed and is detached when the row itself is removed.
type Row struct {
	table    *Table
	row      int
	detached bool
}

// Row returns an accessor for row.
func (t *Table) Row(row int) (*Row, error) {
	if err := t.checkAttached(); err != nil {
		return nil, err
	}
	if err := t.checkRow(row); err != nil {
		return nil, err
	}
	r := &Row{table: t, row: row}
	t.rows = append(t.rows, r)
	return r, nil
}

func (r *Row) detach() {
	r.detached = true
}

func (r *Row) check() error {
	if r.detached {
		return coreerr.ErrInvalidAccessorState.New("row")
	}
	return nil
}

func (r *Row) IsAttached() bool {
	return !r.detached
}

// Index returns the current row index.
func (r *Row) Index() int {
	return r.row
}

func (r *Row) Table() *Table {
	return r.table
}

// Release unregisters the accessor.
func (r *Row) Release() {
	if r.detached {
		return
	}
	r.detach()
	t := r.table
	for i, cached := range t.rows {
		if cached == r {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return
		}
	}
}

// Remove removes the row from its table, detaching the accessor.
func (r *Row) Remove() error {
	if err := r.check(); err != nil {
		return err
	}
	return r.table.RemoveRow(r.row)
}

// MoveLastOver removes the row by moving the last row over it.
func (r *Row) MoveLastOver() error {
	if err := r.check(); err != nil {
		return err
	}
	return r.table.MoveLastOver(r.row)
}

func (r *Row) Get(col int) (interface{}, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.table.Get(col, r.row)
}

func (r *Row) Set(col int, v interface{}) error {
	if err := r.check(); err != nil {
		return err
	}
	return r.table.SetAny(col, r.row, v)
}

func (r *Row) IsNull(col int) (bool, error) {
	if err := r.check(); err != nil {
		return false, err
	}
	return r.table.IsNull(col, r.row)
}

func (r *Row) SetNull(col int) error {
	if err := r.check(); err != nil {
		return err
	}
	return r.table.SetNull(col, r.row)
}

func (r *Row) GetInt(col int) (int64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	return r.table.GetInt(col, r.row)
}

func (r *Row) SetInt(col int, v int64) error {
	if err := r.check(); err != nil {
		return err
	}
	return r.table.SetInt(col, r.row, v)
}

func (r *Row) GetBool(col int) (bool, error) {
	if err := r.check(); err != nil {
		return false, err
	}
	return r.table.GetBool(col, r.row)
}

func (r *Row) SetBool(col int, v bool) error {
	if err := r.check(); err != nil {
		return err
	}
	return r.table.SetBool(col, r.row, v)
}

func (r *Row) GetFloat(col int) (float32, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	return r.table.GetFloat(col, r.row)
}

func (r *Row) GetDouble(col int) (float64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	return r.table.GetDouble(col, r.row)
}

func (r *Row) SetDouble(col int, v float64) error {
	if err := r.check(); err != nil {
		return err
	}
	return r.table.SetDouble(col, r.row, v)
}

func (r *Row) GetString(col int) (string, error) {
	if err := r.check(); err != nil {
		return "", err
	}
	return r.table.GetString(col, r.row)
}

func (r *Row) SetString(col int, v string) error {
	if err := r.check(); err != nil {
		return err
	}
	return r.table.SetString(col, r.row, v)
}

func (r *Row) GetTimestamp(col int) (time.Time, error) {
	if err := r.check(); err != nil {
		return time.Time{}, err
	}
	return r.table.GetTimestamp(col, r.row)
}

func (r *Row) GetMixed(col int) (typeinfo.MixedValue, error) {
	if err := r.check(); err != nil {
		return typeinfo.MixedValue{}, err
	}
	return r.table.GetMixed(col, r.row)
}

func (r *Row) GetLink(col int) (int, error) {
	if err := r.check(); err != nil {
		return 0, err
	}
	return r.table.GetLink(col, r.row)
}

func (r *Row) SetLink(col, target int) error {
	if err := r.check(); err != nil {
		return err
	}
	return r.table.SetLink(col, r.row, target)
}

func (r *Row) GetLinkList(col int) (*LinkView, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.table.GetLinkList(col, r.row)
}

func (r *Row) GetSubtable(col int) (*Table, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.table.GetSubtable(col, r.row)
}
