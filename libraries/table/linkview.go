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

// LinkView is the accessor of one link list cell. It reads the list straight
// from storage, so it is always in sync with its origin table. It is detached
// when its origin row or column is removed.
type LinkView struct {
	origin   *Table
	col      int
	row      int
	detached bool
}

var _ views.View = (*LinkView)(nil)

func (lv *LinkView) detach() {
	lv.detached = true
}

func (lv *LinkView) check() error {
	if lv.detached || !lv.origin.IsAttached() {
		return coreerr.ErrInvalidAccessorState.New("link list")
	}
	return nil
}

func (lv *LinkView) IsAttached() bool {
	return lv.check() == nil
}

// GetOriginRowIndex returns the row of the origin table holding the list.
func (lv *LinkView) GetOriginRowIndex() int {
	return lv.row
}

// GetOriginTable returns the table holding the list.
func (lv *LinkView) GetOriginTable() *Table {
	return lv.origin
}

// GetTarget returns the table the links point at.
func (lv *LinkView) GetTarget() (*Table, error) {
	if err := lv.check(); err != nil {
		return nil, err
	}
	return lv.origin.linkTargetTable(lv.col)
}

// Size returns the number of links, 0 once detached.
func (lv *LinkView) Size() int {
	if lv.check() != nil {
		return 0
	}
	n, err := lv.origin.linkList(lv.col).ListSize(lv.row)
	if err != nil {
		return 0
	}
	return n
}

// Get returns the target row of the i-th link.
func (lv *LinkView) Get(i int) (int, error) {
	targets, err := lv.Targets()
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(targets) {
		return 0, coreerr.ErrIndexOutOfRange.New("link", i, len(targets))
	}
	return targets[i], nil
}

// Targets returns a copy of the target rows in list order.
func (lv *LinkView) Targets() ([]int, error) {
	if err := lv.check(); err != nil {
		return nil, err
	}
	return lv.origin.linkList(lv.col).Targets(lv.row)
}

// Find returns the position of the first link to target, or -1.
func (lv *LinkView) Find(target int) (int, error) {
	targets, err := lv.Targets()
	if err != nil {
		return -1, err
	}
	for i, t := range targets {
		if t == target {
			return i, nil
		}
	}
	return -1, nil
}

// Add appends a link to target.
func (lv *LinkView) Add(target int) error {
	return lv.Insert(lv.Size(), target)
}

func (lv *LinkView) Insert(i, target int) error {
	if err := lv.check(); err != nil {
		return err
	}
	return lv.origin.linkListInsert(lv.col, lv.row, i, target)
}

func (lv *LinkView) Set(i, target int) error {
	if err := lv.check(); err != nil {
		return err
	}
	return lv.origin.linkListSet(lv.col, lv.row, i, target)
}

func (lv *LinkView) Remove(i int) error {
	if err := lv.check(); err != nil {
		return err
	}
	return lv.origin.linkListRemove(lv.col, lv.row, i)
}

func (lv *LinkView) Clear() error {
	if err := lv.check(); err != nil {
		return err
	}
	return lv.origin.linkListClear(lv.col, lv.row)
}

// Move moves the link at position from to position to.
func (lv *LinkView) Move(from, to int) error {
	if err := lv.check(); err != nil {
		return err
	}
	return lv.origin.linkListMove(lv.col, lv.row, from, to)
}

// Sort reorders the links by the value of column col of the target table.
func (lv *LinkView) Sort(col int, ascending bool) error {
	target, err := lv.GetTarget()
	if err != nil {
		return err
	}
	sd, err := sortdesc.New(target, [][]int{{col}}, []bool{ascending})
	if err != nil {
		return err
	}
	return lv.SortBy(sd)
}

// SortBy reorders the links with a descriptor over the target table.
func (lv *LinkView) SortBy(sd *sortdesc.SortDescriptor) error {
	target, err := lv.GetTarget()
	if err != nil {
		return err
	}
	if !sd.IsValid() || sd.Table() != column.TableBase(target) {
		return coreerr.ErrInvalidSortChain.New("descriptor is empty or does not start from the link target table")
	}
	targets, err := lv.Targets()
	if err != nil {
		return err
	}
	if err := sortdesc.Sort(targets, sd); err != nil {
		return err
	}
	return lv.origin.linkListReorder(lv.col, lv.row, targets)
}

// ColumnBase returns a column of the target table.
func (lv *LinkView) ColumnBase(ndx int) (column.Base, error) {
	target, err := lv.GetTarget()
	if err != nil {
		return nil, err
	}
	return target.ColumnBase(ndx)
}

// SyncIfNeeded returns the version of the origin table. A link list never
// needs recomputing.
func (lv *LinkView) SyncIfNeeded() (uint64, error) {
	if err := lv.check(); err != nil {
		return 0, err
	}
	return lv.origin.version, nil
}

func (lv *LinkView) IsInSync() bool {
	return lv.IsAttached()
}

// Release unregisters the accessor from its origin table.
func (lv *LinkView) Release() {
	if lv.detached {
		return
	}
	lv.detach()
	for i, cached := range lv.origin.linkViews {
		if cached == lv {
			lv.origin.linkViews = append(lv.origin.linkViews[:i], lv.origin.linkViews[i+1:]...)
			return
		}
	}
}
