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
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// GetLink returns the target row of a link cell, -1 for a null link.
func (t *Table) GetLink(col, row int) (int, error) {
	if err := t.checkCell(col, row); err != nil {
		return 0, err
	}
	if err := t.checkType(col, typeinfo.Link); err != nil {
		return 0, err
	}
	target, ok := t.cols[col].(*column.Link).TargetRow(row)
	if !ok {
		return -1, nil
	}
	return target, nil
}

func (t *Table) IsNullLink(col, row int) (bool, error) {
	target, err := t.GetLink(col, row)
	return target < 0, err
}

// SetLink points a link cell at target, or nulls it for a negative target.
func (t *Table) SetLink(col, row, target int) error {
	if err := t.checkCell(col, row); err != nil {
		return err
	}
	if err := t.checkType(col, typeinfo.Link); err != nil {
		return err
	}
	targetTable, bl, err := t.linkPeer(col)
	if err != nil {
		return err
	}
	if target >= targetTable.size {
		return coreerr.ErrIndexOutOfRange.New("row", target, targetTable.size)
	}

	return t.mutate("set link", func() error {
		l := t.cols[col].(*column.Link)
		if old, ok := l.TargetRow(row); ok {
			if err := bl.RemoveOrigin(old, row); err != nil {
				return err
			}
		}
		l.SetTargetRow(row, target)
		if target >= 0 {
			if err := bl.AddOrigin(target, row); err != nil {
				return err
			}
		}
		if ix, ok := t.indexes[l]; ok {
			ix.Invalidate()
		}
		if targetTable != t {
			targetTable.bumpVersion()
		}
		return nil
	})
}

// NullifyLink clears a link cell and the back-link record it had on its
// target.
func (t *Table) NullifyLink(col, row int) error {
	return t.SetLink(col, row, -1)
}

// GetLinkTarget returns the table the link or link list column col points at.
func (t *Table) GetLinkTarget(col int) (*Table, error) {
	if err := t.checkColumn(col); err != nil {
		return nil, err
	}
	if dt := t.cols[col].Type(); !dt.IsLink() {
		return nil, coreerr.ErrTypeMismatch.New(col, dt, typeinfo.Link)
	}
	return t.linkTargetTable(col)
}

// GetLinkList returns the accessor of a link list cell. Accessors are shared:
// asking twice for the same cell returns the same LinkView.
func (t *Table) GetLinkList(col, row int) (*LinkView, error) {
	if err := t.checkCell(col, row); err != nil {
		return nil, err
	}
	if err := t.checkType(col, typeinfo.LinkList); err != nil {
		return nil, err
	}
	for _, lv := range t.linkViews {
		if lv.col == col && lv.row == row {
			return lv, nil
		}
	}
	lv := &LinkView{origin: t, col: col, row: row}
	t.linkViews = append(t.linkViews, lv)
	return lv, nil
}

// GetLinkListSize returns the number of links in a link list cell.
func (t *Table) GetLinkListSize(col, row int) (int, error) {
	if err := t.checkCell(col, row); err != nil {
		return 0, err
	}
	if err := t.checkType(col, typeinfo.LinkList); err != nil {
		return 0, err
	}
	return t.cols[col].(*column.LinkList).ListSize(row)
}

// GetBacklinkCount returns the number of rows of column originCol of origin
// linking to row.
func (t *Table) GetBacklinkCount(row int, origin *Table, originCol int) (int, error) {
	bl, err := t.backlinkFor(row, origin, originCol)
	if err != nil || bl == nil {
		return 0, err
	}
	return bl.Count(row)
}

// GetBacklink returns the i-th row of column originCol of origin linking to
// row.
func (t *Table) GetBacklink(row int, origin *Table, originCol, i int) (int, error) {
	bl, err := t.backlinkFor(row, origin, originCol)
	if err != nil {
		return 0, err
	}
	n := 0
	if bl != nil {
		if n, err = bl.Count(row); err != nil {
			return 0, err
		}
	}
	if i < 0 || i >= n {
		return 0, coreerr.ErrIndexOutOfRange.New("backlink", i, n)
	}
	return bl.Origin(row, i)
}

// GetBacklinkCountAll returns the number of links from any column of any
// table pointing at row.
func (t *Table) GetBacklinkCountAll(row int) (int, error) {
	if err := t.checkAttached(); err != nil {
		return 0, err
	}
	if err := t.checkRow(row); err != nil {
		return 0, err
	}
	total := 0
	for _, bl := range t.blCols {
		n, err := bl.Count(row)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// LinkOrigins returns the container indexes of the other tables with link
// columns pointing at t, in ascending order without duplicates.
func (t *Table) LinkOrigins() []int {
	if t.state != attached {
		return nil
	}
	me := t.GetIndexInGroup()
	var origins []int
	for _, bl := range t.blCols {
		o := bl.OriginTable()
		if o == me {
			continue
		}
		i := sort.SearchInts(origins, o)
		if i < len(origins) && origins[i] == o {
			continue
		}
		origins = append(origins, 0)
		copy(origins[i+1:], origins[i:])
		origins[i] = o
	}
	return origins
}

func (t *Table) backlinkFor(row int, origin *Table, originCol int) (*column.BackLink, error) {
	if err := t.checkAttached(); err != nil {
		return nil, err
	}
	if err := t.checkRow(row); err != nil {
		return nil, err
	}
	if err := origin.checkColumn(originCol); err != nil {
		return nil, err
	}
	if origin.container == nil || origin.container != t.container {
		return nil, coreerr.ErrCrossTableLink.New()
	}
	return t.findBacklink(origin.GetIndexInGroup(), originCol), nil
}

func (t *Table) linkList(col int) *column.LinkList {
	return t.cols[col].(*column.LinkList)
}

// linkListInsert inserts a link to target at position i of a link list cell.
func (t *Table) linkListInsert(col, row, i, target int) error {
	targetTable, bl, err := t.linkPeer(col)
	if err != nil {
		return err
	}
	if err := targetTable.checkRow(target); err != nil {
		return err
	}
	n, err := t.linkList(col).ListSize(row)
	if err != nil {
		return err
	}
	if i < 0 || i > n {
		return coreerr.ErrIndexOutOfRange.New("link", i, n+1)
	}
	return t.mutate("link list insert", func() error {
		list, err := t.linkList(col).EnsureList(row)
		if err != nil {
			return err
		}
		if err := bl.AddOrigin(target, row); err != nil {
			return err
		}
		list.Insert(i, int64(target))
		bumpOthers(t, map[*Table]bool{targetTable: true})
		return nil
	})
}

// linkListSet replaces the link at position i of a link list cell.
func (t *Table) linkListSet(col, row, i, target int) error {
	targetTable, bl, err := t.linkPeer(col)
	if err != nil {
		return err
	}
	if err := targetTable.checkRow(target); err != nil {
		return err
	}
	return t.mutate("link list set", func() error {
		list, err := t.linkList(col).List(row)
		if err != nil {
			return err
		}
		if list == nil || i < 0 || i >= list.Size() {
			return coreerr.ErrIndexOutOfRange.New("link", i, sizeOf(list))
		}
		if err := bl.RemoveOrigin(int(list.GetInt(i)), row); err != nil {
			return err
		}
		if err := bl.AddOrigin(target, row); err != nil {
			return err
		}
		list.Set(i, int64(target))
		bumpOthers(t, map[*Table]bool{targetTable: true})
		return nil
	})
}

// linkListRemove removes the link at position i of a link list cell.
func (t *Table) linkListRemove(col, row, i int) error {
	targetTable, bl, err := t.linkPeer(col)
	if err != nil {
		return err
	}
	return t.mutate("link list remove", func() error {
		ll := t.linkList(col)
		list, err := ll.List(row)
		if err != nil {
			return err
		}
		if list == nil || i < 0 || i >= list.Size() {
			return coreerr.ErrIndexOutOfRange.New("link", i, sizeOf(list))
		}
		if err := bl.RemoveOrigin(int(list.GetInt(i)), row); err != nil {
			return err
		}
		list.Erase(i)
		if list.Size() == 0 {
			if err := ll.ClearCell(row); err != nil {
				return err
			}
		}
		bumpOthers(t, map[*Table]bool{targetTable: true})
		return nil
	})
}

// linkListClear removes every link of a link list cell.
func (t *Table) linkListClear(col, row int) error {
	targetTable, bl, err := t.linkPeer(col)
	if err != nil {
		return err
	}
	return t.mutate("link list clear", func() error {
		ll := t.linkList(col)
		targets, err := ll.Targets(row)
		if err != nil {
			return err
		}
		for _, target := range targets {
			if err := bl.RemoveOrigin(target, row); err != nil {
				return err
			}
		}
		if err := ll.ClearCell(row); err != nil {
			return err
		}
		bumpOthers(t, map[*Table]bool{targetTable: true})
		return nil
	})
}

// linkListMove moves the link at position from to position to.
func (t *Table) linkListMove(col, row, from, to int) error {
	return t.mutate("link list move", func() error {
		list, err := t.linkList(col).List(row)
		if err != nil {
			return err
		}
		n := sizeOf(list)
		if from < 0 || from >= n {
			return coreerr.ErrIndexOutOfRange.New("link", from, n)
		}
		if to < 0 || to >= n {
			return coreerr.ErrIndexOutOfRange.New("link", to, n)
		}
		v := list.Get(from)
		list.Erase(from)
		list.Insert(to, v)
		return nil
	})
}

// linkListReorder replaces the order of the links of a cell. targets must be a
// permutation of the current links.
func (t *Table) linkListReorder(col, row int, targets []int) error {
	return t.mutate("link list sort", func() error {
		list, err := t.linkList(col).List(row)
		if err != nil {
			return err
		}
		if sizeOf(list) != len(targets) {
			return ErrInconsistent.New("link list changed while sorting")
		}
		for i, target := range targets {
			list.Set(i, int64(target))
		}
		return nil
	})
}

func sizeOf(list *array.Node) int {
	if list == nil {
		return 0
	}
	return list.Size()
}
