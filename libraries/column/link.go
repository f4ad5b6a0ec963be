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

package column

import (
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// Link is the accessor of a to-one link column. A cell holds the target row
// plus one, zero meaning null.
type Link struct {
	leaf
	resolve Resolver
}

var _ Column = (*Link)(nil)
var _ LinkBase = (*Link)(nil)

func (l *Link) IsNull(row int) bool {
	return l.node.GetInt(row) == 0
}

func (l *Link) TargetRow(row int) (int, bool) {
	v := l.node.GetInt(row)
	if v == 0 {
		return -1, false
	}
	return int(v - 1), true
}

// SetTargetRow stores a link to target, or null for a negative target.
func (l *Link) SetTargetRow(row, target int) {
	if target < 0 {
		l.node.Set(row, int64(0))
		return
	}
	l.node.Set(row, int64(target+1))
}

// ReplaceTargets maps every non-null link through fn. A negative result nulls
// the link.
func (l *Link) ReplaceTargets(fn func(target int) int) {
	for row := 0; row < l.Size(); row++ {
		if target, ok := l.TargetRow(row); ok {
			l.SetTargetRow(row, fn(target))
		}
	}
}

// OriginsOf returns the rows linking to target.
func (l *Link) OriginsOf(target int) []int {
	var rows []int
	for row := 0; row < l.Size(); row++ {
		if t, ok := l.TargetRow(row); ok && t == target {
			rows = append(rows, row)
		}
	}
	return rows
}

func (l *Link) TargetTable() (TableBase, error) {
	return l.resolve()
}

// SetResolver replaces the function used to find the target table.
func (l *Link) SetResolver(r Resolver) {
	l.resolve = r
}

// LinkList is the accessor of a to-many link column. A cell holds the ref of a
// node listing target rows, or the null ref for an empty list.
type LinkList struct {
	leaf
	resolve Resolver
}

var _ Column = (*LinkList)(nil)

func (l *LinkList) IsNull(row int) bool {
	return false
}

func (l *LinkList) TargetTable() (TableBase, error) {
	return l.resolve()
}

// SetResolver replaces the function used to find the target table.
func (l *LinkList) SetResolver(r Resolver) {
	l.resolve = r
}

// List returns the list node of a cell, nil when the list is empty.
func (l *LinkList) List(row int) (*array.Node, error) {
	ref := l.CellRef(row)
	if ref.IsNull() {
		return nil, nil
	}
	return l.alloc.Translate(ref)
}

// EnsureList returns the list node of a cell, allocating it if needed.
func (l *LinkList) EnsureList(row int) (*array.Node, error) {
	list, err := l.List(row)
	if err != nil || list != nil {
		return list, err
	}
	list, err = l.alloc.Alloc(false, 0)
	if err != nil {
		return nil, err
	}
	list.SetParent(l.node, row)
	list.UpdateParent()
	return list, nil
}

// Targets returns a copy of the target rows of a cell.
func (l *LinkList) Targets(row int) ([]int, error) {
	list, err := l.List(row)
	if err != nil || list == nil {
		return nil, err
	}
	targets := make([]int, list.Size())
	for i := range targets {
		targets[i] = int(list.GetInt(i))
	}
	return targets, nil
}

// ListSize returns the number of links in a cell.
func (l *LinkList) ListSize(row int) (int, error) {
	list, err := l.List(row)
	if err != nil || list == nil {
		return 0, err
	}
	return list.Size(), nil
}

// ReplaceTargets maps every link through fn, dropping links for which fn
// returns a negative row. Lists left empty are freed.
func (l *LinkList) ReplaceTargets(fn func(target int) int) error {
	for row := 0; row < l.Size(); row++ {
		list, err := l.List(row)
		if err != nil {
			return err
		}
		if list == nil {
			continue
		}
		for i := 0; i < list.Size(); {
			target := fn(int(list.GetInt(i)))
			if target < 0 {
				list.Erase(i)
				continue
			}
			list.Set(i, int64(target))
			i++
		}
		if list.Size() == 0 {
			if err := l.destroyCell(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// BackLink is the hidden column a link target keeps for every link column
// pointing at it. Its entry node records the origin table and column, its leaf
// holds per target row a ref to the list of origin rows.
type BackLink struct {
	leaf
	entry *array.Node
}

const (
	backLinkOriginTableSlot = iota
	backLinkOriginColSlot
	backLinkLeafSlot
	backLinkSlots
)

// CreateBackLink allocates a back-link entry for the given origin with size
// empty rows.
func CreateBackLink(alloc array.Allocator, originTable, originCol, size int) (*array.Node, error) {
	entry, err := alloc.Alloc(true, backLinkSlots)
	if err != nil {
		return nil, err
	}
	lf, err := alloc.Alloc(true, 0)
	if err != nil {
		_ = alloc.Free(entry.Ref())
		return nil, err
	}
	lf.InsertN(0, size, array.NullRef)
	entry.Set(backLinkOriginTableSlot, int64(originTable))
	entry.Set(backLinkOriginColSlot, int64(originCol))
	lf.SetParent(entry, backLinkLeafSlot)
	lf.UpdateParent()
	return entry, nil
}

// OpenBackLink returns an accessor for a back-link entry.
func OpenBackLink(alloc array.Allocator, entry *array.Node) (*BackLink, error) {
	lf, err := alloc.Translate(entry.GetRef(backLinkLeafSlot))
	if err != nil {
		return nil, err
	}
	lf.SetParent(entry, backLinkLeafSlot)
	bl := &BackLink{entry: entry}
	bl.alloc = alloc
	bl.node = lf
	bl.traits = typeinfo.BackLinkTraits
	bl.ndx = -1
	return bl, nil
}

// Entry returns the entry node of the back-link column.
func (bl *BackLink) Entry() *array.Node {
	return bl.entry
}

func (bl *BackLink) OriginTable() int {
	return int(bl.entry.GetInt(backLinkOriginTableSlot))
}

func (bl *BackLink) OriginCol() int {
	return int(bl.entry.GetInt(backLinkOriginColSlot))
}

func (bl *BackLink) SetOrigin(table, col int) {
	bl.entry.Set(backLinkOriginTableSlot, int64(table))
	bl.entry.Set(backLinkOriginColSlot, int64(col))
}

func (bl *BackLink) Detach() {
	bl.leaf.Detach()
	bl.entry = nil
}

func (bl *BackLink) IsNull(row int) bool {
	return false
}

// Count returns the number of origin rows linking to row.
func (bl *BackLink) Count(row int) (int, error) {
	list, err := bl.list(row)
	if err != nil || list == nil {
		return 0, err
	}
	return list.Size(), nil
}

// Origin returns the i-th origin row linking to row.
func (bl *BackLink) Origin(row, i int) (int, error) {
	list, err := bl.list(row)
	if err != nil {
		return 0, err
	}
	return int(list.GetInt(i)), nil
}

// Origins returns a copy of the origin rows linking to row.
func (bl *BackLink) Origins(row int) ([]int, error) {
	list, err := bl.list(row)
	if err != nil || list == nil {
		return nil, err
	}
	origins := make([]int, list.Size())
	for i := range origins {
		origins[i] = int(list.GetInt(i))
	}
	return origins, nil
}

// AddOrigin records that origin links to row.
func (bl *BackLink) AddOrigin(row, origin int) error {
	list, err := bl.list(row)
	if err != nil {
		return err
	}
	if list == nil {
		list, err = bl.alloc.Alloc(false, 0)
		if err != nil {
			return err
		}
		list.SetParent(bl.node, row)
		list.UpdateParent()
	}
	list.Add(int64(origin))
	return nil
}

// RemoveOrigin drops one record of origin linking to row.
func (bl *BackLink) RemoveOrigin(row, origin int) error {
	list, err := bl.list(row)
	if err != nil || list == nil {
		return err
	}
	for i := 0; i < list.Size(); i++ {
		if int(list.GetInt(i)) == origin {
			list.Erase(i)
			break
		}
	}
	if list.Size() == 0 {
		return bl.destroyCell(row)
	}
	return nil
}

// ReplaceOrigins maps every recorded origin row through fn, dropping records
// for which fn returns a negative row.
func (bl *BackLink) ReplaceOrigins(fn func(origin int) int) error {
	for row := 0; row < bl.Size(); row++ {
		list, err := bl.list(row)
		if err != nil {
			return err
		}
		if list == nil {
			continue
		}
		for i := 0; i < list.Size(); {
			origin := fn(int(list.GetInt(i)))
			if origin < 0 {
				list.Erase(i)
				continue
			}
			list.Set(i, int64(origin))
			i++
		}
		if list.Size() == 0 {
			if err := bl.destroyCell(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// ClearOrigins frees every origin list, leaving the rows in place.
func (bl *BackLink) ClearOrigins() error {
	for row := 0; row < bl.Size(); row++ {
		if err := bl.destroyCell(row); err != nil {
			return err
		}
	}
	return nil
}

func (bl *BackLink) list(row int) (*array.Node, error) {
	ref := bl.node.GetRef(row)
	if ref.IsNull() {
		return nil, nil
	}
	return bl.alloc.Translate(ref)
}
