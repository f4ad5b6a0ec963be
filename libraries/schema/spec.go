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

// Package schema holds the storage accessor for table specs: the ordered list
// of column definitions persisted beside a table's columns, and the handle
// used to share one spec among every subtable of a column.
package schema

import (
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// Attr holds per-column flags.
type Attr int64

const (
	AttrNullable Attr = 1 << iota
	AttrIndexed
)

// NoLinkTarget is stored as the link target of columns that are not links.
const NoLinkTarget = -1

// slots of the spec top node
const (
	typesSlot = iota
	namesSlot
	attrsSlot
	subspecsSlot
	targetsSlot
	specSlots
)

// Spec is an accessor for a spec node. A spec node has five children: column
// types, column names, column attributes, nested specs for table columns and
// link targets given as the index of the target table in its group.
type Spec struct {
	alloc    array.Allocator
	top      *array.Node
	types    *array.Node
	names    *array.Node
	attrs    *array.Node
	subspecs *array.Node
	targets  *array.Node
}

// Create allocates an empty spec.
func Create(alloc array.Allocator) (*Spec, error) {
	top, err := alloc.Alloc(true, specSlots)
	if err != nil {
		return nil, err
	}

	for slot := 0; slot < specSlots; slot++ {
		child, err := alloc.Alloc(slot == subspecsSlot, 0)
		if err != nil {
			_ = array.DestroyDeep(alloc, top.Ref())
			return nil, err
		}
		child.SetParent(top, slot)
		child.UpdateParent()
	}

	return Open(alloc, top.Ref())
}

// Open returns an accessor for the spec stored at ref.
func Open(alloc array.Allocator, ref array.Ref) (*Spec, error) {
	s := &Spec{alloc: alloc}
	top, err := alloc.Translate(ref)
	if err != nil {
		return nil, err
	}
	s.top = top
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the child nodes of the spec. It is called when the storage
// may have been changed by someone other than this accessor.
func (s *Spec) Reload() error {
	children := make([]*array.Node, specSlots)
	for slot := range children {
		n, err := s.alloc.Translate(s.top.GetRef(slot))
		if err != nil {
			return err
		}
		n.SetParent(s.top, slot)
		children[slot] = n
	}
	s.types, s.names, s.attrs, s.subspecs, s.targets =
		children[typesSlot], children[namesSlot], children[attrsSlot], children[subspecsSlot], children[targetsSlot]
	return nil
}

// Ref returns the ref of the spec top node.
func (s *Spec) Ref() array.Ref {
	return s.top.Ref()
}

// Node returns the spec top node.
func (s *Spec) Node() *array.Node {
	return s.top
}

func (s *Spec) ColumnCount() int {
	return s.types.Size()
}

func (s *Spec) ColumnType(ndx int) typeinfo.DataType {
	return typeinfo.DataType(s.types.GetInt(ndx))
}

func (s *Spec) ColumnName(ndx int) string {
	return s.names.Get(ndx).(string)
}

func (s *Spec) ColumnAttr(ndx int) Attr {
	return Attr(s.attrs.GetInt(ndx))
}

func (s *Spec) SetColumnAttr(ndx int, attr Attr) {
	s.attrs.Set(ndx, int64(attr))
}

func (s *Spec) IsNullable(ndx int) bool {
	return s.ColumnAttr(ndx)&AttrNullable != 0
}

// Traits returns the type traits of the column at ndx.
func (s *Spec) Traits(ndx int) typeinfo.Traits {
	return typeinfo.MustLookup(s.ColumnType(ndx), s.IsNullable(ndx))
}

// ColumnIndex returns the index of the column with the given name, or -1.
func (s *Spec) ColumnIndex(name string) int {
	for i := 0; i < s.names.Size(); i++ {
		if s.names.Get(i).(string) == name {
			return i
		}
	}
	return -1
}

// LinkTarget returns the group index of the table targeted by the link column at
// ndx, or NoLinkTarget.
func (s *Spec) LinkTarget(ndx int) int {
	return int(s.targets.GetInt(ndx))
}

func (s *Spec) SetLinkTarget(ndx, target int) {
	s.targets.Set(ndx, int64(target))
}

// SubspecRef returns the ref of the nested spec of a table column.
func (s *Spec) SubspecRef(ndx int) array.Ref {
	return s.subspecs.GetRef(ndx)
}

// Subspec opens the nested spec of a table column.
func (s *Spec) Subspec(ndx int) (*Spec, error) {
	return Open(s.alloc, s.SubspecRef(ndx))
}

// SubspecIndex returns the index of the column whose nested spec is ref, or -1.
func (s *Spec) SubspecIndex(ref array.Ref) int {
	for i := 0; i < s.subspecs.Size(); i++ {
		if s.subspecs.GetRef(i) == ref {
			return i
		}
	}
	return -1
}

// InsertColumn adds a column definition at ndx. Table columns get a new empty
// nested spec.
func (s *Spec) InsertColumn(ndx int, dt typeinfo.DataType, name string, attr Attr) error {
	if ndx < 0 || ndx > s.ColumnCount() {
		return coreerr.ErrIndexOutOfRange.New("column", ndx, s.ColumnCount()+1)
	}
	if s.ColumnIndex(name) >= 0 {
		return coreerr.ErrColumnNameCollision.New(name)
	}
	if _, err := typeinfo.Lookup(dt, attr&AttrNullable != 0); err != nil {
		return err
	}

	subspec := array.NullRef
	if dt == typeinfo.Table {
		sub, err := Create(s.alloc)
		if err != nil {
			return err
		}
		subspec = sub.Ref()
		sub.Node().SetParent(s.subspecs, ndx)
	}

	s.types.Insert(ndx, int64(dt))
	s.names.Insert(ndx, name)
	s.attrs.Insert(ndx, int64(attr))
	s.subspecs.Insert(ndx, subspec)
	s.targets.Insert(ndx, int64(NoLinkTarget))
	s.fixSubspecParents(ndx + 1)
	return nil
}

// RemoveColumn drops the column definition at ndx along with any nested spec.
func (s *Spec) RemoveColumn(ndx int) error {
	if ndx < 0 || ndx >= s.ColumnCount() {
		return coreerr.ErrIndexOutOfRange.New("column", ndx, s.ColumnCount())
	}
	if ref := s.subspecs.GetRef(ndx); !ref.IsNull() {
		if err := array.DestroyDeep(s.alloc, ref); err != nil {
			return err
		}
	}

	s.types.Erase(ndx)
	s.names.Erase(ndx)
	s.attrs.Erase(ndx)
	s.subspecs.Erase(ndx)
	s.targets.Erase(ndx)
	s.fixSubspecParents(ndx)
	return nil
}

// RenameColumn changes the name of the column at ndx.
func (s *Spec) RenameColumn(ndx int, name string) error {
	if ndx < 0 || ndx >= s.ColumnCount() {
		return coreerr.ErrIndexOutOfRange.New("column", ndx, s.ColumnCount())
	}
	if existing := s.ColumnIndex(name); existing >= 0 && existing != ndx {
		return coreerr.ErrColumnNameCollision.New(name)
	}
	s.names.Set(ndx, name)
	return nil
}

func (s *Spec) fixSubspecParents(from int) {
	for i := from; i < s.subspecs.Size(); i++ {
		ref := s.subspecs.GetRef(i)
		if ref.IsNull() {
			continue
		}
		if n, err := s.alloc.Translate(ref); err == nil {
			n.SetParent(s.subspecs, i)
		}
	}
}

// Equal compares two specs structurally, including nested specs. Link targets
// are compared by group index.
func (s *Spec) Equal(other *Spec) bool {
	if s.ColumnCount() != other.ColumnCount() {
		return false
	}
	for i := 0; i < s.ColumnCount(); i++ {
		if s.ColumnType(i) != other.ColumnType(i) ||
			s.ColumnName(i) != other.ColumnName(i) ||
			s.IsNullable(i) != other.IsNullable(i) ||
			s.LinkTarget(i) != other.LinkTarget(i) {
			return false
		}
		if s.ColumnType(i) != typeinfo.Table {
			continue
		}
		sub, err := s.Subspec(i)
		if err != nil {
			return false
		}
		otherSub, err := other.Subspec(i)
		if err != nil {
			return false
		}
		if !sub.Equal(otherSub) {
			return false
		}
	}
	return true
}

// Destroy frees the spec and every nested spec.
func (s *Spec) Destroy() error {
	return array.DestroyDeep(s.alloc, s.top.Ref())
}
