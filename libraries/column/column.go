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

// Package column implements the column accessors owned by a table. Each
// accessor wraps one leaf node whose encoding is chosen by the column's type
// traits. Accessors are persistent objects: a table renumbers them when columns
// are inserted or removed and detaches them when their column goes away, so a
// reference to a column stays meaningful across unrelated schema changes.
package column

import (
	"time"

	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// Base is the type independent view of a column used by sorting, views and
// search indexes.
type Base interface {
	// Index returns the current position of the column in its table.
	Index() int
	Type() typeinfo.DataType
	Traits() typeinfo.Traits
	IsNullable() bool
	// IsDetached returns true once the column has been removed from its table or
	// the table has been detached.
	IsDetached() bool
	Size() int
	IsNull(row int) bool
	// Get returns the raw cell value, nil for null.
	Get(row int) interface{}
}

// TableBase is what sort descriptors and views need from a table.
type TableBase interface {
	ColumnCount() int
	ColumnBase(ndx int) (Base, error)
}

// LinkBase is a to-one link column as seen from a sort chain.
type LinkBase interface {
	Base
	// TargetRow returns the linked row, or false for a null link.
	TargetRow(row int) (int, bool)
	TargetTable() (TableBase, error)
}

// Column is implemented by every accessor a table owns.
type Column interface {
	Base
	Node() *array.Node
	// SetNode rebinds the accessor to a leaf, nil for a degenerate table.
	SetNode(n *array.Node)
	SetIndex(ndx int)
	Detach()
	InsertRows(row, n int)
	EraseRow(row int) error
	MoveLastOver(row, last int) error
	ClearRows() error
}

// Resolver finds the table a link column points at.
type Resolver func() (TableBase, error)

// New creates the accessor matching traits over leaf n.
func New(alloc array.Allocator, traits typeinfo.Traits, ndx int, n *array.Node, resolve Resolver) Column {
	l := leaf{alloc: alloc, traits: traits, ndx: ndx, node: n}
	switch traits.Column {
	case typeinfo.LinkColumn:
		return &Link{leaf: l, resolve: resolve}
	case typeinfo.LinkListColumn:
		return &LinkList{leaf: l, resolve: resolve}
	case typeinfo.SubtableColumn:
		return &Subtable{leaf: l}
	default:
		return &Scalar{leaf: l}
	}
}

// CreateLeaf allocates a leaf for a column with the given traits holding size
// default values.
func CreateLeaf(alloc array.Allocator, traits typeinfo.Traits, size int) (*array.Node, error) {
	n, err := alloc.Alloc(traits.Leaf.HasRefs(), 0)
	if err != nil {
		return nil, err
	}
	n.InsertN(0, size, DefaultValue(traits))
	return n, nil
}

// DefaultValue is the value new rows get in a column with the given traits.
// Nullable scalar columns default to null.
func DefaultValue(t typeinfo.Traits) interface{} {
	switch t.Leaf {
	case typeinfo.KeyLeaf:
		return int64(0)
	case typeinfo.RefLeaf:
		return array.NullRef
	case typeinfo.MixedLeaf:
		return typeinfo.MixedValue{Type: typeinfo.Int, Value: int64(0)}
	}
	if t.Nullable {
		return nil
	}
	switch t.ID {
	case typeinfo.Bool:
		return false
	case typeinfo.Float:
		return float32(0)
	case typeinfo.Double:
		return float64(0)
	case typeinfo.String:
		return ""
	case typeinfo.Binary:
		return []byte{}
	case typeinfo.Timestamp:
		return time.Time{}
	case typeinfo.OldDateTime:
		return typeinfo.DateTime(0)
	}
	return int64(0)
}

type leaf struct {
	alloc    array.Allocator
	node     *array.Node
	traits   typeinfo.Traits
	ndx      int
	detached bool
}

func (l *leaf) Index() int {
	return l.ndx
}

func (l *leaf) SetIndex(ndx int) {
	l.ndx = ndx
}

func (l *leaf) Type() typeinfo.DataType {
	return l.traits.ID
}

func (l *leaf) Traits() typeinfo.Traits {
	return l.traits
}

func (l *leaf) IsNullable() bool {
	return l.traits.Nullable
}

func (l *leaf) IsDetached() bool {
	return l.detached
}

func (l *leaf) Detach() {
	l.detached = true
	l.node = nil
}

func (l *leaf) Node() *array.Node {
	return l.node
}

func (l *leaf) SetNode(n *array.Node) {
	l.node = n
}

func (l *leaf) Size() int {
	if l.node == nil {
		return 0
	}
	return l.node.Size()
}

func (l *leaf) IsNull(row int) bool {
	return l.node.Get(row) == nil
}

func (l *leaf) Get(row int) interface{} {
	return l.node.Get(row)
}

// Set stores a raw cell value. Callers have checked the type.
func (l *leaf) Set(row int, v interface{}) {
	if b, ok := v.([]byte); ok {
		v = append([]byte{}, b...)
	}
	l.node.Set(row, v)
}

func (l *leaf) InsertRows(row, n int) {
	l.node.InsertN(row, n, DefaultValue(l.traits))
	l.reparent(row + n)
}

func (l *leaf) EraseRow(row int) error {
	if err := l.destroyCell(row); err != nil {
		return err
	}
	l.node.Erase(row)
	l.reparent(row)
	return nil
}

func (l *leaf) MoveLastOver(row, last int) error {
	if err := l.destroyCell(row); err != nil {
		return err
	}
	if row != last {
		l.node.Set(row, l.node.Get(last))
	}
	l.node.Erase(last)
	if row != last {
		l.reparent(row)
	}
	return nil
}

func (l *leaf) ClearRows() error {
	for row := 0; row < l.node.Size(); row++ {
		if err := l.destroyCell(row); err != nil {
			return err
		}
	}
	l.node.Clear()
	return nil
}

// CellRef returns the ref held by a cell of a ref leaf.
func (l *leaf) CellRef(row int) array.Ref {
	return l.node.GetRef(row)
}

// SetCellRef replaces the ref held by a cell of a ref leaf without freeing the
// previous child.
func (l *leaf) SetCellRef(row int, ref array.Ref) error {
	l.node.Set(row, ref)
	if ref.IsNull() {
		return nil
	}
	child, err := l.alloc.Translate(ref)
	if err != nil {
		return err
	}
	child.SetParent(l.node, row)
	return nil
}

// ClearCell frees the child of a cell of a ref leaf and nulls the cell.
func (l *leaf) ClearCell(row int) error {
	return l.destroyCell(row)
}

func (l *leaf) destroyCell(row int) error {
	if !l.traits.Leaf.HasRefs() {
		return nil
	}
	ref := l.node.GetRef(row)
	if ref.IsNull() {
		return nil
	}
	l.node.Set(row, array.NullRef)
	return array.DestroyDeep(l.alloc, ref)
}

// reparent fixes the parent index of the children of a ref leaf from row on.
func (l *leaf) reparent(from int) {
	if !l.traits.Leaf.HasRefs() {
		return
	}
	for row := from; row < l.node.Size(); row++ {
		ref := l.node.GetRef(row)
		if ref.IsNull() {
			continue
		}
		if child, err := l.alloc.Translate(ref); err == nil {
			child.SetParent(l.node, row)
		}
	}
}

// Scalar is the accessor of every column that stores plain values: integer,
// boolean, floating point, string, binary, timestamp, datetime and mixed.
type Scalar struct {
	leaf
}

var _ Column = (*Scalar)(nil)

// Subtable is the accessor of a table column. A cell holds the ref of the
// columns node of the subtable, or the null ref while the subtable is
// degenerate.
type Subtable struct {
	leaf
}

var _ Column = (*Subtable)(nil)

func (s *Subtable) IsNull(row int) bool {
	return false
}
