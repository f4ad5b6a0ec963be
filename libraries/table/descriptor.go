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
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/schema"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// Descriptor is the schema accessor of an independent schema or of a schema
// nested in one. There is at most one descriptor per spec: the root descriptor
// is cached by its table and nested descriptors by their parent descriptor.
//
// Changes made through a nested descriptor apply to every subtable of the
// column the nested spec belongs to.
type Descriptor struct {
	root     *Table
	parent   *Descriptor
	spec     *schema.Spec
	subdescs map[array.Ref]*Descriptor
	detached bool
}

// GetDescriptor returns the descriptor of the table's schema. For subtables
// this is the nested descriptor of the parent column.
func (t *Table) GetDescriptor() (*Descriptor, error) {
	if err := t.checkAttached(); err != nil {
		return nil, err
	}
	if t.parent != nil {
		pd, err := t.parent.GetDescriptor()
		if err != nil {
			return nil, err
		}
		return pd.GetSubdescriptor(t.parentCol)
	}
	if t.descriptor == nil {
		t.descriptor = &Descriptor{root: t, spec: t.spec(), subdescs: make(map[array.Ref]*Descriptor)}
	}
	return t.descriptor, nil
}

func (desc *Descriptor) detach() {
	desc.detached = true
	for _, sub := range desc.subdescs {
		sub.detach()
	}
	desc.subdescs = nil
}

func (desc *Descriptor) check() error {
	if desc.detached || !desc.root.IsAttached() {
		return coreerr.ErrInvalidAccessorState.New("descriptor")
	}
	return nil
}

// IsAttached returns true while the descriptor can be used.
func (desc *Descriptor) IsAttached() bool {
	return desc.check() == nil
}

// IsRoot returns true for the descriptor of an independent schema.
func (desc *Descriptor) IsRoot() bool {
	return desc.parent == nil
}

// Parent returns the enclosing descriptor, nil for a root descriptor.
func (desc *Descriptor) Parent() *Descriptor {
	return desc.parent
}

// path returns the columns leading from the root spec to this one.
func (desc *Descriptor) path() ([]int, error) {
	if err := desc.check(); err != nil {
		return nil, err
	}
	if desc.parent == nil {
		return nil, nil
	}
	parentPath, err := desc.parent.path()
	if err != nil {
		return nil, err
	}
	ndx := desc.parent.spec.SubspecIndex(desc.spec.Ref())
	if ndx < 0 {
		desc.detach()
		return nil, coreerr.ErrInvalidAccessorState.New("descriptor")
	}
	return append(parentPath, ndx), nil
}

func (desc *Descriptor) ColumnCount() int {
	if desc.check() != nil {
		return 0
	}
	return desc.spec.ColumnCount()
}

func (desc *Descriptor) checkColumn(ndx int) error {
	if err := desc.check(); err != nil {
		return err
	}
	if ndx < 0 || ndx >= desc.spec.ColumnCount() {
		return coreerr.ErrIndexOutOfRange.New("column", ndx, desc.spec.ColumnCount())
	}
	return nil
}

func (desc *Descriptor) ColumnType(ndx int) (typeinfo.DataType, error) {
	if err := desc.checkColumn(ndx); err != nil {
		return 0, err
	}
	return desc.spec.ColumnType(ndx), nil
}

func (desc *Descriptor) ColumnName(ndx int) (string, error) {
	if err := desc.checkColumn(ndx); err != nil {
		return "", err
	}
	return desc.spec.ColumnName(ndx), nil
}

func (desc *Descriptor) IsNullable(ndx int) (bool, error) {
	if err := desc.checkColumn(ndx); err != nil {
		return false, err
	}
	return desc.spec.IsNullable(ndx), nil
}

// ColumnIndex returns the index of the named column, or -1.
func (desc *Descriptor) ColumnIndex(name string) int {
	if desc.check() != nil {
		return -1
	}
	return desc.spec.ColumnIndex(name)
}

// AddColumn appends a column and returns its index.
func (desc *Descriptor) AddColumn(dt typeinfo.DataType, name string, nullable bool) (int, error) {
	ndx := desc.ColumnCount()
	return ndx, desc.InsertColumn(ndx, dt, name, nullable)
}

// InsertColumn inserts a column at ndx. Link columns must be added with
// InsertColumnLink.
func (desc *Descriptor) InsertColumn(ndx int, dt typeinfo.DataType, name string, nullable bool) error {
	if dt.IsLink() {
		return ErrLinkTargetRequired.New(name, dt)
	}
	return desc.insertColumn(ndx, dt, name, nullable, nil)
}

// AddColumnLink appends a link or link list column pointing at target.
func (desc *Descriptor) AddColumnLink(dt typeinfo.DataType, name string, target *Table) (int, error) {
	ndx := desc.ColumnCount()
	return ndx, desc.InsertColumnLink(ndx, dt, name, target)
}

// InsertColumnLink inserts a link or link list column pointing at target. Both
// tables must belong to the same container and link columns cannot be added to
// nested schemas.
func (desc *Descriptor) InsertColumnLink(ndx int, dt typeinfo.DataType, name string, target *Table) error {
	if !dt.IsLink() {
		return coreerr.ErrTypeMismatch.New(ndx, dt, typeinfo.Link)
	}
	if target == nil {
		return ErrLinkTargetRequired.New(name, dt)
	}
	if !desc.IsRoot() {
		return coreerr.ErrCrossTableLink.New()
	}
	// to-one links are always nullable, link lists never are
	return desc.insertColumn(ndx, dt, name, dt == typeinfo.Link, target)
}

func (desc *Descriptor) insertColumn(ndx int, dt typeinfo.DataType, name string, nullable bool, target *Table) error {
	path, err := desc.path()
	if err != nil {
		return err
	}
	if ndx < 0 || ndx > desc.spec.ColumnCount() {
		return coreerr.ErrIndexOutOfRange.New("column", ndx, desc.spec.ColumnCount()+1)
	}
	var attr schema.Attr
	if nullable {
		attr |= schema.AttrNullable
	}
	return desc.root.insertColumn(path, ndx, dt, name, attr, target)
}

// RemoveColumn removes the column at ndx from every table using the schema.
func (desc *Descriptor) RemoveColumn(ndx int) error {
	path, err := desc.path()
	if err != nil {
		return err
	}
	if err := desc.checkColumn(ndx); err != nil {
		return err
	}
	if sub, ok := desc.subdescs[desc.spec.SubspecRef(ndx)]; ok {
		sub.detach()
		delete(desc.subdescs, desc.spec.SubspecRef(ndx))
	}
	return desc.root.removeColumn(path, ndx)
}

// RenameColumn renames the column at ndx.
func (desc *Descriptor) RenameColumn(ndx int, name string) error {
	path, err := desc.path()
	if err != nil {
		return err
	}
	if err := desc.checkColumn(ndx); err != nil {
		return err
	}
	return desc.root.renameColumn(path, ndx, name)
}

// GetSubdescriptor returns the descriptor of the nested schema of the table
// column at ndx.
func (desc *Descriptor) GetSubdescriptor(ndx int) (*Descriptor, error) {
	if err := desc.checkColumn(ndx); err != nil {
		return nil, err
	}
	if dt := desc.spec.ColumnType(ndx); dt != typeinfo.Table {
		return nil, coreerr.ErrTypeMismatch.New(ndx, dt, typeinfo.Table)
	}

	ref := desc.spec.SubspecRef(ndx)
	if sub, ok := desc.subdescs[ref]; ok {
		return sub, nil
	}
	s, err := desc.spec.Subspec(ndx)
	if err != nil {
		return nil, err
	}
	sub := &Descriptor{root: desc.root, parent: desc, spec: s, subdescs: make(map[array.Ref]*Descriptor)}
	desc.subdescs[ref] = sub
	return sub, nil
}
