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

// Package table implements the table accessor: the in-memory object that
// mirrors a table stored in array nodes, together with the accessors that hang
// off it (columns, rows, subtables, views and link lists).
//
// A table either owns an independent schema or shares the schema of a column
// of subtables with every other subtable of that column. Tables at the top of
// an accessor tree are freestanding (New, Create) or belong to a group through a
// Container. Subtables are obtained from their parent with GetSubtable and may
// be degenerate, meaning no storage exists for them until the first write.
//
// Every mutating call either completes or, if the allocator fails, leaves the
// table and everything beneath it detached.
package table

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/schema"
	"github.com/dolthub/tightstore/store/array"
	"github.com/dolthub/tightstore/store/d"
)

// Container is the owner of a set of group level tables. Link columns can only
// connect tables of the same container, and refer to their target by its
// index in the container.
type Container interface {
	TableCount() int
	TableByIndex(ndx int) (*Table, error)
	// IndexOf returns the index of t in the container, or -1.
	IndexOf(t *Table) int
}

type state uint8

const (
	unattached state = iota
	attached
	detached
)

func (s state) String() string {
	switch s {
	case unattached:
		return "unattached"
	case attached:
		return "attached"
	}
	return "detached"
}

// schemaBinding is how a table reaches its spec. Root tables own theirs,
// subtables hold a reference on the spec shared by their column.
type schemaBinding interface {
	spec() *schema.Spec
	shared() bool
	release()
}

type ownedSchema struct {
	s *schema.Spec
}

func (o ownedSchema) spec() *schema.Spec {
	return o.s
}

func (o ownedSchema) shared() bool {
	return false
}

func (o ownedSchema) release() {}

type sharedSchema struct {
	h *schema.Handle
	s *schema.Spec
}

func newSharedSchema(h *schema.Handle) sharedSchema {
	return sharedSchema{h: h, s: h.Acquire()}
}

func (ss sharedSchema) spec() *schema.Spec {
	return ss.s
}

func (ss sharedSchema) shared() bool {
	return true
}

func (ss sharedSchema) release() {
	ss.h.Release()
}

// SearchIndex is the hook through which a search index follows a column.
type SearchIndex interface {
	FindFirst(v interface{}) int
	FindAll(v interface{}) []int
	Count(v interface{}) int
	// Invalidate tells the index that the column has changed.
	Invalidate()
}

// Table is the accessor of one table.
type Table struct {
	alloc array.Allocator
	state state

	// top is the node [spec, columns, backlinks] of a table with an independent
	// schema. Subtables only have a columns node, which is nil while the
	// subtable is degenerate.
	top       *array.Node
	columns   *array.Node
	backlinks *array.Node

	binding schemaBinding
	size    int
	cols    []column.Column
	blCols  []*column.BackLink
	handles map[array.Ref]*schema.Handle

	parent    *Table
	parentCol int
	parentRow int
	container Container

	managed bool
	refs    int

	descriptor *Descriptor
	subtables  []*Table
	rows       []*Row
	views      []*TableView
	linkViews  []*LinkView
	indexes    map[column.Column]SearchIndex

	dirty   bool
	version uint64
}

var _ column.TableBase = (*Table)(nil)

func newTable(alloc array.Allocator) *Table {
	return &Table{
		alloc:   alloc,
		handles: make(map[array.Ref]*schema.Handle),
		indexes: make(map[column.Column]SearchIndex),
	}
}

// New creates a freestanding table with an independent, empty schema. The
// caller is its only owner and frees its storage with Close.
func New(alloc array.Allocator) (*Table, error) {
	ref, err := CreateStorage(alloc)
	if err != nil {
		return nil, err
	}
	t, err := Attach(alloc, ref, nil)
	if err != nil {
		_ = array.DestroyDeep(alloc, ref)
		return nil, err
	}
	return t, nil
}

// Create is New for tables shared through reference counting. The returned
// table holds one reference; the storage is freed by the last Release.
func Create(alloc array.Allocator) (*Table, error) {
	t, err := New(alloc)
	if err != nil {
		return nil, err
	}
	t.managed = true
	t.refs = 1
	return t, nil
}

// Attach returns an accessor for the independent table stored at ref. c is the
// container the table belongs to, nil for freestanding tables.
func Attach(alloc array.Allocator, ref array.Ref, c Container) (*Table, error) {
	t := newTable(alloc)
	t.container = c

	top, err := alloc.Translate(ref)
	if err != nil {
		return nil, err
	}
	t.top = top
	if err := t.loadTop(); err != nil {
		return nil, err
	}
	if err := t.buildColumns(); err != nil {
		return nil, err
	}
	if err := t.buildBacklinks(); err != nil {
		return nil, err
	}
	t.buildIndexes()
	t.state = attached
	t.logger().Debug("attached table accessor")
	return t, nil
}

// loadTop reads the children of the top node.
func (t *Table) loadTop() error {
	specRef := t.top.GetRef(specSlot)
	if t.binding == nil || t.binding.spec().Ref() != specRef {
		s, err := schema.Open(t.alloc, specRef)
		if err != nil {
			return err
		}
		s.Node().SetParent(t.top, specSlot)
		if t.descriptor != nil {
			t.descriptor.detach()
			t.descriptor = nil
		}
		t.binding = ownedSchema{s}
	} else if err := t.binding.spec().Reload(); err != nil {
		return err
	}

	cols, err := t.alloc.Translate(t.top.GetRef(columnsSlot))
	if err != nil {
		return err
	}
	cols.SetParent(t.top, columnsSlot)
	bl, err := t.alloc.Translate(t.top.GetRef(backlinksSlot))
	if err != nil {
		return err
	}
	bl.SetParent(t.top, backlinksSlot)

	t.columns = cols
	t.backlinks = bl
	t.size = rowCount(cols)
	return nil
}

// Ref returns the ref of the top node of a table with an independent schema.
func (t *Table) Ref() array.Ref {
	if t.top == nil {
		return array.NullRef
	}
	return t.top.Ref()
}

// IsAttached returns true while the accessor can be used.
func (t *Table) IsAttached() bool {
	return t.state == attached
}

// HasSharedType returns true for subtables, which share their schema with the
// other subtables of their column.
func (t *Table) HasSharedType() bool {
	return t.binding != nil && t.binding.shared()
}

// IsGroupLevel returns true for tables that belong to a container.
func (t *Table) IsGroupLevel() bool {
	return t.container != nil
}

// GetParentTable returns the table containing this subtable and the column
// index of the subtable in it. It returns nil for tables that are not
// subtables.
func (t *Table) GetParentTable() (*Table, int) {
	if t.parent == nil {
		return nil, -1
	}
	return t.parent, t.parentCol
}

// GetParentRowIndex returns the row of the parent table holding this subtable,
// or -1.
func (t *Table) GetParentRowIndex() int {
	if t.parent == nil {
		return -1
	}
	return t.parentRow
}

// GetIndexInGroup returns the index of the table in its container, or -1.
func (t *Table) GetIndexInGroup() int {
	if t.container == nil {
		return -1
	}
	return t.container.IndexOf(t)
}

// IsDegenerate returns true for subtables without storage.
func (t *Table) IsDegenerate() bool {
	return t.state == attached && t.columns == nil
}

// Version increases on every change to the table or a table beneath it.
func (t *Table) Version() uint64 {
	return t.version
}

// Acquire takes another reference on a reference counted table.
func (t *Table) Acquire() *Table {
	if t.managed {
		t.refs++
	}
	return t
}

// Release drops a reference on a table obtained from Create, GetSubtable or
// Acquire. Dropping the last reference to a subtable detaches it, dropping the
// last reference to a table from Create also frees its storage.
func (t *Table) Release() {
	if !t.managed {
		return
	}
	d.PanicIfFalse(t.refs > 0, "table %s released more often than acquired", t.describe())
	t.refs--
	if t.refs > 0 {
		return
	}

	switch {
	case t.parent != nil:
		t.parent.forgetSubtable(t)
		t.Detach()
	case t.container == nil:
		if err := t.Close(); err != nil {
			t.logger().WithError(err).Warn("failed to free table storage")
		}
	}
}

// Close detaches a freestanding table and frees its storage.
func (t *Table) Close() error {
	if t.parent != nil || t.container != nil {
		return coreerr.ErrInvalidAccessorState.New("freestanding table")
	}
	if t.state != attached {
		return nil
	}
	ref := t.top.Ref()
	t.Detach()
	return array.DestroyDeep(t.alloc, ref)
}

// Detach invalidates the accessor and every accessor beneath it: subtables,
// rows, views, link lists and columns. It is idempotent.
func (t *Table) Detach() {
	if t.state == detached {
		return
	}
	t.state = detached

	for _, st := range t.subtables {
		st.Detach()
	}
	for _, r := range t.rows {
		r.detach()
	}
	for _, v := range t.views {
		v.detach()
	}
	for _, lv := range t.linkViews {
		lv.detach()
	}
	for _, c := range t.cols {
		c.Detach()
	}
	for _, bl := range t.blCols {
		bl.Detach()
	}
	if t.descriptor != nil {
		t.descriptor.detach()
	}
	if t.binding != nil {
		t.binding.release()
	}

	t.subtables, t.rows, t.views, t.linkViews = nil, nil, nil, nil
	t.cols, t.blCols = nil, nil
	t.descriptor = nil
	t.indexes = make(map[column.Column]SearchIndex)
	t.top, t.columns, t.backlinks = nil, nil, nil
	t.size = 0
	t.logger().Debug("detached table accessor")
}

func (t *Table) checkAttached() error {
	if t.state != attached {
		return coreerr.ErrInvalidAccessorState.New("table")
	}
	return nil
}

// mutate runs a mutating operation. An allocation failure detaches the table
// with everything beneath it, any other failure is returned as is. Success
// bumps the version of the table and its ancestors.
func (t *Table) mutate(op string, fn func() error) error {
	if err := t.checkAttached(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if array.ErrAllocationFailure.Is(err) {
			t.logger().WithField("op", op).WithError(err).Warn("allocation failed, detaching table accessor")
			t.Detach()
		}
		return err
	}
	t.bumpVersion()
	t.logger().WithField("op", op).Trace("table mutated")
	return nil
}

func (t *Table) bumpVersion() {
	for tt := t; tt != nil; tt = tt.parent {
		tt.version++
	}
}

func (t *Table) logger() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"table": t.describe(),
		"state": t.state.String(),
	})
}

func (t *Table) describe() string {
	switch {
	case t.parent != nil:
		return fmt.Sprintf("%s/sub[%d,%d]", t.parent.describe(), t.parentCol, t.parentRow)
	case t.container != nil:
		return fmt.Sprintf("#%d", t.container.IndexOf(t))
	}
	return "free"
}

func (t *Table) spec() *schema.Spec {
	return t.binding.spec()
}

func (t *Table) forgetSubtable(st *Table) {
	for i, cached := range t.subtables {
		if cached == st {
			t.subtables = append(t.subtables[:i], t.subtables[i+1:]...)
			return
		}
	}
}
