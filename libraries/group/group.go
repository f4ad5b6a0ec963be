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

// Package group holds named group level tables. A group is the container link
// columns resolve their targets through, and the owner that brings table
// accessors back in line with the storage after someone else changed it.
package group

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/table"
	"github.com/dolthub/tightstore/store/array"
)

// slots of the top node of a group
const (
	namesSlot = iota
	tablesSlot
	topSlots
)

// Group is an accessor for a set of named tables stored under one top node
// [names, tables]. Table accessors are opened on first use and shared.
type Group struct {
	id    uuid.UUID
	alloc array.Allocator

	top    *array.Node
	names  *array.Node
	tables *array.Node

	// accessors parallels tables; nil until the table is first asked for.
	accessors []*table.Table
	closed    bool
}

var _ table.Container = (*Group)(nil)

// New allocates an empty group.
func New(alloc array.Allocator) (*Group, error) {
	top, err := alloc.Alloc(true, topSlots)
	if err != nil {
		return nil, err
	}
	names, err := alloc.Alloc(false, 0)
	if err != nil {
		_ = array.DestroyDeep(alloc, top.Ref())
		return nil, err
	}
	names.SetParent(top, namesSlot)
	names.UpdateParent()

	tables, err := alloc.Alloc(true, 0)
	if err != nil {
		_ = array.DestroyDeep(alloc, top.Ref())
		return nil, err
	}
	tables.SetParent(top, tablesSlot)
	tables.UpdateParent()

	return Open(alloc, top.Ref())
}

// Open returns an accessor for the group stored at ref.
func Open(alloc array.Allocator, ref array.Ref) (*Group, error) {
	g := &Group{id: uuid.New(), alloc: alloc}
	top, err := alloc.Translate(ref)
	if err != nil {
		return nil, err
	}
	g.top = top
	if err := g.load(); err != nil {
		return nil, err
	}
	g.accessors = make([]*table.Table, g.tables.Size())
	g.logger().WithField("tables", g.tables.Size()).Debug("opened group")
	return g, nil
}

func (g *Group) load() error {
	names, err := g.alloc.Translate(g.top.GetRef(namesSlot))
	if err != nil {
		return err
	}
	names.SetParent(g.top, namesSlot)
	tables, err := g.alloc.Translate(g.top.GetRef(tablesSlot))
	if err != nil {
		return err
	}
	tables.SetParent(g.top, tablesSlot)
	g.names, g.tables = names, tables
	return nil
}

// ID identifies this accessor in logs. Two groups opened on the same storage
// have different IDs.
func (g *Group) ID() uuid.UUID {
	return g.id
}

// Ref returns the ref of the top node of the group.
func (g *Group) Ref() array.Ref {
	return g.top.Ref()
}

// Size returns the number of tables in the group.
func (g *Group) Size() int {
	if g.closed {
		return 0
	}
	return g.tables.Size()
}

// TableNames returns the names of the tables in group order.
func (g *Group) TableNames() []string {
	names := make([]string, g.Size())
	for i := range names {
		names[i] = g.nameAt(i)
	}
	return names
}

// HasTable returns true if the group has a table called name.
func (g *Group) HasTable(name string) bool {
	return g.find(name) >= 0
}

// TableCount implements table.Container.
func (g *Group) TableCount() int {
	return g.Size()
}

// TableByIndex implements table.Container.
func (g *Group) TableByIndex(ndx int) (*table.Table, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}
	if ndx < 0 || ndx >= len(g.accessors) {
		return nil, coreerr.ErrIndexOutOfRange.New("table", ndx, len(g.accessors))
	}
	if t := g.accessors[ndx]; t != nil {
		return t, nil
	}

	ref := g.tables.GetRef(ndx)
	t, err := table.Attach(g.alloc, ref, g)
	if err != nil {
		return nil, err
	}
	top, err := g.alloc.Translate(ref)
	if err != nil {
		return nil, err
	}
	top.SetParent(g.tables, ndx)
	g.accessors[ndx] = t
	return t, nil
}

// IndexOf implements table.Container.
func (g *Group) IndexOf(t *table.Table) int {
	for i, acc := range g.accessors {
		if acc == t {
			return i
		}
	}
	return -1
}

// GetTable returns the table called name.
func (g *Group) GetTable(name string) (*table.Table, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}
	ndx := g.find(name)
	if ndx < 0 {
		return nil, ErrTableNotFound.New(name)
	}
	return g.TableByIndex(ndx)
}

// GetTableByIndex returns the table at ndx with its name.
func (g *Group) GetTableByIndex(ndx int) (*table.Table, string, error) {
	t, err := g.TableByIndex(ndx)
	if err != nil {
		return nil, "", err
	}
	return t, g.nameAt(ndx), nil
}

// AddTable appends an empty table called name.
func (g *Group) AddTable(name string) (*table.Table, error) {
	if err := g.checkOpen(); err != nil {
		return nil, err
	}
	if g.find(name) >= 0 {
		return nil, ErrTableNameCollision.New(name)
	}

	ref, err := table.CreateStorage(g.alloc)
	if err != nil {
		return nil, err
	}
	ndx := g.tables.Size()
	g.tables.Add(ref)
	g.names.Add(name)
	g.accessors = append(g.accessors, nil)

	t, err := g.TableByIndex(ndx)
	if err != nil {
		g.tables.Erase(ndx)
		g.names.Erase(ndx)
		g.accessors = g.accessors[:ndx]
		_ = array.DestroyDeep(g.alloc, ref)
		return nil, err
	}
	g.logger().WithField("table", name).Debug("added table")
	return t, nil
}

// GetOrAddTable returns the table called name, adding it if it does not
// exist. The boolean is true if the table was added.
func (g *Group) GetOrAddTable(name string) (*table.Table, bool, error) {
	if g.HasTable(name) {
		t, err := g.GetTable(name)
		return t, false, err
	}
	t, err := g.AddTable(name)
	return t, err == nil, err
}

// RenameTable gives the table called from the name to.
func (g *Group) RenameTable(from, to string) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	ndx := g.find(from)
	if ndx < 0 {
		return ErrTableNotFound.New(from)
	}
	if from == to {
		return nil
	}
	if g.find(to) >= 0 {
		return ErrTableNameCollision.New(to)
	}
	g.names.Set(ndx, to)
	return nil
}

// RemoveTable removes the table called name and frees its storage. Its
// accessor is detached. Tables that other tables link to cannot be removed;
// the link columns of the removed table itself are dropped first so that no
// back-links to it survive. Link targets and back-link origins of the
// remaining tables are renumbered.
func (g *Group) RemoveTable(name string) error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	ndx := g.find(name)
	if ndx < 0 {
		return ErrTableNotFound.New(name)
	}
	t, err := g.TableByIndex(ndx)
	if err != nil {
		return err
	}
	if origins := t.LinkOrigins(); len(origins) > 0 {
		return ErrTableIsLinkTarget.New(name, g.nameAt(origins[0]))
	}

	for col := t.ColumnCount() - 1; col >= 0; col-- {
		dt, err := t.ColumnType(col)
		if err != nil {
			return err
		}
		if !dt.IsLink() {
			continue
		}
		if err := t.RemoveColumn(col); err != nil {
			return err
		}
	}

	ref := t.Ref()
	t.Detach()
	if err := array.DestroyDeep(g.alloc, ref); err != nil {
		return err
	}
	g.tables.Erase(ndx)
	g.names.Erase(ndx)
	g.accessors = append(g.accessors[:ndx], g.accessors[ndx+1:]...)
	for i := ndx; i < g.tables.Size(); i++ {
		if top, err := g.alloc.Translate(g.tables.GetRef(i)); err == nil {
			top.SetParent(g.tables, i)
		}
	}

	// link targets are stored by index, so every table is renumbered, open or not
	for i := range g.accessors {
		other, err := g.TableByIndex(i)
		if err != nil {
			return err
		}
		if err := other.AdjustContainerIndex(ndx); err != nil {
			return err
		}
	}
	g.logger().WithField("table", name).Debug("removed table")
	return nil
}

// AdvanceRead brings the open table accessors in line with the storage after
// it was changed through another accessor. Accessors of tables that are gone
// are detached, the others are refreshed along with their subtables.
func (g *Group) AdvanceRead() error {
	if err := g.checkOpen(); err != nil {
		return err
	}
	top, err := g.alloc.Translate(g.top.Ref())
	if err != nil {
		g.Close()
		return err
	}
	g.top = top
	if err := g.load(); err != nil {
		g.Close()
		return err
	}

	byRef := make(map[array.Ref]*table.Table, len(g.accessors))
	for _, t := range g.accessors {
		if t != nil {
			byRef[t.Ref()] = t
		}
	}
	g.accessors = make([]*table.Table, g.tables.Size())
	for i := range g.accessors {
		ref := g.tables.GetRef(i)
		if t, ok := byRef[ref]; ok {
			g.accessors[i] = t
			delete(byRef, ref)
		}
	}
	for _, t := range byRef {
		t.Detach()
	}

	for _, t := range g.accessors {
		if t != nil {
			t.MarkDirty()
		}
	}
	for _, t := range g.accessors {
		if t == nil {
			continue
		}
		if err := t.RefreshAccessorTree(); err != nil {
			return err
		}
	}
	g.logger().WithField("dropped", len(byRef)).Debug("advanced read")
	return nil
}

// Verify checks every table of the group.
func (g *Group) Verify() error {
	for i := 0; i < g.Size(); i++ {
		t, err := g.TableByIndex(i)
		if err != nil {
			return err
		}
		if err := t.Verify(); err != nil {
			return err
		}
	}
	return nil
}

// Close detaches every table accessor of the group. The storage is left alone.
func (g *Group) Close() {
	if g.closed {
		return
	}
	for _, t := range g.accessors {
		if t != nil {
			t.Detach()
		}
	}
	g.accessors = nil
	g.closed = true
	g.logger().Debug("closed group")
}

func (g *Group) checkOpen() error {
	if g.closed {
		return coreerr.ErrInvalidAccessorState.New("group")
	}
	return nil
}

func (g *Group) find(name string) int {
	for i := 0; i < g.Size(); i++ {
		if g.nameAt(i) == name {
			return i
		}
	}
	return -1
}

func (g *Group) nameAt(ndx int) string {
	return g.names.Get(ndx).(string)
}

func (g *Group) logger() *logrus.Entry {
	return logrus.WithField("group", g.id.String())
}
