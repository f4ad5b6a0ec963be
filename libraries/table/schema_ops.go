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
	"github.com/dolthub/tightstore/libraries/schema"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// rootDescriptor returns the descriptor of a table with an independent schema.
func (t *Table) rootDescriptor() (*Descriptor, error) {
	if err := t.checkAttached(); err != nil {
		return nil, err
	}
	if t.HasSharedType() {
		return nil, coreerr.ErrSharedSchemaViolation.New()
	}
	return t.GetDescriptor()
}

// AddColumn appends a column to a table with an independent schema and returns
// its index.
func (t *Table) AddColumn(dt typeinfo.DataType, name string, nullable bool) (int, error) {
	desc, err := t.rootDescriptor()
	if err != nil {
		return 0, err
	}
	return desc.AddColumn(dt, name, nullable)
}

func (t *Table) InsertColumn(ndx int, dt typeinfo.DataType, name string, nullable bool) error {
	desc, err := t.rootDescriptor()
	if err != nil {
		return err
	}
	return desc.InsertColumn(ndx, dt, name, nullable)
}

// AddColumnLink appends a link or link list column targeting target.
func (t *Table) AddColumnLink(dt typeinfo.DataType, name string, target *Table) (int, error) {
	desc, err := t.rootDescriptor()
	if err != nil {
		return 0, err
	}
	return desc.AddColumnLink(dt, name, target)
}

func (t *Table) InsertColumnLink(ndx int, dt typeinfo.DataType, name string, target *Table) error {
	desc, err := t.rootDescriptor()
	if err != nil {
		return err
	}
	return desc.InsertColumnLink(ndx, dt, name, target)
}

func (t *Table) RemoveColumn(ndx int) error {
	desc, err := t.rootDescriptor()
	if err != nil {
		return err
	}
	return desc.RemoveColumn(ndx)
}

func (t *Table) RenameColumn(ndx int, name string) error {
	desc, err := t.rootDescriptor()
	if err != nil {
		return err
	}
	return desc.RenameColumn(ndx, name)
}

// insertColumn inserts a column into the spec reached by path and into every
// table using that spec. t is the table owning the root spec.
func (t *Table) insertColumn(path []int, ndx int, dt typeinfo.DataType, name string, attr schema.Attr, target *Table) error {
	if target != nil {
		if t.container == nil || target.container != t.container {
			return coreerr.ErrCrossTableLink.New()
		}
		if err := target.checkAttached(); err != nil {
			return err
		}
	}

	return t.mutate("insert column", func() error {
		s, err := specAt(t.spec(), path)
		if err != nil {
			return err
		}
		if err := s.InsertColumn(ndx, dt, name, attr); err != nil {
			return err
		}

		traits := s.Traits(ndx)
		err = forEachColumns(t.alloc, t.columns, path, func(cols *array.Node) error {
			leaf, err := column.CreateLeaf(t.alloc, traits, rowCount(cols))
			if err != nil {
				return err
			}
			cols.Insert(1+ndx, leaf.Ref())
			reparentFrom(t.alloc, cols, 1+ndx)
			return nil
		})
		if err != nil {
			return err
		}

		if len(path) == 0 {
			if err := t.shiftBacklinkOrigins(ndx, 1); err != nil {
				return err
			}
		}
		if target != nil {
			me := t.GetIndexInGroup()
			s.SetLinkTarget(ndx, target.GetIndexInGroup())
			entry, err := column.CreateBackLink(t.alloc, me, ndx, target.size)
			if err != nil {
				return err
			}
			entry.SetParent(target.backlinks, target.backlinks.Size())
			target.backlinks.Add(entry.Ref())
			if err := target.buildBacklinks(); err != nil {
				return err
			}
			if target != t {
				target.bumpVersion()
			}
		}

		return t.adjustColumnInserted(path, ndx)
	})
}

// adjustColumnInserted updates the accessors beneath t after a column was
// inserted at ndx of the spec reached by path.
func (t *Table) adjustColumnInserted(path []int, ndx int) error {
	if len(path) > 0 {
		for _, st := range t.subtables {
			if st.parentCol == path[0] {
				if err := st.adjustColumnInserted(path[1:], ndx); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := t.insertColumnAccessor(ndx); err != nil {
		return err
	}
	for _, st := range t.subtables {
		if st.parentCol >= ndx {
			st.parentCol++
		}
	}
	for _, lv := range t.linkViews {
		if lv.col >= ndx {
			lv.col++
		}
	}
	t.buildIndexes()
	if t.parent != nil {
		t.version++
	}
	return nil
}

// removeColumn removes a column from the spec reached by path and from every
// table using that spec.
func (t *Table) removeColumn(path []int, ndx int) error {
	return t.mutate("remove column", func() error {
		s, err := specAt(t.spec(), path)
		if err != nil {
			return err
		}

		if len(path) == 0 {
			if s.ColumnCount() == 1 && t.size > 0 {
				if err := t.clearRows(); err != nil {
					return err
				}
			}
			if s.ColumnType(ndx).IsLink() {
				if err := t.removeLinkBacklinks(ndx); err != nil {
					return err
				}
			}
		}

		err = forEachColumns(t.alloc, t.columns, path, func(cols *array.Node) error {
			if err := array.DestroyDeep(t.alloc, cols.GetRef(1+ndx)); err != nil {
				return err
			}
			cols.Erase(1 + ndx)
			reparentFrom(t.alloc, cols, 1+ndx)
			if cols.Size() == 1 {
				setRowCount(cols, 0)
			}
			return nil
		})
		if err != nil {
			return err
		}
		if err := s.RemoveColumn(ndx); err != nil {
			return err
		}
		if len(path) == 0 {
			if err := t.shiftBacklinkOrigins(ndx+1, -1); err != nil {
				return err
			}
		}
		return t.adjustColumnRemoved(path, ndx)
	})
}

func (t *Table) adjustColumnRemoved(path []int, ndx int) error {
	if len(path) > 0 {
		for _, st := range t.subtables {
			if st.parentCol == path[0] {
				if err := st.adjustColumnRemoved(path[1:], ndx); err != nil {
					return err
				}
			}
		}
		return nil
	}

	subtables := t.subtables[:0]
	for _, st := range t.subtables {
		switch {
		case st.parentCol == ndx:
			st.Detach()
			continue
		case st.parentCol > ndx:
			st.parentCol--
		}
		subtables = append(subtables, st)
	}
	t.subtables = subtables

	linkViews := t.linkViews[:0]
	for _, lv := range t.linkViews {
		switch {
		case lv.col == ndx:
			lv.detach()
			continue
		case lv.col > ndx:
			lv.col--
		}
		linkViews = append(linkViews, lv)
	}
	t.linkViews = linkViews

	if err := t.removeColumnAccessor(ndx); err != nil {
		return err
	}
	if len(t.cols) == 0 && t.size > 0 {
		t.size = 0
		t.adjustCleared()
	}
	if t.parent != nil {
		t.version++
	}
	return nil
}

func (t *Table) renameColumn(path []int, ndx int, name string) error {
	return t.mutate("rename column", func() error {
		s, err := specAt(t.spec(), path)
		if err != nil {
			return err
		}
		return s.RenameColumn(ndx, name)
	})
}

// removeLinkBacklinks drops the back-link column the target of link column col
// keeps for it.
func (t *Table) removeLinkBacklinks(col int) error {
	target, bl, err := t.linkPeer(col)
	if err != nil {
		return err
	}
	ref := bl.Entry().Ref()
	for i := 0; i < target.backlinks.Size(); i++ {
		if target.backlinks.GetRef(i) != ref {
			continue
		}
		if err := array.DestroyDeep(t.alloc, ref); err != nil {
			return err
		}
		target.backlinks.Erase(i)
		reparentFrom(t.alloc, target.backlinks, i)
		break
	}
	if err := target.buildBacklinks(); err != nil {
		return err
	}
	if target != t {
		target.bumpVersion()
	}
	return nil
}

// shiftBacklinkOrigins moves the back-link columns recording link columns of t
// at from or later by delta columns.
func (t *Table) shiftBacklinkOrigins(from, delta int) error {
	if t.container == nil {
		return nil
	}
	me := t.GetIndexInGroup()
	for i := 0; i < t.container.TableCount(); i++ {
		tt, err := t.container.TableByIndex(i)
		if err != nil {
			return err
		}
		for _, bl := range tt.blCols {
			if bl.OriginTable() == me && bl.OriginCol() >= from {
				bl.SetOrigin(me, bl.OriginCol()+delta)
			}
		}
	}
	return nil
}

// AdjustContainerIndex is called by the container after the table at removed
// was taken out of it, so link targets and back-link origins stored by index
// keep addressing the same tables.
func (t *Table) AdjustContainerIndex(removed int) error {
	return t.mutate("adjust container index", func() error {
		s := t.spec()
		for i := 0; i < s.ColumnCount(); i++ {
			if target := s.LinkTarget(i); target > removed {
				s.SetLinkTarget(i, target-1)
			}
		}
		for _, bl := range t.blCols {
			if bl.OriginTable() > removed {
				bl.SetOrigin(bl.OriginTable()-1, bl.OriginCol())
			}
		}
		return nil
	})
}
