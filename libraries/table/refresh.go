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
	"github.com/dolthub/tightstore/libraries/typeinfo"
)

// MarkDirty flags the table and every subtable accessor beneath it as possibly
// out of date with the storage. The container calls it when the storage may
// have been changed by someone else, before RefreshAccessorTree.
func (t *Table) MarkDirty() {
	if t.state != attached {
		return
	}
	t.dirty = true
	for _, st := range t.subtables {
		st.MarkDirty()
	}
}

// IsDirty returns true between MarkDirty and the next RefreshAccessorTree.
func (t *Table) IsDirty() bool {
	return t.dirty
}

// RefreshAccessorTree brings a dirty accessor tree back in line with the
// storage: it re-reads the schema and the column layout, drops accessors whose
// rows or columns are gone and rebinds the rest. It is idempotent; a tree that
// is not dirty is left alone. If the storage cannot be read the table is
// detached and the error returned.
func (t *Table) RefreshAccessorTree() error {
	if err := t.checkAttached(); err != nil {
		return err
	}
	if !t.dirty {
		return nil
	}
	if err := t.refresh(); err != nil {
		t.logger().WithError(err).Warn("refresh failed, detaching table accessor")
		t.Detach()
		return err
	}
	return nil
}

func (t *Table) refresh() error {
	if t.parent == nil {
		if err := t.loadTop(); err != nil {
			return err
		}
		if err := t.buildColumns(); err != nil {
			return err
		}
		if err := t.buildBacklinks(); err != nil {
			return err
		}
	} else {
		p := t.parent
		if t.parentRow >= p.size || t.parentCol >= len(p.cols) || p.cols[t.parentCol].Type() != typeinfo.Table {
			t.Detach()
			return nil
		}
		h, err := p.subspecHandle(t.parentCol)
		if err != nil {
			return err
		}
		if h.Spec() != t.spec() {
			t.binding.release()
			t.binding = newSharedSchema(h)
		}
		if err := t.openCell(); err != nil {
			return err
		}
	}

	s := t.spec()
	for ref, h := range t.handles {
		if s.SubspecIndex(ref) < 0 {
			continue
		}
		if err := h.Spec().Reload(); err != nil {
			return err
		}
	}

	rows := t.rows[:0]
	for _, r := range t.rows {
		if r.row >= t.size {
			r.detach()
			continue
		}
		rows = append(rows, r)
	}
	t.rows = rows

	linkViews := t.linkViews[:0]
	for _, lv := range t.linkViews {
		if lv.row >= t.size || lv.col >= len(t.cols) || t.cols[lv.col].Type() != typeinfo.LinkList {
			lv.detach()
			continue
		}
		linkViews = append(linkViews, lv)
	}
	t.linkViews = linkViews

	subtables := t.subtables[:0]
	for _, st := range t.subtables {
		if err := st.refresh(); err != nil {
			return err
		}
		if st.IsAttached() {
			subtables = append(subtables, st)
		}
	}
	t.subtables = subtables

	t.buildIndexes()
	t.invalidateIndexes()
	t.dirty = false
	t.version++
	t.logger().Trace("refreshed table accessor")
	return nil
}
