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
	"github.com/dolthub/tightstore/libraries/schema"
	"github.com/dolthub/tightstore/store/array"
)

// slots of the top node of a table with an independent schema
const (
	specSlot = iota
	columnsSlot
	backlinksSlot
	topSlots
)

// CreateStorage allocates an empty table with an independent schema and
// returns the ref of its top node.
func CreateStorage(alloc array.Allocator) (array.Ref, error) {
	top, err := alloc.Alloc(true, topSlots)
	if err != nil {
		return array.NullRef, err
	}

	fail := func(err error) (array.Ref, error) {
		_ = array.DestroyDeep(alloc, top.Ref())
		return array.NullRef, err
	}

	s, err := schema.Create(alloc)
	if err != nil {
		return fail(err)
	}
	s.Node().SetParent(top, specSlot)
	s.Node().UpdateParent()

	cols, err := createColumns(alloc, s, 0)
	if err != nil {
		return fail(err)
	}
	cols.SetParent(top, columnsSlot)
	cols.UpdateParent()

	bl, err := alloc.Alloc(true, 0)
	if err != nil {
		return fail(err)
	}
	bl.SetParent(top, backlinksSlot)
	bl.UpdateParent()

	return top.Ref(), nil
}

// createColumns allocates a columns node holding a leaf of size default rows
// for every column of s. The first slot of a columns node is the row count.
func createColumns(alloc array.Allocator, s *schema.Spec, size int) (*array.Node, error) {
	n, err := alloc.Alloc(true, 1)
	if err != nil {
		return nil, err
	}
	n.Set(0, int64(size))

	for i := 0; i < s.ColumnCount(); i++ {
		leaf, err := column.CreateLeaf(alloc, s.Traits(i), size)
		if err != nil {
			_ = array.DestroyDeep(alloc, n.Ref())
			return nil, err
		}
		leaf.SetParent(n, n.Size())
		n.Add(leaf.Ref())
	}
	return n, nil
}

func rowCount(cols *array.Node) int {
	return int(cols.GetInt(0))
}

func setRowCount(cols *array.Node, size int) {
	cols.Set(0, int64(size))
}

// reparentFrom fixes the parent index of the children of n from slot on.
func reparentFrom(alloc array.Allocator, n *array.Node, from int) {
	for i := from; i < n.Size(); i++ {
		ref, ok := n.Get(i).(array.Ref)
		if !ok || ref.IsNull() {
			continue
		}
		if child, err := alloc.Translate(ref); err == nil {
			child.SetParent(n, i)
		}
	}
}

// forEachColumns calls fn with the columns node of every materialized table
// reached from cols by following the subtable columns in path.
func forEachColumns(alloc array.Allocator, cols *array.Node, path []int, fn func(cols *array.Node) error) error {
	if cols == nil {
		return nil
	}
	if len(path) == 0 {
		return fn(cols)
	}

	leaf, err := alloc.Translate(cols.GetRef(1 + path[0]))
	if err != nil {
		return err
	}
	for row := 0; row < leaf.Size(); row++ {
		ref := leaf.GetRef(row)
		if ref.IsNull() {
			continue
		}
		sub, err := alloc.Translate(ref)
		if err != nil {
			return err
		}
		if err := forEachColumns(alloc, sub, path[1:], fn); err != nil {
			return err
		}
	}
	return nil
}

// specAt follows path through nested specs.
func specAt(s *schema.Spec, path []int) (*schema.Spec, error) {
	for _, col := range path {
		sub, err := s.Subspec(col)
		if err != nil {
			return nil, err
		}
		s = sub
	}
	return s, nil
}
