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

// Package index provides the search index tables attach to indexed columns.
package index

import (
	"github.com/google/btree"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/tightstore/libraries/column"
)

const degree = 16

type entry struct {
	value interface{}
	row   int
}

func less(a, b entry) bool {
	if c := column.CompareValues(a.value, b.value); c != 0 {
		return c < 0
	}
	return a.row < b.row
}

// BTreeIndex maps the values of a column to the rows holding them. It is
// rebuilt lazily from the column after the table invalidates it.
type BTreeIndex struct {
	col   column.Base
	tree  *btree.BTreeG[entry]
	valid bool
}

// New returns an index over col. Nothing is read until the first lookup.
func New(col column.Base) *BTreeIndex {
	return &BTreeIndex{col: col}
}

// Column returns the indexed column.
func (ix *BTreeIndex) Column() column.Base {
	return ix.col
}

// Invalidate drops the index content.
func (ix *BTreeIndex) Invalidate() {
	ix.valid = false
	ix.tree = nil
}

// IsValid returns true if the index reflects the column.
func (ix *BTreeIndex) IsValid() bool {
	return ix.valid
}

func (ix *BTreeIndex) ensure() {
	if ix.valid {
		return
	}
	ix.tree = btree.NewG[entry](degree, less)
	if !ix.col.IsDetached() {
		for row := 0; row < ix.col.Size(); row++ {
			ix.tree.ReplaceOrInsert(entry{ix.col.Get(row), row})
		}
	}
	ix.valid = true
	logrus.WithField("column", ix.col.Index()).Tracef("rebuilt search index, %d entries", ix.tree.Len())
}

// Len returns the number of indexed rows.
func (ix *BTreeIndex) Len() int {
	ix.ensure()
	return ix.tree.Len()
}

// FindFirst returns the lowest row holding v, or -1.
func (ix *BTreeIndex) FindFirst(v interface{}) int {
	row := -1
	ix.scan(v, func(r int) bool {
		row = r
		return false
	})
	return row
}

// FindAll returns the rows holding v in ascending order.
func (ix *BTreeIndex) FindAll(v interface{}) []int {
	var rows []int
	ix.scan(v, func(r int) bool {
		rows = append(rows, r)
		return true
	})
	return rows
}

// Count returns the number of rows holding v.
func (ix *BTreeIndex) Count(v interface{}) int {
	n := 0
	ix.scan(v, func(int) bool {
		n++
		return true
	})
	return n
}

func (ix *BTreeIndex) scan(v interface{}, fn func(row int) bool) {
	ix.ensure()
	ix.tree.AscendGreaterOrEqual(entry{v, -1}, func(e entry) bool {
		if !column.ValuesEqual(e.value, v) {
			return false
		}
		return fn(e.row)
	})
}
