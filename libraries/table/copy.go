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
	"fmt"
	"slices"

	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/schema"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

// Copy returns a freestanding table with the schema and rows of t. Tables with
// link columns cannot be copied out of their group.
func (t *Table) Copy() (*Table, error) {
	if err := t.checkAttached(); err != nil {
		return nil, err
	}
	if len(t.linkColumns()) > 0 {
		return nil, coreerr.ErrCrossTableLink.New()
	}

	top, err := t.alloc.Alloc(true, topSlots)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*Table, error) {
		_ = array.DestroyDeep(t.alloc, top.Ref())
		return nil, err
	}

	specRef, err := array.CloneDeep(t.alloc, t.spec().Ref())
	if err != nil {
		return fail(err)
	}
	top.Set(specSlot, specRef)

	var colsRef array.Ref
	if t.columns != nil {
		colsRef, err = array.CloneDeep(t.alloc, t.columns.Ref())
	} else {
		var cols *array.Node
		if cols, err = createColumns(t.alloc, t.spec(), 0); err == nil {
			colsRef = cols.Ref()
		}
	}
	if err != nil {
		return fail(err)
	}
	top.Set(columnsSlot, colsRef)

	bl, err := t.alloc.Alloc(true, 0)
	if err != nil {
		return fail(err)
	}
	top.Set(backlinksSlot, bl.Ref())

	cp, err := Attach(t.alloc, top.Ref(), nil)
	if err != nil {
		return fail(err)
	}
	return cp, nil
}

// Equal returns true if both tables have equal schemas and equal rows.
// Subtables are compared by content.
func (t *Table) Equal(o *Table) (bool, error) {
	if err := t.checkAttached(); err != nil {
		return false, err
	}
	if err := o.checkAttached(); err != nil {
		return false, err
	}
	if !t.spec().Equal(o.spec()) {
		return false, nil
	}
	return equalColumns(t.alloc, o.alloc, t.spec(), t.columns, o.columns)
}

func translateOrNil(alloc array.Allocator, ref array.Ref) (*array.Node, error) {
	if ref.IsNull() {
		return nil, nil
	}
	return alloc.Translate(ref)
}

func sizeOfColumns(cols *array.Node) int {
	if cols == nil {
		return 0
	}
	return rowCount(cols)
}

// equalColumns compares two columns nodes of the schema s. A nil node is a
// degenerate table.
func equalColumns(allocA, allocB array.Allocator, s *schema.Spec, a, b *array.Node) (bool, error) {
	size := sizeOfColumns(a)
	if size != sizeOfColumns(b) {
		return false, nil
	}
	if size == 0 {
		return true, nil
	}

	for i := 0; i < s.ColumnCount(); i++ {
		la, err := allocA.Translate(a.GetRef(1 + i))
		if err != nil {
			return false, err
		}
		lb, err := allocB.Translate(b.GetRef(1 + i))
		if err != nil {
			return false, err
		}

		switch s.ColumnType(i) {
		case typeinfo.Table:
			sub, err := s.Subspec(i)
			if err != nil {
				return false, err
			}
			for row := 0; row < size; row++ {
				na, err := translateOrNil(allocA, la.GetRef(row))
				if err != nil {
					return false, err
				}
				nb, err := translateOrNil(allocB, lb.GetRef(row))
				if err != nil {
					return false, err
				}
				if eq, err := equalColumns(allocA, allocB, sub, na, nb); err != nil || !eq {
					return false, err
				}
			}
		case typeinfo.LinkList:
			for row := 0; row < size; row++ {
				na, err := translateOrNil(allocA, la.GetRef(row))
				if err != nil {
					return false, err
				}
				nb, err := translateOrNil(allocB, lb.GetRef(row))
				if err != nil {
					return false, err
				}
				if sizeOf(na) != sizeOf(nb) {
					return false, nil
				}
				for j := 0; j < sizeOf(na); j++ {
					if na.GetInt(j) != nb.GetInt(j) {
						return false, nil
					}
				}
			}
		default:
			for row := 0; row < size; row++ {
				if !column.ValuesEqual(la.Get(row), lb.Get(row)) {
					return false, nil
				}
			}
		}
	}
	return true, nil
}

// Verify checks that the accessors agree with the storage and that every link
// has a matching back-link record. It checks live subtables too.
func (t *Table) Verify() error {
	if err := t.checkAttached(); err != nil {
		return err
	}
	s := t.spec()
	if s.ColumnCount() != len(t.cols) {
		return ErrInconsistent.New(fmt.Sprintf("%d column accessors for %d columns", len(t.cols), s.ColumnCount()))
	}

	if t.columns == nil {
		if t.size != 0 {
			return ErrInconsistent.New("degenerate table with rows")
		}
	} else {
		if n := rowCount(t.columns); n != t.size {
			return ErrInconsistent.New(fmt.Sprintf("stored row count %d, accessor size %d", n, t.size))
		}
		if t.columns.Size() != 1+len(t.cols) {
			return ErrInconsistent.New(fmt.Sprintf("%d leaves for %d columns", t.columns.Size()-1, len(t.cols)))
		}
		for i, c := range t.cols {
			if c.Size() != t.size {
				return ErrInconsistent.New(fmt.Sprintf("column %d has %d rows, table has %d", i, c.Size(), t.size))
			}
		}
	}
	for _, bl := range t.blCols {
		if bl.Size() != t.size {
			return ErrInconsistent.New(fmt.Sprintf("back-link column has %d rows, table has %d", bl.Size(), t.size))
		}
	}

	for _, col := range t.linkColumns() {
		if err := t.verifyBacklinks(col); err != nil {
			return err
		}
	}
	for _, st := range t.subtables {
		if err := st.Verify(); err != nil {
			return err
		}
	}
	return nil
}

// verifyBacklinks checks that the origins recorded by the target of link
// column col are exactly the rows linking to each target row.
func (t *Table) verifyBacklinks(col int) error {
	target, bl, err := t.linkPeer(col)
	if err != nil {
		return err
	}

	expected := make(map[int][]int)
	for row := 0; row < t.size; row++ {
		switch lc := t.cols[col].(type) {
		case *column.Link:
			if tgt, ok := lc.TargetRow(row); ok {
				expected[tgt] = append(expected[tgt], row)
			}
		case *column.LinkList:
			targets, err := lc.Targets(row)
			if err != nil {
				return err
			}
			for _, tgt := range targets {
				expected[tgt] = append(expected[tgt], row)
			}
		}
	}

	for row := 0; row < target.size; row++ {
		origins, err := bl.Origins(row)
		if err != nil {
			return err
		}
		slices.Sort(origins)
		if !slices.Equal(origins, expected[row]) {
			return ErrInconsistent.New(fmt.Sprintf("back-links of row %d for column %d: have %v, want %v", row, col, origins, expected[row]))
		}
		delete(expected, row)
	}
	if len(expected) > 0 {
		return ErrInconsistent.New(fmt.Sprintf("column %d links past the end of its target", col))
	}
	return nil
}
