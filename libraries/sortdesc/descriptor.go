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

// Package sortdesc compiles sort and distinct requests over column chains into
// resolved column references and applies them to row index sequences.
//
// A chain is a list of column indices. Every element but the last must be a
// to-one link column and is followed into its target table; the last element
// must be an orderable column of the table reached that way. Chains are
// resolved once, when the descriptor is built, so renumbering unrelated columns
// does not affect a descriptor. Removing a column used by a chain does: the
// descriptor then fails to apply and has to be rebuilt.
//
// Null values, including rows whose chain passes through a null link, sort
// first in ascending order and last in descending order. For distinct, all
// nulls compare equal.
package sortdesc

import (
	"fmt"

	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/typeinfo"
)

// SortDescriptor is an ordered list of resolved column chains with a sort
// direction per chain. The same type describes distinct stages, for which the
// directions are ignored.
type SortDescriptor struct {
	table     column.TableBase
	chains    [][]column.Base
	ascending []bool
	// tables holds the start table and every table a chain links into
	tables []column.TableBase
}

// New resolves chains of column indices against t. ascending is either empty,
// meaning every chain sorts ascending, or holds one flag per chain.
func New(t column.TableBase, chains [][]int, ascending []bool) (*SortDescriptor, error) {
	if len(ascending) != 0 && len(ascending) != len(chains) {
		return nil, coreerr.ErrInvalidSortChain.New(
			fmt.Sprintf("%d sort directions given for %d chains", len(ascending), len(chains)))
	}

	sd := &SortDescriptor{table: t, tables: []column.TableBase{t}}
	for _, indices := range chains {
		chain, reached, err := resolve(t, indices)
		if err != nil {
			return nil, err
		}
		sd.chains = append(sd.chains, chain)
		sd.tables = addTables(sd.tables, reached...)
	}
	if len(ascending) != 0 {
		sd.ascending = append([]bool(nil), ascending...)
	}
	return sd, nil
}

// NewDistinct resolves chains for a distinct stage.
func NewDistinct(t column.TableBase, chains [][]int) (*SortDescriptor, error) {
	return New(t, chains, nil)
}

// resolve returns the columns of a chain and the tables its links lead to.
func resolve(t column.TableBase, indices []int) ([]column.Base, []column.TableBase, error) {
	if len(indices) == 0 {
		return nil, nil, coreerr.ErrInvalidSortChain.New("empty chain")
	}

	chain := make([]column.Base, 0, len(indices))
	var reached []column.TableBase
	cur := t
	for i, ndx := range indices {
		if ndx < 0 || ndx >= cur.ColumnCount() {
			return nil, nil, coreerr.ErrInvalidSortChain.New(fmt.Sprintf("column %d does not exist", ndx))
		}
		col, err := cur.ColumnBase(ndx)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, col)

		if i == len(indices)-1 {
			if !col.Traits().Orderable {
				return nil, nil, coreerr.ErrInvalidSortChain.New(
					fmt.Sprintf("column %d of type %s cannot be sorted on", ndx, col.Type()))
			}
			break
		}

		link, ok := col.(column.LinkBase)
		if !ok || col.Type() != typeinfo.Link {
			return nil, nil, coreerr.ErrInvalidSortChain.New(
				fmt.Sprintf("column %d of type %s is not a to-one link", ndx, col.Type()))
		}
		cur, err = link.TargetTable()
		if err != nil {
			return nil, nil, err
		}
		reached = append(reached, cur)
	}
	return chain, reached, nil
}

func addTables(tables []column.TableBase, more ...column.TableBase) []column.TableBase {
	for _, t := range more {
		found := false
		for _, existing := range tables {
			if existing == t {
				found = true
				break
			}
		}
		if !found {
			tables = append(tables, t)
		}
	}
	return tables
}

// Table returns the table the chains start from.
func (sd *SortDescriptor) Table() column.TableBase {
	return sd.table
}

// Tables returns the start table followed by every other table the chains
// read values from, each once.
func (sd *SortDescriptor) Tables() []column.TableBase {
	return append([]column.TableBase(nil), sd.tables...)
}

// Size returns the number of chains.
func (sd *SortDescriptor) Size() int {
	return len(sd.chains)
}

// IsValid returns true if the descriptor has at least one chain.
func (sd *SortDescriptor) IsValid() bool {
	return sd != nil && len(sd.chains) > 0
}

// IsAscending returns the direction of chain i.
func (sd *SortDescriptor) IsAscending(i int) bool {
	return len(sd.ascending) == 0 || sd.ascending[i]
}

// Ascending returns one direction flag per chain.
func (sd *SortDescriptor) Ascending() []bool {
	flags := make([]bool, len(sd.chains))
	for i := range flags {
		flags[i] = sd.IsAscending(i)
	}
	return flags
}

// HasCustomOrder returns true if any chain sorts descending.
func (sd *SortDescriptor) HasCustomOrder() bool {
	for _, asc := range sd.ascending {
		if !asc {
			return true
		}
	}
	return false
}

// ColumnIndices returns the chains as the current column indices of their
// columns, which is what a descriptor is rebuilt from in another context.
func (sd *SortDescriptor) ColumnIndices() [][]int {
	indices := make([][]int, len(sd.chains))
	for i, chain := range sd.chains {
		for _, col := range chain {
			indices[i] = append(indices[i], col.Index())
		}
	}
	return indices
}

// MergeWith returns a descriptor whose chains are those of sd followed by
// those of other. Both must start from the same table.
func (sd *SortDescriptor) MergeWith(other *SortDescriptor) (*SortDescriptor, error) {
	if other.table != sd.table {
		return nil, coreerr.ErrInvalidSortChain.New("descriptors start from different tables")
	}

	merged := &SortDescriptor{table: sd.table}
	merged.tables = addTables(append([]column.TableBase(nil), sd.tables...), other.tables...)
	merged.chains = append(append([][]column.Base(nil), sd.chains...), other.chains...)
	if len(sd.ascending) != 0 || len(other.ascending) != 0 {
		merged.ascending = append(sd.Ascending(), other.Ascending()...)
	}
	return merged, nil
}

// validate checks that no column of the descriptor has been detached.
func (sd *SortDescriptor) validate() error {
	for _, chain := range sd.chains {
		for _, col := range chain {
			if col.IsDetached() {
				return coreerr.ErrInvalidAccessorState.New("column")
			}
		}
	}
	return nil
}

// key returns the value chain i reaches from row, nil if a link on the way is
// null.
func (sd *SortDescriptor) key(i, row int) interface{} {
	chain := sd.chains[i]
	for _, col := range chain[:len(chain)-1] {
		target, ok := col.(column.LinkBase).TargetRow(row)
		if !ok {
			return nil
		}
		row = target
	}
	return chain[len(chain)-1].Get(row)
}

// keys evaluates every chain for every row.
func (sd *SortDescriptor) keys(rows []int) [][]interface{} {
	keys := make([][]interface{}, len(rows))
	for r, row := range rows {
		keys[r] = make([]interface{}, len(sd.chains))
		for i := range sd.chains {
			keys[r][i] = sd.key(i, row)
		}
	}
	return keys
}
