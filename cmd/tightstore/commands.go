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

package main

import (
	"fmt"
	"strings"

	"github.com/attic-labs/kingpin"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/group"
	"github.com/dolthub/tightstore/libraries/sortdesc"
	"github.com/dolthub/tightstore/libraries/table"
	"github.com/dolthub/tightstore/libraries/typeinfo"
	"github.com/dolthub/tightstore/store/array"
)

func addFixtureArg(cmd *kingpin.CmdClause) *string {
	return cmd.Arg("fixture", "a yaml or toml fixture file").Required().String()
}

func addLimitFlag(cmd *kingpin.CmdClause) *int {
	return cmd.Flag("limit", "rows to print, 0 uses max_rows from the config and a negative value prints every row").Short('n').Default("0").Int()
}

func (env *commandEnv) limit(flag int) int {
	if flag == 0 {
		return env.cfg.MaxRows()
	}
	return flag
}

func loadGroup(path string) (*group.Group, *array.MemAllocator, error) {
	f, err := LoadFixture(path)
	if err != nil {
		return nil, nil, err
	}
	alloc := array.NewMemAllocator()
	g, err := group.New(alloc)
	if err != nil {
		return nil, nil, err
	}
	if err := f.Build(g); err != nil {
		g.Close()
		return nil, nil, errors.Wrapf(err, "failed to load '%s'", path)
	}
	return g, alloc, nil
}

func allRows(t *table.Table) []int {
	rows := make([]int, t.Size())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func columnIndex(t *table.Table, name string) (int, error) {
	ndx := t.ColumnIndex(name)
	if ndx < 0 {
		return -1, coreerr.ErrColumnNotFound.New(name)
	}
	return ndx, nil
}

// columnChain resolves a dotted path such as "owner.name", where every part
// but the last names a link column, into column indexes.
func columnChain(t *table.Table, path string) ([]int, error) {
	parts := strings.Split(path, ".")
	chain := make([]int, len(parts))
	cur := t
	for i, part := range parts {
		ndx, err := columnIndex(cur, part)
		if err != nil {
			return nil, err
		}
		chain[i] = ndx
		if i == len(parts)-1 {
			break
		}
		if cur, err = cur.GetLinkTarget(ndx); err != nil {
			return nil, errors.Wrapf(err, "column '%s' of '%s'", part, path)
		}
	}
	return chain, nil
}

func columnChains(t *table.Table, paths []string) ([][]int, error) {
	chains := make([][]int, len(paths))
	for i, path := range paths {
		chain, err := columnChain(t, path)
		if err != nil {
			return nil, err
		}
		chains[i] = chain
	}
	return chains, nil
}

func showCommand(app *kingpin.Application) (*kingpin.CmdClause, kingpinHandler) {
	cmd := app.Command("show", "Prints the tables of a fixture")
	fixture := addFixtureArg(cmd)
	name := cmd.Arg("table", "print only this table").String()
	limit := addLimitFlag(cmd)

	return cmd, func(env *commandEnv) error {
		g, _, err := loadGroup(*fixture)
		if err != nil {
			return err
		}
		defer g.Close()

		for i, tblName := range g.TableNames() {
			if *name != "" && *name != tblName {
				continue
			}
			t, err := g.TableByIndex(i)
			if err != nil {
				return err
			}
			if err := printRows(env.out, tblName, t, allRows(t), env.limit(*limit)); err != nil {
				return err
			}
		}
		if *name != "" && !g.HasTable(*name) {
			return group.ErrTableNotFound.New(*name)
		}
		return nil
	}
}

func sortCommand(app *kingpin.Application) (*kingpin.CmdClause, kingpinHandler) {
	cmd := app.Command("sort", "Prints a table through a sorted view, optionally keeping the first row per distinct key")
	fixture := addFixtureArg(cmd)
	name := cmd.Arg("table", "the table to sort").Required().String()
	columns := cmd.Arg("columns", "sort columns in order of precedence; link.column follows a link").Required().Strings()
	desc := cmd.Flag("desc", "sort in descending order").Short('d').Bool()
	distinct := cmd.Flag("distinct", "after sorting keep the first row per value of this column, may be repeated").Strings()
	limit := addLimitFlag(cmd)

	return cmd, func(env *commandEnv) error {
		g, _, err := loadGroup(*fixture)
		if err != nil {
			return err
		}
		defer g.Close()
		t, err := g.GetTable(*name)
		if err != nil {
			return err
		}

		chains, err := columnChains(t, *columns)
		if err != nil {
			return err
		}
		ascending := make([]bool, len(chains))
		for i := range ascending {
			ascending[i] = !*desc
		}
		sd, err := sortdesc.New(t, chains, ascending)
		if err != nil {
			return err
		}
		ordering := sortdesc.NewOrdering()
		ordering.AppendSort(sd)
		if len(*distinct) > 0 {
			distinctChains, err := columnChains(t, *distinct)
			if err != nil {
				return err
			}
			dd, err := sortdesc.NewDistinct(t, distinctChains)
			if err != nil {
				return err
			}
			ordering.AppendDistinct(dd)
		}

		v, err := t.View()
		if err != nil {
			return err
		}
		defer v.Release()
		if err := v.ApplyOrdering(ordering); err != nil {
			return err
		}

		title := fmt.Sprintf("%s by %s", *name, strings.Join(*columns, ", "))
		if *desc {
			title += " desc"
		}
		return printRows(env.out, title, t, v.Rows(), env.limit(*limit))
	}
}

func aggregateCommand(app *kingpin.Application) (*kingpin.CmdClause, kingpinHandler) {
	cmd := app.Command("aggregate", "Groups the rows of a table by a string column and aggregates another column per group")
	fixture := addFixtureArg(cmd)
	name := cmd.Arg("table", "the table to aggregate").Required().String()
	groupBy := cmd.Arg("group-by", "a string column").Required().String()
	column := cmd.Arg("column", "the column to aggregate").Required().String()
	op := cmd.Flag("op", "the aggregate operation").Default("count").Enum("count", "sum", "avg", "min", "max")
	limit := addLimitFlag(cmd)

	return cmd, func(env *commandEnv) error {
		g, alloc, err := loadGroup(*fixture)
		if err != nil {
			return err
		}
		defer g.Close()
		t, err := g.GetTable(*name)
		if err != nil {
			return err
		}
		groupCol, err := columnIndex(t, *groupBy)
		if err != nil {
			return err
		}
		aggrCol, err := columnIndex(t, *column)
		if err != nil {
			return err
		}
		action, _ := typeinfo.ActionFromString(*op)

		result, err := table.New(alloc)
		if err != nil {
			return err
		}
		defer result.Close()
		if err := t.Aggregate(groupCol, aggrCol, action, result); err != nil {
			return err
		}
		title := fmt.Sprintf("%s(%s) by %s", action, *column, *groupBy)
		return printRows(env.out, title, result, allRows(result), env.limit(*limit))
	}
}

func verifyCommand(app *kingpin.Application) (*kingpin.CmdClause, kingpinHandler) {
	cmd := app.Command("verify", "Loads a fixture and checks the consistency of every table")
	fixture := addFixtureArg(cmd)

	return cmd, func(env *commandEnv) error {
		g, alloc, err := loadGroup(*fixture)
		if err != nil {
			return err
		}
		defer g.Close()
		if err := g.Verify(); err != nil {
			return err
		}

		rows := 0
		for i := 0; i < g.Size(); i++ {
			t, err := g.TableByIndex(i)
			if err != nil {
				return err
			}
			rows += t.Size()
		}
		fmt.Fprintf(env.out, "%s %s, %s, %s\n",
			color.GreenString("ok:"),
			plural(g.Size(), "table"),
			plural(rows, "row"),
			plural(alloc.Live(), "node"))
		return nil
	}
}
