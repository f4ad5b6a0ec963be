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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dolthub/tightstore/libraries/group"
	"github.com/dolthub/tightstore/libraries/table"
	"github.com/dolthub/tightstore/libraries/typeinfo"
)

// Fixture describes the tables of a group and their rows.
type Fixture struct {
	Tables []TableFixture `yaml:"tables" toml:"tables"`
}

type TableFixture struct {
	Name    string          `yaml:"name" toml:"name"`
	Columns []ColumnFixture `yaml:"columns" toml:"columns"`
	// Rows hold one value per column. Subtable cells are lists of rows, link
	// cells are target row numbers and link list cells are lists of them.
	Rows [][]interface{} `yaml:"rows,omitempty" toml:"rows,omitempty"`
}

type ColumnFixture struct {
	Name     string `yaml:"name" toml:"name"`
	Type     string `yaml:"type" toml:"type"`
	Nullable bool   `yaml:"nullable,omitempty" toml:"nullable,omitempty"`
	Indexed  bool   `yaml:"indexed,omitempty" toml:"indexed,omitempty"`
	// Target names the table of a link or link list column.
	Target string `yaml:"target,omitempty" toml:"target,omitempty"`
	// Columns are the columns of the subtables of a table column.
	Columns []ColumnFixture `yaml:"columns,omitempty" toml:"columns,omitempty"`
}

// LoadFixture reads a yaml (.yaml, .yml) or toml (.toml) fixture.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read fixture '%s'", path)
	}

	var f Fixture
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, errors.Errorf("unknown fixture format '%s'", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse fixture '%s'", path)
	}
	return &f, nil
}

// Build adds the tables of f to g. Tables are created first so that link
// columns can name tables defined after them.
func (f *Fixture) Build(g *group.Group) error {
	tables := make([]*table.Table, len(f.Tables))
	for i, tf := range f.Tables {
		t, err := g.AddTable(tf.Name)
		if err != nil {
			return errors.Wrapf(err, "table '%s'", tf.Name)
		}
		tables[i] = t
	}

	for i, tf := range f.Tables {
		desc, err := tables[i].GetDescriptor()
		if err != nil {
			return err
		}
		if err := addColumns(g, desc, tf.Columns); err != nil {
			return errors.Wrapf(err, "table '%s'", tf.Name)
		}
	}

	// every table gets its rows before any cell is set, so links can point
	// at tables further down
	starts := make([]int, len(f.Tables))
	for i, tf := range f.Tables {
		if len(tf.Rows) == 0 {
			continue
		}
		start, err := tables[i].AddEmptyRow(len(tf.Rows))
		if err != nil {
			return errors.Wrapf(err, "table '%s'", tf.Name)
		}
		starts[i] = start
	}

	for i, tf := range f.Tables {
		if err := setRows(tables[i], starts[i], tf.Rows); err != nil {
			return errors.Wrapf(err, "table '%s'", tf.Name)
		}
		for col, cf := range tf.Columns {
			if !cf.Indexed {
				continue
			}
			if err := tables[i].SetIndex(col); err != nil {
				return errors.Wrapf(err, "index on '%s.%s'", tf.Name, cf.Name)
			}
		}
		logrus.WithField("table", tf.Name).Debugf("loaded %d rows", len(tf.Rows))
	}
	return nil
}

func addColumns(g *group.Group, desc *table.Descriptor, columns []ColumnFixture) error {
	for _, cf := range columns {
		dt, ok := typeinfo.DataTypeFromString(cf.Type)
		if !ok {
			return errors.Errorf("column '%s' has unknown type '%s'", cf.Name, cf.Type)
		}

		if dt.IsLink() {
			target, err := g.GetTable(cf.Target)
			if err != nil {
				return errors.Wrapf(err, "target of column '%s'", cf.Name)
			}
			if _, err := desc.AddColumnLink(dt, cf.Name, target); err != nil {
				return errors.Wrapf(err, "column '%s'", cf.Name)
			}
			continue
		}

		col, err := desc.AddColumn(dt, cf.Name, cf.Nullable)
		if err != nil {
			return errors.Wrapf(err, "column '%s'", cf.Name)
		}
		if dt != typeinfo.Table {
			continue
		}
		sub, err := desc.GetSubdescriptor(col)
		if err != nil {
			return err
		}
		if err := addColumns(g, sub, cf.Columns); err != nil {
			return errors.Wrapf(err, "subtable '%s'", cf.Name)
		}
	}
	return nil
}

func fillRows(t *table.Table, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	start, err := t.AddEmptyRow(len(rows))
	if err != nil {
		return err
	}
	return setRows(t, start, rows)
}

func setRows(t *table.Table, start int, rows [][]interface{}) error {
	for i, values := range rows {
		if len(values) != t.ColumnCount() {
			return errors.Errorf("row %d has %d values, expected %d", i, len(values), t.ColumnCount())
		}
		for col, v := range values {
			if err := setCell(t, col, start+i, v); err != nil {
				name, _ := t.ColumnName(col)
				return errors.Wrapf(err, "row %d, column '%s'", i, name)
			}
		}
	}
	return nil
}

func setCell(t *table.Table, col, row int, v interface{}) error {
	dt, err := t.ColumnType(col)
	if err != nil {
		return err
	}

	switch dt {
	case typeinfo.Table:
		if v == nil {
			return nil
		}
		rows, err := fixtureRows(v)
		if err != nil {
			return err
		}
		st, err := t.GetSubtable(col, row)
		if err != nil {
			return err
		}
		defer st.Release()
		return fillRows(st, rows)

	case typeinfo.LinkList:
		if v == nil {
			return nil
		}
		targets, ok := v.([]interface{})
		if !ok {
			return errors.Errorf("expected a list of rows, got %T", v)
		}
		lv, err := t.GetLinkList(col, row)
		if err != nil {
			return err
		}
		defer lv.Release()
		for _, target := range targets {
			n, ok := fixtureInt(target)
			if !ok {
				return errors.Errorf("expected a row number, got %T", target)
			}
			if err := lv.Add(n); err != nil {
				return err
			}
		}
		return nil

	case typeinfo.Timestamp, typeinfo.OldDateTime:
		if s, ok := v.(string); ok {
			ts, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return err
			}
			v = ts
		}
		if ts, ok := v.(time.Time); ok && dt == typeinfo.OldDateTime {
			v = typeinfo.DateTime(ts.Unix())
		}
	}
	return t.SetAny(col, row, v)
}

// fixtureRows converts a decoded list of lists into rows.
func fixtureRows(v interface{}) ([][]interface{}, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("expected a list of rows, got %T", v)
	}
	rows := make([][]interface{}, len(list))
	for i, r := range list {
		values, ok := r.([]interface{})
		if !ok {
			return nil, errors.Errorf("expected a row, got %T", r)
		}
		rows[i] = values
	}
	return rows, nil
}

func fixtureInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}
