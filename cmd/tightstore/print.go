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
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/dolthub/tightstore/libraries/table"
	"github.com/dolthub/tightstore/libraries/typeinfo"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	nullColor   = color.New(color.Faint)
	titleColor  = color.New(color.FgYellow)
)

// printRows writes the given rows of t as an aligned grid. At most maxRows
// rows are written when maxRows is positive.
func printRows(out io.Writer, title string, t *table.Table, rows []int, maxRows int) error {
	titleColor.Fprintf(out, "%s (%s)\n", title, plural(len(rows), "row"))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := make([]string, t.ColumnCount()+1)
	header[0] = "#"
	for col := 0; col < t.ColumnCount(); col++ {
		name, err := t.ColumnName(col)
		if err != nil {
			return err
		}
		dt, _ := t.ColumnType(col)
		header[col+1] = fmt.Sprintf("%s:%s", name, dt)
	}
	for i, h := range header {
		header[i] = headerColor.Sprint(h)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	shown := rows
	if maxRows > 0 && len(rows) > maxRows {
		shown = rows[:maxRows]
	}
	for _, row := range shown {
		cells := make([]string, t.ColumnCount()+1)
		cells[0] = strconv.Itoa(row)
		for col := 0; col < t.ColumnCount(); col++ {
			s, err := formatCell(t, col, row)
			if err != nil {
				return err
			}
			cells[col+1] = s
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if hidden := len(rows) - len(shown); hidden > 0 {
		fmt.Fprintf(out, "... %s not shown\n", plural(hidden, "more row"))
	}
	return nil
}

func formatCell(t *table.Table, col, row int) (string, error) {
	dt, err := t.ColumnType(col)
	if err != nil {
		return "", err
	}

	switch dt {
	case typeinfo.Table:
		n, err := t.GetSubtableSize(col, row)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%s]", plural(n, "row")), nil
	case typeinfo.LinkList:
		lv, err := t.GetLinkList(col, row)
		if err != nil {
			return "", err
		}
		defer lv.Release()
		targets, err := lv.Targets()
		if err != nil {
			return "", err
		}
		parts := make([]string, len(targets))
		for i, target := range targets {
			parts[i] = strconv.Itoa(target)
		}
		return "->[" + strings.Join(parts, ",") + "]", nil
	}

	v, err := t.Get(col, row)
	if err != nil {
		return "", err
	}
	if v == nil {
		return nullColor.Sprint("null"), nil
	}
	if dt == typeinfo.Link {
		return fmt.Sprintf("->%d", v), nil
	}
	return formatValue(v), nil
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return nullColor.Sprint("null")
	case string:
		return strconv.Quote(val)
	case []byte:
		return fmt.Sprintf("0x%x", val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case typeinfo.DateTime:
		return val.Time().Format(time.RFC3339)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case typeinfo.MixedValue:
		return formatValue(val.Value)
	}
	return fmt.Sprint(v)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
