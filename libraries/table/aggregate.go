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
	"time"

	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/typeinfo"
)

// fold runs the values of c at rows through an accumulator. Nulls and NaNs are
// skipped.
func fold[T, S typeinfo.Numeric](c column.Base, rows func(yield func(row int))) *typeinfo.Accumulator[T, S] {
	acc := typeinfo.NewAccumulator[T, S]()
	rows(func(row int) {
		v, ok := c.Get(row).(T)
		if !ok || isNaN(v) {
			return
		}
		acc.Add(row, v)
	})
	return acc
}

func isNaN[T typeinfo.Numeric](v T) bool {
	return v != v
}

func (t *Table) everyRow(yield func(row int)) {
	for row := 0; row < t.size; row++ {
		yield(row)
	}
}

func rowsOf(rows []int) func(yield func(row int)) {
	return func(yield func(row int)) {
		for _, row := range rows {
			yield(row)
		}
	}
}

func tableFold[T, S typeinfo.Numeric](t *Table, col int, dt typeinfo.DataType) (*typeinfo.Accumulator[T, S], error) {
	if err := t.checkColumn(col); err != nil {
		return nil, err
	}
	if err := t.checkType(col, dt); err != nil {
		return nil, err
	}
	return fold[T, S](t.cols[col], t.everyRow), nil
}

func (t *Table) SumInt(col int) (int64, error) {
	acc, err := tableFold[int64, int64](t, col, typeinfo.Int)
	if err != nil {
		return 0, err
	}
	return acc.Sum(), nil
}

// SumFloat returns the sum of a float column, computed in double precision.
func (t *Table) SumFloat(col int) (float64, error) {
	acc, err := tableFold[float32, float64](t, col, typeinfo.Float)
	if err != nil {
		return 0, err
	}
	return acc.Sum(), nil
}

func (t *Table) SumDouble(col int) (float64, error) {
	acc, err := tableFold[float64, float64](t, col, typeinfo.Double)
	if err != nil {
		return 0, err
	}
	return acc.Sum(), nil
}

// AverageInt returns the mean of the non-null values of col, 0 if there are
// none.
func (t *Table) AverageInt(col int) (float64, error) {
	acc, err := tableFold[int64, int64](t, col, typeinfo.Int)
	if err != nil {
		return 0, err
	}
	return acc.Average(), nil
}

func (t *Table) AverageFloat(col int) (float64, error) {
	acc, err := tableFold[float32, float64](t, col, typeinfo.Float)
	if err != nil {
		return 0, err
	}
	return acc.Average(), nil
}

func (t *Table) AverageDouble(col int) (float64, error) {
	acc, err := tableFold[float64, float64](t, col, typeinfo.Double)
	if err != nil {
		return 0, err
	}
	return acc.Average(), nil
}

// MinimumInt returns the smallest value of col and its row. The row is -1 if
// the column holds no values.
func (t *Table) MinimumInt(col int) (int64, int, error) {
	acc, err := tableFold[int64, int64](t, col, typeinfo.Int)
	if err != nil {
		return 0, -1, err
	}
	v, row := acc.Min()
	return v, row, nil
}

func (t *Table) MaximumInt(col int) (int64, int, error) {
	acc, err := tableFold[int64, int64](t, col, typeinfo.Int)
	if err != nil {
		return 0, -1, err
	}
	v, row := acc.Max()
	return v, row, nil
}

func (t *Table) MinimumFloat(col int) (float32, int, error) {
	acc, err := tableFold[float32, float64](t, col, typeinfo.Float)
	if err != nil {
		return 0, -1, err
	}
	v, row := acc.Min()
	return v, row, nil
}

func (t *Table) MaximumFloat(col int) (float32, int, error) {
	acc, err := tableFold[float32, float64](t, col, typeinfo.Float)
	if err != nil {
		return 0, -1, err
	}
	v, row := acc.Max()
	return v, row, nil
}

func (t *Table) MinimumDouble(col int) (float64, int, error) {
	acc, err := tableFold[float64, float64](t, col, typeinfo.Double)
	if err != nil {
		return 0, -1, err
	}
	v, row := acc.Min()
	return v, row, nil
}

func (t *Table) MaximumDouble(col int) (float64, int, error) {
	acc, err := tableFold[float64, float64](t, col, typeinfo.Double)
	if err != nil {
		return 0, -1, err
	}
	v, row := acc.Max()
	return v, row, nil
}

// extremum returns the smallest (sign -1) or largest (sign 1) non-null value
// of col and its row.
func (t *Table) extremum(col int, dt typeinfo.DataType, sign int) (interface{}, int, error) {
	if err := t.checkColumn(col); err != nil {
		return nil, -1, err
	}
	if err := t.checkType(col, dt); err != nil {
		return nil, -1, err
	}
	c := t.cols[col]
	var best interface{}
	bestRow := -1
	for row := 0; row < t.size; row++ {
		v := c.Get(row)
		if v == nil {
			continue
		}
		if bestRow < 0 || column.CompareValues(v, best)*sign > 0 {
			best, bestRow = v, row
		}
	}
	return best, bestRow, nil
}

func (t *Table) MinimumTimestamp(col int) (time.Time, int, error) {
	v, row, err := t.extremum(col, typeinfo.Timestamp, -1)
	ts, _ := v.(time.Time)
	return ts, row, err
}

func (t *Table) MaximumTimestamp(col int) (time.Time, int, error) {
	v, row, err := t.extremum(col, typeinfo.Timestamp, 1)
	ts, _ := v.(time.Time)
	return ts, row, err
}

func (t *Table) MinimumOldDateTime(col int) (typeinfo.DateTime, int, error) {
	v, row, err := t.extremum(col, typeinfo.OldDateTime, -1)
	dt, _ := v.(typeinfo.DateTime)
	return dt, row, err
}

func (t *Table) MaximumOldDateTime(col int) (typeinfo.DateTime, int, error) {
	v, row, err := t.extremum(col, typeinfo.OldDateTime, 1)
	dt, _ := v.(typeinfo.DateTime)
	return dt, row, err
}

func (t *Table) CountInt(col int, v int64) (int, error) {
	if err := t.checkColumn(col); err != nil {
		return 0, err
	}
	if err := t.checkType(col, typeinfo.Int); err != nil {
		return 0, err
	}
	return t.Count(col, v)
}

func (t *Table) CountString(col int, v string) (int, error) {
	if err := t.checkColumn(col); err != nil {
		return 0, err
	}
	if err := t.checkType(col, typeinfo.String); err != nil {
		return 0, err
	}
	return t.Count(col, v)
}

func (t *Table) CountFloat(col int, v float32) (int, error) {
	if err := t.checkColumn(col); err != nil {
		return 0, err
	}
	if err := t.checkType(col, typeinfo.Float); err != nil {
		return 0, err
	}
	return t.Count(col, v)
}

func (t *Table) CountDouble(col int, v float64) (int, error) {
	if err := t.checkColumn(col); err != nil {
		return 0, err
	}
	if err := t.checkType(col, typeinfo.Double); err != nil {
		return 0, err
	}
	return t.Count(col, v)
}

// reduce applies op to the values of c at rows. It returns nil where the
// result is undefined: the average, minimum or maximum of no values.
func reduce[T, S typeinfo.Numeric](c column.Base, rows []int, op typeinfo.Action) interface{} {
	acc := fold[T, S](c, rowsOf(rows))
	switch op {
	case typeinfo.ActSum:
		return acc.Sum()
	case typeinfo.ActAverage:
		if acc.Count() == 0 {
			return nil
		}
		return acc.Average()
	case typeinfo.ActMin:
		if v, row := acc.Min(); row >= 0 {
			return v
		}
	case typeinfo.ActMax:
		if v, row := acc.Max(); row >= 0 {
			return v
		}
	}
	return nil
}

// Aggregate groups the rows by the string column groupCol and writes one row
// per group to result: the group key and op applied to aggrCol over the rows
// of the group. Groups appear in order of first occurrence and null keys are
// skipped. result must be an empty table with an independent schema and no
// columns.
func (t *Table) Aggregate(groupCol, aggrCol int, op typeinfo.Action, result *Table) error {
	if err := t.checkColumn(groupCol); err != nil {
		return err
	}
	if err := t.checkType(groupCol, typeinfo.String); err != nil {
		return err
	}
	if err := t.checkColumn(aggrCol); err != nil {
		return err
	}
	aggr := t.cols[aggrCol]
	if op != typeinfo.ActCount && !aggr.Traits().Aggregatable {
		return coreerr.ErrTypeMismatch.New(aggrCol, aggr.Type(), typeinfo.Int)
	}
	if err := result.checkAttached(); err != nil {
		return err
	}
	if result.ColumnCount() != 0 {
		return ErrSchemaMismatch.New("aggregate result table must have no columns")
	}

	var keys []string
	groups := make(map[string][]int)
	for row := 0; row < t.size; row++ {
		key, ok := t.cols[groupCol].Get(row).(string)
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], row)
	}

	groupName, _ := t.ColumnName(groupCol)
	aggrName, _ := t.ColumnName(aggrCol)
	if _, err := result.AddColumn(typeinfo.String, groupName, false); err != nil {
		return err
	}
	if aggrName == groupName {
		aggrName = op.String() + "_" + aggrName
	}
	if _, err := result.AddColumn(typeinfo.ResultType(aggr.Traits(), op), aggrName, true); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if _, err := result.AddEmptyRow(len(keys)); err != nil {
		return err
	}

	for i, key := range keys {
		rows := groups[key]
		var v interface{}
		switch {
		case op == typeinfo.ActCount:
			v = int64(len(rows))
		case aggr.Type() == typeinfo.Int:
			v = reduce[int64, int64](aggr, rows, op)
		case aggr.Type() == typeinfo.Float:
			v = reduce[float32, float64](aggr, rows, op)
		default:
			v = reduce[float64, float64](aggr, rows, op)
		}
		if err := result.SetString(0, i, key); err != nil {
			return err
		}
		if err := result.SetAny(1, i, v); err != nil {
			return err
		}
	}
	t.logger().WithField("op", op.String()).Debugf("aggregated %d rows into %d groups", t.size, len(keys))
	return nil
}
