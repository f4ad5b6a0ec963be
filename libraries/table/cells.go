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
	"math"
	"time"

	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/typeinfo"
)

// GetValue reads a cell of the column storing values of type T. A null cell
// reads as the zero value.
func GetValue[T typeinfo.Value](t *Table, col, row int) (T, error) {
	var zero T
	if err := t.checkCell(col, row); err != nil {
		return zero, err
	}
	if err := t.checkType(col, typeinfo.TraitsOf[T](false).ID); err != nil {
		return zero, err
	}
	return GetUnchecked[T](t, col, row), nil
}

// GetUnchecked reads a cell without validating the accessor, the indices or
// the column type.
func GetUnchecked[T typeinfo.Value](t *Table, col, row int) T {
	v, _ := t.cols[col].Get(row).(T)
	return v
}

// SetValue writes a cell of the column storing values of type T.
func SetValue[T typeinfo.Value](t *Table, col, row int, v T) error {
	if err := t.checkCell(col, row); err != nil {
		return err
	}
	if err := t.checkType(col, typeinfo.TraitsOf[T](false).ID); err != nil {
		return err
	}
	return t.setCell(col, row, v)
}

// setCell stores a raw value in a scalar column.
func (t *Table) setCell(col, row int, v interface{}) error {
	return t.mutate("set", func() error {
		t.cols[col].(*column.Scalar).Set(row, v)
		if ix, ok := t.indexes[t.cols[col]]; ok {
			ix.Invalidate()
		}
		return nil
	})
}

func (t *Table) GetInt(col, row int) (int64, error) {
	return GetValue[int64](t, col, row)
}

func (t *Table) SetInt(col, row int, v int64) error {
	return SetValue(t, col, row, v)
}

func (t *Table) GetBool(col, row int) (bool, error) {
	return GetValue[bool](t, col, row)
}

func (t *Table) SetBool(col, row int, v bool) error {
	return SetValue(t, col, row, v)
}

func (t *Table) GetFloat(col, row int) (float32, error) {
	return GetValue[float32](t, col, row)
}

func (t *Table) SetFloat(col, row int, v float32) error {
	return SetValue(t, col, row, v)
}

func (t *Table) GetDouble(col, row int) (float64, error) {
	return GetValue[float64](t, col, row)
}

func (t *Table) SetDouble(col, row int, v float64) error {
	return SetValue(t, col, row, v)
}

func (t *Table) GetString(col, row int) (string, error) {
	return GetValue[string](t, col, row)
}

func (t *Table) SetString(col, row int, v string) error {
	return SetValue(t, col, row, v)
}

// GetBinary returns a copy of a binary cell.
func (t *Table) GetBinary(col, row int) ([]byte, error) {
	b, err := GetValue[[]byte](t, col, row)
	if err != nil || b == nil {
		return nil, err
	}
	return append([]byte{}, b...), nil
}

func (t *Table) SetBinary(col, row int, v []byte) error {
	if v == nil {
		v = []byte{}
	}
	return SetValue(t, col, row, v)
}

func (t *Table) GetTimestamp(col, row int) (time.Time, error) {
	return GetValue[time.Time](t, col, row)
}

func (t *Table) SetTimestamp(col, row int, v time.Time) error {
	return SetValue(t, col, row, v)
}

func (t *Table) GetOldDateTime(col, row int) (typeinfo.DateTime, error) {
	return GetValue[typeinfo.DateTime](t, col, row)
}

func (t *Table) SetOldDateTime(col, row int, v typeinfo.DateTime) error {
	return SetValue(t, col, row, v)
}

func (t *Table) GetMixed(col, row int) (typeinfo.MixedValue, error) {
	if err := t.checkCell(col, row); err != nil {
		return typeinfo.MixedValue{}, err
	}
	if err := t.checkType(col, typeinfo.Mixed); err != nil {
		return typeinfo.MixedValue{}, err
	}
	return t.cols[col].Get(row).(typeinfo.MixedValue), nil
}

// SetMixed stores any scalar Go value in a mixed cell.
func (t *Table) SetMixed(col, row int, v interface{}) error {
	if err := t.checkCell(col, row); err != nil {
		return err
	}
	if err := t.checkType(col, typeinfo.Mixed); err != nil {
		return err
	}
	m, err := typeinfo.NewMixed(v)
	if err != nil {
		return ErrUnsupportedValue.New(v, col, typeinfo.Mixed)
	}
	return t.setCell(col, row, m)
}

// IsNull returns true for null cells. Link cells are null when they do not
// link anywhere, other cells only in nullable columns.
func (t *Table) IsNull(col, row int) (bool, error) {
	if err := t.checkCell(col, row); err != nil {
		return false, err
	}
	return t.cols[col].IsNull(row), nil
}

// SetNull stores null in a cell of a nullable column or a link column.
func (t *Table) SetNull(col, row int) error {
	if err := t.checkCell(col, row); err != nil {
		return err
	}
	if t.cols[col].Type() == typeinfo.Link {
		return t.NullifyLink(col, row)
	}
	if !t.cols[col].IsNullable() {
		return ErrColumnNotNullable.New(col)
	}
	return t.setCell(col, row, nil)
}

// Get returns the raw value of a cell: nil for null, the target row for links
// and the ref of the nested node for subtables and link lists.
func (t *Table) Get(col, row int) (interface{}, error) {
	if err := t.checkCell(col, row); err != nil {
		return nil, err
	}
	c := t.cols[col]
	if l, ok := c.(*column.Link); ok {
		if target, ok := l.TargetRow(row); ok {
			return int64(target), nil
		}
		return nil, nil
	}
	return c.Get(row), nil
}

// SetAny converts v to the type of the column and stores it. It accepts the Go
// types the typed setters take plus int, int32 and float conversions between
// the numeric columns. A nil v stores null.
func (t *Table) SetAny(col, row int, v interface{}) error {
	if err := t.checkCell(col, row); err != nil {
		return err
	}
	if v == nil {
		return t.SetNull(col, row)
	}
	switch t.cols[col].Type() {
	case typeinfo.Mixed:
		return t.SetMixed(col, row, v)
	case typeinfo.Table, typeinfo.LinkList:
		return ErrUnsupportedValue.New(v, col, t.cols[col].Type())
	}

	stored, err := t.convert(col, v)
	if err != nil {
		return err
	}
	if t.cols[col].Type() == typeinfo.Link {
		return t.SetLink(col, row, int(stored.(int64)))
	}
	return t.setCell(col, row, stored)
}

// convert turns v into the value a cell of col holds, or the target row for
// link columns. nil stays nil.
func (t *Table) convert(col int, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	dt := t.cols[col].Type()
	bad := ErrUnsupportedValue.New(v, col, dt)

	switch dt {
	case typeinfo.Int, typeinfo.OldDateTime, typeinfo.Link:
		n, ok := toInt64(v)
		if !ok {
			return nil, bad
		}
		if dt == typeinfo.OldDateTime {
			return typeinfo.DateTime(n), nil
		}
		return n, nil
	case typeinfo.Float, typeinfo.Double:
		f, ok := toFloat64(v)
		if !ok {
			return nil, bad
		}
		if dt == typeinfo.Float {
			if !math.IsNaN(f) && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
				return nil, bad
			}
			return float32(f), nil
		}
		return f, nil
	case typeinfo.Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case typeinfo.String:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
	case typeinfo.Binary:
		switch b := v.(type) {
		case []byte:
			return b, nil
		case string:
			return []byte(b), nil
		}
	case typeinfo.Timestamp:
		switch ts := v.(type) {
		case time.Time:
			return ts, nil
		case typeinfo.DateTime:
			return ts.Time(), nil
		}
	case typeinfo.Mixed:
		m, err := typeinfo.NewMixed(v)
		if err != nil {
			return nil, bad
		}
		return m, nil
	}
	return nil, bad
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case typeinfo.DateTime:
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	}
	return 0, false
}
