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

package typeinfo

import (
	"fmt"
	"time"
)

// DataType is the logical kind of a column. The numeric values are persisted in
// schema nodes and must not change.
type DataType int

const (
	Int         DataType = 0
	Bool        DataType = 1
	String      DataType = 2
	Binary      DataType = 4
	Table       DataType = 5
	Mixed       DataType = 6
	OldDateTime DataType = 7
	Timestamp   DataType = 8
	Float       DataType = 9
	Double      DataType = 10
	Link        DataType = 12
	LinkList    DataType = 13
)

var dataTypeNames = map[DataType]string{
	Int:         "int",
	Bool:        "bool",
	String:      "string",
	Binary:      "binary",
	Table:       "table",
	Mixed:       "mixed",
	OldDateTime: "datetime",
	Timestamp:   "timestamp",
	Float:       "float",
	Double:      "double",
	Link:        "link",
	LinkList:    "linklist",
}

// String returns the name of the type.
func (dt DataType) String() string {
	if name, ok := dataTypeNames[dt]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(dt))
}

// IsValid returns true if dt names a column type.
func (dt DataType) IsValid() bool {
	_, ok := dataTypeNames[dt]
	return ok
}

// IsLink returns true for the types whose cells reference rows of another table.
func (dt DataType) IsLink() bool {
	return dt == Link || dt == LinkList
}

// DataTypeFromString parses the names returned by DataType.String.
func DataTypeFromString(s string) (DataType, bool) {
	for dt, name := range dataTypeNames {
		if name == s {
			return dt, true
		}
	}
	return 0, false
}

// DateTime is the legacy second-resolution date type stored as an integer.
type DateTime int64

// Time converts the value to a time.Time in UTC.
func (dt DateTime) Time() time.Time {
	return time.Unix(int64(dt), 0).UTC()
}

// MixedValue is the content of a mixed cell: a dynamically typed scalar.
type MixedValue struct {
	Type  DataType
	Value interface{}
}

// NewMixed wraps a Go value as a MixedValue, inferring its type.
func NewMixed(v interface{}) (MixedValue, error) {
	switch val := v.(type) {
	case int:
		return MixedValue{Int, int64(val)}, nil
	case int64:
		return MixedValue{Int, val}, nil
	case bool:
		return MixedValue{Bool, val}, nil
	case float32:
		return MixedValue{Float, val}, nil
	case float64:
		return MixedValue{Double, val}, nil
	case string:
		return MixedValue{String, val}, nil
	case []byte:
		return MixedValue{Binary, val}, nil
	case time.Time:
		return MixedValue{Timestamp, val}, nil
	case DateTime:
		return MixedValue{OldDateTime, val}, nil
	case MixedValue:
		return val, nil
	}
	return MixedValue{}, ErrUnsupportedMixedValue.New(v)
}
