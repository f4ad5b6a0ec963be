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

import "time"

// ColumnType is the physical column representation recorded for a column. It
// differs from DataType only for columns that are never visible in a schema,
// such as back-link columns.
type ColumnType int

const (
	ColInt         = ColumnType(Int)
	ColBool        = ColumnType(Bool)
	ColString      = ColumnType(String)
	ColBinary      = ColumnType(Binary)
	ColTable       = ColumnType(Table)
	ColMixed       = ColumnType(Mixed)
	ColOldDateTime = ColumnType(OldDateTime)
	ColTimestamp   = ColumnType(Timestamp)
	ColFloat       = ColumnType(Float)
	ColDouble      = ColumnType(Double)
	ColLink        = ColumnType(Link)
	ColLinkList    = ColumnType(LinkList)
	ColBackLink    ColumnType = 14
)

// ColumnKind selects the column accessor implementation.
type ColumnKind uint8

const (
	IntegerColumn ColumnKind = iota
	IntNullColumn
	FloatColumn
	DoubleColumn
	StringColumn
	BinaryColumn
	TimestampColumn
	MixedColumn
	LinkColumn
	LinkListColumn
	SubtableColumn
	BackLinkColumn
)

// LeafKind selects the leaf encoding a column stores its cells in.
type LeafKind uint8

const (
	IntegerLeaf LeafKind = iota
	IntNullLeaf
	BoolLeaf
	BoolNullLeaf
	FloatLeaf
	DoubleLeaf
	StringLeaf
	BinaryLeaf
	TimestampLeaf
	KeyLeaf
	RefLeaf
	MixedLeaf
)

// HasRefs returns true for leaves whose cells are refs to nested nodes.
func (lk LeafKind) HasRefs() bool {
	return lk == RefLeaf
}

// Traits describes how a value type is represented and aggregated.
type Traits struct {
	ID         DataType
	ColumnID   ColumnType
	Column     ColumnKind
	Leaf       LeafKind
	Nullable   bool
	SumType    DataType
	MinMaxType DataType
	// Orderable is true if the type can be the last element of a sort chain.
	Orderable bool
	// Aggregatable is true if sum and average are defined for the type.
	Aggregatable bool
}

type traitsKey struct {
	dt       DataType
	nullable bool
}

var registry = map[traitsKey]Traits{}

// derive copies base and applies the overrides. Nullable variants and the types
// backed by integer storage are derived this way, so they share the column, sum
// and min/max types of their base while keeping their own leaf and identity.
func derive(base Traits, override func(t *Traits)) Traits {
	t := base
	override(&t)
	return t
}

func register(t Traits) Traits {
	registry[traitsKey{t.ID, t.Nullable}] = t
	return t
}

var (
	intTraits = register(Traits{
		ID: Int, ColumnID: ColInt, Column: IntegerColumn, Leaf: IntegerLeaf,
		SumType: Int, MinMaxType: Int, Orderable: true, Aggregatable: true,
	})
	intNullTraits = register(derive(intTraits, func(t *Traits) {
		t.Column = IntNullColumn
		t.Leaf = IntNullLeaf
		t.Nullable = true
	}))
	_ = register(derive(intTraits, func(t *Traits) {
		t.ID = Bool
		t.ColumnID = ColBool
		t.Leaf = BoolLeaf
		t.Aggregatable = false
	}))
	_ = register(derive(intNullTraits, func(t *Traits) {
		t.ID = Bool
		t.ColumnID = ColBool
		t.Leaf = BoolNullLeaf
		t.Aggregatable = false
	}))
	_ = register(derive(intTraits, func(t *Traits) {
		t.ID = OldDateTime
		t.ColumnID = ColOldDateTime
		t.SumType = OldDateTime
		t.MinMaxType = OldDateTime
		t.Aggregatable = false
	}))
	_ = register(derive(intNullTraits, func(t *Traits) {
		t.ID = OldDateTime
		t.ColumnID = ColOldDateTime
		t.SumType = OldDateTime
		t.MinMaxType = OldDateTime
		t.Aggregatable = false
	}))
	_ = register(Traits{
		ID: Float, ColumnID: ColFloat, Column: FloatColumn, Leaf: FloatLeaf,
		SumType: Double, MinMaxType: Float, Orderable: true, Aggregatable: true,
	})
	_ = register(Traits{
		ID: Double, ColumnID: ColDouble, Column: DoubleColumn, Leaf: DoubleLeaf,
		SumType: Double, MinMaxType: Double, Orderable: true, Aggregatable: true,
	})
	_ = register(Traits{
		ID: String, ColumnID: ColString, Column: StringColumn, Leaf: StringLeaf,
		SumType: String, MinMaxType: String, Orderable: true,
	})
	_ = register(Traits{
		ID: Binary, ColumnID: ColBinary, Column: BinaryColumn, Leaf: BinaryLeaf,
		SumType: Binary, MinMaxType: Binary,
	})
	_ = register(Traits{
		ID: Timestamp, ColumnID: ColTimestamp, Column: TimestampColumn, Leaf: TimestampLeaf,
		SumType: Timestamp, MinMaxType: Timestamp, Orderable: true,
	})
	_ = register(Traits{
		ID: Link, ColumnID: ColLink, Column: LinkColumn, Leaf: KeyLeaf, Nullable: true,
		SumType: Link, MinMaxType: Link,
	})
	_ = register(Traits{
		ID: LinkList, ColumnID: ColLinkList, Column: LinkListColumn, Leaf: RefLeaf,
		SumType: LinkList, MinMaxType: LinkList,
	})
	_ = register(Traits{
		ID: Table, ColumnID: ColTable, Column: SubtableColumn, Leaf: RefLeaf,
		SumType: Table, MinMaxType: Table,
	})
	_ = register(Traits{
		ID: Mixed, ColumnID: ColMixed, Column: MixedColumn, Leaf: MixedLeaf,
		SumType: Mixed, MinMaxType: Mixed,
	})
)

// BackLinkTraits describes the hidden back-link columns kept by link targets.
var BackLinkTraits = Traits{
	ColumnID: ColBackLink, Column: BackLinkColumn, Leaf: RefLeaf,
}

// Lookup returns the traits of a column of type dt. Types without a distinct
// nullable encoding (floating point, string, binary, timestamp) carry
// nullability on the shared traits. Links are always nullable.
func Lookup(dt DataType, nullable bool) (Traits, error) {
	if t, ok := registry[traitsKey{dt, nullable}]; ok {
		return t, nil
	}
	if t, ok := registry[traitsKey{dt, !nullable}]; ok {
		if nullable {
			switch dt {
			case Table, LinkList, Mixed:
				return Traits{}, ErrUnsupportedNullability.New(dt)
			}
			t.Nullable = true
		}
		return t, nil
	}
	return Traits{}, ErrUnknownDataType.New(int(dt))
}

// MustLookup is Lookup for types known to be valid.
func MustLookup(dt DataType, nullable bool) Traits {
	t, err := Lookup(dt, nullable)
	if err != nil {
		panic(err)
	}
	return t
}

// Value is the set of Go types that carry scalar cell values.
type Value interface {
	int64 | bool | float32 | float64 | string | []byte | time.Time | DateTime
}

// TraitsOf returns the traits of the column type that stores values of type T.
func TraitsOf[T Value](nullable bool) Traits {
	var zero T
	var dt DataType
	switch any(zero).(type) {
	case int64:
		dt = Int
	case bool:
		dt = Bool
	case float32:
		dt = Float
	case float64:
		dt = Double
	case string:
		dt = String
	case []byte:
		dt = Binary
	case time.Time:
		dt = Timestamp
	case DateTime:
		dt = OldDateTime
	}
	return MustLookup(dt, nullable)
}
