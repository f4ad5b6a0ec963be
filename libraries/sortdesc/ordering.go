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

package sortdesc

import (
	"encoding/binary"
	"math"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/tightstore/libraries/column"
	"github.com/dolthub/tightstore/libraries/coreerr"
	"github.com/dolthub/tightstore/libraries/typeinfo"
)

// StageKind tells sort stages from distinct stages.
type StageKind uint8

const (
	SortStage StageKind = iota
	DistinctStage
)

func (k StageKind) String() string {
	if k == DistinctStage {
		return "distinct"
	}
	return "sort"
}

type stage struct {
	kind StageKind
	desc *SortDescriptor
}

// DescriptorOrdering is a sequence of sort and distinct stages applied left to
// right.
type DescriptorOrdering struct {
	stages []stage
}

// NewOrdering returns an empty ordering.
func NewOrdering() *DescriptorOrdering {
	return &DescriptorOrdering{}
}

// AppendSort adds a sort stage. Invalid descriptors are ignored.
func (o *DescriptorOrdering) AppendSort(sd *SortDescriptor) {
	if sd.IsValid() {
		o.stages = append(o.stages, stage{SortStage, sd})
	}
}

// AppendDistinct adds a distinct stage. Invalid descriptors are ignored.
func (o *DescriptorOrdering) AppendDistinct(sd *SortDescriptor) {
	if sd.IsValid() {
		o.stages = append(o.stages, stage{DistinctStage, sd})
	}
}

func (o *DescriptorOrdering) Size() int {
	return len(o.stages)
}

func (o *DescriptorOrdering) IsEmpty() bool {
	return len(o.stages) == 0
}

// At returns the descriptor of stage i.
func (o *DescriptorOrdering) At(i int) (*SortDescriptor, error) {
	if i < 0 || i >= len(o.stages) {
		return nil, coreerr.ErrIndexOutOfRange.New("stage", i, len(o.stages))
	}
	return o.stages[i].desc, nil
}

func (o *DescriptorOrdering) IsSort(i int) bool {
	return o.stages[i].kind == SortStage
}

func (o *DescriptorOrdering) IsDistinct(i int) bool {
	return o.stages[i].kind == DistinctStage
}

// WillApplySort returns true if any stage sorts.
func (o *DescriptorOrdering) WillApplySort() bool {
	for _, s := range o.stages {
		if s.kind == SortStage {
			return true
		}
	}
	return false
}

// Tables returns every table read by any stage, each once.
func (o *DescriptorOrdering) Tables() []column.TableBase {
	var tables []column.TableBase
	for _, s := range o.stages {
		tables = addTables(tables, s.desc.tables...)
	}
	return tables
}

// Clone returns an ordering with the same stages.
func (o *DescriptorOrdering) Clone() *DescriptorOrdering {
	return &DescriptorOrdering{stages: append([]stage(nil), o.stages...)}
}

// Apply runs every stage over rows and returns the result. rows is not
// modified.
func (o *DescriptorOrdering) Apply(rows []int) ([]int, error) {
	result := append([]int(nil), rows...)
	for _, s := range o.stages {
		var err error
		switch s.kind {
		case SortStage:
			err = Sort(result, s.desc)
		case DistinctStage:
			result, err = Distinct(result, s.desc)
		}
		if err != nil {
			return nil, err
		}
		logrus.WithField("stage", s.kind.String()).Tracef("applied ordering stage, %d rows", len(result))
	}
	return result, nil
}

// Sort stably orders rows by the chains of sd. The first chain is the primary
// key and later chains break ties; rows equal on every chain keep their
// relative order.
func Sort(rows []int, sd *SortDescriptor) error {
	if err := sd.validate(); err != nil {
		return err
	}

	type entry struct {
		row  int
		keys []interface{}
	}
	keys := sd.keys(rows)
	entries := make([]entry, len(rows))
	for i, row := range rows {
		entries[i] = entry{row, keys[i]}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		for i := range sd.chains {
			c := column.CompareValues(a.keys[i], b.keys[i])
			if c == 0 {
				continue
			}
			if !sd.IsAscending(i) {
				return -c
			}
			return c
		}
		return 0
	})

	for i := range entries {
		rows[i] = entries[i].row
	}
	return nil
}

// Distinct drops every row whose key over the chains of sd equals the key of an
// earlier row. The surviving rows keep their order.
func Distinct(rows []int, sd *SortDescriptor) ([]int, error) {
	if err := sd.validate(); err != nil {
		return nil, err
	}

	keys := sd.keys(rows)
	buckets := make(map[uint64][]int)
	result := rows[:0:0]
	for i, row := range rows {
		h := hashKey(keys[i])
		dup := false
		for _, j := range buckets[h] {
			if keysEqual(keys[i], keys[j]) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		buckets[h] = append(buckets[h], i)
		result = append(result, row)
	}
	return result, nil
}

func keysEqual(a, b []interface{}) bool {
	for i := range a {
		if !column.ValuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// hashKey hashes a composite key. Values that compare equal hash equally: NaNs
// are canonicalized and all nulls share one tag.
func hashKey(key []interface{}) uint64 {
	d := xxhash.New()
	var buf [8]byte
	writeUint := func(tag byte, v uint64) {
		_, _ = d.Write([]byte{tag})
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	writeFloat := func(f float64) {
		if math.IsNaN(f) {
			writeUint('n', 0)
			return
		}
		if f == 0 {
			f = 0
		}
		writeUint('f', math.Float64bits(f))
	}

	for _, v := range key {
		writeValue(d, v, writeUint, writeFloat)
	}
	return d.Sum64()
}

func writeValue(d *xxhash.Digest, v interface{}, writeUint func(byte, uint64), writeFloat func(float64)) {
	switch val := v.(type) {
	case nil:
		writeUint(0, 0)
	case int64:
		writeUint('i', uint64(val))
	case bool:
		if val {
			writeUint('b', 1)
		} else {
			writeUint('b', 0)
		}
	case float32:
		writeFloat(float64(val))
	case float64:
		writeFloat(val)
	case string:
		writeUint('s', uint64(len(val)))
		_, _ = d.WriteString(val)
	case []byte:
		writeUint('y', uint64(len(val)))
		_, _ = d.Write(val)
	case time.Time:
		writeUint('t', uint64(val.UnixNano()))
	case typeinfo.DateTime:
		writeUint('d', uint64(val))
	case typeinfo.MixedValue:
		writeUint('m', uint64(val.Type))
		writeValue(d, val.Value, writeUint, writeFloat)
	}
}
