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

package column

import (
	"bytes"
	"math"
	"strings"
	"time"

	"github.com/dolthub/tightstore/libraries/typeinfo"
)

// CompareValues orders two cell values of the same column. Null sorts before
// every value and NaN sorts before every other floating point value. Strings
// and binaries compare bytewise.
func CompareValues(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	switch av := a.(type) {
	case int64:
		return cmpOrdered(av, b.(int64))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float32:
		return cmpFloat(float64(av), float64(b.(float32)))
	case float64:
		return cmpFloat(av, b.(float64))
	case string:
		return strings.Compare(av, b.(string))
	case []byte:
		return bytes.Compare(av, b.([]byte))
	case time.Time:
		return av.Compare(b.(time.Time))
	case typeinfo.DateTime:
		return cmpOrdered(av, b.(typeinfo.DateTime))
	case typeinfo.MixedValue:
		bv := b.(typeinfo.MixedValue)
		if av.Type != bv.Type {
			return cmpOrdered(av.Type, bv.Type)
		}
		return CompareValues(av.Value, bv.Value)
	}
	panic("values of this type are not comparable")
}

// ValuesEqual reports whether two cell values of the same column are equal.
func ValuesEqual(a, b interface{}) bool {
	return CompareValues(a, b) == 0
}

func cmpOrdered[T int64 | typeinfo.DateTime | typeinfo.DataType](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
