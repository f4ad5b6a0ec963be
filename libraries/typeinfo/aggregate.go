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

	"golang.org/x/exp/constraints"
)

// Action is an aggregate operation.
type Action uint8

const (
	ActCount Action = iota
	ActSum
	ActAverage
	ActMin
	ActMax
)

var actionNames = []string{"count", "sum", "avg", "min", "max"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ActionFromString parses the names returned by Action.String.
func ActionFromString(s string) (Action, bool) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), true
		}
	}
	return 0, false
}

// ResultType returns the type produced by applying a to a column with traits t.
// Sums of float columns are promoted to double, averages are always double and
// counts are integers. Everything else is closed under aggregation.
func ResultType(t Traits, a Action) DataType {
	switch a {
	case ActCount:
		return Int
	case ActAverage:
		return Double
	case ActSum:
		return t.SumType
	default:
		return t.MinMaxType
	}
}

// Numeric is the set of Go types numeric columns are read as.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// Accumulator folds the values of a numeric column of type T into sum, count
// and extrema, with sums carried in S.
type Accumulator[T, S Numeric] struct {
	sum            S
	count          int
	min, max       T
	minRow, maxRow int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator[T, S Numeric]() *Accumulator[T, S] {
	return &Accumulator[T, S]{minRow: -1, maxRow: -1}
}

// Add folds the value of row into the accumulator.
func (acc *Accumulator[T, S]) Add(row int, v T) {
	acc.sum += S(v)
	if acc.count == 0 || v < acc.min {
		acc.min, acc.minRow = v, row
	}
	if acc.count == 0 || v > acc.max {
		acc.max, acc.maxRow = v, row
	}
	acc.count++
}

// Count returns the number of values folded in.
func (acc *Accumulator[T, S]) Count() int {
	return acc.count
}

// Sum returns the sum of the values.
func (acc *Accumulator[T, S]) Sum() S {
	return acc.sum
}

// Average returns the mean of the values, or 0 when there are none.
func (acc *Accumulator[T, S]) Average() float64 {
	if acc.count == 0 {
		return 0
	}
	return float64(acc.sum) / float64(acc.count)
}

// Min returns the smallest value and the row it was found in; the row is -1
// when no values were added.
func (acc *Accumulator[T, S]) Min() (T, int) {
	return acc.min, acc.minRow
}

// Max returns the largest value and the row it was found in; the row is -1
// when no values were added.
func (acc *Accumulator[T, S]) Max() (T, int) {
	return acc.max, acc.maxRow
}
