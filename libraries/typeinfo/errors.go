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

import "gopkg.in/src-d/go-errors.v1"

// ErrUnknownDataType is returned for a data type outside the registry.
var ErrUnknownDataType = errors.NewKind("unknown data type %d")

// ErrUnsupportedNullability is returned when a nullable variant of a type that has none is requested.
var ErrUnsupportedNullability = errors.NewKind("%s columns cannot be nullable")

// ErrUnsupportedMixedValue is returned when a Go value has no mixed cell representation.
var ErrUnsupportedMixedValue = errors.NewKind("cannot store a value of type %T in a mixed cell")
