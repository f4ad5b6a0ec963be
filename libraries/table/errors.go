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

import "gopkg.in/src-d/go-errors.v1"

// ErrLinkTargetRequired is returned when a link column is added without a target table.
var ErrLinkTargetRequired = errors.NewKind("column `%s` of type %s needs a target table")

// ErrTableHasNoColumns is returned when rows are added to a table without columns.
var ErrTableHasNoColumns = errors.NewKind("cannot add rows to a table without columns")

// ErrColumnNotNullable is returned when null is stored in a column that does not allow it.
var ErrColumnNotNullable = errors.NewKind("column %d is not nullable")

// ErrSchemaMismatch is returned when two tables that must have the same schema do not.
var ErrSchemaMismatch = errors.NewKind("schema mismatch: %s")

// ErrInconsistent is returned by Verify when the accessors and the storage disagree.
var ErrInconsistent = errors.NewKind("table is inconsistent: %s")

// ErrUnsupportedValue is returned when a value cannot be stored in a column.
var ErrUnsupportedValue = errors.NewKind("cannot store a value of type %T in column %d of type %s")
