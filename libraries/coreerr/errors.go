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

// Package coreerr holds the error kinds shared by the accessor packages.
// Allocation failures are reported by the allocator itself, see
// array.ErrAllocationFailure.
package coreerr

import "gopkg.in/src-d/go-errors.v1"

// ErrInvalidAccessorState is returned when an operation is attempted on a detached accessor.
var ErrInvalidAccessorState = errors.NewKind("%s accessor is detached")

// ErrTypeMismatch is returned when a typed accessor is used on a column of another stored type.
var ErrTypeMismatch = errors.NewKind("column %d has type %s, not %s")

// ErrSharedSchemaViolation is returned when the schema of a table with a shared schema is modified directly.
var ErrSharedSchemaViolation = errors.NewKind("cannot modify the schema of a table with a shared schema; use the parent descriptor")

// ErrInvalidSortChain is returned when a sort or distinct column chain cannot be resolved.
var ErrInvalidSortChain = errors.NewKind("invalid sort chain: %s")

// ErrIndexOutOfRange is returned when a column or row index is beyond the current bounds.
var ErrIndexOutOfRange = errors.NewKind("%s index %d out of range [0, %d)")

// ErrColumnNameCollision is returned when a column name is already used in a schema.
var ErrColumnNameCollision = errors.NewKind("column name `%s` already exists")

// ErrColumnNotFound is returned when a column cannot be found by name.
var ErrColumnNotFound = errors.NewKind("column `%s` not found")

// ErrCrossTableLink is returned when a link column would connect tables that are not members of one group.
var ErrCrossTableLink = errors.NewKind("link columns require origin and target tables in the same group")

// IsDetached is a convenience for callers that treat every detached-accessor error alike.
func IsDetached(err error) bool {
	return ErrInvalidAccessorState.Is(err)
}
