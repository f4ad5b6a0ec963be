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

package group

import "gopkg.in/src-d/go-errors.v1"

// ErrTableNotFound is returned when no table of the group has the given name.
var ErrTableNotFound = errors.NewKind("table `%s` not found")

var ErrTableNameCollision = errors.NewKind("table `%s` already exists")

// ErrTableIsLinkTarget is returned when removing a table other tables link to.
var ErrTableIsLinkTarget = errors.NewKind("cannot remove table `%s`: table `%s` links to it")
