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

// Package d holds the assertions that guard invariants whose violation means
// the accessor tree and its storage have diverged.
package d

import (
	"fmt"

	"github.com/stretchr/testify/assert"
)

// Chk panics with a formatted message when one of its assertions fails.
var Chk = assert.New(&panicker{})

type panicker struct {
}

func (s panicker) Errorf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// PanicIfFalse panics if b is false. msgAndArgs is a message, optionally a
// format string followed by its arguments.
func PanicIfFalse(b bool, msgAndArgs ...interface{}) {
	Chk.True(b, msgAndArgs...)
}
