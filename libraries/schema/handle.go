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

package schema

import "github.com/dolthub/tightstore/store/d"

// Handle is a reference counted spec shared by every subtable accessor of one
// table column. The last Release calls the release hook, which lets the owner
// drop the handle from its cache.
type Handle struct {
	spec      *Spec
	refs      int
	onRelease func()
}

// NewHandle wraps spec with no references held.
func NewHandle(spec *Spec, onRelease func()) *Handle {
	return &Handle{spec: spec, onRelease: onRelease}
}

// Acquire takes a reference and returns the spec.
func (h *Handle) Acquire() *Spec {
	h.refs++
	return h.spec
}

// Release drops a reference.
func (h *Handle) Release() {
	d.PanicIfFalse(h.refs > 0, "schema handle released more often than acquired")
	h.refs--
	if h.refs == 0 && h.onRelease != nil {
		h.onRelease()
	}
}

// Refs returns the number of references held.
func (h *Handle) Refs() int {
	return h.refs
}

func (h *Handle) Spec() *Spec {
	return h.spec
}
