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

package array

import (
	"fmt"

	"github.com/dolthub/tightstore/store/d"
)

// Ref addresses a Node within an Allocator. The zero Ref is the null ref.
type Ref int64

// NullRef is the ref stored in a slot that does not reference any node.
const NullRef Ref = 0

// IsNull returns true if the ref does not address a node.
func (r Ref) IsNull() bool {
	return r == NullRef
}

// Parent is implemented by anything that holds the ref of a child node in one of
// its slots. A node's parent link is how the accessor layer decides whether a
// node is still reachable.
type Parent interface {
	// ChildRef returns the ref held in slot ndx.
	ChildRef(ndx int) Ref
	// UpdateChildRef replaces the ref held in slot ndx.
	UpdateChildRef(ndx int, ref Ref)
}

// Node is a flat, offset-addressed sequence of elements. Nodes created with
// hasRefs hold child refs (Ref values, NullRef allowed) and take part in
// DestroyDeep and CloneDeep; leaves hold plain values.
type Node struct {
	ref     Ref
	hasRefs bool
	elems   []interface{}

	parent      Parent
	ndxInParent int
}

var _ Parent = (*Node)(nil)

// Ref returns the ref of this node.
func (n *Node) Ref() Ref {
	return n.ref
}

// HasRefs returns true if the elements of this node are child refs.
func (n *Node) HasRefs() bool {
	return n.hasRefs
}

// Size returns the number of elements.
func (n *Node) Size() int {
	return len(n.elems)
}

// Get returns the element at offset i.
func (n *Node) Get(i int) interface{} {
	return n.elems[i]
}

// GetRef returns the element at offset i as a Ref.
func (n *Node) GetRef(i int) Ref {
	if n.elems[i] == nil {
		return NullRef
	}
	return n.elems[i].(Ref)
}

// GetInt returns the element at offset i as an int64.
func (n *Node) GetInt(i int) int64 {
	return n.elems[i].(int64)
}

// Set replaces the element at offset i.
func (n *Node) Set(i int, v interface{}) {
	n.elems[i] = v
}

// Add appends an element.
func (n *Node) Add(v interface{}) {
	n.elems = append(n.elems, v)
}

// Insert inserts an element at offset i, shifting the following elements up.
func (n *Node) Insert(i int, v interface{}) {
	d.PanicIfFalse(i >= 0 && i <= len(n.elems), "insert position %d out of range [0, %d]", i, len(n.elems))
	n.elems = append(n.elems, nil)
	copy(n.elems[i+1:], n.elems[i:])
	n.elems[i] = v
}

// InsertN inserts count copies of v at offset i.
func (n *Node) InsertN(i, count int, v interface{}) {
	d.PanicIfFalse(i >= 0 && i <= len(n.elems), "insert position %d out of range [0, %d]", i, len(n.elems))
	if count <= 0 {
		return
	}
	grown := make([]interface{}, len(n.elems)+count)
	copy(grown, n.elems[:i])
	for j := 0; j < count; j++ {
		grown[i+j] = v
	}
	copy(grown[i+count:], n.elems[i:])
	n.elems = grown
}

// Erase removes the element at offset i, shifting the following elements down.
func (n *Node) Erase(i int) {
	n.EraseRange(i, i+1)
}

// EraseRange removes the elements in [begin, end).
func (n *Node) EraseRange(begin, end int) {
	d.PanicIfFalse(begin >= 0 && begin <= end && end <= len(n.elems), "erase range [%d, %d) out of range [0, %d)", begin, end, len(n.elems))
	copy(n.elems[begin:], n.elems[end:])
	for i := len(n.elems) - (end - begin); i < len(n.elems); i++ {
		n.elems[i] = nil
	}
	n.elems = n.elems[:len(n.elems)-(end-begin)]
}

// Truncate shrinks the node to size elements.
func (n *Node) Truncate(size int) {
	n.EraseRange(size, len(n.elems))
}

// Clear removes every element.
func (n *Node) Clear() {
	n.Truncate(0)
}

// ChildRef implements Parent.
func (n *Node) ChildRef(ndx int) Ref {
	return n.GetRef(ndx)
}

// UpdateChildRef implements Parent.
func (n *Node) UpdateChildRef(ndx int, ref Ref) {
	d.Chk.True(n.hasRefs, "node %d holds no refs", n.ref)
	n.elems[ndx] = ref
}

// SetParent registers the slot that holds this node's ref.
func (n *Node) SetParent(p Parent, ndx int) {
	n.parent = p
	n.ndxInParent = ndx
}

// Parent returns the registered parent, or nil for a root node.
func (n *Node) Parent() Parent {
	return n.parent
}

// IndexInParent returns the slot in the parent that holds this node's ref.
func (n *Node) IndexInParent() int {
	return n.ndxInParent
}

// SetIndexInParent moves this node's parent link to another slot of the same parent.
func (n *Node) SetIndexInParent(ndx int) {
	n.ndxInParent = ndx
}

// UpdateParent writes this node's ref into its parent slot.
func (n *Node) UpdateParent() {
	if n.parent != nil {
		n.parent.UpdateChildRef(n.ndxInParent, n.ref)
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("node(ref=%d, refs=%t, size=%d)", n.ref, n.hasRefs, len(n.elems))
}
