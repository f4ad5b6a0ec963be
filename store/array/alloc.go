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
	"github.com/google/btree"
	"gopkg.in/src-d/go-errors.v1"
)

// ErrAllocationFailure is returned when the allocator cannot satisfy a request.
var ErrAllocationFailure = errors.NewKind("allocation failure: %s")

// ErrInvalidRef is returned when a ref does not address a live node.
var ErrInvalidRef = errors.NewKind("ref %d does not address a live node")

// Allocator translates refs to nodes and manages node lifetime.
type Allocator interface {
	// Alloc creates a node with size null elements.
	Alloc(hasRefs bool, size int) (*Node, error)
	// Translate returns the node addressed by ref.
	Translate(ref Ref) (*Node, error)
	// Free releases the node addressed by ref. Children are not touched.
	Free(ref Ref) error
}

const freeListDegree = 8

// MemAllocator is an in-memory Allocator. Freed refs are reused lowest first.
type MemAllocator struct {
	nodes     []*Node
	free      *btree.BTreeG[Ref]
	live      int
	failAfter int
}

var _ Allocator = (*MemAllocator)(nil)

// NewMemAllocator returns an empty allocator.
func NewMemAllocator() *MemAllocator {
	return &MemAllocator{
		// slot 0 is the null ref
		nodes:     []*Node{nil},
		free:      btree.NewG[Ref](freeListDegree, func(a, b Ref) bool { return a < b }),
		failAfter: -1,
	}
}

// FailAfter makes the allocator fail every allocation after the next n
// successful ones. A negative n disables fault injection.
func (ma *MemAllocator) FailAfter(n int) {
	ma.failAfter = n
}

// Live returns the number of allocated nodes.
func (ma *MemAllocator) Live() int {
	return ma.live
}

// Alloc implements Allocator.
func (ma *MemAllocator) Alloc(hasRefs bool, size int) (*Node, error) {
	if ma.failAfter == 0 {
		return nil, ErrAllocationFailure.New("injected failure")
	}
	if ma.failAfter > 0 {
		ma.failAfter--
	}

	var ref Ref
	if r, ok := ma.free.DeleteMin(); ok {
		ref = r
	} else {
		ref = Ref(len(ma.nodes))
		ma.nodes = append(ma.nodes, nil)
	}

	n := &Node{ref: ref, hasRefs: hasRefs, elems: make([]interface{}, size)}
	if hasRefs {
		for i := range n.elems {
			n.elems[i] = NullRef
		}
	}
	ma.nodes[ref] = n
	ma.live++
	return n, nil
}

// Translate implements Allocator.
func (ma *MemAllocator) Translate(ref Ref) (*Node, error) {
	if ref <= NullRef || int(ref) >= len(ma.nodes) || ma.nodes[ref] == nil {
		return nil, ErrInvalidRef.New(ref)
	}
	return ma.nodes[ref], nil
}

// Free implements Allocator.
func (ma *MemAllocator) Free(ref Ref) error {
	if ref <= NullRef || int(ref) >= len(ma.nodes) || ma.nodes[ref] == nil {
		return ErrInvalidRef.New(ref)
	}
	ma.nodes[ref] = nil
	ma.free.ReplaceOrInsert(ref)
	ma.live--
	return nil
}

// DestroyDeep frees the node addressed by ref and every node reachable from it
// through child refs. Nodes with refs may also carry plain values, which are
// skipped.
func DestroyDeep(alloc Allocator, ref Ref) error {
	if ref.IsNull() {
		return nil
	}
	n, err := alloc.Translate(ref)
	if err != nil {
		return err
	}
	if n.HasRefs() {
		for i := 0; i < n.Size(); i++ {
			child, ok := n.Get(i).(Ref)
			if !ok {
				continue
			}
			if err := DestroyDeep(alloc, child); err != nil {
				return err
			}
		}
	}
	return alloc.Free(ref)
}

// CloneDeep copies the node addressed by ref, and everything reachable from it,
// into newly allocated nodes. On failure the partially built copy is freed.
func CloneDeep(alloc Allocator, ref Ref) (Ref, error) {
	if ref.IsNull() {
		return NullRef, nil
	}
	src, err := alloc.Translate(ref)
	if err != nil {
		return NullRef, err
	}
	dst, err := alloc.Alloc(src.HasRefs(), src.Size())
	if err != nil {
		return NullRef, err
	}
	for i := 0; i < src.Size(); i++ {
		srcChild, isRef := src.Get(i).(Ref)
		if !src.HasRefs() || !isRef {
			dst.Set(i, cloneElem(src.Get(i)))
			continue
		}
		child, err := CloneDeep(alloc, srcChild)
		if err != nil {
			_ = DestroyDeep(alloc, dst.Ref())
			return NullRef, err
		}
		dst.Set(i, child)
	}
	return dst.Ref(), nil
}

func cloneElem(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return append([]byte(nil), b...)
	}
	return v
}
