package bvh

import (
	"fmt"

	"github.com/achilleasa/accel/types"
)

// The size of a cache line; Node is laid out to fill exactly one.
const CacheLineSize = 64

type NodeKind uint32

const (
	Interior NodeKind = iota
	Leaf
)

func (k NodeKind) String() string {
	switch k {
	case Interior:
		return "interior"
	case Leaf:
		return "leaf"
	}
	return fmt.Sprintf("NodeKind(%d)", uint32(k))
}

// Child node indices of an interior node.
type ChildRefs struct {
	Left  uint32
	Right uint32
}

// A contiguous range of the tree's primitive index array owned by a leaf.
type LeafRange struct {
	Offset uint32
	Count  uint32
}

// End returns the exclusive end offset of the range.
func (r LeafRange) End() uint32 {
	return r.Offset + r.Count
}

// A BVH node is a tagged variant: Kind selects whether the payload words hold
// child node indices (Interior) or a primitive range (Leaf). The payload is
// only reachable through the kind-checked accessors Children and Range.
//
// For interior nodes Bounds holds the boxes of the left and right child so
// both children can be tested without touching their cache lines. Leaf nodes
// leave Bounds zeroed.
//
// Layout (64 bytes):
//   - [0:48)  left/right child AABB (12 x float32)
//   - [48:52) kind
//   - [52:60) payload
//   - [60:64) padding
type Node struct {
	Bounds [2]types.AABB

	kind    NodeKind
	payload [2]uint32
	_       uint32
}

// Create an interior node pointing to two child nodes.
func NewInteriorNode(leftBox, rightBox types.AABB, left, right uint32) Node {
	return Node{
		Bounds:  [2]types.AABB{leftBox, rightBox},
		kind:    Interior,
		payload: [2]uint32{left, right},
	}
}

// Create a leaf node owning count primitive indices starting at offset.
func NewLeafNode(offset, count uint32) Node {
	return Node{
		kind:    Leaf,
		payload: [2]uint32{offset, count},
	}
}

// Get the node kind.
func (n Node) Kind() NodeKind {
	return n.kind
}

// Returns true if this is a leaf node.
func (n Node) IsLeaf() bool {
	return n.kind == Leaf
}

// Get the child node indices. Calling Children on a leaf is a contract
// violation and panics.
func (n Node) Children() ChildRefs {
	if n.kind != Interior {
		panic("bvh: Children called on a leaf node")
	}
	return ChildRefs{Left: n.payload[0], Right: n.payload[1]}
}

// Get the primitive range of a leaf. Calling Range on an interior node is a
// contract violation and panics.
func (n Node) Range() LeafRange {
	if n.kind != Leaf {
		panic("bvh: Range called on an interior node")
	}
	return LeafRange{Offset: n.payload[0], Count: n.payload[1]}
}

func (n Node) String() string {
	if n.kind == Leaf {
		r := n.Range()
		return fmt.Sprintf("leaf{offset: %d, count: %d}", r.Offset, r.Count)
	}
	c := n.Children()
	return fmt.Sprintf("interior{left: %d %v, right: %d %v}", c.Left, n.Bounds[0], c.Right, n.Bounds[1])
}
