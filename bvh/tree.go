package bvh

import (
	"fmt"
	"unsafe"

	"github.com/achilleasa/accel/types"
)

// Tree is an immutable BVH: a flat node array with the root at index 0 and a
// permutation of primitive indices grouped so that each leaf owns a
// contiguous slice of it.
//
// A Tree is never modified after NewTree returns, so a single *Tree can be
// shared by any number of goroutines without synchronization. The garbage
// collector keeps it alive for as long as any query still references it.
type Tree struct {
	nodes       []Node
	primIndices []uint32

	// Bounds of the whole tree; rays missing it never touch a node.
	bounds types.AABB

	// Length of the longest root-to-leaf path (root is at depth 0).
	depth int
}

// Create a tree from builder output. The node and index slices are copied
// into tree-owned storage and validated; any violation of the tree
// invariants is reported as an error wrapping ErrMalformedTree.
//
// A tree with no nodes is accepted; all queries against it fail with
// ErrEmptyTree.
func NewTree(bounds types.AABB, nodes []Node, primIndices []uint32) (*Tree, error) {
	if len(nodes) == 0 {
		if len(primIndices) != 0 {
			return nil, fmt.Errorf("%w: %d primitive indices but no nodes", ErrMalformedTree, len(primIndices))
		}
		return &Tree{}, nil
	}

	if !bounds.Valid() {
		return nil, fmt.Errorf("%w: invalid root bounds %v", ErrMalformedTree, bounds)
	}

	depth, err := validate(nodes, primIndices)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		nodes:       alignedNodes(len(nodes)),
		primIndices: make([]uint32, len(primIndices)),
		bounds:      bounds,
		depth:       depth,
	}
	copy(t.nodes, nodes)
	copy(t.primIndices, primIndices)
	return t, nil
}

// Get the root node index.
func (t *Tree) Root() (uint32, error) {
	if t == nil || len(t.nodes) == 0 {
		return 0, ErrEmptyTree
	}
	return 0, nil
}

// Get the node at index i. An out of range index is a builder or traversal
// bug and panics.
func (t *Tree) Node(i uint32) Node {
	t.checkIndex(i)
	return t.nodes[i]
}

// Get the primitive indices owned by leaf node i. The returned slice aliases
// tree storage and must not be modified.
// An empty tree yields ErrEmptyTree; an out of range index panics like Node.
func (t *Tree) PrimitivesForLeaf(i uint32) ([]uint32, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTree
	}
	t.checkIndex(i)

	node := &t.nodes[i]
	if !node.IsLeaf() {
		return nil, fmt.Errorf("%w: node %d is an interior node", ErrInvalidLeaf, i)
	}
	r := node.Range()
	return t.primIndices[r.Offset:r.End():r.End()], nil
}

// Get the number of nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Get the number of primitives referenced by the tree leaves.
func (t *Tree) NumPrimitives() int {
	if t == nil {
		return 0
	}
	return len(t.primIndices)
}

// Get the tree bounds.
func (t *Tree) Bounds() types.AABB {
	if t == nil {
		return types.AABB{}
	}
	return t.bounds
}

// Get the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if t == nil {
		return 0
	}
	return t.depth
}

// Get the smallest traversal stack capacity that can never overflow while
// walking this tree.
func (t *Tree) MinStackCapacity() int {
	return t.Depth() + 1
}

func (t *Tree) checkIndex(i uint32) {
	if int(i) >= t.Len() {
		panic(fmt.Sprintf("bvh: node index %d out of range [0, %d)", i, t.Len()))
	}
}

// Allocate a node slice whose first element starts on a cache line boundary.
// Node contains no pointers so backing it with a byte buffer is safe for the
// garbage collector; the interior pointer keeps the buffer alive.
func alignedNodes(n int) []Node {
	const nodeSize = int(unsafe.Sizeof(Node{}))
	buf := make([]byte, n*nodeSize+CacheLineSize-1)
	base := uintptr(unsafe.Pointer(&buf[0]))
	offset := int((CacheLineSize - base%CacheLineSize) % CacheLineSize)
	return unsafe.Slice((*Node)(unsafe.Pointer(&buf[offset])), n)
}

// Check that every node is reachable from the root exactly once, child
// indices are in range, leaf ranges partition the index array and the index
// array is a permutation. Returns the tree depth.
func validate(nodes []Node, primIndices []uint32) (int, error) {
	type frame struct {
		index uint32
		depth int
	}

	visited := make([]bool, len(nodes))
	covered := make([]bool, len(primIndices))
	maxDepth := 0

	stack := []frame{{0, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[f.index] {
			return 0, fmt.Errorf("%w: node %d is referenced more than once", ErrMalformedTree, f.index)
		}
		visited[f.index] = true
		if f.depth > maxDepth {
			maxDepth = f.depth
		}

		node := &nodes[f.index]
		switch node.kind {
		case Leaf:
			r := node.Range()
			if uint64(r.Offset)+uint64(r.Count) > uint64(len(primIndices)) {
				return 0, fmt.Errorf("%w: leaf %d range [%d, %d) exceeds %d primitive indices", ErrMalformedTree, f.index, r.Offset, uint64(r.Offset)+uint64(r.Count), len(primIndices))
			}
			for slot := r.Offset; slot < r.End(); slot++ {
				if covered[slot] {
					return 0, fmt.Errorf("%w: primitive slot %d is owned by more than one leaf", ErrMalformedTree, slot)
				}
				covered[slot] = true
			}
		case Interior:
			for side, child := range node.payload {
				if int(child) >= len(nodes) {
					return 0, fmt.Errorf("%w: node %d child %d out of range [0, %d)", ErrMalformedTree, f.index, child, len(nodes))
				}
				if !node.Bounds[side].Valid() {
					return 0, fmt.Errorf("%w: node %d has invalid child bounds %v", ErrMalformedTree, f.index, node.Bounds[side])
				}
				stack = append(stack, frame{child, f.depth + 1})
			}
		default:
			return 0, fmt.Errorf("%w: node %d has unknown kind %s", ErrMalformedTree, f.index, node.kind)
		}
	}

	for index, ok := range visited {
		if !ok {
			return 0, fmt.Errorf("%w: node %d is not reachable from the root", ErrMalformedTree, index)
		}
	}
	for slot, ok := range covered {
		if !ok {
			return 0, fmt.Errorf("%w: primitive slot %d is not owned by any leaf", ErrMalformedTree, slot)
		}
	}

	seen := make([]bool, len(primIndices))
	for slot, prim := range primIndices {
		if int(prim) >= len(primIndices) || seen[prim] {
			return 0, fmt.Errorf("%w: primitive index %d at slot %d breaks the permutation", ErrMalformedTree, prim, slot)
		}
		seen[prim] = true
	}

	return maxDepth, nil
}
