package bvh

import "errors"

var (
	// Returned by query entry points and Root when the tree has no nodes.
	ErrEmptyTree = errors.New("bvh: tree contains no nodes")

	// Returned when a leaf-only operation is applied to an interior node.
	ErrInvalidLeaf = errors.New("bvh: node is not a leaf")

	// Returned by PushNode when the traversal stack is full. Traversal
	// recovers from it by skipping the affected subtree.
	ErrStackOverflow = errors.New("bvh: traversal stack overflow")

	// Returned by PopNode when the traversal stack is empty.
	ErrEmptyStack = errors.New("bvh: pop from empty traversal stack")

	// Wrapped by all tree validation failures.
	ErrMalformedTree = errors.New("bvh: malformed tree")
)
