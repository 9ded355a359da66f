//go:build bvhdebug

package bvh

import "testing"

func TestPopEmptyStackPanics(t *testing.T) {
	tc := NewTraversalContext(1, 0)
	expectPanic(t, "pop empty stack", func() { tc.PopNode() })
}
