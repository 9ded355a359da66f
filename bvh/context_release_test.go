//go:build !bvhdebug

package bvh

import (
	"errors"
	"testing"
)

func TestPopEmptyStack(t *testing.T) {
	tc := NewTraversalContext(1, 0)
	if _, err := tc.PopNode(); !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("expected ErrEmptyStack; got %v", err)
	}
}
