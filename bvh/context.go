package bvh

import "math"

// The default traversal stack capacity. Trees produced by the builder over up
// to 2^24 primitives stay well below this depth.
const DefaultStackCapacity = 64

// A primitive hit found during traversal.
type HitRecord struct {
	// Index of the primitive in the caller's primitive list.
	Primitive uint32

	// Parametric distance along the ray, or the overlap depth for volume
	// queries.
	Distance float32

	// Primitive-specific surface coordinates (barycentrics for triangles).
	U, V float32
}

// Per-query counters. They are reset by TraversalContext.Reset.
type QueryStats struct {
	NodesVisited   uint32
	LeavesVisited  uint32
	PrimitiveTests uint32
	StackOverflows uint32

	// Set when a stack overflow caused part of the tree to be skipped; the
	// hits of the query may be incomplete.
	Truncated bool

	// Set when a primitive test requested the traversal to stop.
	Cancelled bool
}

// The read-only view of the querying context that is passed to primitive
// tests. Tests that cache per-primitive results stamp them with Epoch and
// treat entries with an older stamp as stale.
type QueryContext interface {
	// The epoch of the running query.
	Epoch() uint64

	// The counters of the running query so far.
	Stats() QueryStats
}

// TraversalContext is the mutable workspace of a single querying goroutine.
// Buffers are allocated once and reused by every query; Reset is the only
// per-query cost.
//
// A context must never be used by more than one goroutine at a time. It
// carries no synchronization.
type TraversalContext struct {
	stack []uint32
	entry []float32
	top   int

	hits  []HitRecord
	epoch uint64
	stats QueryStats
}

// Create a traversal context with the given stack capacity and an initial hit
// buffer capacity. A non-positive stack capacity selects
// DefaultStackCapacity.
func NewTraversalContext(stackCapacity, hitCapacity int) *TraversalContext {
	if stackCapacity <= 0 {
		stackCapacity = DefaultStackCapacity
	}
	if hitCapacity < 0 {
		hitCapacity = 0
	}
	return &TraversalContext{
		stack: make([]uint32, stackCapacity),
		entry: make([]float32, stackCapacity),
		hits:  make([]HitRecord, 0, hitCapacity),
	}
}

// Prepare the context for a new query.
func (tc *TraversalContext) Reset() {
	tc.top = 0
	tc.hits = tc.hits[:0]
	tc.stats = QueryStats{}
	tc.epoch++
}

// Push a node index. If the stack is full ErrStackOverflow is returned and
// the stack is left untouched.
func (tc *TraversalContext) PushNode(index uint32) error {
	return tc.pushEntry(index, float32(math.Inf(-1)))
}

// Push a node together with the distance at which the ray enters its bounds.
func (tc *TraversalContext) pushEntry(index uint32, tEntry float32) error {
	if tc.top == len(tc.stack) {
		tc.stats.StackOverflows++
		return ErrStackOverflow
	}
	tc.stack[tc.top] = index
	tc.entry[tc.top] = tEntry
	tc.top++
	return nil
}

// Pop the most recently pushed node index. Callers must check IsEmpty
// first; popping an empty stack returns ErrEmptyStack, or panics when built
// with the bvhdebug tag.
func (tc *TraversalContext) PopNode() (uint32, error) {
	if tc.top == 0 {
		if debugAssertions {
			panic(ErrEmptyStack)
		}
		return 0, ErrEmptyStack
	}
	tc.top--
	return tc.stack[tc.top], nil
}

// Pop the most recently pushed node and its entry distance. The caller must
// check IsEmpty first.
func (tc *TraversalContext) popEntry() (uint32, float32) {
	tc.top--
	return tc.stack[tc.top], tc.entry[tc.top]
}

// Returns true if the stack is empty.
func (tc *TraversalContext) IsEmpty() bool {
	return tc.top == 0
}

// Get the stack capacity.
func (tc *TraversalContext) StackCapacity() int {
	return len(tc.stack)
}

// Append a hit. Hits are kept in discovery order.
func (tc *TraversalContext) RecordHit(hit HitRecord) {
	tc.hits = append(tc.hits, hit)
}

// Get the hits recorded by the last query. The slice is reused by the next
// query; copy it if it must outlive the next Reset.
func (tc *TraversalContext) Hits() []HitRecord {
	return tc.hits
}

// Get the current query epoch. It increases with every Reset so callers can
// stamp per-primitive caches with it and treat stale stamps as invalid
// without clearing them.
func (tc *TraversalContext) Epoch() uint64 {
	return tc.epoch
}

// Get the statistics of the last query.
func (tc *TraversalContext) Stats() QueryStats {
	return tc.stats
}

// Drop all pending nodes.
func (tc *TraversalContext) unwind() {
	tc.top = 0
}
