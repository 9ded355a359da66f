package bvh

import "github.com/achilleasa/accel/types"

// The outcome of a primitive test, as a bit set.
type Verdict uint8

const (
	// The primitive was not hit.
	Miss Verdict = 0

	// The primitive was hit; the returned HitRecord is valid.
	Hit Verdict = 1 << 0

	// Stop the traversal after this test. May be combined with Hit.
	Stop Verdict = 1 << 1
)

// A primitive-ray test supplied by the geometry layer. It must report hits
// within [tMin, tMax] only. qc is the context running the query; tests may
// read it but must not modify the tree.
type RayTest func(qc QueryContext, prim uint32, ray *types.Ray, tMin, tMax float32) (HitRecord, Verdict)

// A primitive-volume test supplied by the geometry layer.
type VolumeTest func(qc QueryContext, prim uint32, volume *types.AABB) (HitRecord, Verdict)

type rayMode uint8

const (
	nearestHit rayMode = iota
	anyHit
)

// Find the closest primitive hit along the ray. Every hit that shortened the
// ray interval is also recorded in the context, so Hits() is ordered by
// decreasing distance and ends with the returned record.
func (t *Tree) NearestHit(tc *TraversalContext, ray *types.Ray, test RayTest) (HitRecord, bool, error) {
	return t.traceRay(tc, ray, test, nearestHit)
}

// Report whether any primitive is hit along the ray. Traversal stops at the
// first primitive whose test returns Hit; that hit is recorded in the
// context.
func (t *Tree) AnyHit(tc *TraversalContext, ray *types.Ray, test RayTest) (bool, error) {
	_, found, err := t.traceRay(tc, ray, test, anyHit)
	return found, err
}

// Collect all primitives accepted by test whose leaves overlap volume. The
// returned slice is the context hit buffer.
func (t *Tree) AllOverlaps(tc *TraversalContext, volume *types.AABB, test VolumeTest) ([]HitRecord, error) {
	tc.Reset()
	if t == nil || len(t.nodes) == 0 {
		return nil, ErrEmptyTree
	}

	if !t.bounds.Overlaps(*volume) {
		return tc.hits, nil
	}
	t.push(tc, 0, 0)

	for !tc.IsEmpty() {
		index, _ := tc.popEntry()
		node := &t.nodes[index]
		tc.stats.NodesVisited++

		if node.kind == Leaf {
			tc.stats.LeavesVisited++
			r := node.Range()
			for _, prim := range t.primIndices[r.Offset:r.End()] {
				tc.stats.PrimitiveTests++
				hit, verdict := test(tc, prim, volume)
				if verdict&Hit != 0 {
					tc.RecordHit(hit)
				}
				if verdict&Stop != 0 {
					tc.stats.Cancelled = true
					tc.unwind()
					return tc.hits, nil
				}
			}
			continue
		}

		// Push right first so the left subtree is explored first.
		left, right := node.payload[0], node.payload[1]
		if node.Bounds[1].Overlaps(*volume) {
			t.push(tc, right, 0)
		}
		if node.Bounds[0].Overlaps(*volume) {
			t.push(tc, left, 0)
		}
	}

	return tc.hits, nil
}

func (t *Tree) traceRay(tc *TraversalContext, ray *types.Ray, test RayTest, mode rayMode) (HitRecord, bool, error) {
	tc.Reset()
	if t == nil || len(t.nodes) == 0 {
		return HitRecord{}, false, ErrEmptyTree
	}

	var (
		closest HitRecord
		found   bool
		tMin    = ray.TMin
		tMax    = ray.TMax
	)

	tRoot, ok := t.bounds.IntersectRay(ray, tMin, tMax)
	if !ok {
		return closest, false, nil
	}
	t.push(tc, 0, tRoot)

	for !tc.IsEmpty() {
		index, tEntry := tc.popEntry()

		// The node was pushed before a closer hit shrank the interval.
		if tEntry > tMax {
			continue
		}

		node := &t.nodes[index]
		tc.stats.NodesVisited++

		if node.kind == Leaf {
			tc.stats.LeavesVisited++
			r := node.Range()
			for _, prim := range t.primIndices[r.Offset:r.End()] {
				tc.stats.PrimitiveTests++
				hit, verdict := test(tc, prim, ray, tMin, tMax)
				if verdict&Hit != 0 && hit.Distance >= tMin && hit.Distance <= tMax {
					closest, found = hit, true
					tc.RecordHit(hit)
					if mode == anyHit {
						tc.unwind()
						return closest, true, nil
					}
					tMax = hit.Distance
				}
				if verdict&Stop != 0 {
					tc.stats.Cancelled = true
					tc.unwind()
					return closest, found, nil
				}
			}
			continue
		}

		left, right := node.payload[0], node.payload[1]
		tLeft, hitLeft := node.Bounds[0].IntersectRay(ray, tMin, tMax)
		tRight, hitRight := node.Bounds[1].IntersectRay(ray, tMin, tMax)
		switch {
		case hitLeft && hitRight:
			// Far child first so the near child is popped next.
			if tRight < tLeft {
				t.push(tc, left, tLeft)
				t.push(tc, right, tRight)
			} else {
				t.push(tc, right, tRight)
				t.push(tc, left, tLeft)
			}
		case hitLeft:
			t.push(tc, left, tLeft)
		case hitRight:
			t.push(tc, right, tRight)
		}
	}

	return closest, found, nil
}

// Push a node with its entry distance; on overflow the node's subtree is
// skipped and the query is flagged as truncated.
func (t *Tree) push(tc *TraversalContext, index uint32, tEntry float32) {
	if err := tc.pushEntry(index, tEntry); err != nil {
		tc.stats.Truncated = true
	}
}
