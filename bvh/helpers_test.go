package bvh

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/achilleasa/accel/types"
)

// Build a tree by recursive median splits along the longest axis.
func buildMedianTree(t testing.TB, boxes []types.AABB, maxLeafItems int) *Tree {
	t.Helper()

	if len(boxes) == 0 {
		tree, err := NewTree(types.AABB{}, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		return tree
	}

	order := make([]uint32, len(boxes))
	for i := range order {
		order[i] = uint32(i)
	}

	nodes := make([]Node, 0)
	var partition func(items []uint32, offset uint32) (uint32, types.AABB)
	partition = func(items []uint32, offset uint32) (uint32, types.AABB) {
		bbox := types.EmptyAABB()
		for _, item := range items {
			bbox = bbox.Union(boxes[item])
		}

		index := uint32(len(nodes))
		nodes = append(nodes, Node{})
		if len(items) <= maxLeafItems {
			nodes[index] = NewLeafNode(offset, uint32(len(items)))
			return index, bbox
		}

		side := bbox.Size()
		axis := 0
		if side[1] > side[axis] {
			axis = 1
		}
		if side[2] > side[axis] {
			axis = 2
		}
		sort.Slice(items, func(i, j int) bool {
			return boxes[items[i]].Center()[axis] < boxes[items[j]].Center()[axis]
		})

		mid := len(items) / 2
		left, leftBox := partition(items[:mid], offset)
		right, rightBox := partition(items[mid:], offset+uint32(mid))
		nodes[index] = NewInteriorNode(leftBox, rightBox, left, right)
		return index, bbox
	}

	_, bounds := partition(order, 0)
	tree, err := NewTree(bounds, nodes, order)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

// Three unit cubes at x = 0, 5 and 10 arranged as root{leaf0, {leaf1, leaf2}}.
func threeCubeTree(t *testing.T) (*Tree, []types.AABB) {
	t.Helper()

	boxes := []types.AABB{
		{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{1, 1, 1}},
		{Min: types.Vec3{5, 0, 0}, Max: types.Vec3{6, 1, 1}},
		{Min: types.Vec3{10, 0, 0}, Max: types.Vec3{11, 1, 1}},
	}
	nodes := []Node{
		NewInteriorNode(boxes[0], boxes[1].Union(boxes[2]), 1, 2),
		NewLeafNode(0, 1),
		NewInteriorNode(boxes[1], boxes[2], 3, 4),
		NewLeafNode(1, 1),
		NewLeafNode(2, 1),
	}
	tree, err := NewTree(boxes[0].Union(boxes[1]).Union(boxes[2]), nodes, []uint32{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	return tree, boxes
}

func boxRayTest(boxes []types.AABB) RayTest {
	return func(_ QueryContext, prim uint32, ray *types.Ray, tMin, tMax float32) (HitRecord, Verdict) {
		if tHit, ok := boxes[prim].IntersectRay(ray, tMin, tMax); ok {
			return HitRecord{Primitive: prim, Distance: tHit}, Hit
		}
		return HitRecord{}, Miss
	}
}

func boxVolumeTest(boxes []types.AABB) VolumeTest {
	return func(_ QueryContext, prim uint32, volume *types.AABB) (HitRecord, Verdict) {
		if boxes[prim].Overlaps(*volume) {
			return HitRecord{Primitive: prim, Distance: boxes[prim].Penetration(*volume)}, Hit
		}
		return HitRecord{}, Miss
	}
}

func randomBoxes(rng *rand.Rand, count int, extent float32) []types.AABB {
	boxes := make([]types.AABB, count)
	for i := range boxes {
		min := types.Vec3{
			(rng.Float32() - 0.5) * extent,
			(rng.Float32() - 0.5) * extent,
			(rng.Float32() - 0.5) * extent,
		}
		size := types.Vec3{rng.Float32() + 0.01, rng.Float32() + 0.01, rng.Float32() + 0.01}
		boxes[i] = types.AABB{Min: min, Max: min.Add(size)}
	}
	return boxes
}

func randomRay(rng *rand.Rand, extent float32) types.Ray {
	origin := types.Vec3{
		(rng.Float32() - 0.5) * extent * 2,
		(rng.Float32() - 0.5) * extent * 2,
		(rng.Float32() - 0.5) * extent * 2,
	}
	target := types.Vec3{
		(rng.Float32() - 0.5) * extent,
		(rng.Float32() - 0.5) * extent,
		(rng.Float32() - 0.5) * extent,
	}
	return types.NewRay(origin, target.Sub(origin).Normalize(), 0, 1e6)
}
