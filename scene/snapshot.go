package scene

import (
	"github.com/achilleasa/accel/bvh"
	"github.com/achilleasa/accel/primitive"
	"github.com/achilleasa/accel/types"
)

// The name of the snapshot entry inside compiled scene archives.
const SnapshotFile = "scene.bin"

// A flat, encodable representation of a compiled scene.
type Snapshot struct {
	Triangles []primitive.Triangle

	Bounds      types.AABB
	Nodes       []bvh.NodeRecord
	PrimIndices []uint32

	Camera *Camera
}

// Flatten the scene into a snapshot.
func (sc *Scene) Snapshot() *Snapshot {
	bounds, nodes, primIndices := sc.Tree.Export()
	return &Snapshot{
		Triangles:   sc.Triangles,
		Bounds:      bounds,
		Nodes:       nodes,
		PrimIndices: primIndices,
		Camera:      sc.Camera,
	}
}

// Restore a scene from a snapshot. The tree is validated before use.
func FromSnapshot(snap *Snapshot) (*Scene, error) {
	tree, err := bvh.ImportTree(snap.Bounds, snap.Nodes, snap.PrimIndices)
	if err != nil {
		return nil, err
	}
	return New(snap.Triangles, tree, snap.Camera)
}
