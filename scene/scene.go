package scene

import (
	"errors"
	"fmt"

	"github.com/achilleasa/accel/builder"
	"github.com/achilleasa/accel/bvh"
	"github.com/achilleasa/accel/primitive"
	"github.com/achilleasa/accel/types"
)

var (
	ErrTreeMismatch = errors.New("scene: tree does not index the scene triangles")
)

// A compiled scene: a triangle list, the BVH tree built over it and an
// optional camera. A Scene is immutable once created and may be queried by
// any number of goroutines, each with its own traversal context.
type Scene struct {
	Triangles primitive.TriangleSet
	Tree      *bvh.Tree

	// The scene camera; may be nil.
	Camera *Camera
}

// Build the BVH tree for a triangle list and wrap both into a scene.
func Compile(triangles primitive.TriangleSet, camera *Camera, opts builder.Options) (*Scene, error) {
	tree, err := builder.Build(triangles.Volumes(), opts)
	if err != nil {
		return nil, fmt.Errorf("scene: could not build BVH: %w", err)
	}

	return &Scene{
		Triangles: triangles,
		Tree:      tree,
		Camera:    camera,
	}, nil
}

// Wrap an existing tree and triangle list into a scene. The tree must index
// exactly the given triangles.
func New(triangles primitive.TriangleSet, tree *bvh.Tree, camera *Camera) (*Scene, error) {
	if tree.NumPrimitives() != len(triangles) {
		return nil, fmt.Errorf("%w: tree references %d primitives; scene defines %d triangles", ErrTreeMismatch, tree.NumPrimitives(), len(triangles))
	}

	return &Scene{
		Triangles: triangles,
		Tree:      tree,
		Camera:    camera,
	}, nil
}

// Find the closest triangle hit by the ray.
func (sc *Scene) NearestHit(tc *bvh.TraversalContext, ray *types.Ray) (bvh.HitRecord, bool, error) {
	return sc.Tree.NearestHit(tc, ray, sc.Triangles.IntersectRay)
}

// Check whether the ray hits any triangle.
func (sc *Scene) AnyHit(tc *bvh.TraversalContext, ray *types.Ray) (bool, error) {
	return sc.Tree.AnyHit(tc, ray, sc.Triangles.IntersectRay)
}

// Collect all triangles overlapping volume.
func (sc *Scene) Overlaps(tc *bvh.TraversalContext, volume *types.AABB) ([]bvh.HitRecord, error) {
	return sc.Tree.AllOverlaps(tc, volume, sc.Triangles.Overlap)
}
