package builder

import (
	"runtime"
	"time"

	"github.com/achilleasa/accel/bvh"
	"github.com/achilleasa/accel/log"
	"github.com/achilleasa/accel/types"
	"golang.org/x/sync/errgroup"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// The builder will not attempt to calculate split candidates
	// if the node bbox along an axis is less than this threshold.
	minSideLength float32 = 1e-3

	// If the split step (calculated as side length / (1024 / (depth+1)))
	// is less than this threshold the builder will not evaluate
	// split candidates.
	minSplitStep float32 = 1e-5
)

// The BoundedVolume interface is implemented by all primitives that can be
// partitioned by the builder.
type BoundedVolume interface {
	BBox() types.AABB
	Center() types.Vec3
}

// A callback that is called whenever the builder creates a new leaf. The
// prims slice lists the original indices of the primitives in the leaf.
type LeafCallback func(leaf bvh.LeafRange, prims []uint32)

// Options control the shape of the generated tree.
type Options struct {
	// Work lists with at most this many items become leaves.
	MinLeafItems int

	// Nodes at this depth always become leaves. A zero value selects
	// bvh.DefaultStackCapacity - 1 so trees can be traversed with a
	// default sized context.
	MaxDepth int

	// Max number of concurrent split scoring goroutines. A zero value
	// selects GOMAXPROCS.
	Workers int

	// The split scoring strategy. Defaults to SurfaceAreaHeuristic.
	Strategy ScoreStrategy

	// Optional leaf callback.
	OnLeaf LeafCallback
}

type splitScore struct {
	axis       Axis
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

// Build statistics.
type Stats struct {
	Items     int
	Nodes     int
	Leaves    int
	MaxDepth  int
	BuildTime time.Duration
}

// A work list entry; it caches the bounds of the primitive it refers to.
type item struct {
	index  uint32
	bbox   types.AABB
	center types.Vec3
}

func (it item) BBox() types.AABB {
	return it.bbox
}

func (it item) Center() types.Vec3 {
	return it.center
}

type builder struct {
	logger log.Logger
	opts   Options

	// Bvh nodes stored as a contiguous list
	nodes []bvh.Node

	// Primitive index permutation; leaves own contiguous ranges.
	primIndices []uint32

	stats Stats
}

// Construct a BVH tree from a set of bounded volumes.
//
// The builder uses SAH for scoring splits:
// score = num_items * node bbox surface area.
//
// Work lists with <= opts.MinLeafItems items are turned into leaves. An empty
// item list produces an empty tree.
func Build(items []BoundedVolume, opts Options) (*bvh.Tree, error) {
	tree, _, err := BuildWithStats(items, opts)
	return tree, err
}

// Construct a BVH tree and also return the build statistics.
func BuildWithStats(items []BoundedVolume, opts Options) (*bvh.Tree, Stats, error) {
	if opts.MinLeafItems < 1 {
		opts.MinLeafItems = 1
	}
	if opts.MaxDepth <= 0 || opts.MaxDepth >= bvh.DefaultStackCapacity {
		opts.MaxDepth = bvh.DefaultStackCapacity - 1
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Strategy == nil {
		opts.Strategy = SurfaceAreaHeuristic
	}

	b := &builder{
		logger:      log.New("builder"),
		opts:        opts,
		nodes:       make([]bvh.Node, 0, 2*len(items)),
		primIndices: make([]uint32, 0, len(items)),
		stats: Stats{
			Items: len(items),
		},
	}

	if len(items) == 0 {
		tree, err := bvh.NewTree(types.AABB{}, nil, nil)
		return tree, b.stats, err
	}

	workList := make([]BoundedVolume, len(items))
	for index, vol := range items {
		workList[index] = item{
			index:  uint32(index),
			bbox:   vol.BBox(),
			center: vol.Center(),
		}
	}

	start := time.Now()
	_, bounds := b.partition(workList, 0)
	b.stats.BuildTime = time.Since(start)
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		b.stats.BuildTime.Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leaves,
	)

	tree, err := bvh.NewTree(bounds, b.nodes, b.primIndices)
	return tree, b.stats, err
}

// Partition worklist and return the node index and its bounds.
func (b *builder) partition(workList []BoundedVolume, depth int) (uint32, types.AABB) {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	// Calculate bounding box for node
	bbox := types.EmptyAABB()
	for _, it := range workList {
		bbox = bbox.Union(it.BBox())
	}

	// Do we have enough items for partitioning? If not create a leaf
	if len(workList) <= b.opts.MinLeafItems || depth >= b.opts.MaxDepth {
		return b.createLeaf(workList), bbox
	}

	bestScore := b.opts.Strategy.ScorePartition(workList)
	bestSplit := b.bestSplit(workList, bbox, depth)

	// If we can't find a split that improves the current node score create a leaf
	if bestSplit == nil || !(bestSplit.score < bestScore) {
		return b.createLeaf(workList), bbox
	}

	// split work list into two sets
	leftWorkList := make([]BoundedVolume, 0, bestSplit.leftCount)
	rightWorkList := make([]BoundedVolume, 0, bestSplit.rightCount)
	for _, it := range workList {
		if it.Center()[bestSplit.axis] < bestSplit.splitPoint {
			leftWorkList = append(leftWorkList, it)
		} else {
			rightWorkList = append(rightWorkList, it)
		}
	}

	// Reserve a slot for the node; the children are appended after it
	nodeIndex := uint32(len(b.nodes))
	b.nodes = append(b.nodes, bvh.Node{})
	b.stats.Nodes++

	leftNodeIndex, leftBBox := b.partition(leftWorkList, depth+1)
	rightNodeIndex, rightBBox := b.partition(rightWorkList, depth+1)
	b.nodes[nodeIndex] = bvh.NewInteriorNode(leftBBox, rightBBox, leftNodeIndex, rightNodeIndex)

	return nodeIndex, bbox
}

// Score all split candidates in parallel and return the best one or nil if
// no candidate could be evaluated.
func (b *builder) bestSplit(workList []BoundedVolume, bbox types.AABB, depth int) *splitScore {
	candidates := make([]splitScore, 0)

	side := bbox.Size()
	for axis := XAxis; axis <= ZAxis; axis++ {
		// Skip axis if bbox dimension is too small
		if side[axis] < minSideLength {
			continue
		}

		// We want the split steps to become more granular the deeper we go
		steps := 1024 / (depth + 1)
		splitStep := side[axis] / float32(steps)
		if splitStep < minSplitStep {
			continue
		}

		for step := 1; step < steps; step++ {
			candidates = append(candidates, splitScore{
				axis:       axis,
				splitPoint: bbox.Min[axis] + float32(step)*splitStep,
			})
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	var group errgroup.Group
	group.SetLimit(b.opts.Workers)
	for index := range candidates {
		candidate := &candidates[index]
		group.Go(func() error {
			candidate.leftCount, candidate.rightCount, candidate.score = b.opts.Strategy.ScoreSplit(workList, candidate.axis, candidate.splitPoint)
			return nil
		})
	}
	group.Wait()

	// Candidates are scanned in generation order so ties are resolved
	// the same way on every build.
	best := &candidates[0]
	for index := 1; index < len(candidates); index++ {
		if candidates[index].score < best.score {
			best = &candidates[index]
		}
	}
	return best
}

// Create a leaf node containing all items in the work list. Returns the index
// to the node in the bvh node array.
func (b *builder) createLeaf(workList []BoundedVolume) uint32 {
	offset := uint32(len(b.primIndices))
	for _, it := range workList {
		b.primIndices = append(b.primIndices, it.(item).index)
	}
	leaf := bvh.NewLeafNode(offset, uint32(len(workList)))

	if b.opts.OnLeaf != nil {
		b.opts.OnLeaf(leaf.Range(), b.primIndices[offset:])
	}

	nodeIndex := uint32(len(b.nodes))
	b.nodes = append(b.nodes, leaf)

	b.stats.Nodes++
	b.stats.Leaves++

	return nodeIndex
}
