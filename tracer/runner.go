package tracer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/achilleasa/accel/bvh"
	"github.com/achilleasa/accel/log"
	"github.com/achilleasa/accel/scene"
	"github.com/achilleasa/accel/types"
	"golang.org/x/sync/errgroup"
)

// Number of queries processed between context cancellation checks.
const cancelCheckInterval = 256

var (
	ErrUnsupportedMode = errors.New("tracer: unsupported query mode")
	ErrResultMismatch  = errors.New("tracer: result buffer length does not match batch size")
)

// The query type executed by a batch.
type Mode uint8

const (
	NearestHit Mode = iota
	AnyHit
	Overlap
)

func (m Mode) String() string {
	switch m {
	case NearestHit:
		return "nearest"
	case AnyHit:
		return "any"
	case Overlap:
		return "overlap"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Parse a mode name (nearest, any, overlap).
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nearest":
		return NearestHit, nil
	case "any":
		return AnyHit, nil
	case "overlap":
		return Overlap, nil
	}
	return NearestHit, fmt.Errorf("%w: %q", ErrUnsupportedMode, name)
}

// The outcome of a single ray query.
type Result struct {
	// The closest hit for NearestHit queries or the first accepted hit for
	// AnyHit queries. Only valid if Found is true.
	Hit bvh.HitRecord

	Found bool

	// Set if a traversal stack overflow skipped part of the tree.
	Truncated bool
}

type Options struct {
	// Number of workers; defaults to GOMAXPROCS.
	Workers int

	// Traversal stack capacity per worker; defaults to the minimum capacity
	// that guarantees overflow-free traversals of the scene tree.
	StackCapacity int

	// Initial hit buffer capacity per worker.
	HitCapacity int

	// Block scheduler; defaults to the perfect scheduler.
	Scheduler BlockScheduler

	// Optional metrics sink.
	Metrics *Metrics
}

// Runner executes query batches against a scene using a pool of workers.
// Each worker owns a traversal context that is reused across batches. Batches
// are serialized; concurrent calls block until the previous batch completes.
type Runner struct {
	sync.Mutex

	logger log.Logger

	scene     *scene.Scene
	contexts  []*bvh.TraversalContext
	scheduler BlockScheduler
	metrics   *Metrics

	workerStats []WorkerStats
	lastStats   BatchStats
}

// Create a runner for a compiled scene.
func NewRunner(sc *scene.Scene, opts Options) (*Runner, error) {
	if sc == nil || sc.Tree.Len() == 0 {
		return nil, bvh.ErrEmptyTree
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewPerfectScheduler()
	}

	logger := log.New("runner")
	minCapacity := sc.Tree.MinStackCapacity()
	if opts.StackCapacity <= 0 {
		opts.StackCapacity = minCapacity
	} else if opts.StackCapacity < minCapacity {
		logger.Warningf("stack capacity %d is below the tree requirement of %d; queries may be truncated", opts.StackCapacity, minCapacity)
	}

	r := &Runner{
		logger:      logger,
		scene:       sc,
		contexts:    make([]*bvh.TraversalContext, opts.Workers),
		scheduler:   opts.Scheduler,
		metrics:     opts.Metrics,
		workerStats: make([]WorkerStats, opts.Workers),
	}
	for idx := range r.contexts {
		r.contexts[idx] = bvh.NewTraversalContext(opts.StackCapacity, opts.HitCapacity)
		r.workerStats[idx].Id = idx
	}

	logger.Debugf("created runner with %d workers (stack capacity: %d)", opts.Workers, opts.StackCapacity)
	return r, nil
}

// Get the number of workers.
func (r *Runner) Workers() int {
	return len(r.contexts)
}

// Get the statistics of the last completed batch.
func (r *Runner) LastStats() BatchStats {
	r.Lock()
	defer r.Unlock()
	return r.lastStats
}

// Trace a batch of rays. The outcome for rays[i] is written to results[i].
// Only NearestHit and AnyHit modes are supported.
func (r *Runner) TraceRays(ctx context.Context, mode Mode, rays []types.Ray, results []Result) (BatchStats, error) {
	if mode != NearestHit && mode != AnyHit {
		return BatchStats{}, fmt.Errorf("%w: %s for ray batches", ErrUnsupportedMode, mode)
	}
	if len(results) != len(rays) {
		return BatchStats{}, fmt.Errorf("%w: %d rays; %d results", ErrResultMismatch, len(rays), len(results))
	}

	return r.run(ctx, mode, len(rays), func(tc *bvh.TraversalContext, index int, totals *Totals) error {
		var (
			res Result
			err error
		)
		if mode == NearestHit {
			res.Hit, res.Found, err = r.scene.NearestHit(tc, &rays[index])
		} else {
			res.Found, err = r.scene.AnyHit(tc, &rays[index])
			if res.Found {
				hits := tc.Hits()
				res.Hit = hits[len(hits)-1]
			}
		}
		if err != nil {
			return err
		}

		stats := tc.Stats()
		res.Truncated = stats.Truncated
		results[index] = res

		hitCount := 0
		if res.Found {
			hitCount = 1
		}
		totals.add(stats, hitCount)
		return nil
	})
}

// Collect the triangles overlapping each volume. The returned hit lists are
// owned by the caller.
func (r *Runner) QueryVolumes(ctx context.Context, volumes []types.AABB) ([][]bvh.HitRecord, BatchStats, error) {
	out := make([][]bvh.HitRecord, len(volumes))
	stats, err := r.run(ctx, Overlap, len(volumes), func(tc *bvh.TraversalContext, index int, totals *Totals) error {
		hits, err := r.scene.Overlaps(tc, &volumes[index])
		if err != nil {
			return err
		}
		if len(hits) != 0 {
			out[index] = append([]bvh.HitRecord(nil), hits...)
		}
		totals.add(tc.Stats(), len(hits))
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}

// Split items into blocks, process each block on its own worker and aggregate
// the worker statistics.
func (r *Runner) run(ctx context.Context, mode Mode, items int, process func(*bvh.TraversalContext, int, *Totals) error) (BatchStats, error) {
	r.Lock()
	defer r.Unlock()

	batch := BatchStats{Mode: mode}
	if items == 0 {
		return batch, nil
	}

	start := time.Now()
	blocks := r.scheduler.Schedule(r.workerStats, items)

	group, groupCtx := errgroup.WithContext(ctx)
	offset := 0
	for idx, blockSize := range blocks {
		ws := &r.workerStats[idx]
		ws.Items = blockSize
		ws.BlockTime = 0
		ws.Totals = Totals{}
		if blockSize == 0 {
			continue
		}

		tc := r.contexts[idx]
		from, to := offset, offset+blockSize
		offset = to

		group.Go(func() error {
			blockStart := time.Now()
			defer func() { ws.BlockTime = time.Since(blockStart) }()

			for index := from; index < to; index++ {
				if (index-from)%cancelCheckInterval == 0 {
					if err := groupCtx.Err(); err != nil {
						return err
					}
				}
				if err := process(tc, index, &ws.Totals); err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := group.Wait()
	batch.Elapsed = time.Since(start)
	batch.Workers = make([]WorkerStats, len(r.workerStats))
	copy(batch.Workers, r.workerStats)
	for _, ws := range batch.Workers {
		batch.Totals.merge(ws.Totals)
		r.metrics.recordBlock(mode, ws.Totals)
	}

	if err != nil {
		// Discard partial feedback; the next batch is split evenly.
		for idx := range r.workerStats {
			r.workerStats[idx].BlockTime = 0
		}
		return batch, err
	}

	r.metrics.recordBatch(mode, batch.Elapsed)
	r.lastStats = batch
	r.logger.Debugf("processed %d %s queries in %s (%.0f queries/sec)", items, mode, batch.Elapsed, batch.QueriesPerSecond())
	if batch.Totals.Truncated != 0 {
		r.logger.Warningf("%d queries were truncated due to traversal stack overflows", batch.Totals.Truncated)
	}
	return batch, nil
}
