package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split a batch of items into contiguous blocks and assign one block
	// to each worker using feedback collected from the previous batch.
	//
	// This function returns the block size assignment for each worker
	// in the input list. The assignments always add up to items.
	Schedule(workers []WorkerStats, items int) []int
}

// The perfect scheduler assumes that the volume of work per item between two
// subsequent batches is approximately the same.
type perfectScheduler struct {
	blockAssignment []int
}

// Create a new perfect scheduler instance
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split the batch into blocks using the throughput of each worker in the
// previous batch. When no feedback is available (first batch or the number
// of workers changed) the batch is split evenly.
//
// The block size for worker w in batch i+1 is estimated as:
// items * (items_w,i / time_w,i) / Σ(items_i / time_i)
func (sch *perfectScheduler) Schedule(workers []WorkerStats, items int) []int {
	if len(workers) == 0 {
		return nil
	}

	if len(sch.blockAssignment) != len(workers) || !haveFeedback(workers) {
		sch.blockAssignment = make([]int, len(workers))
		return evenSplit(sch.blockAssignment, items)
	}

	var total float64
	for _, w := range workers {
		total += throughput(w)
	}

	scaler := float64(items) / total
	scheduled := 0
	for idx, w := range workers {
		sch.blockAssignment[idx] = int(math.Floor(throughput(w) * scaler))
		if items >= len(workers) && sch.blockAssignment[idx] < 1 {
			sch.blockAssignment[idx] = 1
		}
		scheduled += sch.blockAssignment[idx]
	}

	// Give missing items to the largest block; take extra ones (caused by the
	// 1 item minimum) from the largest blocks.
	if scheduled < items {
		sch.blockAssignment[largestBlock(sch.blockAssignment)] += items - scheduled
	}
	for ; scheduled > items; scheduled-- {
		sch.blockAssignment[largestBlock(sch.blockAssignment)]--
	}

	return sch.blockAssignment
}

// Split items evenly; the remainder is assigned to the first blocks.
func evenSplit(blocks []int, items int) []int {
	for idx := range blocks {
		blocks[idx] = items / len(blocks)
		if idx < items%len(blocks) {
			blocks[idx]++
		}
	}
	return blocks
}

func haveFeedback(workers []WorkerStats) bool {
	for _, w := range workers {
		if w.Items == 0 || w.BlockTime <= 0 {
			return false
		}
	}
	return true
}

func throughput(w WorkerStats) float64 {
	return float64(w.Items) / float64(w.BlockTime)
}

func largestBlock(blocks []int) int {
	largest := 0
	for idx, size := range blocks {
		if size > blocks[largest] {
			largest = idx
		}
	}
	return largest
}
