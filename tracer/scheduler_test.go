package tracer

import (
	"testing"
	"time"
)

func TestPerfectScheduler(t *testing.T) {
	type spec struct {
		items     int
		bTime1    time.Duration
		bTime2    time.Duration
		expItems1 int
		expItems2 int
	}
	specs := []spec{
		// First call always splits evenly
		{10, time.Duration(1), time.Duration(5), 5, 5},
		// Second call should use the block times to assign items
		{10, time.Duration(1), time.Duration(5), 9, 1},
		// This time worker 2 performed much better
		{10, time.Duration(5), time.Duration(1), 7, 3},
	}

	workers := make([]WorkerStats, 2)

	sch := NewPerfectScheduler()
	for index, s := range specs {
		workers[0].BlockTime = s.bTime1
		workers[1].BlockTime = s.bTime2

		blockAssignment := sch.Schedule(workers, s.items)

		if blockAssignment[0] != s.expItems1 {
			t.Fatalf("[spec %d] expected worker 0 to be assigned %d items; got %d", index, s.expItems1, blockAssignment[0])
		}

		if blockAssignment[1] != s.expItems2 {
			t.Fatalf("[spec %d] expected worker 1 to be assigned %d items; got %d", index, s.expItems2, blockAssignment[1])
		}

		workers[0].Items = blockAssignment[0]
		workers[1].Items = blockAssignment[1]
	}
}

func TestSchedulerAssignmentsCoverBatch(t *testing.T) {
	type spec struct {
		items int
		times []time.Duration
	}
	specs := []spec{
		{3, []time.Duration{1, 1000, 1000}},
		{2, []time.Duration{1, 1, 1}},
		{0, []time.Duration{1, 2}},
		{1001, []time.Duration{7, 3, 11, 5}},
	}

	for index, s := range specs {
		workers := make([]WorkerStats, len(s.times))
		sch := NewPerfectScheduler()

		// Prime the scheduler so the second call uses feedback
		for round := 0; round < 2; round++ {
			blocks := sch.Schedule(workers, s.items)
			total := 0
			for idx, size := range blocks {
				if size < 0 {
					t.Fatalf("[spec %d] negative block size for worker %d", index, idx)
				}
				total += size
				workers[idx].Items = size
				workers[idx].BlockTime = s.times[idx]
			}
			if total != s.items {
				t.Fatalf("[spec %d] expected blocks to add up to %d; got %d", index, s.items, total)
			}
		}
	}
}
