package tracer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/achilleasa/accel/bvh"
	"github.com/olekukonko/tablewriter"
)

// Aggregated query counters.
type Totals struct {
	Queries uint64
	Hits    uint64

	NodesVisited   uint64
	LeavesVisited  uint64
	PrimitiveTests uint64
	StackOverflows uint64

	Truncated uint64
	Cancelled uint64
}

// Add the stats of a single query that reported hits hits.
func (t *Totals) add(stats bvh.QueryStats, hits int) {
	t.Queries++
	t.Hits += uint64(hits)
	t.NodesVisited += uint64(stats.NodesVisited)
	t.LeavesVisited += uint64(stats.LeavesVisited)
	t.PrimitiveTests += uint64(stats.PrimitiveTests)
	t.StackOverflows += uint64(stats.StackOverflows)
	if stats.Truncated {
		t.Truncated++
	}
	if stats.Cancelled {
		t.Cancelled++
	}
}

func (t *Totals) merge(o Totals) {
	t.Queries += o.Queries
	t.Hits += o.Hits
	t.NodesVisited += o.NodesVisited
	t.LeavesVisited += o.LeavesVisited
	t.PrimitiveTests += o.PrimitiveTests
	t.StackOverflows += o.StackOverflows
	t.Truncated += o.Truncated
	t.Cancelled += o.Cancelled
}

// Worker statistics for the last processed batch.
type WorkerStats struct {
	// The worker id.
	Id int

	// The number of items in the block assigned to the worker.
	Items int

	// The time for processing the block.
	BlockTime time.Duration

	Totals Totals
}

type BatchStats struct {
	Mode Mode

	// Individual worker stats.
	Workers []WorkerStats

	// Total time for processing the entire batch.
	Elapsed time.Duration

	Totals Totals
}

// Get the batch throughput in queries per second.
func (s BatchStats) QueriesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Totals.Queries) / s.Elapsed.Seconds()
}

// Build a tabular representation of the batch statistics.
func (s BatchStats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Queries", "% of batch", "Hits", "Nodes/query", "Tests/query", "Truncated", "Block time"})

	for _, w := range s.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", w.Id),
			fmt.Sprintf("%d", w.Items),
			fmt.Sprintf("%02.1f %%", percent(uint64(w.Items), s.Totals.Queries)),
			fmt.Sprintf("%d", w.Totals.Hits),
			fmt.Sprintf("%.1f", perQuery(w.Totals.NodesVisited, w.Totals.Queries)),
			fmt.Sprintf("%.1f", perQuery(w.Totals.PrimitiveTests, w.Totals.Queries)),
			fmt.Sprintf("%d", w.Totals.Truncated),
			w.BlockTime.String(),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("%d", s.Totals.Queries),
		"",
		fmt.Sprintf("%d", s.Totals.Hits),
		fmt.Sprintf("%.1f", perQuery(s.Totals.NodesVisited, s.Totals.Queries)),
		fmt.Sprintf("%.1f", perQuery(s.Totals.PrimitiveTests, s.Totals.Queries)),
		fmt.Sprintf("%d", s.Totals.Truncated),
		s.Elapsed.String(),
	})

	table.Render()
	return buf.String()
}

func perQuery(value, queries uint64) float64 {
	if queries == 0 {
		return 0
	}
	return float64(value) / float64(queries)
}

func percent(value, total uint64) float64 {
	return 100 * perQuery(value, total)
}
