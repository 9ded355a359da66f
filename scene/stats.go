package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"github.com/achilleasa/accel/bvh"
	"github.com/olekukonko/tablewriter"
)

// Shape statistics of a BVH tree.
type TreeStats struct {
	Nodes      int
	Leaves     int
	Primitives int
	Depth      int

	MinLeafPrims int
	MaxLeafPrims int
	AvgLeafPrims float32
}

// Walk the tree nodes and collect shape statistics.
func CollectTreeStats(tree *bvh.Tree) TreeStats {
	stats := TreeStats{
		Nodes:      tree.Len(),
		Primitives: tree.NumPrimitives(),
	}
	if stats.Nodes == 0 {
		return stats
	}
	stats.Depth = tree.Depth()

	for index := 0; index < stats.Nodes; index++ {
		node := tree.Node(uint32(index))
		if !node.IsLeaf() {
			continue
		}

		count := int(node.Range().Count)
		if stats.Leaves == 0 || count < stats.MinLeafPrims {
			stats.MinLeafPrims = count
		}
		if count > stats.MaxLeafPrims {
			stats.MaxLeafPrims = count
		}
		stats.Leaves++
	}
	stats.AvgLeafPrims = float32(stats.Primitives) / float32(stats.Leaves)

	return stats
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	ts := CollectTreeStats(sc.Tree)
	nodeBytes := ts.Nodes * int(unsafe.Sizeof(bvh.Node{}))
	indexBytes := ts.Primitives * 4
	treeBytes := nodeBytes + indexBytes

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Value"})
	table.Append([]string{"Geometry", "Triangles", fmt.Sprint(len(sc.Triangles))})
	table.Append([]string{"", "Size", fmtSize(sc.Triangles)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"BVH", "Nodes", fmt.Sprint(ts.Nodes)})
	table.Append([]string{"", "Leaves", fmt.Sprint(ts.Leaves)})
	table.Append([]string{"", "Depth", fmt.Sprint(ts.Depth)})
	table.Append([]string{"", "Min stack capacity", fmt.Sprint(sc.Tree.MinStackCapacity())})
	table.Append([]string{"", "Prims/leaf (min/avg/max)", fmt.Sprintf("%d / %.1f / %d", ts.MinLeafPrims, ts.AvgLeafPrims, ts.MaxLeafPrims)})
	table.Append([]string{"", "Size", fmtBytes(treeBytes)})
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtBytes(treeBytes+sliceBytes(sc.Triangles)), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	return fmtBytes(sliceBytes(items...))
}

func sliceBytes(items ...interface{}) int {
	totalBytes := 0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += int(t.Elem().Size()) * v.Len()
	}
	return totalBytes
}

func fmtBytes(totalBytes int) string {
	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", totalBytes)
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1e3)
	}
	return fmt.Sprintf("%5.1f mb", float32(totalBytes)/1e6)
}
