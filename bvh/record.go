package bvh

import "github.com/achilleasa/accel/types"

// A serializable view of a node. Unlike Node, all of its fields are exported
// so it can be handled by encoders that skip unexported fields.
type NodeRecord struct {
	Bounds  [2]types.AABB
	Kind    NodeKind
	Payload [2]uint32
}

// Get the serializable view of the node.
func (n Node) Record() NodeRecord {
	return NodeRecord{
		Bounds:  n.Bounds,
		Kind:    n.kind,
		Payload: n.payload,
	}
}

// Export the tree contents so it can be persisted and later restored with
// ImportTree.
func (t *Tree) Export() (bounds types.AABB, records []NodeRecord, primIndices []uint32) {
	if t == nil {
		return types.AABB{}, nil, nil
	}

	records = make([]NodeRecord, len(t.nodes))
	for index := range t.nodes {
		records[index] = t.nodes[index].Record()
	}
	primIndices = append([]uint32(nil), t.primIndices...)
	return t.bounds, records, primIndices
}

// Rebuild a tree from exported records. The records are untrusted input and
// go through the same validation as builder output.
func ImportTree(bounds types.AABB, records []NodeRecord, primIndices []uint32) (*Tree, error) {
	nodes := make([]Node, len(records))
	for index, r := range records {
		nodes[index] = Node{
			Bounds:  r.Bounds,
			kind:    r.Kind,
			payload: r.Payload,
		}
	}
	return NewTree(bounds, nodes, primIndices)
}
