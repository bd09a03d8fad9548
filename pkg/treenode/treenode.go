// Package treenode is the node/layer data model shared by seeding,
// dropping and rendering: a Node is one point on a descending branch,
// and a Layer is the set of nodes alive at a given height, keyed by
// position so that two branches landing on the same spot fold
// together instead of producing duplicate geometry.
package treenode

import (
	"sort"

	"github.com/samber/lo"

	"github.com/latticeforge/treesupport/pkg/geom"
)

// Node is one point on a branch at a given layer. Two nodes compare
// equal iff their Position is equal; Position is the identity the
// rest of this package and pkg/drop key on. Hash/equality ignore
// every other field.
type Node struct {
	Position geom.Point

	// DistanceToTop is the non-negative number of layers since this
	// branch's tip.
	DistanceToTop int

	// SkinDirection alternates the tapered-tip square's rotation by
	// layer parity.
	SkinDirection bool

	// SupportRoofLayersBelow is positive while this branch is still
	// within the roof-interface region below an overhang, decremented
	// once per descended layer; once negative the branch renders to
	// ordinary support instead of roof.
	SupportRoofLayersBelow int

	// ToBuildplate is true iff, at this node's current radius, a
	// collision-free descending path to the build plate currently
	// exists.
	ToBuildplate bool
}

// mergeFields folds b's payload into a's under the field-specific
// rules §4.5 documents for position-collision insertion:
// DistanceToTop and SupportRoofLayersBelow take the max of the two;
// ToBuildplate and SkinDirection are left at the first writer's
// value (a's), which is a deliberately preserved quirk, not an
// oversight — see the dropper's package doc for why.
func mergeFields(a, b Node) Node {
	out := a
	if b.DistanceToTop > out.DistanceToTop {
		out.DistanceToTop = b.DistanceToTop
	}
	if b.SupportRoofLayersBelow > out.SupportRoofLayersBelow {
		out.SupportRoofLayersBelow = b.SupportRoofLayersBelow
	}
	return out
}

// Layer is the set of nodes alive at one height, keyed by position.
// Positions within a Layer are always unique; Upsert is the only way
// to add a node and it enforces that by folding on collision.
type Layer struct {
	nodes map[geom.Point]Node
}

// NewLayer returns an empty layer.
func NewLayer() *Layer {
	return &Layer{nodes: make(map[geom.Point]Node)}
}

// Upsert inserts n, or folds it into the existing node at the same
// position via mergeFields if one is already present. Returns the
// resulting stored node.
func (l *Layer) Upsert(n Node) Node {
	if existing, ok := l.nodes[n.Position]; ok {
		merged := mergeFields(existing, n)
		l.nodes[n.Position] = merged
		return merged
	}
	l.nodes[n.Position] = n
	return n
}

// Delete removes the node at p, if any.
func (l *Layer) Delete(p geom.Point) {
	delete(l.nodes, p)
}

// Get returns the node at p, if any.
func (l *Layer) Get(p geom.Point) (Node, bool) {
	n, ok := l.nodes[p]
	return n, ok
}

// Len returns the number of nodes in the layer.
func (l *Layer) Len() int { return len(l.nodes) }

// All returns every node in the layer, ordered by position (X then Y)
// so that callers iterating it get a result independent of Go's
// randomized map order — required for the pipeline to produce
// identical output across runs on the same input.
func (l *Layer) All() []Node {
	nodes := lo.Values(l.nodes)
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Position.X != nodes[j].Position.X {
			return nodes[i].Position.X < nodes[j].Position.X
		}
		return nodes[i].Position.Y < nodes[j].Position.Y
	})
	return nodes
}

// Positions returns every node's position, ordered by X then Y; see
// All for why the order is fixed rather than left to map iteration.
func (l *Layer) Positions() []geom.Point {
	positions := lo.Keys(l.nodes)
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].X != positions[j].X {
			return positions[i].X < positions[j].X
		}
		return positions[i].Y < positions[j].Y
	})
	return positions
}
