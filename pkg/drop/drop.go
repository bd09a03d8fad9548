// Package drop implements the top-down relaxation that produces the
// node set of every layer below the seeded tips: nearby tips merge
// via minimum-spanning-tree adjacency, survivors move toward the
// build plate (or toward the interior of a supporting model part)
// within the per-layer slope budget, and every move is reconciled
// against the collision/avoidance/internal-guide fields before the
// node is handed to the layer below.
//
// The bucket loop below is intentionally single-threaded even though
// buckets are independent of one another within a layer: the
// position-collision merge rule on insertion keeps whichever of
// to_buildplate/skin_direction was written first, and running buckets
// out of a fixed order would make that first-writer an accident of
// scheduling instead of a repeatable property of the input.
package drop

import (
	"math"

	"github.com/latticeforge/treesupport/pkg/field"
	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/mst"
	"github.com/latticeforge/treesupport/pkg/slicedata"
	"github.com/latticeforge/treesupport/pkg/treenode"
)

// Fields bundles the three tensors the dropper reads at every step.
type Fields struct {
	Collision     field.Field
	Avoidance     field.Field
	InternalGuide field.Field
}

// Run drops seeded nodes layer by layer from layerCount-1 down to 1;
// layer 0 is never relaxed, its incoming nodes are the final feet.
// seeds[l] holds any tips newly placed at layer l (nil where none
// were seeded); the returned slice holds the full node set of every
// layer, seeds folded together with everything dropped down from
// above.
// onProgress, if non-nil, is called after each layer is dropped,
// reporting layers done out of layerCount-1 (layer 0 is never
// dropped).
func Run(p field.Params, cfg slicedata.Config, layerCount int, seeds []*treenode.Layer, f Fields, onProgress func(done, total int)) []*treenode.Layer {
	layers := make([]*treenode.Layer, layerCount)
	for l := 0; l < layerCount; l++ {
		if l < len(seeds) && seeds[l] != nil {
			layers[l] = seeds[l]
		} else {
			layers[l] = treenode.NewLayer()
		}
	}

	total := layerCount - 1
	if total < 0 {
		total = 0
	}
	done := 0
	for l := layerCount - 1; l > 0; l-- {
		dropLayer(p, cfg, l, layers[l], layers[l-1], f)
		done++
		if onProgress != nil {
			onProgress(done, total)
		}
	}

	return layers
}

// dropLayer processes every node of current (layer l), writing its
// descendants into below (layer l-1).
func dropLayer(p field.Params, cfg slicedata.Config, l int, current, below *treenode.Layer, f Fields) {
	if current.Len() == 0 {
		return
	}

	avoidance0 := f.Avoidance[0][l]
	parts := geom.SplitIntoParts(avoidance0)
	buckets := bucketNodes(current, parts, cfg)

	for bucketIdx, nodes := range buckets {
		if len(nodes) == 0 {
			continue
		}
		dropBucket(p, cfg, l, bucketIdx, nodes, below, f)
	}
}

// bucketNodes partitions a layer's nodes per §4.5: bucket 0 routes
// toward the build plate, buckets 1..len(parts) rest on a model part.
// Nodes that cannot reach the build plate while the global policy
// forbids resting on the model are dropped outright.
func bucketNodes(current *treenode.Layer, parts []geom.Polygons, cfg slicedata.Config) [][]treenode.Node {
	buckets := make([][]treenode.Node, len(parts)+1)
	for _, n := range current.All() {
		if n.ToBuildplate || len(parts) == 0 {
			buckets[0] = append(buckets[0], n)
			continue
		}
		if cfg.SupportType == slicedata.SupportBuildplateOnly {
			continue
		}
		idx := closestPart(n.Position, parts)
		if idx < 0 {
			continue
		}
		buckets[idx+1] = append(buckets[idx+1], n)
	}
	return buckets
}

// closestPart returns the index of the part p is inside, or, failing
// that, the index of the part whose boundary p is nearest to.
func closestPart(p geom.Point, parts []geom.Polygons) int {
	for i, part := range parts {
		if geom.Inside(p, part, true) {
			return i
		}
	}
	best := -1
	var bestDistSq int64
	for i, part := range parts {
		cp, ok := geom.FindClosest(p, part)
		if !ok {
			continue
		}
		if best < 0 || cp.DistanceSq < bestDistSq {
			best = i
			bestDistSq = cp.DistanceSq
		}
	}
	return best
}

// dropBucket runs the two-pass merge-and-relax over one bucket's
// nodes and writes every survivor's descendant into below.
func dropBucket(p field.Params, cfg slicedata.Config, l, bucketIdx int, nodes []treenode.Node, below *treenode.Layer, f Fields) {
	positions := make([]geom.Point, len(nodes))
	live := make(map[geom.Point]treenode.Node, len(nodes))
	for i, n := range nodes {
		positions[i] = n.Position
		live[n.Position] = n
	}
	tree := mst.Build(positions)

	deleted := make(map[geom.Point]bool, len(nodes))
	dyadEmitted := make(map[geom.Point]bool, len(nodes))
	maxMove := p.MaxMoveDistance
	maxMoveSq := maxMove * maxMove

	// Pass 1: merge near-collapsing dyads, absorb close siblings of
	// multi-neighbour nodes.
	for _, n := range nodes {
		if deleted[n.Position] || dyadEmitted[n.Position] {
			continue
		}
		neighbours := tree.Adjacent(n.Position)
		if len(neighbours) == 1 {
			other := neighbours[0]
			if n.Position.DistanceSquared(other) < maxMoveSq && len(tree.Adjacent(other)) == 1 {
				otherNode := live[other]
				mid := geom.Point{X: (n.Position.X + other.X) / 2, Y: (n.Position.Y + other.Y) / 2}
				merged := mergeDyad(n, otherNode)
				reconcileAndInsert(p, cfg, l, bucketIdx, mid, merged, n.Position, below, f)
				dyadEmitted[n.Position] = true
				dyadEmitted[other] = true
			}
			continue
		}
		if len(neighbours) > 1 {
			cur := n
			for _, nb := range neighbours {
				if deleted[nb] || dyadEmitted[nb] {
					continue
				}
				if cur.Position.DistanceSquared(nb) < maxMoveSq {
					nbNode := live[nb]
					cur = absorb(cur, nbNode)
					deleted[nb] = true
				}
			}
			live[n.Position] = cur
		}
	}

	// Pass 2: relax every node that pass 1 neither deleted nor merged
	// into a dyad.
	for _, n := range nodes {
		if deleted[n.Position] || dyadEmitted[n.Position] {
			continue
		}
		cur := live[n.Position]

		if bucketIdx > 0 {
			col0 := f.Collision[0][l]
			if geom.Inside(cur.Position, col0, true) {
				if cp, ok := geom.FindClosest(cur.Position, col0); ok {
					radius := p.BranchRadiusAtCurrent(cur.DistanceToTop)
					if cp.DistanceSq >= radius*radius {
						continue // fully embedded in the model; drop
					}
				}
			}
		}

		neighbours := tree.Adjacent(cur.Position)
		v := relaxPosition(cur.Position, neighbours, maxMove)
		reconcileAndInsert(p, cfg, l, bucketIdx, v, cur, v, below, f)
	}
}

// relaxPosition implements pass 2's movement rule: a lone neighbour
// within maxMove leaves n stuck in place (replicated literally, see
// the leaf-movement decision in SPEC_FULL.md); otherwise n moves by the sum of
// vectors to its neighbours, clamped to maxMove.
func relaxPosition(p geom.Point, neighbours []geom.Point, maxMove slicedata.Microns) geom.Point {
	if len(neighbours) == 1 {
		only := neighbours[0]
		if p.DistanceSquared(only) < maxMove*maxMove {
			return p
		}
	}
	var sum geom.Point
	for _, nb := range neighbours {
		sum = sum.Add(nb.Sub(p))
	}
	move := geom.Normal(sum, maxMove)
	return p.Add(move)
}

// mergeDyad folds two dyad members into the payload used for the
// merged descendant: DistanceToTop and SupportRoofLayersBelow take
// the max, matching the position-collision merge rule; SkinDirection
// and ToBuildplate are inherited from n, the node pass 1 was
// iterating on when the dyad was found.
func mergeDyad(n, other treenode.Node) treenode.Node {
	merged := n
	if other.DistanceToTop > merged.DistanceToTop {
		merged.DistanceToTop = other.DistanceToTop
	}
	if other.SupportRoofLayersBelow > merged.SupportRoofLayersBelow {
		merged.SupportRoofLayersBelow = other.SupportRoofLayersBelow
	}
	return merged
}

// absorb folds a close sibling into n without moving n's position:
// DistanceToTop and SupportRoofLayersBelow take the max.
func absorb(n, other treenode.Node) treenode.Node {
	if other.DistanceToTop > n.DistanceToTop {
		n.DistanceToTop = other.DistanceToTop
	}
	if other.SupportRoofLayersBelow > n.SupportRoofLayersBelow {
		n.SupportRoofLayersBelow = other.SupportRoofLayersBelow
	}
	return n
}

// reconcileAndInsert runs the post-move reconciliation shared by both
// passes and inserts the resulting descendant into below. guideQuery is
// the point the internal-guide closest-point search is made from: the
// pass-2 relax call passes v itself (the already-relaxed point), while
// the dyad-merge call passes the pre-merge node's own position rather
// than the dyad midpoint, matching the original's two call sites.
func reconcileAndInsert(p field.Params, cfg slicedata.Config, l, bucketIdx int, v geom.Point, src treenode.Node, guideQuery geom.Point, below *treenode.Layer, f Fields) {
	d := src.DistanceToTop
	radius := p.BranchRadiusAt(d)
	s := p.SampleForRadius(radius)

	var final geom.Point
	if bucketIdx == 0 {
		slack := p.CollisionResolution + 100
		maxStepSq := (p.MaxMoveDistance + slack) * (p.MaxMoveDistance + slack)
		final = geom.MoveOutside(f.Avoidance[s][l-1], v, slack, maxStepSq)
	} else {
		guide := f.InternalGuide[s][l-1]
		var movedInside geom.Point
		cp, ok := geom.FindClosest(guideQuery, guide)
		if !ok {
			movedInside = v
		} else {
			// Distance is always measured from src.Position, the
			// pre-relaxation/pre-merge node position, to the boundary
			// point — even though the boundary point itself was looked
			// up from guideQuery, which differs from src.Position in
			// the pass-2 relax case.
			currentDistance := isqrt(src.Position.DistanceSquared(cp.Point))
			step := currentDistance + p.MaxMoveDistance
			movedInside = geom.EnsureInsideOrOutside(guide, v, cp, step*step)
		}
		// EnsureInsideOrOutside only bounds the move relative to v, the
		// already pass-2-relaxed point, which can itself sit up to
		// MaxMoveDistance away from src.Position; re-clamp the total
		// displacement from src.Position down to MaxMoveDistance,
		// mirroring the original's separate difference-then-clamp step.
		diff := geom.Normal(movedInside.Sub(src.Position), p.MaxMoveDistance)
		final = src.Position.Add(diff)
	}

	toBuildplateNext := !geom.Inside(final, f.Avoidance[s][l-1], true)

	below.Upsert(treenode.Node{
		Position:               final,
		DistanceToTop:          d + 1,
		SkinDirection:          src.SkinDirection,
		SupportRoofLayersBelow: src.SupportRoofLayersBelow - 1,
		ToBuildplate:           toBuildplateNext,
	})
}

func isqrt(x int64) int64 {
	if x <= 0 {
		return 0
	}
	return int64(math.Sqrt(float64(x)))
}
