// Package mst builds an undirected minimum spanning tree over a set
// of 2D points under the Euclidean metric and answers neighbour
// queries against it. It backs the dropper's per-bucket merge and
// relaxation passes (Component G of the design).
//
// Candidate-neighbour lookups during tree construction are served by
// an R-tree (github.com/dhconnelly/rtreego) instead of a full O(n^2)
// scan, but the result is exact, not approximate: a relaxation step
// starts at candidateFanout nearest neighbours and doubles its window
// until the farthest candidate considered is at least as far as the
// largest remaining key among unvisited points. Past that distance no
// unvisited point could possibly beat its current best edge, so every
// point that could still improve a key has been examined — Build
// always returns a true minimum spanning tree, never merely a
// connected approximation of one.
package mst

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/latticeforge/treesupport/pkg/geom"
)

// candidateFanout is the starting window size for a relaxation step's
// nearest-neighbour query; it doubles (see relax) until correctness's
// distance bound is satisfied, so this only tunes the common-case
// query cost and never trades away exactness.
const candidateFanout = 48

// pointEpsilon is the half-width rtreego uses for a point's bounding
// box; rtreego rejects zero-volume rectangles, so every axis gets a
// minuscule positive extent instead.
const pointEpsilon = 1e-6

// Tree is an undirected minimum spanning tree over a fixed point set.
// It answers adjacency queries by exact position; positions not
// present in the original set have no neighbours.
type Tree struct {
	adjacency map[geom.Point][]geom.Point
}

// Adjacent returns the neighbours of p in the tree, or nil if p is
// not one of the tree's points.
func (t *Tree) Adjacent(p geom.Point) []geom.Point {
	return t.adjacency[p]
}

// Len returns the number of points in the tree.
func (t *Tree) Len() int {
	return len(t.adjacency)
}

// spatialPoint adapts a geom.Point for insertion into an rtreego.Rtree.
type spatialPoint struct {
	geom.Point
	index int
}

func (s spatialPoint) Bounds() rtreego.Rect {
	rect, err := rtreego.NewRect(
		rtreego.Point{float64(s.X) - pointEpsilon, float64(s.Y) - pointEpsilon},
		[]float64{2 * pointEpsilon, 2 * pointEpsilon},
	)
	if err != nil {
		// Only possible if pointEpsilon were non-positive, which it never is.
		panic("mst: invalid point bounds: " + err.Error())
	}
	return rect
}

// Build constructs the minimum spanning tree over points using Prim's
// algorithm. Duplicate positions are de-duplicated before building
// (the contract upstream guarantees unique positions per layer, but
// Build stays defensive since it is reusable outside that context).
func Build(points []geom.Point) *Tree {
	unique := dedupe(points)
	t := &Tree{adjacency: make(map[geom.Point][]geom.Point, len(unique))}
	n := len(unique)
	if n == 0 {
		return t
	}
	if n == 1 {
		t.adjacency[unique[0]] = nil
		return t
	}

	tree := rtreego.NewTree(2, 4, 16)
	for i, p := range unique {
		tree.Insert(spatialPoint{Point: p, index: i})
	}

	const noParent = -1
	inTree := make([]bool, n)
	key := make([]int64, n)
	parent := make([]int, n)
	for i := range key {
		key[i] = math.MaxInt64
		parent[i] = noParent
	}
	key[0] = 0
	inTree[0] = true
	remaining := n - 1

	addEdge := func(a, b int) {
		pa, pb := unique[a], unique[b]
		t.adjacency[pa] = append(t.adjacency[pa], pb)
		t.adjacency[pb] = append(t.adjacency[pb], pa)
	}

	// Seed the initial point's own adjacency slot so isolated points
	// still have an entry (possibly empty) in the map.
	for _, p := range unique {
		if _, ok := t.adjacency[p]; !ok {
			t.adjacency[p] = nil
		}
	}

	// relax updates key/parent for every unvisited point that fromIdx
	// could improve. It queries the R-tree for fromIdx's k nearest
	// neighbours (by plain coordinate distance, not restricted to
	// unvisited ones) and doubles k whenever the farthest candidate
	// seen so far is still closer than bound, the largest key value
	// among unvisited points. Once the farthest candidate is at least
	// bound away, every point beyond it is provably too far to beat
	// any unvisited point's current key, so stopping there is exact,
	// not an approximation: a missed point could only matter if its
	// distance to fromIdx were less than its own key, and any such
	// point is, by definition, closer than bound.
	relax := func(fromIdx int) {
		bound := maxUnvisitedKey(key, inTree)
		center := rtreego.Point{float64(unique[fromIdx].X), float64(unique[fromIdx].Y)}
		k := candidateFanout
		if k > n {
			k = n
		}
		for {
			candidates := tree.NearestNeighbors(k, center)
			var farthest int64
			for _, c := range candidates {
				sp, ok := c.(spatialPoint)
				if !ok {
					continue
				}
				d := unique[fromIdx].DistanceSquared(unique[sp.index])
				if d > farthest {
					farthest = d
				}
				if inTree[sp.index] {
					continue
				}
				if d < key[sp.index] {
					key[sp.index] = d
					parent[sp.index] = fromIdx
				}
			}
			if k >= n || farthest >= bound {
				return
			}
			k *= 2
			if k > n {
				k = n
			}
		}
	}
	relax(0)

	for remaining > 0 {
		// Every unvisited point already holds a finite key by the time
		// this loop runs: relax(0) above grows its candidate window
		// until it has compared point 0 against the whole remaining
		// set, since every key starts at the sentinel maximum. The
		// points form a complete graph under Euclidean distance, so
		// pickMinKey can never fail to find a next vertex here.
		next := pickMinKey(key, inTree)
		inTree[next] = true
		remaining--
		if parent[next] != noParent {
			addEdge(parent[next], next)
		}
		relax(next)
	}

	return t
}

// maxUnvisitedKey returns the largest key value among unvisited
// points, or 0 if every point is already in the tree. It is the
// distance beyond which a relaxation step's candidate window can stop
// growing without risking a missed improvement.
func maxUnvisitedKey(key []int64, inTree []bool) int64 {
	var max int64
	for i, in := range inTree {
		if in {
			continue
		}
		if key[i] > max {
			max = key[i]
		}
	}
	return max
}

func pickMinKey(key []int64, inTree []bool) int {
	best := -1
	var bestKey int64 = math.MaxInt64
	for i, in := range inTree {
		if in {
			continue
		}
		if key[i] < bestKey {
			bestKey = key[i]
			best = i
		}
	}
	return best
}

func dedupe(points []geom.Point) []geom.Point {
	seen := make(map[geom.Point]bool, len(points))
	out := make([]geom.Point, 0, len(points))
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}
