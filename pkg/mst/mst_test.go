package mst_test

import (
	"math"
	"testing"

	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/mst"
)

func TestBuildEmpty(t *testing.T) {
	tree := mst.Build(nil)
	if tree.Len() != 0 {
		t.Errorf("Build(nil): Len() got %v, want 0", tree.Len())
	}
}

func TestBuildSinglePoint(t *testing.T) {
	p := geom.Point{X: 1, Y: 1}
	tree := mst.Build([]geom.Point{p})
	if tree.Len() != 1 {
		t.Fatalf("Build: Len() got %v, want 1", tree.Len())
	}
	if got := tree.Adjacent(p); got != nil {
		t.Errorf("Adjacent(lone point): got %v, want nil", got)
	}
}

func TestBuildDedupesPositions(t *testing.T) {
	p := geom.Point{X: 5, Y: 5}
	tree := mst.Build([]geom.Point{p, p, p})
	if tree.Len() != 1 {
		t.Errorf("Build: Len() got %v, want 1 after deduping identical positions", tree.Len())
	}
}

func TestBuildConnectsLine(t *testing.T) {
	points := []geom.Point{
		{X: 0, Y: 0},
		{X: 100, Y: 0},
		{X: 200, Y: 0},
		{X: 300, Y: 0},
	}
	tree := mst.Build(points)
	if tree.Len() != len(points) {
		t.Fatalf("Build: Len() got %v, want %v", tree.Len(), len(points))
	}

	visited := map[geom.Point]bool{points[0]: true}
	queue := []geom.Point{points[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range tree.Adjacent(cur) {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	for _, p := range points {
		if !visited[p] {
			t.Errorf("Build: point %v unreachable from %v, tree is disconnected", p, points[0])
		}
	}
}

func TestBuildAdjacencyIsSymmetric(t *testing.T) {
	points := []geom.Point{
		{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 0, Y: 50}, {X: 50, Y: 50},
	}
	tree := mst.Build(points)
	for _, p := range points {
		for _, nb := range tree.Adjacent(p) {
			found := false
			for _, back := range tree.Adjacent(nb) {
				if back == p {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Adjacent(%v) lists %v, but Adjacent(%v) does not list %v back", p, nb, nb, p)
			}
		}
	}
}

// TestBuildIsExactOnADenseCluster packs more points into local
// proximity than a single relaxation step's starting candidate window
// covers, so a fixed-fanout nearest-neighbour approximation would
// silently miss the true minimum edge for some of them. Build's total
// tree weight must still match a brute-force Prim's run over the full
// O(n^2) neighbour set.
func TestBuildIsExactOnADenseCluster(t *testing.T) {
	const gridSide = 9 // 81 points, comfortably over the 48-candidate starting window
	points := make([]geom.Point, 0, gridSide*gridSide)
	for i := 0; i < gridSide; i++ {
		for j := 0; j < gridSide; j++ {
			points = append(points, geom.Point{X: int64(i * 10), Y: int64(j * 10)})
		}
	}
	// A handful of outliers far from the cluster, so the tree also has
	// to bridge long edges correctly rather than only ever relaxing
	// within one dense neighbourhood.
	points = append(points,
		geom.Point{X: 100000, Y: 0},
		geom.Point{X: -100000, Y: 50000},
		geom.Point{X: 50000, Y: 100000},
	)

	tree := mst.Build(points)
	if tree.Len() != len(points) {
		t.Fatalf("Build: Len() got %v, want %v", tree.Len(), len(points))
	}

	got := treeWeight(t, tree, points)
	want := bruteForceMSTWeight(points)
	if got != want {
		t.Errorf("Build: total tree weight got %v, want %v (brute-force minimum)", got, want)
	}
}

// bruteForceMSTWeight runs an unoptimised O(n^2) Prim's algorithm
// (relaxing against every unvisited point on every step, no spatial
// index involved) and returns the resulting tree's total squared-
// distance weight, as the ground truth for exactness comparisons.
func bruteForceMSTWeight(points []geom.Point) int64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	inTree := make([]bool, n)
	key := make([]int64, n)
	for i := range key {
		key[i] = points[0].DistanceSquared(points[i])
	}
	inTree[0] = true

	var total int64
	for count := 1; count < n; count++ {
		next := -1
		var bestKey int64 = math.MaxInt64
		for i, in := range inTree {
			if !in && key[i] < bestKey {
				bestKey = key[i]
				next = i
			}
		}
		inTree[next] = true
		total += key[next]
		for i, in := range inTree {
			if in {
				continue
			}
			if d := points[next].DistanceSquared(points[i]); d < key[i] {
				key[i] = d
			}
		}
	}
	return total
}

// treeWeight sums each edge's squared-distance weight exactly once,
// using Adjacent's symmetric listing to find and skip the reverse
// direction.
func treeWeight(t *testing.T, tree *mst.Tree, points []geom.Point) int64 {
	t.Helper()
	type edge struct{ a, b geom.Point }
	seen := make(map[edge]bool)
	var total int64
	for _, p := range points {
		for _, nb := range tree.Adjacent(p) {
			if seen[edge{nb, p}] {
				continue
			}
			seen[edge{p, nb}] = true
			total += p.DistanceSquared(nb)
		}
	}
	return total
}

func TestBuildEdgeCountIsNMinusOne(t *testing.T) {
	points := []geom.Point{
		{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}, {X: 30, Y: 10}, {X: 40, Y: 0},
	}
	tree := mst.Build(points)
	var edges int
	for _, p := range points {
		edges += len(tree.Adjacent(p))
	}
	edges /= 2
	if edges != len(points)-1 {
		t.Errorf("Build: got %d edges, want %d (a tree over %d points)", edges, len(points)-1, len(points))
	}
}
