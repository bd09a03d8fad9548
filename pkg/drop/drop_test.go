package drop

import (
	"math"
	"testing"

	"github.com/latticeforge/treesupport/pkg/field"
	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/slicedata"
	"github.com/latticeforge/treesupport/pkg/treenode"
)

func rect(x0, y0, x1, y1 int64) geom.Polygon {
	return geom.Polygon{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestClosestPart(t *testing.T) {
	parts := []geom.Polygons{
		{rect(0, 0, 100, 100)},
		{rect(1000, 1000, 1100, 1100)},
	}

	if got := closestPart(geom.Point{X: 50, Y: 50}, parts); got != 0 {
		t.Errorf("closestPart(inside part 0): got %v, want 0", got)
	}
	if got := closestPart(geom.Point{X: 1050, Y: 1050}, parts); got != 1 {
		t.Errorf("closestPart(inside part 1): got %v, want 1", got)
	}
	// Outside both: nearer to part 0's boundary.
	if got := closestPart(geom.Point{X: 200, Y: 50}, parts); got != 0 {
		t.Errorf("closestPart(nearest part 0): got %v, want 0", got)
	}
}

func TestClosestPartEmpty(t *testing.T) {
	if got := closestPart(geom.Point{X: 0, Y: 0}, nil); got != -1 {
		t.Errorf("closestPart(no parts): got %v, want -1", got)
	}
}

func TestBucketNodesBuildplateRoutesToZero(t *testing.T) {
	layer := treenode.NewLayer()
	layer.Upsert(treenode.Node{Position: geom.Point{X: 0, Y: 0}, ToBuildplate: true})
	parts := []geom.Polygons{{rect(0, 0, 100, 100)}}
	cfg := slicedata.Config{SupportType: slicedata.SupportEverywhere}

	buckets := bucketNodes(layer, parts, cfg)
	if len(buckets[0]) != 1 {
		t.Errorf("bucketNodes: bucket 0 got %d nodes, want 1", len(buckets[0]))
	}
}

func TestBucketNodesRestingNodeRoutesToPart(t *testing.T) {
	layer := treenode.NewLayer()
	layer.Upsert(treenode.Node{Position: geom.Point{X: 50, Y: 50}, ToBuildplate: false})
	parts := []geom.Polygons{{rect(0, 0, 100, 100)}}
	cfg := slicedata.Config{SupportType: slicedata.SupportEverywhere}

	buckets := bucketNodes(layer, parts, cfg)
	if len(buckets[0]) != 0 {
		t.Errorf("bucketNodes: bucket 0 got %d nodes, want 0", len(buckets[0]))
	}
	if len(buckets[1]) != 1 {
		t.Errorf("bucketNodes: bucket 1 got %d nodes, want 1", len(buckets[1]))
	}
}

func TestBucketNodesBuildplateOnlyDropsRestingNodes(t *testing.T) {
	layer := treenode.NewLayer()
	layer.Upsert(treenode.Node{Position: geom.Point{X: 50, Y: 50}, ToBuildplate: false})
	parts := []geom.Polygons{{rect(0, 0, 100, 100)}}
	cfg := slicedata.Config{SupportType: slicedata.SupportBuildplateOnly}

	buckets := bucketNodes(layer, parts, cfg)
	var total int
	for _, b := range buckets {
		total += len(b)
	}
	if total != 0 {
		t.Errorf("bucketNodes: buildplate-only policy should drop every resting node, got %d total", total)
	}
}

func TestMergeDyadTakesMax(t *testing.T) {
	n := treenode.Node{DistanceToTop: 2, SupportRoofLayersBelow: 0, SkinDirection: true}
	other := treenode.Node{DistanceToTop: 5, SupportRoofLayersBelow: 3, SkinDirection: false}

	merged := mergeDyad(n, other)
	if merged.DistanceToTop != 5 {
		t.Errorf("mergeDyad: DistanceToTop got %v, want 5 (max)", merged.DistanceToTop)
	}
	if merged.SupportRoofLayersBelow != 3 {
		t.Errorf("mergeDyad: SupportRoofLayersBelow got %v, want 3 (max)", merged.SupportRoofLayersBelow)
	}
	if merged.SkinDirection != true {
		t.Errorf("mergeDyad: SkinDirection got %v, want true (inherited from n)", merged.SkinDirection)
	}
}

func TestAbsorbKeepsPosition(t *testing.T) {
	n := treenode.Node{Position: geom.Point{X: 10, Y: 10}, DistanceToTop: 1}
	other := treenode.Node{Position: geom.Point{X: 999, Y: 999}, DistanceToTop: 4}

	got := absorb(n, other)
	if got.Position != (geom.Point{X: 10, Y: 10}) {
		t.Errorf("absorb: position got %v, want unchanged {10 10}", got.Position)
	}
	if got.DistanceToTop != 4 {
		t.Errorf("absorb: DistanceToTop got %v, want 4 (max)", got.DistanceToTop)
	}
}

func TestRelaxPositionLoneNeighbourStaysPut(t *testing.T) {
	p := geom.Point{X: 0, Y: 0}
	neighbours := []geom.Point{{X: 10, Y: 0}}
	got := relaxPosition(p, neighbours, 100)
	if got != p {
		t.Errorf("relaxPosition: lone near neighbour, got %v, want unchanged %v", got, p)
	}
}

func TestRelaxPositionMovesTowardNeighbours(t *testing.T) {
	p := geom.Point{X: 0, Y: 0}
	neighbours := []geom.Point{{X: 1000, Y: 0}, {X: 1000, Y: 0}}
	got := relaxPosition(p, neighbours, 50)
	if got.X <= 0 {
		t.Errorf("relaxPosition: expected movement toward neighbours along +X, got %v", got)
	}
	if d := p.Distance(got); d > 51 {
		t.Errorf("relaxPosition: moved %v microns, want clamped to ~50", d)
	}
}

func TestDropBucketProducesDescendants(t *testing.T) {
	p := field.NewParams(slicedata.Config{
		SupportTreeBranchDiameter:      2000,
		SupportTreeAngle:               45 * math.Pi / 180,
		SupportTreeCollisionResolution: 500,
		LayerHeight:                    200,
	}, 5)

	nodes := []treenode.Node{
		{Position: geom.Point{X: 0, Y: 0}, ToBuildplate: true},
		{Position: geom.Point{X: 100000, Y: 100000}, ToBuildplate: true},
	}
	below := treenode.NewLayer()

	emptyField := make(field.Field, p.RSamples)
	for s := range emptyField {
		emptyField[s] = make([]geom.Polygons, 5)
	}
	fields := Fields{Collision: emptyField, Avoidance: emptyField, InternalGuide: emptyField}

	dropBucket(p, slicedata.Config{}, 4, 0, nodes, below, fields)

	if below.Len() != 2 {
		t.Errorf("dropBucket: below layer got %d nodes, want 2 (no merge, far apart)", below.Len())
	}
	for _, n := range below.All() {
		if n.DistanceToTop != 1 {
			t.Errorf("dropBucket: descendant DistanceToTop got %v, want 1", n.DistanceToTop)
		}
	}
}
