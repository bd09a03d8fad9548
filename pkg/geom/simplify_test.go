package geom_test

import (
	"testing"

	"github.com/latticeforge/treesupport/pkg/geom"
)

func TestPolygonSimplifyRemovesColinearNoise(t *testing.T) {
	ring := geom.Polygon{
		{0, 0}, {50, 1}, {100, 0}, {100, 100}, {0, 100},
	}
	got := ring.Simplify(200, 5)
	if len(got) != 4 {
		t.Errorf("Simplify: got %d vertices, want 4 (near-colinear point dropped)", len(got))
	}
}

func TestPolygonSimplifyKeepsSharpDeviation(t *testing.T) {
	ring := geom.Polygon{
		{0, 0}, {50, 40}, {100, 0}, {100, 100}, {0, 100},
	}
	got := ring.Simplify(200, 5)
	if len(got) != 5 {
		t.Errorf("Simplify: got %d vertices, want 5 (sharp deviation kept)", len(got))
	}
}

func TestPolygonSimplifyNeverDropsBelowTriangle(t *testing.T) {
	ring := geom.Polygon{{0, 0}, {10, 0}, {5, 10}}
	got := ring.Simplify(1_000_000, 1_000_000)
	if len(got) != 3 {
		t.Errorf("Simplify: got %d vertices, want 3 (triangle floor)", len(got))
	}
}

func TestSmoothMergesTightVertices(t *testing.T) {
	ring := geom.Polygon{
		{0, 0}, {1, 1}, {2, 0}, {100, 0}, {100, 100}, {0, 100},
	}
	got := geom.Smooth(geom.Polygons{ring}, 5)
	if len(got) != 1 {
		t.Fatalf("Smooth: got %d rings, want 1", len(got))
	}
	if len(got[0]) >= len(ring) {
		t.Errorf("Smooth: got %d vertices, want fewer than input's %d", len(got[0]), len(ring))
	}
}

func TestSmoothIsStableOnAlreadySmoothRing(t *testing.T) {
	ring := square(0, 0, 1000)
	got := geom.Smooth(geom.Polygons{ring}, 5)
	if len(got) != 1 || len(got[0]) != len(ring) {
		t.Errorf("Smooth: a ring with no tight vertices should pass through unchanged, got %v", got)
	}
}
