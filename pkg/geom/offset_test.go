package geom_test

import (
	"testing"

	"github.com/latticeforge/treesupport/pkg/geom"
)

func TestOffsetExpand(t *testing.T) {
	ps := geom.Polygons{square(0, 0, 100)}
	got := geom.Offset(ps, 10, geom.JoinMiter)
	min, max, ok := got.BoundingBox()
	if !ok {
		t.Fatal("Offset: empty result")
	}
	if min.X > -9 || min.Y > -9 || max.X < 109 || max.Y < 109 {
		t.Errorf("Offset(+10, miter): bbox (%v, %v) does not look expanded by ~10", min, max)
	}
}

func TestOffsetErode(t *testing.T) {
	ps := geom.Polygons{square(0, 0, 100)}
	got := geom.Offset(ps, -10, geom.JoinMiter)
	min, max, ok := got.BoundingBox()
	if !ok {
		t.Fatal("Offset: empty result")
	}
	if min.X < 9 || min.Y < 9 || max.X > 91 || max.Y > 91 {
		t.Errorf("Offset(-10, miter): bbox (%v, %v) does not look eroded by ~10", min, max)
	}
}

func TestOffsetZeroIsClone(t *testing.T) {
	ps := geom.Polygons{square(0, 0, 100)}
	got := geom.Offset(ps, 0, geom.JoinRound)
	if len(got) != len(ps) || len(got[0]) != len(ps[0]) {
		t.Errorf("Offset(0): got %v, want an unchanged clone of %v", got, ps)
	}
}

func TestOffsetRoundStaysNearCircular(t *testing.T) {
	// A small square offset outward with round joins should produce a
	// rounder shape than the same offset with miter joins: round joins
	// add vertices at the corners, so the vertex count should grow.
	ps := geom.Polygons{square(0, 0, 10)}
	round := geom.Offset(ps, 50, geom.JoinRound)
	miter := geom.Offset(ps, 50, geom.JoinMiter)
	if len(round) == 0 || len(miter) == 0 {
		t.Fatal("Offset: empty result")
	}
	if len(round[0]) <= len(miter[0]) {
		t.Errorf("Offset round join should add corner vertices: round=%d vertices, miter=%d", len(round[0]), len(miter[0]))
	}
}
