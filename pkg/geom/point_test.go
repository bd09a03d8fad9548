package geom_test

import (
	"math"
	"testing"

	"github.com/latticeforge/treesupport/pkg/geom"
)

func TestPointArithmetic(t *testing.T) {
	a := geom.Point{X: 3, Y: 4}
	b := geom.Point{X: 1, Y: 2}

	if got := a.Add(b); got != (geom.Point{X: 4, Y: 6}) {
		t.Errorf("Add: got %v, want {4 6}", got)
	}
	if got := a.Sub(b); got != (geom.Point{X: 2, Y: 2}) {
		t.Errorf("Sub: got %v, want {2 2}", got)
	}
}

func TestPointDistanceSquared(t *testing.T) {
	a := geom.Point{X: 0, Y: 0}
	b := geom.Point{X: 3, Y: 4}
	if got := a.DistanceSquared(b); got != 25 {
		t.Errorf("DistanceSquared: got %v, want 25", got)
	}
	if got := a.Distance(b); got != 5 {
		t.Errorf("Distance: got %v, want 5", got)
	}
}

func TestPointCrossDot(t *testing.T) {
	a := geom.Point{X: 1, Y: 0}
	b := geom.Point{X: 0, Y: 1}
	if got := a.Cross(b); got != 1 {
		t.Errorf("Cross: got %v, want 1", got)
	}
	if got := a.Dot(b); got != 0 {
		t.Errorf("Dot: got %v, want 0", got)
	}
}

func TestPointRotate(t *testing.T) {
	p := geom.Point{X: 1000, Y: 0}
	got := p.Rotate(math.Pi / 2)
	if got.X < -2 || got.X > 2 || got.Y < 998 || got.Y > 1002 {
		t.Errorf("Rotate(pi/2): got %v, want ~{0 1000}", got)
	}
}

func TestNormal(t *testing.T) {
	tests := []struct {
		name      string
		p         geom.Point
		maxLength int64
		wantZero  bool
	}{
		{"zero vector", geom.Point{X: 0, Y: 0}, 100, true},
		{"already under max", geom.Point{X: 3, Y: 4}, 100, false},
		{"clamped", geom.Point{X: 300, Y: 400}, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geom.Normal(tt.p, tt.maxLength)
			if tt.wantZero {
				if got != (geom.Point{}) {
					t.Errorf("Normal(%v, %v): got %v, want zero", tt.p, tt.maxLength, got)
				}
				return
			}
			length := math.Sqrt(float64(got.X*got.X + got.Y*got.Y))
			if length > float64(tt.maxLength)+1 {
				t.Errorf("Normal(%v, %v): length %v exceeds max %v", tt.p, tt.maxLength, length, tt.maxLength)
			}
		})
	}
}

func TestMinMaxInt64(t *testing.T) {
	tests := []struct {
		a, b         int64
		wantMin, wantMax int64
	}{
		{1, 2, 1, 2},
		{2, 1, 1, 2},
		{5, 5, 5, 5},
		{-3, 3, -3, 3},
	}
	for _, tt := range tests {
		min, max := geom.MinMaxInt64(tt.a, tt.b)
		if min != tt.wantMin || max != tt.wantMax {
			t.Errorf("MinMaxInt64(%v, %v): got (%v, %v), want (%v, %v)", tt.a, tt.b, min, max, tt.wantMin, tt.wantMax)
		}
	}
}
