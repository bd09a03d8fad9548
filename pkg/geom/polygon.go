package geom

// Polygon is a closed, ordered ring of points. The last point is
// implicitly connected back to the first; rings never repeat their
// start point. Orientation carries meaning: a ring with positive
// signed area is an outer boundary, a ring with negative signed area
// is a hole. SplitIntoParts and Offset rely on that orientation;
// Inside ignores it and tests containment under the even-odd rule.
type Polygon []Point

// Polygons is an unordered set of rings. Inside reads the set under
// the even-odd rule. Union, Difference and Intersection do not
// reorient their results afterwards; the one orientation they set is
// that of a hole Difference carves out of a ring, which comes out
// negative.
type Polygons []Polygon

// SignedArea returns twice the signed area of the ring (the shoelace
// sum, not divided by two) so that callers comparing orientation can
// stay in integer arithmetic. Positive means counter-clockwise under
// the package's Y-up convention.
func (p Polygon) SignedArea() int64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum int64
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum
}

// IsPositive reports whether the ring winds counter-clockwise (an
// outer boundary under this package's convention).
func (p Polygon) IsPositive() bool {
	return p.SignedArea() > 0
}

// Reverse returns the ring with its point order reversed, flipping
// its orientation.
func (p Polygon) Reverse() Polygon {
	out := make(Polygon, len(p))
	n := len(p)
	for i, pt := range p {
		out[n-1-i] = pt
	}
	return out
}

// BoundingBox returns the axis-aligned bounding box of the ring.
// ok is false for an empty ring.
func (p Polygon) BoundingBox() (min, max Point, ok bool) {
	if len(p) == 0 {
		return Point{}, Point{}, false
	}
	min, max = p[0], p[0]
	for _, pt := range p[1:] {
		if pt.X < min.X {
			min.X = pt.X
		}
		if pt.Y < min.Y {
			min.Y = pt.Y
		}
		if pt.X > max.X {
			max.X = pt.X
		}
		if pt.Y > max.Y {
			max.Y = pt.Y
		}
	}
	return min, max, true
}

// BoundingBox returns the axis-aligned bounding box across every
// ring. ok is false for an empty set.
func (ps Polygons) BoundingBox() (min, max Point, ok bool) {
	for _, ring := range ps {
		rMin, rMax, rOK := ring.BoundingBox()
		if !rOK {
			continue
		}
		if !ok {
			min, max, ok = rMin, rMax, true
			continue
		}
		if rMin.X < min.X {
			min.X = rMin.X
		}
		if rMin.Y < min.Y {
			min.Y = rMin.Y
		}
		if rMax.X > max.X {
			max.X = rMax.X
		}
		if rMax.Y > max.Y {
			max.Y = rMax.Y
		}
	}
	return min, max, ok
}

// Empty reports whether the set has no ring of three or more points.
func (ps Polygons) Empty() bool {
	for _, ring := range ps {
		if len(ring) >= 3 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (ps Polygons) Clone() Polygons {
	out := make(Polygons, len(ps))
	for i, ring := range ps {
		out[i] = append(Polygon(nil), ring...)
	}
	return out
}

// Area returns the net signed area of the set (outer rings minus
// holes), useful for quick "is this bigger than that" comparisons.
func (ps Polygons) Area() float64 {
	var total int64
	for _, ring := range ps {
		total += ring.SignedArea()
	}
	return float64(total) / 2
}
