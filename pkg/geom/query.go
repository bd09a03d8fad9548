package geom

import "math"

// Inside reports whether p lies inside the polygon set under the
// even-odd winding convention. borderCountsInside controls the
// result when p lies exactly on a boundary edge.
func Inside(p Point, ps Polygons, borderCountsInside bool) bool {
	inside := false
	for _, ring := range ps {
		crossings, onBorder := windingCrossings(p, ring)
		if onBorder {
			return borderCountsInside
		}
		if crossings%2 != 0 {
			inside = !inside
		}
	}
	return inside
}

// windingCrossings counts ray crossings of a horizontal ray cast from
// p to +X against every edge of ring, and reports whether p lies
// exactly on an edge.
func windingCrossings(p Point, ring Polygon) (crossings int, onBorder bool) {
	n := len(ring)
	if n < 3 {
		return 0, false
	}
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if onSegment(p, a, b) {
			return 0, true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			// Edge straddles the horizontal line through p; find the X
			// at which it crosses and compare against p.X.
			t := float64(p.Y-a.Y) / float64(b.Y-a.Y)
			xCross := float64(a.X) + t*float64(b.X-a.X)
			if float64(p.X) < xCross {
				crossings++
			}
		}
	}
	return crossings, false
}

// onSegment reports whether p lies exactly on the closed segment a-b.
func onSegment(p, a, b Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if cross != 0 {
		return false
	}
	minX, maxX := MinMaxInt64(a.X, b.X)
	minY, maxY := MinMaxInt64(a.Y, b.Y)
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

// ClosestPoint is the result of FindClosest: the nearest point on the
// polygon boundary and the edge (ring index, start vertex index) that
// hosts it.
type ClosestPoint struct {
	Point      Point
	RingIndex  int
	EdgeIndex  int
	DistanceSq int64
}

// FindClosest returns the closest boundary point of ps to p, and the
// edge that hosts it. ok is false if ps has no edges.
func FindClosest(p Point, ps Polygons) (ClosestPoint, bool) {
	best := ClosestPoint{DistanceSq: -1}
	found := false
	for ri, ring := range ps {
		n := len(ring)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			a := ring[i]
			b := ring[(i+1)%n]
			cp := closestOnSegment(p, a, b)
			d2 := p.DistanceSquared(cp)
			if !found || d2 < best.DistanceSq {
				best = ClosestPoint{Point: cp, RingIndex: ri, EdgeIndex: i, DistanceSq: d2}
				found = true
			}
		}
	}
	return best, found
}

// closestOnSegment returns the closest point to p on the closed
// segment a-b.
func closestOnSegment(p, a, b Point) Point {
	abx := float64(b.X - a.X)
	aby := float64(b.Y - a.Y)
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return a
	}
	apx := float64(p.X - a.X)
	apy := float64(p.Y - a.Y)
	t := (apx*abx + apy*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Point{
		X: a.X + int64(math.Round(t*abx)),
		Y: a.Y + int64(math.Round(t*aby)),
	}
}

// MoveInside moves p to distanceInside+1 microns inside ps, measured
// from the nearest boundary point, but never more than sqrt(maxStepSq)
// microns from p; when that clamp applies the result can still lie
// outside ps. It returns p unchanged if p is already inside and at
// least distanceInside from the boundary.
func MoveInside(ps Polygons, p Point, distanceInside int64, maxStepSq int64) Point {
	return ensureSide(ps, p, distanceInside, maxStepSq, true)
}

// MoveOutside is the mirror of MoveInside: it moves p to
// distanceOutside+1 microns outside ps, with the same clamp to
// sqrt(maxStepSq) microns from p.
func MoveOutside(ps Polygons, p Point, distanceOutside int64, maxStepSq int64) Point {
	return ensureSide(ps, p, distanceOutside, maxStepSq, false)
}

// EnsureInsideOrOutside nudges p along the direction away from the
// nearest boundary point (using the already-known closest point cp)
// so that it ends up on whichever side it currently occupies, pushed
// an additional distance micron further, clamped so the total move
// from p never exceeds maxStepSq.
func EnsureInsideOrOutside(ps Polygons, p Point, cp ClosestPoint, maxStepSq int64) Point {
	wantInside := Inside(p, ps, true)
	return ensureSide(ps, p, 0, maxStepSq, wantInside)
}

// ensureSide is the shared implementation backing MoveInside,
// MoveOutside and EnsureInsideOrOutside: find the closest boundary
// point, and if p is not currently on the requested side (or is on
// the right side but closer to the border than distance), push it
// across/past the border along the boundary normal, clamped to
// maxStepSq total displacement from the original p.
func ensureSide(ps Polygons, p Point, distance int64, maxStepSq int64, wantInside bool) Point {
	if len(ps) == 0 {
		return p
	}
	cp, ok := FindClosest(p, ps)
	if !ok {
		return p
	}
	isInside := Inside(p, ps, true)
	if isInside == wantInside && cp.DistanceSq >= distance*distance {
		return p
	}
	// Direction from the boundary point towards where we want to end up.
	dir := p.Sub(cp.Point)
	if dir.X == 0 && dir.Y == 0 {
		// p sits exactly on the boundary; fall back to the ring's outward
		// normal approximated from the hosting edge.
		dir = outwardEdgeNormal(ps[cp.RingIndex], cp.EdgeIndex)
	}
	if !wantInside {
		// dir already points away from the polygon if p was outside; if p
		// was inside we need to flip so we push towards the outside.
		if isInside {
			dir = Point{X: -dir.X, Y: -dir.Y}
		}
	} else if !isInside {
		dir = Point{X: -dir.X, Y: -dir.Y}
	}
	dir = Normal(dir, distance+1)
	candidate := cp.Point.Add(dir)
	if maxStepSq >= 0 && p.DistanceSquared(candidate) > maxStepSq {
		delta := Normal(candidate.Sub(p), int64(isqrt(maxStepSq)))
		candidate = p.Add(delta)
	}
	return candidate
}

// outwardEdgeNormal returns the outward-pointing unit-ish normal of
// the edge starting at ring[edgeIndex], scaled to a small integer
// vector suitable for Normal() to rescale.
func outwardEdgeNormal(ring Polygon, edgeIndex int) Point {
	n := len(ring)
	if n < 2 {
		return Point{X: 1, Y: 0}
	}
	a := ring[edgeIndex%n]
	b := ring[(edgeIndex+1)%n]
	edge := b.Sub(a)
	// Outward normal for a CCW (positive-area) ring is (dy, -dx).
	normal := Point{X: edge.Y, Y: -edge.X}
	if !ring.IsPositive() {
		normal = Point{X: -normal.X, Y: -normal.Y}
	}
	return normal
}

// isqrt returns floor(sqrt(x)) for x >= 0.
func isqrt(x int64) int64 {
	if x <= 0 {
		return 0
	}
	return int64(math.Sqrt(float64(x)))
}

// SplitIntoParts decomposes ps into simple polygons-with-holes, one
// group per connected outer contour: every positive-area ring becomes
// the outline of a new group, and every negative-area (hole) ring is
// assigned to the outer ring whose region contains it. Order is
// unspecified but stable within one call (outer rings are visited in
// their input order).
func SplitIntoParts(ps Polygons) []Polygons {
	var outers []int
	var holes []int
	for i, ring := range ps {
		if len(ring) < 3 {
			continue
		}
		if ring.IsPositive() {
			outers = append(outers, i)
		} else {
			holes = append(holes, i)
		}
	}

	parts := make([]Polygons, len(outers))
	for gi, oi := range outers {
		parts[gi] = Polygons{ps[oi]}
	}

	for _, hi := range holes {
		hole := ps[hi]
		rep := representativePoint(hole)
		best := -1
		var bestArea int64 = -1
		for gi, oi := range outers {
			if Inside(rep, Polygons{ps[oi]}, true) {
				area := ps[oi].SignedArea()
				if area < 0 {
					area = -area
				}
				// Prefer the smallest enclosing outer ring so nested
				// holes land in the innermost part that contains them.
				if best == -1 || area < bestArea {
					best = gi
					bestArea = area
				}
			}
		}
		if best >= 0 {
			parts[best] = append(parts[best], hole)
		}
	}
	return parts
}

// representativePoint returns a point guaranteed to lie inside ring,
// used to classify hole membership. It averages every vertex of the
// ring, which is sufficient for the convex-ish rings produced by
// offsetting; callers only use it for inside tests against other
// rings, not for anything requiring exactness.
func representativePoint(ring Polygon) Point {
	if len(ring) == 0 {
		return Point{}
	}
	var sx, sy int64
	n := int64(len(ring))
	for _, p := range ring {
		sx += p.X
		sy += p.Y
	}
	return Point{X: sx / n, Y: sy / n}
}
