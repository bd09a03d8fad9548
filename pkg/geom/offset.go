package geom

import "math"

// JoinType selects how convex corners are extended during Offset.
// Round joins are what §4.1 requires for branch-collision
// construction so that inflated cross-sections stay near-circular;
// Miter extends each corner along the bisector of its two edges. The
// machine-volume border does not go through Offset; it builds its
// rings directly.
type JoinType int

const (
	JoinRound JoinType = iota
	JoinMiter
)

// offsetArcSegments controls how many line segments approximate a
// round join; matches the reference clipper's practice of
// approximating arcs with short segments rather than true curves.
const offsetArcSegments = 8

// Offset returns the Minkowski expansion (delta > 0) or erosion
// (delta < 0) of ps by delta microns. Each input ring is offset
// independently and the results are unioned back together, which
// cleans up the overlaps that naive per-ring offsetting produces when
// nearby rings grow into each other.
func Offset(ps Polygons, delta int64, join JoinType) Polygons {
	if delta == 0 {
		return ps.Clone()
	}
	var out Polygons
	for _, ring := range ps {
		offsetRing := offsetOneRing(ring, delta, join)
		if len(offsetRing) >= 3 {
			out = append(out, offsetRing)
		}
	}
	return selfUnion(out)
}

// selfUnion merges every ring in ps against every other, resolving
// the overlaps that independent per-ring offsetting can introduce.
func selfUnion(ps Polygons) Polygons {
	if len(ps) <= 1 {
		return ps
	}
	acc := Polygons{ps[0]}
	for _, ring := range ps[1:] {
		acc = Union(acc, Polygons{ring})
	}
	return acc
}

// offsetOneRing displaces every vertex of ring outward (delta > 0) or
// inward (delta < 0) along the averaged normal of its two incident
// edges, inserting an arc of short segments at convex corners when
// join is JoinRound.
func offsetOneRing(ring Polygon, delta int64, join JoinType) Polygon {
	n := len(ring)
	if n < 3 {
		return nil
	}
	// unitNormal points to the right of travel, which is away from the
	// enclosed region both on positive outer rings and on negative
	// holes, so a positive delta grows outer rings and erodes holes.
	edgeNormals := make([][2]float64, n)
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		nx, ny := unitNormal(a, b)
		edgeNormals[i] = [2]float64{nx, ny}
	}

	var out Polygon
	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		n0 := edgeNormals[prev]
		n1 := edgeNormals[i]
		p := ring[i]

		// The enclosed region lies left of travel on every ring, so a
		// left turn (negative cross product of the incident edge
		// directions) is a convex corner of the region.
		aPrev := ring[prev]
		aNext := ring[(i+1)%n]
		turn := aPrev.Sub(p).Cross(aNext.Sub(p))
		convex := turn < 0

		d := float64(delta)
		if join == JoinRound && convex && d > 0 {
			out = append(out, arcBetween(p, n0, n1, d)...)
		} else {
			mx, my := averageNormal(n0, n1)
			out = append(out, Point{
				X: p.X + int64(math.Round(mx*d)),
				Y: p.Y + int64(math.Round(my*d)),
			})
		}
	}
	return out
}

// unitNormal returns the outward unit normal of edge a->b for a
// positively-wound (CCW, Y-up) ring: rotate the edge direction -90°.
func unitNormal(a, b Point) (nx, ny float64) {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0
	}
	return dy / length, -dx / length
}

// averageNormal returns the miter vector (a+b)/(1+a·b) of two unit
// normals, used to displace a vertex so both incident edges move by
// the same perpendicular distance. Its length is capped at 2 so that
// near-reversing corners do not grow long spikes.
func averageNormal(a, b [2]float64) (mx, my float64) {
	const maxMiter = 2.0
	mx, my = a[0]+b[0], a[1]+b[1]
	denom := 1 + a[0]*b[0] + a[1]*b[1]
	if denom < 1e-9 {
		return a[0], a[1]
	}
	scale := 1 / denom
	if length := math.Hypot(mx, my) * scale; length > maxMiter {
		scale *= maxMiter / length
	}
	return mx * scale, my * scale
}

// arcBetween inserts offsetArcSegments short segments approximating
// the round join at a convex corner between the two edge normals,
// matching the reference clipper's DoRound behaviour.
func arcBetween(center Point, n0, n1 [2]float64, radius float64) Polygon {
	a0 := math.Atan2(n0[1], n0[0])
	a1 := math.Atan2(n1[1], n1[0])
	for a1 < a0 {
		a1 += 2 * math.Pi
	}
	var out Polygon
	steps := offsetArcSegments
	for s := 0; s <= steps; s++ {
		t := a0 + (a1-a0)*float64(s)/float64(steps)
		out = append(out, Point{
			X: center.X + int64(math.Round(math.Cos(t)*radius)),
			Y: center.Y + int64(math.Round(math.Sin(t)*radius)),
		})
	}
	return out
}
