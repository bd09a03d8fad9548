package geom

// This file implements polygon set algebra (union, difference,
// intersection) with the Greiner-Hormann clipping algorithm, which
// splices edge intersections into both rings' vertex lists and walks
// them; it is not the Vatti-style sweep of the Clipper library this
// package's contract is modelled on
// (see other_examples/ctessum-go.clipper__clipper.go in the retrieval
// pack this module was built from). Clipper itself builds a full
// active-edge-list sweep so it can clip many contours with holes in
// one pass; this package instead reduces a Polygons set pairwise,
// ring against ring, which is enough for the shapes this planner
// produces (single-outline layers, offset results, and small counts
// of machine-border rings) without requiring a general-purpose
// polyline arrangement structure.

const clipEpsilon = 1e-7

type clipOp int

const (
	opUnion clipOp = iota
	opIntersection
	opDifference
)

// Union returns the union of a and b.
func Union(a, b Polygons) Polygons {
	return clipMany(a, b, opUnion)
}

// Difference returns a minus b.
func Difference(a, b Polygons) Polygons {
	return clipMany(a, b, opDifference)
}

// Intersection returns the intersection of a and b.
func Intersection(a, b Polygons) Polygons {
	return clipMany(a, b, opIntersection)
}

// clipMany folds b into a ring-by-ring. Each ring of the accumulator
// is clipped against each ring of b in turn; union accumulates
// leftover disjoint material from b at the end, difference and
// intersection do not (a ring of b with no overlap contributes
// nothing to either).
func clipMany(a, b Polygons, op clipOp) Polygons {
	acc := a.Clone()
	if len(acc) == 0 {
		if op == opUnion {
			return b.Clone()
		}
		return Polygons{}
	}
	if len(b) == 0 {
		if op == opDifference || op == opUnion {
			return acc
		}
		return Polygons{}
	}

	for _, bRing := range b {
		acc = clipAccumulatorByRing(acc, bRing, op)
	}
	return normalize(acc)
}

// clipAccumulatorByRing clips every ring currently in acc against a
// single ring of the other operand, folding the (possibly several)
// resulting rings back into a flat Polygons value.
func clipAccumulatorByRing(acc Polygons, other Polygon, op clipOp) Polygons {
	var result Polygons
	consumedOther := false
	for _, ring := range acc {
		pieces, consumedThis := clipRingPair(ring, other, op)
		result = append(result, pieces...)
		if consumedThis {
			consumedOther = true
		}
	}
	if op == opUnion && !consumedOther && len(other) >= 3 {
		result = append(result, append(Polygon(nil), other...))
	}
	return result
}

// clipRingPair applies the requested boolean op to a single pair of
// rings. consumed reports whether `other` was topologically merged
// into the result (used by the caller to decide whether to also keep
// `other` standalone for a union).
func clipRingPair(subject, other Polygon, op clipOp) (Polygons, bool) {
	if len(subject) < 3 || len(other) < 3 {
		return Polygons{append(Polygon(nil), subject...)}, false
	}

	sv, ov, anyIntersection := buildVertexLists(subject, other)
	if !anyIntersection {
		return clipDisjointOrNested(subject, other, op)
	}

	markEntryExit(sv, ov, subject, other, op)
	rings := traceClipResult(sv, ov)
	if len(rings) == 0 {
		// Degenerate intersection set (e.g. touching at a single point);
		// fall back to the containment-based resolution.
		return clipDisjointOrNested(subject, other, op)
	}
	return rings, true
}

// clipDisjointOrNested resolves the boolean op for two rings that
// share no proper edge crossing: either they are disjoint, or one
// wholly contains the other. A ring can only contain a ring of no
// larger area, which keeps a large ring whose representative point
// falls inside a smaller one from being read as nested in it.
func clipDisjointOrNested(subject, other Polygon, op clipOp) (Polygons, bool) {
	subjectArea, otherArea := subject.SignedArea(), other.SignedArea()
	if subjectArea < 0 {
		subjectArea = -subjectArea
	}
	if otherArea < 0 {
		otherArea = -otherArea
	}
	subjectInOther := subjectArea <= otherArea && Inside(representativePoint(subject), Polygons{other}, true)
	otherInSubject := otherArea <= subjectArea && Inside(representativePoint(other), Polygons{subject}, true)

	switch op {
	case opUnion:
		switch {
		case subjectInOther:
			return Polygons{append(Polygon(nil), other...)}, true
		case otherInSubject:
			return Polygons{append(Polygon(nil), subject...)}, true
		default:
			return Polygons{append(Polygon(nil), subject...)}, false
		}
	case opIntersection:
		switch {
		case subjectInOther:
			return Polygons{append(Polygon(nil), subject...)}, true
		case otherInSubject:
			return Polygons{append(Polygon(nil), other...)}, true
		default:
			return Polygons{}, true
		}
	case opDifference:
		switch {
		case subjectInOther:
			return Polygons{}, true
		case otherInSubject:
			hole := other
			if hole.IsPositive() {
				hole = hole.Reverse()
			}
			return Polygons{append(Polygon(nil), subject...), append(Polygon(nil), hole...)}, true
		default:
			return Polygons{append(Polygon(nil), subject...)}, false
		}
	}
	return Polygons{append(Polygon(nil), subject...)}, false
}

// vertex is one node of a Greiner-Hormann augmented vertex list: it
// is either an original polygon vertex or a synthetic intersection
// point spliced in along an edge.
type vertex struct {
	p           Point
	isIntersect bool
	entry       bool
	alpha       float64 // parameter along the source edge, for sorting
	neighbor    int     // index of the matching vertex in the other list, for intersections
	visited     bool
}

// buildVertexLists computes every proper intersection between the
// edges of subject and other, and returns both rings represented as
// augmented vertex lists with the intersections spliced in in
// boundary order. anyIntersection is false if no proper crossing was
// found.
func buildVertexLists(subject, other Polygon) (sv, ov []vertex, anyIntersection bool) {
	type hit struct {
		sEdge, oEdge int
		sAlpha, oAlpha float64
		p Point
	}
	var hits []hit

	ns, no := len(subject), len(other)
	for i := 0; i < ns; i++ {
		a0, a1 := subject[i], subject[(i+1)%ns]
		for j := 0; j < no; j++ {
			b0, b1 := other[j], other[(j+1)%no]
			if t, u, p, ok := segmentIntersection(a0, a1, b0, b1); ok {
				hits = append(hits, hit{i, j, t, u, p})
			}
		}
	}
	if len(hits) == 0 {
		return nil, nil, false
	}

	sv = seedVertexList(subject)
	ov = seedVertexList(other)

	for _, h := range hits {
		si := insertIntersection(&sv, h.sEdge, h.sAlpha, h.p)
		oi := insertIntersection(&ov, h.oEdge, h.oAlpha, h.p)
		sv[si].neighbor = oi
		ov[oi].neighbor = si
	}
	return sv, ov, true
}

func seedVertexList(ring Polygon) []vertex {
	vs := make([]vertex, len(ring))
	for i, p := range ring {
		vs[i] = vertex{p: p}
	}
	return vs
}

// insertIntersection splices an intersection vertex at parameter
// alpha along the edge starting at original vertex index edge,
// keeping the list sorted by (edge, alpha), and returns its final
// index.
func insertIntersection(vs *[]vertex, edge int, alpha float64, p Point) int {
	// Find the current position of the edge's start vertex (original
	// vertices keep edge provenance implicitly by staying in order; we
	// scan for the run of synthetic vertices already inserted after it).
	pos := indexOfEdgeStart(*vs, edge)
	insertAt := pos + 1
	for insertAt < len(*vs) && (*vs)[insertAt].isIntersect && edgeAlphaOf(*vs, insertAt) < alpha {
		insertAt++
	}
	nv := vertex{p: p, isIntersect: true, alpha: alpha}
	*vs = append(*vs, vertex{})
	copy((*vs)[insertAt+1:], (*vs)[insertAt:])
	(*vs)[insertAt] = nv
	return insertAt
}

// indexOfEdgeStart returns the index of the original (non-synthetic)
// vertex that starts edge number `edge` in the original polygon.
func indexOfEdgeStart(vs []vertex, edge int) int {
	count := -1
	for i, v := range vs {
		if !v.isIntersect {
			count++
			if count == edge {
				return i
			}
		}
	}
	// Edge index wrapped past the last original vertex; start of the
	// closing edge is the last original vertex in the list.
	last := 0
	for i, v := range vs {
		if !v.isIntersect {
			last = i
		}
	}
	return last
}

// edgeAlphaOf approximates the sort key for an already-inserted
// synthetic vertex so later insertions on the same edge land in
// parameter order. Since synthetic vertices don't carry their edge's
// start separately, we reuse the stored alpha directly.
func edgeAlphaOf(vs []vertex, i int) float64 {
	return vs[i].alpha
}

// segmentIntersection computes the proper intersection of segments
// a0-a1 and b0-b1, if any, returning the parametric positions t, u in
// [0,1] along each segment and the rounded intersection point.
func segmentIntersection(a0, a1, b0, b1 Point) (t, u float64, p Point, ok bool) {
	d1x, d1y := float64(a1.X-a0.X), float64(a1.Y-a0.Y)
	d2x, d2y := float64(b1.X-b0.X), float64(b1.Y-b0.Y)
	denom := d1x*d2y - d1y*d2x
	if denom > -clipEpsilon && denom < clipEpsilon {
		return 0, 0, Point{}, false // parallel or collinear; treated as no proper crossing
	}
	ex, ey := float64(b0.X-a0.X), float64(b0.Y-a0.Y)
	t = (ex*d2y - ey*d2x) / denom
	u = (ex*d1y - ey*d1x) / denom
	if t <= clipEpsilon || t >= 1-clipEpsilon || u <= clipEpsilon || u >= 1-clipEpsilon {
		return 0, 0, Point{}, false
	}
	px := float64(a0.X) + t*d1x
	py := float64(a0.Y) + t*d1y
	return t, u, Point{X: int64(px), Y: int64(py)}, true
}

// markEntryExit classifies each synthetic intersection vertex on both
// lists as an "entry" (the subject curve is about to enter the other
// polygon) or "exit", following the standard Greiner-Hormann rule:
// the first intersection's status is found with a point-in-polygon
// test, then status alternates along the list.
func markEntryExit(sv, ov []vertex, subject, other Polygon, op clipOp) {
	startInside := Inside(midpointBefore(sv, 0), Polygons{other}, true)
	entry := !startInside
	for i := range sv {
		if sv[i].isIntersect {
			sv[i].entry = entry
			entry = !entry
		}
	}
	startInsideOther := Inside(midpointBefore(ov, 0), Polygons{subject}, true)
	entry = !startInsideOther
	for i := range ov {
		if ov[i].isIntersect {
			ov[i].entry = entry
			entry = !entry
		}
	}

	// The trace in traceClipResult always walks forward from an entry
	// and backward from an exit, which by itself produces the
	// intersection of subject and other. Union and difference are
	// obtained from the same trace by flipping the marks, following
	// the standard Greiner-Hormann adaptation: flip both lists for a
	// union, flip only the clip list for a difference.
	switch op {
	case opUnion:
		flipEntries(sv)
		flipEntries(ov)
	case opDifference:
		flipEntries(ov)
	case opIntersection:
		// No adjustment.
	}
}

func flipEntries(vs []vertex) {
	for i := range vs {
		if vs[i].isIntersect {
			vs[i].entry = !vs[i].entry
		}
	}
}

// midpointBefore returns a point just after vertex 0 of vs, used to
// probe which side of the other polygon the list begins on.
func midpointBefore(vs []vertex, i int) Point {
	if len(vs) == 0 {
		return Point{}
	}
	a := vs[i].p
	b := vs[(i+1)%len(vs)].p
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// traceClipResult walks the augmented vertex lists and emits the
// resulting rings. The three boolean ops share this single trace;
// markEntryExit already flipped the entry/exit marks appropriately
// per op before this runs, so the trace itself only needs the
// classic rule: switch lists at every intersection, and walk forward
// from an entry mark, backward from an exit mark.
func traceClipResult(sv, ov []vertex) Polygons {
	var result Polygons
	for startIdx := range sv {
		if !sv[startIdx].isIntersect || sv[startIdx].visited {
			continue
		}
		var ring Polygon
		cur, onSubject := startIdx, true
		list := sv
		for {
			v := &list[cur]
			if v.isIntersect {
				if v.visited {
					break
				}
				v.visited = true
			}
			ring = append(ring, v.p)
			if v.isIntersect {
				// Switch to the other list at its matching vertex.
				onSubject = !onSubject
				if onSubject {
					list = sv
				} else {
					list = ov
				}
				cur = v.neighbor
				// Step forward or backward depending on this vertex's
				// entry/exit flag: entry means keep moving forward.
				if list[cur].entry {
					cur = (cur + 1) % len(list)
				} else {
					cur = (cur - 1 + len(list)) % len(list)
				}
				continue
			}
			cur = (cur + 1) % len(list)
			if cur == startIdx && onSubject {
				break
			}
		}
		if len(ring) >= 3 {
			result = append(result, ring)
		}
	}
	return result
}

// normalize drops degenerate rings (fewer than three points) produced
// by clipping; it leaves ring orientation as it is.
func normalize(ps Polygons) Polygons {
	var out Polygons
	for _, ring := range ps {
		if len(ring) < 3 {
			continue
		}
		out = append(out, ring)
	}
	return out
}
