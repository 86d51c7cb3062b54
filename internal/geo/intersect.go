package geo

import "github.com/paulmach/orb"

// Intersects reports whether geometry g intersects the polygon poly
// (normally a buffered route or avoid-candidate rectangle). orb does not
// ship a general polygon-intersection predicate, only the geometry types
// themselves, so this implements the narrow boolean test the planner
// actually needs: bbox short-circuit, then point-in-ring / segment-vs-ring
// tests depending on g's concrete type.
func Intersects(poly orb.Polygon, g orb.Geometry) bool {
	if len(poly) == 0 {
		return false
	}

	polyBound := poly.Bound()
	gBound := BoundOf(g)
	if gBound != (orb.Bound{}) && !polyBound.Intersects(gBound) {
		return false
	}

	switch t := g.(type) {
	case orb.Point:
		return pointInPolygon(poly, t)
	case orb.LineString:
		return lineIntersectsPolygon(poly, t)
	case orb.Polygon:
		return polygonsIntersect(poly, t)
	case orb.MultiPolygon:
		for _, p := range t {
			if polygonsIntersect(poly, p) {
				return true
			}
		}
		return false
	case orb.MultiLineString:
		for _, ls := range t {
			if lineIntersectsPolygon(poly, ls) {
				return true
			}
		}
		return false
	case orb.MultiPoint:
		for _, p := range t {
			if pointInPolygon(poly, p) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// pointInPolygon reports whether pt lies in poly's outer ring and not in
// any of its holes.
func pointInPolygon(poly orb.Polygon, pt orb.Point) bool {
	if len(poly) == 0 {
		return false
	}
	if !pointInRing(poly[0], pt) {
		return false
	}
	for _, hole := range poly[1:] {
		if pointInRing(hole, pt) {
			return false
		}
	}
	return true
}

// pointInRing implements the standard ray-casting point-in-polygon test.
func pointInRing(ring orb.Ring, pt orb.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt.Lon(), pt.Lat()

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon(), ring[i].Lat()
		xj, yj := ring[j].Lon(), ring[j].Lat()

		intersect := ((yi > y) != (yj > y)) &&
			(x < (xj-xi)*(y-yi)/(yj-yi)+xi)
		if intersect {
			inside = !inside
		}
	}
	return inside
}

func lineIntersectsPolygon(poly orb.Polygon, ls orb.LineString) bool {
	for _, p := range ls {
		if pointInPolygon(poly, p) {
			return true
		}
	}
	for i := 0; i+1 < len(ls); i++ {
		for _, ring := range poly {
			if segmentIntersectsRing(ring, ls[i], ls[i+1]) {
				return true
			}
		}
	}
	return false
}

func polygonsIntersect(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, p := range b[0] {
		if pointInPolygon(a, p) {
			return true
		}
	}
	for _, p := range a[0] {
		if pointInPolygon(b, p) {
			return true
		}
	}
	for _, ringA := range a {
		for i := 0; i+1 < len(ringA); i++ {
			for _, ringB := range b {
				if segmentIntersectsRing(ringB, ringA[i], ringA[i+1]) {
					return true
				}
			}
		}
	}
	return false
}

func segmentIntersectsRing(ring orb.Ring, p1, p2 orb.Point) bool {
	for i := 0; i+1 < len(ring); i++ {
		if segmentsIntersect(p1, p2, ring[i], ring[i+1]) {
			return true
		}
	}
	return false
}

// segmentsIntersect is the standard orientation-based segment intersection
// test, including the collinear-overlap edge cases.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	o1 := orientation(p1, p2, p3)
	o2 := orientation(p1, p2, p4)
	o3 := orientation(p3, p4, p1)
	o4 := orientation(p3, p4, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	if o1 == 0 && onSegment(p1, p3, p2) {
		return true
	}
	if o2 == 0 && onSegment(p1, p4, p2) {
		return true
	}
	if o3 == 0 && onSegment(p3, p1, p4) {
		return true
	}
	if o4 == 0 && onSegment(p3, p2, p4) {
		return true
	}
	return false
}

// orientation returns 0 if p,q,r are collinear, 1 for clockwise, 2 for
// counter-clockwise.
func orientation(p, q, r orb.Point) int {
	val := (q.Lat()-p.Lat())*(r.Lon()-q.Lon()) - (q.Lon()-p.Lon())*(r.Lat()-q.Lat())
	switch {
	case val == 0:
		return 0
	case val > 0:
		return 1
	default:
		return 2
	}
}

// onSegment assumes p,q,r are collinear and reports whether q lies on
// segment pr.
func onSegment(p, q, r orb.Point) bool {
	return q.Lon() <= max(p.Lon(), r.Lon()) && q.Lon() >= min(p.Lon(), r.Lon()) &&
		q.Lat() <= max(p.Lat(), r.Lat()) && q.Lat() >= min(p.Lat(), r.Lat())
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
