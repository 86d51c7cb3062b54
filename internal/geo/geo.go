// Package geo provides the geometry primitives the route planner needs:
// great-circle distance, metre-based buffering, bounding boxes, polyline
// tiling and a generic-geometry intersection predicate. It builds on
// github.com/paulmach/orb's geometry types, which model points, lines and
// polygons but do not themselves offer metric buffering, haversine distance
// or an intersection test — those are implemented here directly.
package geo

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used for all great-circle math.
const EarthRadiusKm = 6371.0

const kmPerDegreeLat = 111.32

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b orb.Point) float64 {
	lat1 := degToRad(a.Lat())
	lat2 := degToRad(b.Lat())
	dLat := degToRad(b.Lat() - a.Lat())
	dLon := degToRad(b.Lon() - a.Lon())

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

// kmPerDegreeLon returns the length of one degree of longitude, in km, at
// the given latitude.
func kmPerDegreeLon(latDeg float64) float64 {
	v := kmPerDegreeLat * math.Cos(degToRad(latDeg))
	if v < 0.01 {
		// Near the poles a degree of longitude collapses to ~0km; clamp so
		// buffering never divides by (near) zero.
		v = 0.01
	}
	return v
}

// BoundOf returns the bounding box of a geometry. Unsupported geometry
// types yield a zero-value (empty) Bound.
func BoundOf(g orb.Geometry) orb.Bound {
	switch t := g.(type) {
	case orb.Point:
		return orb.Bound{Min: t, Max: t}
	case orb.MultiPoint:
		return t.Bound()
	case orb.LineString:
		return t.Bound()
	case orb.MultiLineString:
		return t.Bound()
	case orb.Ring:
		return t.Bound()
	case orb.Polygon:
		return t.Bound()
	case orb.MultiPolygon:
		return t.Bound()
	case orb.Bound:
		return t
	default:
		return orb.Bound{}
	}
}

// BufferBound pads a bound by kmBuffer kilometres on every side. The
// latitude pad is constant; the longitude pad is computed at the bound's
// mean latitude so buffering stays roughly isotropic in metres.
func BufferBound(b orb.Bound, kmBuffer float64) orb.Bound {
	if kmBuffer <= 0 {
		return b
	}

	meanLat := (b.Min.Lat() + b.Max.Lat()) / 2
	dLat := kmBuffer / kmPerDegreeLat
	dLon := kmBuffer / kmPerDegreeLon(meanLat)

	return orb.Bound{
		Min: orb.Point{b.Min.Lon() - dLon, b.Min.Lat() - dLat},
		Max: orb.Point{b.Max.Lon() + dLon, b.Max.Lat() + dLat},
	}
}

// SafeBBox returns the bounding box of the line a-b, buffered by kmBuffer km.
func SafeBBox(a, b orb.Point, kmBuffer float64) orb.Bound {
	bound := orb.Bound{Min: a, Max: a}
	bound = bound.Extend(b)
	return BufferBound(bound, kmBuffer)
}

// BBoxPolygon returns a closed, 5-vertex axis-aligned rectangle for bound b.
func BBoxPolygon(b orb.Bound) orb.Polygon {
	ring := orb.Ring{
		{b.Min.Lon(), b.Min.Lat()},
		{b.Max.Lon(), b.Min.Lat()},
		{b.Max.Lon(), b.Max.Lat()},
		{b.Min.Lon(), b.Max.Lat()},
		{b.Min.Lon(), b.Min.Lat()},
	}
	return orb.Polygon{ring}
}

// CorridorPolygon returns the buffered-line bounding rectangle used for
// gross corridor containment tests.
func CorridorPolygon(a, b orb.Point, kmBuffer float64) orb.Polygon {
	return BBoxPolygon(SafeBBox(a, b, kmBuffer))
}

// CreateAvoidPolygon buffers geometry g by kmBuffer km and returns its
// bounding rectangle as a 5-vertex closed polygon. If the primary bound
// computation fails for a pathological geometry, it falls back to a raw
// bbox of g expanded uniformly by kmBuffer*1.5 (in degrees-equivalent);
// it returns a nil polygon only when that fallback also fails.
func CreateAvoidPolygon(g orb.Geometry, kmBuffer float64) (poly orb.Polygon, err error) {
	if kmBuffer < 0.03 {
		kmBuffer = 0.03 // 30m minimum buffer, see AvoidPolygon invariant
	}

	defer func() {
		if r := recover(); r != nil {
			poly, err = fallbackAvoidPolygon(g, kmBuffer)
		}
	}()

	bound := BoundOf(g)
	if bound == (orb.Bound{}) {
		return fallbackAvoidPolygon(g, kmBuffer)
	}

	return BBoxPolygon(BufferBound(bound, kmBuffer)), nil
}

func fallbackAvoidPolygon(g orb.Geometry, kmBuffer float64) (orb.Polygon, error) {
	defer func() { recover() }()

	bound := BoundOf(g)
	if bound == (orb.Bound{}) {
		return nil, fmt.Errorf("geo: unable to derive a bounding box for geometry %T", g)
	}

	pad := kmBuffer * 1.5
	return BBoxPolygon(orb.Bound{
		Min: orb.Point{bound.Min.Lon() - pad, bound.Min.Lat() - pad},
		Max: orb.Point{bound.Max.Lon() + pad, bound.Max.Lat() + pad},
	}), nil
}

// ChunkPolylineToBBoxes walks coords accumulating segment length; whenever
// the running distance reaches chunkKm it emits a bbox of the slice
// (buffered by expandKm), then rewinds overlapKm for the next chunk. The
// trailing tail is always emitted. Result bboxes are deduplicated on a
// 3-decimal-rounded signature.
func ChunkPolylineToBBoxes(coords []orb.Point, chunkKm, overlapKm, expandKm float64) []orb.Bound {
	if len(coords) == 0 {
		return nil
	}
	if len(coords) == 1 {
		return []orb.Bound{BufferBound(orb.Bound{Min: coords[0], Max: coords[0]}, expandKm)}
	}

	var results []orb.Bound
	seen := map[string]bool{}

	emit := func(slice []orb.Point) {
		if len(slice) == 0 {
			return
		}
		bound := orb.Bound{Min: slice[0], Max: slice[0]}
		for _, p := range slice[1:] {
			bound = bound.Extend(p)
		}
		bound = BufferBound(bound, expandKm)
		sig := boundSignature(bound)
		if seen[sig] {
			return
		}
		seen[sig] = true
		results = append(results, bound)
	}

	start := 0
	acc := 0.0
	i := 1
	for i < len(coords) {
		acc += Haversine(coords[i-1], coords[i])
		if acc >= chunkKm {
			emit(coords[start : i+1])

			// Rewind overlapKm worth of distance for the next chunk.
			rewind := overlapKm
			j := i
			for j > start && rewind > 0 {
				rewind -= Haversine(coords[j-1], coords[j])
				j--
			}
			start = j
			acc = 0
		}
		i++
	}

	// Always emit the trailing tail.
	emit(coords[start:])

	return results
}

func boundSignature(b orb.Bound) string {
	round := func(v float64) float64 { return math.Round(v*1000) / 1000 }
	return fmt.Sprintf("%.3f,%.3f,%.3f,%.3f", round(b.Min.Lon()), round(b.Min.Lat()), round(b.Max.Lon()), round(b.Max.Lat()))
}

// SpreadPick returns up to max elements of arr, evenly spread over the
// index range [0, len(arr)-1], always including index 0. If len(arr) <= max
// it returns arr unchanged.
func SpreadPick[T any](arr []T, max int) []T {
	n := len(arr)
	if max <= 0 {
		return []T{}
	}
	if n <= max {
		out := make([]T, n)
		copy(out, arr)
		return out
	}
	if max == 1 {
		return []T{arr[0]}
	}

	idxSet := map[int]bool{}
	var idxs []int
	for i := 0; i < max; i++ {
		idx := int(math.Round(float64(i) * float64(n-1) / float64(max-1)))
		if !idxSet[idx] {
			idxSet[idx] = true
			idxs = append(idxs, idx)
		}
	}
	sort.Ints(idxs)

	out := make([]T, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, arr[idx])
	}
	return out
}

// LineBufferIntersects reports whether g intersects any segment of coords
// buffered by kmBuffer km. Each segment is tested against its own
// buffered bounding rectangle rather than a single buffer over the whole
// line, so long or sharply bent routes don't pick up false positives from
// a buffer spanning their own bounding box.
func LineBufferIntersects(coords []orb.Point, kmBuffer float64, g orb.Geometry) bool {
	if len(coords) == 0 {
		return false
	}
	if len(coords) == 1 {
		poly := BBoxPolygon(BufferBound(orb.Bound{Min: coords[0], Max: coords[0]}, kmBuffer))
		return Intersects(poly, g)
	}
	for i := 0; i+1 < len(coords); i++ {
		bound := orb.Bound{Min: coords[i], Max: coords[i]}.Extend(coords[i+1])
		poly := BBoxPolygon(BufferBound(bound, kmBuffer))
		if Intersects(poly, g) {
			return true
		}
	}
	return false
}

// Centroid returns a representative point for a geometry: itself for a
// Point, the bound's centre otherwise.
func Centroid(g orb.Geometry) orb.Point {
	if p, ok := g.(orb.Point); ok {
		return p
	}
	b := BoundOf(g)
	if b == (orb.Bound{}) {
		return orb.Point{}
	}
	return orb.Point{(b.Min.Lon() + b.Max.Lon()) / 2, (b.Min.Lat() + b.Max.Lat()) / 2}
}
