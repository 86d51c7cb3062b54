package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestHaversineSymmetric(t *testing.T) {
	a := orb.Point{6.9603, 50.9375}
	b := orb.Point{7.4653, 51.5136}

	if Haversine(a, b) != Haversine(b, a) {
		t.Fatalf("haversine not symmetric: %f vs %f", Haversine(a, b), Haversine(b, a))
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Cologne to Berlin, roughly 480km as the crow flies.
	cologne := orb.Point{6.9603, 50.9375}
	berlin := orb.Point{13.4050, 52.5200}

	d := Haversine(cologne, berlin)
	if d < 460 || d > 500 {
		t.Fatalf("expected ~480km between Cologne and Berlin, got %f", d)
	}
}

func TestSpreadPickIncludesIndexZeroAndSizes(t *testing.T) {
	arr := make([]int, 20)
	for i := range arr {
		arr[i] = i
	}

	for _, max := range []int{1, 2, 4, 19, 20, 25} {
		got := SpreadPick(arr, max)
		want := max
		if want > len(arr) {
			want = len(arr)
		}
		if len(got) != want {
			t.Errorf("SpreadPick(max=%d): got %d elements, want %d", max, len(got), want)
		}
		if len(got) > 0 && got[0] != 0 {
			t.Errorf("SpreadPick(max=%d): expected index 0 included first, got %v", max, got)
		}
	}
}

func TestSpreadPickReturnsAllWhenSmall(t *testing.T) {
	arr := []string{"a", "b", "c"}
	got := SpreadPick(arr, 10)
	if len(got) != 3 {
		t.Fatalf("expected all 3 elements, got %d", len(got))
	}
}

func TestChunkPolylineToBBoxesCoversAllPoints(t *testing.T) {
	var coords []orb.Point
	lon := 6.0
	for i := 0; i < 50; i++ {
		coords = append(coords, orb.Point{lon, 50.0})
		lon += 0.2 // roughly 14km per step at this latitude
	}

	bboxes := ChunkPolylineToBBoxes(coords, 260, 45, 10)
	if len(bboxes) == 0 {
		t.Fatal("expected at least one bbox")
	}

	for _, p := range coords {
		covered := false
		for _, b := range bboxes {
			if b.Contains(p) {
				covered = true
				break
			}
		}
		if !covered {
			t.Fatalf("point %v not covered by any emitted bbox", p)
		}
	}
}

func TestBufferBoxMinimumThirtyMeters(t *testing.T) {
	pt := orb.Point{7.0, 51.0}
	poly, err := CreateAvoidPolygon(pt, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bound := poly.Bound()
	widthKm := (bound.Max.Lon() - bound.Min.Lon()) * kmPerDegreeLon(51.0)
	if widthKm < 0.059 { // ~2x30m buffer
		t.Fatalf("expected at least a 30m buffer applied, got width %fkm", widthKm)
	}
}

func TestIntersectsPolygonPoint(t *testing.T) {
	poly := BBoxPolygon(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}})

	inside := orb.Point{5, 5}
	outside := orb.Point{20, 20}

	if !Intersects(poly, inside) {
		t.Error("expected point inside polygon to intersect")
	}
	if Intersects(poly, outside) {
		t.Error("expected point outside polygon to not intersect")
	}
}

func TestIntersectsPolygonLineString(t *testing.T) {
	poly := BBoxPolygon(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}})

	crossing := orb.LineString{{-5, 5}, {15, 5}}
	clear := orb.LineString{{-5, 20}, {15, 20}}

	if !Intersects(poly, crossing) {
		t.Error("expected crossing line to intersect polygon")
	}
	if Intersects(poly, clear) {
		t.Error("expected clear line to not intersect polygon")
	}
}

func TestCentroidOfPointIsItself(t *testing.T) {
	p := orb.Point{3, 4}
	if Centroid(p) != p {
		t.Fatalf("expected centroid of a point to be itself")
	}
}

func TestCentroidOfPolygonIsBoundCenter(t *testing.T) {
	poly := BBoxPolygon(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 20}})
	c := Centroid(poly)
	if math.Abs(c.Lon()-5) > 1e-9 || math.Abs(c.Lat()-10) > 1e-9 {
		t.Fatalf("unexpected centroid: %v", c)
	}
}
