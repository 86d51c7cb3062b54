package obstacle

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestMergeObstaclesDedupesAndCaps(t *testing.T) {
	batch1 := []Obstacle{{ID: "a"}, {ID: "b"}}
	batch2 := []Obstacle{{ID: "b"}, {ID: "c"}, {ID: "d"}}

	merged := MergeObstacles([][]Obstacle{batch1, batch2}, 3)
	if len(merged) != 3 {
		t.Fatalf("expected cap to stop at 3, got %d", len(merged))
	}

	ids := map[string]bool{}
	for _, o := range merged {
		if ids[o.ID] {
			t.Fatalf("duplicate ID %s in merged result", o.ID)
		}
		ids[o.ID] = true
	}
}

func TestPrioritizeObstaclesCorridorFirst(t *testing.T) {
	start := orb.Point{7.0, 51.0}
	end := orb.Point{7.5, 51.5}

	onCorridor := Obstacle{ID: "on", Geometry: orb.Point{7.25, 51.25}}
	farAway := Obstacle{ID: "far", Geometry: orb.Point{20.0, 20.0}}

	out := PrioritizeObstacles([]Obstacle{farAway, onCorridor}, start, end, 10, 10)

	if len(out) != 2 {
		t.Fatalf("expected both obstacles, got %d", len(out))
	}
	if out[0].ID != "on" {
		t.Fatalf("expected corridor-intersecting obstacle first, got %s", out[0].ID)
	}
}

func TestPrioritizeObstaclesRespectsCap(t *testing.T) {
	start := orb.Point{7.0, 51.0}
	end := orb.Point{7.5, 51.5}

	var list []Obstacle
	for i := 0; i < 5; i++ {
		list = append(list, Obstacle{ID: string(rune('a' + i)), Geometry: orb.Point{7.1, 51.1}})
	}

	out := PrioritizeObstacles(list, start, end, 10, 3)
	if len(out) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(out))
	}
}
