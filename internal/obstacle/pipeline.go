package obstacle

import (
	"github.com/heavygoods/routeplanner/internal/geo"
	"github.com/paulmach/orb"
)

// MergeObstacles iterates batches in order, appending by ID uniqueness,
// and short-circuits once cap obstacles have been collected.
func MergeObstacles(batches [][]Obstacle, cap int) []Obstacle {
	seen := map[string]bool{}
	merged := make([]Obstacle, 0, cap)

	for _, batch := range batches {
		for _, o := range batch {
			if seen[o.ID] {
				continue
			}
			seen[o.ID] = true
			merged = append(merged, o)
			if len(merged) >= cap {
				return merged
			}
		}
	}
	return merged
}

// PrioritizeObstacles partitions obstacles into those intersecting the
// start-end corridor (primary) and others (secondary), emitting primary
// obstacles first in original order, then secondary, stopping at cap.
func PrioritizeObstacles(list []Obstacle, start, end orb.Point, corridorKm float64, cap int) []Obstacle {
	corridor := geo.CorridorPolygon(start, end, corridorKm)

	var primary, secondary []Obstacle
	for _, o := range list {
		if o.Geometry != nil && geo.Intersects(corridor, o.Geometry) {
			primary = append(primary, o)
		} else {
			secondary = append(secondary, o)
		}
	}

	out := append(primary, secondary...)
	if len(out) > cap {
		out = out[:cap]
	}
	return out
}
