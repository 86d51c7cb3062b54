package planner

import (
	"github.com/paulmach/orb"

	"github.com/heavygoods/routeplanner/internal/geo"
	"github.com/heavygoods/routeplanner/internal/obstacle"
	"github.com/heavygoods/routeplanner/internal/routing"
)

// routeBufferKmDefault is the 20m route buffer obstacles are checked
// against, in kilometres.
const routeBufferKmDefault = 0.020

// routeCoords concatenates every leg's decoded shape into one polyline.
func routeCoords(output *routing.RouteOutput) []orb.Point {
	if output == nil {
		return nil
	}
	var coords []orb.Point
	for _, leg := range output.Legs {
		coords = append(coords, leg.Shape...)
	}
	return coords
}

// computeRouteStats buffers the route, tallies every obstacle
// intersecting it as a roadworks hit, and records a blocking warning for
// each one whose limits the vehicle violates.
func computeRouteStats(
	output *routing.RouteOutput,
	obstacles []obstacle.Obstacle,
	routeBufferKm, vWidth, vWeight float64,
	avoidedIDs map[string]bool,
) *RouteCandidate {
	coords := routeCoords(output)

	var roadworksHits int
	var warnings []BlockingWarning

	for _, o := range obstacles {
		if o.Geometry == nil {
			continue
		}
		if !geo.LineBufferIntersects(coords, routeBufferKm, o.Geometry) {
			continue
		}
		roadworksHits++
		if o.ViolatesVehicle(vWidth, vWeight) {
			warnings = append(warnings, BlockingWarning{
				Title:          o.Title,
				Description:    o.Description,
				LimitWidth:     o.MaxWidthM,
				LimitWeight:    o.MaxWeightT,
				Coords:         geo.Centroid(o.Geometry),
				AlreadyAvoided: avoidedIDs[o.ID],
			})
		}
	}

	distance := 0.0
	if output != nil {
		distance = output.DistanceKm
	}

	return &RouteCandidate{
		Output:           output,
		DistanceKm:       distance,
		BlockingWarnings: warnings,
		RoadworksHits:    roadworksHits,
	}
}

// violatingObstacles returns, from obstacles, those that violate the
// vehicle, aren't already avoided, and intersect candidate's route
// buffer — the convergence loop's next round of avoid-polygon
// candidates.
func violatingObstacles(candidate *RouteCandidate, obstacles []obstacle.Obstacle, avoidedIDs map[string]bool, vehicle Vehicle) []obstacle.Obstacle {
	if candidate == nil {
		return nil
	}
	coords := routeCoords(candidate.Output)

	var out []obstacle.Obstacle
	for _, o := range obstacles {
		if avoidedIDs[o.ID] {
			continue
		}
		if o.Geometry == nil {
			continue
		}
		if !o.ViolatesVehicle(vehicle.WidthM, vehicle.WeightT) {
			continue
		}
		if !geo.LineBufferIntersects(coords, routeBufferKmDefault, o.Geometry) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// pickBetterCandidate applies a lexicographic preference: zero blocking
// warnings beats any; fewer blocking warnings beats more; fewer
// roadworks hits beats more; strictly shorter distance (both positive)
// beats longer. Ties keep a.
func pickBetterCandidate(a, b *RouteCandidate) *RouteCandidate {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	aBlocked := len(a.BlockingWarnings) > 0
	bBlocked := len(b.BlockingWarnings) > 0
	if aBlocked != bBlocked {
		if !aBlocked {
			return a
		}
		return b
	}

	if len(a.BlockingWarnings) != len(b.BlockingWarnings) {
		if len(a.BlockingWarnings) < len(b.BlockingWarnings) {
			return a
		}
		return b
	}

	if a.RoadworksHits != b.RoadworksHits {
		if a.RoadworksHits < b.RoadworksHits {
			return a
		}
		return b
	}

	if a.DistanceKm > 0 && b.DistanceKm > 0 && a.DistanceKm != b.DistanceKm {
		if a.DistanceKm < b.DistanceKm {
			return a
		}
		return b
	}

	return a
}
