package planner

import (
	"github.com/heavygoods/routeplanner/internal/geo"
	"github.com/heavygoods/routeplanner/internal/obstacle"
	"github.com/heavygoods/routeplanner/internal/routing"
)

const (
	obstacleTileChunkKm        = 260.0
	obstacleTileOverlapKm      = 45.0
	fastPathMaxTiles           = 4
	fastPathMergeCap           = 1800
	fastPathPrioritizeCap      = 1400
	fastPathMaxIterations      = 8
	fastPathMaxAvoids          = 50
	fastPathMaxNewPerIteration = 8
	fastPathAlternates         = 3
)

// fastPath probes the route, tile-fetches obstacles along the probe,
// scores, converges on avoid polygons, then runs one escape pass.
func (r *planRun) fastPath() (best *RouteCandidate, fallbackUsed bool, bboxKmUsed *int) {
	probeOut, _, err := r.routeNoAvoids(r.req.Alternates)
	if err != nil {
		r.logPhase("FAST_PATH_PROBE", "BLOCKED", err.Error(), nil)
		return nil, false, nil
	}
	r.iterations++
	r.logPhase("FAST_PATH_PROBE", "OK", "", map[string]interface{}{"distance_km": probeOut.DistanceKm})

	coords := routeCoords(probeOut)

	expandKm := r.corridorKm
	if expandKm > 28 {
		expandKm = 28
	}
	if expandKm < 10 {
		expandKm = 10
	}
	tiles := geo.ChunkPolylineToBBoxes(coords, obstacleTileChunkKm, obstacleTileOverlapKm, expandKm)
	tiles = geo.SpreadPick(tiles, fastPathMaxTiles)

	// FAST_PATH fetches without the motorway filter; STRICT applies it
	// by request default instead.
	fetched := r.fetchTilesConcurrently(tiles, false)
	obstacles := obstacle.MergeObstacles([][]obstacle.Obstacle{fetched}, fastPathMergeCap)
	obstacles = obstacle.PrioritizeObstacles(obstacles, r.req.Start, r.req.End, r.corridorKm, fastPathPrioritizeCap)
	r.logPhase("FAST_PATH_TILES", "OK", "", map[string]interface{}{"tiles": len(tiles), "obstacles": len(obstacles)})

	best, _ = r.scoreAll(probeOut, nil, obstacles)
	if len(best.BlockingWarnings) == 0 {
		r.logPhase("FAST_PATH_SCORE", "CLEAN", "", nil)
		return best, false, nil
	}
	r.logPhase("FAST_PATH_SCORE", "WARN", "", map[string]interface{}{"blocking_warnings": len(best.BlockingWarnings)})

	for iter := 0; iter < fastPathMaxIterations; iter++ {
		if len(r.avoidPolygons) >= fastPathMaxAvoids {
			r.logPhase("FAST_PATH_CONVERGE", "STOP", "avoid cap reached", nil)
			break
		}
		if !r.budget.CanAfford(routing.DefaultTimeout) {
			r.logPhase("FAST_PATH_CONVERGE", "STOP", "time budget insufficient", nil)
			break
		}

		violating := violatingObstacles(best, obstacles, r.avoidedIDs, r.req.Vehicle)
		added := r.addAvoids(violating, fastPathMaxNewPerIteration)
		if added == 0 {
			r.logPhase("FAST_PATH_CONVERGE", "STOP", "no new avoids addable", nil)
			break
		}

		out, alts, err := r.routeOnce(fastPathAlternates, true)
		if err != nil {
			r.logPhase("FAST_PATH_CONVERGE", "STOP", err.Error(), nil)
			break
		}
		r.iterations++

		candidate, altCandidates := r.scoreAll(out, alts, obstacles)
		r.accumulateAlts(append([]*RouteCandidate{candidate}, altCandidates...))
		best = pickBetterCandidate(best, candidate)

		if len(best.BlockingWarnings) == 0 {
			r.logPhase("FAST_PATH_CONVERGE", "CLEAN", "", map[string]interface{}{"iteration": iter + 1})
			return best, false, nil
		}
		r.logPhase("FAST_PATH_CONVERGE", "WARN", "", map[string]interface{}{"iteration": iter + 1, "blocking_warnings": len(best.BlockingWarnings)})
	}

	if len(best.BlockingWarnings) > 0 && r.budget.CanAfford(routing.DefaultTimeout) {
		out, alts, err := r.routeOnce(fastPathAlternates, true)
		if err != nil {
			r.logPhase("FAST_PATH_ESCAPE", "SKIPPED", err.Error(), nil)
		} else {
			r.iterations++
			candidate, altCandidates := r.scoreAll(out, alts, obstacles)
			r.accumulateAlts(append([]*RouteCandidate{candidate}, altCandidates...))
			best = pickBetterCandidate(best, candidate)
			r.logPhase("FAST_PATH_ESCAPE", "DONE", "", nil)
		}
	}

	return best, false, nil
}
