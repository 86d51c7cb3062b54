package planner

import (
	"github.com/heavygoods/routeplanner/internal/geo"
	"github.com/heavygoods/routeplanner/internal/obstacle"
	"github.com/heavygoods/routeplanner/internal/routing"
)

var strictBBoxStepsKm = []float64{200, 400, 800, 1400, 2200}

const (
	strictPrioritizeCap      = 1600
	strictMaxIterations      = 7
	strictMaxAvoids          = 60
	strictMaxNewPerIteration = 7
	strictMaxAlternates      = 2
)

// strict expands the fetch bbox over a fixed step sequence, running
// router iterations with an accreting avoid list at
// each step, stopping early on a CLEAN candidate.
func (r *planRun) strict() (best *RouteCandidate, fallbackUsed bool, bboxKmUsed *int) {
	// The most recent step's prioritised obstacle set; the fallback and
	// escape passes below score against it so their candidates compete
	// with the step candidates on the same warning counts.
	var lastObstacles []obstacle.Obstacle

	for _, step := range strictBBoxStepsKm {
		if !r.budget.CanAfford(obstacle.DefaultTimeout) {
			r.logPhase("STRICT_STEP", "STOP", "time budget insufficient", map[string]interface{}{"step_km": step})
			break
		}

		bbox := geo.SafeBBox(r.req.Start, r.req.End, step)
		fetch := r.planner.deps.Obstacle.Fetch(obstacle.FetchParams{
			TS:            r.req.TS,
			TZ:            r.req.TZ,
			BBox:          bbox,
			BufferM:       r.req.RoadworksBufferM,
			OnlyMotorways: r.req.OnlyMotorways,
		})

		corridor := r.corridorKm
		if v := step * 0.04; v > corridor {
			corridor = v
		}
		if corridor > 90 {
			corridor = 90
		}

		obstacles := obstacle.PrioritizeObstacles(fetch.Obstacles, r.req.Start, r.req.End, corridor, strictPrioritizeCap)
		lastObstacles = obstacles
		r.logPhase("STRICT_STEP", "OK", "", map[string]interface{}{"step_km": step, "obstacles": len(obstacles)})

		stepBest := r.strictRouterIterations(obstacles, step)
		best = pickBetterCandidate(best, stepBest)

		kmUsed := int(step)
		bboxKmUsed = &kmUsed

		if best != nil && len(best.BlockingWarnings) == 0 {
			r.logPhase("STRICT_STEP", "CLEAN", "", map[string]interface{}{"step_km": step})
			break
		}
	}

	if best == nil {
		out, _, err := r.routeNoAvoids(r.req.Alternates)
		if err != nil {
			r.logPhase("STRICT_FALLBACK", "BLOCKED", err.Error(), nil)
			return nil, true, bboxKmUsed
		}
		r.iterations++
		fallbackBest, _ := r.scoreAll(out, nil, lastObstacles)
		best = fallbackBest
		fallbackUsed = true
		r.logPhase("STRICT_FALLBACK", "OK", "no-obstacle fallback", nil)
	}

	if len(best.BlockingWarnings) > 0 && r.budget.CanAfford(routing.DefaultTimeout) {
		out, alts, err := r.routeOnce(fastPathAlternates, true)
		if err != nil {
			r.logPhase("STRICT_ESCAPE", "SKIPPED", err.Error(), nil)
		} else {
			r.iterations++
			candidate, altCandidates := r.scoreAll(out, alts, lastObstacles)
			r.accumulateAlts(append([]*RouteCandidate{candidate}, altCandidates...))
			best = pickBetterCandidate(best, candidate)
			r.logPhase("STRICT_ESCAPE", "DONE", "", nil)
		}
	}

	return best, fallbackUsed, bboxKmUsed
}

// strictRouterIterations runs up to strictMaxIterations router calls at
// one bbox step, accreting avoid polygons on each non-CLEAN result.
func (r *planRun) strictRouterIterations(obstacles []obstacle.Obstacle, step float64) *RouteCandidate {
	var stepBest *RouteCandidate

	for iter := 0; iter < strictMaxIterations; iter++ {
		if len(r.avoidPolygons) >= strictMaxAvoids {
			r.logPhase("STRICT_ROUTE", "STOP", "avoid cap reached", map[string]interface{}{"step_km": step})
			break
		}
		if !r.budget.CanAfford(routing.DefaultTimeout) {
			r.logPhase("STRICT_ROUTE", "STOP", "time budget insufficient", map[string]interface{}{"step_km": step})
			break
		}

		escapeMode := len(r.avoidPolygons) > 0
		alternates := r.req.Alternates
		if escapeMode {
			alternates = fastPathAlternates
		}

		out, alts, err := r.routeOnce(alternates, escapeMode)
		if err != nil {
			r.logPhase("STRICT_ROUTE", "STOP", err.Error(), map[string]interface{}{"step_km": step})
			break
		}
		r.iterations++

		candidate, altCandidates := r.scoreAll(out, alts, obstacles)
		r.accumulateAlts(append([]*RouteCandidate{candidate}, altCandidates...))
		stepBest = pickBetterCandidate(stepBest, candidate)

		if len(candidate.BlockingWarnings) == 0 {
			r.logPhase("STRICT_ROUTE", "CLEAN", "", map[string]interface{}{"step_km": step, "iteration": iter + 1})
			break
		}

		violating := violatingObstacles(candidate, obstacles, r.avoidedIDs, r.req.Vehicle)
		added := r.addAvoids(violating, strictMaxNewPerIteration)
		if added == 0 {
			r.logPhase("STRICT_ROUTE", "STOP", "no new avoids addable", map[string]interface{}{"step_km": step})
			break
		}
		r.logPhase("STRICT_ROUTE", "WARN", "", map[string]interface{}{"step_km": step, "iteration": iter + 1})
	}

	return stepBest
}
