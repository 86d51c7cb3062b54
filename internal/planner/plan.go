package planner

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/heavygoods/routeplanner/internal/geo"
)

// distanceThresholdFastPathKm is the straight-line distance at or above
// which FAST_PATH is selected over STRICT, by haversine(start, end).
// Exactly 220km routes through FAST_PATH.
const distanceThresholdFastPathKm = 220.0

// planEnvelopeSource identifies this planner's response contract in the
// emitted envelope's meta.source.
const planEnvelopeSource = "route/plan-v1"

// Plan runs one plan invocation end-to-end: strategy selection, the
// chosen strategy's phases, and envelope assembly.
func (p *Planner) Plan(req *PlanRequest) *PlanEnvelope {
	run := &planRun{
		planner:         p,
		req:             req,
		budget:          NewBudget(),
		avoidBufferKm:   AvoidBufferKm(req.Vehicle, req.RoadworksBufferM),
		corridorKm:      CorridorKm(req.CorridorWidthM),
		maxAvoidsGlobal: MaxAvoidsGlobal(req.AvoidTargetMax),
		avoidedIDs:      map[string]bool{},
	}

	dist := geo.Haversine(req.Start, req.End)

	var best *RouteCandidate
	var fallbackUsed bool
	var bboxKmUsed *int

	if dist >= distanceThresholdFastPathKm {
		run.logPhase("FAST_PATH", "SELECTED", "", map[string]interface{}{"distance_km": dist})
		best, fallbackUsed, bboxKmUsed = run.fastPath()
	} else {
		run.logPhase("STRICT", "SELECTED", "", map[string]interface{}{"distance_km": dist})
		best, fallbackUsed, bboxKmUsed = run.strict()
	}

	return run.envelope(best, fallbackUsed, bboxKmUsed)
}

func (r *planRun) envelope(best *RouteCandidate, fallbackUsed bool, bboxKmUsed *int) *PlanEnvelope {
	status := "BLOCKED"
	var errMsg *string
	var fc *geojson.FeatureCollection
	var warningsOut []BlockingWarningOut
	var altsOut []*geojson.FeatureCollection

	if best != nil && best.Output != nil {
		fc = best.Output.FeatureCollection

		if len(best.BlockingWarnings) == 0 {
			status = "CLEAN"
		} else {
			status = "WARN"
			msg := "unresolved blocking obstacles remain on the best available route; manual review recommended"
			errMsg = &msg
		}

		for _, w := range best.BlockingWarnings {
			warningsOut = append(warningsOut, BlockingWarningOut{
				Title:          w.Title,
				Description:    w.Description,
				Limits:         Limits{Width: w.LimitWidth, Weight: w.LimitWeight},
				Coords:         [2]float64{w.Coords.Lon(), w.Coords.Lat()},
				AlreadyAvoided: w.AlreadyAvoided,
			})
		}
	} else {
		fc = geojson.NewFeatureCollection()
		msg := "no route could be produced"
		for i := len(r.phases) - 1; i >= 0; i-- {
			if r.phases[i].Reason != "" {
				msg = r.phases[i].Reason
				break
			}
		}
		errMsg = &msg
	}

	for _, alt := range r.altAccumulator {
		if len(altsOut) >= strictMaxAlternates {
			break
		}
		if alt.Output != nil {
			altsOut = append(altsOut, alt.Output.FeatureCollection)
		}
	}

	return &PlanEnvelope{
		Meta: PlanMeta{
			Source:        planEnvelopeSource,
			Status:        status,
			Clean:         status == "CLEAN",
			Error:         errMsg,
			Iterations:    r.iterations,
			AvoidsApplied: len(r.avoidPolygons),
			BBoxKmUsed:    bboxKmUsed,
			FallbackUsed:  fallbackUsed,
			Phases:        r.phases,
		},
		AvoidApplied:     AvoidApplied{Total: len(r.avoidPolygons)},
		GeoJSON:          fc,
		BlockingWarnings: warningsOut,
		GeoJSONAlts:      altsOut,
	}
}
