package planner

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"github.com/heavygoods/routeplanner/internal/geo"
	"github.com/heavygoods/routeplanner/internal/obstacle"
	"github.com/heavygoods/routeplanner/internal/routing"
)

// ObstacleSource is the narrow capability the planner needs from an
// obstacle provider. *obstacle.Client satisfies this.
type ObstacleSource interface {
	Fetch(params obstacle.FetchParams) *obstacle.FetchResult
}

// Router is the narrow capability the planner needs from a routing
// engine. *routing.Client satisfies this.
type Router interface {
	Route(req *routing.RouteRequest) (*routing.RouteOutput, []*routing.RouteOutput, error)
}

// Deps bundles the external dependencies a Planner calls out to.
type Deps struct {
	Obstacle ObstacleSource
	Routing  Router
}

// Planner runs one plan invocation's worth of FAST_PATH/STRICT logic
// against its configured dependencies.
type Planner struct {
	deps Deps
}

// New builds a Planner over the given obstacle and routing clients.
func New(deps Deps) *Planner {
	return &Planner{deps: deps}
}

// planRun holds the mutable state owned by a single Plan() invocation:
// its obstacle set, avoid set, avoid-ID set, candidate list, and phase
// log, all exclusively owned by that one invocation.
type planRun struct {
	planner *Planner
	req     *PlanRequest
	budget  *Budget

	avoidBufferKm   float64
	corridorKm      float64
	maxAvoidsGlobal int

	avoidPolygons []AvoidPolygon
	avoidedIDs    map[string]bool

	altAccumulator []*RouteCandidate

	phases     []Phase
	iterations int
}

func (r *planRun) logPhase(phase, result, reason string, extra map[string]interface{}) {
	r.phases = append(r.phases, Phase{PhaseName: phase, Result: result, Reason: reason, Extra: extra})
}

// polygons returns the accumulated avoid set as plain orb polygons for
// attaching to the next router request.
func (r *planRun) polygons() []orb.Polygon {
	polys := make([]orb.Polygon, 0, len(r.avoidPolygons))
	for _, a := range r.avoidPolygons {
		polys = append(polys, a.Polygon)
	}
	return polys
}

// addAvoids converts up to maxNew of the given (already-violating,
// already route-intersecting) obstacles into avoid polygons, narrowest
// limits first, skipping any whose polygon can't be built and stopping
// at maxAvoidsGlobal. Returns the count actually added.
func (r *planRun) addAvoids(obstacles []obstacle.Obstacle, maxNew int) int {
	sorted := make([]obstacle.Obstacle, len(obstacles))
	copy(sorted, obstacles)
	sortObstaclesByTightestLimit(sorted)

	added := 0
	for _, o := range sorted {
		if added >= maxNew {
			break
		}
		if len(r.avoidPolygons) >= r.maxAvoidsGlobal {
			break
		}
		if r.avoidedIDs[o.ID] {
			continue
		}
		poly, err := geo.CreateAvoidPolygon(o.Geometry, r.avoidBufferKm)
		if err != nil || poly == nil {
			continue
		}
		r.avoidPolygons = append(r.avoidPolygons, AvoidPolygon{ObstacleID: o.ID, Polygon: poly})
		r.avoidedIDs[o.ID] = true
		added++
	}
	return added
}

func sortObstaclesByTightestLimit(obstacles []obstacle.Obstacle) {
	sort.Slice(obstacles, func(i, j int) bool {
		if obstacles[i].MaxWidthM != obstacles[j].MaxWidthM {
			return obstacles[i].MaxWidthM < obstacles[j].MaxWidthM
		}
		return obstacles[i].MaxWeightT < obstacles[j].MaxWeightT
	})
}

// routeOnce builds a truck routing request from the run's current state
// and calls the routing engine, without scoring the result.
func (r *planRun) routeOnce(alternates int, escapeMode bool) (*routing.RouteOutput, []*routing.RouteOutput, error) {
	return r.routeWith(r.polygons(), alternates, escapeMode)
}

// routeNoAvoids calls the routing engine with no exclusion polygons at
// all — the probe and the no-obstacle fallback path.
func (r *planRun) routeNoAvoids(alternates int) (*routing.RouteOutput, []*routing.RouteOutput, error) {
	return r.routeWith(nil, alternates, false)
}

func (r *planRun) routeWith(polys []orb.Polygon, alternates int, escapeMode bool) (*routing.RouteOutput, []*routing.RouteOutput, error) {
	if !r.budget.CanAfford(routing.DefaultTimeout) {
		return nil, nil, fmt.Errorf("time budget insufficient for router call")
	}

	params := routing.TruckRequestParams{
		Start:         r.req.Start,
		End:           r.req.End,
		WidthM:        r.req.Vehicle.WidthM,
		HeightM:       r.req.Vehicle.HeightM,
		WeightT:       r.req.Vehicle.WeightT,
		AxleLoadT:     r.req.Vehicle.AxleLoadT,
		Hazmat:        r.req.Vehicle.Hazmat,
		AvoidPolygons: polys,
		Alternates:    alternates,
		Language:      r.req.DirectionsLanguage,
		EscapeMode:    escapeMode,
	}

	reqBody := routing.NewTruckRequest(params)
	return r.planner.deps.Routing.Route(reqBody)
}

// scoreAll scores primary and every alternate against obstacles,
// returning the best of the set and the scored alternates individually.
func (r *planRun) scoreAll(primary *routing.RouteOutput, alts []*routing.RouteOutput, obstacles []obstacle.Obstacle) (*RouteCandidate, []*RouteCandidate) {
	best := computeRouteStats(primary, obstacles, routeBufferKmDefault, r.req.Vehicle.WidthM, r.req.Vehicle.WeightT, r.avoidedIDs)
	best.AvoidsApplied = len(r.avoidPolygons)

	var altCandidates []*RouteCandidate
	for _, a := range alts {
		c := computeRouteStats(a, obstacles, routeBufferKmDefault, r.req.Vehicle.WidthM, r.req.Vehicle.WeightT, r.avoidedIDs)
		c.AvoidsApplied = len(r.avoidPolygons)
		altCandidates = append(altCandidates, c)
		best = pickBetterCandidate(best, c)
	}
	return best, altCandidates
}

// accumulateAlts keeps up to 2 distance-distinct alternates across the
// whole plan run.
func (r *planRun) accumulateAlts(candidates []*RouteCandidate) {
	for _, c := range candidates {
		if c == nil || c.Output == nil || len(r.altAccumulator) >= strictMaxAlternates {
			continue
		}
		duplicate := false
		for _, existing := range r.altAccumulator {
			if math.Abs(existing.DistanceKm-c.DistanceKm) < 0.05 {
				duplicate = true
				break
			}
		}
		if !duplicate {
			r.altAccumulator = append(r.altAccumulator, c)
		}
	}
}

// fetchTilesConcurrently issues one obstacle fetch per tile in parallel
// and waits for the whole set.
func (r *planRun) fetchTilesConcurrently(tiles []orb.Bound, onlyMotorways bool) []obstacle.Obstacle {
	results := make([][]obstacle.Obstacle, len(tiles))

	var wg sync.WaitGroup
	for i, tile := range tiles {
		wg.Add(1)
		go func(i int, tile orb.Bound) {
			defer wg.Done()
			res := r.planner.deps.Obstacle.Fetch(obstacle.FetchParams{
				TS:            r.req.TS,
				TZ:            r.req.TZ,
				BBox:          tile,
				BufferM:       r.req.RoadworksBufferM,
				OnlyMotorways: onlyMotorways,
			})
			results[i] = res.Obstacles
		}(i, tile)
	}
	wg.Wait()

	var merged []obstacle.Obstacle
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	return merged
}
