package planner

import (
	"fmt"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"

	"github.com/heavygoods/routeplanner/internal/obstacle"
	"github.com/heavygoods/routeplanner/internal/routing"

	"testing"
)

// fakeObstacleSource returns a fixed obstacle list for every fetch,
// regardless of bbox, so tests can pin exactly which obstacles the
// planner sees.
type fakeObstacleSource struct {
	obstacles []obstacle.Obstacle
}

func (f *fakeObstacleSource) Fetch(params obstacle.FetchParams) *obstacle.FetchResult {
	return &obstacle.FetchResult{
		Obstacles: f.obstacles,
		Meta:      obstacle.FetchMeta{Fetched: len(f.obstacles), Used: len(f.obstacles)},
	}
}

// fakeRouter always returns the same straight-line route between the
// request's two locations, regardless of avoid polygons — enough to
// exercise scoring and envelope assembly without a live routing engine.
type fakeRouter struct {
	shouldFail bool
}

func (f *fakeRouter) Route(req *routing.RouteRequest) (*routing.RouteOutput, []*routing.RouteOutput, error) {
	if f.shouldFail {
		return nil, nil, fmt.Errorf("fake router: simulated failure")
	}

	start := *req.Locations[0]
	end := *req.Locations[1]
	shape := []orb.Point{
		{*start.Lon, *start.Lat},
		{*end.Lon, *end.Lat},
	}

	fc := geojson.NewFeatureCollection()
	lineCoords := [][]float64{
		{*start.Lon, *start.Lat},
		{*end.Lon, *end.Lat},
	}
	fc.AddFeature(geojson.NewFeature(geojson.NewLineStringGeometry(lineCoords)))

	return &routing.RouteOutput{
		FeatureCollection: fc,
		Legs:              []routing.Leg{{Shape: shape, DistanceKm: 50}},
		DistanceKm:        50,
		DurationS:         3600,
	}, nil, nil
}

func TestPlanCleanWithNoObstacles(t *testing.T) {
	p := New(Deps{
		Obstacle: &fakeObstacleSource{},
		Routing:  &fakeRouter{},
	})

	req := &PlanRequest{
		Start:              orb.Point{6.9603, 50.9375},
		End:                orb.Point{7.4653, 51.5136},
		Vehicle:            Vehicle{WidthM: 3, HeightM: 4, WeightT: 40, AxleLoadT: 10},
		TS:                 time.Now().UTC(),
		TZ:                 "Europe/Berlin",
		CorridorWidthM:     2000,
		RoadworksBufferM:   60,
		OnlyMotorways:      true,
		Alternates:         1,
		DirectionsLanguage: "de-DE",
		AvoidTargetMax:     30,
	}

	env := p.Plan(req)

	if env.Meta.Status != "CLEAN" {
		t.Fatalf("expected CLEAN, got %s (error=%v)", env.Meta.Status, env.Meta.Error)
	}
	if env.Meta.Error != nil {
		t.Errorf("expected nil error on CLEAN, got %v", *env.Meta.Error)
	}
	if env.Meta.AvoidsApplied != 0 {
		t.Errorf("expected zero avoids applied, got %d", env.Meta.AvoidsApplied)
	}
	if len(env.GeoJSON.Features) != 1 {
		t.Errorf("expected 1 feature in geojson, got %d", len(env.GeoJSON.Features))
	}
}

func TestPlanBlockedWhenRouterFails(t *testing.T) {
	p := New(Deps{
		Obstacle: &fakeObstacleSource{},
		Routing:  &fakeRouter{shouldFail: true},
	})

	req := &PlanRequest{
		Start:              orb.Point{6.9603, 50.9375},
		End:                orb.Point{7.4653, 51.5136},
		Vehicle:            DefaultVehicle,
		TS:                 time.Now().UTC(),
		TZ:                 "Europe/Berlin",
		CorridorWidthM:     2000,
		RoadworksBufferM:   60,
		Alternates:         1,
		DirectionsLanguage: "de-DE",
		AvoidTargetMax:     30,
	}

	env := p.Plan(req)

	if env.Meta.Status != "BLOCKED" {
		t.Fatalf("expected BLOCKED, got %s", env.Meta.Status)
	}
	if env.Meta.Error == nil {
		t.Error("expected a non-nil meta.error on BLOCKED")
	}
	if len(env.GeoJSON.Features) != 0 {
		t.Errorf("expected an empty geojson on BLOCKED, got %d features", len(env.GeoJSON.Features))
	}
}

func TestPlanSelectsFastPathAtOrAbove220Km(t *testing.T) {
	p := New(Deps{
		Obstacle: &fakeObstacleSource{},
		Routing:  &fakeRouter{},
	})

	// ~220km+ apart.
	req := &PlanRequest{
		Start:              orb.Point{6.96, 50.94},
		End:                orb.Point{13.4, 52.52},
		Vehicle:            DefaultVehicle,
		TS:                 time.Now().UTC(),
		TZ:                 "Europe/Berlin",
		CorridorWidthM:     2000,
		RoadworksBufferM:   60,
		Alternates:         1,
		DirectionsLanguage: "de-DE",
		AvoidTargetMax:     30,
	}

	env := p.Plan(req)
	if len(env.Meta.Phases) == 0 {
		t.Fatal("expected at least one phase entry")
	}
	if env.Meta.Phases[0].PhaseName != "FAST_PATH" {
		t.Errorf("expected phases[0].phase == FAST_PATH for a long route, got %s", env.Meta.Phases[0].PhaseName)
	}
}

func TestPlanSelectsStrictBelow220Km(t *testing.T) {
	p := New(Deps{
		Obstacle: &fakeObstacleSource{},
		Routing:  &fakeRouter{},
	})

	req := &PlanRequest{
		Start:              orb.Point{6.9603, 50.9375},
		End:                orb.Point{7.4653, 51.5136},
		Vehicle:            DefaultVehicle,
		TS:                 time.Now().UTC(),
		TZ:                 "Europe/Berlin",
		CorridorWidthM:     2000,
		RoadworksBufferM:   60,
		Alternates:         1,
		DirectionsLanguage: "de-DE",
		AvoidTargetMax:     30,
	}

	env := p.Plan(req)
	if env.Meta.Phases[0].PhaseName != "STRICT" {
		t.Errorf("expected phases[0].phase == STRICT for a short route, got %s", env.Meta.Phases[0].PhaseName)
	}
}

func TestPlanUnavoidableObstacleEndsWarn(t *testing.T) {
	// The fake router always returns the same straight line, so an
	// obstacle sitting on it can never actually be detoured around: the
	// plan must end WARN with the warning reported, not CLEAN.
	blocking := obstacle.Obstacle{
		ID:         "perm",
		Geometry:   orb.Point{7.0, 51.1},
		MaxWidthM:  2.0,
		MaxWeightT: obstacle.NotLimiting,
		Title:      "Fahrbahnverengung",
	}

	p := New(Deps{
		Obstacle: &fakeObstacleSource{obstacles: []obstacle.Obstacle{blocking}},
		Routing:  &fakeRouter{},
	})

	req := &PlanRequest{
		Start:              orb.Point{7.0, 51.0},
		End:                orb.Point{7.0, 51.2},
		Vehicle:            DefaultVehicle,
		TS:                 time.Now().UTC(),
		TZ:                 "Europe/Berlin",
		CorridorWidthM:     2000,
		RoadworksBufferM:   60,
		Alternates:         1,
		DirectionsLanguage: "de-DE",
		AvoidTargetMax:     30,
	}

	env := p.Plan(req)

	if env.Meta.Status != "WARN" {
		t.Fatalf("expected WARN for an unavoidable obstacle, got %s", env.Meta.Status)
	}
	if env.Meta.Error == nil {
		t.Error("expected a non-nil meta.error on WARN")
	}
	if len(env.BlockingWarnings) == 0 {
		t.Fatal("expected blocking_warnings to be reported")
	}
	if env.BlockingWarnings[0].Limits.Width != 2.0 {
		t.Errorf("expected the warning to carry the posted width limit, got %v", env.BlockingWarnings[0].Limits.Width)
	}
	if env.Meta.AvoidsApplied < 1 {
		t.Errorf("expected at least one avoid polygon applied, got %d", env.Meta.AvoidsApplied)
	}
}

func TestPlanAllNonViolatingObstaclesProduceZeroAvoids(t *testing.T) {
	nonViolating := obstacle.Obstacle{
		ID:         "x",
		Geometry:   orb.Point{7.2, 51.2},
		MaxWidthM:  obstacle.NotLimiting,
		MaxWeightT: obstacle.NotLimiting,
	}

	p := New(Deps{
		Obstacle: &fakeObstacleSource{obstacles: []obstacle.Obstacle{nonViolating}},
		Routing:  &fakeRouter{},
	})

	req := &PlanRequest{
		Start:              orb.Point{6.9603, 50.9375},
		End:                orb.Point{7.4653, 51.5136},
		Vehicle:            DefaultVehicle,
		TS:                 time.Now().UTC(),
		TZ:                 "Europe/Berlin",
		CorridorWidthM:     2000,
		RoadworksBufferM:   60,
		Alternates:         1,
		DirectionsLanguage: "de-DE",
		AvoidTargetMax:     30,
	}

	env := p.Plan(req)
	if env.Meta.AvoidsApplied != 0 {
		t.Errorf("expected zero avoid polygons for all-non-violating obstacles, got %d", env.Meta.AvoidsApplied)
	}
}
