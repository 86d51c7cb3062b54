package routing

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestNewTruckRequestDefaultPenalties(t *testing.T) {
	req := NewTruckRequest(TruckRequestParams{
		Start:   orb.Point{6.9603, 50.9375},
		End:     orb.Point{7.4653, 51.5136},
		WidthM:  2.55,
		HeightM: 4.0,
		WeightT: 18,
	})

	if req.CostingOptions == nil || req.CostingOptions.Truck == nil {
		t.Fatal("expected truck costing options to be set")
	}
	truck := req.CostingOptions.Truck
	if *truck.ManeuverPenalty != ManeuverPenaltyDefault {
		t.Errorf("expected default maneuver penalty, got %v", *truck.ManeuverPenalty)
	}
	if *truck.Weight != 18000 {
		t.Errorf("expected weight in kg (18000), got %v", *truck.Weight)
	}
	if len(req.ExcludePolygons) != 0 {
		t.Errorf("expected no exclude polygons, got %d", len(req.ExcludePolygons))
	}
}

func TestNewTruckRequestEscalatesPenaltiesWithAvoidPolygons(t *testing.T) {
	poly := orb.Polygon{{
		{6.0, 50.0}, {6.0, 50.1}, {6.1, 50.1}, {6.1, 50.0}, {6.0, 50.0},
	}}

	req := NewTruckRequest(TruckRequestParams{
		Start:         orb.Point{6.9603, 50.9375},
		End:           orb.Point{7.4653, 51.5136},
		WidthM:        2.55,
		HeightM:       4.0,
		WeightT:       18,
		AvoidPolygons: []orb.Polygon{poly},
	})

	truck := req.CostingOptions.Truck
	if *truck.ManeuverPenalty != ManeuverPenaltyEscalated {
		t.Errorf("expected escalated maneuver penalty, got %v", *truck.ManeuverPenalty)
	}
	if *truck.GatePenalty != GatePenaltyEscalated {
		t.Errorf("expected escalated gate penalty, got %v", *truck.GatePenalty)
	}
	if len(req.ExcludePolygons) != 1 || len(req.AvoidPolygons) != 1 {
		t.Fatalf("expected both exclude and avoid polygons to carry the ring, got %d/%d",
			len(req.ExcludePolygons), len(req.AvoidPolygons))
	}
	if len(req.ExcludePolygons[0]) != 5 {
		t.Errorf("expected 5-point ring, got %d", len(req.ExcludePolygons[0]))
	}
}

func TestNewTruckRequestAlternates(t *testing.T) {
	req := NewTruckRequest(TruckRequestParams{
		Start:      orb.Point{6.9603, 50.9375},
		End:        orb.Point{7.4653, 51.5136},
		Alternates: 2,
	})
	if req.Alternates == nil || *req.Alternates != 2 {
		t.Fatalf("expected alternates=2, got %v", req.Alternates)
	}
}

func TestDecodeTripBuildsFeaturePerLeg(t *testing.T) {
	shape := EncodePolyline6([]orb.Point{
		{6.9603, 50.9375},
		{7.0, 51.0},
	})

	trip := valhallaTrip{}
	trip.Legs = append(trip.Legs, struct {
		Shape   string `json:"shape"`
		Summary struct {
			Length float64 `json:"length"`
			Time   float64 `json:"time"`
		} `json:"summary"`
		Maneuvers []struct {
			Instruction string   `json:"instruction"`
			Length      float64  `json:"length"`
			Time        float64  `json:"time"`
			StreetNames []string `json:"street_names"`
		} `json:"maneuvers"`
	}{Shape: shape})
	trip.Legs[0].Summary.Length = 12.3
	trip.Legs[0].Summary.Time = 600

	out := decodeTrip(trip)
	if out == nil {
		t.Fatal("expected non-nil output")
	}
	if len(out.Legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(out.Legs))
	}
	if out.DistanceKm != 12.3 {
		t.Errorf("expected distance 12.3, got %v", out.DistanceKm)
	}
	if len(out.FeatureCollection.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(out.FeatureCollection.Features))
	}
}

func TestDecodeTripEmptyLegsReturnsNil(t *testing.T) {
	if out := decodeTrip(valhallaTrip{}); out != nil {
		t.Error("expected nil output for a trip with zero legs")
	}
}
