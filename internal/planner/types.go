// Package planner implements the FAST_PATH/STRICT route-planning core:
// probing the routing engine, tiling obstacle fetches along the probe,
// converging on an obstacle-free detour by accumulating avoid
// polygons, and assembling the final plan envelope.
package planner

import (
	"time"

	"github.com/goccy/go-json"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"

	"github.com/heavygoods/routeplanner/internal/routing"
)

// Vehicle carries the dimensions an obstacle's posted limits are checked
// against.
type Vehicle struct {
	WidthM    float64
	HeightM   float64
	WeightT   float64
	AxleLoadT float64
	Hazmat    bool
}

// DefaultVehicle is applied wherever a request omits vehicle dimensions.
var DefaultVehicle = Vehicle{WidthM: 2.55, HeightM: 4.0, WeightT: 40, AxleLoadT: 10, Hazmat: true}

// PlanRequest is the fully validated, defaulted request a Planner
// operates on.
type PlanRequest struct {
	Start orb.Point
	End   orb.Point

	Vehicle Vehicle

	TS time.Time
	TZ string

	CorridorWidthM float64

	RoadworksBufferM float64
	OnlyMotorways    bool

	Alternates         int
	DirectionsLanguage string
	AvoidTargetMax     int
	ValhallaSoftMax    int
	RespectDirection   bool
}

// AvoidPolygon is one accumulated exclusion polygon, tied back to the
// obstacle it was built from for ID-based dedup.
type AvoidPolygon struct {
	ObstacleID string
	Polygon    orb.Polygon
}

// BlockingWarning is one obstacle that still violates the vehicle and
// intersects the best candidate's route buffer.
type BlockingWarning struct {
	Title          string
	Description    string
	LimitWidth     float64
	LimitWeight    float64
	Coords         orb.Point
	AlreadyAvoided bool
}

// RouteCandidate is a scored routing-engine response.
type RouteCandidate struct {
	Output           *routing.RouteOutput
	DistanceKm       float64
	BlockingWarnings []BlockingWarning
	RoadworksHits    int
	AvoidsApplied    int
}

// Phase is one entry in the plan envelope's phases log: every phase
// emits an entry recording its outcome.
type Phase struct {
	PhaseName string
	Result    string
	Reason    string
	Extra     map[string]interface{}
}

// MarshalJSON flattens Extra alongside the fixed phase/result/reason keys,
// producing "{ phase, ...step-specific fields, result, reason? }".
func (p Phase) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(p.Extra)+3)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["phase"] = p.PhaseName
	m["result"] = p.Result
	if p.Reason != "" {
		m["reason"] = p.Reason
	}
	return json.Marshal(m)
}

// PlanMeta is the `meta` member of the plan response envelope.
type PlanMeta struct {
	Source        string  `json:"source"`
	Status        string  `json:"status"`
	Clean         bool    `json:"clean"`
	Error         *string `json:"error"`
	Iterations    int     `json:"iterations"`
	AvoidsApplied int     `json:"avoids_applied"`
	BBoxKmUsed    *int    `json:"bbox_km_used"`
	FallbackUsed  bool    `json:"fallback_used"`
	Phases        []Phase `json:"phases"`
}

// AvoidApplied is the `avoid_applied` member of the plan response
// envelope.
type AvoidApplied struct {
	Total int `json:"total"`
}

// Limits is the `limits` member of a blocking warning.
type Limits struct {
	Width  float64 `json:"width"`
	Weight float64 `json:"weight"`
}

// BlockingWarningOut is the wire shape of one blocking_warnings entry.
type BlockingWarningOut struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Limits         Limits     `json:"limits"`
	Coords         [2]float64 `json:"coords"`
	AlreadyAvoided bool       `json:"already_avoided"`
}

// PlanEnvelope is the full plan response envelope.
type PlanEnvelope struct {
	Meta             PlanMeta                     `json:"meta"`
	AvoidApplied     AvoidApplied                 `json:"avoid_applied"`
	GeoJSON          *geojson.FeatureCollection   `json:"geojson"`
	BlockingWarnings []BlockingWarningOut         `json:"blocking_warnings"`
	GeoJSONAlts      []*geojson.FeatureCollection `json:"geojson_alts"`
}
