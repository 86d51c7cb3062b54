package routing

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gotidy/ptr"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/valyala/fasthttp"
)

// RouteRequest is the wire request for the truck-routing engine.
// Exclusion polygons are attached under both exclude_polygons and
// avoid_polygons keys defensively, since the engine's backend variance
// means either key name might be the one actually honored.
type RouteRequest struct {
	ID                *string             `json:"id,omitempty"`
	Locations         []*Location         `json:"locations"`
	Costing           *string             `json:"costing,omitempty"`
	CostingOptions    *CostingOptions     `json:"costing_options,omitempty"`
	DirectionsOptions *DirectionsOptions  `json:"directions_options,omitempty"`
	Alternates        *int                `json:"alternates,omitempty"`
	ExcludePolygons   [][][]float64       `json:"exclude_polygons,omitempty"`
	AvoidPolygons     [][][]float64       `json:"avoid_polygons,omitempty"`
}

// TruckRequestParams is the input the planner assembles for one router
// call.
type TruckRequestParams struct {
	Start, End      orb.Point
	WidthM          float64
	HeightM         float64
	WeightT         float64
	AxleLoadT       float64
	Hazmat          bool
	AvoidPolygons   []orb.Polygon
	Alternates      int
	Language        string
	EscapeMode      bool
}

// NewTruckRequest builds a truck-costing RouteRequest from planner
// parameters: vehicle dims in the engine's own units, escape-mode
// penalty escalation once any exclusion polygon is present, and both
// exclude_polygons/avoid_polygons attached defensively.
func NewTruckRequest(p TruckRequestParams) *RouteRequest {
	maneuverPenalty := ManeuverPenaltyDefault
	gatePenalty := GatePenaltyDefault
	servicePenalty := ServicePenaltyDefault
	if len(p.AvoidPolygons) > 0 {
		maneuverPenalty = ManeuverPenaltyEscalated
		gatePenalty = GatePenaltyEscalated
		servicePenalty = ServicePenaltyEscalated
	}

	weightKg := p.WeightT * 1000
	axleLoadKg := p.AxleLoadT * 1000

	truckOpts := &TruckCostingOptions{
		ManeuverPenalty:        ptr.Float64(maneuverPenalty),
		GatePenalty:            ptr.Float64(gatePenalty),
		ServicePenalty:         ptr.Float64(servicePenalty),
		CountryCrossingPenalty: ptr.Float64(countryCrossingPenaltyDefault),
		UseHighways:            ptr.Float64(useHighwaysDefault),
		Shortest:               ptr.Bool(false),
		Width:                  ptr.Float64(p.WidthM),
		Height:                 ptr.Float64(p.HeightM),
		Weight:                 ptr.Float64(weightKg),
		AxleLoad:               ptr.Float64(axleLoadKg),
		Hazmat:                 ptr.Bool(p.Hazmat),
	}

	req := &RouteRequest{
		Locations: []*Location{
			{Lat: ptr.Float64(p.Start.Lat()), Lon: ptr.Float64(p.Start.Lon())},
			{Lat: ptr.Float64(p.End.Lat()), Lon: ptr.Float64(p.End.Lon())},
		},
		Costing:        ptr.String(CostingModelTruck),
		CostingOptions: &CostingOptions{Truck: truckOpts},
		DirectionsOptions: &DirectionsOptions{
			Language: ptr.String(p.Language),
			Units:    ptr.String("kilometers"),
		},
	}

	if p.Alternates > 0 {
		req.Alternates = ptr.Int(p.Alternates)
	}

	if len(p.AvoidPolygons) > 0 {
		polys := make([][][]float64, 0, len(p.AvoidPolygons))
		for _, poly := range p.AvoidPolygons {
			if len(poly) == 0 {
				continue
			}
			ring := make([][]float64, len(poly[0]))
			for i, pt := range poly[0] {
				ring[i] = []float64{pt.Lon(), pt.Lat()}
			}
			polys = append(polys, ring)
		}
		req.ExcludePolygons = polys
		req.AvoidPolygons = polys
	}

	// EscapeMode is folded into the escalated penalties above; the field
	// only exists on TruckRequestParams to document intent at call sites
	// and is consulted nowhere else, since the only knob the engine
	// exposes for this is the penalty set itself.
	_ = p.EscapeMode

	return req
}

// Leg is one decoded routing leg.
type Leg struct {
	Index           int
	DistanceKm      float64
	DurationS       float64
	Maneuvers       []Maneuver
	StreetsSequence []string
	Shape           []orb.Point
}

// Maneuver is one turn-by-turn instruction.
type Maneuver struct {
	Instruction string
	DistanceKm  float64
	DurationS   float64
	StreetNames []string
}

// RouteOutput is the decoded routing engine response: a GeoJSON
// FeatureCollection (one LineString feature per leg) plus the legs the
// features were built from, for planner-side scoring.
type RouteOutput struct {
	FeatureCollection *geojson.FeatureCollection
	Legs              []Leg
	DistanceKm        float64
	DurationS         float64
}

type valhallaTrip struct {
	Legs []struct {
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
	} `json:"legs"`
	Summary struct {
		Length float64 `json:"length"`
		Time   float64 `json:"time"`
	} `json:"summary"`
}

type routeResponseBody struct {
	Trip       valhallaTrip   `json:"trip"`
	Alternates []valhallaTrip `json:"alternates"`
}

// Client is the HTTP client for the truck-routing engine.
type Client struct {
	config     *ClientConfig
	httpClient *fasthttp.Client
}

// NewClient creates a new routing engine client.
func NewClient(cfg *ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		config: cfg,
		httpClient: &fasthttp.Client{
			Name: "routeplanner-routing-client",
		},
	}
}

// Route calls the truck-routing engine and decodes its response into a
// primary RouteOutput plus up to len(alternates) alternate outputs.
func (c *Client) Route(req *RouteRequest) (*RouteOutput, []*RouteOutput, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("routing: failed to encode request: %w", err)
	}

	httpReq := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(httpReq)
	httpResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(httpResp)

	httpReq.SetRequestURI(c.config.Endpoint + "/route")
	httpReq.Header.SetMethod(fasthttp.MethodPost)
	httpReq.Header.SetContentType("application/json")
	httpReq.SetBody(bodyBytes)

	if err := c.httpClient.DoTimeout(httpReq, httpResp, c.config.Timeout); err != nil {
		return nil, nil, fmt.Errorf("routing: request failed: %w", err)
	}

	if httpResp.StatusCode() != fasthttp.StatusOK {
		errResp := &ErrorResponse{}
		if jsonErr := json.Unmarshal(httpResp.Body(), errResp); jsonErr != nil || errResp.ErrorMessage == "" {
			errResp.ErrorMessage = string(httpResp.Body())
			errResp.Status = httpResp.StatusCode()
		}
		return nil, nil, errResp
	}

	var parsed routeResponseBody
	if err := json.Unmarshal(httpResp.Body(), &parsed); err != nil {
		return nil, nil, fmt.Errorf("routing: failed to decode response: %w", err)
	}

	primary := decodeTrip(parsed.Trip)
	if primary == nil {
		return nil, nil, fmt.Errorf("routing: response carried zero legs")
	}

	var alternates []*RouteOutput
	for _, alt := range parsed.Alternates {
		if out := decodeTrip(alt); out != nil {
			alternates = append(alternates, out)
		}
	}

	return primary, alternates, nil
}

func decodeTrip(trip valhallaTrip) *RouteOutput {
	if len(trip.Legs) == 0 {
		return nil
	}

	fc := geojson.NewFeatureCollection()
	var legs []Leg
	var totalDistance, totalDuration float64

	for i, rawLeg := range trip.Legs {
		shape := DecodePolyline6(rawLeg.Shape)
		lineCoords := make([][]float64, len(shape))
		for j, p := range shape {
			lineCoords[j] = []float64{p.Lon(), p.Lat()}
		}

		var maneuvers []Maneuver
		var streets []string
		for _, m := range rawLeg.Maneuvers {
			maneuvers = append(maneuvers, Maneuver{
				Instruction: m.Instruction,
				DistanceKm:  m.Length,
				DurationS:   m.Time,
				StreetNames: m.StreetNames,
			})
			streets = append(streets, m.StreetNames...)
		}

		leg := Leg{
			Index:           i,
			DistanceKm:      rawLeg.Summary.Length,
			DurationS:       rawLeg.Summary.Time,
			Maneuvers:       maneuvers,
			StreetsSequence: streets,
			Shape:           shape,
		}
		legs = append(legs, leg)
		totalDistance += leg.DistanceKm
		totalDuration += leg.DurationS

		feature := geojson.NewFeature(geojson.NewLineStringGeometry(lineCoords))
		feature.Properties = map[string]interface{}{
			"leg_index":        i,
			"distance_km":      leg.DistanceKm,
			"duration_s":       leg.DurationS,
			"streets_sequence": streets,
			"maneuvers":        maneuversToProps(maneuvers),
		}
		fc.AddFeature(feature)
	}

	if totalDistance == 0 {
		totalDistance = trip.Summary.Length
	}
	if totalDuration == 0 {
		totalDuration = trip.Summary.Time
	}

	return &RouteOutput{
		FeatureCollection: fc,
		Legs:              legs,
		DistanceKm:        totalDistance,
		DurationS:         totalDuration,
	}
}

func maneuversToProps(maneuvers []Maneuver) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(maneuvers))
	for _, m := range maneuvers {
		out = append(out, map[string]interface{}{
			"instruction":  m.Instruction,
			"distance_km":  m.DistanceKm,
			"duration_s":   m.DurationS,
			"street_names": m.StreetNames,
		})
	}
	return out
}
