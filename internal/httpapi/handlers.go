package httpapi

import (
	"time"

	"github.com/goccy/go-json"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/valyala/fasthttp"

	"github.com/heavygoods/routeplanner/internal/geo"
	"github.com/heavygoods/routeplanner/internal/obstacle"
	"github.com/heavygoods/routeplanner/internal/planner"
	"github.com/heavygoods/routeplanner/internal/routing"
)

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeBlockedInput(ctx *fasthttp.RequestCtx, reason string) {
	writeJSON(ctx, fasthttp.StatusBadRequest, map[string]interface{}{
		"meta": map[string]interface{}{
			"source": "route/plan-v1",
			"status": "BLOCKED",
			"clean":  false,
			"error":  reason,
		},
	})
}

// handlePlan implements POST /route/plan: HTTP 400 only on malformed
// input, otherwise always 200 with a full envelope.
func (s *Server) handlePlan(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	var raw planner.RawPlanRequest
	if err := json.Unmarshal(ctx.PostBody(), &raw); err != nil {
		writeBlockedInput(ctx, "route/plan: malformed JSON body: "+err.Error())
		return
	}

	req, err := planner.Adapt(&raw)
	if err != nil {
		writeBlockedInput(ctx, err.Error())
		return
	}

	env := s.planner.Plan(req)
	writeJSON(ctx, fasthttp.StatusOK, env)
}

type roadworksRequestBody struct {
	TS            string    `json:"ts"`
	TZ            string    `json:"tz"`
	BBox          []float64 `json:"bbox"`
	BufferM       float64   `json:"buffer_m"`
	OnlyMotorways bool      `json:"only_motorways"`
	TimeoutMs     int       `json:"timeout_ms"`
}

// handleRoadworks implements POST /roadworks, proxying to the obstacle
// client and re-rendering its normalised obstacles back into a
// GeoJSON FeatureCollection.
func (s *Server) handleRoadworks(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	var body roadworksRequestBody
	if err := json.Unmarshal(ctx.PostBody(), &body); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "roadworks: malformed JSON body"})
		return
	}
	if len(body.BBox) != 4 {
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "roadworks: bbox must be [minLon,minLat,maxLon,maxLat]"})
		return
	}

	ts, err := time.Parse(time.RFC3339, body.TS)
	if err != nil {
		ts = time.Now().UTC()
	}

	result := s.obstacle.Fetch(obstacle.FetchParams{
		TS:            ts,
		TZ:            body.TZ,
		BBox:          orb.Bound{Min: orb.Point{body.BBox[0], body.BBox[1]}, Max: orb.Point{body.BBox[2], body.BBox[3]}},
		BufferM:       body.BufferM,
		OnlyMotorways: body.OnlyMotorways,
		TimeoutMs:     body.TimeoutMs,
	})

	features := make([]*geojson.Feature, 0, len(result.Obstacles))
	for _, o := range result.Obstacles {
		features = append(features, o.ToFeature())
	}

	writeJSON(ctx, fasthttp.StatusOK, map[string]interface{}{
		"type":     "FeatureCollection",
		"features": features,
		"meta": map[string]interface{}{
			"fetched":         result.Meta.Fetched,
			"used":            result.Meta.Used,
			"timeout_ms_used": result.Meta.TimeoutMsUsed,
			"error":           result.Meta.Error,
		},
	})
}

// handleValhalla implements POST /route/valhalla, proxying directly to
// the routing engine client.
func (s *Server) handleValhalla(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	var req routing.RouteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "route/valhalla: malformed JSON body"})
		return
	}

	out, alts, err := s.routing.Route(&req)
	if err != nil {
		if errResp, ok := err.(*routing.ErrorResponse); ok {
			writeJSON(ctx, fasthttp.StatusOK, errResp)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, &routing.ErrorResponse{ErrorMessage: err.Error()})
		return
	}

	response := map[string]interface{}{"geojson": out.FeatureCollection}
	if len(alts) > 0 {
		altFCs := make([]*geojson.FeatureCollection, len(alts))
		for i, a := range alts {
			altFCs[i] = a.FeatureCollection
		}
		response["geojson_alts"] = altFCs
	}
	writeJSON(ctx, fasthttp.StatusOK, response)
}

type precheckRequestBody struct {
	Start     []float64            `json:"start"`
	End       []float64            `json:"end"`
	Vehicle   *planner.RawVehicle  `json:"vehicle"`
	TS        *string              `json:"ts"`
	TZ        *string              `json:"tz"`
	Roadworks *planner.RawRoadworks `json:"roadworks"`
}

// handlePrecheck implements POST /route/precheck: a cheap
// corridor-intersection verdict without running the full planner.
func (s *Server) handlePrecheck(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	var body precheckRequestBody
	if err := json.Unmarshal(ctx.PostBody(), &body); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "route/precheck: malformed JSON body"})
		return
	}
	if len(body.Start) != 2 || len(body.End) != 2 {
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "route/precheck: start/end must be 2-element [lon, lat] arrays"})
		return
	}
	start := orb.Point{body.Start[0], body.Start[1]}
	end := orb.Point{body.End[0], body.End[1]}

	vehicle := planner.DefaultVehicle
	if body.Vehicle != nil {
		if body.Vehicle.WidthM != nil {
			vehicle.WidthM = *body.Vehicle.WidthM
		}
		if body.Vehicle.WeightT != nil {
			vehicle.WeightT = *body.Vehicle.WeightT
		}
	}

	ts := time.Now().UTC()
	if body.TS != nil && *body.TS != "" {
		if parsed, err := time.Parse(time.RFC3339, *body.TS); err == nil {
			ts = parsed.UTC()
		}
	}
	tz := "Europe/Berlin"
	if body.TZ != nil && *body.TZ != "" {
		tz = *body.TZ
	}

	roadworksBufferM := 60.0
	onlyMotorways := true
	if body.Roadworks != nil {
		if body.Roadworks.BufferM != nil {
			roadworksBufferM = *body.Roadworks.BufferM
		}
		if body.Roadworks.OnlyMotorways != nil {
			onlyMotorways = *body.Roadworks.OnlyMotorways
		}
	}

	// max(200, buffer_m/1000) x 1.2, with the 200 floor read as kilometres
	// rather than metres.
	bufferKm := roadworksBufferM / 1000
	if bufferKm < 200 {
		bufferKm = 200
	}
	bufferKm *= 1.2

	bbox := geo.SafeBBox(start, end, bufferKm)
	result := s.obstacle.Fetch(obstacle.FetchParams{
		TS:            ts,
		TZ:            tz,
		BBox:          bbox,
		BufferM:       roadworksBufferM,
		OnlyMotorways: onlyMotorways,
	})

	corridor := geo.CorridorPolygon(start, end, bufferKm)

	var blocking []map[string]interface{}
	intersects := false
	for _, o := range result.Obstacles {
		if o.Geometry == nil || !geo.Intersects(corridor, o.Geometry) {
			continue
		}
		intersects = true
		if o.ViolatesVehicle(vehicle.WidthM, vehicle.WeightT) {
			blocking = append(blocking, map[string]interface{}{
				"title":  o.Title,
				"limits": map[string]float64{"width": o.MaxWidthM, "weight": o.MaxWeightT},
			})
		}
	}

	status := "CLEAN"
	switch {
	case result.Meta.Error != "":
		status = "BLOCKED"
	case len(blocking) > 0:
		status = "WARN"
	}

	writeJSON(ctx, fasthttp.StatusOK, map[string]interface{}{
		"status":         status,
		"intersects":     intersects,
		"blocking_count": len(blocking),
		"blocking":       blocking,
	})
}
