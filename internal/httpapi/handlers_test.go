package httpapi

import (
	"net"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/valyala/fasthttp"

	"github.com/heavygoods/routeplanner/internal/obstacle"
	"github.com/heavygoods/routeplanner/internal/planner"
	"github.com/heavygoods/routeplanner/internal/routing"

	"testing"
)

type stubObstacleSource struct{}

func (stubObstacleSource) Fetch(params obstacle.FetchParams) *obstacle.FetchResult {
	return &obstacle.FetchResult{Meta: obstacle.FetchMeta{}}
}

type stubRouter struct{}

func (stubRouter) Route(req *routing.RouteRequest) (*routing.RouteOutput, []*routing.RouteOutput, error) {
	start := *req.Locations[0]
	end := *req.Locations[1]
	shape := []orb.Point{{*start.Lon, *start.Lat}, {*end.Lon, *end.Lat}}

	fc := geojson.NewFeatureCollection()
	fc.AddFeature(geojson.NewFeature(geojson.NewLineStringGeometry([][]float64{
		{*start.Lon, *start.Lat}, {*end.Lon, *end.Lat},
	})))

	return &routing.RouteOutput{
		FeatureCollection: fc,
		Legs:              []routing.Leg{{Shape: shape, DistanceKm: 30}},
		DistanceKm:        30,
		DurationS:         1800,
	}, nil, nil
}

func newTestServer() *Server {
	p := planner.New(planner.Deps{Obstacle: stubObstacleSource{}, Routing: stubRouter{}})
	return New(nil, nil, p)
}

func requestCtx(method, path, body string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	req.SetBodyString(body)
	ctx.Init(&req, &net.TCPAddr{}, nil)
	return &ctx
}

func TestHandlePlanRejectsNonPost(t *testing.T) {
	s := newTestServer()
	ctx := requestCtx(fasthttp.MethodGet, "/route/plan", "")
	s.handlePlan(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", ctx.Response.StatusCode())
	}
}

func TestHandlePlanRejectsMalformedBody(t *testing.T) {
	s := newTestServer()
	ctx := requestCtx(fasthttp.MethodPost, "/route/plan", "{not json")
	s.handlePlan(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("expected 400, got %d", ctx.Response.StatusCode())
	}
}

func TestHandlePlanReturnsEnvelopeForValidRequest(t *testing.T) {
	s := newTestServer()
	body := `{"start":[6.9603,50.9375],"end":[7.4653,51.5136]}`
	ctx := requestCtx(fasthttp.MethodPost, "/route/plan", body)
	s.handlePlan(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	if len(ctx.Response.Body()) == 0 {
		t.Error("expected a non-empty response body")
	}
}

func TestHandleRoadworksRejectsMalformedBody(t *testing.T) {
	s := newTestServer()
	ctx := requestCtx(fasthttp.MethodPost, "/roadworks", "not json")
	s.handleRoadworks(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("expected 400, got %d", ctx.Response.StatusCode())
	}
}

func TestHandleRoadworksRejectsWrongBBoxLength(t *testing.T) {
	s := newTestServer()
	ctx := requestCtx(fasthttp.MethodPost, "/roadworks", `{"bbox":[1,2,3]}`)
	s.handleRoadworks(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("expected 400, got %d", ctx.Response.StatusCode())
	}
}

func TestHandleValhallaRejectsMalformedBody(t *testing.T) {
	s := newTestServer()
	ctx := requestCtx(fasthttp.MethodPost, "/route/valhalla", "not json")
	s.handleValhalla(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("expected 400, got %d", ctx.Response.StatusCode())
	}
}

func TestHandlePrecheckRejectsMalformedBody(t *testing.T) {
	s := newTestServer()
	ctx := requestCtx(fasthttp.MethodPost, "/route/precheck", "not json")
	s.handlePrecheck(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("expected 400, got %d", ctx.Response.StatusCode())
	}
}

func TestHandlePrecheckRejectsWrongCoordinateLength(t *testing.T) {
	s := newTestServer()
	ctx := requestCtx(fasthttp.MethodPost, "/route/precheck", `{"start":[1],"end":[2,3]}`)
	s.handlePrecheck(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("expected 400, got %d", ctx.Response.StatusCode())
	}
}

func TestHandlerDispatchesUnknownPathTo404(t *testing.T) {
	s := newTestServer()
	ctx := requestCtx(fasthttp.MethodGet, "/unknown", "")
	s.Handler(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Errorf("expected 404, got %d", ctx.Response.StatusCode())
	}
}

