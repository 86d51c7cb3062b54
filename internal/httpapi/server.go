// Package httpapi exposes the planner's HTTP surface: the plan endpoint,
// and obstacle/router proxy and precheck endpoints the caller
// can use for cheap verdicts without running a full plan. Built on
// fasthttp's own server and RequestHandler, matching the transport layer
// already wired for the two outbound clients — a four-route dispatch
// table doesn't warrant a second, heavier router library on top of it.
package httpapi

import (
	"github.com/valyala/fasthttp"

	"github.com/heavygoods/routeplanner/internal/obstacle"
	"github.com/heavygoods/routeplanner/internal/planner"
	"github.com/heavygoods/routeplanner/internal/routing"
)

// Server wires the three outbound dependencies the HTTP surface proxies
// or orchestrates.
type Server struct {
	obstacle *obstacle.Client
	routing  *routing.Client
	planner  *planner.Planner
}

// New builds a Server over the given dependencies.
func New(obstacleClient *obstacle.Client, routingClient *routing.Client, p *planner.Planner) *Server {
	return &Server{obstacle: obstacleClient, routing: routingClient, planner: p}
}

// Handler dispatches by exact path, method-checking within each handler
// rather than through shared middleware.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/route/plan":
		s.handlePlan(ctx)
	case "/roadworks":
		s.handleRoadworks(ctx)
	case "/route/valhalla":
		s.handleValhalla(ctx)
	case "/route/precheck":
		s.handlePrecheck(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

// ListenAndServe starts the HTTP surface on addr.
func (s *Server) ListenAndServe(addr string) error {
	return fasthttp.ListenAndServe(addr, s.Handler)
}
