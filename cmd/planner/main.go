// Command planner runs the truck route-planning HTTP surface: it wires
// the obstacle service client, the truck-routing engine client, and the
// planning core behind a single fasthttp listener.
package main

import (
	"log"

	"github.com/heavygoods/routeplanner/internal/config"
	"github.com/heavygoods/routeplanner/internal/httpapi"
	"github.com/heavygoods/routeplanner/internal/obstacle"
	"github.com/heavygoods/routeplanner/internal/planner"
	"github.com/heavygoods/routeplanner/internal/routing"
)

func main() {
	cfg := config.Load()

	obstacleClient := obstacle.NewClient(&obstacle.ClientConfig{
		Endpoint:   cfg.Obstacle.BaseURL,
		Credential: cfg.Obstacle.Credential,
		Timeout:    cfg.Obstacle.Timeout,
	})

	routingClient := routing.NewClient(&routing.ClientConfig{
		Endpoint: cfg.Router.BaseURL,
		Timeout:  cfg.Router.Timeout,
	})

	p := planner.New(planner.Deps{
		Obstacle: obstacleClient,
		Routing:  routingClient,
	})

	server := httpapi.New(obstacleClient, routingClient, p)

	log.Printf("planner: listening on %s", cfg.Listen.Addr)
	if err := server.ListenAndServe(cfg.Listen.Addr); err != nil {
		log.Fatalf("planner: server exited: %v", err)
	}
}
