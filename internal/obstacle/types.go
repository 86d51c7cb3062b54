// Package obstacle implements the obstacle service client, its free-text
// property enrichment, and the dedup/prioritisation pipeline that feeds
// the planner.
package obstacle

import (
	"time"

	"github.com/paulmach/orb"
)

// Obstacle is one active road-work or restriction, normalised onto a
// canonical schema before the planner ever looks at it: {geometry,
// canonicalLimits, id, source, sourceSystem}.
type Obstacle struct {
	ID         string
	Geometry   orb.Geometry
	MaxWidthM  float64 // 999 means "not limiting"
	MaxWeightT float64 // 999 means "not limiting"

	ValidFrom *time.Time
	ValidTo   *time.Time

	Title       string
	Description string
	Reason      string
	Subtitle    string

	SourceSystem string
	Source       string
	ExternalID   string

	Properties map[string]interface{}
}

// NotLimiting is the sentinel value used for an obstacle limit that was
// zero, missing, or otherwise not constraining: 0 or missing is treated
// as 999.
const NotLimiting = 999.0

// ViolatesVehicle reports whether the obstacle's posted limits are below
// the vehicle's dimensions.
func (o Obstacle) ViolatesVehicle(widthM, weightT float64) bool {
	return o.MaxWidthM < widthM || o.MaxWeightT < weightT
}

// FetchParams is the request shape for the obstacle service.
type FetchParams struct {
	TS            time.Time
	TZ            string
	BBox          orb.Bound
	BufferM       float64
	OnlyMotorways bool
	TimeoutMs     int
}

// FetchMeta carries the obstacle service's own diagnostic envelope.
type FetchMeta struct {
	Fetched       int
	Used          int
	TimeoutMsUsed int
	Error         string
}

// FetchResult is always returned, even on upstream failure — the client
// never errors the caller out — it never throws.
type FetchResult struct {
	Obstacles []Obstacle
	Meta      FetchMeta
}
