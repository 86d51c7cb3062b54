package routing

// TruckCostingOptions carries the width/height/exclusion-aware knobs this
// system's truck profile needs, beyond the length/weight/axle_load/hazmat
// fields a minimal truck costing model would have.
type TruckCostingOptions struct {
	// ManeuverPenalty penalty applied when transitioning between roads that
	// do not have consistent naming. Raised hard once exclusion polygons
	// are present, to push the engine into taking the detour rather than
	// finding a cheaper way to stay on the excluded road.
	ManeuverPenalty *float64 `json:"maneuver_penalty,omitempty"`

	// GatePenalty penalty applied when a gate with no access information
	// is on the road.
	GatePenalty *float64 `json:"gate_penalty,omitempty"`

	// ServicePenalty penalty applied for transition to a generic service
	// road.
	ServicePenalty *float64 `json:"service_penalty,omitempty"`

	// CountryCrossingPenalty penalty applied for an international border
	// crossing. Always 0 here — this planner does not attempt to avoid
	// cross-border routes.
	CountryCrossingPenalty *float64 `json:"country_crossing_penalty,omitempty"`

	// UseHighways indicates the willingness to take highways, 0..1.
	UseHighways *float64 `json:"use_highways,omitempty"`

	// Shortest switches the metric to quasi-shortest (pure distance). This
	// planner always leaves the engine's own time/cost model in charge.
	Shortest *bool `json:"shortest,omitempty"`

	// Width of the vehicle, in metres.
	Width *float64 `json:"width,omitempty"`

	// Height of the vehicle, in metres.
	Height *float64 `json:"height,omitempty"`

	// Weight of the vehicle, in kilograms (the backend contract this
	// planner speaks takes kilograms, not the metric tons Valhalla's own
	// public API documents).
	Weight *float64 `json:"weight,omitempty"`

	// AxleLoad of the vehicle, in kilograms.
	AxleLoad *float64 `json:"axle_load,omitempty"`

	// Hazmat indicates the vehicle is carrying hazardous materials.
	Hazmat *bool `json:"hazmat,omitempty"`
}

// CostingOptions wraps the costing model specific options. Only truck
// costing is modeled — the planner never routes any other vehicle type.
type CostingOptions struct {
	Truck *TruckCostingOptions `json:"truck,omitempty"`
}

// DirectionsOptions carries narrative-output preferences; this planner
// only consumes distance/duration and maneuver text, but passes these
// through since the engine expects them on every request.
type DirectionsOptions struct {
	Language *string `json:"language,omitempty"`
	Units    *string `json:"units,omitempty"`
}
