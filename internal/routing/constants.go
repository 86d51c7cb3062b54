package routing

// CostingModelTruck is the only costing model this client speaks: standard
// costing for trucks, which inherits the auto costing behaviors but checks
// for truck access, width and height restrictions, and weight limits on
// the roads.
const CostingModelTruck string = "truck"

// Penalty knobs. Without exclusion polygons the engine is left to its
// normal preferences; with them present the planner raises gate and
// service penalties hard enough to force a detour around them.
const (
	ManeuverPenaltyDefault float64 = 5
	GatePenaltyDefault     float64 = 300
	ServicePenaltyDefault  float64 = 0

	ManeuverPenaltyEscalated float64 = 2000
	GatePenaltyEscalated     float64 = 10_000_000
	ServicePenaltyEscalated  float64 = 10_000_000
)

const (
	useHighwaysDefault           float64 = 1.0
	countryCrossingPenaltyDefault float64 = 0
)
