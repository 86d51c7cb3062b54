package planner

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/heavygoods/routeplanner/internal/geo"
)

// RawVehicle is the JSON wire shape of the vehicle sub-object.
type RawVehicle struct {
	WidthM    *float64 `json:"width_m"`
	HeightM   *float64 `json:"height_m"`
	WeightT   *float64 `json:"weight_t"`
	AxleLoadT *float64 `json:"axleload_t"`
	Hazmat    *bool    `json:"hazmat"`
}

// RawCorridor is the JSON wire shape of the corridor sub-object.
type RawCorridor struct {
	WidthM *float64 `json:"width_m"`
}

// RawRoadworks is the JSON wire shape of the roadworks sub-object.
type RawRoadworks struct {
	BufferM       *float64 `json:"buffer_m"`
	OnlyMotorways *bool    `json:"only_motorways"`
}

// RawPlanRequest is the JSON wire shape of a plan request.
type RawPlanRequest struct {
	Start              []float64     `json:"start"`
	End                []float64     `json:"end"`
	Vehicle            *RawVehicle   `json:"vehicle"`
	TS                 *string       `json:"ts"`
	TZ                 *string       `json:"tz"`
	Corridor           *RawCorridor  `json:"corridor"`
	Roadworks          *RawRoadworks `json:"roadworks"`
	Alternates         *int          `json:"alternates"`
	DirectionsLanguage *string       `json:"directions_language"`
	AvoidTargetMax     *int          `json:"avoid_target_max"`
	ValhallaSoftMax    *int          `json:"valhalla_soft_max"`
	RespectDirection   *bool         `json:"respect_direction"`
}

// Adapt validates a raw request and applies the defaults and derived
// parameters. It is the only place a malformed request is rejected
// outright.
func Adapt(raw *RawPlanRequest) (*PlanRequest, error) {
	start, err := parseCoordinate(raw.Start, "start")
	if err != nil {
		return nil, err
	}
	end, err := parseCoordinate(raw.End, "end")
	if err != nil {
		return nil, err
	}

	vehicle := DefaultVehicle
	if raw.Vehicle != nil {
		if raw.Vehicle.WidthM != nil {
			vehicle.WidthM = *raw.Vehicle.WidthM
		}
		if raw.Vehicle.HeightM != nil {
			vehicle.HeightM = *raw.Vehicle.HeightM
		}
		if raw.Vehicle.WeightT != nil {
			vehicle.WeightT = *raw.Vehicle.WeightT
		}
		if raw.Vehicle.AxleLoadT != nil {
			vehicle.AxleLoadT = *raw.Vehicle.AxleLoadT
		}
		if raw.Vehicle.Hazmat != nil {
			vehicle.Hazmat = *raw.Vehicle.Hazmat
		}
	}

	ts := time.Now().UTC()
	if raw.TS != nil && *raw.TS != "" {
		parsed, err := time.Parse(time.RFC3339, *raw.TS)
		if err != nil {
			return nil, fmt.Errorf("planner: invalid ts %q: %w", *raw.TS, err)
		}
		ts = parsed.UTC()
	}

	tz := "Europe/Berlin"
	if raw.TZ != nil && *raw.TZ != "" {
		tz = *raw.TZ
	}

	corridorWidthM := 2000.0
	if raw.Corridor != nil && raw.Corridor.WidthM != nil {
		corridorWidthM = *raw.Corridor.WidthM
	}

	roadworksBufferM := 60.0
	onlyMotorways := true
	if raw.Roadworks != nil {
		if raw.Roadworks.BufferM != nil {
			roadworksBufferM = *raw.Roadworks.BufferM
		}
		if raw.Roadworks.OnlyMotorways != nil {
			onlyMotorways = *raw.Roadworks.OnlyMotorways
		}
	}

	// Default depends on which strategy the trip will take: short (STRICT)
	// trips default to one alternate, long (FAST_PATH) trips default to none.
	alternates := 1
	if geo.Haversine(start, end) >= distanceThresholdFastPathKm {
		alternates = 0
	}
	if raw.Alternates != nil {
		alternates = *raw.Alternates
	}
	if alternates < 0 {
		alternates = 0
	}
	if alternates > 2 {
		alternates = 2
	}

	language := "de-DE"
	if raw.DirectionsLanguage != nil && *raw.DirectionsLanguage != "" {
		language = *raw.DirectionsLanguage
	}

	avoidTargetMax := 30
	if raw.AvoidTargetMax != nil {
		avoidTargetMax = *raw.AvoidTargetMax
	}

	valhallaSoftMax := 80
	if raw.ValhallaSoftMax != nil {
		valhallaSoftMax = *raw.ValhallaSoftMax
	}

	respectDirection := true
	if raw.RespectDirection != nil {
		respectDirection = *raw.RespectDirection
	}

	return &PlanRequest{
		Start:              start,
		End:                end,
		Vehicle:            vehicle,
		TS:                 ts,
		TZ:                 tz,
		CorridorWidthM:     corridorWidthM,
		RoadworksBufferM:   roadworksBufferM,
		OnlyMotorways:      onlyMotorways,
		Alternates:         alternates,
		DirectionsLanguage: language,
		AvoidTargetMax:     avoidTargetMax,
		ValhallaSoftMax:    valhallaSoftMax,
		RespectDirection:   respectDirection,
	}, nil
}

func parseCoordinate(v []float64, field string) (orb.Point, error) {
	if len(v) != 2 {
		return orb.Point{}, fmt.Errorf("planner: %s must be a 2-element [lon, lat] array", field)
	}
	lon, lat := v[0], v[1]
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return orb.Point{}, fmt.Errorf("planner: %s coordinate out of range", field)
	}
	return orb.Point{lon, lat}, nil
}

// AvoidBufferKm derives the avoid-polygon buffer: max(30m,
// roadworksBuffer_m) + min(150m, max(0, (width-2.55) x 10m)), converted
// to kilometres.
func AvoidBufferKm(vehicle Vehicle, roadworksBufferM float64) float64 {
	baseM := roadworksBufferM
	if baseM < 30 {
		baseM = 30
	}
	extraM := (vehicle.WidthM - 2.55) * 10
	if extraM < 0 {
		extraM = 0
	}
	if extraM > 150 {
		extraM = 150
	}
	return (baseM + extraM) / 1000
}

// CorridorKm derives the corridor search width in kilometres.
func CorridorKm(corridorWidthM float64) float64 {
	v := (corridorWidthM / 1000) * 6
	if v < 6 {
		v = 6
	}
	if v > 60 {
		v = 60
	}
	return v
}

// MaxAvoidsGlobal derives the global avoid-polygon cap.
func MaxAvoidsGlobal(avoidTargetMax int) int {
	v := avoidTargetMax
	if v < 10 {
		v = 10
	}
	if v > 80 {
		v = 80
	}
	return v
}
