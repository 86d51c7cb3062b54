package obstacle

import (
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

// ToFeature renders an Obstacle back into a GeoJSON feature carrying its
// canonical properties — the shape the obstacle-proxy HTTP endpoint
// exposes.
func (o Obstacle) ToFeature() *geojson.Feature {
	var geom *geojson.Geometry
	switch g := o.Geometry.(type) {
	case orb.Point:
		geom = geojson.NewPointGeometry([]float64{g.Lon(), g.Lat()})
	case orb.LineString:
		geom = geojson.NewLineStringGeometry(lineStringToCoords(g))
	case orb.Polygon:
		geom = geojson.NewPolygonGeometry(polygonToRings(g))
	case orb.MultiPolygon:
		rings := make([][][][]float64, len(g))
		for i, p := range g {
			rings[i] = polygonToRings(p)
		}
		geom = geojson.NewMultiPolygonGeometry(rings...)
	default:
		geom = geojson.NewPointGeometry([]float64{0, 0})
	}

	f := geojson.NewFeature(geom)
	f.ID = o.ID
	f.Properties = map[string]interface{}{
		"max_width_m":   o.MaxWidthM,
		"max_weight_t":  o.MaxWeightT,
		"title":         o.Title,
		"description":   o.Description,
		"reason":        o.Reason,
		"subtitle":      o.Subtitle,
		"source_system": o.SourceSystem,
		"source":        o.Source,
		"external_id":   o.ExternalID,
	}
	if o.ValidFrom != nil {
		f.Properties["valid_from"] = o.ValidFrom.Format(time.RFC3339)
	}
	if o.ValidTo != nil {
		f.Properties["valid_to"] = o.ValidTo.Format(time.RFC3339)
	}
	return f
}

func lineStringToCoords(ls orb.LineString) [][]float64 {
	out := make([][]float64, len(ls))
	for i, p := range ls {
		out[i] = []float64{p.Lon(), p.Lat()}
	}
	return out
}

func polygonToRings(poly orb.Polygon) [][][]float64 {
	out := make([][][]float64, len(poly))
	for i, ring := range poly {
		r := make([][]float64, len(ring))
		for j, p := range ring {
			r[j] = []float64{p.Lon(), p.Lat()}
		}
		out[i] = r
	}
	return out
}
