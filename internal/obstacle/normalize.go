package obstacle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/heavygoods/routeplanner/internal/geo"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

type numberPattern struct {
	re    *regexp.Regexp
	group int
}

// widthPatterns and weightPatterns mine free-text description fields for
// limits the upstream feature left as structured-field sentinels.
// Comma is accepted as a decimal separator.
var widthPatterns = []numberPattern{
	{regexp.MustCompile(`(?i)(breite|width)\D*([0-9]+(?:[.,][0-9]+)?)\s*m`), 2},
	{regexp.MustCompile(`(?i)([0-9]+(?:[.,][0-9]+)?)\s*m\s*(breite|width)`), 1},
	{regexp.MustCompile(`(?i)(über|over|width)\s*([0-9]+(?:[.,][0-9]+)?)\s*m`), 2},
}

var weightPatterns = []numberPattern{
	{regexp.MustCompile(`(?i)(gewicht|weight|last)\D*([0-9]+(?:[.,][0-9]+)?)\s*t`), 2},
}

// Normalize pins an obstacle feature's arbitrary property names and
// sentinel values onto the canonical Obstacle schema.
func Normalize(f *geojson.Feature) Obstacle {
	props := f.Properties
	if props == nil {
		props = map[string]interface{}{}
	}

	title := stringProp(props, "title")
	description := stringProp(props, "description")
	reason := stringProp(props, "reason")
	subtitle := stringProp(props, "subtitle")

	maxWidth := numberProp(props, "max_width_m", "maxWidth", "max_width")
	maxWeight := numberProp(props, "max_weight_t", "maxWeight", "max_weight")

	text := strings.Join([]string{title, description, reason, subtitle}, " ")

	if maxWidth == 0 || maxWidth > 900 {
		if v, ok := extractNumber(text, widthPatterns); ok {
			maxWidth = v
		}
	}
	if maxWeight == 0 || maxWeight > 900 {
		if v, ok := extractNumber(text, weightPatterns); ok {
			maxWeight = v
		}
	}

	if maxWidth <= 0 {
		maxWidth = NotLimiting
	}
	if maxWeight <= 0 {
		maxWeight = NotLimiting
	}

	externalID := stringProp(props, "external_id")
	sourceSystem := stringProp(props, "source_system")
	source := stringProp(props, "source")

	geometry := toOrbGeometry(f.Geometry)

	id := firstNonEmpty(stringProp(props, "roadwork_id"), externalID, stringProp(props, "restriction_id"), stringProp(props, "id"))
	if id == "" {
		id = boundHash(geometry)
	}

	return Obstacle{
		ID:           id,
		Geometry:     geometry,
		MaxWidthM:    maxWidth,
		MaxWeightT:   maxWeight,
		ValidFrom:    timeProp(props, "valid_from"),
		ValidTo:      timeProp(props, "valid_to"),
		Title:        title,
		Description:  description,
		Reason:       reason,
		Subtitle:     subtitle,
		SourceSystem: sourceSystem,
		Source:       source,
		ExternalID:   externalID,
		Properties:   props,
	}
}

func extractNumber(text string, patterns []numberPattern) (float64, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil || p.group >= len(m) {
			continue
		}
		numStr := strings.ReplaceAll(m[p.group], ",", ".")
		if v, err := strconv.ParseFloat(numStr, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func isMotorway(externalID, sourceSystem, source string) bool {
	if externalID != "" {
		return true
	}
	low := strings.ToLower(sourceSystem + " " + source)
	return strings.Contains(low, "autobahn")
}

func stringProp(props map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := props[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func numberProp(props map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		v, ok := props[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n > 0 {
				return n
			}
		case int:
			if n > 0 {
				return float64(n)
			}
		case string:
			if f, err := strconv.ParseFloat(strings.ReplaceAll(n, ",", "."), 64); err == nil && f > 0 {
				return f
			}
		}
	}
	return 0
}

func timeProp(props map[string]interface{}, key string) *time.Time {
	v, ok := props[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func boundHash(g orb.Geometry) string {
	// No stable identity field was present; fall back to a hash of the
	// geometry's bbox rounded to 3 decimals. Obstacles without identity are
	// expected to keep the same bbox within one planning call.
	b := geo.BoundOf(g)
	round := func(v float64) float64 { return math.Round(v*1000) / 1000 }
	return fmt.Sprintf("bbox:%.3f,%.3f,%.3f,%.3f", round(b.Min.Lon()), round(b.Min.Lat()), round(b.Max.Lon()), round(b.Max.Lat()))
}

func toOrbGeometry(g *geojson.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	switch {
	case g.IsPoint():
		return orb.Point{g.Point[0], g.Point[1]}
	case g.IsLineString():
		ls := make(orb.LineString, len(g.LineString))
		for i, c := range g.LineString {
			ls[i] = orb.Point{c[0], c[1]}
		}
		return ls
	case g.IsPolygon():
		return toOrbPolygon(g.Polygon)
	case g.IsMultiPolygon():
		mp := make(orb.MultiPolygon, len(g.MultiPolygon))
		for i, poly := range g.MultiPolygon {
			mp[i] = toOrbPolygon(poly)
		}
		return mp
	default:
		return nil
	}
}

func toOrbPolygon(rings [][][]float64) orb.Polygon {
	poly := make(orb.Polygon, len(rings))
	for i, ring := range rings {
		r := make(orb.Ring, len(ring))
		for j, c := range ring {
			r[j] = orb.Point{c[0], c[1]}
		}
		poly[i] = r
	}
	return poly
}

