package routing

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// polylinePrecision is the 1e6 scale factor polyline6 uses.
const polylinePrecision = 1e6

// DecodePolyline6 decodes a polyline6-encoded shape string into a slice of
// (lon, lat) points. polyline6 is little-endian varint, zig-zag delta
// encoded, pairs stream as (lat, lon) but are emitted here as (lon, lat)
// per this package's point convention — watch sign extension for 32-bit
// integers, accumulate in at least 32-bit signed arithmetic.
func DecodePolyline6(encoded string) []orb.Point {
	if encoded == "" {
		return nil
	}

	var coords []orb.Point
	index := 0
	n := len(encoded)
	var lat, lng int64

	for index < n {
		dLat, ok := decodeVarint(encoded, &index)
		if !ok {
			break
		}
		dLng, ok := decodeVarint(encoded, &index)
		if !ok {
			break
		}
		lat += dLat
		lng += dLng
		coords = append(coords, orb.Point{float64(lng) / polylinePrecision, float64(lat) / polylinePrecision})
	}

	return coords
}

func decodeVarint(encoded string, index *int) (int64, bool) {
	var result int64
	var shift uint

	for *index < len(encoded) {
		b := int64(encoded[*index]) - 63
		*index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			if result&1 != 0 {
				result = ^(result >> 1)
			} else {
				result = result >> 1
			}
			return result, true
		}
	}
	return 0, false
}

// EncodePolyline6 is the symmetric encoder; the package's tests use it to
// verify the decode round-trip and to build encoded leg shapes.
func EncodePolyline6(coords []orb.Point) string {
	var buf strings.Builder
	var lastLat, lastLng int64

	for _, c := range coords {
		lat := int64(math.Round(c.Lat() * polylinePrecision))
		lng := int64(math.Round(c.Lon() * polylinePrecision))

		encodeVarint(&buf, lat-lastLat)
		encodeVarint(&buf, lng-lastLng)

		lastLat, lastLng = lat, lng
	}

	return buf.String()
}

func encodeVarint(buf *strings.Builder, v int64) {
	shifted := v << 1
	if v < 0 {
		shifted = ^shifted
	}
	for shifted >= 0x20 {
		buf.WriteByte(byte((shifted&0x1f)|0x20) + 63)
		shifted >>= 5
	}
	buf.WriteByte(byte(shifted) + 63)
}
