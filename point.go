package geoclient

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is an immutable coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// NewPoint validates the coordinate ranges and returns the point.
// Latitude must be within [-90, 90] and longitude within [-180, 180].
func NewPoint(lat, lon float64) (Point, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Point{}, &Error{Kind: KindQuery, Message: fmt.Sprintf("latitude %v out of range [-90, 90]", lat)}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Point{}, &Error{Kind: KindQuery, Message: fmt.Sprintf("longitude %v out of range [-180, 180]", lon)}
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// ParsePoint parses a "lat,lon" string into a Point.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, &Error{Kind: KindQuery, Message: fmt.Sprintf("coordinate %q must be \"lat,lon\"", s)}
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, &Error{Kind: KindQuery, Message: fmt.Sprintf("invalid latitude in %q", s), Err: err}
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, &Error{Kind: KindQuery, Message: fmt.Sprintf("invalid longitude in %q", s), Err: err}
	}
	return NewPoint(lat, lon)
}

// CoercePoint converts the accepted reverse-query forms into a Point:
// a Point or *Point, a [2]float64 or two-element []float64 ordered
// lat, lon, or a "lat,lon" string. Any other value fails with a
// KindQuery error.
func CoercePoint(v any) (Point, error) {
	switch q := v.(type) {
	case Point:
		return NewPoint(q.Lat, q.Lon)
	case *Point:
		if q == nil {
			return Point{}, &Error{Kind: KindQuery, Message: "nil coordinate"}
		}
		return NewPoint(q.Lat, q.Lon)
	case [2]float64:
		return NewPoint(q[0], q[1])
	case []float64:
		if len(q) != 2 {
			return Point{}, &Error{Kind: KindQuery, Message: fmt.Sprintf("coordinate slice must have 2 elements, got %d", len(q))}
		}
		return NewPoint(q[0], q[1])
	case string:
		return ParsePoint(q)
	default:
		return Point{}, &Error{Kind: KindQuery, Message: fmt.Sprintf("unsupported coordinate type %T", v)}
	}
}

// String renders the point as "lat,lon", the form most providers accept
// in query strings.
func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// Near reports whether both axes are within tol degrees of o.
func (p Point) Near(o Point, tol float64) bool {
	return math.Abs(p.Lat-o.Lat) <= tol && math.Abs(p.Lon-o.Lon) <= tol
}
