package domain

// GeoPoint represents a geographic coordinate in decimal degrees (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position is a coordinate with an optional display name.
type Position struct {
	Name string `json:"name,omitempty"`
	GeoPoint
}

// NewPosition builds a named Position.
func NewPosition(name string, lat, lon float64) Position {
	return Position{Name: name, GeoPoint: GeoPoint{Lat: lat, Lon: lon}}
}

// GeoArea is an axis-aligned latitude/longitude rectangle in degrees.
// MinLon > MaxLon means the area wraps across the antimeridian.
type GeoArea struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// CrossesAntimeridian reports whether the longitude range wraps past ±180°.
func (a GeoArea) CrossesAntimeridian() bool {
	return a.MinLon > a.MaxLon
}

// Contains reports whether p lies inside the area, bounds included.
func (a GeoArea) Contains(p GeoPoint) bool {
	if p.Lat < a.MinLat || p.Lat > a.MaxLat {
		return false
	}
	if a.CrossesAntimeridian() {
		return p.Lon >= a.MinLon || p.Lon <= a.MaxLon
	}
	return p.Lon >= a.MinLon && p.Lon <= a.MaxLon
}
