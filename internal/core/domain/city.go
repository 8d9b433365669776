package domain

import "time"

// City is one row of the reference city dataset.
type City struct {
	Name       string   `json:"name"`
	StateCode  string   `json:"state_code"`
	StateName  string   `json:"state_name"`
	CountyName string   `json:"county_name"`
	Location   GeoPoint `json:"location"`
	Distance   *float64 `json:"distance,omitempty"` // miles from the query origin; set only in query results
}

// Position returns the city as a named Position.
func (c City) Position() Position {
	return Position{Name: c.Name, GeoPoint: c.Location}
}

// DistanceResult is the distance between two positions in both units.
type DistanceResult struct {
	From       Position `json:"from"`
	To         Position `json:"to"`
	Miles      float64  `json:"miles"`
	Kilometers float64  `json:"kilometers"`
}

// NearbyQuery describes an executed proximity query. It is published as an event.
type NearbyQuery struct {
	Origin      Position  `json:"origin"`
	RadiusMiles float64   `json:"radius_miles"`
	Limit       int       `json:"limit"`
	Results     int       `json:"results"`
	ExecutedAt  time.Time `json:"executed_at"`
}
