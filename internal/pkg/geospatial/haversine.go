// Package geospatial implements great-circle math on a spherical Earth.
//
// Angles cross the package boundary in decimal degrees and distances in
// statute miles. Radians are internal only.
package geospatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

// EarthRadiusMiles is the mean Earth radius used by every calculation here,
// so distances and bounding boxes agree on units.
const EarthRadiusMiles = 3960.0

const (
	minLatitude  = -math.Pi / 2
	maxLatitude  = math.Pi / 2
	minLongitude = -math.Pi
	maxLongitude = math.Pi
)

// ErrInvalidArgument is returned for inputs outside an operation's domain.
var ErrInvalidArgument = errors.New("invalid argument")

// Distance returns the great-circle distance in miles between a and b using
// the Haversine formula.
func Distance(a, b domain.Position) float64 {
	dLat := ToRadians(b.Lat - a.Lat)
	dLon := ToRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(ToRadians(a.Lat))*math.Cos(ToRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// h can drift just above 1 near antipodal points.
	c := 2 * math.Asin(math.Min(1, math.Sqrt(h)))
	return EarthRadiusMiles * c
}

// BoundingCoordinates returns the latitude/longitude rectangle that contains
// every point within radiusMiles of center. When the circle reaches a pole the
// rectangle spans all longitudes. A rectangle crossing the antimeridian has
// MinLon > MaxLon.
func BoundingCoordinates(center domain.Position, radiusMiles float64) (domain.GeoArea, error) {
	if radiusMiles < 0 {
		return domain.GeoArea{}, fmt.Errorf("bounding coordinates: radius %.4f is negative: %w", radiusMiles, ErrInvalidArgument)
	}

	radLat := ToRadians(center.Lat)
	radLon := ToRadians(center.Lon)

	// angular radius on a great circle
	radDist := radiusMiles / EarthRadiusMiles

	minLat := radLat - radDist
	maxLat := radLat + radDist

	var minLon, maxLon float64
	if minLat > minLatitude && maxLat < maxLatitude {
		deltaLon := math.Asin(math.Sin(radDist) / math.Cos(radLat))
		minLon = radLon - deltaLon
		if minLon < minLongitude {
			minLon += 2 * math.Pi
		}
		maxLon = radLon + deltaLon
		if maxLon > maxLongitude {
			maxLon -= 2 * math.Pi
		}
	} else {
		// a pole is within the radius
		minLat = math.Max(minLat, minLatitude)
		maxLat = math.Min(maxLat, maxLatitude)
		minLon = minLongitude
		maxLon = maxLongitude
	}

	return domain.GeoArea{
		MinLat: ToDegrees(minLat),
		MaxLat: ToDegrees(maxLat),
		MinLon: ToDegrees(minLon),
		MaxLon: ToDegrees(maxLon),
	}, nil
}
