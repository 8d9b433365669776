package http

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/cityradius/internal/pkg/geospatial"
)

// queryFloat parses a finite float query parameter. ok is false when the
// parameter is absent.
func queryFloat(c *fiber.Ctx, name string) (v float64, ok bool, err error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, fmt.Errorf("%s must be a number", name)
	}
	return v, true, nil
}

// requiredCoordinate reads a latitude/longitude pair and checks its range.
func requiredCoordinate(c *fiber.Ctx, latName, lonName string) (lat, lon float64, err error) {
	lat, okLat, err := queryFloat(c, latName)
	if err != nil {
		return 0, 0, err
	}
	lon, okLon, err := queryFloat(c, lonName)
	if err != nil {
		return 0, 0, err
	}
	if !okLat || !okLon {
		return 0, 0, fmt.Errorf("%s and %s are required", latName, lonName)
	}
	if err := checkCoordinate(latName, lonName, lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// checkCoordinate rejects non-finite or out-of-range coordinates.
func checkCoordinate(latName, lonName string, lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%s must be between -90 and 90", latName)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("%s must be between -180 and 180", lonName)
	}
	return nil
}

// radiusMiles reads radius and unit and returns the radius in miles.
// def is used when radius is absent; it must already be in miles.
func radiusMiles(c *fiber.Ctx, def float64) (float64, error) {
	r, ok, err := queryFloat(c, "radius")
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return toMiles(r, c.Query("unit", "mi"))
}

// toMiles converts r from unit (mi or km, case-insensitive, singular or
// plural) to miles.
func toMiles(r float64, unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "mi", "mile", "miles":
		return r, nil
	case "km", "kilometer", "kilometers":
		return geospatial.KilometersToMiles(r), nil
	default:
		return 0, fmt.Errorf("unit must be mi or km")
	}
}

// checkRadius enforces 0 < radius <= the configured maximum.
func (d *Dependencies) checkRadius(radius float64) error {
	if !(radius > 0) || radius > d.maxRadiusMiles() {
		return fmt.Errorf("radius must be greater than 0 and at most %g miles", d.maxRadiusMiles())
	}
	return nil
}
