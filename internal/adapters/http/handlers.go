package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

// DistanceHandler returns the great-circle distance between two points.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fromLat, fromLon, err := requiredCoordinate(c, "from_lat", "from_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		toLat, toLon, err := requiredCoordinate(c, "to_lat", "to_lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		from := domain.NewPosition(c.Query("from_name"), fromLat, fromLon)
		to := domain.NewPosition(c.Query("to_name"), toLat, toLon)
		return c.JSON(deps.Cities.Distance(from, to))
	}
}

// BoundsHandler returns the bounding rectangle of a radius around a point.
func BoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := requiredCoordinate(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if c.Query("radius") == "" {
			return errBadRequest(c, "radius is required")
		}
		radius, err := radiusMiles(c, 0)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if radius > deps.maxRadiusMiles() {
			return errBadRequest(c, fmt.Sprintf("radius must not exceed %g miles", deps.maxRadiusMiles()))
		}

		area, err := deps.Cities.Bounds(domain.NewPosition("", lat, lon), radius)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(fiber.Map{
			"center":               domain.GeoPoint{Lat: lat, Lon: lon},
			"radius_miles":         radius,
			"area":                 area,
			"crosses_antimeridian": area.CrossesAntimeridian(),
		})
	}
}

// NearbyCitiesHandler returns cities within a radius of a point, nearest first.
func NearbyCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lon, err := requiredCoordinate(c, "lat", "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		radius, err := radiusMiles(c, deps.defaultRadiusMiles())
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := deps.checkRadius(radius); err != nil {
			return errBadRequest(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", deps.defaultLimit())
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 {
			limit = deps.defaultLimit()
		}
		limit = min(limit, deps.Cities.MaxResults())

		origin := domain.NewPosition(c.Query("name"), lat, lon)
		cities, total, err := deps.Cities.FindNearbyPage(c.UserContext(), origin, radius, offset, limit)
		if err != nil {
			return errFromService(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: cities, Pagination: pg})
	}
}

// CityStatsHandler reports the size of the city dataset.
func CityStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := deps.Cities.Count(c.UserContext())
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(fiber.Map{
			"cities":           n,
			"max_radius_miles": deps.maxRadiusMiles(),
			"max_results":      deps.Cities.MaxResults(),
		})
	}
}
