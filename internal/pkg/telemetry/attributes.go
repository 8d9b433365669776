package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys recorded on proximity queries.
const (
	AttrOriginLat   = attribute.Key("geo.origin.lat")
	AttrOriginLon   = attribute.Key("geo.origin.lon")
	AttrRadiusMiles = attribute.Key("geo.radius_miles")
	AttrCandidates  = attribute.Key("geo.candidates")
	AttrResults     = attribute.Key("geo.results")
	AttrCacheHit    = attribute.Key("cache.hit")
)
