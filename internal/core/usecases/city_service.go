package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/cityradius/internal/core/domain"
	"github.com/samirrijal/cityradius/internal/core/ports"
	"github.com/samirrijal/cityradius/internal/pkg/geospatial"
	"github.com/samirrijal/cityradius/internal/pkg/metrics"
	"github.com/samirrijal/cityradius/internal/pkg/telemetry"
)

// MaxNearbyLimit is the default cap on the number of cities one nearby
// query returns.
const MaxNearbyLimit = 500

// defaultCacheTTL is how long a ranked nearby result stays cached, in seconds.
const defaultCacheTTL = 300

// prefilterPad widens the repository rectangle so rounding in the bound
// arithmetic cannot exclude a city sitting exactly on the radius.
const prefilterPad = 1e-9

var tracer = otel.Tracer("github.com/samirrijal/cityradius/internal/core/usecases")

// CityService handles city lookups and the geodesic calculations around them.
type CityService struct {
	cities     ports.CityRepository
	cache      ports.CacheService
	events     ports.EventPublisher
	clock      clockwork.Clock
	maxResults int
	cacheTTL   int
}

// NewCityService creates a new CityService. cache and events may be nil.
func NewCityService(cities ports.CityRepository, cache ports.CacheService, events ports.EventPublisher) *CityService {
	return &CityService{
		cities:     cities,
		cache:      cache,
		events:     events,
		clock:      clockwork.NewRealClock(),
		maxResults: MaxNearbyLimit,
		cacheTTL:   defaultCacheTTL,
	}
}

// WithClock replaces the time source used for event timestamps.
func (s *CityService) WithClock(c clockwork.Clock) *CityService {
	s.clock = c
	return s
}

// WithLimits sets the per-query result cap and the nearby cache TTL in
// seconds. Non-positive values keep the defaults.
func (s *CityService) WithLimits(maxResults, cacheTTLSeconds int) *CityService {
	if maxResults > 0 {
		s.maxResults = maxResults
	}
	if cacheTTLSeconds > 0 {
		s.cacheTTL = cacheTTLSeconds
	}
	return s
}

// MaxResults is the most cities a single nearby query returns.
func (s *CityService) MaxResults() int {
	return s.maxResults
}

// FindNearby returns up to limit cities within radiusMiles of origin, nearest
// first, each annotated with its distance in miles.
func (s *CityService) FindNearby(ctx context.Context, origin domain.Position, radiusMiles float64, limit int) ([]domain.City, error) {
	cities, _, err := s.FindNearbyPage(ctx, origin, radiusMiles, 0, limit)
	return cities, err
}

// FindNearbyPage ranks every city within radiusMiles of origin and returns the
// window [offset, offset+limit) together with the total number of matches.
// limit <= 0 or above MaxResults is clamped to MaxResults.
func (s *CityService) FindNearbyPage(ctx context.Context, origin domain.Position, radiusMiles float64, offset, limit int) ([]domain.City, int, error) {
	ctx, span := tracer.Start(ctx, "CityService.FindNearby", trace.WithAttributes(
		telemetry.AttrOriginLat.Float64(origin.Lat),
		telemetry.AttrOriginLon.Float64(origin.Lon),
		telemetry.AttrRadiusMiles.Float64(radiusMiles),
	))
	defer span.End()

	if limit <= 0 || limit > s.maxResults {
		limit = s.maxResults
	}
	if offset < 0 {
		offset = 0
	}

	ranked, err := s.rankNearby(ctx, span, origin, radiusMiles)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	total := len(ranked)
	page := []domain.City{}
	if offset < total {
		page = ranked[offset:min(offset+limit, total)]
	}

	metrics.NearbyQueries.Inc()
	metrics.NearbyResults.Observe(float64(len(page)))
	span.SetAttributes(telemetry.AttrResults.Int(len(page)))

	s.publishQuery(ctx, &domain.NearbyQuery{
		Origin:      origin,
		RadiusMiles: radiusMiles,
		Limit:       limit,
		Results:     len(page),
		ExecutedAt:  s.clock.Now().UTC(),
	})

	return page, total, nil
}

// rankNearby returns every city within radiusMiles of origin, nearest first.
// The full ranking is cached so later pages skip the repository.
func (s *CityService) rankNearby(ctx context.Context, span trace.Span, origin domain.Position, radiusMiles float64) ([]domain.City, error) {
	area, err := geospatial.BoundingCoordinates(origin, radiusMiles)
	if err != nil {
		return nil, err
	}

	// Try cache
	cacheKey := fmt.Sprintf("cities:nearby:%.6f:%.6f:%.4f", origin.Lat, origin.Lon, radiusMiles)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cities []domain.City
			if err := json.Unmarshal(data, &cities); err == nil {
				metrics.CacheHits.WithLabelValues("cities_nearby").Inc()
				span.SetAttributes(telemetry.AttrCacheHit.Bool(true))
				return cities, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("cities_nearby").Inc()
	}

	candidates, err := s.cities.ListWithin(ctx, padArea(area, prefilterPad))
	if err != nil {
		return nil, fmt.Errorf("list candidate cities: %w", err)
	}

	cities := CitiesWithinDistance(origin, radiusMiles, candidates)

	metrics.CandidatesScanned.Observe(float64(len(candidates)))
	span.SetAttributes(telemetry.AttrCandidates.Int(len(candidates)))

	// The dataset only changes on ingest.
	if s.cache != nil {
		if data, err := json.Marshal(cities); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return cities, nil
}

// padArea widens a by deg on every side. Latitudes are clamped to the poles
// and an area spanning every longitude stays whole. Other longitudes wrap,
// so padding past ±180° yields an antimeridian-crossing area.
func padArea(a domain.GeoArea, deg float64) domain.GeoArea {
	a.MinLat = max(a.MinLat-deg, -90)
	a.MaxLat = min(a.MaxLat+deg, 90)
	if !a.CrossesAntimeridian() && a.MaxLon-a.MinLon+2*deg >= 360 {
		a.MinLon, a.MaxLon = -180, 180
		return a
	}
	a.MinLon -= deg
	if a.MinLon < -180 {
		a.MinLon += 360
	}
	a.MaxLon += deg
	if a.MaxLon > 180 {
		a.MaxLon -= 360
	}
	return a
}

// Distance returns the great-circle distance between two positions, rounded
// to two decimal places in miles and kilometers.
func (s *CityService) Distance(from, to domain.Position) domain.DistanceResult {
	miles := geospatial.Distance(from, to)
	return domain.DistanceResult{
		From:       from,
		To:         to,
		Miles:      geospatial.RoundTo(miles, 2),
		Kilometers: geospatial.RoundTo(geospatial.MilesToKilometers(miles), 2),
	}
}

// Bounds returns the bounding rectangle of the circle of radiusMiles around center.
func (s *CityService) Bounds(center domain.Position, radiusMiles float64) (domain.GeoArea, error) {
	return geospatial.BoundingCoordinates(center, radiusMiles)
}

// Count returns the number of cities in the dataset.
func (s *CityService) Count(ctx context.Context) (int, error) {
	return s.cities.Count(ctx)
}

// Ping checks that the city dataset is reachable.
func (s *CityService) Ping(ctx context.Context) error {
	return s.cities.Ping(ctx)
}

func (s *CityService) publishQuery(ctx context.Context, q *domain.NearbyQuery) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishNearbyQuery(ctx, q); err != nil {
		slog.WarnContext(ctx, "publish nearby query failed", "error", err)
	}
}
