package ports

import (
	"context"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

// CityRepository reads and persists the reference city dataset.
type CityRepository interface {
	Upsert(ctx context.Context, city *domain.City) error
	UpsertBatch(ctx context.Context, cities []domain.City) error
	// ListWithin returns every city inside area in a stable storage order.
	ListWithin(ctx context.Context, area domain.GeoArea) ([]domain.City, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}
