package memory

import (
	"context"
	"sync"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

// CityRepo implements ports.CityRepository over an in-process slice.
// Insertion order is the scan order.
type CityRepo struct {
	mu     sync.RWMutex
	cities []domain.City
	index  map[cityKey]int
}

type cityKey struct {
	name, state, county string
}

// NewCityRepo creates a repository seeded with cities.
func NewCityRepo(cities ...domain.City) *CityRepo {
	r := &CityRepo{index: make(map[cityKey]int)}
	_ = r.UpsertBatch(context.Background(), cities)
	return r
}

// Upsert inserts a city or replaces the one with the same name, state and county.
func (r *CityRepo) Upsert(_ context.Context, city *domain.City) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertLocked(*city)
	return nil
}

// UpsertBatch upserts many cities in order.
func (r *CityRepo) UpsertBatch(_ context.Context, cities []domain.City) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cities {
		r.upsertLocked(c)
	}
	return nil
}

func (r *CityRepo) upsertLocked(c domain.City) {
	c.Distance = nil
	k := cityKey{c.Name, c.StateCode, c.CountyName}
	if i, ok := r.index[k]; ok {
		r.cities[i] = c
		return
	}
	r.index[k] = len(r.cities)
	r.cities = append(r.cities, c)
}

// ListWithin returns copies of the cities inside area.
func (r *CityRepo) ListWithin(_ context.Context, area domain.GeoArea) ([]domain.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.City
	for _, c := range r.cities {
		if area.Contains(c.Location) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Count returns the number of stored cities.
func (r *CityRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cities), nil
}

// Ping always succeeds.
func (r *CityRepo) Ping(_ context.Context) error { return nil }
