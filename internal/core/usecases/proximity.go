package usecases

import (
	"iter"
	"slices"
	"sort"

	"github.com/samirrijal/cityradius/internal/core/domain"
	"github.com/samirrijal/cityradius/internal/pkg/geospatial"
)

// CitiesWithinDistance returns the candidates within radiusMiles of origin,
// nearest first. See FilterWithinDistance.
func CitiesWithinDistance(origin domain.Position, radiusMiles float64, candidates []domain.City) []domain.City {
	return FilterWithinDistance(origin, radiusMiles, slices.Values(candidates))
}

// FilterWithinDistance scans candidates once, annotates a copy of each with its
// distance from origin, keeps those at or under radiusMiles and sorts them by
// ascending distance. Cities at equal distance keep their scan order.
// The result is never nil.
func FilterWithinDistance(origin domain.Position, radiusMiles float64, candidates iter.Seq[domain.City]) []domain.City {
	out := []domain.City{}
	for c := range candidates {
		d := geospatial.Distance(origin, c.Position())
		if !(d <= radiusMiles) { // also drops NaN from degenerate coordinates
			continue
		}
		c.Distance = &d
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Distance < *out[j].Distance
	})
	return out
}
