package ports

import (
	"context"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishNearbyQuery(ctx context.Context, q *domain.NearbyQuery) error
}

// CacheService is a byte cache with per-key expiry. Get fails on a miss.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}
