package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

const upsertCitySQL = `
	INSERT INTO cities (city, state_id, state_name, county_name, lat, lng)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (city, state_id, county_name) DO UPDATE
	SET state_name = EXCLUDED.state_name, lat = EXCLUDED.lat, lng = EXCLUDED.lng
`

const selectCityColumns = `SELECT city, state_id, state_name, county_name, lat, lng FROM cities`

// CityRepo implements ports.CityRepository with pgx.
type CityRepo struct {
	db *DB
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

// Upsert inserts or updates a single city.
func (r *CityRepo) Upsert(ctx context.Context, c *domain.City) error {
	_, err := r.db.Pool.Exec(ctx, upsertCitySQL,
		c.Name, c.StateCode, c.StateName, c.CountyName, c.Location.Lat, c.Location.Lon)
	if err != nil {
		return fmt.Errorf("upsert city %s, %s: %w", c.Name, c.StateCode, err)
	}
	return nil
}

// UpsertBatch inserts many cities using pgx.Batch.
func (r *CityRepo) UpsertBatch(ctx context.Context, cities []domain.City) error {
	if len(cities) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range cities {
		batch.Queue(upsertCitySQL,
			c.Name, c.StateCode, c.StateName, c.CountyName, c.Location.Lat, c.Location.Lon)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range cities {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return nil
}

// ListWithin returns cities inside area ordered by id. An area whose MinLon
// exceeds MaxLon spans the antimeridian and matches both longitude ends.
func (r *CityRepo) ListWithin(ctx context.Context, area domain.GeoArea) ([]domain.City, error) {
	query := selectCityColumns + `
		WHERE lat BETWEEN $1 AND $2 AND lng BETWEEN $3 AND $4
		ORDER BY id`
	if area.CrossesAntimeridian() {
		query = selectCityColumns + `
		WHERE lat BETWEEN $1 AND $2 AND (lng >= $3 OR lng <= $4)
		ORDER BY id`
	}

	rows, err := r.db.Pool.Query(ctx, query, area.MinLat, area.MaxLat, area.MinLon, area.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("list cities within area: %w", err)
	}
	defer rows.Close()

	var cities []domain.City
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(
			&c.Name, &c.StateCode, &c.StateName, &c.CountyName,
			&c.Location.Lat, &c.Location.Lon,
		); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// Count returns the number of rows in cities.
func (r *CityRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM cities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cities: %w", err)
	}
	return n, nil
}

// Ping checks the underlying pool.
func (r *CityRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
