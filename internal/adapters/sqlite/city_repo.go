// Package sqlite reads the uscities table of a SQLite city database.
// The source is read-only: writes go to Postgres through the ingestor.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

// ErrReadOnly is returned by write operations.
var ErrReadOnly = errors.New("sqlite city source is read-only")

// cityRow maps one uscities row.
type cityRow struct {
	City       string  `gorm:"column:city"`
	StateID    string  `gorm:"column:state_id"`
	StateName  string  `gorm:"column:state_name"`
	CountyName string  `gorm:"column:county_name"`
	Lat        float64 `gorm:"column:lat"`
	Lng        float64 `gorm:"column:lng"`
}

func (cityRow) TableName() string { return "uscities" }

func (r cityRow) toDomain() domain.City {
	return domain.City{
		Name:       r.City,
		StateCode:  r.StateID,
		StateName:  r.StateName,
		CountyName: r.CountyName,
		Location:   domain.GeoPoint{Lat: r.Lat, Lon: r.Lng},
	}
}

// CityRepo implements ports.CityRepository over a SQLite file.
type CityRepo struct {
	db *gorm.DB
}

// Open opens the database file at path.
func Open(path string) (*CityRepo, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &CityRepo{db: db}, nil
}

// NewCityRepo wraps an existing gorm handle.
func NewCityRepo(db *gorm.DB) *CityRepo {
	return &CityRepo{db: db}
}

func (r *CityRepo) Upsert(context.Context, *domain.City) error       { return ErrReadOnly }
func (r *CityRepo) UpsertBatch(context.Context, []domain.City) error { return ErrReadOnly }

// ListWithin returns cities inside area in rowid order.
func (r *CityRepo) ListWithin(ctx context.Context, area domain.GeoArea) ([]domain.City, error) {
	q := r.db.WithContext(ctx).Where("lat BETWEEN ? AND ?", area.MinLat, area.MaxLat)
	if area.CrossesAntimeridian() {
		q = q.Where("(lng >= ? OR lng <= ?)", area.MinLon, area.MaxLon)
	} else {
		q = q.Where("lng BETWEEN ? AND ?", area.MinLon, area.MaxLon)
	}

	var rows []cityRow
	if err := q.Order("rowid").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cities within area: %w", err)
	}

	cities := make([]domain.City, 0, len(rows))
	for _, row := range rows {
		cities = append(cities, row.toDomain())
	}
	return cities, nil
}

// Count returns the number of rows in uscities.
func (r *CityRepo) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&cityRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count cities: %w", err)
	}
	return int(n), nil
}

// Ping checks the underlying connection.
func (r *CityRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database handle.
func (r *CityRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
