// Package csvfile reads the simplemaps uscities.csv layout into domain cities.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samirrijal/cityradius/internal/core/domain"
)

// Columns read from the file, by header name.
const (
	ColCity       = "city"
	ColStateID    = "state_id"
	ColStateName  = "state_name"
	ColCountyName = "county_name"
	ColLat        = "lat"
	ColLng        = "lng"
)

var requiredColumns = []string{ColCity, ColStateID, ColLat, ColLng}

// Result is the outcome of reading a file.
type Result struct {
	Cities  []domain.City
	Skipped int // malformed rows and rows with missing or unparsable coordinates
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a CSV stream with a header row. Columns are matched by name so
// extra columns and any column order are accepted.
func Read(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	res := &Result{Cities: []domain.City{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			res.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		lat, latErr := strconv.ParseFloat(getField(record, cols, ColLat), 64)
		lng, lngErr := strconv.ParseFloat(getField(record, cols, ColLng), 64)
		if latErr != nil || lngErr != nil {
			res.Skipped++
			continue
		}

		res.Cities = append(res.Cities, domain.City{
			Name:       getField(record, cols, ColCity),
			StateCode:  getField(record, cols, ColStateID),
			StateName:  getField(record, cols, ColStateName),
			CountyName: getField(record, cols, ColCountyName),
			Location:   domain.GeoPoint{Lat: lat, Lon: lng},
		})
	}
	return res, nil
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
