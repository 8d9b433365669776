package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	natsadapter "github.com/samirrijal/cityradius/internal/adapters/nats"
	"github.com/samirrijal/cityradius/internal/core/domain"
)

func queryEvent(t *testing.T, lat, lon float64) []byte {
	t.Helper()
	data, err := json.Marshal(domain.NearbyQuery{
		Origin:      domain.NewPosition("", lat, lon),
		RadiusMiles: 10,
		ExecutedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return data
}

func TestWatchArea_Admits(t *testing.T) {
	// West Alexandria, OH; Tipp City is 24.13 miles away.
	w := &watchArea{Center: domain.NewPosition("", 39.744596, -84.533226), RadiusMiles: 25}

	assert.True(t, w.admits(queryEvent(t, 39.958044, -84.173374)), "Tipp City")
	assert.False(t, w.admits(queryEvent(t, 33.576001, -101.858604)), "Lubbock")
	assert.False(t, w.admits([]byte(`not json`)))
	assert.False(t, w.admits([]byte(`{"radius_miles":1}`)), "missing executed_at")
}

func TestWatchArea_NilAdmitsEverything(t *testing.T) {
	var w *watchArea
	assert.True(t, w.admits([]byte(`anything`)))
}

func TestSubjectCovers(t *testing.T) {
	all, nearby := natsadapter.SubjectQueryAll, natsadapter.SubjectNearby

	assert.True(t, subjectCovers(all, nearby))
	assert.True(t, subjectCovers(nearby, nearby))
	assert.False(t, subjectCovers(nearby, all))
	assert.False(t, subjectCovers(all, "geo.query"), "> needs at least one more token")
	assert.False(t, subjectCovers(all, "geo.other.nearby"))
}

func TestOverlapping(t *testing.T) {
	all, nearby := natsadapter.SubjectQueryAll, natsadapter.SubjectNearby

	held := map[string]struct{}{all: {}}
	assert.Equal(t, []string{all}, overlapping(held, nearby), "nearby narrows the default")
	assert.Empty(t, overlapping(held, all), "same subject is not replaced")

	held = map[string]struct{}{nearby: {}}
	assert.Equal(t, []string{nearby}, overlapping(held, all), "all widens nearby")
	assert.Empty(t, overlapping(held, "geo.query.distance"))
}
