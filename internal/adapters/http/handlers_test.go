package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/cityradius/internal/adapters/http"
	"github.com/samirrijal/cityradius/internal/adapters/memory"
	"github.com/samirrijal/cityradius/internal/core/domain"
	"github.com/samirrijal/cityradius/internal/core/usecases"
	"github.com/samirrijal/cityradius/internal/pkg/config"
)

// ---- Fixtures ----

func ohioCities() []domain.City {
	return []domain.City{
		{Name: "Lubbock", StateCode: "TX", StateName: "Texas", CountyName: "Lubbock", Location: domain.GeoPoint{Lat: 33.576001, Lon: -101.858604}},
		{Name: "Tipp City", StateCode: "OH", StateName: "Ohio", CountyName: "Miami", Location: domain.GeoPoint{Lat: 39.958044, Lon: -84.173374}},
		{Name: "Dayton", StateCode: "OH", StateName: "Ohio", CountyName: "Montgomery", Location: domain.GeoPoint{Lat: 39.7797, Lon: -84.1998}},
		{Name: "Richmond", StateCode: "IN", StateName: "Indiana", CountyName: "Wayne", Location: domain.GeoPoint{Lat: 39.8289, Lon: -84.8902}},
		{Name: "Eaton", StateCode: "OH", StateName: "Ohio", CountyName: "Preble", Location: domain.GeoPoint{Lat: 39.7506, Lon: -84.6346}},
		{Name: "West Alexandria", StateCode: "OH", StateName: "Ohio", CountyName: "Preble", Location: domain.GeoPoint{Lat: 39.744596, Lon: -84.533226}},
	}
}

// ---- Mocks ----

type failingRepo struct{ err error }

func (f *failingRepo) Upsert(ctx context.Context, c *domain.City) error          { return f.err }
func (f *failingRepo) UpsertBatch(ctx context.Context, cs []domain.City) error   { return f.err }
func (f *failingRepo) Count(ctx context.Context) (int, error)                    { return 0, f.err }
func (f *failingRepo) Ping(ctx context.Context) error                            { return f.err }
func (f *failingRepo) ListWithin(context.Context, domain.GeoArea) ([]domain.City, error) {
	return nil, f.err
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: handler.ErrorHandler})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Cities: usecases.NewCityService(memory.NewCityRepo(ohioCities()...), nil, nil),
		Query:  config.QueryConfig{DefaultRadiusMiles: 25, MaxRadiusMiles: 500, DefaultLimit: 50},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func get(t *testing.T, app *fiber.App, url string) (int, []byte, map[string]string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	headers := map[string]string{}
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return resp.StatusCode, body, headers
}

func decode(t *testing.T, body []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

func expectBadRequest(t *testing.T, app *fiber.App, url string) {
	t.Helper()
	status, body, _ := get(t, app, url)
	if status != 400 {
		t.Fatalf("%s: expected 400, got %d (%s)", url, status, body)
	}
	var apiErr handler.APIError
	decode(t, body, &apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("%s: expected bad_request, got %s", url, apiErr.Code)
	}
	if apiErr.RequestID == "" {
		t.Errorf("%s: expected request id in error body", url)
	}
}

// ---- Distance ----

func TestDistance_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, headers := get(t, app, "/v1/distance?from_lat=39.744596&from_lon=-84.533226&to_lat=39.958044&to_lon=-84.173374&from_name=West+Alexandria&to_name=Tipp+City")
	if status != 200 {
		t.Fatalf("expected 200, got %d (%s)", status, body)
	}

	var res domain.DistanceResult
	decode(t, body, &res)
	if res.Miles != 24.13 {
		t.Errorf("expected 24.13 miles, got %v", res.Miles)
	}
	if res.Kilometers != 38.83 {
		t.Errorf("expected 38.83 km, got %v", res.Kilometers)
	}
	if res.From.Name != "West Alexandria" || res.To.Name != "Tipp City" {
		t.Errorf("names not echoed: %+v", res)
	}
	if headers["Cache-Control"] != "public, max-age=86400" {
		t.Errorf("unexpected Cache-Control %q", headers["Cache-Control"])
	}
}

func TestDistance_BadInput(t *testing.T) {
	app := setupApp(makeDeps())

	expectBadRequest(t, app, "/v1/distance")
	expectBadRequest(t, app, "/v1/distance?from_lat=39&from_lon=-84&to_lat=40")
	expectBadRequest(t, app, "/v1/distance?from_lat=91&from_lon=-84&to_lat=40&to_lon=-84")
	expectBadRequest(t, app, "/v1/distance?from_lat=abc&from_lon=-84&to_lat=40&to_lon=-84")
	expectBadRequest(t, app, "/v1/distance?from_lat=NaN&from_lon=-84&to_lat=40&to_lon=-84")
}

func TestDistance_ZeroCoordinatesAreValid(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/distance?from_lat=0&from_lon=0&to_lat=0&to_lon=0")
	if status != 200 {
		t.Fatalf("expected 200, got %d (%s)", status, body)
	}
	var res domain.DistanceResult
	decode(t, body, &res)
	if res.Miles != 0 {
		t.Errorf("expected 0 miles, got %v", res.Miles)
	}
}

// ---- Bounds ----

type boundsResponse struct {
	RadiusMiles         float64        `json:"radius_miles"`
	Area                domain.GeoArea `json:"area"`
	CrossesAntimeridian bool           `json:"crosses_antimeridian"`
}

func TestBounds_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/bounds?lat=39.744596&lon=-84.533226&radius=25")
	if status != 200 {
		t.Fatalf("expected 200, got %d (%s)", status, body)
	}
	var res boundsResponse
	decode(t, body, &res)
	if !res.Area.Contains(domain.GeoPoint{Lat: 39.744596, Lon: -84.533226}) {
		t.Errorf("area %+v does not contain its center", res.Area)
	}
	if res.CrossesAntimeridian {
		t.Error("unexpected antimeridian crossing")
	}
}

func TestBounds_Kilometers(t *testing.T) {
	app := setupApp(makeDeps())

	_, body, _ := get(t, app, "/v1/bounds?lat=10&lon=20&radius=25&unit=mi")
	var mi boundsResponse
	decode(t, body, &mi)

	_, body, _ = get(t, app, "/v1/bounds?lat=10&lon=20&radius=40.2336&unit=km")
	var km boundsResponse
	decode(t, body, &km)

	if diff := mi.Area.MaxLat - km.Area.MaxLat; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("25 mi and 40.2336 km should give the same area: %+v vs %+v", mi.Area, km.Area)
	}
}

func TestBounds_Antimeridian(t *testing.T) {
	app := setupApp(makeDeps())

	_, body, _ := get(t, app, "/v1/bounds?lat=0&lon=179.9&radius=50")
	var res boundsResponse
	decode(t, body, &res)
	if !res.CrossesAntimeridian || res.Area.MinLon <= res.Area.MaxLon {
		t.Errorf("expected wrapped area, got %+v", res.Area)
	}
}

func TestBounds_BadInput(t *testing.T) {
	app := setupApp(makeDeps())

	expectBadRequest(t, app, "/v1/bounds?lat=39&lon=-84")
	expectBadRequest(t, app, "/v1/bounds?lat=39&lon=-84&radius=-5")
	expectBadRequest(t, app, "/v1/bounds?lat=39&lon=-84&radius=5&unit=furlong")
	expectBadRequest(t, app, "/v1/bounds?lat=39&lon=-84&radius=100000")
}

// ---- Nearby cities ----

type nearbyResponse struct {
	Data       []domain.City      `json:"data"`
	Pagination handler.Pagination `json:"pagination"`
}

func TestNearbyCities_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/cities/nearby?lat=39.744596&lon=-84.533226&radius=20")
	if status != 200 {
		t.Fatalf("expected 200, got %d (%s)", status, body)
	}

	var res nearbyResponse
	decode(t, body, &res)
	want := []string{"West Alexandria", "Eaton", "Dayton", "Richmond"}
	if len(res.Data) != len(want) {
		t.Fatalf("expected %d cities, got %d", len(want), len(res.Data))
	}
	for i, name := range want {
		if res.Data[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, res.Data[i].Name)
		}
		if res.Data[i].Distance == nil || *res.Data[i].Distance > 20 {
			t.Errorf("%s: bad distance %v", name, res.Data[i].Distance)
		}
	}
	if res.Pagination.Total != 4 {
		t.Errorf("expected total 4, got %d", res.Pagination.Total)
	}
}

func TestNearbyCities_DefaultRadius(t *testing.T) {
	app := setupApp(makeDeps())

	_, body, _ := get(t, app, "/v1/cities/nearby?lat=39.744596&lon=-84.533226")
	var res nearbyResponse
	decode(t, body, &res)
	if res.Pagination.Total != 5 {
		t.Errorf("expected 5 cities within the default 25 miles, got %d", res.Pagination.Total)
	}
}

func TestNearbyCities_Kilometers(t *testing.T) {
	app := setupApp(makeDeps())

	// 10 km is about 6.2 miles: West Alexandria and Eaton.
	_, body, _ := get(t, app, "/v1/cities/nearby?lat=39.744596&lon=-84.533226&radius=10&unit=km")
	var res nearbyResponse
	decode(t, body, &res)
	if res.Pagination.Total != 2 {
		t.Errorf("expected 2 cities, got %d", res.Pagination.Total)
	}
}

func TestNearbyCities_Pagination(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, headers := get(t, app, "/v1/cities/nearby?lat=39.744596&lon=-84.533226&radius=30&offset=1&limit=2")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var res nearbyResponse
	decode(t, body, &res)
	if res.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", res.Pagination.Total)
	}
	if len(res.Data) != 2 || res.Data[0].Name != "Eaton" || res.Data[1].Name != "Dayton" {
		t.Errorf("unexpected page: %+v", res.Data)
	}

	link := headers["Link"]
	if !strings.Contains(link, `rel="next"`) || !strings.Contains(link, "lat=39.744596") {
		t.Errorf("Link header should keep query params and offer next: %s", link)
	}

	_, body, _ = get(t, app, "/v1/cities/nearby?lat=39.744596&lon=-84.533226&radius=30&offset=50")
	decode(t, body, &res)
	if res.Data == nil || len(res.Data) != 0 {
		t.Errorf("expected empty page past the end, got %+v", res.Data)
	}
}

func TestNearbyCities_TotalBeyondResultCap(t *testing.T) {
	var cities []domain.City
	for i := 0; i < 800; i++ {
		cities = append(cities, domain.City{
			Name:      fmt.Sprintf("Town %03d", i),
			StateCode: "OH",
			Location:  domain.GeoPoint{Lat: 39.744596 + float64(i)*0.0005, Lon: -84.533226},
		})
	}
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Cities = usecases.NewCityService(memory.NewCityRepo(cities...), nil, nil)
	}))

	status, body, headers := get(t, app, "/v1/cities/nearby?lat=39.744596&lon=-84.533226&radius=50&offset=700&limit=50")
	if status != 200 {
		t.Fatalf("expected 200, got %d (%s)", status, body)
	}
	var res nearbyResponse
	decode(t, body, &res)
	if res.Pagination.Total != 800 {
		t.Errorf("expected total 800, got %d", res.Pagination.Total)
	}
	if len(res.Data) != 50 || res.Data[0].Name != "Town 700" || res.Data[49].Name != "Town 749" {
		t.Errorf("unexpected page of %d starting at %v", len(res.Data), res.Data)
	}
	if !strings.Contains(headers["Link"], `rel="next"`) {
		t.Errorf("expected a next link before the end: %s", headers["Link"])
	}
}

func TestNearbyCities_ConfiguredResultCap(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) {
		d.Cities = usecases.NewCityService(memory.NewCityRepo(ohioCities()...), nil, nil).WithLimits(3, 0)
	}))

	_, body, _ := get(t, app, "/v1/cities/nearby?lat=39.744596&lon=-84.533226&radius=30&limit=10")
	var res nearbyResponse
	decode(t, body, &res)
	if res.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", res.Pagination.Total)
	}
	if len(res.Data) != 3 || res.Pagination.Limit != 3 {
		t.Errorf("limit above the cap should be clamped to 3, got %d cities (limit %d)", len(res.Data), res.Pagination.Limit)
	}

	_, body, _ = get(t, app, "/v1/cities/stats")
	var stats struct {
		MaxResults int `json:"max_results"`
	}
	decode(t, body, &stats)
	if stats.MaxResults != 3 {
		t.Errorf("expected max_results 3, got %d", stats.MaxResults)
	}
}

func TestNearbyCities_BadInput(t *testing.T) {
	app := setupApp(makeDeps())

	expectBadRequest(t, app, "/v1/cities/nearby")
	expectBadRequest(t, app, "/v1/cities/nearby?lat=39.7")
	expectBadRequest(t, app, "/v1/cities/nearby?lat=39.7&lon=-84.5&radius=0")
	expectBadRequest(t, app, "/v1/cities/nearby?lat=39.7&lon=-84.5&radius=-3")
	expectBadRequest(t, app, "/v1/cities/nearby?lat=39.7&lon=-84.5&radius=501")
	expectBadRequest(t, app, "/v1/cities/nearby?lat=39.7&lon=200")
}

func TestNearbyCities_RepoError(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Cities = usecases.NewCityService(&failingRepo{err: errors.New("connection refused")}, nil, nil)
	})
	app := setupApp(deps)

	status, body, _ := get(t, app, "/v1/cities/nearby?lat=39.7&lon=-84.5")
	if status != 500 {
		t.Fatalf("expected 500, got %d", status)
	}
	var apiErr handler.APIError
	decode(t, body, &apiErr)
	if apiErr.Code != "internal_error" {
		t.Errorf("expected internal_error, got %s", apiErr.Code)
	}
	if strings.Contains(apiErr.Message, "connection refused") {
		t.Error("driver error leaked to client")
	}
}

func TestNearbyCities_ETag(t *testing.T) {
	app := setupApp(makeDeps())
	url := "/v1/cities/nearby?lat=39.744596&lon=-84.533226&radius=20"

	_, _, headers := get(t, app, url)
	etag := headers["Etag"]
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", url, nil)
	req.Header.Set("If-None-Match", etag)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

// ---- Stats ----

func TestCityStats(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/cities/stats")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res struct {
		Cities     int `json:"cities"`
		MaxResults int `json:"max_results"`
	}
	decode(t, body, &res)
	if res.Cities != 6 {
		t.Errorf("expected 6 cities, got %d", res.Cities)
	}
	if res.MaxResults != usecases.MaxNearbyLimit {
		t.Errorf("expected max_results %d, got %d", usecases.MaxNearbyLimit, res.MaxResults)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/health")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res map[string]string
	decode(t, body, &res)
	if res["status"] != "healthy" {
		t.Errorf("expected healthy, got %s", res["status"])
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		repo   error
		cache  *mockPinger
		status int
	}{
		{"all ok", nil, &mockPinger{}, 200},
		{"no cache configured", nil, nil, 200},
		{"cache down", nil, &mockPinger{err: errors.New("dial tcp: refused")}, 503},
		{"database down", errors.New("no connection"), &mockPinger{}, 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := makeDeps(func(d *handler.Dependencies) {
				if tt.repo != nil {
					d.Cities = usecases.NewCityService(&failingRepo{err: tt.repo}, nil, nil)
				}
				if tt.cache != nil {
					d.Cache = tt.cache
				}
			})
			app := setupApp(deps)

			status, body, _ := get(t, app, "/v1/ready")
			if status != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, status, body)
			}
		})
	}
}

// ---- GraphQL ----

func postGraphQL(t *testing.T, app *fiber.App, query string) map[string]interface{} {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	return result
}

func TestGraphQL_Distance(t *testing.T) {
	app := setupApp(makeDeps())

	result := postGraphQL(t, app, `{ distance(from_lat: 39.744596, from_lon: -84.533226, to_lat: 39.958044, to_lon: -84.173374) { miles kilometers from { lat lon } } }`)
	if result["errors"] != nil {
		t.Fatalf("unexpected errors: %v", result["errors"])
	}
	dist := result["data"].(map[string]interface{})["distance"].(map[string]interface{})
	if dist["miles"].(float64) != 24.13 {
		t.Errorf("expected 24.13, got %v", dist["miles"])
	}
	from := dist["from"].(map[string]interface{})
	if from["lat"].(float64) != 39.744596 {
		t.Errorf("unexpected from: %v", from)
	}
}

func TestGraphQL_CitiesNearby(t *testing.T) {
	app := setupApp(makeDeps())

	result := postGraphQL(t, app, `{ citiesNearby(lat: 39.744596, lon: -84.533226, radius: 10) { name state_code distance location { lat } } }`)
	if result["errors"] != nil {
		t.Fatalf("unexpected errors: %v", result["errors"])
	}
	cities := result["data"].(map[string]interface{})["citiesNearby"].([]interface{})
	if len(cities) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(cities))
	}
	first := cities[0].(map[string]interface{})
	if first["name"] != "West Alexandria" || first["distance"].(float64) != 0 {
		t.Errorf("unexpected first city: %v", first)
	}
}

func TestGraphQL_BoundsNegativeRadius(t *testing.T) {
	app := setupApp(makeDeps())

	result := postGraphQL(t, app, `{ bounds(lat: 10, lon: 10, radius: -1) { min_lat } }`)
	if result["errors"] == nil {
		t.Fatal("expected errors for negative radius")
	}
}

func TestGraphQL_CitiesNearbyKilometers(t *testing.T) {
	app := setupApp(makeDeps())

	for _, unit := range []string{"km", "KM", "kilometers", "kilometer"} {
		result := postGraphQL(t, app, `{ citiesNearby(lat: 39.744596, lon: -84.533226, radius: 10, unit: "`+unit+`") { name } }`)
		if result["errors"] != nil {
			t.Fatalf("%s: unexpected errors: %v", unit, result["errors"])
		}
		cities := result["data"].(map[string]interface{})["citiesNearby"].([]interface{})
		if len(cities) != 2 {
			t.Errorf("%s: expected 2 cities within 10 km, got %d", unit, len(cities))
		}
	}
}

func TestGraphQL_RejectsBadInput(t *testing.T) {
	app := setupApp(makeDeps())

	queries := []string{
		`{ citiesNearby(lat: 39.7, lon: -84.5, radius: 501) { name } }`,
		`{ citiesNearby(lat: 39.7, lon: -84.5, radius: 0) { name } }`,
		`{ citiesNearby(lat: 39.7, lon: -84.5, radius: 10, unit: "furlong") { name } }`,
		`{ citiesNearby(lat: 91, lon: -84.5) { name } }`,
		`{ citiesNearby(lat: 39.7, lon: 200) { name } }`,
		`{ bounds(lat: -95, lon: 10, radius: 5) { min_lat } }`,
		`{ bounds(lat: 10, lon: 10, radius: 501) { min_lat } }`,
		`{ distance(from_lat: 0, from_lon: 181, to_lat: 0, to_lon: 0) { miles } }`,
	}
	for _, q := range queries {
		result := postGraphQL(t, app, q)
		if result["errors"] == nil {
			t.Errorf("expected errors for %s", q)
		}
	}
}

func TestGraphQL_EmptyBody(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Docs ----

func TestDocs(t *testing.T) {
	handler.OpenAPIPath = findOpenAPIDoc(t)
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/docs/openapi.yaml")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(string(body), "/v1/cities/nearby") {
		t.Error("served document is missing /v1/cities/nearby")
	}

	status, body, _ = get(t, app, "/docs/openapi.json")
	if status != 200 {
		t.Fatalf("expected 200 for openapi.json, got %d", status)
	}
	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	decode(t, body, &doc)
	if doc.OpenAPI == "" || doc.Paths["/v1/bounds"] == nil {
		t.Errorf("unexpected json document: %s", body)
	}

	status, body, _ = get(t, app, "/docs")
	if status != 200 {
		t.Errorf("expected 200 for /docs, got %d", status)
	}
	if !strings.Contains(string(body), "/docs/openapi.json") {
		t.Error("swagger ui does not point at the json document")
	}
}

func TestDocs_Missing(t *testing.T) {
	handler.OpenAPIPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { handler.OpenAPIPath = "api/openapi.yaml" })
	app := setupApp(makeDeps())

	for _, path := range []string{"/docs/openapi.yaml", "/docs/openapi.json"} {
		if status, _, _ := get(t, app, path); status != 404 {
			t.Errorf("%s: expected 404, got %d", path, status)
		}
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/ws")
	if status != fiber.StatusUpgradeRequired {
		t.Fatalf("expected 426, got %d", status)
	}
	var apiErr handler.APIError
	decode(t, body, &apiErr)
	if apiErr.Code != "upgrade_required" {
		t.Errorf("expected upgrade_required, got %q", apiErr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/cities/within")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	var apiErr handler.APIError
	decode(t, body, &apiErr)
	if apiErr.Code != "not_found" || apiErr.RequestID == "" {
		t.Errorf("unexpected error body %+v", apiErr)
	}
}
