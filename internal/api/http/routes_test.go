package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pvforecast/pvwatts-importer/internal/solar"
	"github.com/pvforecast/pvwatts-importer/internal/solar/providers"
)

const pvwattsBody = `{"outputs": {"ac": [0, 250.5, 900], "tamb": [1, 2, 3], "wspd": [4, 5, 6]}}`

// newTestApp wires the routes against a fake PVWatts endpoint and returns the
// app plus a pointer to the upstream request count.
func newTestApp(t *testing.T, status int) (*fiber.App, *int32) {
	t.Helper()

	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(pvwattsBody))
	}))
	t.Cleanup(upstream.Close)

	provider, err := providers.NewPVWattsProvider(
		providers.HTTPClientConfig{Timeout: 5 * time.Second},
		"test-key",
		providers.WithEndpoint(upstream.URL),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locations := filepath.Join(t.TempDir(), "cities.csv")
	csv := "city,lat,lon\nMünster,51.9607,7.6261\nBerlin,52.52,13.405\nHamburg,53.5511,9.9937\n"
	if err := os.WriteFile(locations, []byte(csv), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	app := fiber.New()
	svc := solar.NewService(provider, solar.DefaultParams(), nil)
	RegisterRoutes(app, svc, locations)
	return app, &calls
}

func TestHourlyEndpoint(t *testing.T) {
	app, calls := newTestApp(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pvwatts/hourly?lat=52.52&lon=13.405&tilt=30", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var records []solar.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[1].Power != 250.5 {
		t.Fatalf("expected power 250.5, got %v", records[1].Power)
	}
	if !records[0].Time.Equal(solar.IndexStart) {
		t.Fatalf("expected first timestamp %v, got %v", solar.IndexStart, records[0].Time)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}
}

func TestHourlyEndpointValidation(t *testing.T) {
	app, calls := newTestApp(t, http.StatusOK)

	for _, target := range []string{
		"/api/v1/pvwatts/hourly?lat=north",
		"/api/v1/pvwatts/hourly?module_type=1.5",
		"/api/v1/pvwatts/hourly?format=xml",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}
	if got := atomic.LoadInt32(calls); got != 0 {
		t.Fatalf("expected no upstream calls, got %d", got)
	}
}

func TestHourlyEndpointUpstreamFailure(t *testing.T) {
	app, _ := newTestApp(t, http.StatusInternalServerError)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/pvwatts/hourly", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
}

func TestCityEndpoint(t *testing.T) {
	app, calls := newTestApp(t, http.StatusOK)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cities/Berlin?format=csv", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	want := "time,power,tamb,wspd\n2019-01-01 00:00:00,0,1,4\n2019-01-01 01:00:00,250.5,2,5\n2019-01-01 02:00:00,900,3,6\n"
	if string(body) != want {
		t.Fatalf("unexpected body:\n%s", body)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}
}

func TestCityEndpointUnknownCity(t *testing.T) {
	app, calls := newTestApp(t, http.StatusOK)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cities/Paris", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
	if got := atomic.LoadInt32(calls); got != 0 {
		t.Fatalf("expected no upstream calls, got %d", got)
	}
}

func TestCitiesEndpointRange(t *testing.T) {
	app, calls := newTestApp(t, http.StatusOK)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cities?start=1", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var cities map[string][]solar.Record
	if err := json.NewDecoder(resp.Body).Decode(&cities); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cities) != 2 || cities["Berlin"] == nil || cities["Hamburg"] == nil {
		t.Fatalf("expected Berlin and Hamburg, got %v", cities)
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", got)
	}
}
