package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shakespr/cost-data-service/internal/costs"
	"github.com/shakespr/cost-data-service/internal/store"
)

type stubSource struct {
	bag costs.RawCostBag
	err error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(_ context.Context, _ string) (costs.RawCostBag, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bag, nil
}

func newTestApp(source costs.Source) *fiber.App {
	app := fiber.New()
	svc := costs.NewService(store.NewMemoryStore(), source, nil, 30*24*time.Hour)
	RegisterRoutes(app, svc)
	return app
}

func fp(v float64) *float64 { return &v }

func TestCostsRequiresCityAndCountry(t *testing.T) {
	app := newTestApp(&stubSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/costs?city=Paris", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestCostsReturnsAssembledRecord(t *testing.T) {
	app := newTestApp(&stubSource{bag: costs.RawCostBag{
		costs.CategoryRestaurant: {fp(12.5)},
		costs.CategoryRent:       {fp(1500)},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/costs?city=Paris&country=France", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var rec costs.CityRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rec.CityName != "Paris" || rec.Country != "France" {
		t.Fatalf("identity = %s, %s; want Paris, France", rec.CityName, rec.Country)
	}
	if rec.CheapMealForOne == nil || *rec.CheapMealForOne != 12.5 {
		t.Fatalf("cheap meal = %v, want 12.5", rec.CheapMealForOne)
	}
	if rec.RentOneBedroomCenter == nil || *rec.RentOneBedroomCenter != 1500 {
		t.Fatalf("rent = %v, want 1500", rec.RentOneBedroomCenter)
	}
}

func TestCostsMapsSourceFailuresToStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("%w: no rows", costs.ErrNotFound), http.StatusNotFound},
		{"no data", fmt.Errorf("%w: no values", costs.ErrNoData), http.StatusNotFound},
		{"network", fmt.Errorf("%w: timeout", costs.ErrNetwork), http.StatusBadGateway},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			app := newTestApp(&stubSource{err: c.err})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/costs?city=Atlantis&country=Nowhere", nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != c.want {
				t.Fatalf("expected status %d, got %d", c.want, resp.StatusCode)
			}
		})
	}
}

func TestCompareReturnsDeltas(t *testing.T) {
	app := newTestApp(&stubSource{bag: costs.RawCostBag{
		costs.CategoryRestaurant: {fp(10)},
	}})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/costs/compare?city_a=Berlin&country_a=Germany&city_b=London&country_b=United+Kingdom", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var cmp costs.Comparison
	if err := json.NewDecoder(resp.Body).Decode(&cmp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if cmp.A.CityName != "Berlin" || cmp.B.CityName != "London" {
		t.Fatalf("cities = %s vs %s; want Berlin vs London", cmp.A.CityName, cmp.B.CityName)
	}
	// Both sides carry the same stub data, so the delta is zero.
	if got := cmp.Deltas["cheapMealForOne"]; got == nil || *got != 0 {
		t.Fatalf("meal delta = %v, want 0", got)
	}
}

func TestCompareRequiresBothCities(t *testing.T) {
	app := newTestApp(&stubSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/costs/compare?city_a=Berlin&country_a=Germany", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}
