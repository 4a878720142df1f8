package costs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Service owns the read-or-refresh path: serve from the store while an
// observation is fresh, otherwise fetch from the source, persist, and re-read.
type Service struct {
	store   Store
	source  Source
	regions RegionResolver // optional; nil leaves regions blank
	window  time.Duration
}

// NewService creates a new Service. The window is the maximum observation age
// served from cache; regions may be nil.
func NewService(store Store, source Source, regions RegionResolver, window time.Duration) *Service {
	return &Service{
		store:   store,
		source:  source,
		regions: regions,
		window:  window,
	}
}

// GetOrRefresh returns the assembled cost record for a city, refreshing from
// the external source when no observation within the freshness window exists.
// On any refresh failure the error wraps ErrFetchFailed plus the cause
// (ErrNotFound, ErrNoData, ErrNetwork, or ErrStorage); nothing is written on
// a failed fetch, and a failed write leaves no partial observation behind.
func (s *Service) GetOrRefresh(ctx context.Context, cityName, country string) (*CityRecord, error) {
	city := CityKey{Name: cityName, Country: country}

	rec, err := s.store.GetFresh(ctx, city, s.window)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNoFreshData) {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	log.Printf("INFO: no fresh data for %s, fetching from %s", city, s.source.Name())

	bag, err := s.source.Fetch(ctx, cityName)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrFetchFailed, city, err)
	}

	sets := BuildCostSets(bag)
	if len(sets) == 0 {
		// The adapter reported usable data but none of it belongs to a known
		// category. Record the observation anyway so the fetch is not repeated
		// on every call.
		log.Printf("WARN: source %s returned no known categories for %s", s.source.Name(), city)
	}

	obs := Observation{
		City:      city,
		Region:    s.resolveRegion(ctx, cityName, country),
		Timestamp: time.Now().UTC(),
		Sets:      sets,
	}

	if err := s.store.SaveObservation(ctx, obs); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrFetchFailed, ErrStorage, err)
	}

	rec, err = s.store.GetFresh(ctx, city, s.window)
	if err != nil {
		if errors.Is(err, ErrNoFreshData) {
			// The write committed but the re-read missed the window, e.g. an
			// observation timestamp behind the store clock.
			return nil, fmt.Errorf("%w: observation for %s not visible after write", ErrFetchFailed, city)
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return rec, nil
}

// Compare fetches (or refreshes) both cities and returns them side by side
// with per-field deltas, B minus A.
func (s *Service) Compare(ctx context.Context, a, b CityKey) (*Comparison, error) {
	recA, err := s.GetOrRefresh(ctx, a.Name, a.Country)
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", a, err)
	}
	recB, err := s.GetOrRefresh(ctx, b.Name, b.Country)
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", b, err)
	}

	return &Comparison{
		A: *recA,
		B: *recB,
		Deltas: map[string]*float64{
			"rent1brCenter":      delta(recA.RentOneBedroomCenter, recB.RentOneBedroomCenter),
			"cheapMealForOne":    delta(recA.CheapMealForOne, recB.CheapMealForOne),
			"milkOneLiter":       delta(recA.MilkOneLiter, recB.MilkOneLiter),
			"monthlyTransitPass": delta(recA.MonthlyTransitPass, recB.MonthlyTransitPass),
			"utilitiesBasic":     delta(recA.UtilitiesBasic, recB.UtilitiesBasic),
		},
	}, nil
}

func (s *Service) resolveRegion(ctx context.Context, cityName, country string) string {
	if s.regions == nil {
		return ""
	}
	region, err := s.regions.Region(ctx, cityName, country)
	if err != nil {
		log.Printf("WARN: region lookup failed for %s, %s: %v", cityName, country, err)
		return ""
	}
	return region
}

func delta(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	d := *b - *a
	return &d
}
