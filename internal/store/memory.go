package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shakespr/cost-data-service/internal/costs"
)

// MemoryStore is a concurrency-safe in-memory costs.Store. It backs tests and
// database-less dev setups; the observation history it keeps mirrors the
// relational layout (append-only updates per city, cost sets per update).
type MemoryStore struct {
	mu sync.RWMutex

	// key: lower-cased "city|country", preserving case-insensitive identity
	cities map[string]*cityEntry
}

type cityEntry struct {
	name    string // casing of the first insert wins
	country string
	region  string

	observations []memObservation
}

type memObservation struct {
	timestamp time.Time
	sets      map[costs.Category]map[string]*float64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cities: make(map[string]*cityEntry),
	}
}

func cityKey(city costs.CityKey) string {
	return strings.ToLower(city.Name) + "|" + strings.ToLower(city.Country)
}

// SaveObservation upserts the city and appends the observation. The whole
// observation becomes visible atomically under the store lock.
func (s *MemoryStore) SaveObservation(_ context.Context, obs costs.Observation) error {
	key := cityKey(obs.City)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cities[key]
	if !ok {
		entry = &cityEntry{
			name:    obs.City.Name,
			country: obs.City.Country,
			region:  obs.Region,
		}
		s.cities[key] = entry
	}

	sets := make(map[costs.Category]map[string]*float64, len(obs.Sets))
	for _, set := range obs.Sets {
		values := make(map[string]*float64, len(set.Values))
		for k, v := range set.Values {
			values[k] = v
		}
		sets[set.Category] = values
	}

	entry.observations = append(entry.observations, memObservation{
		timestamp: obs.Timestamp,
		sets:      sets,
	})
	return nil
}

// GetFresh assembles the record from the newest observation within the window,
// or returns costs.ErrNoFreshData.
func (s *MemoryStore) GetFresh(_ context.Context, city costs.CityKey, window time.Duration) (*costs.CityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cities[cityKey(city)]
	if !ok || len(entry.observations) == 0 {
		return nil, costs.ErrNoFreshData
	}

	latest := entry.newest()
	cutoff := time.Now().UTC().Add(-window)
	if latest.timestamp.Before(cutoff) {
		return nil, costs.ErrNoFreshData
	}

	return &costs.CityRecord{
		CityName:             entry.name,
		Country:              entry.country,
		Region:               entry.region,
		LastUpdated:          latest.timestamp,
		RentOneBedroomCenter: latest.field(costs.CategoryRent, "apt_one_bdrm_ctr"),
		CheapMealForOne:      latest.field(costs.CategoryRestaurant, "cheap_meal_for_one"),
		MilkOneLiter:         latest.field(costs.CategoryMarket, "milk_one_liter"),
		MonthlyTransitPass:   latest.field(costs.CategoryTransportation, "monthly_transit_pass"),
		UtilitiesBasic:       latest.field(costs.CategoryUtilities, "all_basic"),
	}, nil
}

// newest returns the observation with the greatest timestamp. Saves are not
// required to arrive in timestamp order.
func (e *cityEntry) newest() memObservation {
	latest := e.observations[0]
	for _, o := range e.observations[1:] {
		if o.timestamp.After(latest.timestamp) {
			latest = o
		}
	}
	return latest
}

func (o memObservation) field(cat costs.Category, name string) *float64 {
	values, ok := o.sets[cat]
	if !ok {
		return nil
	}
	return values[name]
}

// CityCount reports how many distinct cities the store holds.
func (s *MemoryStore) CityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cities)
}

// LatestField returns a named value from the newest observation's cost sets,
// or nil when the city, category, or field is absent.
func (s *MemoryStore) LatestField(city costs.CityKey, cat costs.Category, name string) *float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cities[cityKey(city)]
	if !ok || len(entry.observations) == 0 {
		return nil
	}
	return entry.newest().field(cat, name)
}

// ObservationCount reports how many observations exist for a city.
func (s *MemoryStore) ObservationCount(city costs.CityKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cities[cityKey(city)]
	if !ok {
		return 0
	}
	return len(entry.observations)
}
