package costs

import (
	"context"
	"time"
)

// Source abstracts the external cost-data provider. Implementations issue one
// best-effort request per call and report typed failures; they never retry on
// their own beyond transport-level resilience.
type Source interface {
	Name() string
	Fetch(ctx context.Context, cityName string) (RawCostBag, error)
}

// Store is the contract the persistent store (and the in-memory store used in
// tests and keyless dev setups) must satisfy.
//
// GetFresh returns the assembled record for the city's most recent observation
// no older than the window, or ErrNoFreshData. SaveObservation upserts the
// city, appends the observation, and writes its cost sets; the whole write is
// atomic: either every row lands or none do.
type Store interface {
	GetFresh(ctx context.Context, city CityKey, window time.Duration) (*CityRecord, error)
	SaveObservation(ctx context.Context, obs Observation) error
}

// RegionResolver optionally resolves the administrative region for a city.
// Resolution is best-effort: a failure leaves the region blank, it never
// blocks a refresh.
type RegionResolver interface {
	Region(ctx context.Context, cityName, country string) (string, error)
}
