// Package geo resolves the administrative region for a city via the Google
// geocoding API. Regions are cosmetic on the city record, so every failure
// here is non-fatal to the caller.
package geo

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"
)

// Resolver implements costs.RegionResolver on top of kelvins/geocoder.
type Resolver struct{}

// NewResolver configures the geocoder with the given API key.
func NewResolver(apiKey string) *Resolver {
	geocoder.ApiKey = apiKey
	return &Resolver{}
}

// Region geocodes the city and reads the state/region off the reverse lookup
// of the resulting coordinates.
func (r *Resolver) Region(_ context.Context, cityName, country string) (string, error) {
	location, err := geocoder.Geocoding(geocoder.Address{
		City:    cityName,
		Country: country,
	})
	if err != nil {
		return "", fmt.Errorf("geocode %s, %s: %w", cityName, country, err)
	}

	addresses, err := geocoder.GeocodingReverse(location)
	if err != nil {
		return "", fmt.Errorf("reverse geocode %s, %s: %w", cityName, country, err)
	}

	for _, addr := range addresses {
		if addr.State != "" {
			return addr.State, nil
		}
	}
	return "", nil
}
