package costs

import "errors"

// Error taxonomy for the fetch/cache path. Source adapters return the first
// three; the store returns ErrStorage; the service wraps any refresh failure
// in ErrFetchFailed so callers can match either the umbrella or the cause.
var (
	// ErrNotFound means the source returned no parsable data at all.
	ErrNotFound = errors.New("source returned no parsable data")

	// ErrNoData means the source returned structure but no usable numeric
	// value in any category.
	ErrNoData = errors.New("source returned no usable cost values")

	// ErrNetwork is a transport-level failure contacting the source.
	ErrNetwork = errors.New("network error contacting source")

	// ErrStorage is a local persistence failure on read or write.
	ErrStorage = errors.New("storage error")

	// ErrNoFreshData is returned by stores when a city has no observation
	// within the freshness window.
	ErrNoFreshData = errors.New("no fresh observation for city")

	// ErrFetchFailed wraps any of the above when a refresh could not be
	// completed.
	ErrFetchFailed = errors.New("fetch failed")
)
