package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shakespr/cost-data-service/internal/costs"
)

type AppConfig struct {
	// DatabaseURL is the Postgres connection string. When empty the service
	// falls back to the in-memory store.
	DatabaseURL string

	// SourceBaseURL is the cost-data page prefix, without a trailing slash.
	SourceBaseURL string
	// UserAgent is the client identity sent on scrape requests.
	UserAgent string
	// HTTPTimeout bounds each outbound request.
	HTTPTimeout time.Duration
	// MinFetchDelay/MaxFetchDelay bound the politeness delay before a fetch.
	MinFetchDelay time.Duration
	MaxFetchDelay time.Duration

	// FreshnessWindow is the maximum observation age served from cache.
	FreshnessWindow time.Duration

	// RefreshInterval controls how often tracked cities are pre-warmed.
	RefreshInterval time.Duration
	// TrackedCities are pre-warmed by the scheduler.
	TrackedCities []costs.CityKey

	// GeocoderAPIKey enables region resolution when set.
	GeocoderAPIKey string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	cfg.SourceBaseURL = getenvDefault("SOURCE_BASE_URL", "https://www.numbeo.com/cost-of-living/in")
	cfg.UserAgent = getenvDefault("SOURCE_USER_AGENT",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.MinFetchDelay, err = getenvDuration("MIN_FETCH_DELAY", "1s"); err != nil {
		return nil, err
	}
	if cfg.MaxFetchDelay, err = getenvDuration("MAX_FETCH_DELAY", "3s"); err != nil {
		return nil, err
	}
	if cfg.MaxFetchDelay < cfg.MinFetchDelay {
		return nil, fmt.Errorf("MAX_FETCH_DELAY must not be below MIN_FETCH_DELAY")
	}

	// Business policy, not a protocol constant: observations older than this
	// trigger a refresh. 30 days by default.
	if cfg.FreshnessWindow, err = getenvDuration("FRESHNESS_WINDOW", "720h"); err != nil {
		return nil, err
	}

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "24h"); err != nil {
		return nil, err
	}

	cities, err := loadTrackedCities()
	if err != nil {
		return nil, err
	}
	cfg.TrackedCities = cities

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// defaultTrackedCities are the quick-select cities pre-warmed when no
// TRACKED_CITIES override is configured.
var defaultTrackedCities = []costs.CityKey{
	{Name: "New York", Country: "United States"},
	{Name: "London", Country: "United Kingdom"},
	{Name: "Singapore", Country: "Singapore"},
	{Name: "Sydney", Country: "Australia"},
	{Name: "Berlin", Country: "Germany"},
}

func loadTrackedCities() ([]costs.CityKey, error) {
	names := os.Getenv("TRACKED_CITIES")
	countries := os.Getenv("TRACKED_COUNTRIES")
	if names == "" && countries == "" {
		return defaultTrackedCities, nil
	}

	nameList := strings.Split(names, ",")
	countryList := strings.Split(countries, ",")
	if len(nameList) != len(countryList) {
		return nil, fmt.Errorf("number of tracked cities and countries must be the same")
	}

	var cities []costs.CityKey
	for i := range nameList {
		cities = append(cities, costs.CityKey{
			Name:    strings.TrimSpace(nameList[i]),
			Country: strings.TrimSpace(countryList[i]),
		})
	}
	return cities, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
