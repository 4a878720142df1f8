package costs

import (
	"time"
)

// Category identifies one spending category scraped from the source page.
type Category string

const (
	CategoryRestaurant     Category = "restaurant"
	CategoryMarket         Category = "market"
	CategoryTransportation Category = "transportation"
	CategoryUtilities      Category = "utilities"
	CategoryLeisure        Category = "leisure"
	CategoryClothing       Category = "clothing"
	CategoryRent           Category = "rent"
)

// Categories lists all known categories in a stable order.
var Categories = []Category{
	CategoryRestaurant,
	CategoryMarket,
	CategoryTransportation,
	CategoryUtilities,
	CategoryLeisure,
	CategoryClothing,
	CategoryRent,
}

// categoryFields maps each category to its ordered field names. The order is
// positionally significant: position i of a raw category slice lands in field i.
var categoryFields = map[Category][]string{
	CategoryRestaurant: {
		"cheap_meal_for_one", "meal_for_two", "mcdonalds_meal", "domestic_beer",
		"imported_beer", "cappuccino", "coke_or_pepsi", "water",
	},
	CategoryMarket: {
		"milk_one_liter", "bread_500g", "rice_1kg", "eggs_dozen", "local_cheese_1kg",
		"chicken_fillets_1kg", "beef_round_1kg", "apples_1kg", "bananas_1kg",
		"oranges_1kg", "tomatoes_1kg", "potatoes_1kg", "onions_1kg", "lettuce_head",
		"water_1_5l", "bottle_of_wine", "domestic_beer_bottle", "imported_beer_bottle",
		"cigarettes_pack",
	},
	CategoryTransportation: {
		"one_way_ticket", "monthly_transit_pass", "taxi_start", "taxi_one_km",
		"taxi_one_hour_waiting", "gasoline_one_liter", "vw_golf_new", "toyota_corolla_new",
	},
	CategoryUtilities: {
		"all_basic", "mobile_plan", "internet",
	},
	CategoryLeisure: {
		"fitness_club_monthly", "tennis_court_hour", "cinema_seat",
	},
	CategoryClothing: {
		"jeans_pair", "summer_dress", "running_shoes", "leather_shoes",
	},
	CategoryRent: {
		"apt_one_bdrm_ctr", "apt_one_bdrm_outside", "apt_three_bdrm_ctr", "apt_three_bdrm_outside",
	},
}

// FieldsFor returns the ordered field names for a category, or nil for an
// unknown category.
func FieldsFor(c Category) []string {
	return categoryFields[c]
}

// CityKey identifies a city for which we track cost data.
// Matching against stored cities is case-insensitive.
type CityKey struct {
	Name    string `json:"city"`
	Country string `json:"country"`
}

func (k CityKey) String() string {
	return k.Name + ", " + k.Country
}

// RawCostBag is the source adapter's output: per category, an ordered sequence
// of optional numeric values. A nil entry means the cell could not be read.
type RawCostBag map[Category][]*float64

// CostSet holds one category's named values for a single observation.
// Any value may be nil; a nil value is stored as NULL.
type CostSet struct {
	Category Category
	Values   map[string]*float64
}

// Observation is one fetch event for a city together with the cost sets it
// produced. Observations are append-only: stored rows are never mutated.
type Observation struct {
	City      CityKey
	Region    string
	Timestamp time.Time
	Sets      []CostSet
}

// CityRecord is the assembled, display-ready view of a city: identity plus the
// subset of cost fields callers care about, taken from the most recent
// observation. Nil fields mean the source had no data for them.
type CityRecord struct {
	CityName    string    `json:"city"`
	Country     string    `json:"country"`
	Region      string    `json:"region,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`

	RentOneBedroomCenter *float64 `json:"rent1brCenter"`
	CheapMealForOne      *float64 `json:"cheapMealForOne"`
	MilkOneLiter         *float64 `json:"milkOneLiter"`
	MonthlyTransitPass   *float64 `json:"monthlyTransitPass"`
	UtilitiesBasic       *float64 `json:"utilitiesBasic"`
}

// Comparison is the side-by-side view of two cities with per-field deltas
// (B minus A) for every field both cities have data for.
type Comparison struct {
	A      CityRecord          `json:"a"`
	B      CityRecord          `json:"b"`
	Deltas map[string]*float64 `json:"deltas"`
}
