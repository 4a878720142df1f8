package costs

import (
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestBuildCostSetsPositionalMapping(t *testing.T) {
	bag := RawCostBag{
		CategoryRestaurant: {fp(12.5), fp(55), nil, fp(4.2)},
		CategoryRent:       {nil, fp(1800)},
	}

	sets := BuildCostSets(bag)
	if len(sets) != 2 {
		t.Fatalf("expected 2 cost sets, got %d", len(sets))
	}

	byCat := make(map[Category]CostSet)
	for _, s := range sets {
		byCat[s.Category] = s
	}

	restaurant := byCat[CategoryRestaurant]
	if got := restaurant.Values["cheap_meal_for_one"]; got == nil || *got != 12.5 {
		t.Fatalf("cheap_meal_for_one = %v, want 12.5", got)
	}
	if got := restaurant.Values["mcdonalds_meal"]; got != nil {
		t.Fatalf("mcdonalds_meal = %v, want nil", *got)
	}
	// Positions past the provided slice stay nil.
	if got := restaurant.Values["water"]; got != nil {
		t.Fatalf("water = %v, want nil", *got)
	}

	rent := byCat[CategoryRent]
	if got := rent.Values["apt_one_bdrm_ctr"]; got != nil {
		t.Fatalf("apt_one_bdrm_ctr = %v, want nil", *got)
	}
	if got := rent.Values["apt_one_bdrm_outside"]; got == nil || *got != 1800 {
		t.Fatalf("apt_one_bdrm_outside = %v, want 1800", got)
	}
}

func TestBuildCostSetsIgnoresExtraPositions(t *testing.T) {
	vals := make([]*float64, 10)
	for i := range vals {
		vals[i] = fp(float64(i))
	}
	bag := RawCostBag{CategoryUtilities: vals} // utilities has 3 fields

	sets := BuildCostSets(bag)
	if len(sets) != 1 {
		t.Fatalf("expected 1 cost set, got %d", len(sets))
	}
	if len(sets[0].Values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(sets[0].Values))
	}
	if got := sets[0].Values["internet"]; got == nil || *got != 2 {
		t.Fatalf("internet = %v, want 2", got)
	}
}

func TestBuildCostSetsSkipsEmptyAndUnknown(t *testing.T) {
	bag := RawCostBag{
		CategoryMarket:       {},
		Category("haircuts"): {fp(30)},
	}
	if sets := BuildCostSets(bag); len(sets) != 0 {
		t.Fatalf("expected no cost sets, got %d", len(sets))
	}
}

func TestBuildCostSetsEmptyBag(t *testing.T) {
	if sets := BuildCostSets(RawCostBag{}); len(sets) != 0 {
		t.Fatalf("expected no cost sets, got %d", len(sets))
	}
}
