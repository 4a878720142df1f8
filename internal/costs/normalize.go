package costs

// BuildCostSets maps a raw bag onto the fixed per-category field schemas.
// Each known category with at least one positional entry yields one CostSet.
// Positions beyond a category's field count are dropped; a short slice leaves
// the trailing fields nil. Unknown categories are ignored. Missing or short
// data is never an error.
func BuildCostSets(bag RawCostBag) []CostSet {
	var sets []CostSet

	for _, cat := range Categories {
		raw, ok := bag[cat]
		if !ok || len(raw) == 0 {
			continue
		}

		fields := categoryFields[cat]
		values := make(map[string]*float64, len(fields))
		for i, name := range fields {
			if i < len(raw) {
				values[name] = raw[i]
			} else {
				values[name] = nil
			}
		}

		sets = append(sets, CostSet{Category: cat, Values: values})
	}

	return sets
}
