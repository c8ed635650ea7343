package region

// Resolver maps a store to its reporting region. The store→region table is
// owned by an external system; the aggregation engine only consumes the lookup.
type Resolver interface {
	RegionOf(storeID string) string
}

// TableResolver resolves from an explicit mapping, falling back to Default for
// unknown stores.
type TableResolver struct {
	Table   map[string]string
	Default string
}

func (r TableResolver) RegionOf(storeID string) string {
	if region, ok := r.Table[storeID]; ok {
		return region
	}
	return r.Default
}

// SuffixResolver derives the region from the last character of the store id,
// matching the demo dataset convention.
type SuffixResolver struct{}

func (SuffixResolver) RegionOf(storeID string) string {
	if storeID == "" {
		return "South"
	}
	switch storeID[len(storeID)-1] {
	case '1', '2', '3':
		return "West Coast"
	case '4', '5', '6':
		return "East Coast"
	case '7', '8':
		return "Midwest"
	default:
		return "South"
	}
}
