package woudc

import (
	"fmt"
	"sort"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

// SortOrder represents the sort direction.
type SortOrder string

const (
	// SortAsc represents ascending sort order.
	SortAsc SortOrder = "asc"
	// SortDesc represents descending sort order.
	SortDesc SortOrder = "desc"
)

// sortFeatures stably sorts features in place by the named property.
// Every feature must carry the property; a missing key fails the sort
// rather than producing a misleading partial ordering.
func sortFeatures(features []*geojson.Feature, property string, order SortOrder) error {
	keys := make([]any, len(features))
	for i, f := range features {
		v, ok := f.Properties[property]
		if !ok {
			return fmt.Errorf("%w: %q on feature %v", ErrMissingProperty, property, f.ID)
		}
		keys[i] = v
	}

	type keyed struct {
		feature *geojson.Feature
		key     any
	}
	pairs := make([]keyed, len(features))
	for i := range features {
		pairs[i] = keyed{feature: features[i], key: keys[i]}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		cmp := compareValues(pairs[i].key, pairs[j].key)
		if order == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})

	for i := range pairs {
		features[i] = pairs[i].feature
	}
	return nil
}

// compareValues orders two property values. Numbers compare numerically
// (JSON decoding yields float64), strings lexically, and mixed or other
// types through their string rendering.
func compareValues(a, b any) int {
	if af, ok := a.(float64); ok {
		if bf, ok := b.(float64); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
