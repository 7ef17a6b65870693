package woudc

import (
	geojson "github.com/paulmach/go.geojson"
)

// Metadata collections served without pagination.
const (
	CollectionStations     = "stations"
	CollectionInstruments  = "instruments"
	CollectionContributors = "contributors"
)

// FeatureCollection is the merged result of a query: every accumulated
// feature plus recomputed match counters. After aggregation,
// NumberReturned equals len(Features) and NumberMatched is at least that.
type FeatureCollection struct {
	Type           string             `json:"type"`
	Features       []*geojson.Feature `json:"features"`
	NumberMatched  int                `json:"numberMatched"`
	NumberReturned int                `json:"numberReturned"`
}

// newFeatureCollection assembles the final collection. When the transport
// never reported an authoritative match count, the merged set is complete
// by construction of the termination rule, so matched defaults to the
// returned count.
func newFeatureCollection(features []*geojson.Feature, matched *int) *FeatureCollection {
	if features == nil {
		features = []*geojson.Feature{}
	}

	fc := &FeatureCollection{
		Type:           "FeatureCollection",
		Features:       features,
		NumberReturned: len(features),
	}

	fc.NumberMatched = fc.NumberReturned
	if matched != nil && *matched > fc.NumberReturned {
		fc.NumberMatched = *matched
	}

	return fc
}
