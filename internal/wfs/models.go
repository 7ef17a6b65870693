package wfs

import (
	geojson "github.com/paulmach/go.geojson"
)

// Page is one bounded GetFeature response. NumberMatched is the
// server-reported total match count when the server provides one; WFS 1.1.0
// GeoJSON output reports it as totalFeatures, newer servers as
// numberMatched.
type Page struct {
	Features      []*geojson.Feature
	NumberMatched *int
}

// pageEnvelope is the wire form of a GetFeature GeoJSON response.
type pageEnvelope struct {
	Type          string             `json:"type"`
	Features      []*geojson.Feature `json:"features"`
	NumberMatched *int               `json:"numberMatched,omitempty"`
	TotalFeatures *int               `json:"totalFeatures,omitempty"`
}

func (e *pageEnvelope) matched() *int {
	if e.NumberMatched != nil {
		return e.NumberMatched
	}
	return e.TotalFeatures
}
