package ogcapi

import (
	geojson "github.com/paulmach/go.geojson"
)

// Page is one bounded items response.
type Page struct {
	Features       []*geojson.Feature
	NumberMatched  *int
	NumberReturned int
}

// itemsEnvelope is the wire form of a /collections/{id}/items response.
type itemsEnvelope struct {
	Type           string             `json:"type"`
	Features       []*geojson.Feature `json:"features"`
	NumberMatched  *int               `json:"numberMatched,omitempty"`
	NumberReturned int                `json:"numberReturned,omitempty"`
	Links          []Link             `json:"links,omitempty"`
}

// Link is an OGC API hypermedia link. Only rel=next matters for paging and
// even that is advisory; the driver terminates on counts, not links.
type Link struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}
