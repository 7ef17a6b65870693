package woudc

import (
	"context"

	geojson "github.com/paulmach/go.geojson"
)

// FeatureSource is the transport capability the engine drives. Both the
// WFS 1.1.0 and the OGC-API-Features clients are adapted to it.
//
// Implementations must classify failures: network/protocol failures wrap
// ErrTransport, unparseable result payloads wrap ErrNoResults, and a query
// that legitimately matches nothing beyond the current offset returns a
// page with no features, not an error.
type FeatureSource interface {
	// FetchPage retrieves one bounded page of features.
	FetchPage(ctx context.Context, req PageRequest) (*Page, error)

	// FetchCollection retrieves an unpaginated metadata collection
	// (stations, instruments, contributors).
	FetchCollection(ctx context.Context, name string) (*Page, error)
}

// PageRequest describes one page fetch. The filter is transport-agnostic;
// each source serializes it into its own wire form.
type PageRequest struct {
	Dataset    string
	Filter     *Filter
	Properties []string
	StartIndex int
	Limit      int
}

// Page is one bounded response from a source. NumberMatched carries the
// server-reported total match count when the transport provides one.
type Page struct {
	Features      []*geojson.Feature
	NumberMatched *int
}

// Filter is the structured predicate built from validated query options.
// Immutable once built; constraints combine with implicit conjunction.
type Filter struct {
	// PropertyName/PropertyValue form an attribute-equality constraint.
	// Both must be set for the constraint to exist.
	PropertyName  string
	PropertyValue string

	// BBox is minx,miny,maxx,maxy, or nil for no spatial constraint.
	BBox []float64

	// TemporalBegin and TemporalEnd are canonical "YYYY-MM-DD HH:MM:SS"
	// literals. An empty string is the open-range sentinel for that side.
	TemporalBegin string
	TemporalEnd   string
}

// IsEmpty reports whether the filter carries no constraints at all, in
// which case the server returns an unfiltered result.
func (f *Filter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.PropertyName == "" && len(f.BBox) == 0 &&
		f.TemporalBegin == "" && f.TemporalEnd == ""
}
