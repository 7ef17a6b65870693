package woudc

import (
	"fmt"
	"strings"

	"github.com/ozonewatch/woudc-client/internal/temporal"
)

// TimestampProperty is the feature property the temporal constraint and
// interval filters apply to.
const TimestampProperty = "instance_datetime"

// QueryOptions are the recognized options of a GetData call. Every option
// is explicit; the zero value means "no constraint" for each of them.
type QueryOptions struct {
	// BBox is a spatial constraint: exactly minx, miny, maxx, maxy.
	BBox []float64

	// Temporal is a time period: exactly two endpoints, begin then end.
	// Each endpoint is independently a calendar date, a datetime, or open.
	Temporal []temporal.Endpoint

	// PropertyName and PropertyValue form an exact-match attribute filter.
	// Setting only one of them is a no-op, not an error.
	PropertyName  string
	PropertyValue string

	// Variables selects which feature properties to return. Nil means all.
	Variables []string

	// SortBy names the property to sort the merged result by. Empty
	// preserves server-delivered order.
	SortBy string

	// SortOrder applies when SortBy is set. Empty defaults to ascending.
	SortOrder SortOrder

	// StartIndex is the offset of the first feature to fetch.
	StartIndex int

	// Limit caps the number of features in the merged result. Zero means
	// unbounded. When SortBy is set, the cap applies after sorting.
	Limit int
}

// validate checks the options before any network call.
func (o *QueryOptions) validate() error {
	if o.BBox != nil && len(o.BBox) != 4 {
		return fmt.Errorf("%w: bbox must be minx, miny, maxx, maxy, got %d values",
			ErrInvalidArgument, len(o.BBox))
	}

	if o.Temporal != nil && len(o.Temporal) != 2 {
		return fmt.Errorf("%w: temporal must be start date, end date, got %d values",
			ErrInvalidArgument, len(o.Temporal))
	}

	switch o.SortOrder {
	case "", SortAsc, SortDesc:
	default:
		return fmt.Errorf("%w: sort order must be %q or %q, got %q",
			ErrInvalidArgument, SortAsc, SortDesc, o.SortOrder)
	}

	for i, v := range o.Variables {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: variable at index %d is empty", ErrInvalidArgument, i)
		}
	}

	if o.StartIndex < 0 {
		return fmt.Errorf("%w: start index must be non-negative, got %d",
			ErrInvalidArgument, o.StartIndex)
	}

	if o.Limit < 0 {
		return fmt.Errorf("%w: limit must be non-negative, got %d",
			ErrInvalidArgument, o.Limit)
	}

	return nil
}

// sortOrder resolves the effective order, defaulting to ascending.
func (o *QueryOptions) sortOrder() SortOrder {
	if o.SortOrder == "" {
		return SortAsc
	}
	return o.SortOrder
}

// buildFilter assembles the structured filter from validated options,
// normalizing temporal endpoints on the way.
func buildFilter(o *QueryOptions) (*Filter, error) {
	f := &Filter{}

	if o.PropertyName != "" && o.PropertyValue != "" {
		f.PropertyName = o.PropertyName
		f.PropertyValue = o.PropertyValue
	}

	if o.BBox != nil {
		f.BBox = o.BBox
	}

	if o.Temporal != nil {
		begin, err := temporal.Normalize(o.Temporal[0], temporal.Begin)
		if err != nil {
			return nil, fmt.Errorf("%w: temporal start: %v", ErrInvalidArgument, err)
		}
		end, err := temporal.Normalize(o.Temporal[1], temporal.End)
		if err != nil {
			return nil, fmt.Errorf("%w: temporal end: %v", ErrInvalidArgument, err)
		}
		f.TemporalBegin = begin
		f.TemporalEnd = end
	}

	return f, nil
}
