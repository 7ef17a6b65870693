package wfs

import (
	"net/url"
	"strconv"
	"strings"
)

// Version is the WFS protocol version the WOUDC service speaks.
const Version = "1.1.0"

// DefaultOutputFormat requests GeoJSON-encoded features.
const DefaultOutputFormat = "application/json; subtype=geojson"

// GetFeatureParams are the KVP parameters of a WFS GetFeature request.
type GetFeatureParams struct {
	// TypeName is the dataset (feature type) to query.
	TypeName string

	// Filter is a serialized ogc:Filter document, or empty for an
	// unfiltered request.
	Filter string

	// PropertyNames selects which feature properties to return. Empty
	// means all.
	PropertyNames []string

	// StartIndex is the zero-based offset of the first feature to return.
	StartIndex int

	// MaxFeatures bounds the page size. Zero means the server default.
	MaxFeatures int

	// OutputFormat overrides DefaultOutputFormat when set.
	OutputFormat string
}

// ToURLValues renders the parameters as a GetFeature query string.
func (p *GetFeatureParams) ToURLValues() url.Values {
	values := url.Values{}

	values.Set("service", "WFS")
	values.Set("version", Version)
	values.Set("request", "GetFeature")
	values.Set("typename", p.TypeName)

	if p.Filter != "" {
		values.Set("filter", p.Filter)
	}

	if len(p.PropertyNames) > 0 {
		values.Set("propertyname", strings.Join(p.PropertyNames, ","))
	}

	if p.StartIndex > 0 {
		values.Set("startindex", strconv.Itoa(p.StartIndex))
	}

	if p.MaxFeatures > 0 {
		values.Set("maxfeatures", strconv.Itoa(p.MaxFeatures))
	}

	if p.OutputFormat != "" {
		values.Set("outputFormat", p.OutputFormat)
	} else {
		values.Set("outputFormat", DefaultOutputFormat)
	}

	return values
}
