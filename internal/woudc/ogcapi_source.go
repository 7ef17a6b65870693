package woudc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ozonewatch/woudc-client/internal/ogcapi"
	"github.com/ozonewatch/woudc-client/internal/temporal"
)

// OGCAPISource adapts the OGC-API-Features transport to the FeatureSource
// contract, rendering the structured filter as items query parameters.
type OGCAPISource struct {
	client *ogcapi.Client
}

// NewOGCAPISource creates a FeatureSource backed by an OGC API client.
func NewOGCAPISource(client *ogcapi.Client) *OGCAPISource {
	return &OGCAPISource{client: client}
}

// FetchPage implements FeatureSource.
func (s *OGCAPISource) FetchPage(ctx context.Context, req PageRequest) (*Page, error) {
	datetime, err := datetimeInterval(req.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize filter: %w", err)
	}

	params := ogcapi.ItemsParams{
		Collection: req.Dataset,
		Datetime:   datetime,
		Properties: req.Properties,
		Offset:     req.StartIndex,
		Limit:      req.Limit,
	}
	if req.Filter != nil {
		params.BBox = req.Filter.BBox
		params.PropertyName = req.Filter.PropertyName
		params.PropertyValue = req.Filter.PropertyValue
	}

	page, err := s.client.Items(ctx, params)
	if err != nil {
		return nil, translateOGCAPIError(err)
	}

	return &Page{Features: page.Features, NumberMatched: page.NumberMatched}, nil
}

// FetchCollection implements FeatureSource.
func (s *OGCAPISource) FetchCollection(ctx context.Context, name string) (*Page, error) {
	page, err := s.client.Items(ctx, ogcapi.ItemsParams{Collection: name})
	if err != nil {
		return nil, translateOGCAPIError(err)
	}
	return &Page{Features: page.Features, NumberMatched: page.NumberMatched}, nil
}

// datetimeInterval renders the filter's temporal bounds as an RFC 3339
// interval. Open sides use the ".." marker; no bounds at all yields "".
func datetimeInterval(f *Filter) (string, error) {
	if f == nil || (f.TemporalBegin == "" && f.TemporalEnd == "") {
		return "", nil
	}

	begin, err := toRFC3339(f.TemporalBegin)
	if err != nil {
		return "", err
	}
	end, err := toRFC3339(f.TemporalEnd)
	if err != nil {
		return "", err
	}

	return begin + "/" + end, nil
}

// toRFC3339 converts a canonical timestamp literal to RFC 3339 UTC, mapping
// the empty string onto the open-range marker.
func toRFC3339(literal string) (string, error) {
	if literal == "" {
		return temporal.OpenMarker, nil
	}
	t, err := time.Parse(temporal.DateTimeLayout, literal)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp literal %q: %w", literal, err)
	}
	return t.UTC().Format(time.RFC3339), nil
}

// translateOGCAPIError maps transport-local sentinels onto the engine's
// error taxonomy.
func translateOGCAPIError(err error) error {
	switch {
	case errors.Is(err, ogcapi.ErrNoResults):
		return fmt.Errorf("%w: %v", ErrNoResults, err)
	case errors.Is(err, ogcapi.ErrTransport):
		return fmt.Errorf("%w: %v", ErrTransport, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}
