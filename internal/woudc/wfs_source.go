package woudc

import (
	"context"
	"errors"
	"fmt"

	"github.com/ozonewatch/woudc-client/internal/fes"
	"github.com/ozonewatch/woudc-client/internal/wfs"
)

// WFSSource adapts the WFS 1.1.0 transport to the FeatureSource contract,
// serializing the structured filter into an ogc:Filter document.
type WFSSource struct {
	client *wfs.Client
}

// NewWFSSource creates a FeatureSource backed by a WFS client.
func NewWFSSource(client *wfs.Client) *WFSSource {
	return &WFSSource{client: client}
}

// FetchPage implements FeatureSource.
func (s *WFSSource) FetchPage(ctx context.Context, req PageRequest) (*Page, error) {
	filterXML, err := encodeFilter(req.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize filter: %w", err)
	}

	page, err := s.client.GetFeature(ctx, wfs.GetFeatureParams{
		TypeName:      req.Dataset,
		Filter:        filterXML,
		PropertyNames: req.Properties,
		StartIndex:    req.StartIndex,
		MaxFeatures:   req.Limit,
	})
	if err != nil {
		return nil, translateWFSError(err)
	}

	return &Page{Features: page.Features, NumberMatched: page.NumberMatched}, nil
}

// FetchCollection implements FeatureSource.
func (s *WFSSource) FetchCollection(ctx context.Context, name string) (*Page, error) {
	page, err := s.client.GetFeature(ctx, wfs.GetFeatureParams{TypeName: name})
	if err != nil {
		return nil, translateWFSError(err)
	}
	return &Page{Features: page.Features, NumberMatched: page.NumberMatched}, nil
}

// encodeFilter renders the structured filter as Filter Encoding 1.1 XML.
func encodeFilter(f *Filter) (string, error) {
	if f.IsEmpty() {
		return "", nil
	}

	var constraints []fes.Constraint

	if f.PropertyName != "" {
		constraints = append(constraints, fes.PropertyIsEqualTo{
			PropertyName: f.PropertyName,
			Literal:      f.PropertyValue,
		})
	}

	if len(f.BBox) == 4 {
		constraints = append(constraints, fes.BBox{
			MinX: f.BBox[0], MinY: f.BBox[1], MaxX: f.BBox[2], MaxY: f.BBox[3],
		})
	}

	switch {
	case f.TemporalBegin != "" && f.TemporalEnd != "":
		constraints = append(constraints, fes.PropertyIsBetween{
			PropertyName: TimestampProperty,
			Lower:        f.TemporalBegin,
			Upper:        f.TemporalEnd,
		})
	case f.TemporalBegin != "":
		constraints = append(constraints, fes.PropertyIsGreaterThanOrEqualTo{
			PropertyName: TimestampProperty,
			Literal:      f.TemporalBegin,
		})
	case f.TemporalEnd != "":
		constraints = append(constraints, fes.PropertyIsLessThanOrEqualTo{
			PropertyName: TimestampProperty,
			Literal:      f.TemporalEnd,
		})
	}

	return fes.Encode(constraints)
}

// translateWFSError maps transport-local sentinels onto the engine's error
// taxonomy.
func translateWFSError(err error) error {
	switch {
	case errors.Is(err, wfs.ErrNoResults):
		return fmt.Errorf("%w: %v", ErrNoResults, err)
	case errors.Is(err, wfs.ErrTransport):
		return fmt.Errorf("%w: %v", ErrTransport, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
}
