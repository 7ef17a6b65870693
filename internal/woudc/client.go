// Package woudc is the query engine over the WOUDC feature service: it
// validates caller parameters, assembles the server-side filter, drives the
// page-by-page fetch loop, and merges the pages into one collection.
package woudc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	geojson "github.com/paulmach/go.geojson"
)

// DefaultPageSize is the number of features requested per page. The WOUDC
// service caps responses at this size.
const DefaultPageSize = 25000

// Client is the caller-facing query engine. It owns no state between
// calls; concurrent calls are independent.
type Client struct {
	source   FeatureSource
	pageSize int
	logger   *slog.Logger
}

// NewClient creates an engine on top of a feature source.
func NewClient(source FeatureSource) *Client {
	return &Client{
		source:   source,
		pageSize: DefaultPageSize,
		logger:   slog.Default(),
	}
}

// WithLogger sets a custom logger for the engine.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// WithPageSize overrides the page size used by the fetch loop.
func (c *Client) WithPageSize(size int) *Client {
	c.pageSize = size
	return c
}

// GetData downloads every feature of a dataset matching the given options.
//
// It validates the options, builds the filter, then fetches pages
// sequentially until the result set is exhausted: a zero-feature page, a
// page shorter than requested, or an accumulated count reaching the
// server-reported total each terminate the loop. The merged collection is
// optionally sorted by one property and capped to the caller's limit.
//
// Argument errors (ErrInvalidArgument) are raised before any request is
// sent. A first page that parses as no result yields an empty collection;
// any transport failure aborts the call without partial data.
func (c *Client) GetData(ctx context.Context, dataset string, opts QueryOptions) (*FeatureCollection, error) {
	if c.pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be a positive integer, got %d",
			ErrInvalidArgument, c.pageSize)
	}
	if dataset == "" {
		return nil, fmt.Errorf("%w: dataset must not be empty", ErrInvalidArgument)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	filter, err := buildFilter(&opts)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "downloading dataset",
		slog.String("dataset", dataset),
		slog.Any("bbox", opts.BBox),
		slog.String("temporal_begin", filter.TemporalBegin),
		slog.String("temporal_end", filter.TemporalEnd),
		slog.String("attribute", filter.PropertyName),
	)

	features, matched, err := c.fetchAll(ctx, dataset, filter, &opts)
	if err != nil {
		if errors.Is(err, ErrNoResults) {
			c.logger.InfoContext(ctx, "query produced no results",
				slog.String("dataset", dataset))
			return newFeatureCollection(nil, nil), nil
		}
		return nil, err
	}

	fc := newFeatureCollection(features, matched)
	c.logger.InfoContext(ctx, "download complete",
		slog.String("dataset", dataset),
		slog.Int("number_returned", fc.NumberReturned),
		slog.Int("number_matched", fc.NumberMatched),
	)

	if opts.SortBy != "" {
		c.logger.DebugContext(ctx, "sorting response",
			slog.String("property", opts.SortBy),
			slog.String("order", string(opts.sortOrder())),
		)
		if err := sortFeatures(fc.Features, opts.SortBy, opts.sortOrder()); err != nil {
			return nil, err
		}
	}

	// A sorted query must see the whole result set before the cap applies,
	// so the limit is enforced here rather than in the fetch loop.
	if opts.Limit > 0 && len(fc.Features) > opts.Limit {
		fc.Features = fc.Features[:opts.Limit]
		fc.NumberReturned = opts.Limit
	}

	return fc, nil
}

// fetchAll runs the sequential pagination loop. Each iteration either grows
// the offset by the page size or terminates, so the loop is bounded. The
// offset advances by the requested page size, not by the count returned.
func (c *Client) fetchAll(ctx context.Context, dataset string, filter *Filter, opts *QueryOptions) ([]*geojson.Feature, *int, error) {
	var (
		features []*geojson.Feature
		matched  *int
		start    = opts.StartIndex
		pages    int
	)

	for {
		c.logger.DebugContext(ctx, "fetching features",
			slog.Int("from", start),
			slog.Int("to", start+c.pageSize),
		)

		page, err := c.source.FetchPage(ctx, PageRequest{
			Dataset:    dataset,
			Filter:     filter,
			Properties: opts.Variables,
			StartIndex: start,
			Limit:      c.pageSize,
		})
		if err != nil {
			if errors.Is(err, ErrNoResults) && pages > 0 {
				// Data already accumulated; an unparseable later page
				// means a truncated result, which must not be returned.
				return nil, nil, fmt.Errorf("%w: page at offset %d unparseable after %d features",
					ErrTransport, start, len(features))
			}
			return nil, nil, err
		}
		pages++

		features = append(features, page.Features...)
		if page.NumberMatched != nil {
			matched = page.NumberMatched
		}

		c.logger.DebugContext(ctx, "page received",
			slog.Int("page_features", len(page.Features)),
			slog.Int("accumulated", len(features)),
		)

		if len(page.Features) == 0 {
			break
		}
		if len(page.Features) < c.pageSize {
			// Short page: end of data.
			break
		}
		if matched != nil && len(features) >= *matched {
			break
		}
		if opts.Limit > 0 && opts.SortBy == "" && len(features) >= opts.Limit {
			// Unsorted results keep delivery order, so once the cap is
			// reached the remaining pages cannot change the answer.
			break
		}

		start += c.pageSize
	}

	return features, matched, nil
}

// GetStationMetadata downloads WOUDC station metadata.
func (c *Client) GetStationMetadata(ctx context.Context) (*FeatureCollection, error) {
	return c.getMetadata(ctx, CollectionStations)
}

// GetInstrumentMetadata downloads WOUDC instrument metadata.
func (c *Client) GetInstrumentMetadata(ctx context.Context) (*FeatureCollection, error) {
	return c.getMetadata(ctx, CollectionInstruments)
}

// GetContributorMetadata downloads WOUDC contributor metadata.
func (c *Client) GetContributorMetadata(ctx context.Context) (*FeatureCollection, error) {
	return c.getMetadata(ctx, CollectionContributors)
}

// getMetadata fetches an unpaginated metadata collection in one call.
func (c *Client) getMetadata(ctx context.Context, name string) (*FeatureCollection, error) {
	c.logger.InfoContext(ctx, "fetching metadata", slog.String("collection", name))

	page, err := c.source.FetchCollection(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNoResults) {
			return newFeatureCollection(nil, nil), nil
		}
		return nil, err
	}

	return newFeatureCollection(page.Features, page.NumberMatched), nil
}
