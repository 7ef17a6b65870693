// Package ogcapi is the transport layer for the OGC-API-Features version of
// the WOUDC service. It covers the same contract as package wfs: one page
// per call, with the engine owning pagination and aggregation.
package ogcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrTransport is the class of network and protocol failures.
	ErrTransport = errors.New("ogcapi transport failure")

	// ErrNoResults marks an items payload that does not parse as GeoJSON.
	ErrNoResults = errors.New("query produced no results")
)

// ItemsParams are the query parameters of an items request.
type ItemsParams struct {
	// Collection is the dataset to query.
	Collection string

	// BBox is minx,miny,maxx,maxy, or nil for no spatial constraint.
	BBox []float64

	// Datetime is an RFC 3339 instant or interval ("start/end", with ".."
	// for an open end). Empty means no temporal constraint.
	Datetime string

	// PropertyName/PropertyValue form a simple equality constraint on a
	// queryable, passed as a direct query parameter.
	PropertyName  string
	PropertyValue string

	// Properties selects which feature properties to return. Empty means all.
	Properties []string

	// Offset and Limit drive paging. Limit zero means the server default.
	Offset int
	Limit  int
}

// ToURLValues renders the parameters as an items query string.
func (p *ItemsParams) ToURLValues() url.Values {
	values := url.Values{}
	values.Set("f", "json")

	if len(p.BBox) == 4 {
		parts := make([]string, 4)
		for i, v := range p.BBox {
			parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		values.Set("bbox", strings.Join(parts, ","))
	}

	if p.Datetime != "" {
		values.Set("datetime", p.Datetime)
	}

	if p.PropertyName != "" && p.PropertyValue != "" {
		values.Set(p.PropertyName, p.PropertyValue)
	}

	if len(p.Properties) > 0 {
		values.Set("properties", strings.Join(p.Properties, ","))
	}

	if p.Offset > 0 {
		values.Set("offset", strconv.Itoa(p.Offset))
	}

	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}

	return values
}

// Client handles communication with a WOUDC OGC-API-Features endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new OGC API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger for the client.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// Items requests one page of features from a collection.
func (c *Client) Items(ctx context.Context, params ItemsParams) (*Page, error) {
	requestURL := c.baseURL + "/collections/" + url.PathEscape(params.Collection) + "/items"

	c.logger.DebugContext(ctx, "executing items request",
		slog.String("collection", params.Collection),
		slog.Int("offset", params.Offset),
		slog.Int("limit", params.Limit),
	)

	payload, err := c.get(ctx, requestURL, params.ToURLValues())
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(string(payload))) == 0 {
		c.logger.DebugContext(ctx, "empty items payload")
		return &Page{}, nil
	}

	var envelope itemsEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		c.logger.InfoContext(ctx, "items payload is not valid GeoJSON",
			slog.String("collection", params.Collection),
		)
		return nil, fmt.Errorf("%w: %v", ErrNoResults, err)
	}

	c.logger.DebugContext(ctx, "items request completed",
		slog.Int("feature_count", len(envelope.Features)),
	)

	return &Page{
		Features:       envelope.Features,
		NumberMatched:  envelope.NumberMatched,
		NumberReturned: envelope.NumberReturned,
	}, nil
}

// get issues one GET request and returns the raw body.
func (c *Client) get(ctx context.Context, requestURL string, query url.Values) ([]byte, error) {
	u, err := url.Parse(requestURL)
	if err != nil {
		return nil, fmt.Errorf("invalid request URL: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/geo+json, application/json")
	req.Header.Set("User-Agent", "woudc-client/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "ogcapi request failed",
			slog.String("error", err.Error()),
			slog.String("url", u.String()),
		)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "ogcapi returned non-200 status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(body)),
		)
		return nil, fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, string(body))
	}

	return body, nil
}
